package clinic

import (
	"context"

	"github.com/hackgods/clinic-booking/internal/validate"
)

// Reports answers the read-only listings over doctors and appointments.
type Reports struct {
	store ReportStore
}

func NewReports(store ReportStore) *Reports {
	return &Reports{store: store}
}

// DoctorAppointments lists the doctor's active and available appointments
// between from and to, inclusive.
func (r *Reports) DoctorAppointments(ctx context.Context, doctorID int, from, to string) ([]Appointment, error) {
	if !validate.Date(from) {
		return nil, &InputError{Field: "from", Value: from}
	}
	if !validate.Date(to) {
		return nil, &InputError{Field: "to", Value: to}
	}

	ok, err := r.store.DoctorExists(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound(EntityDoctor, doctorID)
	}

	return r.store.DoctorAppointments(ctx, doctorID, from, to)
}

// AvailableByDepartment lists AV appointments on date whose doctor works in
// the named department.
func (r *Reports) AvailableByDepartment(ctx context.Context, departmentName, date string) ([]Appointment, error) {
	if !validate.Date(date) {
		return nil, &InputError{Field: "date", Value: date}
	}

	ok, err := r.store.DepartmentNameExists(ctx, departmentName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &NotFoundError{Entity: EntityDepartment, Key: departmentName}
	}

	return r.store.AvailableByDepartment(ctx, departmentName, date)
}

func (r *Reports) StatusCountsPerDoctor(ctx context.Context) ([]DoctorStatusCounts, error) {
	return r.store.StatusCountsPerDoctor(ctx)
}

// PatientsPerDoctor counts distinct patients per doctor across appointments
// currently in status.
func (r *Reports) PatientsPerDoctor(ctx context.Context, status string) ([]DoctorPatientCount, error) {
	if !validate.Status(status) {
		return nil, &InputError{Field: "status", Value: status}
	}
	return r.store.PatientsPerDoctor(ctx, Status(status))
}

func (r *Reports) CapacityViolations(ctx context.Context) ([]CapacityViolation, error) {
	return r.store.CapacityViolations(ctx)
}
