package clinic

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hackgods/clinic-booking/internal/validate"
)

type DoctorInput struct {
	Name         string
	Specialty    string
	DepartmentID int
}

type PatientInput struct {
	Name    string
	Gender  string
	Age     int
	Address string
}

type AppointmentInput struct {
	Date     string
	Timeslot string
	Status   string
}

// Registry creates doctors, patients and appointment slots. Identifiers are
// allocated as max+1 inside the same serializable transaction as the insert.
type Registry struct {
	store RegistryStore
}

func NewRegistry(store RegistryStore) *Registry {
	return &Registry{store: store}
}

// NextID returns the next identifier for rel; 1 when rel is empty.
func (r *Registry) NextID(ctx context.Context, rel Relation) (int, error) {
	highest, ok, err := r.store.MaxID(ctx, rel)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 1, nil
	}
	return highest + 1, nil
}

func (r *Registry) AddDoctor(ctx context.Context, in DoctorInput) (*Doctor, error) {
	if !validate.Name(in.Name) {
		return nil, &InputError{Field: "name", Value: in.Name}
	}
	if !validate.Name(in.Specialty) {
		return nil, &InputError{Field: "specialty", Value: in.Specialty}
	}

	var doctor *Doctor
	err := r.store.InTx(ctx, func(ctx context.Context) error {
		ok, err := r.store.DepartmentExists(ctx, in.DepartmentID)
		if err != nil {
			return err
		}
		if !ok {
			return notFound(EntityDepartment, in.DepartmentID)
		}

		if _, dup, err := r.store.FindDoctor(ctx, in.Name, in.Specialty, in.DepartmentID); err != nil {
			return err
		} else if dup {
			return ErrDuplicateEntry
		}

		id, err := r.NextID(ctx, RelationDoctor)
		if err != nil {
			return err
		}
		d := Doctor{ID: id, Name: in.Name, Specialty: in.Specialty, DepartmentID: in.DepartmentID}
		if err := r.store.InsertDoctor(ctx, d); err != nil {
			return err
		}
		doctor = &d
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int("doctor_id", doctor.ID).Int("department_id", doctor.DepartmentID).Msg("doctor registered")
	return doctor, nil
}

func (r *Registry) AddPatient(ctx context.Context, in PatientInput) (*Patient, error) {
	p, err := normalizePatient(in)
	if err != nil {
		return nil, err
	}

	var patient *Patient
	err = r.store.InTx(ctx, func(ctx context.Context) error {
		existing, err := r.store.FindPatient(ctx, p.Name, p.Gender, p.Age, p.Address)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicateEntry
		}
		patient, err = r.insertPatient(ctx, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int("patient_id", patient.ID).Msg("patient registered")
	return patient, nil
}

// ResolvePatient returns the patient matching every identifying field, or
// registers one. created reports which happened.
func (r *Registry) ResolvePatient(ctx context.Context, in PatientInput) (patient *Patient, created bool, err error) {
	p, err := normalizePatient(in)
	if err != nil {
		return nil, false, err
	}

	err = r.store.InTx(ctx, func(ctx context.Context) error {
		existing, err := r.store.FindPatient(ctx, p.Name, p.Gender, p.Age, p.Address)
		if err != nil {
			return err
		}
		if existing != nil {
			patient = existing
			return nil
		}
		patient, err = r.insertPatient(ctx, p)
		created = err == nil
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return patient, created, nil
}

func (r *Registry) AddAppointment(ctx context.Context, in AppointmentInput) (*Appointment, error) {
	if !validate.Date(in.Date) {
		return nil, &InputError{Field: "date", Value: in.Date}
	}
	if !validate.Timeslot(in.Timeslot) {
		return nil, &InputError{Field: "time_slot", Value: in.Timeslot}
	}
	if !validate.Status(in.Status) {
		return nil, &InputError{Field: "status", Value: in.Status}
	}
	status := Status(in.Status)

	var appt *Appointment
	err := r.store.InTx(ctx, func(ctx context.Context) error {
		if _, dup, err := r.store.FindAppointment(ctx, in.Date, in.Timeslot, status); err != nil {
			return err
		} else if dup {
			return ErrDuplicateEntry
		}

		id, err := r.NextID(ctx, RelationAppointment)
		if err != nil {
			return err
		}
		a := Appointment{ID: id, Date: in.Date, Timeslot: in.Timeslot, Status: status}
		if err := r.store.InsertAppointment(ctx, a); err != nil {
			return err
		}
		appt = &a
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int("appointment_id", appt.ID).Str("status", string(appt.Status)).Msg("appointment registered")
	return appt, nil
}

func (r *Registry) insertPatient(ctx context.Context, p Patient) (*Patient, error) {
	id, err := r.NextID(ctx, RelationPatient)
	if err != nil {
		return nil, err
	}
	p.ID = id
	if err := r.store.InsertPatient(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

func normalizePatient(in PatientInput) (Patient, error) {
	if !validate.Name(in.Name) {
		return Patient{}, &InputError{Field: "name", Value: in.Name}
	}
	gender, ok := validate.Gender(in.Gender)
	if !ok {
		return Patient{}, &InputError{Field: "gender", Value: in.Gender}
	}
	if !validate.Age(in.Age) {
		return Patient{}, &InputError{Field: "age", Value: strconv.Itoa(in.Age)}
	}
	address := strings.TrimSpace(in.Address)
	if address == "" {
		return Patient{}, &InputError{Field: "address", Value: in.Address}
	}
	return Patient{Name: in.Name, Gender: gender, Age: in.Age, Address: address}, nil
}
