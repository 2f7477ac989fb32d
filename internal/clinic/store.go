package clinic

import "context"

// BookingStore is everything the booking engine reads and writes.
type BookingStore interface {
	DoctorExists(ctx context.Context, id int) (bool, error)
	AppointmentExists(ctx context.Context, id int) (bool, error)
	PatientExists(ctx context.Context, id int) (bool, error)

	// Eligibility reference data
	DoctorEligibleTimeslots(ctx context.Context, doctorID int) ([]string, error)
	DoctorMaxPatientsPerHour(ctx context.Context, doctorID int) (limit int, ok bool, err error)
	DoctorCurrentLinkCount(ctx context.Context, doctorID int) (int, error)

	AppointmentTimeslot(ctx context.Context, appointmentID int) (string, error)
	AppointmentStatus(ctx context.Context, appointmentID int) (Status, error)
	SetAppointmentStatus(ctx context.Context, appointmentID int, status Status) error

	// Linkage. Both creates are create-if-absent.
	BoundDoctorOf(ctx context.Context, appointmentID int) (doctorID int, ok bool, err error)
	CreateLink(ctx context.Context, appointmentID, doctorID int) (created bool, err error)
	CreateVisitRecord(ctx context.Context, v VisitRecord) (created bool, err error)
	FacilityOf(ctx context.Context, doctorID int) (int, error)
	IncrementVisitCount(ctx context.Context, patientID int) error

	// InTx runs fn as one serializable unit of work.
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RegistryStore backs doctor, patient and appointment registration.
type RegistryStore interface {
	MaxID(ctx context.Context, rel Relation) (highest int, ok bool, err error)
	DepartmentExists(ctx context.Context, id int) (bool, error)

	FindDoctor(ctx context.Context, name, specialty string, departmentID int) (int, bool, error)
	FindPatient(ctx context.Context, name, gender string, age int, address string) (*Patient, error)
	FindAppointment(ctx context.Context, date, timeslot string, status Status) (int, bool, error)

	InsertDoctor(ctx context.Context, d Doctor) error
	InsertPatient(ctx context.Context, p Patient) error
	InsertAppointment(ctx context.Context, a Appointment) error

	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReportStore backs the read-only listings.
type ReportStore interface {
	DoctorExists(ctx context.Context, id int) (bool, error)
	DepartmentNameExists(ctx context.Context, name string) (bool, error)

	DoctorAppointments(ctx context.Context, doctorID int, from, to string) ([]Appointment, error)
	AvailableByDepartment(ctx context.Context, departmentName, date string) ([]Appointment, error)
	StatusCountsPerDoctor(ctx context.Context) ([]DoctorStatusCounts, error)
	PatientsPerDoctor(ctx context.Context, status Status) ([]DoctorPatientCount, error)
	CapacityViolations(ctx context.Context) ([]CapacityViolation, error)
}
