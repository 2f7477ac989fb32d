package clinic

import "time"

// Relation names a table whose identifiers are allocated as max+1.
type Relation string

const (
	RelationDoctor      Relation = "doctor"
	RelationPatient     Relation = "patient"
	RelationAppointment Relation = "appointment"
)

type Hospital struct {
	ID   int
	Name string
}

type Department struct {
	ID         int
	Name       string
	HospitalID int
}

type Doctor struct {
	ID           int
	Name         string
	Specialty    string
	DepartmentID int
}

type Patient struct {
	ID         int
	Name       string
	Gender     string
	Age        int
	Address    string
	VisitCount int
}

// Appointment is a bookable slot. Date is kept in YYYY-MM-DD form.
type Appointment struct {
	ID       int
	Date     string
	Timeslot string
	Status   Status
}

// CapacityRule is the per-doctor booking reference data.
type CapacityRule struct {
	DoctorID           int
	Timeslots          []string
	MaxPatientsPerHour int
}

// VisitRecord joins a patient and an appointment through the hospital that
// owns the booked doctor's department.
type VisitRecord struct {
	HospitalID    int
	PatientID     int
	AppointmentID int
	CreatedAt     time.Time
}

type BookingRequest struct {
	PatientID     int
	DoctorID      int
	AppointmentID int
}

// Booking is the result of a booking attempt that passed eligibility.
type Booking struct {
	BookingRequest
	From         Status
	To           Status
	Mutated      bool
	LinkCreated  bool
	VisitCreated bool
	HospitalID   int
}

type StatusCount struct {
	Status Status
	Count  int
}

type DoctorStatusCounts struct {
	DoctorID   int
	DoctorName string
	Counts     []StatusCount
}

type DoctorPatientCount struct {
	DoctorID   int
	DoctorName string
	Patients   int
}

type CapacityViolation struct {
	DoctorID           int
	Links              int
	MaxPatientsPerHour int
}
