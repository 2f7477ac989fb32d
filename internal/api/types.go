package api

type CreateDoctorRequest struct {
	Name         string `json:"name"`
	Specialty    string `json:"specialty"`
	DepartmentID int    `json:"dept_id"`
}

type DoctorResponse struct {
	ID           int    `json:"doctor_id"`
	Name         string `json:"name"`
	Specialty    string `json:"specialty"`
	DepartmentID int    `json:"dept_id"`
}

type CreatePatientRequest struct {
	Name    string `json:"name"`
	Gender  string `json:"gender"`
	Age     int    `json:"age"`
	Address string `json:"address"`
}

type PatientResponse struct {
	ID         int    `json:"patient_id"`
	Name       string `json:"name"`
	Gender     string `json:"gender"`
	Age        int    `json:"age"`
	Address    string `json:"address"`
	VisitCount int    `json:"number_of_appts"`
}

type CreateAppointmentRequest struct {
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
	Status   string `json:"status"`
}

type AppointmentResponse struct {
	ID       int    `json:"appnt_id"`
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
	Status   string `json:"status"`
}

// CreateBookingRequest names the patient either by id or by the details
// used to look them up (and register them when unknown).
type CreateBookingRequest struct {
	PatientID     *int                  `json:"patient_id,omitempty"`
	Patient       *CreatePatientRequest `json:"patient,omitempty"`
	DoctorID      int                   `json:"doctor_id"`
	AppointmentID int                   `json:"appointment_id"`
}

type BookingResponse struct {
	PatientID      int    `json:"patient_id"`
	PatientCreated bool   `json:"patient_created,omitempty"`
	DoctorID       int    `json:"doctor_id"`
	AppointmentID  int    `json:"appointment_id"`
	From           string `json:"from"`
	To             string `json:"to"`
	Mutated        bool   `json:"mutated"`
	LinkCreated    bool   `json:"link_created"`
	VisitCreated   bool   `json:"visit_created"`
	HospitalID     int    `json:"hospital_id,omitempty"`
}

type StatusCountResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type DoctorStatusCountsResponse struct {
	DoctorID   int                   `json:"doctor_id"`
	DoctorName string                `json:"doctor_name"`
	Counts     []StatusCountResponse `json:"counts"`
}

type DoctorPatientCountResponse struct {
	DoctorID   int    `json:"doctor_id"`
	DoctorName string `json:"doctor_name"`
	Patients   int    `json:"patients"`
}

type CapacityViolationResponse struct {
	DoctorID           int `json:"doctor_id"`
	Links              int `json:"links"`
	MaxPatientsPerHour int `json:"max_patients_per_hour"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
