package api

import (
	"encoding/json"
	"net/http"

	"github.com/hackgods/clinic-booking/internal/clinic"
)

func createDoctorHandler(reg RegistryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateDoctorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		d, err := reg.AddDoctor(r.Context(), clinic.DoctorInput{
			Name:         req.Name,
			Specialty:    req.Specialty,
			DepartmentID: req.DepartmentID,
		})
		if err != nil {
			handleError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, DoctorResponse{
			ID:           d.ID,
			Name:         d.Name,
			Specialty:    d.Specialty,
			DepartmentID: d.DepartmentID,
		})
	}
}

func createPatientHandler(reg RegistryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		p, err := reg.AddPatient(r.Context(), req.input())
		if err != nil {
			handleError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toPatientResponse(p))
	}
}

func createAppointmentHandler(reg RegistryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		a, err := reg.AddAppointment(r.Context(), clinic.AppointmentInput{
			Date:     req.Date,
			Timeslot: req.TimeSlot,
			Status:   req.Status,
		})
		if err != nil {
			handleError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(*a))
	}
}

// createBookingHandler answers 201 when the appointment changed status and
// 200 when the attempt was a no-op on an already waitlisted appointment.
func createBookingHandler(bookings BookingService, reg RegistryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateBookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		var (
			patientID int
			created   bool
		)
		switch {
		case req.PatientID != nil:
			patientID = *req.PatientID
		case req.Patient != nil:
			p, isNew, err := reg.ResolvePatient(r.Context(), req.Patient.input())
			if err != nil {
				handleError(w, err)
				return
			}
			patientID, created = p.ID, isNew
		default:
			writeError(w, http.StatusBadRequest, "missing_patient", "patient_id or patient is required")
			return
		}

		b, err := bookings.Book(r.Context(), clinic.BookingRequest{
			PatientID:     patientID,
			DoctorID:      req.DoctorID,
			AppointmentID: req.AppointmentID,
		})
		if err != nil {
			handleError(w, err)
			return
		}

		status := http.StatusOK
		if b.Mutated {
			status = http.StatusCreated
		}
		writeJSON(w, status, BookingResponse{
			PatientID:      b.PatientID,
			PatientCreated: created,
			DoctorID:       b.DoctorID,
			AppointmentID:  b.AppointmentID,
			From:           string(b.From),
			To:             string(b.To),
			Mutated:        b.Mutated,
			LinkCreated:    b.LinkCreated,
			VisitCreated:   b.VisitCreated,
			HospitalID:     b.HospitalID,
		})
	}
}

func (req CreatePatientRequest) input() clinic.PatientInput {
	return clinic.PatientInput{
		Name:    req.Name,
		Gender:  req.Gender,
		Age:     req.Age,
		Address: req.Address,
	}
}

func toPatientResponse(p *clinic.Patient) PatientResponse {
	return PatientResponse{
		ID:         p.ID,
		Name:       p.Name,
		Gender:     p.Gender,
		Age:        p.Age,
		Address:    p.Address,
		VisitCount: p.VisitCount,
	}
}

func toAppointmentResponse(a clinic.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:       a.ID,
		Date:     a.Date,
		TimeSlot: a.Timeslot,
		Status:   string(a.Status),
	}
}
