package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/clinic-booking/internal/clinic"
)

func doctorAppointmentsHandler(reports ReportService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be an integer")
			return
		}

		q := r.URL.Query()
		appts, err := reports.DoctorAppointments(r.Context(), doctorID, q.Get("from"), q.Get("to"))
		if err != nil {
			handleError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentList(appts))
	}
}

func departmentAvailableHandler(reports ReportService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		appts, err := reports.AvailableByDepartment(r.Context(), name, r.URL.Query().Get("date"))
		if err != nil {
			handleError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentList(appts))
	}
}

func statusCountsHandler(reports ReportService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := reports.StatusCountsPerDoctor(r.Context())
		if err != nil {
			handleError(w, err)
			return
		}

		resp := make([]DoctorStatusCountsResponse, 0, len(rows))
		for _, row := range rows {
			counts := make([]StatusCountResponse, 0, len(row.Counts))
			for _, c := range row.Counts {
				counts = append(counts, StatusCountResponse{Status: string(c.Status), Count: c.Count})
			}
			resp = append(resp, DoctorStatusCountsResponse{
				DoctorID:   row.DoctorID,
				DoctorName: row.DoctorName,
				Counts:     counts,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func patientsPerDoctorHandler(reports ReportService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := reports.PatientsPerDoctor(r.Context(), r.URL.Query().Get("status"))
		if err != nil {
			handleError(w, err)
			return
		}

		resp := make([]DoctorPatientCountResponse, 0, len(rows))
		for _, row := range rows {
			resp = append(resp, DoctorPatientCountResponse{
				DoctorID:   row.DoctorID,
				DoctorName: row.DoctorName,
				Patients:   row.Patients,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func capacityViolationsHandler(reports ReportService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := reports.CapacityViolations(r.Context())
		if err != nil {
			handleError(w, err)
			return
		}

		resp := make([]CapacityViolationResponse, 0, len(rows))
		for _, v := range rows {
			resp = append(resp, CapacityViolationResponse{
				DoctorID:           v.DoctorID,
				Links:              v.Links,
				MaxPatientsPerHour: v.MaxPatientsPerHour,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func toAppointmentList(appts []clinic.Appointment) []AppointmentResponse {
	resp := make([]AppointmentResponse, 0, len(appts))
	for _, a := range appts {
		resp = append(resp, toAppointmentResponse(a))
	}
	return resp
}
