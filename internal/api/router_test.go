package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-booking/internal/clinic"
	"github.com/hackgods/clinic-booking/internal/metrics"
)

type fakeBookings struct {
	got    clinic.BookingRequest
	result *clinic.Booking
	err    error
}

func (f *fakeBookings) Book(_ context.Context, req clinic.BookingRequest) (*clinic.Booking, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	b := *f.result
	b.BookingRequest = req
	return &b, nil
}

type fakeRegistry struct {
	err      error
	resolved *clinic.Patient
	created  bool
}

func (f *fakeRegistry) AddDoctor(_ context.Context, in clinic.DoctorInput) (*clinic.Doctor, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &clinic.Doctor{ID: 1, Name: in.Name, Specialty: in.Specialty, DepartmentID: in.DepartmentID}, nil
}

func (f *fakeRegistry) AddPatient(_ context.Context, in clinic.PatientInput) (*clinic.Patient, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &clinic.Patient{ID: 2, Name: in.Name, Gender: in.Gender, Age: in.Age, Address: in.Address}, nil
}

func (f *fakeRegistry) AddAppointment(_ context.Context, in clinic.AppointmentInput) (*clinic.Appointment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &clinic.Appointment{ID: 3, Date: in.Date, Timeslot: in.Timeslot, Status: clinic.Status(in.Status)}, nil
}

func (f *fakeRegistry) ResolvePatient(context.Context, clinic.PatientInput) (*clinic.Patient, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	return f.resolved, f.created, nil
}

type fakeReports struct {
	err        error
	appts      []clinic.Appointment
	lastStatus string
}

func (f *fakeReports) DoctorAppointments(context.Context, int, string, string) ([]clinic.Appointment, error) {
	return f.appts, f.err
}

func (f *fakeReports) AvailableByDepartment(context.Context, string, string) ([]clinic.Appointment, error) {
	return f.appts, f.err
}

func (f *fakeReports) StatusCountsPerDoctor(context.Context) ([]clinic.DoctorStatusCounts, error) {
	return []clinic.DoctorStatusCounts{{
		DoctorID: 1, DoctorName: "Ada",
		Counts: []clinic.StatusCount{{Status: clinic.StatusActive, Count: 2}},
	}}, f.err
}

func (f *fakeReports) PatientsPerDoctor(_ context.Context, status string) ([]clinic.DoctorPatientCount, error) {
	f.lastStatus = status
	return nil, f.err
}

func (f *fakeReports) CapacityViolations(context.Context) ([]clinic.CapacityViolation, error) {
	return []clinic.CapacityViolation{{DoctorID: 4, Links: 3, MaxPatientsPerHour: 2}}, f.err
}

type testServer struct {
	bookings *fakeBookings
	registry *fakeRegistry
	reports  *fakeReports
	handler  http.Handler
}

func newTestServer() *testServer {
	ts := &testServer{
		bookings: &fakeBookings{result: &clinic.Booking{From: clinic.StatusAvailable, To: clinic.StatusActive, Mutated: true, LinkCreated: true, VisitCreated: true, HospitalID: 100}},
		registry: &fakeRegistry{},
		reports:  &fakeReports{},
	}
	ok := func(context.Context) error { return nil }
	ts.handler = NewRouter(RouterConfig{
		Bookings: ts.bookings,
		Registry: ts.registry,
		Reports:  ts.reports,
		Health:   NewHealthHandler(ok, ok, "test", "v0"),
		Metrics:  metrics.New(),
	})
	return ts
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestCreateBooking_ByPatientID(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPost, "/bookings", `{"patient_id":5,"doctor_id":1,"appointment_id":7}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decode[BookingResponse](t, rec)
	assert.Equal(t, "AV", resp.From)
	assert.Equal(t, "AC", resp.To)
	assert.Equal(t, clinic.BookingRequest{PatientID: 5, DoctorID: 1, AppointmentID: 7}, ts.bookings.got)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestCreateBooking_ByPatientDetails(t *testing.T) {
	ts := newTestServer()
	ts.registry.resolved = &clinic.Patient{ID: 12}
	ts.registry.created = true

	rec := ts.do(http.MethodPost, "/bookings",
		`{"patient":{"name":"Jane Roe","gender":"F","age":29,"address":"4 Oak Ave"},"doctor_id":1,"appointment_id":7}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decode[BookingResponse](t, rec)
	assert.Equal(t, 12, resp.PatientID)
	assert.True(t, resp.PatientCreated)
}

func TestCreateBooking_NoopIsOK(t *testing.T) {
	ts := newTestServer()
	ts.bookings.result = &clinic.Booking{From: clinic.StatusWaitlisted, To: clinic.StatusWaitlisted}

	rec := ts.do(http.MethodPost, "/bookings", `{"patient_id":5,"doctor_id":1,"appointment_id":7}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[BookingResponse](t, rec).Mutated)
}

func TestCreateBooking_BadRequests(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPost, "/bookings", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/bookings", `{"doctor_id":1,"appointment_id":7}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_patient", decode[ErrorResponse](t, rec).Error)
}

func TestCreateBooking_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"doctor missing", &clinic.NotFoundError{Entity: clinic.EntityDoctor, Key: "9"}, http.StatusNotFound, "doctor_not_found"},
		{"timeslot", &clinic.IneligibleError{Reason: clinic.ReasonTimeslotMismatch, DoctorID: 1, AppointmentID: 7}, http.StatusConflict, "timeslot_mismatch"},
		{"bound", &clinic.IneligibleError{Reason: clinic.ReasonBoundToOtherDoctor}, http.StatusConflict, "bound_to_other_doctor"},
		{"placed", clinic.ErrAppointmentPlaced, http.StatusConflict, "appointment_placed"},
		{"locked", clinic.ErrBookingInProgress, http.StatusConflict, "booking_in_progress"},
		{"serialization", clinic.ErrBookingConflict, http.StatusConflict, "booking_conflict"},
		{"store", &clinic.StoreError{Op: "create link", Err: errors.New("eof")}, http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer()
			ts.bookings.err = tt.err

			rec := ts.do(http.MethodPost, "/bookings", `{"patient_id":5,"doctor_id":1,"appointment_id":7}`)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decode[ErrorResponse](t, rec).Error)
		})
	}
}

func TestCreateBooking_IneligibleUsesUserMessage(t *testing.T) {
	ts := newTestServer()
	ts.bookings.err = &clinic.IneligibleError{Reason: clinic.ReasonCapacityExceeded, DoctorID: 1, AppointmentID: 7}

	rec := ts.do(http.MethodPost, "/bookings", `{"patient_id":5,"doctor_id":1,"appointment_id":7}`)
	assert.Contains(t, decode[ErrorResponse](t, rec).Details, "Doctor ID 1")
}

func TestRegistration(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPost, "/doctors", `{"name":"Ada","specialty":"Cardiology","dept_id":10}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 10, decode[DoctorResponse](t, rec).DepartmentID)

	rec = ts.do(http.MethodPost, "/patients", `{"name":"Jane","gender":"F","age":29,"address":"x"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 2, decode[PatientResponse](t, rec).ID)

	rec = ts.do(http.MethodPost, "/appointments", `{"date":"2024-03-15","time_slot":"09:00-10:00","status":"AV"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "09:00-10:00", decode[AppointmentResponse](t, rec).TimeSlot)
}

func TestRegistration_Errors(t *testing.T) {
	ts := newTestServer()

	ts.registry.err = &clinic.InputError{Field: "date", Value: "2024-02-30"}
	rec := ts.do(http.MethodPost, "/appointments", `{"date":"2024-02-30","time_slot":"09:00-10:00","status":"AV"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "invalid_date", decode[ErrorResponse](t, rec).Error)

	ts.registry.err = clinic.ErrDuplicateEntry
	rec = ts.do(http.MethodPost, "/patients", `{"name":"Jane","gender":"F","age":29,"address":"x"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestReports(t *testing.T) {
	ts := newTestServer()
	ts.reports.appts = []clinic.Appointment{{ID: 3, Date: "2024-01-02", Timeslot: "09:00-10:00", Status: clinic.StatusAvailable}}

	rec := ts.do(http.MethodGet, "/doctors/1/appointments?from=2024-01-01&to=2024-01-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]AppointmentResponse](t, rec), 1)

	rec = ts.do(http.MethodGet, "/doctors/abc/appointments", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodGet, "/departments/Cardiology/appointments?date=2024-01-02", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodGet, "/reports/status-counts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	counts := decode[[]DoctorStatusCountsResponse](t, rec)
	assert.Equal(t, "AC", counts[0].Counts[0].Status)

	rec = ts.do(http.MethodGet, "/reports/patients?status=WL", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
	assert.Equal(t, "WL", ts.reports.lastStatus)

	rec = ts.do(http.MethodGet, "/reports/capacity-violations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[[]CapacityViolationResponse](t, rec)[0].Links)
}

func TestReports_NotFoundDepartment(t *testing.T) {
	ts := newTestServer()
	ts.reports.err = &clinic.NotFoundError{Entity: clinic.EntityDepartment, Key: "Oncology"}

	rec := ts.do(http.MethodGet, "/departments/Oncology/appointments?date=2024-01-02", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "department_not_found", decode[ErrorResponse](t, rec).Error)
}

func TestHealth(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("down") }

	tests := []struct {
		name     string
		pg, rdb  PingFunc
		code     int
		expected string
	}{
		{"all up", up, up, http.StatusOK, "ok"},
		{"redis down", up, down, http.StatusOK, "degraded"},
		{"postgres down", down, up, http.StatusServiceUnavailable, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewRouter(RouterConfig{Health: NewHealthHandler(tt.pg, tt.rdb, "test", "v0")})
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.expected, decode[ReadinessResponse](t, rec).Status)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer()
	ts.do(http.MethodGet, "/health/live", "")

	rec := ts.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{endpoint="/health/live",method="GET",status="200"} 1`)
}

func TestRequestIDIsEchoed(t *testing.T) {
	ts := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}
