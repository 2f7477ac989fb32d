package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/clinic-booking/internal/clinic"
	"github.com/hackgods/clinic-booking/internal/metrics"
)

type BookingService interface {
	Book(ctx context.Context, req clinic.BookingRequest) (*clinic.Booking, error)
}

type RegistryService interface {
	AddDoctor(ctx context.Context, in clinic.DoctorInput) (*clinic.Doctor, error)
	AddPatient(ctx context.Context, in clinic.PatientInput) (*clinic.Patient, error)
	AddAppointment(ctx context.Context, in clinic.AppointmentInput) (*clinic.Appointment, error)
	ResolvePatient(ctx context.Context, in clinic.PatientInput) (*clinic.Patient, bool, error)
}

type ReportService interface {
	DoctorAppointments(ctx context.Context, doctorID int, from, to string) ([]clinic.Appointment, error)
	AvailableByDepartment(ctx context.Context, departmentName, date string) ([]clinic.Appointment, error)
	StatusCountsPerDoctor(ctx context.Context) ([]clinic.DoctorStatusCounts, error)
	PatientsPerDoctor(ctx context.Context, status string) ([]clinic.DoctorPatientCount, error)
	CapacityViolations(ctx context.Context) ([]clinic.CapacityViolation, error)
}

type RouterConfig struct {
	Bookings BookingService
	Registry RegistryService
	Reports  ReportService
	Health   *HealthHandler
	Metrics  *metrics.Metrics
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	if cfg.Health != nil {
		r.Get("/health/live", cfg.Health.Liveness)
		r.Get("/health/ready", cfg.Health.Readiness)
	}

	// Registration
	r.Post("/doctors", createDoctorHandler(cfg.Registry))
	r.Post("/patients", createPatientHandler(cfg.Registry))
	r.Post("/appointments", createAppointmentHandler(cfg.Registry))

	r.Post("/bookings", createBookingHandler(cfg.Bookings, cfg.Registry))

	// Reports
	r.Get("/doctors/{id}/appointments", doctorAppointmentsHandler(cfg.Reports))
	r.Get("/departments/{name}/appointments", departmentAvailableHandler(cfg.Reports))
	r.Route("/reports", func(r chi.Router) {
		r.Get("/status-counts", statusCountsHandler(cfg.Reports))
		r.Get("/patients", patientsPerDoctorHandler(cfg.Reports))
		r.Get("/capacity-violations", capacityViolationsHandler(cfg.Reports))
	})

	return r
}
