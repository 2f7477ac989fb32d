package clinic

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	redisclient "github.com/hackgods/clinic-booking/internal/redis"
)

// Booking outcomes reported to the observer.
const (
	OutcomeBooked             = "booked"
	OutcomeNoop               = "noop"
	OutcomePlaced             = "placed"
	OutcomeNotFound           = "not_found"
	OutcomeTimeslotMismatch   = string(ReasonTimeslotMismatch)
	OutcomeCapacityExceeded   = string(ReasonCapacityExceeded)
	OutcomeBoundToOtherDoctor = string(ReasonBoundToOtherDoctor)
	OutcomeInProgress         = "in_progress"
	OutcomeConflict           = "conflict"
	OutcomeError              = "error"
)

// Observer receives one call per booking attempt.
type Observer interface {
	ObserveBooking(outcome string, took time.Duration)
}

type EngineOptions struct {
	IncrementVisitCountOnBooking bool
}

// Engine decides whether a patient/doctor/appointment triple may be bound
// and commits the status transition plus linkage records.
type Engine struct {
	store    BookingStore
	locker   redisclient.Locker
	opts     EngineOptions
	observer Observer
}

func NewEngine(store BookingStore, locker redisclient.Locker, opts EngineOptions) *Engine {
	return &Engine{
		store:  store,
		locker: locker,
		opts:   opts,
	}
}

// WithObserver attaches a metrics observer.
func (e *Engine) WithObserver(o Observer) *Engine {
	e.observer = o
	return e
}

// Book runs eligibility, the status transition and both linkage writes as a
// single unit: the doctor lock, then the appointment lock, then one
// serializable transaction. Lock contention returns ErrBookingInProgress and
// nothing is retried.
func (e *Engine) Book(ctx context.Context, req BookingRequest) (*Booking, error) {
	start := time.Now()

	var booking *Booking
	err := e.locker.WithLock(ctx, redisclient.DoctorKey(req.DoctorID), func(ctx context.Context) error {
		return e.locker.WithLock(ctx, redisclient.AppointmentKey(req.AppointmentID), func(ctx context.Context) error {
			return e.store.InTx(ctx, func(ctx context.Context) error {
				b, err := e.book(ctx, req)
				if err != nil {
					return err
				}
				booking = b
				return nil
			})
		})
	})
	if errors.Is(err, redisclient.ErrLockNotAcquired) {
		err = ErrBookingInProgress
	}

	outcome := Outcome(booking, err)
	if e.observer != nil {
		e.observer.ObserveBooking(outcome, time.Since(start))
	}

	logEvent := log.Info()
	if outcome == OutcomeError || outcome == OutcomeConflict {
		logEvent = log.Error().Err(err)
	} else if err != nil {
		logEvent = log.Warn().Str("reason", err.Error())
	}
	logEvent.
		Int("patient_id", req.PatientID).
		Int("doctor_id", req.DoctorID).
		Int("appointment_id", req.AppointmentID).
		Str("outcome", outcome).
		Msg("booking attempt")

	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (e *Engine) book(ctx context.Context, req BookingRequest) (*Booking, error) {
	ok, err := e.store.PatientExists(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound(EntityPatient, req.PatientID)
	}

	if err := e.CheckEligibility(ctx, req.DoctorID, req.AppointmentID); err != nil {
		return nil, err
	}

	from, to, mutated, err := e.transition(ctx, req.AppointmentID)
	if err != nil {
		return nil, err
	}

	booking := &Booking{
		BookingRequest: req,
		From:           from,
		To:             to,
		Mutated:        mutated,
	}
	if !mutated {
		return booking, nil
	}

	booking.LinkCreated, err = e.store.CreateLink(ctx, req.AppointmentID, req.DoctorID)
	if err != nil {
		return nil, err
	}

	booking.HospitalID, err = e.store.FacilityOf(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}

	booking.VisitCreated, err = e.store.CreateVisitRecord(ctx, VisitRecord{
		HospitalID:    booking.HospitalID,
		PatientID:     req.PatientID,
		AppointmentID: req.AppointmentID,
	})
	if err != nil {
		return nil, err
	}

	if booking.VisitCreated && e.opts.IncrementVisitCountOnBooking {
		if err := e.store.IncrementVisitCount(ctx, req.PatientID); err != nil {
			return nil, err
		}
	}

	return booking, nil
}

// transition reads the current status, applies Status.Transition and
// persists the new status when the transition mutates.
func (e *Engine) transition(ctx context.Context, appointmentID int) (from, to Status, mutated bool, err error) {
	from, err = e.store.AppointmentStatus(ctx, appointmentID)
	if err != nil {
		return "", "", false, err
	}

	to, mutated, err = from.Transition()
	if err != nil {
		return from, from, false, err
	}
	if mutated {
		if err := e.store.SetAppointmentStatus(ctx, appointmentID, to); err != nil {
			return from, from, false, err
		}
	}
	return from, to, mutated, nil
}

// Outcome classifies a booking result for metrics and logs.
func Outcome(b *Booking, err error) string {
	var ineligible *IneligibleError
	switch {
	case err == nil && b != nil && b.Mutated:
		return OutcomeBooked
	case err == nil:
		return OutcomeNoop
	case errors.As(err, &ineligible):
		return string(ineligible.Reason)
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrAppointmentPlaced):
		return OutcomePlaced
	case errors.Is(err, ErrBookingInProgress):
		return OutcomeInProgress
	case errors.Is(err, ErrBookingConflict):
		return OutcomeConflict
	default:
		return OutcomeError
	}
}
