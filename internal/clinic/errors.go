package clinic

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrIneligible         = errors.New("doctor is not eligible for appointment")
	ErrTimeslotMismatch   = errors.New("doctor has no open timeslot matching the appointment")
	ErrCapacityExceeded   = errors.New("doctor already has the maximum number of patients")
	ErrBoundToOtherDoctor = errors.New("appointment already exists under a different doctor")
	ErrAppointmentPlaced  = errors.New("appointment is already in PA status")
	ErrUnknownStatus      = errors.New("unknown appointment status")
	ErrBookingInProgress  = errors.New("doctor or appointment is currently being booked, please retry")
	ErrBookingConflict    = errors.New("booking conflicted with a concurrent write")
	ErrDuplicateEntry     = errors.New("duplicate entry")
)

type Entity string

const (
	EntityDoctor      Entity = "doctor"
	EntityPatient     Entity = "patient"
	EntityAppointment Entity = "appointment"
	EntityDepartment  Entity = "department"
)

// NotFoundError reports a referenced identifier that does not exist.
type NotFoundError struct {
	Entity Entity
	Key    string
}

func notFound(entity Entity, id int) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: strconv.Itoa(id)}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

type IneligibleReason string

const (
	ReasonTimeslotMismatch   IneligibleReason = "timeslot_mismatch"
	ReasonCapacityExceeded   IneligibleReason = "capacity_exceeded"
	ReasonBoundToOtherDoctor IneligibleReason = "bound_to_other_doctor"
)

// IneligibleError keeps the precise reason a doctor could not take an
// appointment. It matches both ErrIneligible and the reason's sentinel.
type IneligibleError struct {
	Reason        IneligibleReason
	DoctorID      int
	AppointmentID int
}

func (e *IneligibleError) cause() error {
	switch e.Reason {
	case ReasonTimeslotMismatch:
		return ErrTimeslotMismatch
	case ReasonCapacityExceeded:
		return ErrCapacityExceeded
	case ReasonBoundToOtherDoctor:
		return ErrBoundToOtherDoctor
	}
	return ErrIneligible
}

func (e *IneligibleError) Error() string {
	return fmt.Sprintf("doctor %d, appointment %d: %s", e.DoctorID, e.AppointmentID, e.cause())
}

func (e *IneligibleError) Is(target error) bool {
	return target == ErrIneligible || target == e.cause()
}

// UserMessage is the combined text shown to people; timeslot and capacity
// failures are not told apart there.
func (e *IneligibleError) UserMessage() string {
	if e.Reason == ReasonBoundToOtherDoctor {
		return "This appointment already exists under a different doctor. Please retry."
	}
	return fmt.Sprintf("Doctor ID %d either does not have an open timeslot at the time of appointment %d "+
		"or already has the maximum number of patients/appointments for that timeslot.",
		e.DoctorID, e.AppointmentID)
}

// InputError is a field that failed a validator.
type InputError struct {
	Field string
	Value string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// StoreError wraps any persistence failure. It is never swallowed.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
