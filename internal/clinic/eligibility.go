package clinic

import (
	"context"
	"slices"
)

// CheckEligibility runs the four booking preconditions in order and stops at
// the first failure:
//
//  1. doctor and appointment exist
//  2. the appointment's timeslot is one the doctor accepts
//  3. the doctor is below its patients-per-hour bound
//  4. the appointment is unbound or bound to this same doctor
//
// Rules 2 and 3 treat missing data differently. A doctor with no
// configured timeslots accepts nothing, while a doctor with no linked
// appointments always has capacity. A doctor without a capacity row is not
// eligible.
func (e *Engine) CheckEligibility(ctx context.Context, doctorID, appointmentID int) error {
	ok, err := e.store.DoctorExists(ctx, doctorID)
	if err != nil {
		return err
	}
	if !ok {
		return notFound(EntityDoctor, doctorID)
	}

	ok, err = e.store.AppointmentExists(ctx, appointmentID)
	if err != nil {
		return err
	}
	if !ok {
		return notFound(EntityAppointment, appointmentID)
	}

	ineligible := func(reason IneligibleReason) error {
		return &IneligibleError{Reason: reason, DoctorID: doctorID, AppointmentID: appointmentID}
	}

	match, err := e.timeslotMatches(ctx, doctorID, appointmentID)
	if err != nil {
		return err
	}
	if !match {
		return ineligible(ReasonTimeslotMismatch)
	}

	within, err := e.withinCapacity(ctx, doctorID)
	if err != nil {
		return err
	}
	if !within {
		return ineligible(ReasonCapacityExceeded)
	}

	bound, isBound, err := e.store.BoundDoctorOf(ctx, appointmentID)
	if err != nil {
		return err
	}
	if isBound && bound != doctorID {
		return ineligible(ReasonBoundToOtherDoctor)
	}

	return nil
}

func (e *Engine) timeslotMatches(ctx context.Context, doctorID, appointmentID int) (bool, error) {
	slots, err := e.store.DoctorEligibleTimeslots(ctx, doctorID)
	if err != nil {
		return false, err
	}
	if len(slots) == 0 {
		return false, nil
	}

	slot, err := e.store.AppointmentTimeslot(ctx, appointmentID)
	if err != nil {
		return false, err
	}
	return slices.Contains(slots, slot), nil
}

func (e *Engine) withinCapacity(ctx context.Context, doctorID int) (bool, error) {
	limit, ok, err := e.store.DoctorMaxPatientsPerHour(ctx, doctorID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	links, err := e.store.DoctorCurrentLinkCount(ctx, doctorID)
	if err != nil {
		return false, err
	}
	// no prior bookings means capacity is available, even with a zero bound
	if links == 0 {
		return true, nil
	}
	return links < limit, nil
}
