package clinic

import "github.com/hackgods/clinic-booking/internal/validate"

type Status string

const (
	StatusPlaced     Status = validate.StatusPlaced
	StatusActive     Status = validate.StatusActive
	StatusAvailable  Status = validate.StatusAvailable
	StatusWaitlisted Status = validate.StatusWaitlisted
)

func (s Status) Valid() bool {
	return validate.Status(string(s))
}

// Transition applies one booking attempt to an appointment in status s.
// mutated is true only when the new status has to be persisted:
//
//	PA -> rejected with ErrAppointmentPlaced
//	AC -> WL (mutated)
//	AV -> AC (mutated)
//	WL -> WL (already fully committed)
func (s Status) Transition() (next Status, mutated bool, err error) {
	switch s {
	case StatusPlaced:
		return StatusPlaced, false, ErrAppointmentPlaced
	case StatusActive:
		return StatusWaitlisted, true, nil
	case StatusAvailable:
		return StatusActive, true, nil
	case StatusWaitlisted:
		return StatusWaitlisted, false, nil
	default:
		return s, false, ErrUnknownStatus
	}
}
