package attendance

import "errors"

var (
	ErrDuplicatePunch   = errors.New("a successful punch of this type already exists for the day")
	ErrAbsenceRecorded  = errors.New("the day has already been marked absent")
	ErrCheckInRequired  = errors.New("a successful check-in is required before checking out")
	ErrInvalidPunchType = errors.New("punches must be check_in or check_out")
)
