package hours

import (
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// ValidateInput checks the fields required to store a session and returns
// the normalized input.
//
// Times are compared as strings. That is only sound because both are
// zero-padded 24-hour "HH:MM" values, so the format is checked first.
func ValidateInput(in Input) (Input, error) {
	in = Input{
		Date:      strings.TrimSpace(in.Date),
		StartTime: strings.TrimSpace(in.StartTime),
		EndTime:   strings.TrimSpace(in.EndTime),
	}

	if in.Date == "" {
		return Input{}, &ValidationError{Field: "date", Reason: "date is required"}
	}
	if !validDate(in.Date) {
		return Input{}, &ValidationError{Field: "date", Reason: "date must be YYYY-MM-DD"}
	}

	if in.StartTime == "" || in.EndTime == "" {
		return Input{}, &ValidationError{Field: "time", Reason: "start and end times are required"}
	}
	if _, err := parseClock(in.StartTime); err != nil {
		return Input{}, &ValidationError{Field: "startTime", Reason: "time must be HH:MM"}
	}
	if _, err := parseClock(in.EndTime); err != nil {
		return Input{}, &ValidationError{Field: "endTime", Reason: "time must be HH:MM"}
	}
	if in.StartTime > in.EndTime {
		return Input{}, &ValidationError{Field: "time", Reason: "start time is after end time"}
	}

	return in, nil
}

func validDate(date string) bool {
	if len(date) != len(dateLayout) {
		return false
	}
	_, err := time.Parse(dateLayout, date)
	return err == nil
}

// parseClock returns minutes since midnight for a strict "HH:MM" value.
func parseClock(clock string) (int, error) {
	if len(clock) != len(clockLayout) {
		return 0, ErrInvalidInput
	}
	t, err := time.Parse(clockLayout, clock)
	if err != nil {
		return 0, ErrInvalidInput
	}
	return t.Hour()*60 + t.Minute(), nil
}
