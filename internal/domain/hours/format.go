package hours

import (
	"fmt"
	"time"
)

// FormatDate renders a stored date as month/day/year.
// Unparsable values are returned unchanged.
func FormatDate(date string) string {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("1/2/2006")
}

// FormatTime converts a 24-hour "HH:MM" value to 12-hour time with AM/PM.
func FormatTime(clock string) string {
	minutes, err := parseClock(clock)
	if err != nil {
		return clock
	}
	hour, minute := minutes/60, minutes%60

	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, minute, period)
}
