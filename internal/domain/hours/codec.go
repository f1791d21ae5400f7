package hours

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// decodeCollection parses a stored value. Records written before ids
// existed are given one; assigned reports whether that happened.
func decodeCollection(data []byte, newID func() string) (sessions []Session, assigned bool, err error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return []Session{}, false, nil
	}
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, false, fmt.Errorf("decoding sessions: %w", err)
	}
	if sessions == nil {
		sessions = []Session{}
	}
	for i := range sessions {
		if sessions[i].ID == "" {
			sessions[i].ID = newID()
			assigned = true
		}
	}
	return sessions, assigned, nil
}

func encodeCollection(sessions []Session) ([]byte, error) {
	if sessions == nil {
		sessions = []Session{}
	}
	data, err := json.Marshal(sessions)
	if err != nil {
		return nil, fmt.Errorf("encoding sessions: %w", err)
	}
	return data, nil
}

// sortNewestFirst orders sessions by date, newest first. Dates are
// "YYYY-MM-DD" so string order is date order. Equal dates keep their
// insertion order.
func sortNewestFirst(sessions []Session) {
	slices.SortStableFunc(sessions, newestFirst)
}

func sortedNewestFirst(sessions []Session) bool {
	return slices.IsSortedFunc(sessions, newestFirst)
}

func newestFirst(a, b Session) int {
	return strings.Compare(b.Date, a.Date)
}
