package hours

import "fmt"

// Session is one logged study session.
type Session struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Input carries the three form fields used to create or edit a session.
type Input struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Minutes returns the length of the session.
// Both times are clock times on the same day; sessions never cross midnight.
func (s Session) Minutes() (int, error) {
	start, err := parseClock(s.StartTime)
	if err != nil {
		return 0, fmt.Errorf("%w: session %s start time %q", ErrCorruptSession, s.ID, s.StartTime)
	}
	end, err := parseClock(s.EndTime)
	if err != nil {
		return 0, fmt.Errorf("%w: session %s end time %q", ErrCorruptSession, s.ID, s.EndTime)
	}
	if end < start {
		return 0, fmt.Errorf("%w: session %s ends before it starts", ErrCorruptSession, s.ID)
	}
	return end - start, nil
}

// Describe renders the session the way the list view shows it.
func (s Session) Describe() string {
	return fmt.Sprintf("%s from %s to %s", FormatDate(s.Date), FormatTime(s.StartTime), FormatTime(s.EndTime))
}

func (s Session) sameSlot(in Input) bool {
	return s.Date == in.Date && s.StartTime == in.StartTime && s.EndTime == in.EndTime
}

// SearchResult holds the sessions whose date matched a search query.
type SearchResult struct {
	Query          string    `json:"query"`
	Sessions       []Session `json:"sessions"`
	CollectionSize int       `json:"collection_size"`
}

// NoResults reports that the query matched nothing.
func (r SearchResult) NoResults() bool {
	return len(r.Sessions) == 0
}

// CollectionEmpty reports that nothing is stored at all, which is distinct
// from a query that matched nothing.
func (r SearchResult) CollectionEmpty() bool {
	return r.CollectionSize == 0
}

// Total is the aggregate duration of every stored session.
type Total struct {
	Hours    int `json:"hours"`
	Minutes  int `json:"minutes"`
	Sessions int `json:"sessions"`
}

func newTotal(minutes, sessions int) Total {
	return Total{Hours: minutes / 60, Minutes: minutes % 60, Sessions: sessions}
}

// InMinutes returns the total expressed in minutes.
func (t Total) InMinutes() int {
	return t.Hours*60 + t.Minutes
}

func (t Total) String() string {
	return fmt.Sprintf("%dh %dm", t.Hours, t.Minutes)
}
