package hours

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeCollection(t *testing.T) {
	ids := 0
	newID := func() string { ids++; return "gen" }

	sessions, assigned, err := decodeCollection([]byte("  "), newID)
	require.NoError(t, err)
	require.False(t, assigned)
	require.Empty(t, sessions)

	sessions, assigned, err = decodeCollection([]byte(`null`), newID)
	require.NoError(t, err)
	require.False(t, assigned)
	require.NotNil(t, sessions)

	sessions, assigned, err = decodeCollection([]byte(`[{"id":"a","date":"2024-01-01","startTime":"09:00","endTime":"10:00"},{"date":"2024-01-02","startTime":"09:00","endTime":"10:00"}]`), newID)
	require.NoError(t, err)
	require.True(t, assigned)
	require.Equal(t, "a", sessions[0].ID)
	require.Equal(t, "gen", sessions[1].ID)
	require.Equal(t, 1, ids)

	_, _, err = decodeCollection([]byte(`{"date":1}`), newID)
	require.Error(t, err)
}

func TestSortNewestFirst(t *testing.T) {
	sessions := []Session{
		{ID: "a", Date: "2024-01-05"},
		{ID: "b", Date: "2024-03-01"},
		{ID: "c", Date: "2024-01-05"},
	}
	require.False(t, sortedNewestFirst(sessions))

	sortNewestFirst(sessions)
	require.True(t, sortedNewestFirst(sessions))
	require.Equal(t, []string{"b", "a", "c"}, []string{sessions[0].ID, sessions[1].ID, sessions[2].ID})
}
