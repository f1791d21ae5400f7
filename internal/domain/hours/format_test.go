package hours

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatTime(t *testing.T) {
	cases := map[string]string{
		"00:05": "12:05 AM",
		"09:30": "9:30 AM",
		"12:00": "12:00 PM",
		"13:45": "1:45 PM",
		"23:59": "11:59 PM",
		"bogus": "bogus",
	}
	for in, want := range cases {
		require.Equal(t, want, FormatTime(in), in)
	}
}

func TestFormatDate(t *testing.T) {
	require.Equal(t, "1/5/2024", FormatDate("2024-01-05"))
	require.Equal(t, "12/31/2023", FormatDate("2023-12-31"))
	require.Equal(t, "not-a-date", FormatDate("not-a-date"))
}

func TestSession_Describe(t *testing.T) {
	sess := Session{Date: "2024-01-05", StartTime: "09:00", EndTime: "13:15"}
	require.Equal(t, "1/5/2024 from 9:00 AM to 1:15 PM", sess.Describe())
}

func TestSession_Minutes(t *testing.T) {
	m, err := Session{StartTime: "09:00", EndTime: "10:30"}.Minutes()
	require.NoError(t, err)
	require.Equal(t, 90, m)

	_, err = Session{ID: "x", StartTime: "10:30", EndTime: "09:00"}.Minutes()
	require.ErrorIs(t, err, ErrCorruptSession)

	_, err = Session{ID: "x", StartTime: "", EndTime: "09:00"}.Minutes()
	require.ErrorIs(t, err, ErrCorruptSession)
}
