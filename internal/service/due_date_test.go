package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDueDateToAbsoluteAppliesOffset(t *testing.T) {
	instant, err := DueDateToAbsolute("2024-03-01T10:00", -540)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC), instant)

	instant, err = DueDateToAbsolute("2024-03-01T10:00", 300)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC), instant)
}

func TestDueDateToAbsoluteAcceptsSeconds(t *testing.T) {
	instant, err := DueDateToAbsolute("2024-03-01T10:00:30", 0)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 1, 10, 0, 30, 0, time.UTC), instant)

	instant, err = DueDateToAbsolute("2024-03-01T10:00:30.250", 0)
	require.NoError(t, err)
	require.Equal(t, 250*time.Millisecond, time.Duration(instant.Nanosecond()))
}

func TestDueDateToAbsoluteRejectsMalformedInput(t *testing.T) {
	for _, input := range []string{"", "tomorrow", "2024-13-01T10:00", "2024-03-01 10:00", "2024-03-01"} {
		_, err := DueDateToAbsolute(input, 0)
		require.ErrorIs(t, err, ErrInvalidDateFormat, input)
	}
}

func TestDueDateToEditableTruncatesToMinute(t *testing.T) {
	instant := time.Date(2024, 3, 1, 1, 0, 59, 999, time.UTC)
	require.Equal(t, "2024-03-01T10:00", DueDateToEditable(instant, -540))

	kst := time.FixedZone("KST", 9*3600)
	require.Equal(t, "2024-03-01T01:00", DueDateToEditable(instant.In(kst), 0))
}

func TestDueDateRoundTrip(t *testing.T) {
	cases := []struct {
		local  string
		offset int
		want   string
	}{
		{local: "2024-03-01T10:00", offset: -540, want: "2024-03-01T10:00"},
		{local: "2024-12-31T23:30", offset: 300, want: "2024-12-31T23:30"},
		{local: "2024-03-01T00:15:45", offset: -330, want: "2024-03-01T00:15"},
		{local: "2024-02-29T12:00", offset: 0, want: "2024-02-29T12:00"},
	}

	for _, tc := range cases {
		instant, err := DueDateToAbsolute(tc.local, tc.offset)
		require.NoError(t, err)
		require.Equal(t, tc.want, DueDateToEditable(instant, tc.offset), tc.local)
	}
}

func TestParseTimezoneOffset(t *testing.T) {
	offset, err := ParseTimezoneOffset("")
	require.NoError(t, err)
	require.Zero(t, offset)

	offset, err = ParseTimezoneOffset(" -540 ")
	require.NoError(t, err)
	require.Equal(t, -540, offset)

	_, err = ParseTimezoneOffset("UTC+9")
	require.Error(t, err)

	_, err = ParseTimezoneOffset("900")
	require.Error(t, err)
}
