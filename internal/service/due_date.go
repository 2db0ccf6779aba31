package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EditableDateTimeLayout is the wall-clock format used by datetime-local inputs.
const EditableDateTimeLayout = "2006-01-02T15:04"

// Offsets follow the browser convention: minutes added to local time to reach UTC.
const (
	minTimezoneOffset = -14 * 60
	maxTimezoneOffset = 12 * 60
)

var editableInputLayouts = []string{
	EditableDateTimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
}

// DueDateToAbsolute converts a local wall-clock string into a UTC instant.
func DueDateToAbsolute(local string, offsetMinutes int) (time.Time, error) {
	value := strings.TrimSpace(local)
	for _, layout := range editableInputLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed.Add(time.Duration(offsetMinutes) * time.Minute).UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, local)
}

// DueDateToEditable converts an instant into the local wall-clock string, minute precision.
func DueDateToEditable(instant time.Time, offsetMinutes int) string {
	local := instant.UTC().Add(-time.Duration(offsetMinutes) * time.Minute)
	return local.Truncate(time.Minute).Format(EditableDateTimeLayout)
}

// ParseTimezoneOffset reads an offset in minutes. Empty input means UTC.
func ParseTimezoneOffset(raw string) (int, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid timezone offset %q", raw)
	}
	if offset < minTimezoneOffset || offset > maxTimezoneOffset {
		return 0, fmt.Errorf("timezone offset %d out of range", offset)
	}
	return offset, nil
}
