package timefmt

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrInvalidTimeFormat is returned for input that does not match
// "HH:MM" or "hh:mm AM/PM".
var ErrInvalidTimeFormat = errors.New("invalid time format")

var (
	re24 = regexp.MustCompile(`^([0-9]{1,2}):([0-9]{2})$`)
	re12 = regexp.MustCompile(`^([0-9]{1,2}):([0-9]{2}) (AM|PM)$`)
)

// To24Hour converts a 12-hour label like "08:00 AM" to "08:00".
// The empty string maps to the empty string.
func To24Hour(label string) (string, error) {
	if label == "" {
		return "", nil
	}

	m := re12.FindStringSubmatch(label)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeFormat, label)
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	meridian := m[3]

	if hour < 1 || hour > 12 || minute > 59 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeFormat, label)
	}

	if meridian == "PM" && hour != 12 {
		hour += 12
	}
	if meridian == "AM" && hour == 12 {
		hour = 0
	}

	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// To12Hour converts a 24-hour time like "14:30" to "02:30 PM".
func To12Hour(time24 string) (string, error) {
	m := re24.FindStringSubmatch(time24)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeFormat, time24)
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])

	if hour > 23 || minute > 59 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeFormat, time24)
	}

	meridian := "AM"
	if hour >= 12 {
		meridian = "PM"
	}
	hour12 := ((hour + 11) % 12) + 1

	return fmt.Sprintf("%02d:%02d %s", hour12, minute, meridian), nil
}
