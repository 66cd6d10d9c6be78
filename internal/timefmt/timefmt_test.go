package timefmt

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTo12Hour(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"00:00", "12:00 AM"},
		{"12:00", "12:00 PM"},
		{"13:05", "01:05 PM"},
		{"08:00", "08:00 AM"},
		{"23:59", "11:59 PM"},
		{"11:59", "11:59 AM"},
	}

	for _, tt := range tests {
		got, err := To12Hour(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got)
	}
}

func TestTo24Hour(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"12:00 AM", "00:00"},
		{"12:00 PM", "12:00"},
		{"08:00 AM", "08:00"},
		{"02:30 PM", "14:30"},
		{"11:59 PM", "23:59"},
		{"", ""},
	}

	for _, tt := range tests {
		got, err := To24Hour(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got)
	}
}

func TestRoundTrip(t *testing.T) {
	for hour := 0; hour < 24; hour++ {
		for minute := 0; minute < 60; minute++ {
			time24 := fmt.Sprintf("%02d:%02d", hour, minute)

			label, err := To12Hour(time24)
			require.NoError(t, err)

			back, err := To24Hour(label)
			require.NoError(t, err)
			assert.Equal(t, time24, back)
		}
	}
}

func TestInvalidInput(t *testing.T) {
	invalid24 := []string{"24:00", "12:60", "1200", "ab:cd", "12:00 PM", " "}
	for _, input := range invalid24 {
		_, err := To12Hour(input)
		assert.ErrorIs(t, err, ErrInvalidTimeFormat, "input %q", input)
	}

	invalid12 := []string{"13:00 PM", "00:30 AM", "12:60 PM", "08:00", "08:00 am", "08:00  PM"}
	for _, input := range invalid12 {
		_, err := To24Hour(input)
		assert.ErrorIs(t, err, ErrInvalidTimeFormat, "input %q", input)
	}
}
