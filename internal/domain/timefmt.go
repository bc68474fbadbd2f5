package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizeTime renders a TIME OCC integer as "HH:MM".
//
// Rule: 0..23 is a whole hour, 24..59 is minutes past midnight, 100..2359 is
// HMM or HHMM. Every result therefore has an hour in 0..23.
//
// The value is zero-padded to four digits and split by the digit count of the
// original: one or two digits are a bare hour ("HH:00"), three digits split
// after the first, four digits after the second. Two-digit values past 23
// cannot be an hour and are read as minutes past midnight ("00:MM"), which is
// how the export encodes 00:24..00:59. Values outside 0..2359, or with
// minutes above 59, are rejected with ErrMalformedTime.
func NormalizeTime(raw int) (string, error) {
	if raw < 0 || raw > 2359 {
		return "", fmt.Errorf("%w: %d out of range 0..2359", ErrMalformedTime, raw)
	}

	digits := len(strconv.Itoa(raw))
	padded := fmt.Sprintf("%04d", raw)

	var norm string
	switch {
	case digits <= 2 && raw <= 23:
		// One and two digits share this branch: both are hours without minutes.
		norm = padded[2:] + ":00"
	case digits == 2:
		norm = padded[:2] + ":" + padded[2:]
	case digits == 3:
		norm = "0" + padded[1:2] + ":" + padded[2:]
	default:
		norm = padded[:2] + ":" + padded[2:]
	}

	if norm[3:] > "59" || norm[:2] > "23" {
		return "", fmt.Errorf("%w: %d is not a clock time", ErrMalformedTime, raw)
	}
	return norm, nil
}

// ParseRawTime parses the CSV text of a TIME OCC field.
func ParseRawTime(s string) (int, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrMalformedTime, s)
	}
	return v, nil
}

// HourOf parses the hour back out of a normalized "HH:MM" string.
func HourOf(norm string) (int, error) {
	if len(norm) != 5 || norm[2] != ':' {
		return 0, fmt.Errorf("%w: %q is not HH:MM", ErrMalformedTime, norm)
	}
	h, err := strconv.Atoi(norm[:2])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q has no valid hour", ErrMalformedTime, norm)
	}
	return h, nil
}
