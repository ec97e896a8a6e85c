package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// unixEpochJulianDay is the julian day number of 1970-01-01T00:00:00Z.
const unixEpochJulianDay = 2440587.5

const secondsPerDay = 86400.0

// dateTimeLayouts are tried in order when parsing date-time fields.
var dateTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"2006-01-02",
}

// ToJulianDay converts t to a (fractional) julian day.
func ToJulianDay(t time.Time) float64 {
	t = t.UTC()
	secs := float64(t.Unix()) + float64(t.Nanosecond())/1e9
	return secs/secondsPerDay + unixEpochJulianDay
}

// FromJulianDay converts a julian day to a UTC time rounded to the millisecond.
func FromJulianDay(jd float64) time.Time {
	ms := (jd - unixEpochJulianDay) * secondsPerDay * 1000
	return time.UnixMilli(int64(ms + 0.5*sign(ms))).UTC()
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

// ParseDateTime parses a date-time string in one of the accepted layouts.
// Times without an offset are interpreted as UTC.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date time %q", s)
}

// ParseJulianDay accepts either a date-time string or a bare julian day number.
func ParseJulianDay(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if jd, err := strconv.ParseFloat(s, 64); err == nil {
		return jd, nil
	}
	t, err := ParseDateTime(s)
	if err != nil {
		return 0, err
	}
	return ToJulianDay(t), nil
}
