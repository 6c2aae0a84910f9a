package model

import (
	"fmt"
	"strconv"
	"time"
)

// DateTimeLayout is the fixed wire format for all timestamps. Values carry no
// timezone; comparisons treat them as naive instants.
const DateTimeLayout = "2006-01-02 15:04:05"

// DateTime is a second-precision, timezone-naive timestamp.
type DateTime struct {
	time.Time
}

// NewDateTime truncates t to second precision.
func NewDateTime(t time.Time) DateTime {
	return DateTime{t.Truncate(time.Second)}
}

// ParseDateTime parses a wire-format timestamp.
func ParseDateTime(s string) (DateTime, error) {
	t, err := time.Parse(DateTimeLayout, s)
	if err != nil {
		return DateTime{}, fmt.Errorf("%w: bad timestamp %q", ErrBadDateTime, s)
	}
	return DateTime{t}, nil
}

// String formats the timestamp in the wire layout.
func (d DateTime) String() string {
	return d.Format(DateTimeLayout)
}

// MarshalJSON encodes the timestamp as a wire-format string.
func (d DateTime) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}

// UnmarshalJSON decodes a wire-format string.
func (d *DateTime) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("%w: bad timestamp %s", ErrBadDateTime, b)
	}
	parsed, err := ParseDateTime(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
