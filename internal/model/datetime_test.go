package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateTime(t *testing.T) {
	d, err := ParseDateTime("2026-06-15 18:30:00")
	require.NoError(t, err)
	assert.Equal(t, "2026-06-15 18:30:00", d.String())
	assert.Equal(t, 2026, d.Year())
	assert.Equal(t, 30, d.Minute())
}

func TestParseDateTimeMalformed(t *testing.T) {
	for _, in := range []string{"", "2026-06-15T18:30:00Z", "15.06.2026 18:30", "not a date"} {
		_, err := ParseDateTime(in)
		assert.ErrorIs(t, err, ErrBadDateTime, "input %q", in)
	}
}

func TestNewDateTimeTruncatesToSecond(t *testing.T) {
	d := NewDateTime(time.Date(2026, 6, 15, 18, 30, 0, 999_000_000, time.UTC))
	assert.Equal(t, "2026-06-15 18:30:00", d.String())
}

func TestDateTimeJSON(t *testing.T) {
	d, err := ParseDateTime("2026-06-15 18:30:00")
	require.NoError(t, err)

	b, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2026-06-15 18:30:00"`, string(b))

	var back DateTime
	require.NoError(t, back.UnmarshalJSON(b))
	assert.True(t, back.Equal(d.Time))

	assert.ErrorIs(t, back.UnmarshalJSON([]byte(`"garbage"`)), ErrBadDateTime)
	assert.ErrorIs(t, back.UnmarshalJSON([]byte(`42`)), ErrBadDateTime)
}
