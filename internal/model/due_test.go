package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDue(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want time.Time
	}{
		{in: "45", want: now.Add(45 * time.Minute)},
		{in: "+30m", want: now.Add(30 * time.Minute)},
		{in: "1h30m", want: now.Add(90 * time.Minute)},
		{in: "2025-03-15T10:00:00Z", want: time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)},
		{in: "2025-03-15 10:00", want: time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)},
		{in: "17:45", want: time.Date(2025, 3, 14, 17, 45, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDue(tt.in, now)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}

	for _, bad := range []string{"", "tomorrow", "2025-13-40 10:00"} {
		_, err := ParseDue(bad, now)
		assert.Error(t, err, bad)
	}
}

func TestFormatCountdown(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, "due in 12m", FormatCountdown(now.Add(12*time.Minute), now))
	assert.Equal(t, "due in 1h05m", FormatCountdown(now.Add(65*time.Minute), now))
	assert.Equal(t, "due in 2d03h", FormatCountdown(now.Add(51*time.Hour), now))
	assert.Equal(t, "due in 0m", FormatCountdown(now, now))
	assert.Equal(t, "OVERDUE", FormatCountdown(now.Add(-time.Second), now))
}
