package marketclock

import (
	"testing"
	"time"
)

func TestIsClosed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    time.Time
		expected bool
	}{
		{
			name:     "midnight is closed",
			input:    time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
			expected: true,
		},
		{
			name:     "02:00 is closed",
			input:    time.Date(2024, 3, 4, 2, 0, 0, 0, time.UTC),
			expected: true,
		},
		{
			name:     "07:59:59 is closed",
			input:    time.Date(2024, 3, 4, 7, 59, 59, 0, time.UTC),
			expected: true,
		},
		{
			name:     "08:00 is open",
			input:    time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC),
			expected: false,
		},
		{
			name:     "noon is open",
			input:    time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC),
			expected: false,
		},
		{
			name:     "23:59 is open",
			input:    time.Date(2024, 3, 4, 23, 59, 0, 0, time.UTC),
			expected: false,
		},
		{
			name:     "non-UTC time is converted first",
			input:    time.Date(2024, 3, 4, 11, 0, 0, 0, time.FixedZone("JST", 9*3600)), // 02:00 UTC
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsClosed(tt.input); got != tt.expected {
				t.Errorf("IsClosed(%v) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsWeekend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    time.Time
		expected bool
	}{
		{name: "Saturday", input: time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC), expected: true},
		{name: "Sunday", input: time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC), expected: true},
		{name: "Monday", input: time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC), expected: false},
		{name: "Friday", input: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsWeekend(tt.input); got != tt.expected {
				t.Errorf("IsWeekend(%v) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestUntilPremarketOpen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		now      time.Time
		expected time.Duration
	}{
		{
			name:     "02:00 waits until 04:00 same day",
			now:      time.Date(2024, 3, 4, 2, 0, 0, 0, time.UTC),
			expected: 2 * time.Hour,
		},
		{
			name:     "exactly 04:00 waits a full day",
			now:      time.Date(2024, 3, 4, 4, 0, 0, 0, time.UTC),
			expected: 24 * time.Hour,
		},
		{
			name:     "05:30 waits until 04:00 next day",
			now:      time.Date(2024, 3, 4, 5, 30, 0, 0, time.UTC),
			expected: 22*time.Hour + 30*time.Minute,
		},
		{
			name:     "month boundary rolls over correctly",
			now:      time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC),
			expected: 5 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := UntilPremarketOpen(tt.now)
			if got != tt.expected {
				t.Errorf("UntilPremarketOpen(%v) = %v, want %v", tt.now, got, tt.expected)
			}
		})
	}
}

func TestUntilPremarketOpen_AlwaysPositiveAndBounded(t *testing.T) {
	t.Parallel()

	// 1日分を15分刻みで検証
	base := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 96; i++ {
		now := base.Add(time.Duration(i) * 15 * time.Minute)
		d := UntilPremarketOpen(now)
		if d <= 0 {
			t.Errorf("at %v: expected positive duration, got %v", now, d)
		}
		if d > 26*time.Hour {
			t.Errorf("at %v: expected duration under 26 hours, got %v", now, d)
		}
	}
}
