package timezone_test

import (
	"roadbook/shared/timezone"
	"testing"
	"time"
)

func TestTimezoneInit(t *testing.T) {
	// Test Now() function
	now := timezone.Now()
	if now.IsZero() {
		t.Error("Now() returned zero time")
	}

	// Test GetLocation()
	loc := timezone.GetLocation()
	if loc == nil {
		t.Error("GetLocation() returned nil")
	}
}

func TestTimezoneWithStandardLocation(t *testing.T) {
	utcTime := time.Now().UTC()
	appTime := timezone.ToAppTime(utcTime)

	if appTime.Location() == nil {
		t.Error("Expected converted time to have a location")
	}
}

func TestTimezoneFormat(t *testing.T) {
	testTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	formatted := timezone.Format(testTime, "2006-01-02 15:04:05 MST")

	if formatted == "" {
		t.Error("Format() returned empty string")
	}

	parsed, err := timezone.Parse("2006-01-02", "2024-01-01")
	if err != nil {
		t.Errorf("Parse() failed: %v", err)
	}

	if parsed == (time.Time{}) {
		t.Error("Parse() returned a zero time")
	}
}

func TestClock(t *testing.T) {
	if timezone.NewClock().Now().IsZero() {
		t.Error("NewClock().Now() returned zero time")
	}

	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	if got := timezone.FixedClock(fixed).Now(); !got.Equal(fixed) {
		t.Errorf("expected %v, got %v", fixed, got)
	}
}

func TestStartOfHour(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	kolkata := time.FixedZone("IST", 5*60*60+30*60)

	tests := []struct {
		name     string
		input    time.Time
		expected time.Time
		aligned  bool
	}{
		{
			name:     "already aligned",
			input:    time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
			expected: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
			aligned:  true,
		},
		{
			name:     "mid hour",
			input:    time.Date(2025, 3, 1, 10, 42, 7, 11, jakarta),
			expected: time.Date(2025, 3, 1, 10, 0, 0, 0, jakarta),
		},
		{
			name:     "half hour offset zone",
			input:    time.Date(2025, 3, 1, 23, 59, 0, 0, kolkata),
			expected: time.Date(2025, 3, 1, 23, 0, 0, 0, kolkata),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := timezone.StartOfHour(tt.input)
			if !got.Equal(tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}

			if timezone.IsStartOfHour(tt.input) != tt.aligned {
				t.Errorf("expected IsStartOfHour to be %v", tt.aligned)
			}
		})
	}
}
