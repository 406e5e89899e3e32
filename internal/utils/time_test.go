package utils

import (
	"testing"
	"time"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "empty string returns local", timezone: "", wantErr: false},
		{name: "Local returns local", timezone: "Local", wantErr: false},
		{name: "valid timezone UTC", timezone: "UTC", wantErr: false},
		{name: "valid timezone America/New_York", timezone: "America/New_York", wantErr: false},
		{name: "invalid timezone", timezone: "Invalid/Timezone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadLocation() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && loc == nil {
				t.Errorf("LoadLocation() returned nil location without error")
			}
		})
	}
}

func TestNowInTimezoneInvalid(t *testing.T) {
	if _, err := NowInTimezone("Nowhere/Special"); err == nil {
		t.Error("expected error for invalid timezone")
	}
	if !ValidateTimezone("Europe/London") {
		t.Error("Europe/London should be valid")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid date", input: "2024-03-15", wantErr: false},
		{name: "leap day", input: "2024-02-29", wantErr: false},
		{name: "non leap year", input: "2023-02-29", wantErr: true},
		{name: "wrong layout", input: "15/03/2024", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if ValidateDate(tt.input) == tt.wantErr {
				t.Errorf("ValidateDate(%q) disagrees with ParseDate", tt.input)
			}
		})
	}
}

func TestAddDays(t *testing.T) {
	tests := []struct {
		date string
		n    int
		want string
	}{
		{"2024-03-01", -1, "2024-02-29"},
		{"2023-12-31", 1, "2024-01-01"},
		{"2024-01-01", -1, "2023-12-31"},
		{"2024-03-10", 0, "2024-03-10"},
	}

	for _, tt := range tests {
		got, err := AddDays(tt.date, tt.n)
		if err != nil {
			t.Fatalf("AddDays(%q, %d) error = %v", tt.date, tt.n, err)
		}
		if got != tt.want {
			t.Errorf("AddDays(%q, %d) = %q, want %q", tt.date, tt.n, got, tt.want)
		}
	}
}

func TestFakeClock(t *testing.T) {
	start := time.Date(2024, 6, 30, 23, 0, 0, 0, time.UTC)
	c := NewFakeClock(start)
	if got := Today(c); got != "2024-06-30" {
		t.Errorf("Today() = %q, want 2024-06-30", got)
	}
	c.Advance(2 * time.Hour)
	if got := Today(c); got != "2024-07-01" {
		t.Errorf("Today() after advance = %q, want 2024-07-01", got)
	}
	c.Set(start)
	if !c.Now().Equal(start) {
		t.Errorf("Set did not reset the clock")
	}
}
