package utils

import "testing"

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name    string
		seconds int64
		want    string
	}{
		{name: "zero", seconds: 0, want: "0:00:00"},
		{name: "seconds only", seconds: 59, want: "0:00:59"},
		{name: "minute boundary", seconds: 60, want: "0:01:00"},
		{name: "mixed", seconds: 3661, want: "1:01:01"},
		{name: "hours unbounded", seconds: 90000, want: "25:00:00"},
		{name: "padding", seconds: 7205, want: "2:00:05"},
		{name: "negative clamps", seconds: -5, want: "0:00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.seconds); got != tt.want {
				t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234567, "-1,234,567"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.n); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
