package timeutil

import (
	"testing"
	"time"
)

func TestFormatPosition(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0:00.000"},
		{1.25, "0:01.250"},
		{62.5, "1:02.500"},
		{-0.5, "-0:00.500"},
	}
	for _, tt := range tests {
		if got := FormatPosition(tt.in); got != tt.want {
			t.Errorf("FormatPosition(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{450, "450ms"},
		{1200, "1.2s"},
		{135300, "2m 15.3s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFrameInterval(t *testing.T) {
	if got := FrameInterval(50); got != 20*time.Millisecond {
		t.Errorf("FrameInterval(50) = %v", got)
	}
	if got := FrameInterval(0); got != time.Second/30 {
		t.Errorf("FrameInterval(0) = %v, want 30fps fallback", got)
	}
}
