package types

import (
	"math"
	"testing"

	"github.com/flywave/go3d/float64/vec4"
)

func TestHexFromLinear(t *testing.T) {
	tests := []struct {
		name string
		in   vec4.T
		want string
	}{
		{"black", vec4.T{0, 0, 0, 1}, "#000000"},
		{"white", vec4.T{1, 1, 1, 1}, "#ffffff"},
		{"linear segment", vec4.T{1, 0, 0.002, 1}, "#ff0007"},
		{"clamped", vec4.T{0.2, 5, -1, 1}, "#7cff00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HexFromLinear(tt.in); got != tt.want {
				t.Errorf("HexFromLinear(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLinearToSRGB8(t *testing.T) {
	tests := []struct {
		in   float64
		want uint8
	}{
		{0, 0},
		{1, 255},
		{0.002, 7},
		{0.2, 124},
		{-3, 0},
		{7, 255},
	}
	for _, tt := range tests {
		if got := LinearToSRGB8(tt.in); got != tt.want {
			t.Errorf("LinearToSRGB8(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestColorRoundTrip(t *testing.T) {
	colors := []vec4.T{
		DefaultPrimaryColor,
		DefaultSecondaryColor,
		DefaultTextColor,
		{0.5, 0.25, 0.125, 1},
		{0.0001, 0.999, 0.0031308, 1},
	}
	for _, c := range colors {
		hex := HexFromLinear(c)
		back, err := LinearFromHex(hex)
		if err != nil {
			t.Fatalf("LinearFromHex(%q): %v", hex, err)
		}
		if again := HexFromLinear(back); again != hex {
			t.Errorf("re-encoding %v: %q != %q", c, again, hex)
		}
		for i := 0; i < 3; i++ {
			if d := math.Abs(float64(LinearToSRGB8(back[i])) - float64(LinearToSRGB8(c[i]))); d > 1 {
				t.Errorf("channel %d of %v drifted by %v steps", i, c, d)
			}
		}
		if back[3] != 1 {
			t.Errorf("alpha = %v, want 1", back[3])
		}
	}
}

func TestLinearFromHexInvalid(t *testing.T) {
	if _, err := LinearFromHex("not-a-color"); err == nil {
		t.Error("expected an error for a malformed color")
	}
}
