package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrGradientStops = errors.New("gradient needs at least two stops")

// Color is an RGB color with normalized channels in [0, 1].
type Color struct {
	R, G, B float64
}

// ParseHexColor parses "#rrggbb" (case-insensitive, leading '#'
// optional) into a Color.
func ParseHexColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return Color{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return Color{
		R: float64(v>>16&0xff) / 255,
		G: float64(v>>8&0xff) / 255,
		B: float64(v&0xff) / 255,
	}, nil
}

// Hex formats the color as "#rrggbb".
func (c Color) Hex() string {
	clamp := func(v float64) uint32 {
		if v < 0 {
			return 0
		}
		if v > 1 {
			return 255
		}
		return uint32(v*255 + 0.5)
	}
	return fmt.Sprintf("#%02x%02x%02x", clamp(c.R), clamp(c.G), clamp(c.B))
}

// lerp interpolates between two colors with t in [0, 1].
func (c Color) lerp(other Color, t float64) Color {
	return Color{
		R: c.R + (other.R-c.R)*t,
		G: c.G + (other.G-c.G)*t,
		B: c.B + (other.B-c.B)*t,
	}
}

// GradientStop pairs a threshold value with the color shown at exactly
// that value. Stops must be sorted ascending by Value.
type GradientStop struct {
	Value float64
	Color Color
}

// InterpolateGradient linearly interpolates the color for value between
// the two bracketing stops, clamping to the nearest endpoint color
// outside the stop range. Fewer than two stops is a configuration
// error.
func InterpolateGradient(value float64, stops []GradientStop) (Color, error) {
	if len(stops) < 2 {
		return Color{}, fmt.Errorf("%w: got %d", ErrGradientStops, len(stops))
	}
	if value <= stops[0].Value {
		return stops[0].Color, nil
	}
	last := stops[len(stops)-1]
	if value >= last.Value {
		return last.Color, nil
	}
	for i := 1; i < len(stops); i++ {
		lo, hi := stops[i-1], stops[i]
		if value > hi.Value {
			continue
		}
		span := hi.Value - lo.Value
		if span == 0 {
			return hi.Color, nil
		}
		return lo.Color.lerp(hi.Color, (value-lo.Value)/span), nil
	}
	return last.Color, nil
}

// DefaultDepthGradient is the depth palette used when a project defines
// none: warm at the surface, cold at the bottom, over relative depth
// 0-100.
func DefaultDepthGradient() []GradientStop {
	return []GradientStop{
		{Value: 0, Color: Color{R: 1, G: 0, B: 0}},
		{Value: 50, Color: Color{R: 1, G: 1, B: 0}},
		{Value: 100, Color: Color{R: 0, G: 0, B: 1}},
	}
}

// DefaultDistanceGradient is the traversed-distance palette over
// relative distance 0-100.
func DefaultDistanceGradient() []GradientStop {
	return []GradientStop{
		{Value: 0, Color: Color{R: 0, G: 1, B: 0}},
		{Value: 100, Color: Color{R: 1, G: 0, B: 1}},
	}
}
