package types

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an 8-bit sRGB colour.
type Color struct {
	R, G, B, A uint8
}

// LinearColor is a floating point colour in linear space.
type LinearColor struct {
	R, G, B, A float32
}

type ColorRule uint8

const (
	ColorSpecified ColorRule = iota
	ColorForeground
	ColorSubduedForeground
	ColorSelection
)

// SlateColor is a theme-aware colour: either a specified colour, or a rule
// looked up in the registry theme.
type SlateColor struct {
	Specified LinearColor
	Rule      ColorRule
}

func Specified(c LinearColor) SlateColor { return SlateColor{Specified: c} }

// Linear converts to linear space, undoing the sRGB curve. Alpha is linear.
func (c Color) Linear() LinearColor {
	r, g, b := colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.LinearRgb()

	return LinearColor{
		R: float32(r),
		G: float32(g),
		B: float32(b),
		A: float32(c.A) / 255,
	}
}

// Quantize narrows to 8 bits per channel without applying the sRGB curve.
func (c LinearColor) Quantize() Color {
	return Color{
		R: quantize(c.R),
		G: quantize(c.G),
		B: quantize(c.B),
		A: quantize(c.A),
	}
}

func quantize(v float32) uint8 {
	f := math.Min(math.Max(float64(v), 0), 1)
	return uint8(math.Floor(f * 255.999))
}

// Resolve returns the specified colour, or the theme colour for the rule.
func (c SlateColor) Resolve(r *Registry) LinearColor {
	if c.Rule == ColorSpecified || r == nil {
		return c.Specified
	}
	return r.ThemeColor(c.Rule)
}
