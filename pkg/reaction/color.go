package reaction

import "fmt"

// ColorStop One point of a color ramp : the color the ramp takes at a
// normalized position
type ColorStop struct {
	// Position in [0, 1]
	At float64 `json:"at"`
	// 24-bit RGB
	R, G, B uint8
}

// ColorRamp Maps a normalized feature value onto a color by linear
// interpolation between stops. Stops must be given in ascending position
// order
type ColorRamp []ColorStop

// DefaultRamp White at rest shifting to red at full level
var DefaultRamp = ColorRamp{
	{At: 0, R: 0xff, G: 0xff, B: 0xff},
	{At: 1, R: 0xff, G: 0x00, B: 0x00},
}

// BindColor Collapse the mapped feature series into one ramp color. FFMPEG
// color parameters hold plain color strings, not expressions, so the series
// mean picks a single color for the whole export
func (r Reaction) BindColor(feature []float64) string {
	ramp := r.Ramp
	if len(ramp) == 0 {
		ramp = DefaultRamp
	}
	values := r.Map(feature)
	if len(values) == 0 {
		return ramp.At(0)
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return ramp.At(sum / float64(len(values)))
}

// At The interpolated color at position v, as an FFMPEG color string
// (0xRRGGBB)
func (cr ColorRamp) At(v float64) string {
	if len(cr) == 0 {
		return "0xffffff"
	}
	if v <= cr[0].At {
		return hexColor(cr[0])
	}
	last := cr[len(cr)-1]
	if v >= last.At {
		return hexColor(last)
	}
	for i := 0; i < len(cr)-1; i++ {
		lo, hi := cr[i], cr[i+1]
		if v < lo.At || v > hi.At {
			continue
		}
		span := hi.At - lo.At
		if span == 0 {
			return hexColor(lo)
		}
		f := (v - lo.At) / span
		return fmt.Sprintf("0x%02x%02x%02x",
			lerpByte(lo.R, hi.R, f),
			lerpByte(lo.G, hi.G, f),
			lerpByte(lo.B, hi.B, f))
	}
	return hexColor(last)
}

// Colors The per-frame color series for a mapped value series
func (cr ColorRamp) Colors(values []float64) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = cr.At(v)
	}
	return out
}

func hexColor(s ColorStop) string {
	return fmt.Sprintf("0x%02x%02x%02x", s.R, s.G, s.B)
}

func lerpByte(a, b uint8, f float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*f + 0.5)
}
