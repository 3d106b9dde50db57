// Package reaction :: maps an audio feature series onto a time-varying
// visual parameter. The result is either a plain per-frame value series, or
// a filtergraph Dynamic value carrying a baked FFMPEG expression the
// execution collaborator can rebind at full resolution
package reaction

import (
	"fmt"
	"math"
	"strings"

	"viz-box/pkg/filtergraph"
)

// Reaction How one visual property follows one audio feature
type Reaction struct {
	// Name of the driving audio feature (e.g. "rms", "onset", "band:bass")
	Feature string `json:"feature"`
	// The visual property driven by the feature (e.g. "scale", "opacity", "x")
	Property string `json:"property"`
	// Multiplier applied to the normalized feature value
	Intensity float64 `json:"intensity"`
	// Exponential smoothing factor in [0, 1]. 0 disables smoothing, higher
	// values track the feature faster
	Smoothing float64 `json:"smoothing"`
	// Offset added before clamping. A scale-like property typically sits on
	// a base of 1
	Base float64 `json:"base"`
	// Clamp bounds for the mapped value. Ignored when Max <= Min
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	// Color stops used when the driven property is color-valued. Empty means
	// DefaultRamp
	Ramp ColorRamp `json:"ramp,omitempty"`
}

// Map Produce the per-frame parameter values for the given normalized
// feature series
func (r Reaction) Map(feature []float64) []float64 {
	out := make([]float64, len(feature))
	prev := math.NaN()
	for i, raw := range feature {
		v := raw
		if r.Smoothing > 0 && !math.IsNaN(prev) {
			v = prev + r.Smoothing*(raw-prev)
		}
		prev = v

		mapped := r.Base + v*r.Intensity
		if r.Max > r.Min {
			mapped = math.Max(r.Min, math.Min(r.Max, mapped))
		}
		out[i] = mapped
	}
	return out
}

// Bind Map the feature series and bake it into a Dynamic graph value. The
// baked expression is a piecewise-linear approximation over keyframes
// sample points, full-resolution rebinding is left to the executor via the
// handle
func (r Reaction) Bind(handle string, feature []float64, frameRate float64, keyframes int) filtergraph.Dynamic {
	values := r.Map(feature)
	return filtergraph.Dynamic{
		Handle: handle,
		Expr:   PiecewiseExpr(values, frameRate, keyframes),
	}
}

// PiecewiseExpr Render a value series as an FFMPEG expression in t,
// linearly interpolating between up to keyframes evenly spaced points
func PiecewiseExpr(values []float64, frameRate float64, keyframes int) string {
	if len(values) == 0 {
		return "0"
	}
	if keyframes < 2 {
		keyframes = 2
	}
	if keyframes > len(values) {
		keyframes = len(values)
	}
	if keyframes == 1 {
		return formatNum(values[0])
	}

	// Evenly spaced sample points across the series
	times := make([]float64, keyframes)
	points := make([]float64, keyframes)
	for i := 0; i < keyframes; i++ {
		idx := i * (len(values) - 1) / (keyframes - 1)
		times[i] = float64(idx) / frameRate
		points[i] = values[idx]
	}

	// Nested right-to-left : if(lt(t,t1), lerp0, if(lt(t,t2), lerp1, ...))
	expr := formatNum(points[keyframes-1])
	for i := keyframes - 2; i >= 0; i-- {
		dt := times[i+1] - times[i]
		if dt <= 0 {
			continue
		}
		segment := fmt.Sprintf("%s+(%s-%s)*(t-%s)/%s",
			formatNum(points[i]),
			formatNum(points[i+1]),
			formatNum(points[i]),
			formatNum(times[i]),
			formatNum(dt))
		expr = fmt.Sprintf("if(lt(t,%s),%s,%s)", formatNum(times[i+1]), segment, expr)
	}
	return expr
}

// Fixed-width rendering keeps expressions compact and byte-stable
func formatNum(v float64) string {
	s := fmt.Sprintf("%.4f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
