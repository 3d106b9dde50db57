package compose_box

import (
	"fmt"

	"viz-box/pkg/audio"
	"viz-box/pkg/filtergraph"
	"viz-box/pkg/reaction"
)

const (
	// Boundary label of the composed video stream
	graphOutputLabel = "vout"
	// Sample points baked into each reaction expression
	reactionKeyframes = 50
)

// buildGraph Translate a composition request into a compiled filter graph :
// the base video flows through every overlay in request order, spectrum
// overlays tap the audio input
func buildGraph(req *CompositionRequest, assets *AssetCollection, features *audio.Features) (*filtergraph.Compiled, error) {
	g := filtergraph.New()

	head, err := g.CreateNode("null", "", nil)
	if err != nil {
		return nil, err
	}
	if err := g.SetInput("0:v", head, 0); err != nil {
		return nil, err
	}
	current := filtergraph.Pad{Node: head, Index: 0}

	taps, err := audioTaps(g, spectrumCount(req.Overlays))
	if err != nil {
		return nil, err
	}

	tapIdx := 0
	for i, overlay := range req.Overlays {
		var fragment filtergraph.Fragment
		switch overlay.Kind {
		case OverlayLogo:
			fragment, err = filtergraph.BuildLogoOverlay(g, current, filtergraph.LogoOverlay{
				Path:    assets.PathOf(overlay.LogoKey),
				X:       overlayValue(overlay, i, "x", staticInt(overlay.X), features),
				Y:       overlayValue(overlay, i, "y", staticInt(overlay.Y), features),
				Width:   overlayValue(overlay, i, "width", staticInt(overlay.Width), features),
				Opacity: overlayValue(overlay, i, "opacity", staticFloat(overlay.Opacity), features),
			})
		case OverlayText:
			fragment, err = filtergraph.BuildTextOverlay(g, current, filtergraph.TextOverlay{
				Text:     overlay.Text,
				FontFile: assets.PathOf(overlay.FontKey),
				Size:     overlayValue(overlay, i, "size", staticInt(overlay.Size), features),
				X:        overlayValue(overlay, i, "x", staticInt(overlay.X), features),
				Y:        overlayValue(overlay, i, "y", staticInt(overlay.Y), features),
				Color:    colorValue(overlay, staticStr(overlay.Color), features),
			})
		case OverlaySpectrum:
			fragment, err = filtergraph.BuildSpectrum(g, current, taps[tapIdx], filtergraph.Spectrum{
				Mode:   filtergraph.SpectrumMode(overlay.Mode),
				Width:  overlay.Width,
				Height: overlay.Height,
				X:      overlayValue(overlay, i, "x", staticInt(overlay.X), features),
				Y:      overlayValue(overlay, i, "y", staticInt(overlay.Y), features),
			})
			tapIdx++
		default:
			return nil, fmt.Errorf(`unknown overlay kind "%s"`, overlay.Kind)
		}
		if err != nil {
			return nil, err
		}
		current = fragment.Out()
	}

	if err := g.SetOutput(graphOutputLabel, current.Node, current.Index); err != nil {
		return nil, err
	}
	return g.Compile()
}

// audioTaps Bind the audio input and split it into n pads. FFMPEG only
// allows consuming an input stream once inside a filter graph, asplit
// stages fan it out
func audioTaps(g *filtergraph.FilterGraph, n int) ([]filtergraph.Pad, error) {
	if n == 0 {
		return nil, nil
	}
	if n == 1 {
		pass, err := g.CreateNode("anull", "", nil)
		if err != nil {
			return nil, err
		}
		if err := g.SetInput("1:a", pass, 0); err != nil {
			return nil, err
		}
		return []filtergraph.Pad{{Node: pass, Index: 0}}, nil
	}

	split, err := g.CreateNode("asplit", "", nil)
	if err != nil {
		return nil, err
	}
	if err := g.SetInput("1:a", split, 0); err != nil {
		return nil, err
	}
	taps := []filtergraph.Pad{{Node: split, Index: 0}}
	spare := filtergraph.Pad{Node: split, Index: 1}
	// Each extra asplit turns the spare pad into one tap plus a new spare
	for len(taps)+1 < n {
		next, err := g.CreateNode("asplit", "", nil)
		if err != nil {
			return nil, err
		}
		if err := g.Connect(spare.Node, next, spare.Index, 0); err != nil {
			return nil, err
		}
		taps = append(taps, filtergraph.Pad{Node: next, Index: 0})
		spare = filtergraph.Pad{Node: next, Index: 1}
	}
	return append(taps, spare), nil
}

func spectrumCount(overlays []OverlaySpec) int {
	count := 0
	for _, o := range overlays {
		if o.Kind == OverlaySpectrum {
			count++
		}
	}
	return count
}

// overlayValue The value driving one overlay property : the reaction bound
// to it when the overlay declares one, the static value otherwise
func overlayValue(o OverlaySpec, idx int, prop string, static filtergraph.Value, features *audio.Features) filtergraph.Value {
	for _, r := range o.Reactions {
		if r.Property != prop {
			continue
		}
		handle := fmt.Sprintf("overlay%d_%s", idx, prop)
		return bindReaction(r, handle, features)
	}
	return static
}

func bindReaction(r reaction.Reaction, handle string, features *audio.Features) filtergraph.Value {
	return r.Bind(handle, features.Get(r.Feature), features.FrameRate, reactionKeyframes)
}

// colorValue Color parameters hold color strings, not expressions, so a
// reaction on color is collapsed through its ramp into a single color
// instead of being baked as a Dynamic value
func colorValue(o OverlaySpec, static filtergraph.Value, features *audio.Features) filtergraph.Value {
	for _, r := range o.Reactions {
		if r.Property == "color" {
			return filtergraph.Str(r.BindColor(features.Get(r.Feature)))
		}
	}
	return static
}

func staticInt(v int) filtergraph.Value {
	if v == 0 {
		return nil
	}
	return filtergraph.Int(v)
}

func staticFloat(v float64) filtergraph.Value {
	if v == 0 {
		return nil
	}
	return filtergraph.Float(v)
}

func staticStr(v string) filtergraph.Value {
	if v == "" {
		return nil
	}
	return filtergraph.Str(v)
}
