package filtergraph

import "fmt"

// Fragment The boundary pads of a multi-node pattern inserted by a builder.
// Entry pads are the upstream streams the pattern consumes, exit pads are
// where the caller splices the pattern into the rest of the composition
type Fragment struct {
	Entry []Pad
	Exit  []Pad
}

// Out The first exit pad, the common case for single-output fragments
func (f Fragment) Out() Pad {
	return f.Exit[0]
}

// LogoOverlay Configuration for a logo composited onto the video stream.
// Position, scale and opacity accept static values or Dynamic handles bound
// to an audio reaction
type LogoOverlay struct {
	// Path to the image file on the local filesystem
	Path string
	// Overlay position, defaults to the top-left corner
	X, Y Value
	// Optional width expression for the scale stage (e.g. "iw*0.2").
	// Height preserves aspect ratio
	Width Value
	// Optional alpha multiplier, 0..1
	Opacity Value
}

// BuildLogoOverlay Insert a movie -> scale -> overlay pattern into g and
// composite it over the given upstream video pad. Builders only construct
// graph fragments, validation and compilation stay with the caller
func BuildLogoOverlay(g *FilterGraph, upstream Pad, cfg LogoOverlay) (Fragment, error) {
	if cfg.Path == "" {
		return Fragment{}, fmt.Errorf("logo overlay: no image path")
	}
	source, err := g.CreateNode("movie", "", Params{"filename": Str(cfg.Path)})
	if err != nil {
		return Fragment{}, err
	}
	current := Pad{Node: source, Index: 0}

	if cfg.Width != nil {
		scale, err := g.CreateNode("scale", "", Params{
			"width":  cfg.Width,
			"height": Str("-1"),
		})
		if err != nil {
			return Fragment{}, err
		}
		if err := g.Connect(current.Node, scale, current.Index, 0); err != nil {
			return Fragment{}, err
		}
		current = Pad{Node: scale, Index: 0}
	}

	if cfg.Opacity != nil {
		alpha, err := g.CreateNode("colorchannelmixer", "", Params{"aa": cfg.Opacity})
		if err != nil {
			return Fragment{}, err
		}
		if err := g.Connect(current.Node, alpha, current.Index, 0); err != nil {
			return Fragment{}, err
		}
		current = Pad{Node: alpha, Index: 0}
	}

	overlay, err := g.CreateNode("overlay", "", overlayParams(cfg.X, cfg.Y))
	if err != nil {
		return Fragment{}, err
	}
	if err := g.Connect(upstream.Node, overlay, upstream.Index, 0); err != nil {
		return Fragment{}, err
	}
	if err := g.Connect(current.Node, overlay, current.Index, 1); err != nil {
		return Fragment{}, err
	}

	return Fragment{
		Entry: []Pad{upstream},
		Exit:  []Pad{{Node: overlay, Index: 0}},
	}, nil
}

// TextOverlay Configuration for a drawtext stage chained after the video
// stream
type TextOverlay struct {
	Text string
	// Optional path to a font file
	FontFile string
	// Font size, position and color. All accept Dynamic values
	Size  Value
	X, Y  Value
	Color Value
	// Draw a background box behind the text
	Box      bool
	BoxColor Value
}

// BuildTextOverlay Insert a drawtext node after the given upstream video pad
func BuildTextOverlay(g *FilterGraph, upstream Pad, cfg TextOverlay) (Fragment, error) {
	if cfg.Text == "" {
		return Fragment{}, fmt.Errorf("text overlay: no text")
	}
	params := Params{"text": Expr(cfg.Text)}
	if cfg.FontFile != "" {
		params["fontfile"] = Str(cfg.FontFile)
	}
	if cfg.Size != nil {
		params["fontsize"] = cfg.Size
	}
	if cfg.Color != nil {
		params["fontcolor"] = cfg.Color
	}
	if cfg.X != nil {
		params["x"] = cfg.X
	}
	if cfg.Y != nil {
		params["y"] = cfg.Y
	}
	if cfg.Box {
		params["box"] = Int(1)
		if cfg.BoxColor != nil {
			params["boxcolor"] = cfg.BoxColor
		}
	}

	drawtext, err := g.CreateNode("drawtext", "", params)
	if err != nil {
		return Fragment{}, err
	}
	if err := g.Connect(upstream.Node, drawtext, upstream.Index, 0); err != nil {
		return Fragment{}, err
	}

	return Fragment{
		Entry: []Pad{upstream},
		Exit:  []Pad{{Node: drawtext, Index: 0}},
	}, nil
}

// SpectrumMode How the audio spectrum is rendered
type SpectrumMode string

const (
	// Frequency bars
	SpectrumBars SpectrumMode = "bars"
	// Oscilloscope-style waveform
	SpectrumWaves SpectrumMode = "waves"
)

// Spectrum Configuration for an audio visualization composited onto the
// video stream
type Spectrum struct {
	Mode SpectrumMode
	// Pixel size of the rendered visualization
	Width, Height int
	// Overlay position
	X, Y Value
}

// BuildSpectrum Render the given audio pad as a spectrum or waveform and
// composite it over the given video pad
func BuildSpectrum(g *FilterGraph, video Pad, audio Pad, cfg Spectrum) (Fragment, error) {
	width, height := cfg.Width, cfg.Height
	if width == 0 {
		width = 640
	}
	if height == 0 {
		height = 120
	}
	size := Str(fmt.Sprintf("%dx%d", width, height))

	var renderer *Node
	var err error
	switch cfg.Mode {
	case SpectrumWaves:
		renderer, err = g.CreateNode("showwaves", "", Params{"size": size, "mode": Str("cline")})
	default:
		renderer, err = g.CreateNode("showspectrum", "", Params{"size": size, "slide": Str("scroll")})
	}
	if err != nil {
		return Fragment{}, err
	}
	if err := g.Connect(audio.Node, renderer, audio.Index, 0); err != nil {
		return Fragment{}, err
	}

	overlay, err := g.CreateNode("overlay", "", overlayParams(cfg.X, cfg.Y))
	if err != nil {
		return Fragment{}, err
	}
	if err := g.Connect(video.Node, overlay, video.Index, 0); err != nil {
		return Fragment{}, err
	}
	if err := g.Connect(renderer, overlay, 0, 1); err != nil {
		return Fragment{}, err
	}

	return Fragment{
		Entry: []Pad{video, audio},
		Exit:  []Pad{{Node: overlay, Index: 0}},
	}, nil
}

func overlayParams(x, y Value) Params {
	params := Params{"shortest": Int(1)}
	if x != nil {
		params["x"] = x
	}
	if y != nil {
		params["y"] = y
	}
	return params
}
