package filtergraph

// FilterSpec The capability entry for one filter kind : pad layout and the
// closed set of parameter keys it accepts. Unknown filter names and unknown
// parameter keys are validation failures, a typo in a media pipeline would
// otherwise only surface as an opaque FFMPEG process error
type FilterSpec struct {
	// FFMPEG filter name
	Name string
	// Declared input pad types, in order. Empty for source filters
	Inputs []PadType
	// Declared output pad types, in order
	Outputs []PadType
	// A variadic filter accepts any number of extra input pads past the
	// declared ones, all typed like the last declared pad
	Variadic bool
	// Parameters that must be present
	Required []string
	// Parameters that may be present
	Optional []string
}

// AllowsParam Whether the given parameter key is part of this filter's schema
func (fs FilterSpec) AllowsParam(key string) bool {
	for _, p := range fs.Required {
		if p == key {
			return true
		}
	}
	for _, p := range fs.Optional {
		if p == key {
			return true
		}
	}
	return false
}

// Registry The filter capability table. Built once, never mutated
// afterwards, and injectable so validators can be tested against a
// substitute table without touching process-wide state
type Registry struct {
	specs map[string]FilterSpec
}

// NewRegistry Build a registry from an explicit set of specs
func NewRegistry(specs ...FilterSpec) *Registry {
	r := &Registry{specs: make(map[string]FilterSpec, len(specs))}
	for _, s := range specs {
		r.specs[s.Name] = s
	}
	return r
}

// Lookup Find the capability entry for a filter name
func (r *Registry) Lookup(name string) (FilterSpec, bool) {
	s, ok := r.specs[name]
	return s, ok
}

// Builtin The default capability table, covering every filter the builders
// and presets emit
func Builtin() *Registry {
	return NewRegistry(
		// Sources
		FilterSpec{
			Name:     "movie",
			Outputs:  []PadType{Video},
			Required: []string{"filename"},
			Optional: []string{"format_name", "seek_point", "stream_index", "loop"},
		},
		FilterSpec{
			Name:     "color",
			Outputs:  []PadType{Video},
			Optional: []string{"color", "size", "rate", "duration"},
		},
		FilterSpec{
			Name:     "anullsrc",
			Outputs:  []PadType{Audio},
			Optional: []string{"channel_layout", "sample_rate", "duration"},
		},

		// Video filters
		FilterSpec{
			Name:     "scale",
			Inputs:   []PadType{Video},
			Outputs:  []PadType{Video},
			Optional: []string{"width", "height", "w", "h", "flags", "force_original_aspect_ratio"},
		},
		FilterSpec{
			Name:     "overlay",
			Inputs:   []PadType{Video, Video},
			Outputs:  []PadType{Video},
			Optional: []string{"x", "y", "format", "shortest", "repeatlast", "eof_action", "enable"},
		},
		FilterSpec{
			Name:     "format",
			Inputs:   []PadType{Video},
			Outputs:  []PadType{Video},
			Required: []string{"pix_fmts"},
		},
		FilterSpec{
			Name:   "drawtext",
			Inputs: []PadType{Video},
			Outputs: []PadType{Video},
			Required: []string{"text"},
			Optional: []string{"fontfile", "fontsize", "fontcolor", "x", "y", "alpha",
				"box", "boxcolor", "shadowx", "shadowy", "shadowcolor", "enable"},
		},
		FilterSpec{
			Name:    "colorchannelmixer",
			Inputs:  []PadType{Video},
			Outputs: []PadType{Video},
			Optional: []string{"rr", "rg", "rb", "ra", "gr", "gg", "gb", "ga",
				"br", "bg", "bb", "ba", "ar", "ag", "ab", "aa"},
		},
		FilterSpec{
			Name:     "rotate",
			Inputs:   []PadType{Video},
			Outputs:  []PadType{Video},
			Optional: []string{"angle", "out_w", "out_h", "fillcolor"},
		},
		FilterSpec{
			Name:     "fade",
			Inputs:   []PadType{Video},
			Outputs:  []PadType{Video},
			Required: []string{"type"},
			Optional: []string{"start_frame", "nb_frames", "alpha", "start_time", "duration"},
		},
		FilterSpec{
			Name:     "fps",
			Inputs:   []PadType{Video},
			Outputs:  []PadType{Video},
			Optional: []string{"fps", "round", "eof_action"},
		},
		FilterSpec{
			Name:     "setpts",
			Inputs:   []PadType{Video},
			Outputs:  []PadType{Video},
			Required: []string{"expr"},
		},

		// Audio to video renderers
		FilterSpec{
			Name:     "showspectrum",
			Inputs:   []PadType{Audio},
			Outputs:  []PadType{Video},
			Optional: []string{"size", "mode", "color", "scale", "slide", "fps"},
		},
		FilterSpec{
			Name:     "showwaves",
			Inputs:   []PadType{Audio},
			Outputs:  []PadType{Video},
			Optional: []string{"size", "mode", "colors", "rate", "n"},
		},
		FilterSpec{
			Name:     "showfreqs",
			Inputs:   []PadType{Audio},
			Outputs:  []PadType{Video},
			Optional: []string{"size", "mode", "ascale", "fscale", "win_size", "colors"},
		},

		// Audio filters
		FilterSpec{
			Name:     "asplit",
			Inputs:   []PadType{Audio},
			Outputs:  []PadType{Audio, Audio},
			Optional: []string{"outputs"},
		},
		FilterSpec{
			Name:     "volume",
			Inputs:   []PadType{Audio},
			Outputs:  []PadType{Audio},
			Required: []string{"volume"},
			Optional: []string{"eval", "enable"},
		},
		FilterSpec{
			Name:     "loudnorm",
			Inputs:   []PadType{Audio},
			Outputs:  []PadType{Audio},
			Optional: []string{"I", "TP", "LRA"},
		},
		FilterSpec{
			Name:     "aformat",
			Inputs:   []PadType{Audio},
			Outputs:  []PadType{Audio},
			Optional: []string{"sample_fmts", "sample_rates", "channel_layouts"},
		},
		FilterSpec{
			Name:     "amix",
			Inputs:   []PadType{Audio, Audio},
			Outputs:  []PadType{Audio},
			Variadic: true,
			Optional: []string{"inputs", "duration", "weights", "dropout_transition"},
		},
		FilterSpec{
			Name:     "concat",
			Inputs:   []PadType{Any, Any},
			Outputs:  []PadType{Any},
			Variadic: true,
			Optional: []string{"n", "v", "a"},
		},
		FilterSpec{
			Name:     "anull",
			Inputs:   []PadType{Audio},
			Outputs:  []PadType{Audio},
		},
		FilterSpec{
			Name:     "null",
			Inputs:   []PadType{Video},
			Outputs:  []PadType{Video},
		},
	)
}
