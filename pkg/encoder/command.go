package encoder

import (
	"context"
	"fmt"

	"viz-box/pkg/filtergraph"
)

// Builder Assembles an FFMPEG invocation out of inputs, a compiled filter
// graph, stream mappings and output options
type Builder struct {
	// All "-i" inputs, in order
	inputs []*FileInput
	// Compiled filter graph, optional
	filter *filtergraph.Compiled
	// All "-map" specs, in order
	maps []string
	// Options applied to the output file
	outputOptions []string
	// Output file path
	output string
}

// FileInput Any valid -i input
type FileInput struct {
	// Path to the file on the local filesystem
	Path string
	// Explicit input format, empty to let FFMPEG sniff it
	Format string
	// Options applied before this input (e.g. "-loop", "1")
	Options []string
}

func (fi *FileInput) args() []string {
	var args []string
	args = append(args, fi.Options...)
	if fi.Format != "" {
		args = append(args, "-f", fi.Format)
	}
	return append(args, "-i", fi.Path)
}

// AddInput Add a new input to the invocation
func (eb *Builder) AddInput(input *FileInput) *Builder {
	eb.inputs = append(eb.inputs, input)
	return eb
}

// SetFilter Attach a compiled filter graph. Its declared outputs are mapped
// automatically unless the caller mapped streams explicitly
func (eb *Builder) SetFilter(compiled *filtergraph.Compiled) *Builder {
	eb.filter = compiled
	return eb
}

// Map Add a -map spec, either a raw stream ("0:v") or a filter graph
// output label ("[vout]")
func (eb *Builder) Map(spec string) *Builder {
	eb.maps = append(eb.maps, spec)
	return eb
}

// AddOutputOption Add options applied to the output file
func (eb *Builder) AddOutputOption(opts ...string) *Builder {
	eb.outputOptions = append(eb.outputOptions, opts...)
	return eb
}

// SetOutput Set the result file path
func (eb *Builder) SetOutput(path string) *Builder {
	eb.output = path
	return eb
}

// Args Collapse the builder into an FFMPEG argument vector. Filter text is
// passed as a single argument, there is no command-line re-parsing to
// corrupt it
func (eb *Builder) Args() []string {
	var args []string
	for _, input := range eb.inputs {
		args = append(args, input.args()...)
	}

	if eb.filter != nil && eb.filter.Text != "" {
		args = append(args, "-filter_complex", eb.filter.Text)
	}

	maps := eb.maps
	if len(maps) == 0 && eb.filter != nil {
		for _, label := range eb.filter.Outputs {
			maps = append(maps, fmt.Sprintf("[%s]", label))
		}
	}
	for _, m := range maps {
		args = append(args, "-map", m)
	}

	args = append(args, eb.outputOptions...)
	return append(args, eb.output)
}

// Build Return a new initialized encoder ready to be started
func (eb *Builder) Build(ctx *context.Context) (*Encoder, error) {
	if len(eb.inputs) == 0 {
		return nil, fmt.Errorf("no inputs specified")
	}
	if eb.output == "" {
		return nil, fmt.Errorf("no output file path specified")
	}
	return NewEncoder(ctx, eb.Args()), nil
}
