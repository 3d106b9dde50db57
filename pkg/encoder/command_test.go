package encoder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"viz-box/pkg/filtergraph"
)

func TestBuilder_ArgsPlainCopy(t *testing.T) {
	eb := &Builder{}
	eb.AddInput(&FileInput{Path: "in.mp4"}).
		AddOutputOption("-c", "copy").
		SetOutput("out.mp4")
	assert.Equal(t, []string{"-i", "in.mp4", "-c", "copy", "out.mp4"}, eb.Args())
}

func TestBuilder_ArgsInputOptionsAndFormat(t *testing.T) {
	eb := &Builder{}
	eb.AddInput(&FileInput{Path: "logo.png", Format: "image2", Options: []string{"-loop", "1"}}).
		SetOutput("out.mp4")
	assert.Equal(t, []string{"-loop", "1", "-f", "image2", "-i", "logo.png", "out.mp4"}, eb.Args())
}

func TestBuilder_ArgsWithFilter(t *testing.T) {
	g := filtergraph.New()
	n, err := g.CreateNode("null", "", nil)
	assert.Nil(t, err)
	assert.Nil(t, g.SetInput("0:v", n, 0))
	assert.Nil(t, g.SetOutput("vout", n, 0))
	compiled, err := g.Compile()
	assert.Nil(t, err)

	eb := &Builder{}
	eb.AddInput(&FileInput{Path: "in.mp4"}).
		SetFilter(compiled).
		AddOutputOption(H264Fast...).
		SetOutput("out.mp4")
	args := eb.Args()
	// Filter text goes through as one argument
	assert.Contains(t, args, "-filter_complex")
	assert.Contains(t, args, "[0:v]null[vout]")
	// Declared graph outputs are mapped automatically
	assert.Contains(t, args, "-map")
	assert.Contains(t, args, "[vout]")
}

func TestBuilder_ExplicitMapsSuppressAutoMapping(t *testing.T) {
	g := filtergraph.New()
	n, err := g.CreateNode("null", "", nil)
	assert.Nil(t, err)
	assert.Nil(t, g.SetInput("0:v", n, 0))
	assert.Nil(t, g.SetOutput("vout", n, 0))
	compiled, err := g.Compile()
	assert.Nil(t, err)

	eb := &Builder{}
	eb.AddInput(&FileInput{Path: "in.mp4"}).
		SetFilter(compiled).
		Map("[vout]").
		Map("1:a").
		SetOutput("out.mp4")
	args := eb.Args()
	assert.Equal(t, []string{"-i", "in.mp4", "-filter_complex", "[0:v]null[vout]",
		"-map", "[vout]", "-map", "1:a", "out.mp4"}, args)
}

func TestBuilder_BuildValidation(t *testing.T) {
	ctx := context.Background()
	// No inputs
	_, err := (&Builder{}).SetOutput("out.mp4").Build(&ctx)
	assert.NotNil(t, err)
	// No output
	_, err = (&Builder{}).AddInput(&FileInput{Path: "in.mp4"}).Build(&ctx)
	assert.NotNil(t, err)
	// Both set
	enc, err := (&Builder{}).
		AddInput(&FileInput{Path: "in.mp4"}).
		SetOutput("out.mp4").
		Build(&ctx)
	assert.Nil(t, err)
	assert.Equal(t, []string{"-i", "in.mp4", "out.mp4"}, enc.Args())
}

func TestOutputPreset(t *testing.T) {
	assert.Equal(t, H264Fast, OutputPreset("fast"))
	assert.Equal(t, H264Fast, OutputPreset("preview"))
	assert.Equal(t, H264Medium, OutputPreset(""))
	assert.Equal(t, H264Medium, OutputPreset("nonsense"))
}
