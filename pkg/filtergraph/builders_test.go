package filtergraph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// The primary video stream every overlay test composites onto
func videoEntry(t *testing.T, g *FilterGraph) Pad {
	format, err := g.CreateNode("format", "fmt", Params{"pix_fmts": Str("yuva420p")})
	assert.Nil(t, err)
	assert.Nil(t, g.SetInput("0:v", format, 0))
	return Pad{Node: format, Index: 0}
}

// A logo overlay on an otherwise empty graph must validate, compile, and
// keep the source -> scale -> overlay relative order
func TestBuildLogoOverlay(t *testing.T) {
	g := New()
	entry := videoEntry(t, g)

	frag, err := BuildLogoOverlay(g, entry, LogoOverlay{
		Path:  "logo.png",
		X:     Int(10),
		Y:     Int(10),
		Width: Str("200"),
	})
	assert.Nil(t, err)
	assert.Nil(t, g.SetOutput("vout", frag.Out().Node, frag.Out().Index))

	assert.Nil(t, g.Validate())
	compiled, err := g.Compile()
	assert.Nil(t, err)

	movieIdx := strings.Index(compiled.Text, "movie")
	scaleIdx := strings.Index(compiled.Text, "scale")
	overlayIdx := strings.Index(compiled.Text, "overlay")
	assert.Greater(t, movieIdx, -1)
	assert.Greater(t, scaleIdx, movieIdx)
	assert.Greater(t, overlayIdx, scaleIdx)
	assert.Contains(t, compiled.Text, "[0:v]")
	assert.Contains(t, compiled.Text, "[vout]")
}

func TestBuildLogoOverlay_Opacity(t *testing.T) {
	g := New()
	entry := videoEntry(t, g)

	frag, err := BuildLogoOverlay(g, entry, LogoOverlay{
		Path:    "logo.png",
		Opacity: Float(0.6),
	})
	assert.Nil(t, err)
	assert.Nil(t, g.SetOutput("vout", frag.Out().Node, frag.Out().Index))

	compiled, err := g.Compile()
	assert.Nil(t, err)
	assert.Contains(t, compiled.Text, "colorchannelmixer=aa=0.6")
	// No scale requested, none inserted
	assert.NotContains(t, compiled.Text, "scale")
}

func TestBuildLogoOverlay_NoPath(t *testing.T) {
	g := New()
	entry := videoEntry(t, g)
	_, err := BuildLogoOverlay(g, entry, LogoOverlay{})
	assert.NotNil(t, err)
}

func TestBuildTextOverlay(t *testing.T) {
	g := New()
	entry := videoEntry(t, g)

	frag, err := BuildTextOverlay(g, entry, TextOverlay{
		Text:  "live from the basement",
		Size:  Int(32),
		Color: Str("white"),
		X:     Expr("(main_w-text_w)/2"),
		Y:     Int(40),
	})
	assert.Nil(t, err)
	assert.Nil(t, g.SetOutput("vout", frag.Out().Node, frag.Out().Index))

	compiled, err := g.Compile()
	assert.Nil(t, err)
	assert.Contains(t, compiled.Text, "drawtext=")
	assert.Contains(t, compiled.Text, "fontsize=32")
	assert.Contains(t, compiled.Text, "text='live from the basement'")
}

func TestBuildSpectrum(t *testing.T) {
	g := New()
	entry := videoEntry(t, g)
	tap, err := g.CreateNode("anull", "atap", nil)
	assert.Nil(t, err)
	assert.Nil(t, g.SetInput("0:a", tap, 0))

	frag, err := BuildSpectrum(g, entry, Pad{Node: tap, Index: 0}, Spectrum{
		Mode:   SpectrumWaves,
		Width:  640,
		Height: 120,
		Y:      Expr("main_h-overlay_h"),
	})
	assert.Nil(t, err)
	assert.Len(t, frag.Entry, 2)
	assert.Nil(t, g.SetOutput("vout", frag.Out().Node, frag.Out().Index))

	compiled, err := g.Compile()
	assert.Nil(t, err)
	assert.Contains(t, compiled.Text, "showwaves=mode=cline:size=640x120")
	assert.Contains(t, compiled.Text, "overlay")
}

// Two fragments chained one after the other : the exit pad of the first is
// the upstream of the second
func TestBuilders_Composition(t *testing.T) {
	g := New()
	entry := videoEntry(t, g)

	logo, err := BuildLogoOverlay(g, entry, LogoOverlay{Path: "logo.png", Width: Str("120")})
	assert.Nil(t, err)
	text, err := BuildTextOverlay(g, logo.Out(), TextOverlay{Text: "hello"})
	assert.Nil(t, err)
	assert.Nil(t, g.SetOutput("vout", text.Out().Node, text.Out().Index))

	assert.Nil(t, g.Validate())
	compiled, err := g.Compile()
	assert.Nil(t, err)
	assert.Greater(t, strings.Index(compiled.Text, "drawtext"), strings.Index(compiled.Text, "overlay"))
}
