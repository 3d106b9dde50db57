package filtergraph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompile_SingleChain(t *testing.T) {
	g := New()
	source, _ := g.CreateNode("movie", "logo", Params{"filename": Str("logo.png")})
	zoom, _ := g.CreateNode("scale", "zoom", Params{"width": Str("100"), "height": Str("-1")})
	assert.Nil(t, g.Connect(source, zoom, 0, 0))
	assert.Nil(t, g.SetOutput("out", zoom, 0))

	compiled, err := g.Compile()
	assert.Nil(t, err)
	// Parameters render in lexicographic key order, inter-node streams get
	// synthetic chain labels, the declared boundary keeps its own label
	assert.Equal(t,
		"movie=filename=logo.png[chain_0];[chain_0]scale=height=-1:width=100[out]",
		compiled.Text)
	assert.Equal(t, []string{"out"}, compiled.Outputs)
}

func TestCompile_BoundaryLabels(t *testing.T) {
	g := New()
	format, _ := g.CreateNode("format", "fmt", Params{"pix_fmts": Str("yuva420p")})
	assert.Nil(t, g.SetInput("0:v", format, 0))
	assert.Nil(t, g.SetOutput("vout", format, 0))

	compiled, err := g.Compile()
	assert.Nil(t, err)
	assert.Equal(t, "[0:v]format=pix_fmts=yuva420p[vout]", compiled.Text)
	assert.Equal(t, []string{"0:v"}, compiled.Inputs)
	assert.Equal(t, []string{"vout"}, compiled.Outputs)
}

// Compiling the same construction sequence twice must produce byte-identical
// text, and recompiling an unchanged graph must too
func TestCompile_Deterministic(t *testing.T) {
	build := func() *FilterGraph {
		g := New()
		format, _ := g.CreateNode("format", "fmt", Params{"pix_fmts": Str("yuva420p")})
		_ = g.SetInput("0:v", format, 0)
		source, _ := g.CreateNode("movie", "logo", Params{"filename": Str("logo.png")})
		over, _ := g.CreateNode("overlay", "over", Params{"x": Int(10), "y": Int(10)})
		_ = g.Connect(format, over, 0, 0)
		_ = g.Connect(source, over, 0, 1)
		_ = g.SetOutput("vout", over, 0)
		return g
	}

	first, err := build().Compile()
	assert.Nil(t, err)
	second, err := build().Compile()
	assert.Nil(t, err)
	assert.Equal(t, first.Text, second.Text)

	g := build()
	once, _ := g.Compile()
	twice, _ := g.Compile()
	assert.Equal(t, once.Text, twice.Text)
}

// Fan-out : one output pad feeding two consumers keeps a single label
func TestCompile_FanOut(t *testing.T) {
	g := New()
	split, _ := g.CreateNode("asplit", "split", nil)
	left, _ := g.CreateNode("anull", "left", nil)
	right, _ := g.CreateNode("anull", "right", nil)
	assert.Nil(t, g.SetInput("0:a", split, 0))
	assert.Nil(t, g.Connect(split, left, 0, 0))
	assert.Nil(t, g.Connect(split, right, 1, 0))
	assert.Nil(t, g.SetOutput("l", left, 0))
	assert.Nil(t, g.SetOutput("r", right, 0))

	compiled, err := g.Compile()
	assert.Nil(t, err)
	assert.Equal(t,
		"[0:a]asplit[chain_0][chain_1];[chain_0]anull[l];[chain_1]anull[r]",
		compiled.Text)
}

func TestCompile_UnsafeParameter(t *testing.T) {
	g := New()
	source, _ := g.CreateNode("movie", "logo", Params{"filename": Str("a:b.png")})
	assert.Nil(t, g.SetOutput("out", source, 0))

	_, err := g.Compile()
	assert.ErrorIs(t, err, ErrUnsafeParameter)
	assert.Contains(t, err.Error(), "logo")
}

// Expressions are explicitly quoted, never silently mangled
func TestCompile_ExprQuoting(t *testing.T) {
	g := New()
	over, _ := g.CreateNode("drawtext", "txt", Params{
		"text": Expr("beats: 'n' bars"),
		"x":    Expr("(main_w-text_w)/2"),
	})
	assert.Nil(t, g.SetInput("0:v", over, 0))
	assert.Nil(t, g.SetOutput("out", over, 0))

	compiled, err := g.Compile()
	assert.Nil(t, err)
	assert.Contains(t, compiled.Text, `text='beats: \'n\' bars'`)
	assert.Contains(t, compiled.Text, `x='(main_w-text_w)/2'`)
}

func TestCompile_InvalidGraphRefused(t *testing.T) {
	g := New()
	overlay, _ := g.CreateNode("overlay", "over", nil)
	assert.Nil(t, g.SetOutput("out", overlay, 0))

	compiled, err := g.Compile()
	assert.Nil(t, compiled)
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

// Dynamic parameters compile to their baked expression and surface a
// binding for the execution collaborator
func TestCompile_DynamicBindings(t *testing.T) {
	g := New()
	over, _ := g.CreateNode("overlay", "over", Params{
		"x": Dynamic{Handle: "logo_x", Expr: "10+5*sin(2*PI*t)"},
		"y": Int(20),
	})
	src, _ := g.CreateNode("movie", "logo", Params{"filename": Str("logo.png")})
	assert.Nil(t, g.SetInput("0:v", over, 0))
	assert.Nil(t, g.Connect(src, over, 0, 1))
	assert.Nil(t, g.SetOutput("vout", over, 0))

	compiled, err := g.Compile()
	assert.Nil(t, err)
	assert.Contains(t, compiled.Text, "x='10+5*sin(2*PI*t)'")
	assert.Equal(t, []Binding{{NodeID: "over", Param: "x", Handle: "logo_x"}}, compiled.Bindings)
}

// A node that cannot reach a declared output is exempt from pad completeness,
// so the compiler must skip it rather than fail on its unfed pads
func TestCompile_SkipsNodesOutsideOutputPath(t *testing.T) {
	g := New()
	format, _ := g.CreateNode("format", "fmt", Params{"pix_fmts": Str("yuva420p")})
	assert.Nil(t, g.SetInput("0:v", format, 0))
	assert.Nil(t, g.SetOutput("vout", format, 0))
	_, err := g.CreateNode("null", "dangling", nil)
	assert.Nil(t, err)

	assert.Nil(t, g.Validate())
	compiled, err := g.Compile()
	assert.Nil(t, err)
	assert.Equal(t, "[0:v]format=pix_fmts=yuva420p[vout]", compiled.Text)
}

// An emitted node feeding only skipped consumers must not leak a chain label
// with no consumer into the text
func TestCompile_NoLabelsForSkippedConsumers(t *testing.T) {
	g := New()
	split, _ := g.CreateNode("asplit", "split", nil)
	keep, _ := g.CreateNode("anull", "keep", nil)
	drop, _ := g.CreateNode("anull", "drop", nil)
	assert.Nil(t, g.SetInput("0:a", split, 0))
	assert.Nil(t, g.Connect(split, keep, 0, 0))
	assert.Nil(t, g.Connect(split, drop, 1, 0))
	assert.Nil(t, g.SetOutput("aout", keep, 0))

	compiled, err := g.Compile()
	assert.Nil(t, err)
	assert.Equal(t, "[0:a]asplit[chain_0];[chain_0]anull[aout]", compiled.Text)
}

func TestCompile_SyntheticLabelsInjective(t *testing.T) {
	g := New()
	split, _ := g.CreateNode("asplit", "split", nil)
	a, _ := g.CreateNode("anull", "a", nil)
	b, _ := g.CreateNode("anull", "b", nil)
	mix, _ := g.CreateNode("amix", "mix", nil)
	assert.Nil(t, g.SetInput("0:a", split, 0))
	assert.Nil(t, g.Connect(split, a, 0, 0))
	assert.Nil(t, g.Connect(split, b, 1, 0))
	assert.Nil(t, g.Connect(a, mix, 0, 0))
	assert.Nil(t, g.Connect(b, mix, 0, 1))
	assert.Nil(t, g.SetOutput("out", mix, 0))

	compiled, err := g.Compile()
	assert.Nil(t, err)

	seen := map[string]bool{}
	for _, chunk := range strings.Split(compiled.Text, ";") {
		open := strings.LastIndex(chunk, "[")
		if open == -1 || !strings.HasSuffix(chunk, "]") {
			continue
		}
		label := chunk[open+1 : len(chunk)-1]
		assert.False(t, seen[label], "label %q assigned twice", label)
		seen[label] = true
	}
}
