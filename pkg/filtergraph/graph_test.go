package filtergraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// A vacuous graph is well-formed and compiles to an empty chain
func TestEmptyGraph(t *testing.T) {
	g := New()
	assert.Nil(t, g.Validate())
	compiled, err := g.Compile()
	assert.Nil(t, err)
	assert.Equal(t, "", compiled.Text)
	assert.Empty(t, compiled.Inputs)
	assert.Empty(t, compiled.Outputs)
}

func TestCreateNode_DuplicateId(t *testing.T) {
	g := New()
	first, err := g.CreateNode("null", "passthrough", nil)
	assert.Nil(t, err)

	_, err = g.CreateNode("scale", "passthrough", nil)
	assert.ErrorIs(t, err, ErrDuplicateID)

	// The first node must stay registered and usable
	next, err := g.CreateNode("null", "next", nil)
	assert.Nil(t, err)
	assert.Nil(t, g.Connect(first, next, 0, 0))
}

func TestCreateNode_AutoId(t *testing.T) {
	g := New()
	a, err := g.CreateNode("null", "", nil)
	assert.Nil(t, err)
	b, err := g.CreateNode("null", "", nil)
	assert.Nil(t, err)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestConnect_TypeMismatch(t *testing.T) {
	g := New()
	video, _ := g.CreateNode("null", "v", nil)
	audio, _ := g.CreateNode("anull", "a", nil)

	err := g.Connect(video, audio, 0, 0)
	assert.ErrorIs(t, err, ErrPadTypeMismatch)
	// The failed call must not leave a partial edge behind
	assert.Empty(t, g.Edges())
}

func TestConnect_PadOccupied(t *testing.T) {
	g := New()
	a, _ := g.CreateNode("null", "a", nil)
	b, _ := g.CreateNode("null", "b", nil)
	c, _ := g.CreateNode("null", "c", nil)

	assert.Nil(t, g.Connect(a, c, 0, 0))
	before := g.Edges()

	err := g.Connect(b, c, 0, 0)
	assert.ErrorIs(t, err, ErrPadOccupied)
	assert.Equal(t, before, g.Edges())
}

func TestConnect_UnknownNode(t *testing.T) {
	g := New()
	registered, _ := g.CreateNode("null", "in", nil)

	other := New()
	foreign, _ := other.CreateNode("null", "in", nil)

	assert.ErrorIs(t, g.Connect(foreign, registered, 0, 0), ErrUnknownNode)
	assert.ErrorIs(t, g.Connect(registered, foreign, 0, 0), ErrUnknownNode)
	assert.Empty(t, g.Edges())
}

func TestConnect_UnknownPad(t *testing.T) {
	g := New()
	a, _ := g.CreateNode("null", "a", nil)
	b, _ := g.CreateNode("null", "b", nil)
	assert.ErrorIs(t, g.Connect(a, b, 3, 0), ErrUnknownPad)
	assert.ErrorIs(t, g.Connect(a, b, 0, 3), ErrUnknownPad)
}

func TestBoundaries_DuplicateLabel(t *testing.T) {
	g := New()
	a, _ := g.CreateNode("null", "a", nil)
	assert.Nil(t, g.SetInput("main", a, 0))

	b, _ := g.CreateNode("null", "b", nil)
	assert.ErrorIs(t, g.SetInput("main", b, 0), ErrDuplicateLabel)
	// Labels share one namespace with outputs, the compiled text does too
	assert.ErrorIs(t, g.SetOutput("main", b, 0), ErrDuplicateLabel)
}

func TestSetInput_OccupiedPad(t *testing.T) {
	g := New()
	a, _ := g.CreateNode("null", "a", nil)
	b, _ := g.CreateNode("null", "b", nil)
	assert.Nil(t, g.Connect(a, b, 0, 0))
	assert.ErrorIs(t, g.SetInput("0:v", b, 0), ErrPadOccupied)
}

// Connecting into a pad already bound to a graph input must fail the same
// way as a doubly connected pad
func TestConnect_IntoBoundPad(t *testing.T) {
	g := New()
	a, _ := g.CreateNode("null", "a", nil)
	b, _ := g.CreateNode("null", "b", nil)
	assert.Nil(t, g.SetInput("0:v", b, 0))
	assert.ErrorIs(t, g.Connect(a, b, 0, 0), ErrPadOccupied)
}

func TestGraph_ReadOnlyViews(t *testing.T) {
	g := New()
	a, _ := g.CreateNode("null", "a", nil)
	b, _ := g.CreateNode("null", "b", nil)
	assert.Nil(t, g.Connect(a, b, 0, 0))
	assert.Nil(t, g.SetInput("0:v", a, 0))
	assert.Nil(t, g.SetOutput("out", b, 0))

	assert.Len(t, g.Nodes(), 2)
	assert.Len(t, g.Edges(), 1)
	assert.Equal(t, []string{"0:v"}, g.InputLabels())
	assert.Equal(t, []string{"out"}, g.OutputLabels())

	// Mutating the returned maps must not touch the graph
	delete(g.Inputs(), "0:v")
	assert.Equal(t, []string{"0:v"}, g.InputLabels())
}
