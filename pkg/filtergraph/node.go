// Package filtergraph :: an in-memory directed acyclic graph of FFMPEG
// filters. A graph is assembled from named filter nodes connected by typed
// pads, validated as a whole, then compiled into the textual form consumed
// by the FFMPEG -filter_complex option.
//
// The engine itself is pure and synchronous : no I/O, no locking. A graph
// instance must not be mutated concurrently, and should be considered
// frozen once compiled so the emitted text keeps matching the object the
// caller inspected.
package filtergraph

import "fmt"

// PadType the stream type carried by a pad
type PadType int8

const (
	// Any matches both video and audio, used by passthrough filters
	Any PadType = iota
	Video
	Audio
)

func (pt PadType) String() string {
	switch pt {
	case Video:
		return "video"
	case Audio:
		return "audio"
	default:
		return "any"
	}
}

// compatible Two pad types can be linked if they match, or if either side
// accepts anything
func compatible(a, b PadType) bool {
	return a == Any || b == Any || a == b
}

// Node A single filter operation in the graph. Nodes are created through
// FilterGraph.CreateNode and are only meaningful inside their owning graph
type Node struct {
	// Unique node id within the graph
	id string
	// FFMPEG filter name, matched against the capability table
	filterName string
	// Filter parameters
	params Params
	// Capability entry for filterName, resolved at creation
	spec FilterSpec
	// Creation sequence number, used to break topological-order ties
	seq int
	// Incoming edge per input pad index, at most one each
	in map[int]*edge
	// Outgoing edges per output pad index, fan-out is allowed
	out map[int][]*edge
}

// ID Unique id of this node within its graph
func (n *Node) ID() string {
	return n.id
}

// FilterName The FFMPEG filter this node stands for
func (n *Node) FilterName() string {
	return n.filterName
}

// Params A copy of the node's parameters
func (n *Node) Params() Params {
	cp := make(Params, len(n.params))
	for k, v := range n.params {
		cp[k] = v
	}
	return cp
}

// InputCount Number of input pads currently addressable on this node
func (n *Node) InputCount() int {
	count := len(n.spec.Inputs)
	// A variadic node exposes one more pad past the highest connected one
	if n.spec.Variadic {
		for idx := range n.in {
			if idx >= count {
				count = idx + 1
			}
		}
		count++
	}
	return count
}

// OutputCount Number of output pads on this node
func (n *Node) OutputCount() int {
	return len(n.spec.Outputs)
}

// InputType The declared type of the given input pad
func (n *Node) InputType(index int) (PadType, error) {
	if index < 0 {
		return Any, fmt.Errorf("%w: input %d of %s", ErrUnknownPad, index, n.id)
	}
	if index < len(n.spec.Inputs) {
		return n.spec.Inputs[index], nil
	}
	// Variadic filters repeat the type of their last declared input pad
	if n.spec.Variadic && len(n.spec.Inputs) > 0 {
		return n.spec.Inputs[len(n.spec.Inputs)-1], nil
	}
	return Any, fmt.Errorf("%w: input %d of %s", ErrUnknownPad, index, n.id)
}

// OutputType The declared type of the given output pad
func (n *Node) OutputType(index int) (PadType, error) {
	if index < 0 || index >= len(n.spec.Outputs) {
		return Any, fmt.Errorf("%w: output %d of %s", ErrUnknownPad, index, n.id)
	}
	return n.spec.Outputs[index], nil
}

// Pad A connection point on a node. Out-facing pads of a builder fragment
// are exposed as Pad values so callers can splice fragments together
type Pad struct {
	Node  *Node
	Index int
}

// Edge A read-only snapshot of a connection, exposed for inspection and
// visualization
type Edge struct {
	From Pad
	To   Pad
}

// edge internal directed connection between an output pad and an input pad
type edge struct {
	src Pad
	dst Pad
}
