package filtergraph

import (
	"fmt"
	"sort"
)

// FilterGraph Owns the nodes and connections of one filter pipeline plus the
// declared boundary labels where external streams attach. Mutable while
// being assembled, validated as a whole, compiled to text once complete
type FilterGraph struct {
	registry *Registry
	// All nodes, in creation order
	nodes []*Node
	byID  map[string]*Node
	// All connections, in creation order
	edges []*edge
	// External stream label -> node input pad
	inputs map[string]Pad
	// External stream label -> node output pad
	outputs map[string]Pad
	// Validators run by Validate, in order
	validators []Validator
	// Auto-id counter
	autoID int
}

// New An empty graph backed by the builtin capability table
func New() *FilterGraph {
	return NewWithRegistry(Builtin())
}

// NewWithRegistry An empty graph backed by the given capability table.
// Injecting a substitute table keeps validator tests independent from the
// builtin filter set
func NewWithRegistry(registry *Registry) *FilterGraph {
	return &FilterGraph{
		registry:   registry,
		byID:       make(map[string]*Node),
		inputs:     make(map[string]Pad),
		outputs:    make(map[string]Pad),
		validators: defaultValidators(),
	}
}

// CreateNode Register a new filter node. An empty id is auto-generated from
// the filter name, a caller-supplied id must be unique within the graph.
// The filter name is not interpreted here, capability checking happens at
// validation so a whole misbuilt graph reports all its problems at once
func (g *FilterGraph) CreateNode(filterName string, id string, params Params) (*Node, error) {
	if id == "" {
		g.autoID++
		id = fmt.Sprintf("%s_%d", filterName, g.autoID)
	}
	if _, taken := g.byID[id]; taken {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateID, id)
	}
	spec, _ := g.registry.Lookup(filterName)
	if params == nil {
		params = Params{}
	}
	node := &Node{
		id:         id,
		filterName: filterName,
		params:     params,
		spec:       spec,
		seq:        len(g.nodes),
		in:         make(map[int]*edge),
		out:        make(map[int][]*edge),
	}
	g.nodes = append(g.nodes, node)
	g.byID[id] = node
	return node, nil
}

// Connect Link an output pad of src to an input pad of dst. The connection
// is type checked immediately, a failed call leaves the graph unchanged
func (g *FilterGraph) Connect(src, dst *Node, srcPad, dstPad int) error {
	if !g.owns(src) {
		return fmt.Errorf("%w: source %q", ErrUnknownNode, nodeID(src))
	}
	if !g.owns(dst) {
		return fmt.Errorf("%w: destination %q", ErrUnknownNode, nodeID(dst))
	}
	srcType, err := src.OutputType(srcPad)
	if err != nil {
		return err
	}
	dstType, err := dst.InputType(dstPad)
	if err != nil {
		return err
	}
	if !compatible(srcType, dstType) {
		return fmt.Errorf("%w: %s pad %s:%d -> %s pad %s:%d",
			ErrPadTypeMismatch, srcType, src.id, srcPad, dstType, dst.id, dstPad)
	}
	if _, occupied := dst.in[dstPad]; occupied {
		return fmt.Errorf("%w: %s:%d", ErrPadOccupied, dst.id, dstPad)
	}
	if g.boundInput(dst, dstPad) != "" {
		return fmt.Errorf("%w: %s:%d is a declared graph input", ErrPadOccupied, dst.id, dstPad)
	}
	e := &edge{
		src: Pad{Node: src, Index: srcPad},
		dst: Pad{Node: dst, Index: dstPad},
	}
	g.edges = append(g.edges, e)
	src.out[srcPad] = append(src.out[srcPad], e)
	dst.in[dstPad] = e
	return nil
}

// SetInput Declare that an external stream labeled label feeds the given
// input pad
func (g *FilterGraph) SetInput(label string, node *Node, pad int) error {
	if g.labelTaken(label) {
		return fmt.Errorf("%w: %q", ErrDuplicateLabel, label)
	}
	if !g.owns(node) {
		return fmt.Errorf("%w: %q", ErrUnknownNode, nodeID(node))
	}
	if _, err := node.InputType(pad); err != nil {
		return err
	}
	if _, occupied := node.in[pad]; occupied {
		return fmt.Errorf("%w: %s:%d", ErrPadOccupied, node.id, pad)
	}
	g.inputs[label] = Pad{Node: node, Index: pad}
	return nil
}

// SetOutput Declare that the given output pad is exposed to the caller
// under label
func (g *FilterGraph) SetOutput(label string, node *Node, pad int) error {
	if g.labelTaken(label) {
		return fmt.Errorf("%w: %q", ErrDuplicateLabel, label)
	}
	if !g.owns(node) {
		return fmt.Errorf("%w: %q", ErrUnknownNode, nodeID(node))
	}
	if _, err := node.OutputType(pad); err != nil {
		return err
	}
	g.outputs[label] = Pad{Node: node, Index: pad}
	return nil
}

// Validate Run every registered validator and aggregate all violations into
// a single *ValidationError. A nil return means the graph is well-formed
func (g *FilterGraph) Validate() error {
	var all []Violation
	for _, validate := range g.validators {
		all = append(all, validate(g)...)
	}
	if len(all) > 0 {
		return &ValidationError{Violations: all}
	}
	return nil
}

// Nodes All nodes in creation order. The slice is a copy, the nodes are not
func (g *FilterGraph) Nodes() []*Node {
	return append([]*Node(nil), g.nodes...)
}

// Edges A snapshot of every connection in creation order
func (g *FilterGraph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	for i, e := range g.edges {
		out[i] = Edge{From: e.src, To: e.dst}
	}
	return out
}

// Inputs The declared external input labels and their pads
func (g *FilterGraph) Inputs() map[string]Pad {
	return copyPads(g.inputs)
}

// Outputs The declared external output labels and their pads
func (g *FilterGraph) Outputs() map[string]Pad {
	return copyPads(g.outputs)
}

// InputLabels The declared input labels, sorted
func (g *FilterGraph) InputLabels() []string {
	return sortedLabels(g.inputs)
}

// OutputLabels The declared output labels, sorted
func (g *FilterGraph) OutputLabels() []string {
	return sortedLabels(g.outputs)
}

func (g *FilterGraph) owns(n *Node) bool {
	if n == nil {
		return false
	}
	registered, ok := g.byID[n.id]
	return ok && registered == n
}

// boundInput The label declared on the given input pad, or ""
func (g *FilterGraph) boundInput(n *Node, pad int) string {
	for label, p := range g.inputs {
		if p.Node == n && p.Index == pad {
			return label
		}
	}
	return ""
}

// boundOutput The label declared on the given output pad, or ""
func (g *FilterGraph) boundOutput(n *Node, pad int) string {
	for label, p := range g.outputs {
		if p.Node == n && p.Index == pad {
			return label
		}
	}
	return ""
}

// Labels are unique across both boundary maps, the compiled text has a
// single flat label namespace
func (g *FilterGraph) labelTaken(label string) bool {
	if _, ok := g.inputs[label]; ok {
		return true
	}
	_, ok := g.outputs[label]
	return ok
}

func nodeID(n *Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.id
}

func copyPads(m map[string]Pad) map[string]Pad {
	cp := make(map[string]Pad, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func sortedLabels(m map[string]Pad) []string {
	labels := make([]string, 0, len(m))
	for label := range m {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
