package filtergraph

import (
	"fmt"
	"sort"
	"strings"
)

// Compiled The result of compiling a graph : the -filter_complex text, the
// boundary labels the caller declared, and the dynamic parameter bindings
// the execution collaborator must resolve
type Compiled struct {
	// The filter chain in FFMPEG mini-language
	Text string
	// Declared external input labels, sorted
	Inputs []string
	// Declared external output labels, sorted
	Outputs []string
	// Every Dynamic parameter in the graph, in topological node order
	Bindings []Binding
}

// Compile Linearize the graph into the textual filter-chain representation.
// The graph is re-validated first, compilation never emits partial text for
// an ill-formed graph. Nodes are emitted in deterministic topological order
// (ties broken by creation order) so an unchanged graph always compiles to
// byte-identical text
func (g *FilterGraph) Compile() (*Compiled, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	order, err := g.topoSort()
	if err != nil {
		return nil, err
	}

	// Pad completeness is only enforced on nodes that reach a declared
	// output, the compiler skips the rest so the two stay in agreement
	reachable := g.outputReachable()
	emitted := func(n *Node) bool { return reachable == nil || reachable[n] }

	// Assign a label to every output pad that is consumed or declared.
	// Boundary labels win, everything else gets a synthetic chain_k label.
	// Allocation follows topological order, so labeling is as deterministic
	// as the node order
	outLabels := make(map[Pad]string)
	chain := 0
	for _, n := range order {
		if !emitted(n) {
			continue
		}
		for padIdx := 0; padIdx < n.OutputCount(); padIdx++ {
			pad := Pad{Node: n, Index: padIdx}
			if label := g.boundOutput(n, padIdx); label != "" {
				outLabels[pad] = label
				continue
			}
			for _, e := range n.out[padIdx] {
				if emitted(e.dst.Node) {
					outLabels[pad] = fmt.Sprintf("chain_%d", chain)
					chain++
					break
				}
			}
		}
	}

	var (
		rendered []string
		bindings []Binding
	)
	for _, n := range order {
		if !emitted(n) {
			continue
		}
		text, err := g.renderNode(n, outLabels)
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, text)
		for _, key := range sortedParamKeys(n.params) {
			if dyn, ok := n.params[key].(Dynamic); ok {
				bindings = append(bindings, Binding{NodeID: n.id, Param: key, Handle: dyn.Handle})
			}
		}
	}

	return &Compiled{
		Text:     strings.Join(rendered, ";"),
		Inputs:   g.InputLabels(),
		Outputs:  g.OutputLabels(),
		Bindings: bindings,
	}, nil
}

// renderNode One node in the form [in0][in1]name=k1=v1:k2=v2[out0]
func (g *FilterGraph) renderNode(n *Node, outLabels map[Pad]string) (string, error) {
	ss := strings.Builder{}

	for padIdx := 0; padIdx < inputPadSpan(n); padIdx++ {
		if label := g.boundInput(n, padIdx); label != "" {
			ss.WriteString(fmt.Sprintf("[%s]", label))
			continue
		}
		e, connected := n.in[padIdx]
		if !connected {
			// Validation guarantees connected pads on every emitted node
			return "", fmt.Errorf("%w: node %q input pad %d has no stream", ErrCompilation, n.id, padIdx)
		}
		label, labeled := outLabels[e.src]
		if !labeled {
			return "", fmt.Errorf("%w: node %q input pad %d feeds from an unlabeled stream", ErrCompilation, n.id, padIdx)
		}
		ss.WriteString(fmt.Sprintf("[%s]", label))
	}

	ss.WriteString(n.filterName)
	if len(n.params) > 0 {
		pairs := make([]string, 0, len(n.params))
		for _, key := range sortedParamKeys(n.params) {
			value, err := n.params[key].render()
			if err != nil {
				return "", fmt.Errorf("%w: node %q parameter %q", err, n.id, key)
			}
			pairs = append(pairs, fmt.Sprintf("%s=%s", key, value))
		}
		ss.WriteString("=" + strings.Join(pairs, ":"))
	}

	for padIdx := 0; padIdx < n.OutputCount(); padIdx++ {
		if label, ok := outLabels[Pad{Node: n, Index: padIdx}]; ok {
			ss.WriteString(fmt.Sprintf("[%s]", label))
		}
	}
	return ss.String(), nil
}

// inputPadSpan The highest input pad index in use on a node, declared pads
// included, plus one
func inputPadSpan(n *Node) int {
	span := len(n.spec.Inputs)
	for idx := range n.in {
		if idx >= span {
			span = idx + 1
		}
	}
	return span
}

// topoSort Kahn's algorithm with the ready set kept in creation order, the
// tie-break that makes compilation reproducible across identical
// construction sequences
func (g *FilterGraph) topoSort() ([]*Node, error) {
	indegree := make(map[*Node]int, len(g.nodes))
	for _, n := range g.nodes {
		indegree[n] = len(n.in)
	}

	var ready []*Node
	for _, n := range g.nodes {
		if indegree[n] == 0 {
			ready = append(ready, n)
		}
	}

	var order []*Node
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return ready[i].seq < ready[j].seq })
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		for _, pad := range sortedOutPads(n) {
			for _, e := range n.out[pad] {
				next := e.dst.Node
				indegree[next]--
				if indegree[next] == 0 {
					ready = append(ready, next)
				}
			}
		}
	}

	if len(order) != len(g.nodes) {
		// Validation rejects cycles before this point, reaching here means
		// an engine defect
		return nil, fmt.Errorf("%w: topological order covers %d of %d nodes",
			ErrCompilation, len(order), len(g.nodes))
	}
	return order, nil
}
