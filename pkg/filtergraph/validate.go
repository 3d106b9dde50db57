package filtergraph

import (
	"fmt"
	"sort"
	"strings"
)

// Validator A pure structural or semantic check over a graph. Validators
// never mutate the graph and never stop early, they return every violation
// they can find
type Validator func(*FilterGraph) []Violation

func defaultValidators() []Validator {
	return []Validator{
		ValidateAcyclic,
		ValidatePadCompleteness,
		ValidateTypeCompatibility,
		ValidateCapabilities,
		ValidateBoundaries,
	}
}

// ValidateAcyclic Reject any cycle in the graph, reporting the full node
// sequence of each cycle found
func ValidateAcyclic(g *FilterGraph) []Violation {
	const (
		white = 0 // unvisited
		grey  = 1 // on the current DFS path
		black = 2 // done
	)
	color := make(map[*Node]int8, len(g.nodes))
	var path []*Node
	var violations []Violation

	var visit func(n *Node)
	visit = func(n *Node) {
		color[n] = grey
		path = append(path, n)
		for _, pad := range sortedOutPads(n) {
			for _, e := range n.out[pad] {
				next := e.dst.Node
				switch color[next] {
				case white:
					visit(next)
				case grey:
					// Walk the current path back to the cycle entry point
					var cycle []string
					for i := len(path) - 1; i >= 0; i-- {
						cycle = append([]string{path[i].id}, cycle...)
						if path[i] == next {
							break
						}
					}
					violations = append(violations, Violation{
						Kind:    KindCycle,
						NodeID:  next.id,
						Message: fmt.Sprintf("cycle: %s", strings.Join(append(cycle, next.id), " -> ")),
					})
				}
			}
		}
		path = path[:len(path)-1]
		color[n] = black
	}

	for _, n := range g.nodes {
		if color[n] == white {
			visit(n)
		}
	}
	return violations
}

// ValidatePadCompleteness Every node that can reach a declared graph output
// must have all its declared input pads fed, either by an edge or by a
// declared graph input. With no outputs declared every node is checked
func ValidatePadCompleteness(g *FilterGraph) []Violation {
	checked := g.nodes
	if reachable := g.outputReachable(); reachable != nil {
		checked = nil
		for _, n := range g.nodes {
			if reachable[n] {
				checked = append(checked, n)
			}
		}
	}

	var violations []Violation
	for _, n := range checked {
		for i := 0; i < len(n.spec.Inputs); i++ {
			if _, connected := n.in[i]; connected {
				continue
			}
			if g.boundInput(n, i) != "" {
				continue
			}
			violations = append(violations, Violation{
				Kind:    KindIncompletePad,
				NodeID:  n.id,
				Message: fmt.Sprintf("input pad %d (%s) is not connected", i, n.spec.Inputs[i]),
			})
		}
	}
	return violations
}

// ValidateTypeCompatibility Re-confirm pad typing on every edge. Connect
// already checks this, but fragments spliced in by other means must not
// bypass the rule
func ValidateTypeCompatibility(g *FilterGraph) []Violation {
	var violations []Violation
	for _, e := range g.edges {
		srcType, err := e.src.Node.OutputType(e.src.Index)
		if err != nil {
			continue
		}
		dstType, err := e.dst.Node.InputType(e.dst.Index)
		if err != nil {
			continue
		}
		if !compatible(srcType, dstType) {
			violations = append(violations, Violation{
				Kind:   KindPadTypeMismatch,
				NodeID: e.dst.Node.id,
				Message: fmt.Sprintf("%s pad %s:%d cannot feed %s pad %s:%d",
					srcType, e.src.Node.id, e.src.Index, dstType, e.dst.Node.id, e.dst.Index),
			})
		}
	}
	return violations
}

// ValidateCapabilities Every filter name and every supplied parameter key
// must be recognized by the capability table, and required parameters must
// be present
func ValidateCapabilities(g *FilterGraph) []Violation {
	var violations []Violation
	for _, n := range g.nodes {
		spec, known := g.registry.Lookup(n.filterName)
		if !known {
			violations = append(violations, Violation{
				Kind:    KindUnknownFilter,
				NodeID:  n.id,
				Message: fmt.Sprintf("unknown filter %q", n.filterName),
			})
			continue
		}
		for _, key := range sortedParamKeys(n.params) {
			if !spec.AllowsParam(key) {
				violations = append(violations, Violation{
					Kind:    KindUnknownParameter,
					NodeID:  n.id,
					Message: fmt.Sprintf("filter %q does not accept parameter %q", n.filterName, key),
				})
			}
		}
		for _, key := range spec.Required {
			if _, present := n.params[key]; !present {
				violations = append(violations, Violation{
					Kind:    KindMissingParameter,
					NodeID:  n.id,
					Message: fmt.Sprintf("filter %q requires parameter %q", n.filterName, key),
				})
			}
		}
	}
	return violations
}

// ValidateBoundaries Every declared boundary label must still reference a
// registered node and an existing pad
func ValidateBoundaries(g *FilterGraph) []Violation {
	var violations []Violation
	for _, label := range g.InputLabels() {
		pad := g.inputs[label]
		if !g.owns(pad.Node) {
			violations = append(violations, boundaryViolation(label, "input", "unregistered node"))
			continue
		}
		if _, err := pad.Node.InputType(pad.Index); err != nil {
			violations = append(violations, boundaryViolation(label, "input",
				fmt.Sprintf("pad %d does not exist on %s", pad.Index, pad.Node.id)))
		}
	}
	for _, label := range g.OutputLabels() {
		pad := g.outputs[label]
		if !g.owns(pad.Node) {
			violations = append(violations, boundaryViolation(label, "output", "unregistered node"))
			continue
		}
		if _, err := pad.Node.OutputType(pad.Index); err != nil {
			violations = append(violations, boundaryViolation(label, "output",
				fmt.Sprintf("pad %d does not exist on %s", pad.Index, pad.Node.id)))
		}
	}
	return violations
}

// outputReachable The set of nodes that can reach a declared graph output,
// following edges backwards. Nil when no outputs are declared, in which case
// every node counts
func (g *FilterGraph) outputReachable() map[*Node]bool {
	if len(g.outputs) == 0 {
		return nil
	}
	reachable := make(map[*Node]bool)
	var walk func(n *Node)
	walk = func(n *Node) {
		if reachable[n] {
			return
		}
		reachable[n] = true
		for _, e := range n.in {
			walk(e.src.Node)
		}
	}
	for _, pad := range g.outputs {
		walk(pad.Node)
	}
	return reachable
}

func boundaryViolation(label, side, msg string) Violation {
	return Violation{
		Kind:    KindBoundary,
		Message: fmt.Sprintf("%s label %q: %s", side, label, msg),
	}
}

func sortedOutPads(n *Node) []int {
	pads := make([]int, 0, len(n.out))
	for pad := range n.out {
		pads = append(pads, pad)
	}
	sort.Ints(pads)
	return pads
}

func sortedParamKeys(p Params) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
