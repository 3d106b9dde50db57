// Package visualizer :: debugging exports of a filter graph. Operates only
// on the read-only views exposed by filtergraph, compilation never depends
// on anything in here
package visualizer

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"viz-box/pkg/filtergraph"
)

// ToDOT Render the graph in GraphViz DOT format, boundary labels included
func ToDOT(g *filtergraph.FilterGraph) string {
	ss := strings.Builder{}
	ss.WriteString("digraph FilterGraph {\n")
	ss.WriteString("  rankdir=LR;\n")
	ss.WriteString("  node [shape=box, style=filled, fillcolor=lightblue];\n")

	for _, n := range g.Nodes() {
		ss.WriteString(fmt.Sprintf("  %q [label=%q];\n", n.ID(), nodeLabel(n)))
	}
	for _, e := range g.Edges() {
		ss.WriteString(fmt.Sprintf("  %q -> %q [label=\"%d:%d\"];\n",
			e.From.Node.ID(), e.To.Node.ID(), e.From.Index, e.To.Index))
	}

	inputs := g.Inputs()
	for _, label := range g.InputLabels() {
		pad := inputs[label]
		ss.WriteString(fmt.Sprintf("  %q [shape=ellipse, fillcolor=lightgreen];\n", label))
		ss.WriteString(fmt.Sprintf("  %q -> %q [label=\"pad %d\"];\n", label, pad.Node.ID(), pad.Index))
	}
	outputs := g.Outputs()
	for _, label := range g.OutputLabels() {
		pad := outputs[label]
		sink := label + "_out"
		ss.WriteString(fmt.Sprintf("  %q [shape=ellipse, fillcolor=lightpink];\n", sink))
		ss.WriteString(fmt.Sprintf("  %q -> %q [label=\"pad %d\"];\n", pad.Node.ID(), sink, pad.Index))
	}

	ss.WriteString("}\n")
	return ss.String()
}

// Graph description as exported by ToJSON
type graphDump struct {
	Nodes   []nodeDump     `json:"nodes"`
	Edges   []edgeDump     `json:"edges"`
	Inputs  []boundaryDump `json:"inputs"`
	Outputs []boundaryDump `json:"outputs"`
}

type nodeDump struct {
	ID     string            `json:"id"`
	Filter string            `json:"filter"`
	Params map[string]string `json:"params,omitempty"`
}

type edgeDump struct {
	From    string `json:"from"`
	FromPad int    `json:"fromPad"`
	To      string `json:"to"`
	ToPad   int    `json:"toPad"`
}

type boundaryDump struct {
	Label string `json:"label"`
	Node  string `json:"node"`
	Pad   int    `json:"pad"`
}

// ToJSON Render the graph structure as indented JSON
func ToJSON(g *filtergraph.FilterGraph) ([]byte, error) {
	dump := graphDump{
		Nodes:   []nodeDump{},
		Edges:   []edgeDump{},
		Inputs:  []boundaryDump{},
		Outputs: []boundaryDump{},
	}
	for _, n := range g.Nodes() {
		nd := nodeDump{ID: n.ID(), Filter: n.FilterName()}
		params := n.Params()
		if len(params) > 0 {
			nd.Params = make(map[string]string, len(params))
			for key, value := range params {
				nd.Params[key] = fmt.Sprintf("%v", value)
			}
		}
		dump.Nodes = append(dump.Nodes, nd)
	}
	for _, e := range g.Edges() {
		dump.Edges = append(dump.Edges, edgeDump{
			From:    e.From.Node.ID(),
			FromPad: e.From.Index,
			To:      e.To.Node.ID(),
			ToPad:   e.To.Index,
		})
	}
	inputs := g.Inputs()
	for _, label := range g.InputLabels() {
		dump.Inputs = append(dump.Inputs, boundaryDump{Label: label, Node: inputs[label].Node.ID(), Pad: inputs[label].Index})
	}
	outputs := g.Outputs()
	for _, label := range g.OutputLabels() {
		dump.Outputs = append(dump.Outputs, boundaryDump{Label: label, Node: outputs[label].Node.ID(), Pad: outputs[label].Index})
	}
	return json.MarshalIndent(dump, "", "  ")
}

func nodeLabel(n *filtergraph.Node) string {
	params := n.Params()
	if len(params) == 0 {
		return n.FilterName()
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := []string{n.FilterName()}
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s=%v", k, params[k]))
	}
	return strings.Join(lines, "\\n")
}
