package filtergraph

import (
	"errors"
	"fmt"
	"strings"
)

// Construction-time errors. These indicate a programming mistake in graph
// assembly, they are returned immediately and never retried.
var (
	// A node id collides with an already registered node
	ErrDuplicateID = errors.New("duplicate node id")
	// A boundary label is declared twice
	ErrDuplicateLabel = errors.New("duplicate boundary label")
	// A node passed to an operation is not registered in this graph
	ErrUnknownNode = errors.New("node not registered in graph")
	// A pad index does not exist on the node
	ErrUnknownPad = errors.New("no such pad on node")
	// Source and destination pad types are incompatible
	ErrPadTypeMismatch = errors.New("pad type mismatch")
	// The destination input pad already has an incoming connection
	ErrPadOccupied = errors.New("input pad already connected")
)

// Compile-time errors
var (
	// A parameter value contains a reserved separator character.
	// Values are rejected rather than implicitly escaped, a silently
	// mangled filter string is worse than a loud failure
	ErrUnsafeParameter = errors.New("unsafe parameter value")
	// The labeling pass hit an inconsistency validation should have excluded.
	// This signals an engine bug, not a caller mistake
	ErrCompilation = errors.New("filter graph compilation failed")
)

// ViolationKind classifies a single validation finding
type ViolationKind string

const (
	KindCycle            ViolationKind = "cycle"
	KindIncompletePad    ViolationKind = "incomplete_pad"
	KindPadTypeMismatch  ViolationKind = "pad_type_mismatch"
	KindUnknownFilter    ViolationKind = "unknown_filter"
	KindUnknownParameter ViolationKind = "unknown_parameter"
	KindMissingParameter ViolationKind = "missing_parameter"
	KindBoundary         ViolationKind = "boundary"
)

// Violation A single problem found by a validator. Validators never stop at
// the first finding, the whole set is reported at once so a misbuilt
// pipeline can be fixed in a single round-trip
type Violation struct {
	Kind ViolationKind
	// Id of the offending node, empty for graph-level findings
	NodeID string
	// Human readable description
	Message string
}

func (v Violation) String() string {
	if v.NodeID == "" {
		return fmt.Sprintf("%s: %s", v.Kind, v.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", v.Kind, v.NodeID, v.Message)
}

// ValidationError aggregates every violation found across all validators
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return fmt.Sprintf("invalid filter graph (%d violations): %s",
		len(e.Violations), strings.Join(msgs, "; "))
}

// ByKind Return all violations of a given kind
func (e *ValidationError) ByKind(kind ViolationKind) []Violation {
	var out []Violation
	for _, v := range e.Violations {
		if v.Kind == kind {
			out = append(out, v)
		}
	}
	return out
}
