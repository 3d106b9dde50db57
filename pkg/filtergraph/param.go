package filtergraph

import (
	"strconv"
	"strings"
)

// Characters with a structural meaning in the FFMPEG filter_complex
// mini-language. A plain string value containing any of these is rejected
// at compile time instead of being escaped behind the caller's back
const reservedChars = `;:,[]'\`

// Value A single filter parameter value. The concrete type is the
// discriminator between static scalars, caller-supplied expressions and
// time-varying quantities resolved outside the graph engine
type Value interface {
	// render the value into its textual form, or fail with
	// ErrUnsafeParameter
	render() (string, error)
}

// Int a static integer parameter
type Int int

// Float a static float parameter
type Float float64

// Str a static string parameter. Must not contain reserved separator
// characters, use Expr for anything needing them
type Str string

// Expr an FFMPEG expression (e.g. "main_w-overlay_w-20"). Rendered inside
// explicit quotes with explicit escaping, the caller opted into expression
// syntax so separators are allowed
type Expr string

// Dynamic a time-varying parameter. The embedded expression is the static
// rendition baked into the compiled text, the handle is reported in the
// compile result so the execution collaborator can rebind the parameter
// per output frame
type Dynamic struct {
	// Identifier the executor uses to resolve the per-frame series
	Handle string
	// Expression compiled into the graph text
	Expr string
}

func (v Int) render() (string, error) {
	return strconv.Itoa(int(v)), nil
}

func (v Float) render() (string, error) {
	return strconv.FormatFloat(float64(v), 'g', -1, 64), nil
}

func (v Str) render() (string, error) {
	if strings.ContainsAny(string(v), reservedChars) {
		return "", ErrUnsafeParameter
	}
	return string(v), nil
}

func (v Expr) render() (string, error) {
	return quoteExpr(string(v)), nil
}

func (v Dynamic) render() (string, error) {
	if v.Expr == "" {
		return "", ErrUnsafeParameter
	}
	return quoteExpr(v.Expr), nil
}

// Quote an expression for the filter mini-language. Backslashes and quotes
// are escaped first, then the whole expression is wrapped in single quotes
func quoteExpr(expr string) string {
	escaped := strings.ReplaceAll(expr, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `'`, `\'`)
	return "'" + escaped + "'"
}

// Params filter parameters, keyed by name. Rendered in lexicographic key
// order so that compiling an unchanged graph is byte-identical across runs
type Params map[string]Value

// Binding a dynamic parameter surfaced by Compile for the execution
// collaborator to resolve
type Binding struct {
	// Id of the node carrying the parameter
	NodeID string
	// Parameter key on that node
	Param string
	// Handle declared on the Dynamic value
	Handle string
}
