package selector

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/statecore/internal/ir"
)

// ErrNotFound is returned when a path does not resolve.
var ErrNotFound = errors.New("path not found")

// Selector resolves a dotted path against a state tree.
type Selector struct {
	expr     string
	segments []string
}

// Path parses a dotted path. The empty path selects the root.
// Segments must be non-empty: "a..b" and "a." are rejected.
func Path(expr string) (Selector, error) {
	if expr == "" {
		return Selector{}, nil
	}
	segments := strings.Split(expr, ".")
	for i, seg := range segments {
		if seg == "" {
			return Selector{}, fmt.Errorf("selector %q: empty segment at position %d", expr, i)
		}
	}
	return Selector{expr: expr, segments: segments}, nil
}

// MustPath is like Path but panics on error.
func MustPath(expr string) Selector {
	sel, err := Path(expr)
	if err != nil {
		panic(err)
	}
	return sel
}

// String returns the path expression.
func (s Selector) String() string {
	return s.expr
}

// Get resolves the path against state.
//
// Maps (map[string]any, ir.IRObject) are indexed by key, arrays
// ([]any, ir.IRArray) by decimal index. Any other step fails with an error
// wrapping ErrNotFound.
func (s Selector) Get(state any) (any, error) {
	cur := state
	for i, seg := range s.segments {
		next, ok := step(cur, seg)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, strings.Join(s.segments[:i+1], "."))
		}
		cur = next
	}
	return cur, nil
}

// GetIR resolves the path and converts the result to an IR value.
func (s Selector) GetIR(state any) (ir.IRValue, error) {
	v, err := s.Get(state)
	if err != nil {
		return nil, err
	}
	if iv, ok := v.(ir.IRValue); ok {
		return iv, nil
	}
	iv, err := ir.FromGo(v)
	if err != nil {
		return nil, fmt.Errorf("selector %q: %w", s.expr, err)
	}
	return iv, nil
}

func step(cur any, seg string) (any, bool) {
	switch v := cur.(type) {
	case map[string]any:
		next, ok := v[seg]
		return next, ok
	case ir.IRObject:
		next, ok := v[seg]
		return next, ok
	case []any:
		i, ok := index(seg, len(v))
		if !ok {
			return nil, false
		}
		return v[i], true
	case ir.IRArray:
		i, ok := index(seg, len(v))
		if !ok {
			return nil, false
		}
		return v[i], true
	}
	return nil, false
}

func index(seg string, n int) (int, bool) {
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 || i >= n {
		return 0, false
	}
	return i, true
}
