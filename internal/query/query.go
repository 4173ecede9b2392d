// Package query evaluates JSONPath expressions against a decoded
// document tree.
package query

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
)

// Eval runs a JSONPath selector over generic data (map[string]any,
// []any, scalars) and returns every match.
func Eval(doc any, selector string) ([]any, error) {
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
	}
	return x.Get(doc), nil
}
