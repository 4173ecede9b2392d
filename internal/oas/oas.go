// Package oas wraps kin-openapi loading for the commands that need a
// parsed document rather than a raw tree.
package oas

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/ruuvi/oaskit/api"
	"github.com/ruuvi/oaskit/internal/coverage"
)

// Load parses a document without validating it. Coverage extraction
// works from 3.1 input as well as downgraded 3.0 output, so validation
// stays out of this path.
func Load(specPath string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true
	doc, err := loader.LoadFromFile(specPath)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", specPath, err)
	}
	return doc, nil
}

// LoadAndValidate parses a document and runs full document validation.
func LoadAndValidate(specPath string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true
	doc, err := loader.LoadFromFile(specPath)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", specPath, err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate %s: %w", specPath, err)
	}
	return doc, nil
}

var standardMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true,
	"PATCH": true, "HEAD": true, "OPTIONS": true,
}

// DocumentedStatuses collects every numeric response code the document
// declares, keyed by endpoint. Non-numeric response keys ("default",
// "4XX") are skipped.
func DocumentedStatuses(doc *openapi3.T) map[api.Endpoint]coverage.StatusSet {
	documented := make(map[api.Endpoint]coverage.StatusSet)
	if doc.Paths == nil {
		return documented
	}
	for rawPath, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if !standardMethods[method] || op == nil || op.Responses == nil {
				continue
			}
			for status := range op.Responses.Map() {
				code, err := strconv.Atoi(status)
				if err != nil {
					continue
				}
				ep := api.Endpoint{Method: method, Path: rawPath}
				if documented[ep] == nil {
					documented[ep] = make(coverage.StatusSet)
				}
				documented[ep].Add(code)
			}
		}
	}
	return documented
}

// Operation is one documented operation, for endpoint listings.
type Operation struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	Summary string `json:"summary,omitempty"`
}

// Endpoints lists every operation in the document, sorted by path then
// method.
func Endpoints(doc *openapi3.T) []Operation {
	var out []Operation
	if doc.Paths == nil {
		return out
	}
	for rawPath, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			out = append(out, Operation{Method: method, Path: rawPath, Summary: op.Summary})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}
