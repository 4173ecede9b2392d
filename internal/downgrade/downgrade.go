// Package downgrade rewrites an OpenAPI 3.1 document tree into the 3.0
// dialect the documentation publisher accepts. The rewrite is a pure
// structural recursion over yaml.Node values; mapping key order is
// preserved and aliases are inlined into plain copies.
package downgrade

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Apply returns a downgraded copy of the document tree. Three shapes
// are rewritten, everything else recurses unchanged:
//
//  1. `openapi: 3.1.0` becomes `openapi: 3.0.3`. Other version values
//     pass through untouched.
//  2. A `type` array containing "null" is folded into the remaining
//     type(s) plus `nullable: true`.
//  3. `patternProperties` is emulated with an `additionalProperties`
//     oneOf over the pattern sub-schemas, superseding any sibling
//     `additionalProperties` declaration.
func Apply(n *yaml.Node) *yaml.Node {
	switch n.Kind {
	case yaml.DocumentNode:
		out := shallow(n)
		for _, c := range n.Content {
			out.Content = append(out.Content, Apply(c))
		}
		return out
	case yaml.AliasNode:
		return Apply(n.Alias)
	case yaml.SequenceNode:
		out := shallow(n)
		for _, c := range n.Content {
			out.Content = append(out.Content, Apply(c))
		}
		return out
	case yaml.MappingNode:
		return applyMapping(n)
	default:
		return shallow(n)
	}
}

func applyMapping(m *yaml.Node) *yaml.Node {
	// Pre-scan: the nullable fold and the patternProperties rewrite
	// both touch sibling keys, and mapping key order gives no guarantee
	// about which sibling comes first.
	folding := isNullableTypeArray(deref(find(m, "type")))
	var patched *patternRewrite
	if pp := deref(find(m, "patternProperties")); pp != nil && pp.Kind == yaml.MappingNode {
		patched = rewritePatterns(pp)
	}

	out := shallow(m)
	for i := 0; i+1 < len(m.Content); i += 2 {
		key := m.Content[i]
		val := deref(m.Content[i+1])
		switch {
		case key.Value == "openapi" && val.Kind == yaml.ScalarNode && val.Value == "3.1.0":
			out.Content = append(out.Content, shallow(key), strNode("3.0.3"))
		case key.Value == "type" && isNullableTypeArray(val):
			out.Content = append(out.Content, foldNullableType(key, val)...)
		case key.Value == "nullable" && folding:
			// replaced by the folded value
		case key.Value == "patternProperties" && patched != nil:
			out.Content = append(out.Content, strNode("additionalProperties"), patched.schema)
		case key.Value == "additionalProperties" && patched != nil:
			// superseded by the synthesized oneOf
		case key.Value == "description" && patched != nil && val.Kind == yaml.ScalarNode:
			out.Content = append(out.Content, shallow(key), strNode(val.Value+"\n\n"+patched.bullets))
		default:
			out.Content = append(out.Content, Apply(key), Apply(m.Content[i+1]))
		}
	}
	return out
}

// foldNullableType turns `type: [T.., "null"]` into the key/value pairs
// that replace it: the surviving type (scalar, array, or nothing at
// all) followed by `nullable: true`.
func foldNullableType(key, val *yaml.Node) []*yaml.Node {
	var rest []*yaml.Node
	for _, e := range val.Content {
		if !isNullName(deref(e)) {
			rest = append(rest, e)
		}
	}
	var out []*yaml.Node
	switch len(rest) {
	case 0:
		// `type: ["null"]` — no declared type survives.
	case 1:
		out = append(out, shallow(key), Apply(rest[0]))
	default:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: val.Style}
		for _, e := range rest {
			seq.Content = append(seq.Content, Apply(e))
		}
		out = append(out, shallow(key), seq)
	}
	return append(out, strNode("nullable"), boolNode(true))
}

type patternRewrite struct {
	schema  *yaml.Node // synthesized additionalProperties value
	bullets string     // appended to the parent description, if any
}

// rewritePatterns builds the oneOf disjunction over the
// pattern-properties sub-schemas. Each downgraded sub-schema gets the
// originating pattern appended to its description so the provenance
// survives the lossy rewrite.
func rewritePatterns(pp *yaml.Node) *patternRewrite {
	oneOf := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	var bullets []string
	for i := 0; i+1 < len(pp.Content); i += 2 {
		pattern := pp.Content[i].Value
		sub := Apply(pp.Content[i+1])
		bullets = append(bullets, bulletFor(pattern, sub))
		annotatePattern(sub, pattern)
		oneOf.Content = append(oneOf.Content, sub)
	}
	schema := &yaml.Node{
		Kind:    yaml.MappingNode,
		Tag:     "!!map",
		Content: []*yaml.Node{strNode("oneOf"), oneOf},
	}
	return &patternRewrite{schema: schema, bullets: strings.Join(bullets, "\n")}
}

func annotatePattern(sub *yaml.Node, pattern string) {
	suffix := fmt.Sprintf("(matches pattern: %s)", pattern)
	if d := find(sub, "description"); d != nil && d.Kind == yaml.ScalarNode {
		d.Value = d.Value + " " + suffix
		d.Style = 0
		return
	}
	if sub.Kind == yaml.MappingNode {
		sub.Content = append(sub.Content, strNode("description"), strNode(suffix))
	}
}

// bulletFor summarizes one pattern for the parent description, e.g.
// `- "^x-" (string): vendor ext`. The type and description parts are
// omitted when the sub-schema lacks them.
func bulletFor(pattern string, sub *yaml.Node) string {
	b := fmt.Sprintf("- %q", pattern)
	if t := deref(find(sub, "type")); t != nil {
		switch t.Kind {
		case yaml.ScalarNode:
			b += " (" + t.Value + ")"
		case yaml.SequenceNode:
			var names []string
			for _, e := range t.Content {
				names = append(names, deref(e).Value)
			}
			b += " (" + strings.Join(names, ", ") + ")"
		}
	}
	if d := deref(find(sub, "description")); d != nil && d.Kind == yaml.ScalarNode && d.Value != "" {
		b += ": " + d.Value
	}
	return b
}

func isNullableTypeArray(n *yaml.Node) bool {
	if n == nil || n.Kind != yaml.SequenceNode {
		return false
	}
	for _, e := range n.Content {
		if isNullName(deref(e)) {
			return true
		}
	}
	return false
}

// isNullName matches the "null" sentinel whether the author quoted it
// (a !!str scalar) or not (a !!null scalar).
func isNullName(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && (n.Tag == "!!null" || n.Value == "null")
}

func find(mapping *yaml.Node, key string) *yaml.Node {
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// shallow copies one node without its children. Anchors are dropped so
// the output carries no shared references.
func shallow(n *yaml.Node) *yaml.Node {
	return &yaml.Node{
		Kind:        n.Kind,
		Style:       n.Style,
		Tag:         n.Tag,
		Value:       n.Value,
		HeadComment: n.HeadComment,
		LineComment: n.LineComment,
		FootComment: n.FootComment,
	}
}

func strNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func boolNode(v bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: fmt.Sprintf("%t", v)}
}
