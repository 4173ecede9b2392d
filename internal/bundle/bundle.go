// Package bundle inlines external $ref references so a multi-file
// OpenAPI document becomes a single self-contained tree. Internal
// references (#/...) are left alone; only refs that name another file
// are resolved and spliced.
package bundle

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"gopkg.in/yaml.v3"

	"github.com/ruuvi/oaskit/internal/doctree"
)

// CycleError reports a reference cycle through external files.
type CycleError struct {
	Chain []string // file#fragment hops, in reference order
}

func (e *CycleError) Error() string {
	return "reference cycle: " + strings.Join(e.Chain, " -> ")
}

// Bundler resolves external references against a filesystem. Files are
// parsed once and cached, so a fragment referenced from many places is
// read a single time.
type Bundler struct {
	fs    billy.Filesystem
	cache map[string]*yaml.Node
}

func New(fs billy.Filesystem) *Bundler {
	return &Bundler{fs: fs, cache: make(map[string]*yaml.Node)}
}

// Bundle loads specPath and returns a copy of its tree with every
// external $ref replaced by the referenced fragment. A spliced
// fragment's own external refs resolve relative to the file it came
// from.
func (b *Bundler) Bundle(specPath string) (*yaml.Node, error) {
	specPath = path.Clean(specPath)
	root, err := b.load(specPath)
	if err != nil {
		return nil, err
	}
	return b.expand(root, specPath, nil)
}

func (b *Bundler) expand(n *yaml.Node, base string, active []string) (*yaml.Node, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return b.expand(n.Alias, base, active)
	case yaml.SequenceNode:
		out := shallow(n)
		for _, c := range n.Content {
			e, err := b.expand(c, base, active)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, e)
		}
		return out, nil
	case yaml.MappingNode:
		if ref := externalRef(n); ref != "" {
			return b.splice(ref, base, active)
		}
		out := shallow(n)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := b.expand(n.Content[i+1], base, active)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, shallow(n.Content[i]), v)
		}
		return out, nil
	default:
		return shallow(n), nil
	}
}

// splice resolves one external reference and expands the referenced
// fragment in place. Any sibling keys on the $ref mapping are
// superseded by the fragment.
func (b *Bundler) splice(ref, base string, active []string) (*yaml.Node, error) {
	file, fragment, _ := strings.Cut(ref, "#")
	target := path.Join(path.Dir(base), file)
	hop := target + "#" + fragment
	for _, seen := range active {
		if seen == hop {
			return nil, &CycleError{Chain: append(append([]string{}, active...), hop)}
		}
	}
	doc, err := b.load(target)
	if err != nil {
		return nil, fmt.Errorf("resolve $ref %q from %s: %w", ref, base, err)
	}
	frag, err := resolvePointer(doc, fragment)
	if err != nil {
		return nil, fmt.Errorf("resolve $ref %q from %s: %w", ref, base, err)
	}
	return b.expand(frag, target, append(active, hop))
}

// externalRef returns the $ref value when the mapping is an external
// reference, or "" otherwise.
func externalRef(m *yaml.Node) string {
	ref := doctree.Find(m, "$ref")
	if ref == nil || ref.Kind != yaml.ScalarNode {
		return ""
	}
	if ref.Value == "" || strings.HasPrefix(ref.Value, "#") {
		return ""
	}
	return ref.Value
}

func (b *Bundler) load(p string) (*yaml.Node, error) {
	p = path.Clean(p)
	if n, ok := b.cache[p]; ok {
		return n, nil
	}
	data, err := util.ReadFile(b.fs, p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	n, err := doctree.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", p, err)
	}
	b.cache[p] = n
	return n, nil
}

// resolvePointer walks a JSON-Pointer fragment ("/components/schemas/X")
// through the tree. An empty fragment addresses the whole document.
func resolvePointer(root *yaml.Node, fragment string) (*yaml.Node, error) {
	if fragment == "" || fragment == "/" {
		return root, nil
	}
	n := root
	for _, token := range strings.Split(strings.TrimPrefix(fragment, "/"), "/") {
		token = strings.ReplaceAll(token, "~1", "/")
		token = strings.ReplaceAll(token, "~0", "~")
		switch deref(n).Kind {
		case yaml.MappingNode:
			next := doctree.Find(deref(n), token)
			if next == nil {
				return nil, fmt.Errorf("no key %q in fragment %q", token, fragment)
			}
			n = next
		case yaml.SequenceNode:
			idx, err := strconv.Atoi(token)
			if err != nil || idx < 0 || idx >= len(deref(n).Content) {
				return nil, fmt.Errorf("bad sequence index %q in fragment %q", token, fragment)
			}
			n = deref(n).Content[idx]
		default:
			return nil, fmt.Errorf("cannot descend into scalar at %q in fragment %q", token, fragment)
		}
	}
	return n, nil
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

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
