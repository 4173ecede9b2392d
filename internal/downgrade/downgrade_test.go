package downgrade

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ruuvi/oaskit/internal/doctree"
)

func apply(t *testing.T, in string) string {
	t.Helper()
	root, err := doctree.Parse([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	var sb strings.Builder
	if err := doctree.Write(&sb, Apply(root)); err != nil {
		t.Fatal(err)
	}
	return sb.String()
}

// decode round-trips through the downgrader into generic values so
// tests can compare structure without caring about formatting.
func decode(t *testing.T, in string) any {
	t.Helper()
	var v any
	if err := yaml.Unmarshal([]byte(apply(t, in)), &v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestVersionTagRewrite(t *testing.T) {
	got := decode(t, "openapi: 3.1.0\ninfo:\n  title: t\n")
	require.Equal(t, "3.0.3", got.(map[string]any)["openapi"])
}

func TestVersionTagOtherValuesPassThrough(t *testing.T) {
	for _, v := range []string{"3.1.1", "3.0.3", "2.0"} {
		got := decode(t, "openapi: "+quote(v)+"\n")
		require.Equal(t, v, got.(map[string]any)["openapi"], "version %s", v)
	}
}

func quote(s string) string { return `"` + s + `"` }

func TestNullableTypeFolding(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want map[string]any
	}{
		{
			name: "single type plus null",
			in:   `{type: [string, "null"]}`,
			want: map[string]any{"type": "string", "nullable": true},
		},
		{
			name: "null only",
			in:   `{type: ["null"]}`,
			want: map[string]any{"nullable": true},
		},
		{
			name: "two types plus null",
			in:   `{type: [string, integer, "null"]}`,
			want: map[string]any{"type": []any{"string", "integer"}, "nullable": true},
		},
		{
			name: "unquoted null sentinel",
			in:   `{type: [string, null]}`,
			want: map[string]any{"type": "string", "nullable": true},
		},
		{
			name: "existing nullable replaced",
			in:   `{nullable: false, type: [string, "null"]}`,
			want: map[string]any{"type": "string", "nullable": true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, decode(t, tt.in))
		})
	}
}

func TestTypeWithoutNullUntouched(t *testing.T) {
	got := decode(t, `{type: [string, integer]}`)
	require.Equal(t, map[string]any{"type": []any{"string", "integer"}}, got)
}

func TestPatternProperties(t *testing.T) {
	in := `
type: object
description: Sensor settings.
patternProperties:
  "^x-":
    type: string
    description: vendor ext
  "^o_":
    type: integer
additionalProperties: false
`
	got := decode(t, in).(map[string]any)

	_, hasPP := got["patternProperties"]
	require.False(t, hasPP)

	ap, ok := got["additionalProperties"].(map[string]any)
	require.True(t, ok, "additionalProperties: false must be superseded, got %v", got["additionalProperties"])

	oneOf := ap["oneOf"].([]any)
	require.Len(t, oneOf, 2)
	first := oneOf[0].(map[string]any)
	require.Equal(t, "vendor ext (matches pattern: ^x-)", first["description"])
	second := oneOf[1].(map[string]any)
	require.Equal(t, "(matches pattern: ^o_)", second["description"])

	desc := got["description"].(string)
	require.True(t, strings.HasPrefix(desc, "Sensor settings.\n\n"), "description %q", desc)
	require.Contains(t, desc, `- "^x-" (string): vendor ext`)
	require.Contains(t, desc, `- "^o_" (integer)`)
}

func TestPatternPropertiesNoParentDescription(t *testing.T) {
	got := decode(t, `{patternProperties: {"^x-": {type: string}}}`).(map[string]any)
	_, hasDesc := got["description"]
	require.False(t, hasDesc, "no description should be synthesized on the parent")
	ap := got["additionalProperties"].(map[string]any)
	require.Len(t, ap["oneOf"].([]any), 1)
}

func TestPatternSubSchemasAreDowngraded(t *testing.T) {
	got := decode(t, `{patternProperties: {"^x-": {type: [string, "null"]}}}`).(map[string]any)
	sub := got["additionalProperties"].(map[string]any)["oneOf"].([]any)[0].(map[string]any)
	require.Equal(t, "string", sub["type"])
	require.Equal(t, true, sub["nullable"])
}

func TestPassThroughPreservesStructure(t *testing.T) {
	in := `
openapi: 3.1.0
info:
  title: Ruuvi Cloud
  version: "1.0"
paths:
  /sensors:
    get:
      responses:
        "200":
          description: ok
`
	var want any
	require.NoError(t, yaml.Unmarshal([]byte(in), &want))
	want.(map[string]any)["openapi"] = "3.0.3"
	require.Equal(t, want, decode(t, in))
}

func TestKeyOrderPreserved(t *testing.T) {
	in := "zebra: 1\nalpha: 2\nmiddle: 3\n"
	require.Equal(t, in, apply(t, in))
}

func TestIdempotent(t *testing.T) {
	in := `
openapi: 3.1.0
components:
  schemas:
    Settings:
      type: object
      description: Settings map.
      patternProperties:
        "^x-":
          type: [string, "null"]
      additionalProperties: false
`
	once := apply(t, in)
	twice := apply(t, once)
	require.Equal(t, once, twice)
}

func TestAliasesAreInlined(t *testing.T) {
	in := `
defs:
  base: &base
    type: string
field1: *base
field2: *base
`
	out := apply(t, in)
	require.NotContains(t, out, "&base")
	require.NotContains(t, out, "*base")
	got := decode(t, in).(map[string]any)
	require.Equal(t, map[string]any{"type": "string"}, got["field1"])
	require.Equal(t, map[string]any{"type": "string"}, got["field2"])
}

func TestEndToEndNullableExample(t *testing.T) {
	in := `{openapi: "3.1.0", components: {schemas: {X: {type: ["string", "null"]}}}}`
	got := decode(t, in)
	want := map[string]any{
		"openapi": "3.0.3",
		"components": map[string]any{
			"schemas": map[string]any{
				"X": map[string]any{"type": "string", "nullable": true},
			},
		},
	}
	require.Equal(t, want, got)
}
