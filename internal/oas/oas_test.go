package oas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ruuvi/oaskit/api"
)

const validSpec = `openapi: 3.0.3
info:
  title: Ruuvi Cloud
  version: "1.0"
paths:
  /sensors:
    get:
      summary: list sensors
      responses:
        "200":
          description: ok
        "401":
          description: unauthorized
        default:
          description: anything else
    post:
      summary: claim a sensor
      responses:
        "200":
          description: ok
`

func writeSpec(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "openapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAndValidate(t *testing.T) {
	doc, err := LoadAndValidate(writeSpec(t, validSpec))
	require.NoError(t, err)
	require.Equal(t, "Ruuvi Cloud", doc.Info.Title)
}

func TestLoadAndValidateRejectsBrokenDocument(t *testing.T) {
	// paths is required in 3.0.
	_, err := LoadAndValidate(writeSpec(t, "openapi: 3.0.3\ninfo:\n  title: t\n  version: \"1\"\n"))
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestDocumentedStatuses(t *testing.T) {
	doc, err := Load(writeSpec(t, validSpec))
	require.NoError(t, err)

	got := DocumentedStatuses(doc)
	require.Equal(t, []int{200, 401}, got[api.Endpoint{Method: "GET", Path: "/sensors"}].Sorted())
	require.Equal(t, []int{200}, got[api.Endpoint{Method: "POST", Path: "/sensors"}].Sorted())
	require.Len(t, got, 2, "default response keys must be skipped")
}

func TestEndpoints(t *testing.T) {
	doc, err := Load(writeSpec(t, validSpec))
	require.NoError(t, err)

	got := Endpoints(doc)
	require.Equal(t, []Operation{
		{Method: "GET", Path: "/sensors", Summary: "list sensors"},
		{Method: "POST", Path: "/sensors", Summary: "claim a sensor"},
	}, got)
}
