package coverage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const junitFixture = `<?xml version="1.0" encoding="utf-8"?>
<testsuites>
  <testsuite name="schemathesis" tests="3" failures="2">
    <testcase name="GET /sensors">
      <failure type="failure" message="1. Test Case ID: 7dQuzM&#10;some detail&#10;2. Test Case ID: aB3xYz"/>
    </testcase>
    <testcase name="POST /unclaim">
      <failure type="failure" message="Test Case ID: zz9901"/>
    </testcase>
    <testcase name="GET /settings"/>
  </testsuite>
</testsuites>`

func TestLoadFailingCaseIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junit.xml")
	require.NoError(t, os.WriteFile(path, []byte(junitFixture), 0o644))

	ids, err := LoadFailingCaseIDs(path)
	require.NoError(t, err)

	want := map[string]struct{}{
		"7dQuzM": {},
		"aB3xYz": {},
		"zz9901": {},
	}
	require.Equal(t, want, ids)
}

func TestCollectCaseIDsIgnoresOtherLines(t *testing.T) {
	ids := make(map[string]struct{})
	collectCaseIDs("assertion failed\nexpected 200 got 500\nCurl: curl -X GET", ids)
	require.Empty(t, ids)
}

func TestLoadFailingCaseIDsBadXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junit.xml")
	require.NoError(t, os.WriteFile(path, []byte("<unclosed"), 0o644))
	_, err := LoadFailingCaseIDs(path)
	require.Error(t, err)
}
