package coverage

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ruuvi/oaskit/api"
)

func set(codes ...int) StatusSet {
	s := make(StatusSet)
	for _, c := range codes {
		s.Add(c)
	}
	return s
}

var getSensors = api.Endpoint{Method: "GET", Path: "/sensors"}

func buildOne(t *testing.T, in Inputs) api.EndpointReport {
	t.Helper()
	rep := Build(in)
	require.Len(t, rep.Endpoints, 1)
	return rep.Endpoints[0]
}

func TestClassifyColors(t *testing.T) {
	ignore := NewIgnore(DefaultIgnorePatterns)
	tests := []struct {
		name    string
		in      Inputs
		color   string
	}{
		{
			name: "grey when nothing covered",
			in: Inputs{
				Documented: map[api.Endpoint]StatusSet{getSensors: set(200, 404)},
				Ignore:     ignore,
			},
			color: api.ColorGrey,
		},
		{
			name: "green when all non-ignored covered and passing",
			in: Inputs{
				Documented: map[api.Endpoint]StatusSet{getSensors: set(200, 404, 500)},
				Seen:       map[api.Endpoint]StatusSet{getSensors: set(200, 404)},
				Ignore:     ignore,
			},
			color: api.ColorGreen,
		},
		{
			name: "yellow on partial coverage",
			in: Inputs{
				Documented: map[api.Endpoint]StatusSet{getSensors: set(200, 404)},
				Seen:       map[api.Endpoint]StatusSet{getSensors: set(200)},
				Ignore:     ignore,
			},
			color: api.ColorYellow,
		},
		{
			name: "yellow on pass and fail mix",
			in: Inputs{
				Documented: map[api.Endpoint]StatusSet{getSensors: set(200, 404)},
				Seen:       map[api.Endpoint]StatusSet{getSensors: set(200, 404)},
				Cases: map[string]Triplet{
					"ok":  {Endpoint: getSensors, Status: 200},
					"bad": {Endpoint: getSensors, Status: 404},
				},
				FailingIDs: map[string]struct{}{"bad": {}},
				Ignore:     ignore,
			},
			color: api.ColorYellow,
		},
		{
			name: "red when covered but nothing passes",
			in: Inputs{
				Documented: map[api.Endpoint]StatusSet{getSensors: set(200)},
				Seen:       map[api.Endpoint]StatusSet{getSensors: set(200)},
				Cases: map[string]Triplet{
					"bad": {Endpoint: getSensors, Status: 200},
				},
				FailingIDs: map[string]struct{}{"bad": {}},
				Ignore:     ignore,
			},
			color: api.ColorRed,
		},
		{
			name: "undocumented status alone makes red",
			in: Inputs{
				Documented: map[api.Endpoint]StatusSet{getSensors: set(200)},
				Seen:       map[api.Endpoint]StatusSet{getSensors: set(418)},
				Cases: map[string]Triplet{
					"bad": {Endpoint: getSensors, Status: 418},
				},
				FailingIDs: map[string]struct{}{"bad": {}},
				Ignore:     ignore,
			},
			color: api.ColorRed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.color, buildOne(t, tt.in).Color)
		})
	}
}

func TestStatusWithoutCaseIDDefaultsToPassing(t *testing.T) {
	ep := buildOne(t, Inputs{
		Documented: map[api.Endpoint]StatusSet{getSensors: set(200)},
		Seen:       map[api.Endpoint]StatusSet{getSensors: set(200)},
		Ignore:     NewIgnore(nil),
	})
	require.Equal(t, []int{200}, ep.CoveredPassing)
	require.Equal(t, api.ColorGreen, ep.Color)
}

func TestFailingCaseWinsOverBareSighting(t *testing.T) {
	ep := buildOne(t, Inputs{
		Documented: map[api.Endpoint]StatusSet{getSensors: set(200)},
		Seen:       map[api.Endpoint]StatusSet{getSensors: set(200)},
		Cases: map[string]Triplet{
			"bad": {Endpoint: getSensors, Status: 200},
		},
		FailingIDs: map[string]struct{}{"bad": {}},
		Ignore:     NewIgnore(nil),
	})
	require.Equal(t, []int{200}, ep.CoveredFailing)
	require.Empty(t, ep.CoveredPassing)
}

func TestIgnoredDocumentedExcludedFromAccounting(t *testing.T) {
	rep := Build(Inputs{
		Documented: map[api.Endpoint]StatusSet{getSensors: set(200, 429, 500)},
		Seen:       map[api.Endpoint]StatusSet{getSensors: set(200)},
		Ignore:     NewIgnore(DefaultIgnorePatterns),
	})
	ep := rep.Endpoints[0]
	require.Equal(t, []int{200}, ep.NonIgnored)
	require.Equal(t, []int{429, 500}, ep.Ignored)
	require.Equal(t, 1, rep.Summary.Documented)
	require.Equal(t, 1, rep.Summary.Passing)
}

func TestEndpointsSortedByMethodThenPath(t *testing.T) {
	rep := Build(Inputs{
		Documented: map[api.Endpoint]StatusSet{
			{Method: "POST", Path: "/a"}: set(200),
			{Method: "GET", Path: "/b"}:  set(200),
			{Method: "GET", Path: "/a"}:  set(200),
		},
		Ignore: NewIgnore(nil),
	})
	var got []string
	for _, ep := range rep.Endpoints {
		got = append(got, ep.Method+" "+ep.Path)
	}
	require.Equal(t, []string{"GET /a", "GET /b", "POST /a"}, got)
}

func TestWriteText(t *testing.T) {
	rep := Build(Inputs{
		Documented: map[api.Endpoint]StatusSet{getSensors: set(200, 404)},
		Seen:       map[api.Endpoint]StatusSet{getSensors: set(200)},
		Ignore:     NewIgnore(DefaultIgnorePatterns),
	})
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, rep))
	out := buf.String()
	require.Contains(t, out, "GET /sensors [yellow]")
	require.Regexp(t, `covered & passing:\s+200\n`, out)
	require.Regexp(t, `untested \(non-ignored\):\s+404\n`, out)
	require.Regexp(t, `ignored for coverage:\s+429, 5XX\n`, out)
}

func TestWriteHTML(t *testing.T) {
	rep := Build(Inputs{
		Documented: map[api.Endpoint]StatusSet{getSensors: set(200)},
		Seen:       map[api.Endpoint]StatusSet{getSensors: set(200)},
		Ignore:     NewIgnore(DefaultIgnorePatterns),
	})
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, rep))
	out := buf.String()
	require.True(t, strings.HasPrefix(out, "<!doctype html>"))
	require.Contains(t, out, "GET /sensors")
	require.Contains(t, out, `class="badge green"`)
}
