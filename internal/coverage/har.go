package coverage

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ruuvi/oaskit/api"
)

// caseIDHeader is the request header Schemathesis stamps on every
// generated test case.
const caseIDHeader = "x-schemathesis-testcaseid"

// Triplet ties one Schemathesis test case to the endpoint and status
// it produced.
type Triplet struct {
	Endpoint api.Endpoint
	Status   int
}

type harFile struct {
	Log struct {
		Entries []struct {
			Request struct {
				Method  string `json:"method"`
				URL     string `json:"url"`
				Headers []struct {
					Name  string `json:"name"`
					Value string `json:"value"`
				} `json:"headers"`
			} `json:"request"`
			Response struct {
				Status int `json:"status"`
			} `json:"response"`
		} `json:"entries"`
	} `json:"log"`
}

// LoadHAR reads a Schemathesis HAR file and returns the statuses seen
// per endpoint plus the test-case-id → triplet index.
func LoadHAR(path string) (map[api.Endpoint]StatusSet, map[string]Triplet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read HAR %s: %w", path, err)
	}
	var har harFile
	if err := json.Unmarshal(data, &har); err != nil {
		return nil, nil, fmt.Errorf("parse HAR %s: %w", path, err)
	}

	seen := make(map[api.Endpoint]StatusSet)
	cases := make(map[string]Triplet)
	for _, entry := range har.Log.Entries {
		ep := api.Endpoint{
			Method: strings.ToUpper(entry.Request.Method),
			Path:   extractPath(entry.Request.URL),
		}
		status := entry.Response.Status

		if seen[ep] == nil {
			seen[ep] = make(StatusSet)
		}
		seen[ep].Add(status)

		for _, h := range entry.Request.Headers {
			if strings.EqualFold(h.Name, caseIDHeader) && h.Value != "" {
				cases[h.Value] = Triplet{Endpoint: ep, Status: status}
				break
			}
		}
	}
	return seen, cases, nil
}

// extractPath crudely strips scheme, host and query from a URL:
// https://testnet.ruuvi.com/sensor-settings?sensor=x -> /sensor-settings.
func extractPath(rawURL string) string {
	noScheme := rawURL
	if i := strings.Index(noScheme, "://"); i >= 0 {
		noScheme = noScheme[i+3:]
	}
	afterHost := noScheme
	if i := strings.Index(afterHost, "/"); i >= 0 {
		afterHost = afterHost[i+1:]
	}
	p, _, _ := strings.Cut(afterHost, "?")
	return "/" + p
}
