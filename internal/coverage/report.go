// Package coverage joins a bundled OpenAPI document, a Schemathesis
// HAR capture and a JUnit report into a per-endpoint picture of which
// documented response statuses the fuzz run actually exercised.
package coverage

import (
	"sort"

	"github.com/ruuvi/oaskit/api"
)

// StatusSet is a set of HTTP status codes.
type StatusSet map[int]struct{}

func (s StatusSet) Add(code int)      { s[code] = struct{}{} }
func (s StatusSet) Has(code int) bool { _, ok := s[code]; return ok }

// Sorted returns the codes ascending; nil sets yield an empty slice.
func (s StatusSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

// Inputs holds the three joined data sources plus the ignore patterns
// in effect.
type Inputs struct {
	Documented map[api.Endpoint]StatusSet
	Seen       map[api.Endpoint]StatusSet
	Cases      map[string]Triplet
	FailingIDs map[string]struct{}
	Ignore     *Ignore
}

// Build derives pass/fail per status and classifies every documented
// endpoint. Statuses whose test case failed are failing; other cased
// statuses are passing; statuses seen without any test case ID default
// to passing unless already marked failing.
func Build(in Inputs) *api.Report {
	failing := make(map[api.Endpoint]StatusSet)
	passing := make(map[api.Endpoint]StatusSet)
	mark := func(m map[api.Endpoint]StatusSet, ep api.Endpoint, status int) {
		if m[ep] == nil {
			m[ep] = make(StatusSet)
		}
		m[ep].Add(status)
	}

	for id, triplet := range in.Cases {
		if _, failed := in.FailingIDs[id]; failed {
			mark(failing, triplet.Endpoint, triplet.Status)
		} else {
			mark(passing, triplet.Endpoint, triplet.Status)
		}
	}
	for ep, statuses := range in.Seen {
		for status := range statuses {
			if failing[ep].Has(status) || passing[ep].Has(status) {
				continue
			}
			mark(passing, ep, status)
		}
	}

	endpoints := make([]api.Endpoint, 0, len(in.Documented))
	for ep := range in.Documented {
		endpoints = append(endpoints, ep)
	}
	sort.Slice(endpoints, func(i, j int) bool {
		if endpoints[i].Method != endpoints[j].Method {
			return endpoints[i].Method < endpoints[j].Method
		}
		return endpoints[i].Path < endpoints[j].Path
	})

	rep := &api.Report{IgnorePatterns: in.Ignore.Tokens()}
	for _, ep := range endpoints {
		er := classify(ep, in.Documented[ep], in.Seen[ep], passing[ep], failing[ep], in.Ignore)
		rep.Endpoints = append(rep.Endpoints, er)
		rep.Summary.Documented += len(er.NonIgnored)
		rep.Summary.Passing += len(er.CoveredPassing)
		rep.Summary.Failing += len(er.CoveredFailing)
		rep.Summary.Untested += len(er.Untested)
		rep.Summary.Extra += len(er.ExtraSeen)
	}
	return rep
}

func classify(ep api.Endpoint, documented, seen, passing, failing StatusSet, ignore *Ignore) api.EndpointReport {
	nonIgnored := make(StatusSet)
	ignoredDocs := make(StatusSet)
	for code := range documented {
		if ignore.Ignored(code) {
			ignoredDocs.Add(code)
		} else {
			nonIgnored.Add(code)
		}
	}

	coveredPassing := make(StatusSet)
	coveredFailing := make(StatusSet)
	untested := make(StatusSet)
	for code := range nonIgnored {
		switch {
		case failing.Has(code):
			coveredFailing.Add(code)
		case passing.Has(code):
			coveredPassing.Add(code)
		default:
			untested.Add(code)
		}
	}

	ignoredPassing := make(StatusSet)
	ignoredFailing := make(StatusSet)
	for code := range ignoredDocs {
		if failing.Has(code) {
			ignoredFailing.Add(code)
		} else if passing.Has(code) {
			ignoredPassing.Add(code)
		}
	}

	// Undocumented-but-seen statuses are always failures, ignored or not.
	extra := make(StatusSet)
	for code := range seen {
		if !documented.Has(code) {
			extra.Add(code)
		}
	}

	hasCoverage := len(coveredPassing) > 0 || len(coveredFailing) > 0 ||
		len(ignoredPassing) > 0 || len(ignoredFailing) > 0 || len(extra) > 0
	hasPassing := len(coveredPassing) > 0 || len(ignoredPassing) > 0
	hasFailing := len(coveredFailing) > 0 || len(ignoredFailing) > 0 || len(extra) > 0

	var color string
	switch {
	case !hasCoverage:
		color = api.ColorGrey
	case hasFailing && hasPassing:
		color = api.ColorYellow
	case hasFailing:
		color = api.ColorRed
	case len(coveredPassing) == len(nonIgnored):
		color = api.ColorGreen
	default:
		color = api.ColorYellow
	}

	return api.EndpointReport{
		Endpoint:       ep,
		Documented:     documented.Sorted(),
		NonIgnored:     nonIgnored.Sorted(),
		Ignored:        ignoredDocs.Sorted(),
		Seen:           seen.Sorted(),
		CoveredPassing: coveredPassing.Sorted(),
		CoveredFailing: coveredFailing.Sorted(),
		Untested:       untested.Sorted(),
		IgnoredFailing: ignoredFailing.Sorted(),
		ExtraSeen:      extra.Sorted(),
		Color:          color,
	}
}
