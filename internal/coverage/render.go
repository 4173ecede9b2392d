package coverage

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ruuvi/oaskit/api"
)

func statusList(codes []int) string {
	if len(codes) == 0 {
		return "-"
	}
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ", ")
}

// WriteText renders the per-endpoint report plus a summary.
func WriteText(w io.Writer, rep *api.Report) error {
	for _, ep := range rep.Endpoints {
		rows := []struct {
			label string
			codes []int
		}{
			{"documented:", ep.Documented},
			{"documented (non-ignored):", ep.NonIgnored},
			{"seen (any):", ep.Seen},
			{"covered & passing:", ep.CoveredPassing},
			{"covered & failing:", ep.CoveredFailing},
			{"untested (non-ignored):", ep.Untested},
			{"ignored documented statuses:", ep.Ignored},
			{"ignored & failing:", ep.IgnoredFailing},
			{"undocumented but seen (FAIL):", ep.ExtraSeen},
		}
		if _, err := fmt.Fprintf(w, "%s %s [%s]\n", ep.Method, ep.Path, ep.Color); err != nil {
			return err
		}
		for _, row := range rows {
			if _, err := fmt.Fprintf(w, "  %-31s %s\n", row.label, statusList(row.codes)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return writeSummary(w, rep)
}

func writeSummary(w io.Writer, rep *api.Report) error {
	s := rep.Summary
	pct := func(n int) string {
		if s.Documented == 0 {
			return "-"
		}
		return fmt.Sprintf("%.1f%%", float64(n)*100/float64(s.Documented))
	}
	ignored := "none"
	if len(rep.IgnorePatterns) > 0 {
		ignored = strings.Join(rep.IgnorePatterns, ", ")
	}
	_, err := fmt.Fprintf(w,
		"summary\n"+
			"  documented statuses (non-ignored): %d\n"+
			"  covered & passing:                 %d (%s)\n"+
			"  covered & failing:                 %d (%s)\n"+
			"  untested:                          %d (%s)\n"+
			"  undocumented but seen:             %d\n"+
			"  ignored for coverage:              %s\n",
		s.Documented,
		s.Passing, pct(s.Passing),
		s.Failing, pct(s.Failing),
		s.Untested, pct(s.Untested),
		s.Extra,
		ignored)
	return err
}
