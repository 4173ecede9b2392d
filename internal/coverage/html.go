package coverage

import (
	"fmt"
	"html/template"
	"io"

	"github.com/ruuvi/oaskit/api"
)

var htmlFuncs = template.FuncMap{
	"statuses": statusList,
	"pct": func(n, total int) string {
		if total == 0 {
			return "-"
		}
		return fmt.Sprintf("%.1f%%", float64(n)*100/float64(total))
	},
	"join": func(parts []string) string {
		if len(parts) == 0 {
			return "none"
		}
		out := parts[0]
		for _, p := range parts[1:] {
			out += ", " + p
		}
		return out
	},
}

var htmlReport = template.Must(template.New("report").Funcs(htmlFuncs).Parse(`<!doctype html>
<html><head><meta charset="utf-8">
<title>API coverage report</title>
<style>
body { font-family: sans-serif; margin: 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin-bottom: 1em; }
th, td { border: 1px solid #ccc; padding: 4px 8px; font-size: 0.9em; }
.endpoint-header.green { background-color: #c8e6c9; }
.endpoint-header.yellow { background-color: #fff9c4; }
.endpoint-header.red { background-color: #ffcdd2; }
.endpoint-header.grey { background-color: #eeeeee; }
.endpoint-header th { text-align: left; }
.badge { display: inline-block; width: 0.8em; height: 0.8em; margin-right: 0.5em; border-radius: 0.2em; }
.badge.green { background-color: #4caf50; }
.badge.yellow { background-color: #ffeb3b; }
.badge.red { background-color: #f44336; }
.badge.grey { background-color: #9e9e9e; }
details { margin-bottom: 0.8em; }
summary { cursor: pointer; font-weight: bold; margin-bottom: 0.2em; }
.muted { color: #666; font-size: 0.85em; }
</style></head><body>
<h1>API coverage report</h1>
<h2>Summary</h2>
<table>
<tr><th>Metric</th><th>Count</th><th>Percent of documented (non-ignored)</th></tr>
<tr><td>Documented statuses (non-ignored)</td><td>{{.Summary.Documented}}</td><td>-</td></tr>
<tr><td>Covered &amp; passing</td><td>{{.Summary.Passing}}</td><td>{{pct .Summary.Passing .Summary.Documented}}</td></tr>
<tr><td>Covered &amp; failing</td><td>{{.Summary.Failing}}</td><td>{{pct .Summary.Failing .Summary.Documented}}</td></tr>
<tr><td>Untested</td><td>{{.Summary.Untested}}</td><td>{{pct .Summary.Untested .Summary.Documented}}</td></tr>
<tr><td>Seen but undocumented statuses (always treated as failures)</td><td>{{.Summary.Extra}}</td><td>-</td></tr>
</table>
<p class="muted">Ignored for coverage (but still reported if seen failing): {{join .IgnorePatterns}}</p>
<h2>Endpoints</h2>
{{range .Endpoints}}<details>
<summary><span class="badge {{.Color}}"></span>{{.Method}} {{.Path}}</summary>
<table>
<tr class="endpoint-header {{.Color}}"><th colspan="2">{{.Method}} {{.Path}}</th></tr>
<tr><td>Documented</td><td>{{statuses .Documented}}</td></tr>
<tr><td>Documented (non-ignored)</td><td>{{statuses .NonIgnored}}</td></tr>
<tr><td>Seen (any)</td><td>{{statuses .Seen}}</td></tr>
<tr><td>Covered &amp; passing</td><td>{{statuses .CoveredPassing}}</td></tr>
<tr><td>Covered &amp; failing</td><td>{{statuses .CoveredFailing}}</td></tr>
<tr><td>Untested (non-ignored documented)</td><td>{{statuses .Untested}}</td></tr>
<tr><td>Ignored documented statuses</td><td>{{statuses .Ignored}}</td></tr>
<tr><td>Ignored &amp; failing</td><td>{{statuses .IgnoredFailing}}</td></tr>
<tr><td>Undocumented but seen (treated as failures)</td><td>{{statuses .ExtraSeen}}</td></tr>
</table>
</details>
{{end}}</body></html>
`))

// WriteHTML renders the report as a standalone HTML page with a summary
// table and collapsible per-endpoint detail tables.
func WriteHTML(w io.Writer, rep *api.Report) error {
	return htmlReport.Execute(w, rep)
}
