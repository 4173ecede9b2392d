package api

// Endpoint identifies one documented operation: an upper-case HTTP
// method plus a literal path template.
type Endpoint struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// Endpoint colors, from best to worst.
const (
	ColorGreen  = "green"  // every non-ignored documented status covered and passing
	ColorYellow = "yellow" // partial coverage, or a mix of passing and failing
	ColorRed    = "red"    // coverage exists but nothing passes
	ColorGrey   = "grey"   // nothing covered at all
)

// EndpointReport is the per-endpoint outcome of one coverage run.
// Status slices are sorted ascending; empty means none.
type EndpointReport struct {
	Endpoint

	// Documented is every numeric status the spec declares for this
	// endpoint; NonIgnored and Ignored partition it by the ignore
	// patterns in effect.
	Documented []int `json:"documented"`
	NonIgnored []int `json:"non_ignored"`
	Ignored    []int `json:"ignored"`

	// Seen is every status observed in the HAR, documented or not.
	Seen []int `json:"seen"`

	CoveredPassing []int `json:"covered_passing"`
	CoveredFailing []int `json:"covered_failing"`
	Untested       []int `json:"untested"`
	IgnoredFailing []int `json:"ignored_failing"`

	// ExtraSeen holds statuses seen but not documented. These always
	// count as failures, ignore patterns notwithstanding.
	ExtraSeen []int `json:"extra_seen"`

	Color string `json:"color"`
}

// Summary aggregates a run across endpoints. Only non-ignored
// documented statuses enter the Documented/Passing/Failing/Untested
// counters.
type Summary struct {
	Documented int `json:"documented"`
	Passing    int `json:"passing"`
	Failing    int `json:"failing"`
	Untested   int `json:"untested"`
	Extra      int `json:"extra"`
}

// Report is the full outcome of one coverage run.
type Report struct {
	IgnorePatterns []string         `json:"ignore_patterns"`
	Endpoints      []EndpointReport `json:"endpoints"`
	Summary        Summary          `json:"summary"`
}
