package annotate

import "fmt"

// Policy decides what happens to an element whose timestamp cannot be
// turned into a label.
type Policy string

const (
	// PolicySkip leaves the element untouched and records the error.
	PolicySkip Policy = "skip"
	// PolicyFail aborts the pass; the page is not modified.
	PolicyFail Policy = "fail"
	// PolicyLegacy renders what a permissive browser script would:
	// "NaN seconds ago" for unparseable text and a negative seconds count
	// for future timestamps.
	PolicyLegacy Policy = "legacy"
)

// Policies lists the accepted policy names.
var Policies = []Policy{PolicySkip, PolicyFail, PolicyLegacy}

// ParsePolicy validates a policy name. The empty string means PolicySkip.
func ParsePolicy(s string) (Policy, error) {
	if s == "" {
		return PolicySkip, nil
	}
	for _, p := range Policies {
		if Policy(s) == p {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown error policy %q (want skip, fail or legacy)", s)
}
