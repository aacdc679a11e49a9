package annotate

import (
	"errors"
	"fmt"

	"github.com/imgajeed76/relstamp/internal/reltime"
)

// Result is the outcome for one marked element, in document order.
type Result struct {
	Index    int
	Text     string        // original text content, also the datetime attribute
	Label    reltime.Label // zero when the timestamp was rejected
	Rendered string        // human-readable text written; empty if untouched
	Err      error
}

// Report summarises one pass.
type Report struct {
	Elements []Result
}

// Annotated counts elements whose content was replaced.
func (r Report) Annotated() int {
	n := 0
	for _, e := range r.Elements {
		if e.Rendered != "" {
			n++
		}
	}
	return n
}

// Skipped counts elements left untouched.
func (r Report) Skipped() int {
	return len(r.Elements) - r.Annotated()
}

// Err joins the per-element errors, or returns nil when there were none.
func (r Report) Err() error {
	var errs []error
	for _, e := range r.Elements {
		if e.Err != nil {
			errs = append(errs, fmt.Errorf("element %d (%q): %w", e.Index, e.Text, e.Err))
		}
	}
	return errors.Join(errs...)
}
