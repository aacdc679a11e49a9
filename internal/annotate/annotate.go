// Package annotate rewrites HTML pages so that every element carrying a
// marker class shows how long ago its timestamp was, wrapped in a <time>
// element that keeps the original text as its datetime attribute.
package annotate

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/imgajeed76/relstamp/internal/clock"
	"github.com/imgajeed76/relstamp/internal/reltime"
	"github.com/imgajeed76/relstamp/internal/timeparse"
)

// DefaultClass marks the elements to annotate.
const DefaultClass = "timestamp"

// legacyInvalid is what the permissive rendering shows for unparseable text.
const legacyInvalid = "NaN seconds ago"

var (
	ErrAlreadyAnnotated = errors.New("page already annotated")
	ErrInvalidClass     = errors.New("invalid marker class")
)

var classPattern = regexp.MustCompile(`^-?[_a-zA-Z][_a-zA-Z0-9-]*$`)

// TimestampParser turns element text into an instant.
type TimestampParser interface {
	Parse(text string) (time.Time, error)
}

// Annotator runs annotation passes. It holds no per-page state and may be
// shared between goroutines.
type Annotator struct {
	class   string
	matcher goquery.Matcher
	parser  TimestampParser
	clock   clock.Clock
	policy  Policy
	logger  *slog.Logger
}

// Option configures an Annotator.
type Option func(*Annotator)

// WithClass sets the marker class (default "timestamp").
func WithClass(class string) Option {
	return func(a *Annotator) { a.class = class }
}

// WithParser sets the timestamp parser (default timeparse.Default()).
func WithParser(p TimestampParser) Option {
	return func(a *Annotator) { a.parser = p }
}

// WithClock sets the source of "now" (default the system clock).
func WithClock(c clock.Clock) Option {
	return func(a *Annotator) { a.clock = c }
}

// WithPolicy sets the error policy (default PolicySkip).
func WithPolicy(p Policy) Option {
	return func(a *Annotator) { a.policy = p }
}

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(a *Annotator) { a.logger = l }
}

// New builds an Annotator. It fails when the marker class is not a plain
// CSS class name or the policy is unknown.
func New(opts ...Option) (*Annotator, error) {
	a := &Annotator{
		class:  DefaultClass,
		policy: PolicySkip,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.parser == nil {
		a.parser = timeparse.Default()
	}
	if a.clock == nil {
		a.clock = clock.Real{}
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if _, err := ParsePolicy(string(a.policy)); err != nil {
		return nil, err
	}

	if !classPattern.MatchString(a.class) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidClass, a.class)
	}
	sel, err := cascadia.Compile("." + a.class)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidClass, a.class, err)
	}
	a.matcher = sel
	return a, nil
}

// Class returns the marker class.
func (a *Annotator) Class() string {
	return a.class
}

// Policy returns the error policy.
func (a *Annotator) Policy() Policy {
	return a.policy
}

// Annotate runs the pass over p. Matching elements are collected into a
// fixed snapshot first, every label is computed against a single reading
// of the clock, and only then are elements rewritten in document order.
// Under PolicyFail the first error aborts the pass before anything is
// written. A page can be annotated only once.
func (a *Annotator) Annotate(p *Page) (Report, error) {
	if p.annotated {
		return Report{}, ErrAlreadyAnnotated
	}

	targets := p.doc.FindMatcher(a.matcher)
	now := a.clock.Now()

	report := Report{Elements: make([]Result, 0, targets.Length())}
	targets.Each(func(i int, s *goquery.Selection) {
		report.Elements = append(report.Elements, a.label(i, s.Text(), now))
	})

	if a.policy == PolicyFail {
		for _, res := range report.Elements {
			if res.Err != nil {
				return report, fmt.Errorf("element %d (%q): %w", res.Index, res.Text, res.Err)
			}
		}
	}

	targets.Each(func(i int, s *goquery.Selection) {
		res := report.Elements[i]
		if res.Rendered == "" {
			a.logger.Warn("timestamp left untouched", "index", i, "text", res.Text, "error", res.Err)
			return
		}
		s.Empty()
		s.AppendNodes(timeNode(res.Text, res.Rendered))
	})
	p.annotated = true

	a.logger.Debug("annotation pass complete",
		"class", a.class,
		"matched", len(report.Elements),
		"annotated", report.Annotated(),
		"skipped", report.Skipped())
	return report, nil
}

// Rewrite loads a page from r, annotates it and renders it to w. Nothing is
// written when the pass fails.
func (a *Annotator) Rewrite(r io.Reader, w io.Writer) (Report, error) {
	p, err := Load(r)
	if err != nil {
		return Report{}, err
	}
	report, err := a.Annotate(p)
	if err != nil {
		return report, err
	}
	return report, p.Render(w)
}

func (a *Annotator) label(i int, text string, now time.Time) Result {
	res := Result{Index: i, Text: text}

	then, err := a.parser.Parse(text)
	if err != nil {
		res.Err = err
		if a.policy == PolicyLegacy {
			res.Rendered = legacyInvalid
		}
		return res
	}

	res.Label, res.Err = reltime.Since(then, now)
	switch {
	case res.Err == nil:
		res.Rendered = res.Label.Ago()
	case a.policy == PolicyLegacy:
		res.Label = reltime.FromSeconds(reltime.ElapsedSeconds(then, now))
		res.Rendered = res.Label.Ago()
	}
	return res
}

// timeNode builds <time datetime="text">rendered</time>.
func timeNode(text, rendered string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     "time",
		DataAtom: atom.Time,
		Attr:     []html.Attribute{{Key: "datetime", Val: text}},
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: rendered})
	return n
}
