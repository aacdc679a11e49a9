// Package timeparse parses timestamp text against an explicit, ordered list
// of layouts. Text matching none of them is rejected rather than guessed at.
package timeparse

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // parse.timezone must resolve on hosts without zoneinfo

	"github.com/imgajeed76/relstamp/internal/reltime"
)

// DefaultLayouts are tried in order. Fractional seconds are accepted after
// the seconds field even though the layouts do not spell them out.
var DefaultLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	time.DateTime,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
	time.RFC1123Z,
	time.RFC1123,
}

// named layouts usable in config files instead of reference-time strings
var named = map[string]string{
	"rfc3339":  time.RFC3339,
	"rfc1123":  time.RFC1123,
	"rfc1123z": time.RFC1123Z,
	"rfc822":   time.RFC822,
	"rfc822z":  time.RFC822Z,
	"datetime": time.DateTime,
	"dateonly": time.DateOnly,
}

// ParseError reports timestamp text that matched no layout.
type ParseError struct {
	Text    string
	Layouts []string
}

func (e *ParseError) Error() string {
	if strings.TrimSpace(e.Text) == "" {
		return "empty timestamp"
	}
	return fmt.Sprintf("cannot parse %q with any of %d layouts", e.Text, len(e.Layouts))
}

func (e *ParseError) Unwrap() error {
	return reltime.ErrInvalidTimestamp
}

// Parser parses timestamps. Layouts without a zone are read in Location.
type Parser struct {
	Layouts  []string
	Location *time.Location
}

// New builds a parser. Named layouts ("rfc3339", "datetime", ...) are
// expanded; an empty list means DefaultLayouts and a nil location means
// time.Local.
func New(layouts []string, loc *time.Location) *Parser {
	p := &Parser{Location: loc}
	if p.Location == nil {
		p.Location = time.Local
	}
	if len(layouts) == 0 {
		layouts = DefaultLayouts
	}
	for _, l := range layouts {
		if expanded, ok := named[strings.ToLower(l)]; ok {
			l = expanded
		}
		p.Layouts = append(p.Layouts, l)
	}
	return p
}

// Default returns a parser over DefaultLayouts in the local zone.
func Default() *Parser {
	return New(nil, nil)
}

// NewInZone is New with the location given by IANA name ("UTC", "Local",
// "Europe/London").
func NewInZone(layouts []string, zone string) (*Parser, error) {
	if zone == "" {
		return New(layouts, nil), nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", zone, err)
	}
	return New(layouts, loc), nil
}

// Parse returns the first successful parse of s. Surrounding whitespace is
// ignored.
func (p *Parser) Parse(s string) (time.Time, error) {
	text := strings.TrimSpace(s)
	if text != "" {
		for _, layout := range p.Layouts {
			if t, err := time.ParseInLocation(layout, text, p.Location); err == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, &ParseError{Text: s, Layouts: p.Layouts}
}
