// Package reltime computes how long ago an instant occurred, bucketed into
// a single coarse unit ("3 days", "2 hours").
package reltime

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrFutureTimestamp  = errors.New("timestamp is in the future")
)

// Unit is the unit a Label is expressed in. Units are always plural.
type Unit string

const (
	Years   Unit = "years"
	Months  Unit = "months"
	Days    Unit = "days"
	Hours   Unit = "hours"
	Minutes Unit = "minutes"
	Seconds Unit = "seconds"
)

// Label is a magnitude in a single unit, e.g. {3, Days}.
type Label struct {
	Magnitude int64
	Unit      Unit
}

func (l Label) String() string {
	return fmt.Sprintf("%d %s", l.Magnitude, l.Unit)
}

// Ago renders the label as "<magnitude> <unit> ago".
func (l Label) Ago() string {
	return l.String() + " ago"
}

func (l Label) IsZero() bool {
	return l.Unit == ""
}

// Buckets are scanned largest first. A month is 30 days and a year 365.
var buckets = []struct {
	divisor int64
	unit    Unit
}{
	{31536000, Years},
	{2592000, Months},
	{86400, Days},
	{3600, Hours},
	{60, Minutes},
}

// FromSeconds picks the largest unit whose count exceeds 2 (strictly), so
// 1.9 years is still reported in months and 119 seconds stays in seconds.
// Negative input falls through to the seconds bucket unchanged.
func FromSeconds(elapsed int64) Label {
	for _, b := range buckets {
		interval := float64(elapsed) / float64(b.divisor)
		if interval > 2 {
			return Label{Magnitude: int64(math.Floor(interval)), Unit: b.unit}
		}
	}
	return Label{Magnitude: elapsed, Unit: Seconds}
}

// ElapsedSeconds returns floor((now - then) / 1s), computed on Unix
// milliseconds so distant instants do not overflow time.Duration.
func ElapsedSeconds(then, now time.Time) int64 {
	ms := now.UnixMilli() - then.UnixMilli()
	sec := ms / 1000
	if ms%1000 != 0 && ms < 0 {
		sec--
	}
	return sec
}

// Since returns the label for then relative to now. A then later than now
// yields ErrFutureTimestamp. The zero time.Time means "no timestamp" and
// yields ErrInvalidTimestamp, so the instant 0001-01-01T00:00:00Z itself
// cannot be labelled.
func Since(then, now time.Time) (Label, error) {
	if then.IsZero() {
		return Label{}, ErrInvalidTimestamp
	}
	elapsed := ElapsedSeconds(then, now)
	if elapsed < 0 {
		return Label{}, fmt.Errorf("%w: %d seconds ahead of now", ErrFutureTimestamp, -elapsed)
	}
	return FromSeconds(elapsed), nil
}
