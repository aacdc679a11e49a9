// Package clock abstracts the current time so annotation output can be
// reproduced in tests and from the command line.
package clock

import "time"

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// Real returns the system time.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Fixed always returns the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

var (
	_ Clock = Real{}
	_ Clock = Fixed{}
)
