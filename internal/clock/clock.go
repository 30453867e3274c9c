// Package clock provides an injectable time source so that slot
// availability and calendar logic never read the wall clock directly.
package clock

import "time"

// Clock returns the current instant.
type Clock interface {
	Now() time.Time
}

// Real reads the system clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Fixed always returns the same instant. Intended for tests.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }

// At returns a Fixed clock pinned to t.
func At(t time.Time) Fixed { return Fixed{T: t} }
