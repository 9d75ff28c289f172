package application

import "time"

// Clock lets services stamp scans and failures deterministically in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock pakai wall clock, selalu UTC
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
