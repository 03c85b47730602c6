package chrono

import (
	"time"
)

// TimeAPI is the interface that anything depending on the system clock should use.
type TimeAPI interface {
	Now() time.Time
}

// StandardTime is the standard implementation of TimeAPI using the standard library.
type StandardTime struct{}

// NewStandardTime is the constructor of StandardTime.
func NewStandardTime() StandardTime {
	return StandardTime{}
}

func (StandardTime) Now() time.Time {
	return time.Now()
}

// SteppedTime starts at a fixed instant and advances by Step on every call
// to Now, tests use it to get distinct and predictable timestamps.
type SteppedTime struct {
	Current time.Time
	Step    time.Duration
}

func (s *SteppedTime) Now() time.Time {
	s.Current = s.Current.Add(s.Step)
	return s.Current
}
