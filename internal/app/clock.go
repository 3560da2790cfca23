package app

import (
	"time"

	"github.com/clubworks/clubcore/internal/domain"
)

// Compile-time check: SystemClock implements domain.Clock.
var _ domain.Clock = SystemClock{}

// SystemClock is the production clock. Tests substitute a fixed clock
// through the same port.
type SystemClock struct{}

// Now returns the current wall-clock time in UTC.
func (SystemClock) Now() time.Time { return time.Now().UTC() }
