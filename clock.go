package formula

import "time"

// Clock supplies the current instant to volatile functions (NOW, TODAY),
// grounded on the teacher's Clock/WallClock split so evaluation stays
// deterministic and testable rather than calling time.Now directly.
type Clock interface {
	Now() time.Time
}

// WallClock is the production Clock backed by the real system time.
type WallClock struct{}

func (WallClock) Now() time.Time { return time.Now() }

// FixedClock is a test Clock that always returns the same instant.
type FixedClock struct{ At time.Time }

func (c FixedClock) Now() time.Time { return c.At }
