package cache

import "time"

// Clock abstracts wall-clock reads so TTL behavior is deterministic in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
