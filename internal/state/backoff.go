package state

import "time"

const (
	defaultResubscribeBase = 2 * time.Second
	maxBackoff             = 30 * time.Second
)

// ResubscribePolicy decides what happens when the favorites stream ends with
// an error.
type ResubscribePolicy int

const (
	// ResubscribeBackoff reopens the stream after an exponential delay.
	ResubscribeBackoff ResubscribePolicy = iota
	// ResubscribeNever logs the error and leaves favorites as last seen.
	ResubscribeNever
)

// ParseResubscribePolicy maps a config value to a policy.
func ParseResubscribePolicy(value string) (ResubscribePolicy, bool) {
	switch value {
	case "", "backoff":
		return ResubscribeBackoff, true
	case "never":
		return ResubscribeNever, true
	default:
		return ResubscribeBackoff, false
	}
}

// calculateBackoff returns base doubled once per consecutive failure, capped
// at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
