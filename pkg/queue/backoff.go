package queue

import "time"

// maxBackoffShift bounds the doubling so the multiplication cannot overflow
// a time.Duration; with a 2s base the 30th doubling already exceeds 68 years.
const maxBackoffShift = 30

// backoffDelay returns the delay before retry n (0-based): base * 2^n.
// Growth is unbounded when max is zero; a positive max clamps the result.
// Past ~20 attempts the uncapped delay exceeds any practical wait time,
// so callers should prefer setting a cap.
func backoffDelay(base time.Duration, n int, max time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	if n < 0 {
		n = 0
	}
	if n > maxBackoffShift {
		n = maxBackoffShift
	}
	d := base << uint(n)
	if max > 0 && d > max {
		return max
	}
	return d
}
