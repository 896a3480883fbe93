package config

import (
	"os"
	"strconv"
	"time"
)

// Ordering is closed daily for hours in [blockStart, blockEnd). The client
// computes the same window from its local clock; the server verdict wins
// whenever the two disagree.
const (
	defaultBlockStartHour = 5
	defaultBlockEndHour   = 8
)

// OrderWindowHours returns the half-open blocked range [start, end).
func OrderWindowHours() (start, end int) {
	start = defaultBlockStartHour
	end = defaultBlockEndHour
	if v, err := strconv.Atoi(os.Getenv("ORDER_BLOCK_START")); err == nil {
		start = v
	}
	if v, err := strconv.Atoi(os.Getenv("ORDER_BLOCK_END")); err == nil {
		end = v
	}
	return start, end
}

// OrderingAllowed reports whether order submission is open at t.
func OrderingAllowed(t time.Time) bool {
	start, end := OrderWindowHours()
	h := t.Hour()
	return h < start || h >= end
}
