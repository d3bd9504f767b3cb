package service

import (
	"math"
	"time"
)

// SessionHours converts a booking interval to hours rounded to one decimal
// place, the billing granularity of the fee schedule.
func SessionHours(start, end time.Time) float64 {
	h := end.Sub(start).Hours()
	return math.Round(h*10) / 10
}

// FeeCents computes the session fee from the coach's hourly rate and the
// rounded session length.
func FeeCents(hourlyRateCents uint32, hours float64) uint32 {
	return uint32(math.Round(float64(hourlyRateCents) * hours))
}
