package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionHours(t *testing.T) {
	base := time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC)
	cases := []struct {
		minutes int
		want    float64
	}{
		{60, 1.0},
		{90, 1.5},
		{120, 2.0},
		{100, 1.7}, // 1.666... rounds up
		{45, 0.8},
	}
	for _, tc := range cases {
		got := SessionHours(base, base.Add(time.Duration(tc.minutes)*time.Minute))
		assert.InDelta(t, tc.want, got, 1e-9, "%d minutes", tc.minutes)
	}
}

func TestFeeCents(t *testing.T) {
	assert.Equal(t, uint32(30000), FeeCents(20000, 1.5))
	assert.Equal(t, uint32(20000), FeeCents(20000, 1.0))
	assert.Equal(t, uint32(25500), FeeCents(15000, 1.7))
	assert.Equal(t, uint32(0), FeeCents(0, 2.0))
}
