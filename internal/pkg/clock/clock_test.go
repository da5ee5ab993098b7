package clock_test

import (
	"testing"
	"time"

	"dispatch/internal/pkg/clock"

	"github.com/stretchr/testify/assert"
)

func TestManual(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := clock.NewManual(start)
	assert.Equal(t, start, c.Now())

	c.Advance(90 * time.Second)
	assert.Equal(t, start.Add(90*time.Second), c.Now())

	c.Set(start)
	assert.Equal(t, start, c.Now())
}

func TestSystem_IsUTC(t *testing.T) {
	assert.Equal(t, time.UTC, clock.System{}.Now().Location())
}
