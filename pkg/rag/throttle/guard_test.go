package throttle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeGate is a Gate backed by a plain field.
type fakeGate struct {
	last time.Time
}

func (g *fakeGate) LastRequestAt() time.Time     { return g.last }
func (g *fakeGate) SetLastRequestAt(t time.Time) { g.last = t }

func newTestGuard(interval time.Duration, start time.Time) (*Guard, *time.Time) {
	current := start
	g := NewGuard(interval)
	g.now = func() time.Time { return current }
	return g, &current
}

func TestGuardFirstRequestAllowed(t *testing.T) {
	start := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	g, _ := newTestGuard(1500*time.Millisecond, start)
	gate := &fakeGate{}

	assert.True(t, g.CheckAndRecord(gate))
	assert.Equal(t, start, gate.last)
}

func TestGuardRejectsInsideInterval(t *testing.T) {
	start := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	g, now := newTestGuard(1500*time.Millisecond, start)
	gate := &fakeGate{}

	assert.True(t, g.CheckAndRecord(gate))

	*now = start.Add(1 * time.Second)
	assert.False(t, g.CheckAndRecord(gate))
}

func TestGuardAllowsAtExactInterval(t *testing.T) {
	start := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	g, now := newTestGuard(1500*time.Millisecond, start)
	gate := &fakeGate{}

	assert.True(t, g.CheckAndRecord(gate))

	*now = start.Add(1500 * time.Millisecond)
	assert.True(t, g.CheckAndRecord(gate))
}

// A rejected attempt still advances the window: after a reject at +1s, a
// request 1.4s later is measured against the reject, not the last allowed
// request, and is rejected again.
func TestGuardRejectionSlidesWindow(t *testing.T) {
	start := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	g, now := newTestGuard(1500*time.Millisecond, start)
	gate := &fakeGate{}

	assert.True(t, g.CheckAndRecord(gate))

	*now = start.Add(1 * time.Second)
	assert.False(t, g.CheckAndRecord(gate))
	assert.Equal(t, *now, gate.last)

	*now = start.Add(2400 * time.Millisecond) // 1.4s after the reject
	assert.False(t, g.CheckAndRecord(gate))

	*now = start.Add(4 * time.Second) // 1.6s after the second reject
	assert.True(t, g.CheckAndRecord(gate))
}
