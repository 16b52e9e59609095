package throttle

import "time"

// Gate is the per-session request clock the guard reads and advances. It is
// implemented by store.Session.
type Gate interface {
	LastRequestAt() time.Time
	SetLastRequestAt(t time.Time)
}

// Guard enforces a minimum interval between queries of one session.
type Guard struct {
	interval time.Duration
	now      func() time.Time
}

func NewGuard(interval time.Duration) *Guard {
	return &Guard{
		interval: interval,
		now:      time.Now,
	}
}

// CheckAndRecord reports whether a request may proceed and stamps the gate
// with the current time either way. Rejected attempts also advance the
// window, so hammering the endpoint keeps pushing the next allowed moment
// out instead of queueing up.
func (g *Guard) CheckAndRecord(gate Gate) bool {
	now := g.now()
	last := gate.LastRequestAt()
	gate.SetLastRequestAt(now)

	if last.IsZero() {
		return true
	}
	return now.Sub(last) >= g.interval
}

// Interval returns the configured minimum spacing, for client-facing
// retry-after hints.
func (g *Guard) Interval() time.Duration {
	return g.interval
}
