package trip

import "time"

// Arbiter rate-limits alert emission per category. Proximity-hazard
// categories use the alert-once-per-hazard-id rule instead, so they carry
// no cooldown here. Not safe for concurrent use on its own; the tracker
// mutex guards it.
type Arbiter struct {
	cooldowns map[Category]time.Duration
	last      map[Category]time.Time
}

func NewArbiter(cooldowns map[Category]time.Duration) *Arbiter {
	copied := make(map[Category]time.Duration, len(cooldowns))
	for cat, d := range cooldowns {
		copied[cat] = d
	}
	return &Arbiter{
		cooldowns: copied,
		last:      map[Category]time.Time{},
	}
}

// ShouldEmit reports whether the category's cooldown has elapsed and, if so,
// records the emission.
func (a *Arbiter) ShouldEmit(category Category, now time.Time) bool {
	if last, ok := a.last[category]; ok {
		if now.Sub(last) < a.cooldowns[category] {
			return false
		}
	}
	a.last[category] = now
	return true
}

// Reset clears emission history, called on trip start.
func (a *Arbiter) Reset() {
	a.last = map[Category]time.Time{}
}
