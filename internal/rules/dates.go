// internal/rules/dates.go
package rules

import (
	"time"
)

// msPerDay is the inclusive bias added to before/between upper bounds.
const msPerDay = 24 * 60 * 60 * 1000

// matchDate tests an epoch-millisecond timestamp against a date rule.
// Zero means absent and never matches. Bounds are epoch milliseconds except
// for within, whose Min is a day count.
func (e *Engine) matchDate(ts int64, m Method, v *RuleValue) bool {
	if ts == 0 {
		return false
	}
	t := float64(ts)

	switch m {
	case MethodOn:
		return sameDay(time.UnixMilli(ts), time.UnixMilli(int64(v.Min)), e.loc)
	case MethodBefore:
		return t <= v.Min+msPerDay
	case MethodAfter:
		return t >= v.Min
	case MethodBetween:
		return v.HasMax && v.Min <= t && t <= v.Max+msPerDay
	case MethodWithin:
		return t+v.Min*msPerDay >= float64(e.now().UnixMilli())
	default:
		return false
	}
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
