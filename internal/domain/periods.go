package domain

import "time"

// Tier is the importance classification of a pull request.
type Tier string

const (
	TierTrivial  Tier = "trivial"
	TierLow      Tier = "low"
	TierNormal   Tier = "normal"
	TierHigh     Tier = "high"
	TierCritical Tier = "critical"
)

// Periods is an ordered, non-overlapping sequence of eras.
type Periods []Period

// For returns the period containing t. The second return value is false when
// no configured period covers the instant.
func (ps Periods) For(t time.Time) (Period, bool) {
	for _, p := range ps {
		if p.Contains(t) {
			return p, true
		}
	}

	return Period{}, false
}
