// package importance assigns each pull request an importance tier used by the
// concentration metrics for per-tier breakdowns.
package importance

import (
	"strings"

	"review-metrics/internal/config"
	"review-metrics/internal/domain"
)

type Classifier struct {
	criticalPaths    []string
	criticalKeywords []string

	criticalChurn int
	highChurn     int
	normalChurn   int
	lowChurn      int
}

func NewClassifier(cfg config.ImportanceConfig) *Classifier {
	return &Classifier{
		criticalPaths:    cfg.CriticalPaths,
		criticalKeywords: lowercase(cfg.CriticalKeywords),
		criticalChurn:    cfg.CriticalChurn,
		highChurn:        cfg.HighChurn,
		normalChurn:      cfg.NormalChurn,
		lowChurn:         cfg.LowChurn,
	}
}

// Classify assigns a tier. Path and keyword matches are checked before size:
// a one-line change to a consensus-critical file is critical, never trivial.
func (c *Classifier) Classify(pr *domain.PullRequest) domain.Tier {
	if c.touchesCriticalPath(pr) || c.mentionsCriticalKeyword(pr) {
		return domain.TierCritical
	}

	churn := pr.DiffStats.TotalChurn()

	switch {
	case churn > c.criticalChurn:
		return domain.TierCritical
	case churn > c.highChurn:
		return domain.TierHigh
	case churn > c.normalChurn:
		return domain.TierNormal
	case churn > c.lowChurn:
		return domain.TierLow
	default:
		return domain.TierTrivial
	}
}

func (c *Classifier) touchesCriticalPath(pr *domain.PullRequest) bool {
	for _, path := range pr.DiffStats.TouchedPaths {
		for _, critical := range c.criticalPaths {
			if strings.HasPrefix(path, critical) {
				return true
			}
		}
	}

	return false
}

func (c *Classifier) mentionsCriticalKeyword(pr *domain.PullRequest) bool {
	text := strings.ToLower(pr.Title + "\n" + pr.Description)

	for _, kw := range c.criticalKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}

	return false
}

func lowercase(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}

	return out
}
