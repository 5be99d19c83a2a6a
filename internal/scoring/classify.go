package scoring

import (
	"fmt"
	"log/slog"
	"sort"

	"review-metrics/internal/apperrors"
	"review-metrics/internal/domain"

	"github.com/samber/lo"
)

// Classification is the review verdict for a single PR.
type Classification struct {
	PRID          string                        `json:"pr_id"`
	PeriodName    string                        `json:"period"`
	WeightedScore float64                       `json:"weighted_score"`
	Threshold     float64                       `json:"threshold"`
	IsZeroReview  bool                          `json:"is_zero_review"`
	Contributions []domain.ReviewerContribution `json:"contributions,omitempty"`
	Drops         Drops                         `json:"-"`
}

// Classifier labels PRs as reviewed or zero-review against the era-appropriate
// threshold.
type Classifier struct {
	agg     *Aggregator
	periods domain.Periods
	log     *slog.Logger
}

func NewClassifier(agg *Aggregator, periods domain.Periods, log *slog.Logger) *Classifier {
	return &Classifier{
		agg:     agg,
		periods: periods,
		log:     log,
	}
}

// Classify sums the per-reviewer best scores for the PR and compares against
// the threshold of the period containing CreatedAt. The creation date alone
// picks the era: a PR opened before a threshold cutoff keeps the old
// threshold even when merged after it.
func (c *Classifier) Classify(pr *domain.PullRequest) (*Classification, error) {
	const op = "internal.scoring.Classify"

	if pr.CreatedAt.IsZero() {
		return nil, &apperrors.MalformedRecordError{RecordID: pr.ID, Field: "created_at"}
	}

	period, ok := c.periods.For(pr.CreatedAt)
	if !ok {
		return nil, fmt.Errorf("%s: pr '%s': %w", op, pr.ID, apperrors.ErrNoPeriod)
	}

	best, drops := c.agg.Aggregate(pr.Events, pr.MergedAt)

	if drops.InconsistentEra > 0 {
		c.log.Warn("excluded formal reviews predating feature availability",
			slog.String("pr_id", pr.ID),
			slog.Int("count", drops.InconsistentEra),
		)
	}

	contributions := make([]domain.ReviewerContribution, 0, len(best))
	for reviewerID, score := range best {
		contributions = append(contributions, domain.ReviewerContribution{
			ReviewerID: reviewerID,
			PRID:       pr.ID,
			BestScore:  score,
		})
	}

	sort.Slice(contributions, func(i, j int) bool {
		return contributions[i].ReviewerID < contributions[j].ReviewerID
	})

	weighted := lo.SumBy(contributions, func(rc domain.ReviewerContribution) float64 {
		return rc.BestScore
	})

	return &Classification{
		PRID:          pr.ID,
		PeriodName:    period.Name,
		WeightedScore: weighted,
		Threshold:     period.ZeroReviewThreshold,
		IsZeroReview:  weighted < period.ZeroReviewThreshold,
		Contributions: contributions,
		Drops:         drops,
	}, nil
}
