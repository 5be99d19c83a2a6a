package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"review-metrics/internal/apperrors"
	"review-metrics/internal/domain"
	"review-metrics/internal/importance"
	"review-metrics/internal/scoring"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Diagnostics counts records excluded from a batch, by reason. It accompanies
// every result so the report layer can disclose data-quality limitations.
type Diagnostics struct {
	MalformedRecords      int `json:"malformed_records"`
	InconsistentEraEvents int `json:"inconsistent_era_events"`
	PostMergeEvents       int `json:"post_merge_events"`
	MissingPeriod         int `json:"missing_period"`
	MissingMerger         int `json:"missing_merger"`
}

// GroupResult is the metric set for one slice of the corpus.
type GroupResult struct {
	PRCount        int     `json:"pr_count"`
	MergedCount    int     `json:"merged_count"`
	ClassifiedLen  int     `json:"classified_count"`
	SelfMergeRate  float64 `json:"self_merge_rate"`
	SelfMergeKnown int     `json:"self_merge_known"`
	ZeroReviewRate float64 `json:"zero_review_rate"`

	// MergeGini measures concentration of merge activity across mergers;
	// ReviewGini measures concentration of weighted review contributions
	// across reviewers.
	MergeGini  float64         `json:"merge_gini"`
	ReviewGini float64         `json:"review_gini"`
	TopNShare  map[int]float64 `json:"top_n_share"`
}

// Result is one full batch run over the PR corpus.
type Result struct {
	RunID        string                      `json:"run_id"`
	GeneratedAt  time.Time                   `json:"generated_at"`
	Total        GroupResult                 `json:"total"`
	ByPeriod     map[string]GroupResult      `json:"by_period"`
	ByImportance map[domain.Tier]GroupResult `json:"by_importance"`
	ByAuthor     map[string]GroupResult      `json:"by_author"`
	Diagnostics  Diagnostics                 `json:"diagnostics"`
}

// Engine runs the classification pipeline over a PR collection and computes
// grouped concentration metrics. Groups are read-only views over the immutable
// classified set, so the per-grouping passes run in parallel.
type Engine struct {
	log        *slog.Logger
	classifier *scoring.Classifier
	importance *importance.Classifier
	topN       []int
}

func NewEngine(
	log *slog.Logger,
	classifier *scoring.Classifier,
	imp *importance.Classifier,
	topN []int,
) *Engine {
	return &Engine{
		log:        log,
		classifier: classifier,
		importance: imp,
		topN:       topN,
	}
}

// item is one PR with everything derived from it. Classification may be nil
// when the PR could not be placed in a period; such PRs still count for the
// merge-pattern metrics that need no era context.
type item struct {
	pr             domain.PullRequest
	classification *scoring.Classification
	tier           domain.Tier
}

// Run classifies every PR and computes the total plus per-period,
// per-importance and per-author metric breakdowns.
func (e *Engine) Run(ctx context.Context, prs []domain.PullRequest) (*Result, error) {
	const op = "internal.metrics.Run"

	result := &Result{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
	}

	items := make([]item, 0, len(prs))

	for i := range prs {
		pr := prs[i]

		if pr.ID == "" {
			result.Diagnostics.MalformedRecords++
			continue
		}

		it := item{pr: pr, tier: e.importance.Classify(&pr)}

		cls, err := e.classifier.Classify(&pr)
		switch {
		case err == nil:
			it.classification = cls
			result.Diagnostics.InconsistentEraEvents += cls.Drops.InconsistentEra
			result.Diagnostics.PostMergeEvents += cls.Drops.PostMergeEvents
			result.Diagnostics.MalformedRecords += cls.Drops.Malformed

		case errors.Is(err, apperrors.ErrNoPeriod), errors.Is(err, apperrors.ErrMalformedRecord):
			// No era context: the PR stays in merge-pattern metrics but is
			// excluded from everything threshold-dependent.
			result.Diagnostics.MissingPeriod++
			e.log.Warn("pr excluded from period-dependent metrics",
				slog.String("pr_id", pr.ID),
				slog.String("reason", err.Error()),
			)

		default:
			return nil, fmt.Errorf("%s: classify pr '%s': %w", op, pr.ID, err)
		}

		if it.pr.IsMerged() && it.pr.MergedBy == nil {
			result.Diagnostics.MissingMerger++
		}

		items = append(items, it)
	}

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		result.Total = e.groupResult(items)
		return nil
	})

	g.Go(func() error {
		byPeriod := lo.GroupBy(
			lo.Filter(items, func(it item, _ int) bool { return it.classification != nil }),
			func(it item) string { return it.classification.PeriodName },
		)
		result.ByPeriod = resultsPerGroup(e, byPeriod)

		return nil
	})

	g.Go(func() error {
		byTier := lo.GroupBy(items, func(it item) domain.Tier { return it.tier })
		result.ByImportance = resultsPerGroup(e, byTier)

		return nil
	})

	g.Go(func() error {
		byAuthor := lo.GroupBy(
			lo.Filter(items, func(it item, _ int) bool { return it.pr.AuthorID != "" }),
			func(it item) string { return it.pr.AuthorID },
		)
		result.ByAuthor = resultsPerGroup(e, byAuthor)

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	e.log.Info("batch metrics computed",
		slog.String("run_id", result.RunID),
		slog.Int("prs", len(items)),
		slog.Int("periods", len(result.ByPeriod)),
	)

	return result, nil
}

// Free function: methods cannot take type parameters.
func resultsPerGroup[K comparable](e *Engine, groups map[K][]item) map[K]GroupResult {
	out := make(map[K]GroupResult, len(groups))
	for key, group := range groups {
		out[key] = e.groupResult(group)
	}

	return out
}

func (e *Engine) groupResult(items []item) GroupResult {
	res := GroupResult{
		PRCount:   len(items),
		TopNShare: make(map[int]float64, len(e.topN)),
	}

	prs := make([]domain.PullRequest, len(items))
	mergerTotals := make(map[string]float64)
	reviewerTotals := make(map[string]float64)

	var zeroReview int

	for i, it := range items {
		prs[i] = it.pr

		if it.pr.IsMerged() {
			res.MergedCount++

			if it.pr.MergedBy != nil {
				mergerTotals[*it.pr.MergedBy]++
			}
		}

		if it.classification == nil {
			continue
		}

		res.ClassifiedLen++

		if it.classification.IsZeroReview {
			zeroReview++
		}

		for _, rc := range it.classification.Contributions {
			reviewerTotals[rc.ReviewerID] += rc.BestScore
		}
	}

	res.SelfMergeRate, res.SelfMergeKnown = SelfMergeRate(prs)

	if res.ClassifiedLen > 0 {
		res.ZeroReviewRate = float64(zeroReview) / float64(res.ClassifiedLen)
	}

	res.MergeGini = Gini(lo.Values(mergerTotals))
	res.ReviewGini = Gini(lo.Values(reviewerTotals))

	for _, n := range e.topN {
		res.TopNShare[n] = TopNShare(mergerTotals, n)
	}

	return res
}
