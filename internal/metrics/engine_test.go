package metrics

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"review-metrics/internal/config"
	"review-metrics/internal/domain"
	"review-metrics/internal/importance"
	"review-metrics/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}

	return parsed
}

func testEngine(t *testing.T) *Engine {
	t.Helper()

	cfg := config.Default()
	periods := cfg.DomainPeriods()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	scorer := scoring.NewScorer(cfg.Scoring, periods)
	agg := scoring.NewAggregator(scorer, cfg.Scoring)
	classifier := scoring.NewClassifier(agg, periods, log)
	tiers := importance.NewClassifier(cfg.Importance)

	return NewEngine(log, classifier, tiers, cfg.Metrics.TopN)
}

func strptr(s string) *string { return &s }

func timeptr(t time.Time) *time.Time { return &t }

// The three-PR scenario from the findings: an old-era ACK that just meets its
// threshold, a new-era formal review with a suppressed follow-up ACK, and an
// unreviewed self-merge.
func scenarioPRs() []domain.PullRequest {
	return []domain.PullRequest{
		{
			ID:        "pr-a",
			AuthorID:  "author-a",
			CreatedAt: ts("2015-01-01T00:00:00Z"),
			MergedAt:  timeptr(ts("2015-01-10T00:00:00Z")),
			MergedBy:  strptr("maintainer"),
			Events: []domain.ReviewEvent{
				{
					Source:     domain.SourceAckComment,
					ReviewerID: "reviewer-1",
					PRID:       "pr-a",
					Timestamp:  ts("2015-01-05T00:00:00Z"),
					Body:       "ACK fa1b2c3d4e5",
					BodyLength: 15, // scores 0.3 via the hash-reference rule
				},
			},
		},
		{
			ID:        "pr-b",
			AuthorID:  "author-b",
			CreatedAt: ts("2022-01-01T00:00:00Z"),
			MergedAt:  timeptr(ts("2022-01-05T00:00:00Z")),
			MergedBy:  strptr("maintainer"),
			Events: []domain.ReviewEvent{
				{
					Source:     domain.SourceFormalReview,
					ReviewerID: "reviewer-2",
					PRID:       "pr-b",
					Timestamp:  ts("2022-01-02T00:00:00Z"),
					BodyLength: 30, // scores 0.8
				},
				{
					Source:     domain.SourceAckComment,
					ReviewerID: "reviewer-2",
					PRID:       "pr-b",
					Timestamp:  ts("2022-01-03T00:00:00Z"),
					Body:       "ACK",
					BodyLength: 3, // scores 0.2, suppressed by the earlier review
				},
			},
		},
		{
			ID:        "pr-c",
			AuthorID:  "author-c",
			CreatedAt: ts("2022-02-01T00:00:00Z"),
			MergedAt:  timeptr(ts("2022-02-02T00:00:00Z")),
			MergedBy:  strptr("author-c"),
		},
	}
}

func TestEngine_Run_EndToEndScenario(t *testing.T) {
	engine := testEngine(t)

	result, err := engine.Run(context.Background(), scenarioPRs())
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.False(t, result.GeneratedAt.IsZero())

	total := result.Total
	assert.Equal(t, 3, total.PRCount)
	assert.Equal(t, 3, total.MergedCount)
	assert.Equal(t, 3, total.SelfMergeKnown)
	assert.InDelta(t, 1.0/3.0, total.SelfMergeRate, 1e-9)
	assert.InDelta(t, 1.0/3.0, total.ZeroReviewRate, 1e-9)

	// Mergers: maintainer twice, author-c once.
	assert.InDelta(t, 1.0/6.0, total.MergeGini, 1e-9)
	assert.InDelta(t, 2.0/3.0, total.TopNShare[1], 1e-9)
	assert.InDelta(t, 1.0, total.TopNShare[3], 1e-9)

	require.Contains(t, result.ByPeriod, "pre-formal-review")
	require.Contains(t, result.ByPeriod, "formal-review")

	oldEra := result.ByPeriod["pre-formal-review"]
	assert.Equal(t, 1, oldEra.PRCount)
	assert.InDelta(t, 0.0, oldEra.ZeroReviewRate, 1e-9, "0.3 meets the 0.3 threshold")

	newEra := result.ByPeriod["formal-review"]
	assert.Equal(t, 2, newEra.PRCount)
	assert.InDelta(t, 0.5, newEra.ZeroReviewRate, 1e-9, "only the self-merged PR is zero-review")

	assert.Equal(t, Diagnostics{}, result.Diagnostics)
}

func TestEngine_Run_ImportanceBreakdown(t *testing.T) {
	engine := testEngine(t)

	prs := scenarioPRs()
	prs[1].DiffStats = domain.DiffStats{
		Additions:    1,
		TouchedPaths: []string{"src/consensus/tx_verify.cpp"},
	}

	result, err := engine.Run(context.Background(), prs)
	require.NoError(t, err)

	require.Contains(t, result.ByImportance, domain.TierCritical)
	require.Contains(t, result.ByImportance, domain.TierTrivial)

	assert.Equal(t, 1, result.ByImportance[domain.TierCritical].PRCount)
	assert.Equal(t, 2, result.ByImportance[domain.TierTrivial].PRCount)
}

func TestEngine_Run_ByAuthorGrouping(t *testing.T) {
	engine := testEngine(t)

	result, err := engine.Run(context.Background(), scenarioPRs())
	require.NoError(t, err)

	require.Len(t, result.ByAuthor, 3)
	assert.InDelta(t, 1.0, result.ByAuthor["author-c"].SelfMergeRate, 1e-9)
	assert.InDelta(t, 0.0, result.ByAuthor["author-a"].SelfMergeRate, 1e-9)
}

func TestEngine_Run_Diagnostics(t *testing.T) {
	engine := testEngine(t)

	merged := ts("2022-01-10T00:00:00Z")

	prs := []domain.PullRequest{
		{ID: "", AuthorID: "ghost", CreatedAt: merged}, // malformed, skipped
		{ID: "pr-no-created", AuthorID: "a"},           // no creation date
		{ID: "pr-no-merger", AuthorID: "a", CreatedAt: ts("2022-01-01T00:00:00Z"), MergedAt: &merged},
		{
			ID:        "pr-late-event",
			AuthorID:  "a",
			CreatedAt: ts("2022-01-01T00:00:00Z"),
			MergedAt:  &merged,
			MergedBy:  strptr("m"),
			Events: []domain.ReviewEvent{
				{
					Source:     domain.SourceFormalReview,
					ReviewerID: "r",
					PRID:       "pr-late-event",
					Timestamp:  ts("2022-02-01T00:00:00Z"), // after merge
					BodyLength: 80,
				},
			},
		},
	}

	result, err := engine.Run(context.Background(), prs)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Diagnostics.MalformedRecords)
	assert.Equal(t, 1, result.Diagnostics.MissingPeriod)
	assert.Equal(t, 1, result.Diagnostics.MissingMerger)
	assert.Equal(t, 1, result.Diagnostics.PostMergeEvents)

	// The record with no creation date still participates where no era
	// context is needed.
	assert.Equal(t, 3, result.Total.PRCount)
	assert.Equal(t, 2, result.Total.ClassifiedLen)
}

func TestEngine_Run_EmptyInput(t *testing.T) {
	engine := testEngine(t)

	result, err := engine.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Total.PRCount)
	assert.InDelta(t, 0.0, result.Total.SelfMergeRate, 1e-9)
	assert.InDelta(t, 0.0, result.Total.ZeroReviewRate, 1e-9)
	assert.InDelta(t, 0.0, result.Total.MergeGini, 1e-9)
	assert.Empty(t, result.ByPeriod)
}
