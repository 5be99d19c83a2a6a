package scoring

import (
	"errors"
	"sort"
	"time"

	"review-metrics/internal/apperrors"
	"review-metrics/internal/config"
	"review-metrics/internal/domain"

	"github.com/samber/lo"
)

// Drops counts events excluded during aggregation, by reason. They are folded
// into the batch diagnostics so that reports can disclose data-quality limits.
type Drops struct {
	PostMergeEvents int `json:"post_merge_events"`
	InconsistentEra int `json:"inconsistent_era_events"`
	Malformed       int `json:"malformed_events"`
}

func (d *Drops) Add(other Drops) {
	d.PostMergeEvents += other.PostMergeEvents
	d.InconsistentEra += other.InconsistentEra
	d.Malformed += other.Malformed
}

// Aggregator collapses a PR's events into one best score per reviewer.
type Aggregator struct {
	scorer *Scorer

	// Timeline suppression bounds: an event scoring at least substantialMin
	// counts as a substantial review; a later event from the same reviewer
	// scoring at most ackMax is treated as a completion signal and suppressed.
	substantialMin float64
	ackMax         float64
}

func NewAggregator(scorer *Scorer, cfg config.ScoringConfig) *Aggregator {
	return &Aggregator{
		scorer:         scorer,
		substantialMin: cfg.SubstantialMin,
		ackMax:         cfg.AckMax,
	}
}

type scoredEvent struct {
	event domain.ReviewEvent
	score float64
}

// Aggregate maps each reviewer to the maximum score among their non-suppressed
// events for one PR. The result never sums a reviewer's event scores: a
// reviewer contributes once per PR, however many signals they sent.
//
// Events after mergedAt do not count. A nil mergedAt (unmerged PR) applies no
// cutoff. An empty events slice yields an empty map, not an error.
func (a *Aggregator) Aggregate(events []domain.ReviewEvent, mergedAt *time.Time) (map[string]float64, Drops) {
	var drops Drops

	scored := make([]scoredEvent, 0, len(events))

	for _, ev := range events {
		if mergedAt != nil && ev.Timestamp.After(*mergedAt) {
			drops.PostMergeEvents++
			continue
		}

		score, err := a.scorer.Score(ev)
		if err != nil {
			if errors.Is(err, apperrors.ErrInconsistentEra) {
				drops.InconsistentEra++
			} else {
				drops.Malformed++
			}

			continue
		}

		scored = append(scored, scoredEvent{event: ev, score: score})
	}

	byReviewer := lo.GroupBy(scored, func(se scoredEvent) string {
		return se.event.ReviewerID
	})

	best := make(map[string]float64, len(byReviewer))

	for reviewerID, group := range byReviewer {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].event.Timestamp.Before(group[j].event.Timestamp)
		})

		best[reviewerID] = a.bestScore(group)
	}

	return best, drops
}

// bestScore applies timeline suppression, then takes the maximum. An ACK that
// chronologically follows a substantial review from the same reviewer is a
// completion signal, not an independent review, and contributes nothing. An
// ACK that precedes the substantial review stands on its own.
func (a *Aggregator) bestScore(group []scoredEvent) float64 {
	var (
		best           float64
		substantialYet bool
	)

	for _, se := range group {
		if substantialYet && se.score <= a.ackMax {
			continue
		}

		if se.score > best {
			best = se.score
		}

		if se.score >= a.substantialMin {
			substantialYet = true
		}
	}

	return best
}
