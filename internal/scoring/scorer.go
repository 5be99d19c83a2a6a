// package scoring implements the quality-weighted review pipeline: per-event
// quality scores, per-reviewer aggregation with timeline suppression, and
// per-PR zero-review classification.
package scoring

import (
	"regexp"
	"strings"

	"review-metrics/internal/apperrors"
	"review-metrics/internal/config"
	"review-metrics/internal/domain"
)

// commitHashRe matches commit-hash-like tokens, as left in ACK comments
// ("ACK fa1b2c3").
var commitHashRe = regexp.MustCompile(`\b[0-9a-f]{7,40}\b`)

// Scorer assigns a quality score in [0, 1] to a single review-like event,
// using the configured weighting table. It is a pure lookup with no state.
type Scorer struct {
	cfg     config.ScoringConfig
	periods domain.Periods
}

func NewScorer(cfg config.ScoringConfig, periods domain.Periods) *Scorer {
	return &Scorer{
		cfg:     cfg,
		periods: periods,
	}
}

// Score returns the quality score for one event.
//
// A formal review dated inside an era where the platform's formal review
// feature did not yet exist is a collection error: it returns
// apperrors.ErrInconsistentEra and must be excluded entirely, never scored
// as zero.
func (s *Scorer) Score(ev domain.ReviewEvent) (float64, error) {
	switch ev.Source {
	case domain.SourceFormalReview:
		period, ok := s.periods.For(ev.Timestamp)
		if ok && !period.FormalReviewsAvailable {
			return 0, &apperrors.InconsistentEraError{
				PRID:      ev.PRID,
				Timestamp: ev.Timestamp,
			}
		}

		return s.scoreFormal(ev), nil

	case domain.SourceAckComment:
		return s.scoreAck(ev), nil

	case domain.SourceIRCMessage, domain.SourceEmailMessage:
		return s.scoreFreeform(ev), nil

	default:
		return 0, &apperrors.MalformedRecordError{
			RecordID: ev.PRID,
			Field:    "source",
		}
	}
}

func (s *Scorer) scoreFormal(ev domain.ReviewEvent) float64 {
	t := s.cfg.Formal

	switch {
	case ev.BodyLength > t.LongBodyChars:
		return t.LongScore
	case ev.BodyLength >= t.ShortBodyChars:
		return t.MediumScore
	case ev.BodyLength >= 1:
		return t.ShortScore
	default:
		// Approval with no commentary at all: a rubber stamp.
		return t.RubberStampScore
	}
}

func (s *Scorer) scoreAck(ev domain.ReviewEvent) float64 {
	t := s.cfg.Ack

	switch {
	case ev.BodyLength > t.DetailedChars:
		return t.DetailedScore
	case ev.BodyLength >= t.StandardChars:
		return t.StandardScore
	case commitHashRe.MatchString(strings.ToLower(ev.Body)):
		return t.HashRefScore
	default:
		return t.BareScore
	}
}

func (s *Scorer) scoreFreeform(ev domain.ReviewEvent) float64 {
	t := s.cfg.Freeform
	hasKeyword := s.hasReviewKeyword(ev.Body)

	switch {
	case ev.IsMaintainer && hasKeyword && ev.BodyLength > t.SubstantiveChars:
		return t.MaintainerLongScore
	case ev.IsMaintainer && hasKeyword:
		return t.MaintainerKeywordScore
	case hasKeyword:
		return t.KeywordScore
	case ev.BodyLength > t.DetailedChars:
		return t.DetailedScore
	default:
		return t.FloorScore
	}
}

func (s *Scorer) hasReviewKeyword(body string) bool {
	if body == "" {
		return false
	}

	lower := strings.ToLower(body)

	for _, kw := range s.cfg.Freeform.ReviewKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}

	return false
}
