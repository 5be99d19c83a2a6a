package domain

import (
	"strings"
	"time"
)

// EventSource identifies the platform a review-like event was collected from.
type EventSource string

const (
	SourceFormalReview EventSource = "github_formal_review"
	SourceAckComment   EventSource = "ack_comment"
	SourceIRCMessage   EventSource = "irc_message"
	SourceEmailMessage EventSource = "email_message"
)

// EventLabel is the optional structured label a collector attached to an event.
type EventLabel string

const (
	LabelApprove        EventLabel = "approve"
	LabelRequestChanges EventLabel = "request_changes"
	LabelComment        EventLabel = "comment"
	LabelAck            EventLabel = "ack"
	LabelNack           EventLabel = "nack"
)

// ReviewEvent is one review-like signal (formal review, ACK comment, IRC or
// mailing-list message) tied to a pull request. Identities are already resolved
// across platforms by the collector.
type ReviewEvent struct {
	Source       EventSource `json:"source"`
	ReviewerID   string      `json:"reviewer_id"`
	PRID         string      `json:"pr_id"`
	Timestamp    time.Time   `json:"timestamp"`
	Body         string      `json:"body,omitempty"`
	BodyLength   int         `json:"body_length"`
	IsMaintainer bool        `json:"is_maintainer"`
	Label        EventLabel  `json:"raw_label,omitempty"`
}

type DiffStats struct {
	Additions    int      `json:"additions"`
	Deletions    int      `json:"deletions"`
	FilesChanged int      `json:"files_changed"`
	TouchedPaths []string `json:"touched_paths"`
}

// TotalChurn is the size measure used for importance banding.
func (d DiffStats) TotalChurn() int {
	return d.Additions + d.Deletions
}

// PullRequest is the canonical reviewable unit. Records are immutable once
// ingested; everything derived (self-merge, tier, scores) is recomputed from
// stored data on demand.
type PullRequest struct {
	ID          string        `json:"id"`
	AuthorID    string        `json:"author_id"`
	Title       string        `json:"title,omitempty"`
	Description string        `json:"description,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	MergedAt    *time.Time    `json:"merged_at,omitempty"`
	MergedBy    *string       `json:"merged_by,omitempty"`
	DiffStats   DiffStats     `json:"diff_stats"`
	Labels      []string      `json:"labels,omitempty"`
	Events      []ReviewEvent `json:"events,omitempty"`
}

func (pr *PullRequest) IsMerged() bool {
	return pr.MergedAt != nil
}

// IsSelfMerge reports whether the merging actor is the author. It is false
// whenever MergedBy is unknown; callers that compute rates must treat that
// case as missing data, not as a non-self-merge.
func (pr *PullRequest) IsSelfMerge() bool {
	if pr.MergedBy == nil || pr.AuthorID == "" {
		return false
	}

	return strings.EqualFold(*pr.MergedBy, pr.AuthorID)
}

// ReviewerContribution is a reviewer's single best score for one PR.
// There is at most one contribution per (reviewer, PR) pair.
type ReviewerContribution struct {
	ReviewerID string  `json:"reviewer_id"`
	PRID       string  `json:"pr_id"`
	BestScore  float64 `json:"best_score"`
}

// Period is a half-open interval [Start, End) with the scoring configuration
// that was in force during it. A zero End means the period is unbounded.
type Period struct {
	Name                   string    `json:"name"`
	Start                  time.Time `json:"start"`
	End                    time.Time `json:"end,omitempty"`
	ZeroReviewThreshold    float64   `json:"zero_review_threshold"`
	FormalReviewsAvailable bool      `json:"formal_reviews_available"`
}

func (p Period) Contains(t time.Time) bool {
	if t.Before(p.Start) {
		return false
	}

	return p.End.IsZero() || t.Before(p.End)
}

// MaintainerInterval is one span of merge authority for an actor.
// A nil Until means the role is still held.
type MaintainerInterval struct {
	From  time.Time  `json:"from"`
	Until *time.Time `json:"until,omitempty"`
}
