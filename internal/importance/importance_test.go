package importance

import (
	"testing"

	"review-metrics/internal/config"
	"review-metrics/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestClassifier_Classify(t *testing.T) {
	classifier := NewClassifier(config.Default().Importance)

	testCases := []struct {
		name         string
		pr           domain.PullRequest
		expectedTier domain.Tier
	}{
		{
			name: "One-line change to a consensus path is critical, not trivial",
			pr: domain.PullRequest{
				ID: "pr-1",
				DiffStats: domain.DiffStats{
					Additions:    1,
					TouchedPaths: []string{"src/consensus/params.h"},
				},
			},
			expectedTier: domain.TierCritical,
		},
		{
			name: "Security keyword in the title overrides size",
			pr: domain.PullRequest{
				ID:    "pr-2",
				Title: "Fix CVE-2023-1234 in header parsing",
				DiffStats: domain.DiffStats{
					Additions: 2,
					Deletions: 1,
				},
			},
			expectedTier: domain.TierCritical,
		},
		{
			name: "Keyword match is case-insensitive and checks the description",
			pr: domain.PullRequest{
				ID:          "pr-3",
				Description: "This touches Consensus behavior around locktime.",
				DiffStats:   domain.DiffStats{Additions: 4},
			},
			expectedTier: domain.TierCritical,
		},
		{
			name: "Very large churn is critical",
			pr: domain.PullRequest{
				ID:        "pr-4",
				DiffStats: domain.DiffStats{Additions: 400, Deletions: 200},
			},
			expectedTier: domain.TierCritical,
		},
		{
			name: "Churn in (200, 500] is high",
			pr: domain.PullRequest{
				ID:        "pr-5",
				DiffStats: domain.DiffStats{Additions: 300, Deletions: 200},
			},
			expectedTier: domain.TierHigh,
		},
		{
			name: "Churn in (50, 200] is normal",
			pr: domain.PullRequest{
				ID:        "pr-6",
				DiffStats: domain.DiffStats{Additions: 100},
			},
			expectedTier: domain.TierNormal,
		},
		{
			name: "Churn in (10, 50] is low",
			pr: domain.PullRequest{
				ID:        "pr-7",
				DiffStats: domain.DiffStats{Additions: 20, Deletions: 10},
			},
			expectedTier: domain.TierLow,
		},
		{
			name: "Tiny change with no critical markers is trivial",
			pr: domain.PullRequest{
				ID:        "pr-8",
				DiffStats: domain.DiffStats{Additions: 3},
			},
			expectedTier: domain.TierTrivial,
		},
		{
			name:         "Empty diff is trivial",
			pr:           domain.PullRequest{ID: "pr-9"},
			expectedTier: domain.TierTrivial,
		},
		{
			name: "Boundary: exactly 500 churn is high, not critical",
			pr: domain.PullRequest{
				ID:        "pr-10",
				DiffStats: domain.DiffStats{Additions: 500},
			},
			expectedTier: domain.TierHigh,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedTier, classifier.Classify(&tc.pr))
		})
	}
}

func TestClassifier_Classify_NonCriticalPathPrefix(t *testing.T) {
	classifier := NewClassifier(config.Default().Importance)

	pr := domain.PullRequest{
		ID: "pr-11",
		DiffStats: domain.DiffStats{
			Additions:    600,
			TouchedPaths: []string{"doc/release-notes.md"},
		},
	}

	// Still critical, but through the size rule, not the path rule.
	assert.Equal(t, domain.TierCritical, classifier.Classify(&pr))
}
