package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strptr(s string) *string { return &s }

func timeptr(t time.Time) *time.Time { return &t }

func TestPullRequest_IsSelfMerge(t *testing.T) {
	merged := time.Date(2022, 1, 5, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		pr       PullRequest
		expected bool
	}{
		{
			name:     "Author merged their own PR",
			pr:       PullRequest{AuthorID: "alice", MergedAt: &merged, MergedBy: strptr("alice")},
			expected: true,
		},
		{
			name:     "Comparison ignores case",
			pr:       PullRequest{AuthorID: "Alice", MergedAt: &merged, MergedBy: strptr("alice")},
			expected: true,
		},
		{
			name:     "Merged by someone else",
			pr:       PullRequest{AuthorID: "alice", MergedAt: &merged, MergedBy: strptr("bob")},
			expected: false,
		},
		{
			name:     "Unknown merger is never a self-merge",
			pr:       PullRequest{AuthorID: "alice", MergedAt: &merged},
			expected: false,
		},
		{
			name:     "Unmerged PR",
			pr:       PullRequest{AuthorID: "alice"},
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.pr.IsSelfMerge())
		})
	}
}

func TestPeriods_For(t *testing.T) {
	boundary := time.Date(2016, 12, 1, 0, 0, 0, 0, time.UTC)

	periods := Periods{
		{Name: "early", End: boundary, ZeroReviewThreshold: 0.3},
		{Name: "late", Start: boundary, ZeroReviewThreshold: 0.5},
	}

	p, ok := periods.For(boundary.Add(-time.Nanosecond))
	assert.True(t, ok)
	assert.Equal(t, "early", p.Name)

	p, ok = periods.For(boundary)
	assert.True(t, ok)
	assert.Equal(t, "late", p.Name)

	bounded := Periods{
		{Name: "only", Start: boundary, End: boundary.AddDate(1, 0, 0)},
	}

	_, ok = bounded.For(boundary.AddDate(2, 0, 0))
	assert.False(t, ok)
}

func TestPullRequest_Immutability(t *testing.T) {
	merged := time.Date(2022, 1, 5, 0, 0, 0, 0, time.UTC)

	pr := PullRequest{
		ID:        "pr-1",
		AuthorID:  "alice",
		CreatedAt: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		MergedAt:  timeptr(merged),
		MergedBy:  strptr("bob"),
	}

	// Derived predicates never mutate the record.
	before := pr
	_ = pr.IsSelfMerge()
	_ = pr.IsMerged()
	assert.Equal(t, before, pr)
}
