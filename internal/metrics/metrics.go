// package metrics computes concentration statistics (Gini coefficients, top-N
// control shares, self-merge and zero-review rates) over classified PRs.
package metrics

import (
	"sort"

	"review-metrics/internal/domain"

	"github.com/samber/lo"
)

// Gini computes the discrete Gini coefficient over non-negative values:
// 0 for perfect equality, approaching 1 for maximal concentration.
// Empty and all-zero inputs return 0, never NaN.
func Gini(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var total, weighted float64

	for i, v := range sorted {
		total += v
		weighted += float64(i+1) * v
	}

	if total == 0 {
		return 0.0
	}

	n := float64(len(sorted))

	return (2*weighted)/(n*total) - (n+1)/n
}

// TopNShare returns the share of the grand total held by the n largest
// actors. A zero grand total yields 0.
func TopNShare(totals map[string]float64, n int) float64 {
	if n <= 0 || len(totals) == 0 {
		return 0.0
	}

	values := lo.Values(totals)
	sort.Sort(sort.Reverse(sort.Float64Slice(values)))

	grand := lo.Sum(values)
	if grand == 0 {
		return 0.0
	}

	if n > len(values) {
		n = len(values)
	}

	return lo.Sum(values[:n]) / grand
}

// SelfMergeRate is the share of self-merged PRs among those whose merger is
// known. PRs that are unmerged or have an unknown merger are excluded from
// both numerator and denominator, never counted as either outcome.
// The second return value is the denominator.
func SelfMergeRate(prs []domain.PullRequest) (float64, int) {
	var known, selfMerged int

	for i := range prs {
		pr := &prs[i]

		if !pr.IsMerged() || pr.MergedBy == nil {
			continue
		}

		known++

		if pr.IsSelfMerge() {
			selfMerged++
		}
	}

	if known == 0 {
		return 0.0, 0
	}

	return float64(selfMerged) / float64(known), known
}
