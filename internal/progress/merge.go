package progress

import (
	"math"
	"sort"
)

// MergeRanges returns the canonical form of ranges: sorted by start,
// with overlapping and adjacent ranges coalesced. The input is not modified.
func MergeRanges(ranges []QuestionRange) []QuestionRange {
	if len(ranges) == 0 {
		return []QuestionRange{}
	}

	sorted := make([]QuestionRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	merged := make([]QuestionRange, 0, len(sorted))
	cur := sorted[0]
	for _, r := range sorted[1:] {
		if cur.End == math.MaxInt || r.Start <= cur.End+1 {
			if r.End > cur.End {
				cur.End = r.End
			}
			continue
		}
		merged = append(merged, cur)
		cur = r
	}
	return append(merged, cur)
}

// CoveredQuestions counts the distinct questions covered by ranges.
func CoveredQuestions(ranges []QuestionRange) int {
	total := 0
	for _, r := range MergeRanges(ranges) {
		total += r.Len()
	}
	return total
}

// Percentage converts a covered count into a 0-100 completion figure.
func Percentage(covered, total int) int {
	if total <= 0 || covered <= 0 {
		return 0
	}
	p := int(math.Round(100 * float64(covered) / float64(total)))
	if p > 100 {
		return 100
	}
	return p
}
