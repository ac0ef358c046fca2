package progress

import "fmt"

// MaxQuestionNumber bounds question numbers so covered counts stay small
// enough to sum.
const MaxQuestionNumber = 100000

// ValidateRange rejects ranges that cannot describe any questions.
func ValidateRange(r QuestionRange) error {
	if r.Start < 1 {
		return &InvalidRangeError{Range: r, Reason: "start must be at least 1"}
	}
	if r.Start > r.End {
		return &InvalidRangeError{Range: r, Reason: "start cannot be greater than end"}
	}
	if r.End > MaxQuestionNumber {
		return &InvalidRangeError{Range: r, Reason: fmt.Sprintf("end cannot be greater than %d", MaxQuestionNumber)}
	}
	return nil
}

// ValidateRangeAgainstExercise requires r to lie inside the exercise bounds.
func ValidateRangeAgainstExercise(r QuestionRange, ex ExerciseRange) error {
	if err := ValidateRange(r); err != nil {
		return err
	}
	if r.Start < ex.Start || r.End > ex.End {
		return &RangeOutsideExerciseError{Range: r, Exercise: ex}
	}
	return nil
}

// Record merges r into prev and recomputes the percentage against info.
// prev is never modified. An *ExceedsTotalWarning is returned, with prev
// unchanged, when r ends past the total and opts.AllowExceed is false.
func Record(prev BookProgress, r QuestionRange, info *BookInfo, opts RecordOptions) (BookProgress, error) {
	if err := ValidateRange(r); err != nil {
		return prev, err
	}
	total := 0
	if info != nil {
		total = info.TotalQuestions
	}
	if total > 0 && r.End > total && !opts.AllowExceed {
		return prev, &ExceedsTotalWarning{Range: r, TotalQuestions: total}
	}

	combined := make([]QuestionRange, 0, len(prev.CompletedRanges)+1)
	combined = append(combined, prev.CompletedRanges...)
	combined = append(combined, r)
	merged := MergeRanges(combined)

	return BookProgress{
		BookID:          prev.BookID,
		Name:            prev.Name,
		CompletedRanges: merged,
		Percentage:      Percentage(CoveredQuestions(merged), total),
	}, nil
}

// Recompute refreshes the percentage of p against info without adding
// ranges.
func Recompute(p BookProgress, info *BookInfo) BookProgress {
	total := 0
	if info != nil {
		total = info.TotalQuestions
	}
	merged := MergeRanges(p.CompletedRanges)
	p.CompletedRanges = merged
	p.Percentage = Percentage(CoveredQuestions(merged), total)
	return p
}
