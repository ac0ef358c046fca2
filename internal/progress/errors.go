package progress

import (
	"errors"
	"fmt"
)

// ErrEmptyConfiguration is returned when no valid exercise rows (or no
// positive total) were supplied.
var ErrEmptyConfiguration = errors.New("no valid exercises configured")

// InvalidRangeError reports a malformed range.
type InvalidRangeError struct {
	Range  QuestionRange
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range %d-%d: %s", e.Range.Start, e.Range.End, e.Reason)
}

// ExceedsTotalWarning is a soft outcome: the range ends past the configured
// total. Callers confirm with the user and retry with AllowExceed.
type ExceedsTotalWarning struct {
	Range          QuestionRange
	TotalQuestions int
}

func (e *ExceedsTotalWarning) Error() string {
	return fmt.Sprintf("end question %d is higher than the total questions (%d)", e.Range.End, e.TotalQuestions)
}

// RangeOutsideExerciseError is a hard rejection for exercise-scoped
// submissions. Exercise carries the valid bounds for display.
type RangeOutsideExerciseError struct {
	Range    QuestionRange
	Exercise ExerciseRange
}

func (e *RangeOutsideExerciseError) Error() string {
	return fmt.Sprintf("range %d-%d must be within exercise %s (%d-%d)",
		e.Range.Start, e.Range.End, e.Exercise.Number, e.Exercise.Start, e.Exercise.End)
}

// IsWarning reports whether err is a confirmation-required signal rather
// than a failure.
func IsWarning(err error) bool {
	var w *ExceedsTotalWarning
	return errors.As(err, &w)
}
