package progress

import (
	"fmt"
	"strconv"
	"strings"
)

// BuildBookInfo turns free-text form rows into a BookInfo. Rows with a blank
// label or a count that is not a positive integer are dropped.
func BuildBookInfo(raw []RawExercise) (BookInfo, error) {
	var exercises []Exercise
	total := 0
	for _, r := range raw {
		number := strings.TrimSpace(r.Number)
		if number == "" {
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(r.Count))
		if err != nil || count <= 0 {
			continue
		}
		exercises = append(exercises, Exercise{Number: number, Count: count})
		total += count
	}
	if len(exercises) == 0 {
		return BookInfo{}, ErrEmptyConfiguration
	}
	return BookInfo{TotalQuestions: total, Exercises: exercises}, nil
}

// TotalOnlyBookInfo tracks a book by raw question count with no exercise
// breakdown.
func TotalOnlyBookInfo(total int) (BookInfo, error) {
	if total <= 0 {
		return BookInfo{}, ErrEmptyConfiguration
	}
	return BookInfo{TotalQuestions: total}, nil
}

func ValidateExercises(exercises []Exercise) error {
	for i, ex := range exercises {
		if strings.TrimSpace(ex.Number) == "" {
			return fmt.Errorf("exercise %d: empty number", i+1)
		}
		if ex.Count <= 0 {
			return fmt.Errorf("exercise %s: count must be positive, got %d", ex.Number, ex.Count)
		}
	}
	return nil
}

// Normalize validates b and re-derives TotalQuestions from the exercises
// when any are present.
func (b BookInfo) Normalize() (BookInfo, error) {
	if !b.HasExercises() {
		return TotalOnlyBookInfo(b.TotalQuestions)
	}
	if err := ValidateExercises(b.Exercises); err != nil {
		return BookInfo{}, err
	}
	out := BookInfo{Exercises: make([]Exercise, len(b.Exercises))}
	for i, ex := range b.Exercises {
		out.Exercises[i] = Exercise{Number: strings.TrimSpace(ex.Number), Count: ex.Count}
		out.TotalQuestions += ex.Count
	}
	return out, nil
}

// DeriveExerciseRanges assigns cumulative question numbers in list order,
// starting at 1.
func DeriveExerciseRanges(info BookInfo) []ExerciseRange {
	if !info.HasExercises() {
		return nil
	}
	out := make([]ExerciseRange, 0, len(info.Exercises))
	next := 1
	for _, ex := range info.Exercises {
		out = append(out, ExerciseRange{
			Number: ex.Number,
			Count:  ex.Count,
			Start:  next,
			End:    next + ex.Count - 1,
		})
		next += ex.Count
	}
	return out
}

func FindExercise(ranges []ExerciseRange, number string) (ExerciseRange, bool) {
	number = strings.TrimSpace(number)
	for _, ex := range ranges {
		if ex.Number == number {
			return ex, true
		}
	}
	return ExerciseRange{}, false
}
