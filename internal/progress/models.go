package progress

// QuestionRange is a closed, 1-indexed interval of question numbers.
type QuestionRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of questions covered by r.
func (r QuestionRange) Len() int {
	return r.End - r.Start + 1
}

type Exercise struct {
	Number string `json:"number"`
	Count  int    `json:"count"`
}

// ExerciseRange is an exercise with its derived cumulative question bounds.
type ExerciseRange struct {
	Number string `json:"number"`
	Count  int    `json:"count"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

func (e ExerciseRange) Bounds() QuestionRange {
	return QuestionRange{Start: e.Start, End: e.End}
}

// RawExercise is an unvalidated form row.
type RawExercise struct {
	Number string
	Count  string
}

// BookInfo is the per (chapter, book) configuration. Exercises is optional;
// when present TotalQuestions is their sum.
type BookInfo struct {
	TotalQuestions int        `json:"totalQuestions"`
	Exercises      []Exercise `json:"exercises,omitempty"`
}

func (b BookInfo) HasExercises() bool {
	return len(b.Exercises) > 0
}

type BookProgress struct {
	BookID          string          `json:"bookId"`
	Name            string          `json:"name"`
	CompletedRanges []QuestionRange `json:"completedRanges"`
	Percentage      int             `json:"percentage"`
}

// RecordOptions controls how Record treats soft warnings.
type RecordOptions struct {
	// AllowExceed accepts ranges past the configured total after the
	// caller has confirmed with the user.
	AllowExceed bool
}
