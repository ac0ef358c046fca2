package study

import (
	"fmt"
	"strings"

	"github.com/sadopc/studyplan/internal/progress"
)

// BookInfoChange describes the effect of SetBookInfo.
type BookInfoChange struct {
	Info progress.BookInfo
	// RangesFrozen is set when completed ranges were already logged for the
	// book. They stay as recorded under the previous numbering.
	RangesFrozen bool
}

// SetBookInfo stores the exercise configuration for a chapter and book.
func (p *Plan) SetBookInfo(subjectID, chapterID, bookID string, info progress.BookInfo) (BookInfoChange, error) {
	if _, err := p.Book(subjectID, bookID); err != nil {
		return BookInfoChange{}, err
	}
	_, c, err := p.Chapter(subjectID, chapterID)
	if err != nil {
		return BookInfoChange{}, err
	}
	info, err = info.Normalize()
	if err != nil {
		return BookInfoChange{}, fmt.Errorf("book info: %w", err)
	}
	if c.BookInfo == nil {
		c.BookInfo = make(map[string]progress.BookInfo)
	}
	c.BookInfo[bookID] = info

	change := BookInfoChange{Info: info}
	if i := c.progressIndex(bookID); i >= 0 {
		bp := c.BookProgress[i]
		change.RangesFrozen = len(bp.CompletedRanges) > 0
		c.BookProgress[i] = progress.Recompute(bp, &info)
	}
	return change, nil
}

// BookInfo returns the configuration for a chapter and book, if any.
func (p *Plan) BookInfo(subjectID, chapterID, bookID string) (*progress.BookInfo, error) {
	_, c, err := p.Chapter(subjectID, chapterID)
	if err != nil {
		return nil, err
	}
	info, ok := c.BookInfo[bookID]
	if !ok {
		return nil, nil
	}
	return &info, nil
}

// ExerciseRanges returns the derived exercise bounds used by pickers.
func (p *Plan) ExerciseRanges(subjectID, chapterID, bookID string) ([]progress.ExerciseRange, error) {
	info, err := p.BookInfo(subjectID, chapterID, bookID)
	if err != nil || info == nil {
		return nil, err
	}
	return progress.DeriveExerciseRanges(*info), nil
}

func (p *Plan) BookProgress(subjectID, chapterID, bookID string) (progress.BookProgress, error) {
	_, c, err := p.Chapter(subjectID, chapterID)
	if err != nil {
		return progress.BookProgress{}, err
	}
	if i := c.progressIndex(bookID); i >= 0 {
		return c.BookProgress[i], nil
	}
	return progress.BookProgress{BookID: bookID, CompletedRanges: []progress.QuestionRange{}}, nil
}

// RangeInput is a request to log completed questions.
type RangeInput struct {
	SubjectID string
	ChapterID string
	BookID    string
	Range     progress.QuestionRange
	// ExerciseNumber scopes the submission to one exercise; the range must
	// then lie inside that exercise's derived bounds.
	ExerciseNumber string
	AllowExceed    bool
}

// resolvedRange is a validated range submission.
type resolvedRange struct {
	chapter *Chapter
	book    *Book
	info    *progress.BookInfo
	in      RangeInput
}

func (p *Plan) resolveRange(in RangeInput) (resolvedRange, error) {
	_, c, err := p.Chapter(in.SubjectID, in.ChapterID)
	if err != nil {
		return resolvedRange{}, err
	}
	b, err := p.Book(in.SubjectID, in.BookID)
	if err != nil {
		return resolvedRange{}, err
	}
	if err := progress.ValidateRange(in.Range); err != nil {
		return resolvedRange{}, err
	}

	var info *progress.BookInfo
	if bi, ok := c.BookInfo[in.BookID]; ok {
		info = &bi
	}

	in.ExerciseNumber = strings.TrimSpace(in.ExerciseNumber)
	if in.ExerciseNumber != "" {
		if info == nil {
			return resolvedRange{}, fmt.Errorf("exercise %s: %w", in.ExerciseNumber, ErrUnknownExercise)
		}
		ex, ok := progress.FindExercise(progress.DeriveExerciseRanges(*info), in.ExerciseNumber)
		if !ok {
			return resolvedRange{}, fmt.Errorf("exercise %s: %w", in.ExerciseNumber, ErrUnknownExercise)
		}
		if err := progress.ValidateRangeAgainstExercise(in.Range, ex); err != nil {
			return resolvedRange{}, err
		}
	} else if info != nil && in.Range.End > info.TotalQuestions && !in.AllowExceed {
		return resolvedRange{}, &progress.ExceedsTotalWarning{Range: in.Range, TotalQuestions: info.TotalQuestions}
	}
	return resolvedRange{chapter: c, book: b, info: info, in: in}, nil
}

func (rr resolvedRange) apply() (progress.BookProgress, error) {
	c := rr.chapter
	i := c.progressIndex(rr.book.ID)
	prev := progress.BookProgress{BookID: rr.book.ID, Name: rr.book.Name}
	if i >= 0 {
		prev = c.BookProgress[i]
	}
	next, err := progress.Record(prev, rr.in.Range, rr.info, progress.RecordOptions{AllowExceed: rr.in.AllowExceed})
	if err != nil {
		return prev, err
	}
	if i >= 0 {
		c.BookProgress[i] = next
	} else {
		c.BookProgress = append(c.BookProgress, next)
	}
	c.markStarted()
	return next, nil
}

// LogRange merges a completed question range into the chapter's progress
// for the book.
func (p *Plan) LogRange(in RangeInput) (progress.BookProgress, error) {
	rr, err := p.resolveRange(in)
	if err != nil {
		return progress.BookProgress{}, err
	}
	return rr.apply()
}

func (c *Chapter) progressIndex(bookID string) int {
	for i := range c.BookProgress {
		if c.BookProgress[i].BookID == bookID {
			return i
		}
	}
	return -1
}
