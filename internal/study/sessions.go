package study

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sadopc/studyplan/internal/progress"
)

var (
	ErrInvalidDuration  = errors.New("duration must be positive")
	ErrRangeWithoutBook = errors.New("question range requires a book")
)

// SessionInput describes a finished study interval, from the timer or from
// completing a scheduled slot.
type SessionInput struct {
	SubjectID      string
	ChapterID      string
	Start          time.Time
	Minutes        int
	BookID         string
	Range          *progress.QuestionRange
	ExerciseNumber string
	AllowExceed    bool
}

// RecordSession appends an immutable session to the chapter. When a book
// range is attached it is merged into the chapter's book progress as well;
// a range failure leaves the plan unchanged.
func (p *Plan) RecordSession(in SessionInput) (StudySession, error) {
	if in.Minutes <= 0 {
		return StudySession{}, fmt.Errorf("%w: %d", ErrInvalidDuration, in.Minutes)
	}
	if in.Range != nil && in.BookID == "" {
		return StudySession{}, ErrRangeWithoutBook
	}
	s, c, err := p.Chapter(in.SubjectID, in.ChapterID)
	if err != nil {
		return StudySession{}, err
	}

	sess := StudySession{
		ID:           newID(),
		Date:         DateOf(in.Start),
		Duration:     in.Minutes,
		SubjectID:    s.ID,
		ChapterID:    c.ID,
		SubjectName:  s.Name,
		ChapterName:  c.Name,
		SubjectColor: s.Color,
	}

	if in.BookID != "" {
		b, err := p.Book(in.SubjectID, in.BookID)
		if err != nil {
			return StudySession{}, err
		}
		sess.BookID = b.ID
		sess.Book = b.Name

		if in.Range != nil {
			rr, err := p.resolveRange(RangeInput{
				SubjectID:      in.SubjectID,
				ChapterID:      in.ChapterID,
				BookID:         in.BookID,
				Range:          *in.Range,
				ExerciseNumber: in.ExerciseNumber,
				AllowExceed:    in.AllowExceed,
			})
			if err != nil {
				return StudySession{}, err
			}
			if _, err := rr.apply(); err != nil {
				return StudySession{}, err
			}
			r := *in.Range
			sess.QuestionRange = &r
			sess.ExerciseNumber = rr.in.ExerciseNumber
		}
	}

	c.StudySessions = append(c.StudySessions, sess)
	c.markStarted()
	return sess, nil
}

// DeleteSession removes a session log. Book progress merged from it is kept.
func (p *Plan) DeleteSession(id string) error {
	for si := range p.Subjects {
		for ci := range p.Subjects[si].Chapters {
			c := &p.Subjects[si].Chapters[ci]
			for i := range c.StudySessions {
				if c.StudySessions[i].ID == id {
					c.StudySessions = append(c.StudySessions[:i], c.StudySessions[i+1:]...)
					return nil
				}
			}
		}
	}
	return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
}

// Sessions returns every session across all chapters, newest date first.
func (p *Plan) Sessions() []StudySession {
	var out []StudySession
	for _, s := range p.Subjects {
		for _, c := range s.Chapters {
			out = append(out, c.StudySessions...)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}
