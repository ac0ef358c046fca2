package study

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sadopc/studyplan/internal/progress"
)

var ErrInvalidSchedule = errors.New("schedule slot must last at least one minute")

type ScheduleInput struct {
	SubjectID      string
	ChapterID      string
	Start          time.Time
	End            time.Time
	BookID         string
	Range          *progress.QuestionRange
	ExerciseNumber string
	AllowExceed    bool
}

func (p *Plan) buildScheduleItem(in ScheduleInput) (ScheduleItem, error) {
	if in.End.Sub(in.Start) < time.Minute {
		return ScheduleItem{}, ErrInvalidSchedule
	}
	s, c, err := p.Chapter(in.SubjectID, in.ChapterID)
	if err != nil {
		return ScheduleItem{}, err
	}
	item := ScheduleItem{
		StartTime: in.Start,
		EndTime:   in.End,
		Subject:   s.Name,
		Chapter:   c.Name,
		SubjectID: s.ID,
		ChapterID: c.ID,
	}
	if in.BookID == "" {
		if in.Range != nil {
			return ScheduleItem{}, ErrRangeWithoutBook
		}
		return item, nil
	}
	b, err := p.Book(in.SubjectID, in.BookID)
	if err != nil {
		return ScheduleItem{}, err
	}
	item.BookID = b.ID
	item.Book = b.Name
	if in.Range != nil {
		// Validate now so a planned slot can always be completed later.
		rr, err := p.resolveRange(RangeInput{
			SubjectID:      in.SubjectID,
			ChapterID:      in.ChapterID,
			BookID:         in.BookID,
			Range:          *in.Range,
			ExerciseNumber: in.ExerciseNumber,
			AllowExceed:    in.AllowExceed,
		})
		if err != nil {
			return ScheduleItem{}, err
		}
		r := *in.Range
		item.QuestionRange = &r
		item.ExerciseNumber = rr.in.ExerciseNumber
	}
	return item, nil
}

func (p *Plan) AddScheduleItem(in ScheduleInput) (ScheduleItem, error) {
	item, err := p.buildScheduleItem(in)
	if err != nil {
		return ScheduleItem{}, err
	}
	item.ID = newID()
	p.Schedule = append(p.Schedule, item)
	return item, nil
}

// UpdateScheduleItem replaces the planned slot. The ID, completion flag and
// calendar event survive the edit.
func (p *Plan) UpdateScheduleItem(id string, in ScheduleInput) (ScheduleItem, error) {
	i := p.scheduleIndex(id)
	if i < 0 {
		return ScheduleItem{}, fmt.Errorf("schedule %s: %w", id, ErrScheduleNotFound)
	}
	item, err := p.buildScheduleItem(in)
	if err != nil {
		return ScheduleItem{}, err
	}
	old := p.Schedule[i]
	item.ID = old.ID
	item.Completed = old.Completed
	item.GoogleEventID = old.GoogleEventID
	p.Schedule[i] = item
	return item, nil
}

func (p *Plan) DeleteScheduleItem(id string) (ScheduleItem, error) {
	i := p.scheduleIndex(id)
	if i < 0 {
		return ScheduleItem{}, fmt.Errorf("schedule %s: %w", id, ErrScheduleNotFound)
	}
	item := p.Schedule[i]
	p.Schedule = append(p.Schedule[:i], p.Schedule[i+1:]...)
	return item, nil
}

func (p *Plan) ScheduleItem(id string) (ScheduleItem, error) {
	i := p.scheduleIndex(id)
	if i < 0 {
		return ScheduleItem{}, fmt.Errorf("schedule %s: %w", id, ErrScheduleNotFound)
	}
	return p.Schedule[i], nil
}

// FindScheduleItem is the legacy lookup by chapter and start instant, for
// items imported from documents that predate schedule IDs.
func (p *Plan) FindScheduleItem(chapterID string, start time.Time) (ScheduleItem, error) {
	for _, it := range p.Schedule {
		if it.ChapterID == chapterID && it.StartTime.Equal(start) {
			return it, nil
		}
	}
	return ScheduleItem{}, fmt.Errorf("schedule %s@%s: %w", chapterID, start.Format(time.RFC3339), ErrScheduleNotFound)
}

func (p *Plan) SetScheduleEventID(id, eventID string) error {
	i := p.scheduleIndex(id)
	if i < 0 {
		return fmt.Errorf("schedule %s: %w", id, ErrScheduleNotFound)
	}
	p.Schedule[i].GoogleEventID = eventID
	return nil
}

// CompleteScheduleItem marks the slot done and logs a study session for its
// duration, including any planned book range.
func (p *Plan) CompleteScheduleItem(id string, allowExceed bool) (StudySession, error) {
	i := p.scheduleIndex(id)
	if i < 0 {
		return StudySession{}, fmt.Errorf("schedule %s: %w", id, ErrScheduleNotFound)
	}
	item := p.Schedule[i]
	if item.Completed {
		return StudySession{}, fmt.Errorf("schedule %s: already completed", id)
	}
	sess, err := p.RecordSession(SessionInput{
		SubjectID:      item.SubjectID,
		ChapterID:      item.ChapterID,
		Start:          item.StartTime,
		Minutes:        item.Minutes(),
		BookID:         item.BookID,
		Range:          item.QuestionRange,
		ExerciseNumber: item.ExerciseNumber,
		AllowExceed:    allowExceed,
	})
	if err != nil {
		return StudySession{}, fmt.Errorf("complete schedule %s: %w", id, err)
	}
	p.Schedule[i].Completed = true
	return sess, nil
}

// UpcomingSchedule lists incomplete slots ending after now, soonest first.
func (p *Plan) UpcomingSchedule(now time.Time) []ScheduleItem {
	var out []ScheduleItem
	for _, it := range p.Schedule {
		if !it.Completed && it.EndTime.After(now) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

// ScheduleForDay lists slots starting on day in loc, in start order.
func (p *Plan) ScheduleForDay(day Date, loc *time.Location) []ScheduleItem {
	from := day.In(loc)
	to := from.AddDate(0, 0, 1)
	var out []ScheduleItem
	for _, it := range p.Schedule {
		st := it.StartTime.In(loc)
		if !st.Before(from) && st.Before(to) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

func (p *Plan) scheduleIndex(id string) int {
	id = strings.TrimSpace(id)
	for i := range p.Schedule {
		if p.Schedule[i].ID == id {
			return i
		}
	}
	return -1
}
