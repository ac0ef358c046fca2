// Package session holds one user's plan in memory and writes it back to the
// backend after every successful mutation.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sadopc/studyplan/internal/assist"
	"github.com/sadopc/studyplan/internal/calendar"
	"github.com/sadopc/studyplan/internal/logger"
	"github.com/sadopc/studyplan/internal/progress"
	"github.com/sadopc/studyplan/internal/store"
	"github.com/sadopc/studyplan/internal/study"
)

var ErrAssistDisabled = errors.New("assistant is not configured")

type Options struct {
	Calendar calendar.Syncer   // optional
	Assist   assist.Summarizer // optional
	Logger   *logger.Logger
}

type Session struct {
	mu      sync.Mutex
	backend store.Backend
	userID  string
	plan    *study.Plan
	rev     store.Revision

	cal calendar.Syncer
	ai  assist.Summarizer
	log *logger.Logger
}

// Open loads userID's plan from backend.
func Open(ctx context.Context, backend store.Backend, userID string, opts Options) (*Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, store.ErrEmptyUser
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	plan, rev, err := backend.LoadPlan(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	s := &Session{
		backend: backend,
		userID:  userID,
		plan:    plan,
		rev:     rev,
		cal:     opts.Calendar,
		ai:      opts.Assist,
		log:     log.With("user", userID),
	}
	s.log.Info("session opened", "revision", rev)
	return s, nil
}

func (s *Session) UserID() string { return s.userID }

func (s *Session) Backend() store.Backend { return s.backend }

func (s *Session) Revision() store.Revision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev
}

func (s *Session) CalendarEnabled() bool { return s.cal != nil }

func (s *Session) AssistEnabled() bool { return s.ai != nil }

// Plan returns the current plan. Treat it as read-only; Mutate replaces it
// rather than editing it in place.
func (s *Session) Plan() *study.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plan
}

// Mutate applies fn to a copy of the plan and saves it. On any error from fn
// or from the save, the session keeps its previous plan and nothing is
// written.
func (s *Session) Mutate(ctx context.Context, fn func(p *study.Plan) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := clonePlan(s.plan)
	if err != nil {
		return err
	}
	if err := fn(next); err != nil {
		return err
	}
	if err := s.backend.SavePlan(ctx, s.userID, next); err != nil {
		s.log.Error("save plan failed", "error", err)
		return fmt.Errorf("save plan: %w", err)
	}
	s.plan = next
	s.rev++
	return nil
}

// Reload discards the in-memory plan and reads the stored one.
func (s *Session) Reload(ctx context.Context) error {
	plan, rev, err := s.backend.LoadPlan(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("reload plan: %w", err)
	}
	s.mu.Lock()
	s.plan, s.rev = plan, rev
	s.mu.Unlock()
	return nil
}

func clonePlan(p *study.Plan) (*study.Plan, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("copy plan: %w", err)
	}
	var out study.Plan
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("copy plan: %w", err)
	}
	return &out, nil
}

// ============================================================
// Progress and sessions
// ============================================================

func (s *Session) LogRange(ctx context.Context, in study.RangeInput) (progress.BookProgress, error) {
	var out progress.BookProgress
	err := s.Mutate(ctx, func(p *study.Plan) error {
		var err error
		out, err = p.LogRange(in)
		return err
	})
	return out, err
}

func (s *Session) RecordSession(ctx context.Context, in study.SessionInput) (study.StudySession, error) {
	var out study.StudySession
	err := s.Mutate(ctx, func(p *study.Plan) error {
		var err error
		out, err = p.RecordSession(in)
		return err
	})
	if err == nil {
		s.log.Info("study session recorded", "chapter", out.ChapterName, "minutes", out.Duration)
	}
	return out, err
}

func (s *Session) DeleteSession(ctx context.Context, id string) error {
	err := s.Mutate(ctx, func(p *study.Plan) error {
		return p.DeleteSession(id)
	})
	if err == nil {
		s.log.Info("study session deleted", "session", id)
	}
	return err
}

// ============================================================
// Schedule
// ============================================================

func (s *Session) AddSchedule(ctx context.Context, in study.ScheduleInput) (study.ScheduleItem, error) {
	var item study.ScheduleItem
	err := s.Mutate(ctx, func(p *study.Plan) error {
		var err error
		item, err = p.AddScheduleItem(in)
		return err
	})
	if err != nil {
		return study.ScheduleItem{}, err
	}
	return s.pushEvent(ctx, item), nil
}

func (s *Session) UpdateSchedule(ctx context.Context, id string, in study.ScheduleInput) (study.ScheduleItem, error) {
	var item study.ScheduleItem
	err := s.Mutate(ctx, func(p *study.Plan) error {
		var err error
		item, err = p.UpdateScheduleItem(id, in)
		return err
	})
	if err != nil {
		return study.ScheduleItem{}, err
	}
	return s.pushEvent(ctx, item), nil
}

func (s *Session) DeleteSchedule(ctx context.Context, id string) error {
	var item study.ScheduleItem
	err := s.Mutate(ctx, func(p *study.Plan) error {
		var err error
		item, err = p.DeleteScheduleItem(id)
		return err
	})
	if err != nil {
		return err
	}
	if s.cal != nil && item.GoogleEventID != "" {
		if err := s.cal.Remove(ctx, item.GoogleEventID); err != nil {
			s.log.Warn("calendar remove failed", "schedule", id, "event", item.GoogleEventID, "error", err)
		}
	}
	return nil
}

func (s *Session) CompleteSchedule(ctx context.Context, id string, allowExceed bool) (study.StudySession, error) {
	var out study.StudySession
	err := s.Mutate(ctx, func(p *study.Plan) error {
		var err error
		out, err = p.CompleteScheduleItem(id, allowExceed)
		return err
	})
	return out, err
}

// pushEvent mirrors item to the calendar and stores the event ID. Calendar
// failures are logged and never fail the schedule change.
func (s *Session) pushEvent(ctx context.Context, item study.ScheduleItem) study.ScheduleItem {
	if s.cal == nil {
		return item
	}
	eventID, err := s.cal.Push(ctx, item)
	if err != nil {
		s.log.Warn("calendar push failed", "schedule", item.ID, "error", err)
		return item
	}
	if eventID == item.GoogleEventID {
		return item
	}
	err = s.Mutate(ctx, func(p *study.Plan) error {
		return p.SetScheduleEventID(item.ID, eventID)
	})
	if err != nil {
		s.log.Warn("store calendar event id failed", "schedule", item.ID, "event", eventID, "error", err)
		return item
	}
	item.GoogleEventID = eventID
	return item
}

// ============================================================
// Assistant
// ============================================================

// Summarize asks the assistant to summarize a chapter's notes.
func (s *Session) Summarize(ctx context.Context, subjectID, chapterID string) (string, error) {
	if s.ai == nil {
		return "", ErrAssistDisabled
	}
	s.mu.Lock()
	_, c, err := s.plan.Chapter(subjectID, chapterID)
	var notes string
	if err == nil {
		notes = c.Notes
	}
	s.mu.Unlock()
	if err != nil {
		return "", err
	}
	out, err := s.ai.SummarizeNotes(ctx, notes)
	if err != nil {
		s.log.Warn("summarize notes failed", "chapter", chapterID, "error", err)
		return "", err
	}
	return out, nil
}

// Strategy asks the assistant for a study plan across a subject's chapters.
func (s *Session) Strategy(ctx context.Context, subjectID string) (string, error) {
	if s.ai == nil {
		return "", ErrAssistDisabled
	}
	s.mu.Lock()
	subj, err := s.plan.Subject(subjectID)
	var name string
	var chapters []string
	if err == nil {
		name = subj.Name
		for _, c := range subj.Chapters {
			chapters = append(chapters, c.Name)
		}
	}
	s.mu.Unlock()
	if err != nil {
		return "", err
	}
	out, err := s.ai.SubjectStrategy(ctx, name, chapters)
	if err != nil {
		s.log.Warn("subject strategy failed", "subject", subjectID, "error", err)
		return "", err
	}
	return out, nil
}
