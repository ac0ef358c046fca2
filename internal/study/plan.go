package study

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrSubjectNotFound  = errors.New("subject not found")
	ErrChapterNotFound  = errors.New("chapter not found")
	ErrBookNotFound     = errors.New("book not found")
	ErrSessionNotFound  = errors.New("study session not found")
	ErrScheduleNotFound = errors.New("schedule item not found")
	ErrTestNotFound     = errors.New("test record not found")
	ErrEmptyName        = errors.New("name must not be empty")
	ErrUnknownExercise  = errors.New("exercise not configured for this book")
	ErrInvalidStatus    = errors.New("invalid chapter status")
)

// newID is swapped in tests that need stable identifiers.
var newID = uuid.NewString

type predefinedSubject struct {
	id, name, color string
}

var predefinedSubjects = []predefinedSubject{
	{"1", "Physics", "#6C63FF"},
	{"2", "Mathematics", "#2EC4B6"},
	{"3", "Physical Chemistry", "#FF6B6B"},
	{"4", "Inorganic Chemistry", "#F39C12"},
	{"5", "Organic Chemistry", "#2ECC71"},
}

// NewPlan returns an empty plan seeded with the predefined subjects.
func NewPlan() *Plan {
	p := &Plan{}
	p.EnsureSubjects()
	return p
}

// EnsureSubjects adds any predefined subject missing from p. Existing
// subjects are left untouched.
func (p *Plan) EnsureSubjects() {
	have := make(map[string]bool, len(p.Subjects))
	for _, s := range p.Subjects {
		have[s.ID] = true
	}
	for _, ps := range predefinedSubjects {
		if have[ps.id] {
			continue
		}
		p.Subjects = append(p.Subjects, Subject{ID: ps.id, Name: ps.name, Color: ps.color, Chapters: []Chapter{}})
	}
}

func (p *Plan) Subject(id string) (*Subject, error) {
	for i := range p.Subjects {
		if p.Subjects[i].ID == id {
			return &p.Subjects[i], nil
		}
	}
	return nil, fmt.Errorf("subject %s: %w", id, ErrSubjectNotFound)
}

func (p *Plan) Chapter(subjectID, chapterID string) (*Subject, *Chapter, error) {
	s, err := p.Subject(subjectID)
	if err != nil {
		return nil, nil, err
	}
	for i := range s.Chapters {
		if s.Chapters[i].ID == chapterID {
			return s, &s.Chapters[i], nil
		}
	}
	return s, nil, fmt.Errorf("chapter %s: %w", chapterID, ErrChapterNotFound)
}

func (p *Plan) Book(subjectID, bookID string) (*Book, error) {
	s, err := p.Subject(subjectID)
	if err != nil {
		return nil, err
	}
	for i := range s.Books {
		if s.Books[i].ID == bookID {
			return &s.Books[i], nil
		}
	}
	return nil, fmt.Errorf("book %s: %w", bookID, ErrBookNotFound)
}

// ============================================================
// Chapters
// ============================================================

func (p *Plan) AddChapter(subjectID, name string) (*Chapter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	s, err := p.Subject(subjectID)
	if err != nil {
		return nil, err
	}
	s.Chapters = append(s.Chapters, Chapter{ID: newID(), Name: name, Status: NotStarted})
	return &s.Chapters[len(s.Chapters)-1], nil
}

// ChapterUpdate holds the editable chapter fields. Nil fields are left as is.
type ChapterUpdate struct {
	Name          *string
	Status        *ChapterStatus
	TargetMinutes *int
	Notes         *string
}

func (p *Plan) UpdateChapter(subjectID, chapterID string, u ChapterUpdate) error {
	_, c, err := p.Chapter(subjectID, chapterID)
	if err != nil {
		return err
	}
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return ErrEmptyName
		}
		c.Name = name
	}
	if u.Status != nil {
		if !u.Status.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidStatus, *u.Status)
		}
		c.Status = *u.Status
	}
	if u.TargetMinutes != nil {
		if *u.TargetMinutes < 0 {
			return fmt.Errorf("target minutes must not be negative, got %d", *u.TargetMinutes)
		}
		c.TargetMinutes = *u.TargetMinutes
	}
	if u.Notes != nil {
		c.Notes = *u.Notes
	}
	return nil
}

func (p *Plan) SetChapterStatus(subjectID, chapterID string, status ChapterStatus) error {
	return p.UpdateChapter(subjectID, chapterID, ChapterUpdate{Status: &status})
}

func (p *Plan) DeleteChapter(subjectID, chapterID string) error {
	s, err := p.Subject(subjectID)
	if err != nil {
		return err
	}
	for i := range s.Chapters {
		if s.Chapters[i].ID == chapterID {
			s.Chapters = append(s.Chapters[:i], s.Chapters[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("chapter %s: %w", chapterID, ErrChapterNotFound)
}

// markStarted moves a chapter that has seen activity out of NotStarted.
func (c *Chapter) markStarted() {
	if c.Status == NotStarted || c.Status == "" {
		c.Status = InProgress
	}
}

// ============================================================
// Books
// ============================================================

func (p *Plan) AddBook(subjectID, name string) (*Book, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	s, err := p.Subject(subjectID)
	if err != nil {
		return nil, err
	}
	s.Books = append(s.Books, Book{ID: newID(), Name: name})
	return &s.Books[len(s.Books)-1], nil
}

// RemoveBook drops the book and its per-chapter configuration and progress.
// Recorded sessions keep their book name snapshot.
func (p *Plan) RemoveBook(subjectID, bookID string) error {
	s, err := p.Subject(subjectID)
	if err != nil {
		return err
	}
	idx := -1
	for i := range s.Books {
		if s.Books[i].ID == bookID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("book %s: %w", bookID, ErrBookNotFound)
	}
	s.Books = append(s.Books[:idx], s.Books[idx+1:]...)

	for i := range s.Chapters {
		c := &s.Chapters[i]
		delete(c.BookInfo, bookID)
		kept := c.BookProgress[:0]
		for _, bp := range c.BookProgress {
			if bp.BookID != bookID {
				kept = append(kept, bp)
			}
		}
		c.BookProgress = kept
	}
	return nil
}
