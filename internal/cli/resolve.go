package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/studyplan/internal/progress"
	"github.com/sadopc/studyplan/internal/study"
)

// Subjects, chapters and books are addressed by ID or by case-insensitive
// name on the command line.

func findSubject(p *study.Plan, arg string) (*study.Subject, error) {
	for i := range p.Subjects {
		if matches(p.Subjects[i].ID, p.Subjects[i].Name, arg) {
			return &p.Subjects[i], nil
		}
	}
	return nil, fmt.Errorf("subject %q: %w", arg, study.ErrSubjectNotFound)
}

func findChapter(p *study.Plan, subjectArg, chapterArg string) (*study.Subject, *study.Chapter, error) {
	s, err := findSubject(p, subjectArg)
	if err != nil {
		return nil, nil, err
	}
	for i := range s.Chapters {
		if matches(s.Chapters[i].ID, s.Chapters[i].Name, chapterArg) {
			return s, &s.Chapters[i], nil
		}
	}
	return s, nil, fmt.Errorf("chapter %q in %s: %w", chapterArg, s.Name, study.ErrChapterNotFound)
}

func findBook(s *study.Subject, arg string) (*study.Book, error) {
	for i := range s.Books {
		if matches(s.Books[i].ID, s.Books[i].Name, arg) {
			return &s.Books[i], nil
		}
	}
	return nil, fmt.Errorf("book %q in %s: %w", arg, s.Name, study.ErrBookNotFound)
}

func matches(id, name, arg string) bool {
	arg = strings.TrimSpace(arg)
	return id == arg || strings.EqualFold(name, arg)
}

// slotArgs accepts a schedule ID, or subject, chapter and start time.
func slotArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 1 && len(args) != 3 {
		return fmt.Errorf("expected <id> or <subject> <chapter> \"%s\", got %d args", slotLayout, len(args))
	}
	return nil
}

func findSlot(p *study.Plan, args []string) (study.ScheduleItem, error) {
	if len(args) == 1 {
		return p.ScheduleItem(strings.TrimSpace(args[0]))
	}
	_, c, err := findChapter(p, args[0], args[1])
	if err != nil {
		return study.ScheduleItem{}, err
	}
	start, err := time.ParseInLocation(slotLayout, args[2], time.Local)
	if err != nil {
		return study.ScheduleItem{}, fmt.Errorf("invalid slot start %q; expected %s", args[2], slotLayout)
	}
	return p.FindScheduleItem(c.ID, start)
}

// parseRange reads the start and end question numbers.
func parseRange(startArg, endArg string) (progress.QuestionRange, error) {
	start, err := strconv.Atoi(startArg)
	if err != nil {
		return progress.QuestionRange{}, fmt.Errorf("invalid start question %q", startArg)
	}
	end, err := strconv.Atoi(endArg)
	if err != nil {
		return progress.QuestionRange{}, fmt.Errorf("invalid end question %q", endArg)
	}
	return progress.QuestionRange{Start: start, End: end}, nil
}

// parseExercises reads "number:count" pairs such as 1.1:12.
func parseExercises(pairs []string) []progress.RawExercise {
	rows := make([]progress.RawExercise, 0, len(pairs))
	for _, pair := range pairs {
		number, count, _ := strings.Cut(pair, ":")
		rows = append(rows, progress.RawExercise{Number: strings.TrimSpace(number), Count: strings.TrimSpace(count)})
	}
	return rows
}
