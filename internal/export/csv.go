package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/sadopc/studyplan/internal/study"
)

// SessionsToCSV writes one row per study session, newest first.
func SessionsToCSV(p *study.Plan, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"ID", "Date", "Subject", "Chapter", "Duration (min)", "Duration", "Book", "Questions", "Exercise"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, s := range p.Sessions() {
		row := []string{
			s.ID,
			s.Date.String(),
			s.SubjectName,
			s.ChapterName,
			fmt.Sprintf("%d", s.Duration),
			formatDuration(s.Duration),
			s.Book,
			questionRange(s),
			s.ExerciseNumber,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// TestsToCSV writes one row per test record, newest first.
func TestsToCSV(p *study.Plan, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"ID", "Date", "Type", "Syllabus", "Correct", "Wrong", "Unattempted", "Score", "Max Score", "Remarks"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range p.TestRecordsOf("") {
		row := []string{
			r.ID,
			r.Date.String(),
			string(r.Type),
			p.SyllabusLabel(r),
			fmt.Sprintf("%d", r.Correct),
			fmt.Sprintf("%d", r.Wrong),
			fmt.Sprintf("%d", r.Unattempted),
			fmt.Sprintf("%d", r.Score),
			fmt.Sprintf("%d", r.TotalQuestions*4),
			strings.ReplaceAll(r.Remarks, "\n", " "),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func questionRange(s study.StudySession) string {
	if s.QuestionRange == nil {
		return ""
	}
	return fmt.Sprintf("%d-%d", s.QuestionRange.Start, s.QuestionRange.End)
}

func formatDuration(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
