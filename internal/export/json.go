package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/studyplan/internal/study"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	User       string      `json:"user"`
	Sessions   []jsonEntry `json:"sessions"`
	Tests      []jsonTest  `json:"tests"`
}

type jsonEntry struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Subject     string `json:"subject"`
	Chapter     string `json:"chapter"`
	DurationMin int    `json:"duration_minutes"`
	Duration    string `json:"duration"`
	Book        string `json:"book,omitempty"`
	Questions   string `json:"questions,omitempty"`
	Exercise    string `json:"exercise,omitempty"`
}

type jsonTest struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Type        string `json:"type"`
	Syllabus    string `json:"syllabus"`
	Correct     int    `json:"correct"`
	Wrong       int    `json:"wrong"`
	Unattempted int    `json:"unattempted"`
	Score       int    `json:"score"`
	MaxScore    int    `json:"max_score"`
	Remarks     string `json:"remarks,omitempty"`
}

// ToJSON writes the user's sessions and test records to path.
func ToJSON(p *study.Plan, user, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		User:       user,
		Sessions:   []jsonEntry{},
		Tests:      []jsonTest{},
	}

	for _, s := range p.Sessions() {
		export.Sessions = append(export.Sessions, jsonEntry{
			ID:          s.ID,
			Date:        s.Date.String(),
			Subject:     s.SubjectName,
			Chapter:     s.ChapterName,
			DurationMin: s.Duration,
			Duration:    formatDuration(s.Duration),
			Book:        s.Book,
			Questions:   questionRange(s),
			Exercise:    s.ExerciseNumber,
		})
	}
	for _, r := range p.TestRecordsOf("") {
		export.Tests = append(export.Tests, jsonTest{
			ID:          r.ID,
			Date:        r.Date.String(),
			Type:        string(r.Type),
			Syllabus:    p.SyllabusLabel(r),
			Correct:     r.Correct,
			Wrong:       r.Wrong,
			Unattempted: r.Unattempted,
			Score:       r.Score,
			MaxScore:    r.TotalQuestions * 4,
			Remarks:     r.Remarks,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
