package study

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrInvalidTest = errors.New("invalid test record")

type TestInput struct {
	Type        TestType
	Date        Date
	SubjectIDs  []string
	ChapterIDs  []string
	Correct     int
	Wrong       int
	Unattempted int
	Remarks     string
}

func invalidTest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidTest, fmt.Sprintf(format, args...))
}

func (p *Plan) validateTest(in TestInput) (TestConfig, error) {
	cfg, ok := in.Type.Config()
	if !ok {
		return TestConfig{}, invalidTest("unknown test type %q", in.Type)
	}
	if in.Date.IsZero() {
		return TestConfig{}, invalidTest("date is required")
	}
	if in.Correct < 0 || in.Wrong < 0 || in.Unattempted < 0 {
		return TestConfig{}, invalidTest("counts must not be negative")
	}
	if sum := in.Correct + in.Wrong + in.Unattempted; sum != cfg.TotalQuestions {
		return TestConfig{}, invalidTest("correct, wrong and unattempted must sum to %d, got %d", cfg.TotalQuestions, sum)
	}
	if len(in.SubjectIDs) == 0 || len(in.ChapterIDs) == 0 {
		return TestConfig{}, invalidTest("select subjects and chapters")
	}
	if !cfg.MultipleSubjects && len(in.SubjectIDs) != 1 {
		return TestConfig{}, invalidTest("%s covers a single subject, got %d", in.Type, len(in.SubjectIDs))
	}
	if !cfg.MultipleChapters && len(in.ChapterIDs) != 1 {
		return TestConfig{}, invalidTest("%s covers a single chapter, got %d", in.Type, len(in.ChapterIDs))
	}

	// Chapters must belong to one of the selected subjects.
	owned := make(map[string]bool)
	for _, sid := range in.SubjectIDs {
		s, err := p.Subject(sid)
		if err != nil {
			return TestConfig{}, err
		}
		for _, c := range s.Chapters {
			owned[c.ID] = true
		}
	}
	for _, cid := range in.ChapterIDs {
		if !owned[cid] {
			return TestConfig{}, fmt.Errorf("chapter %s: %w", cid, ErrChapterNotFound)
		}
	}
	return cfg, nil
}

func (p *Plan) AddTestRecord(in TestInput) (TestRecord, error) {
	cfg, err := p.validateTest(in)
	if err != nil {
		return TestRecord{}, err
	}
	rec := TestRecord{
		ID:             newID(),
		Type:           in.Type,
		Date:           in.Date,
		SubjectIDs:     append([]string(nil), in.SubjectIDs...),
		ChapterIDs:     append([]string(nil), in.ChapterIDs...),
		Correct:        in.Correct,
		Wrong:          in.Wrong,
		Unattempted:    in.Unattempted,
		Score:          Score(in.Correct, in.Wrong),
		TotalQuestions: cfg.TotalQuestions,
		Remarks:        strings.TrimSpace(in.Remarks),
	}
	p.TestRecords = append(p.TestRecords, rec)
	return rec, nil
}

func (p *Plan) DeleteTestRecord(id string) error {
	for i := range p.TestRecords {
		if p.TestRecords[i].ID == id {
			p.TestRecords = append(p.TestRecords[:i], p.TestRecords[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("test %s: %w", id, ErrTestNotFound)
}

// TestRecordsOf filters by type; an empty type returns all records. Newest
// first.
func (p *Plan) TestRecordsOf(t TestType) []TestRecord {
	var out []TestRecord
	for _, r := range p.TestRecords {
		if t == "" || r.Type == t {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// SyllabusLabel renders the subjects and chapters a record covers.
func (p *Plan) SyllabusLabel(rec TestRecord) string {
	var subjects []*Subject
	for _, id := range rec.SubjectIDs {
		if s, err := p.Subject(id); err == nil {
			subjects = append(subjects, s)
		}
	}
	if len(subjects) == 0 {
		return "N/A"
	}
	cfg, _ := rec.Type.Config()
	if !cfg.MultipleSubjects {
		want := make(map[string]bool, len(rec.ChapterIDs))
		for _, id := range rec.ChapterIDs {
			want[id] = true
		}
		var names []string
		for _, c := range subjects[0].Chapters {
			if want[c.ID] {
				names = append(names, c.Name)
			}
		}
		return subjects[0].Name + ": " + strings.Join(names, ", ")
	}
	names := make([]string, len(subjects))
	for i, s := range subjects {
		names[i] = s.Name
	}
	return strings.Join(names, ", ")
}
