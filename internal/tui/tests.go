package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studyplan/internal/session"
	"github.com/sadopc/studyplan/internal/study"
)

type testsModel struct {
	sess   *session.Session
	width  int
	height int

	plan      *study.Plan
	typeIndex int // into study.TestTypes
	cursor    int

	formActive bool
	form       *huh.Form
	formStep   string // "syllabus" or "scores"

	formTestType    *string
	formDate        *string
	formSubjects    *[]string
	formChapters    *[]string
	formCorrect     *string
	formWrong       *string
	formUnattempted *string
	formRemarks     *string
}

func newTestsModel(sess *session.Session) testsModel {
	tt, date, correct, wrong, unattempted, remarks := "", "", "", "", "", ""
	var subjects, chapters []string
	return testsModel{
		sess:            sess,
		plan:            sess.Plan(),
		formTestType:    &tt,
		formDate:        &date,
		formSubjects:    &subjects,
		formChapters:    &chapters,
		formCorrect:     &correct,
		formWrong:       &wrong,
		formUnattempted: &unattempted,
		formRemarks:     &remarks,
	}
}

func (m *testsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type testsDataMsg struct {
	plan *study.Plan
}

func (m testsModel) refresh() tea.Cmd {
	sess := m.sess
	return func() tea.Msg { return testsDataMsg{plan: sess.Plan()} }
}

func (m testsModel) selectedType() study.TestType {
	return study.TestTypes[m.typeIndex]
}

func (m testsModel) records() []study.TestRecord {
	if m.plan == nil {
		return nil
	}
	return m.plan.TestRecordsOf(m.selectedType())
}

func (m testsModel) update(msg tea.Msg) (testsModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case testsDataMsg:
		m.plan = msg.plan
		m.cursor = min(m.cursor, max(0, len(m.records())-1))
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			m.typeIndex = (m.typeIndex + len(study.TestTypes) - 1) % len(study.TestTypes)
			m.cursor = 0
		case key.Matches(msg, keys.Right):
			m.typeIndex = (m.typeIndex + 1) % len(study.TestTypes)
			m.cursor = 0
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.records())-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.New):
			return m.showSyllabusForm()
		case key.Matches(msg, keys.Delete):
			recs := m.records()
			if m.cursor < len(recs) {
				id := recs[m.cursor].ID
				ctx, cancel := uiContext()
				defer cancel()
				if err := m.sess.Mutate(ctx, func(p *study.Plan) error { return p.DeleteTestRecord(id) }); err != nil {
					return m, errorCmd(err)
				}
				m.plan = m.sess.Plan()
				m.cursor = min(m.cursor, max(0, len(m.records())-1))
				return m, planChanged
			}
		}
	}
	return m, nil
}

// showSyllabusForm asks for type, date and subjects; chapters are picked in
// a second step from the chosen subjects.
func (m testsModel) showSyllabusForm() (testsModel, tea.Cmd) {
	*m.formTestType = string(m.selectedType())
	*m.formDate = study.DateOf(time.Now()).String()
	*m.formSubjects = nil
	*m.formChapters = nil

	typeOptions := make([]huh.Option[string], len(study.TestTypes))
	for i, t := range study.TestTypes {
		cfg, _ := t.Config()
		typeOptions[i] = huh.NewOption(fmt.Sprintf("%s (%d questions)", t, cfg.TotalQuestions), string(t))
	}
	var subjectOptions []huh.Option[string]
	for _, s := range m.plan.Subjects {
		subjectOptions = append(subjectOptions, huh.NewOption(s.Name, s.ID))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Test type").Options(typeOptions...).Value(m.formTestType),
			huh.NewInput().Title("Date (YYYY-MM-DD)").Value(m.formDate).Validate(func(s string) error {
				_, err := study.ParseDate(strings.TrimSpace(s))
				return err
			}),
			huh.NewMultiSelect[string]().Title("Subjects").Options(subjectOptions...).Value(m.formSubjects),
		),
	).WithShowHelp(true).WithShowErrors(true)
	m.formStep = "syllabus"
	m.formActive = true
	return m, m.form.Init()
}

func (m testsModel) showScoresForm() (testsModel, tea.Cmd) {
	*m.formCorrect, *m.formWrong, *m.formUnattempted, *m.formRemarks = "", "", "0", ""

	selected := make(map[string]bool)
	for _, id := range *m.formSubjects {
		selected[id] = true
	}
	var chapterOptions []huh.Option[string]
	for _, s := range m.plan.Subjects {
		if !selected[s.ID] {
			continue
		}
		for _, c := range s.Chapters {
			chapterOptions = append(chapterOptions, huh.NewOption(s.Name+": "+c.Name, c.ID))
		}
	}
	if len(chapterOptions) == 0 {
		return m, func() tea.Msg {
			return statusMsg{text: "The selected subjects have no chapters yet", isError: true}
		}
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().Title("Chapters").Options(chapterOptions...).Value(m.formChapters),
			huh.NewInput().Title("Correct").Value(m.formCorrect).Validate(optionalCount),
			huh.NewInput().Title("Wrong").Value(m.formWrong).Validate(optionalCount),
			huh.NewInput().Title("Unattempted").Value(m.formUnattempted).Validate(optionalCount),
			huh.NewText().Title("Remarks").Value(m.formRemarks),
		),
	).WithShowHelp(true).WithShowErrors(true)
	m.formStep = "scores"
	m.formActive = true
	return m, m.form.Init()
}

func (m testsModel) updateForm(msg tea.Msg) (testsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		if m.formStep == "syllabus" {
			return m.showScoresForm()
		}
		return m.saveRecord()
	}

	return m, cmd
}

func (m testsModel) saveRecord() (testsModel, tea.Cmd) {
	date, err := study.ParseDate(strings.TrimSpace(*m.formDate))
	if err != nil {
		return m, errorCmd(err)
	}
	in := study.TestInput{
		Type:        study.TestType(*m.formTestType),
		Date:        date,
		SubjectIDs:  append([]string(nil), *m.formSubjects...),
		ChapterIDs:  append([]string(nil), *m.formChapters...),
		Correct:     atoiOrZero(*m.formCorrect),
		Wrong:       atoiOrZero(*m.formWrong),
		Unattempted: atoiOrZero(*m.formUnattempted),
		Remarks:     *m.formRemarks,
	}

	var rec study.TestRecord
	ctx, cancel := uiContext()
	defer cancel()
	err = m.sess.Mutate(ctx, func(p *study.Plan) error {
		var err error
		rec, err = p.AddTestRecord(in)
		return err
	})
	if err != nil {
		return m, errorCmd(err)
	}
	m.plan = m.sess.Plan()
	for i, t := range study.TestTypes {
		if t == rec.Type {
			m.typeIndex = i
		}
	}
	m.cursor = 0
	return m, tea.Batch(planChanged, statusCmd("%s recorded: %d/%d", rec.Type, rec.Score, rec.TotalQuestions*4))
}

func (m testsModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Test Record")
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()))
	}

	var tabs []string
	for i, t := range study.TestTypes {
		if i == m.typeIndex {
			tabs = append(tabs, activeTabStyle.Render(string(t)))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(string(t)))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, titleStyle.Render("Tests"), "  ", lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		header, "", m.renderStats(), "", m.renderTrend(), m.renderRecords(), "",
		mutedStyle.Render("  ←/→: test type  n: new  d: delete"),
	))
}

func (m testsModel) renderStats() string {
	if m.plan == nil {
		return ""
	}
	st := m.plan.TestStats(m.selectedType())
	if st.Count == 0 {
		return mutedStyle.Render("  No " + string(st.Type) + " records yet")
	}
	return strings.Join([]string{
		fmt.Sprintf("  Tests    %s", highlightStyle.Render(fmt.Sprintf("%d", st.Count))),
		fmt.Sprintf("  Average  %s / %d", highlightStyle.Render(fmt.Sprintf("%.1f", st.AverageScore)), st.MaxScore),
		fmt.Sprintf("  Best     %s   Worst %s",
			successStyle.Render(fmt.Sprintf("%d", st.BestScore)), errorStyle.Render(fmt.Sprintf("%d", st.WorstScore))),
		fmt.Sprintf("  Accuracy %s", highlightStyle.Render(fmt.Sprintf("%.0f%%", st.AccuracyShare*100))),
	}, "\n")
}

// renderTrend charts scores in date order once a type has two or more tests.
// Negative scores draw as empty bars.
func (m testsModel) renderTrend() string {
	if m.plan == nil {
		return ""
	}
	points := m.plan.ScoreTrend(m.selectedType())
	if len(points) < 2 {
		return ""
	}
	chart := barchart.New(max(20, m.width-8), 8)
	style := lipgloss.NewStyle().Foreground(colorPrimary)
	bars := make([]barchart.BarData, 0, len(points))
	for _, pt := range points {
		bars = append(bars, barchart.BarData{
			Label:  pt.Date.In(time.UTC).Format("01-02"),
			Values: []barchart.BarValue{{Name: "Score", Value: float64(max(0, pt.Score)), Style: style}},
		})
	}
	chart.PushAll(bars)
	chart.Draw()
	return mutedStyle.Render("  Score trend") + "\n" + chart.View() + "\n\n"
}

func (m testsModel) renderRecords() string {
	recs := m.records()
	if len(recs) == 0 {
		return ""
	}
	rows := []string{mutedStyle.Render(fmt.Sprintf("  %-12s %-7s %-5s %s", "Date", "Score", "C/W/U", "Syllabus"))}
	for i, r := range recs {
		style := normalItemStyle
		if i == m.cursor {
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-12s %3d/%-3d %d/%d/%d %s",
			cursorPrefix(i == m.cursor), r.Date, r.Score, r.TotalQuestions*4,
			r.Correct, r.Wrong, r.Unattempted, m.plan.SyllabusLabel(r))))
		if r.Remarks != "" && i == m.cursor {
			rows = append(rows, mutedStyle.Render("    "+strings.ReplaceAll(r.Remarks, "\n", " ")))
		}
	}
	return strings.Join(rows, "\n")
}
