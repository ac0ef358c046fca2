package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studyplan/internal/progress"
	"github.com/sadopc/studyplan/internal/session"
	"github.com/sadopc/studyplan/internal/study"
)

type subjectsLevel int

const (
	levelSubjects subjectsLevel = iota
	levelChapters
	levelChapter
)

type subjectsModel struct {
	sess   *session.Session
	width  int
	height int

	plan       *study.Plan
	level      subjectsLevel
	subjCursor int
	chapCursor int
	bookCursor int

	formActive bool
	form       *huh.Form
	formType   string // "chapter", "book", "notes", "info", "range", "confirm"

	// Form field pointers (survive value copies)
	formName      *string
	formTarget    *string
	formNotes     *string
	formTotal     *string
	formExercises *string
	formStart     *string
	formEnd       *string
	formExercise  *string
	formConfirm   *bool

	// pendingRange is retried with AllowExceed once the user confirms.
	pendingRange *study.RangeInput
}

func newSubjectsModel(sess *session.Session) subjectsModel {
	name, target, notes, total, exercises := "", "", "", "", ""
	start, end, exercise := "", "", ""
	confirm := false
	return subjectsModel{
		sess:          sess,
		plan:          sess.Plan(),
		formName:      &name,
		formTarget:    &target,
		formNotes:     &notes,
		formTotal:     &total,
		formExercises: &exercises,
		formStart:     &start,
		formEnd:       &end,
		formExercise:  &exercise,
		formConfirm:   &confirm,
	}
}

func (m *subjectsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type subjectsDataMsg struct {
	plan *study.Plan
}

func (m subjectsModel) refresh() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		return subjectsDataMsg{plan: sess.Plan()}
	}
}

// --- Selection ---

func (m subjectsModel) subject() (study.Subject, bool) {
	if m.plan == nil || m.subjCursor >= len(m.plan.Subjects) {
		return study.Subject{}, false
	}
	return m.plan.Subjects[m.subjCursor], true
}

func (m subjectsModel) chapter() (study.Subject, study.Chapter, bool) {
	s, ok := m.subject()
	if !ok || m.chapCursor >= len(s.Chapters) {
		return s, study.Chapter{}, false
	}
	return s, s.Chapters[m.chapCursor], true
}

func (m subjectsModel) book() (study.Subject, study.Book, bool) {
	s, ok := m.subject()
	if !ok || m.bookCursor >= len(s.Books) {
		return s, study.Book{}, false
	}
	return s, s.Books[m.bookCursor], true
}

func (m *subjectsModel) clampCursors() {
	if m.plan == nil {
		return
	}
	m.subjCursor = min(m.subjCursor, max(0, len(m.plan.Subjects)-1))
	s, ok := m.subject()
	if !ok {
		return
	}
	m.chapCursor = min(m.chapCursor, max(0, len(s.Chapters)-1))
	m.bookCursor = min(m.bookCursor, max(0, len(s.Books)-1))
	if m.level == levelChapter && len(s.Chapters) == 0 {
		m.level = levelChapters
	}
}

// mutate applies fn through the session and reloads the snapshot.
func (m *subjectsModel) mutate(fn func(p *study.Plan) error) error {
	ctx, cancel := uiContext()
	defer cancel()
	if err := m.sess.Mutate(ctx, fn); err != nil {
		return err
	}
	m.plan = m.sess.Plan()
	m.clampCursors()
	return nil
}

// --- Update ---

func (m subjectsModel) update(msg tea.Msg) (subjectsModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case subjectsDataMsg:
		m.plan = msg.plan
		m.clampCursors()
		return m, nil

	case tea.KeyMsg:
		switch m.level {
		case levelChapters:
			return m.updateChapterList(msg)
		case levelChapter:
			return m.updateChapterDetail(msg)
		}
		return m.updateSubjectList(msg)
	}
	return m, nil
}

func (m subjectsModel) updateSubjectList(msg tea.KeyMsg) (subjectsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.subjCursor > 0 {
			m.subjCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.plan != nil && m.subjCursor < len(m.plan.Subjects)-1 {
			m.subjCursor++
		}
	case key.Matches(msg, keys.Enter):
		if _, ok := m.subject(); ok {
			m.level = levelChapters
			m.chapCursor, m.bookCursor = 0, 0
		}
	}
	return m, nil
}

func (m subjectsModel) updateChapterList(msg tea.KeyMsg) (subjectsModel, tea.Cmd) {
	s, _ := m.subject()
	switch {
	case key.Matches(msg, keys.Back):
		m.level = levelSubjects
	case key.Matches(msg, keys.Up):
		if m.chapCursor > 0 {
			m.chapCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.chapCursor < len(s.Chapters)-1 {
			m.chapCursor++
		}
	case key.Matches(msg, keys.Enter):
		if len(s.Chapters) > 0 {
			m.level = levelChapter
			m.bookCursor = 0
		}
	case key.Matches(msg, keys.New):
		return m.showChapterForm()
	case key.Matches(msg, keys.Book):
		return m.showBookForm()
	case key.Matches(msg, keys.Status):
		if _, c, ok := m.chapter(); ok {
			next := nextStatus(c.Status)
			if err := m.mutate(func(p *study.Plan) error { return p.SetChapterStatus(s.ID, c.ID, next) }); err != nil {
				return m, errorCmd(err)
			}
			return m, planChanged
		}
	case key.Matches(msg, keys.Delete):
		if _, c, ok := m.chapter(); ok {
			if err := m.mutate(func(p *study.Plan) error { return p.DeleteChapter(s.ID, c.ID) }); err != nil {
				return m, errorCmd(err)
			}
			return m, tea.Batch(planChanged, statusCmd("Deleted chapter %s", c.Name))
		}
	}
	return m, nil
}

func (m subjectsModel) updateChapterDetail(msg tea.KeyMsg) (subjectsModel, tea.Cmd) {
	s, _ := m.subject()
	switch {
	case key.Matches(msg, keys.Back):
		m.level = levelChapters
	case key.Matches(msg, keys.Up):
		if m.bookCursor > 0 {
			m.bookCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.bookCursor < len(s.Books)-1 {
			m.bookCursor++
		}
	case key.Matches(msg, keys.Book):
		return m.showBookForm()
	case key.Matches(msg, keys.New):
		return m.showNotesForm()
	case key.Matches(msg, keys.Info):
		if _, _, ok := m.book(); ok {
			return m.showInfoForm()
		}
		return m, statusCmd("Add a book first (b)")
	case key.Matches(msg, keys.Range):
		if _, _, ok := m.book(); ok {
			return m.showRangeForm()
		}
		return m, statusCmd("Add a book first (b)")
	case key.Matches(msg, keys.Status):
		if _, c, ok := m.chapter(); ok {
			next := nextStatus(c.Status)
			if err := m.mutate(func(p *study.Plan) error { return p.SetChapterStatus(s.ID, c.ID, next) }); err != nil {
				return m, errorCmd(err)
			}
			return m, planChanged
		}
	case key.Matches(msg, keys.Delete):
		if _, b, ok := m.book(); ok {
			if err := m.mutate(func(p *study.Plan) error { return p.RemoveBook(s.ID, b.ID) }); err != nil {
				return m, errorCmd(err)
			}
			return m, tea.Batch(planChanged, statusCmd("Removed book %s", b.Name))
		}
	}
	return m, nil
}

func nextStatus(s study.ChapterStatus) study.ChapterStatus {
	switch s {
	case study.NotStarted:
		return study.InProgress
	case study.InProgress:
		return study.Completed
	}
	return study.NotStarted
}

// --- Forms ---

func (m subjectsModel) openForm(formType string, fields ...huh.Field) (subjectsModel, tea.Cmd) {
	m.formType = formType
	m.form = huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(true).WithShowErrors(true)
	m.formActive = true
	return m, m.form.Init()
}

func (m subjectsModel) showChapterForm() (subjectsModel, tea.Cmd) {
	*m.formName = ""
	*m.formTarget = ""
	return m.openForm("chapter",
		huh.NewInput().Title("Chapter Name").Value(m.formName),
		huh.NewInput().Title("Target minutes (optional)").Value(m.formTarget).Validate(optionalCount),
	)
}

func (m subjectsModel) showBookForm() (subjectsModel, tea.Cmd) {
	*m.formName = ""
	return m.openForm("book",
		huh.NewInput().Title("Book Name").Value(m.formName),
	)
}

func (m subjectsModel) showNotesForm() (subjectsModel, tea.Cmd) {
	_, c, _ := m.chapter()
	*m.formNotes = c.Notes
	*m.formTarget = ""
	if c.TargetMinutes > 0 {
		*m.formTarget = strconv.Itoa(c.TargetMinutes)
	}
	return m.openForm("notes",
		huh.NewInput().Title("Target minutes (optional)").Value(m.formTarget).Validate(optionalCount),
		huh.NewText().Title("Notes").Value(m.formNotes),
	)
}

func (m subjectsModel) showInfoForm() (subjectsModel, tea.Cmd) {
	s, c, _ := m.chapter()
	_, b, _ := m.book()
	*m.formTotal = ""
	*m.formExercises = ""
	if info, err := m.plan.BookInfo(s.ID, c.ID, b.ID); err == nil && info != nil {
		if info.HasExercises() {
			*m.formExercises = formatExerciseRows(info.Exercises)
		} else {
			*m.formTotal = strconv.Itoa(info.TotalQuestions)
		}
	}
	return m.openForm("info",
		huh.NewText().Title("Exercises (one per line, number:count)").Value(m.formExercises),
		huh.NewInput().Title("Total questions (when no exercises)").Value(m.formTotal).Validate(optionalCount),
	)
}

func (m subjectsModel) showRangeForm() (subjectsModel, tea.Cmd) {
	s, c, _ := m.chapter()
	_, b, _ := m.book()
	*m.formStart = ""
	*m.formEnd = ""
	*m.formExercise = ""

	fields := []huh.Field{
		huh.NewInput().Title("From question").Value(m.formStart).Validate(requiredCount),
		huh.NewInput().Title("To question").Value(m.formEnd).Validate(requiredCount),
	}
	if ranges, err := m.plan.ExerciseRanges(s.ID, c.ID, b.ID); err == nil && len(ranges) > 0 {
		options := []huh.Option[string]{huh.NewOption("Whole book", "")}
		for _, r := range ranges {
			options = append(options, huh.NewOption(fmt.Sprintf("%s (Q%d-%d)", r.Number, r.Start, r.End), r.Number))
		}
		fields = append(fields, huh.NewSelect[string]().Title("Exercise").Options(options...).Value(m.formExercise))
	}
	return m.openForm("range", fields...)
}

func (m subjectsModel) showConfirmForm(warning error) (subjectsModel, tea.Cmd) {
	*m.formConfirm = false
	return m.openForm("confirm",
		huh.NewConfirm().
			Title(warning.Error()).
			Description("Log the range anyway?").
			Affirmative("Log it").
			Negative("Cancel").
			Value(m.formConfirm),
	)
}

func (m subjectsModel) updateForm(msg tea.Msg) (subjectsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			m.pendingRange = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		return m.submitForm()
	}

	return m, cmd
}

func (m subjectsModel) submitForm() (subjectsModel, tea.Cmd) {
	m.formActive = false
	m.form = nil
	s, _ := m.subject()
	_, c, _ := m.chapter()

	switch m.formType {
	case "chapter":
		name := strings.TrimSpace(*m.formName)
		if name == "" {
			return m, nil
		}
		target := atoiOrZero(*m.formTarget)
		err := m.mutate(func(p *study.Plan) error {
			ch, err := p.AddChapter(s.ID, name)
			if err != nil || target == 0 {
				return err
			}
			return p.UpdateChapter(s.ID, ch.ID, study.ChapterUpdate{TargetMinutes: &target})
		})
		if err != nil {
			return m, errorCmd(err)
		}
		return m, planChanged

	case "book":
		name := strings.TrimSpace(*m.formName)
		if name == "" {
			return m, nil
		}
		if err := m.mutate(func(p *study.Plan) error { _, err := p.AddBook(s.ID, name); return err }); err != nil {
			return m, errorCmd(err)
		}
		return m, planChanged

	case "notes":
		notes := *m.formNotes
		target := atoiOrZero(*m.formTarget)
		err := m.mutate(func(p *study.Plan) error {
			return p.UpdateChapter(s.ID, c.ID, study.ChapterUpdate{Notes: &notes, TargetMinutes: &target})
		})
		if err != nil {
			return m, errorCmd(err)
		}
		return m, planChanged

	case "info":
		return m.submitInfo(s, c)

	case "range":
		_, b, _ := m.book()
		in := study.RangeInput{
			SubjectID:      s.ID,
			ChapterID:      c.ID,
			BookID:         b.ID,
			Range:          progress.QuestionRange{Start: atoiOrZero(*m.formStart), End: atoiOrZero(*m.formEnd)},
			ExerciseNumber: *m.formExercise,
		}
		return m.logRange(in)

	case "confirm":
		in := m.pendingRange
		m.pendingRange = nil
		if in == nil || !*m.formConfirm {
			return m, statusCmd("Range not logged")
		}
		in.AllowExceed = true
		return m.logRange(*in)
	}
	return m, nil
}

func (m subjectsModel) submitInfo(s study.Subject, c study.Chapter) (subjectsModel, tea.Cmd) {
	_, b, _ := m.book()

	var info progress.BookInfo
	var err error
	if strings.TrimSpace(*m.formExercises) != "" {
		info, err = progress.BuildBookInfo(parseExerciseRows(*m.formExercises))
	} else {
		info, err = progress.TotalOnlyBookInfo(atoiOrZero(*m.formTotal))
	}
	if err != nil {
		return m, errorCmd(err)
	}

	var change study.BookInfoChange
	err = m.mutate(func(p *study.Plan) error {
		var err error
		change, err = p.SetBookInfo(s.ID, c.ID, b.ID, info)
		return err
	})
	if err != nil {
		return m, errorCmd(err)
	}
	if change.RangesFrozen {
		return m, tea.Batch(planChanged, func() tea.Msg {
			return statusMsg{text: "Exercise layout changed; logged ranges keep their old numbering", isError: true}
		})
	}
	return m, tea.Batch(planChanged, statusCmd("%s: %d questions", b.Name, change.Info.TotalQuestions))
}

func (m subjectsModel) logRange(in study.RangeInput) (subjectsModel, tea.Cmd) {
	var bp progress.BookProgress
	err := m.mutate(func(p *study.Plan) error {
		var err error
		bp, err = p.LogRange(in)
		return err
	})
	if progress.IsWarning(err) {
		m.pendingRange = &in
		return m.showConfirmForm(err)
	}
	if err != nil {
		return m, errorCmd(err)
	}
	return m, tea.Batch(planChanged, statusCmd("Logged Q%d-%d, %s now %d%%", in.Range.Start, in.Range.End, bp.Name, bp.Percentage))
}

// parseExerciseRows splits "1.1:10" lines into raw rows. Lines without a
// separator keep an empty count and are dropped by BuildBookInfo.
func parseExerciseRows(text string) []progress.RawExercise {
	var rows []progress.RawExercise
	for _, line := range strings.Split(text, "\n") {
		number, count, _ := strings.Cut(line, ":")
		rows = append(rows, progress.RawExercise{Number: number, Count: count})
	}
	return rows
}

func formatExerciseRows(exercises []progress.Exercise) string {
	lines := make([]string, len(exercises))
	for i, e := range exercises {
		lines[i] = fmt.Sprintf("%s:%d", e.Number, e.Count)
	}
	return strings.Join(lines, "\n")
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func requiredCount(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}

func optionalCount(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return fmt.Errorf("enter a number")
	}
	return nil
}

// --- View ---

var formTitles = map[string]string{
	"chapter": "New Chapter",
	"book":    "New Book",
	"notes":   "Chapter Notes",
	"info":    "Book Info",
	"range":   "Log Range",
	"confirm": "Exceeds Total",
}

func (m subjectsModel) view() string {
	if m.formActive && m.form != nil {
		title := titleStyle.Render(formTitles[m.formType])
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View())
		return panelStyle.Width(m.width - 4).Render(content)
	}

	switch m.level {
	case levelChapters:
		return m.renderChapterList()
	case levelChapter:
		return m.renderChapterDetail()
	}
	return m.renderSubjectList()
}

func (m subjectsModel) renderSubjectList() string {
	w := m.width - 4
	rows := []string{titleStyle.Render("Subjects"), ""}

	var overall map[string]study.SubjectProgress
	if m.plan != nil {
		overall = make(map[string]study.SubjectProgress)
		for _, sp := range m.plan.Overall().Subjects {
			overall[sp.SubjectID] = sp
		}
		for i, s := range m.plan.Subjects {
			style := normalItemStyle
			if i == m.subjCursor {
				style = selectedItemStyle
			}
			sp := overall[s.ID]
			rows = append(rows, style.Render(fmt.Sprintf("%s%s %-22s", cursorPrefix(i == m.subjCursor), dot(s.Color), s.Name))+
				fmt.Sprintf(" %s %d/%d", progressBar(sp.Percent, 16), sp.Completed, sp.Total))
		}
	}

	rows = append(rows, "", mutedStyle.Render("  enter: chapters"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m subjectsModel) renderChapterList() string {
	w := m.width - 4
	s, _ := m.subject()
	title := titleStyle.Render(fmt.Sprintf("%s %s", dot(s.Color), s.Name))

	rows := []string{title, ""}
	if len(s.Chapters) == 0 {
		rows = append(rows, mutedStyle.Render("No chapters yet. Press n to add one."))
	}
	for i, c := range s.Chapters {
		style := normalItemStyle
		if i == m.chapCursor {
			style = selectedItemStyle
		}
		studied, target, _ := m.plan.ChapterMinutes(s.ID, c.ID)
		row := style.Render(fmt.Sprintf("%s%-28s", cursorPrefix(i == m.chapCursor), c.Name)) +
			" " + statusStyle(c.Status).Render(fmt.Sprintf("%-12s", c.Status)) +
			mutedStyle.Render(" "+formatMinutes(studied))
		if target > 0 {
			row += mutedStyle.Render(" / " + formatMinutes(target))
		}
		rows = append(rows, row)
	}
	if len(s.Books) > 0 {
		names := make([]string, len(s.Books))
		for i, b := range s.Books {
			names[i] = b.Name
		}
		rows = append(rows, "", mutedStyle.Render("  Books: "+strings.Join(names, ", ")))
	}

	rows = append(rows, "", mutedStyle.Render("  n: new chapter  b: add book  c: status  d: delete  enter: open  esc: back"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m subjectsModel) renderChapterDetail() string {
	w := m.width - 4
	s, c, _ := m.chapter()
	title := titleStyle.Render(fmt.Sprintf("%s %s / %s", dot(s.Color), s.Name, c.Name))

	rows := []string{title, statusStyle(c.Status).Render("  " + string(c.Status)), ""}
	if len(s.Books) == 0 {
		rows = append(rows, mutedStyle.Render("No books for this subject. Press b to add one."))
	}
	for i, b := range s.Books {
		style := normalItemStyle
		if i == m.bookCursor {
			style = selectedItemStyle
		}
		bp, _ := m.plan.BookProgress(s.ID, c.ID, b.ID)
		info, _ := m.plan.BookInfo(s.ID, c.ID, b.ID)
		detail := mutedStyle.Render("no question count set")
		if info != nil {
			detail = fmt.Sprintf("%s %3d%%  %s", progressBar(bp.Percentage, 20), bp.Percentage, mutedStyle.Render(formatRanges(bp.CompletedRanges)))
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-20s", cursorPrefix(i == m.bookCursor), b.Name))+" "+detail)
	}
	if c.Notes != "" {
		rows = append(rows, "", titleStyle.Render("Notes"), c.Notes)
	}

	rows = append(rows, "", mutedStyle.Render("  r: log range  i: book info  b: add book  n: notes  c: status  d: remove book  esc: back"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func formatRanges(ranges []progress.QuestionRange) string {
	parts := make([]string, len(ranges))
	for i, r := range ranges {
		parts[i] = fmt.Sprintf("%d-%d", r.Start, r.End)
	}
	return strings.Join(parts, ", ")
}
