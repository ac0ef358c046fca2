package tui

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/studyplan/internal/progress"
	"github.com/sadopc/studyplan/internal/session"
	"github.com/sadopc/studyplan/internal/store"
	"github.com/sadopc/studyplan/internal/study"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestSession(t *testing.T) (*session.Session, *store.Store) {
	t.Helper()
	st := newTestStore(t)
	sess, err := session.Open(context.Background(), st, "alice", session.Options{})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	return sess, st
}

// addChapter creates a physics chapter and returns its ID.
func addChapter(t *testing.T, sess *session.Session, name string) string {
	t.Helper()
	var id string
	err := sess.Mutate(context.Background(), func(p *study.Plan) error {
		c, err := p.AddChapter("1", name)
		if err != nil {
			return err
		}
		id = c.ID
		return nil
	})
	if err != nil {
		t.Fatalf("add chapter: %v", err)
	}
	return id
}

// addBook creates a physics book with a flat question count.
func addBook(t *testing.T, sess *session.Session, chapterID, name string, total int) string {
	t.Helper()
	var id string
	err := sess.Mutate(context.Background(), func(p *study.Plan) error {
		b, err := p.AddBook("1", name)
		if err != nil {
			return err
		}
		id = b.ID
		_, err = p.SetBookInfo("1", chapterID, b.ID, progress.BookInfo{TotalQuestions: total})
		return err
	})
	if err != nil {
		t.Fatalf("add book: %v", err)
	}
	return id
}

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	physics    = study.Subject{ID: "1", Name: "Physics"}
	kinematics = study.Chapter{ID: "ch-1", Name: "Kinematics"}
)

// ============================================================
// Timer model
// ============================================================

func testTimer(idle time.Duration) (timerModel, *fakeClock) {
	clock := newFakeClock()
	tm := newTimerModel(idle)
	tm.now = clock.now
	return tm, clock
}

func TestTimerStartStop(t *testing.T) {
	tm, clock := testTimer(0)
	if tm.running() {
		t.Fatal("timer should start stopped")
	}

	tm.start(physics, kinematics)
	if !tm.running() || tm.paused() {
		t.Fatal("timer should be running after start")
	}
	if tm.subjectName != "Physics" || tm.chapterName != "Kinematics" {
		t.Fatal("chapter info not set")
	}

	clock.advance(25*time.Minute + 20*time.Second)
	in, err := tm.stop()
	if err != nil {
		t.Fatal(err)
	}
	if in.Minutes != 25 || in.SubjectID != "1" || in.ChapterID != "ch-1" {
		t.Fatalf("unexpected session input: %+v", in)
	}
	if !in.Start.Equal(newFakeClock().t) {
		t.Fatalf("start = %v", in.Start)
	}
	if tm.running() {
		t.Fatal("timer should be stopped")
	}
}

func TestTimerStopWhenStopped(t *testing.T) {
	tm, _ := testTimer(0)
	in, err := tm.stop()
	if err != nil {
		t.Fatal(err)
	}
	if in.Minutes != 0 || in.ChapterID != "" {
		t.Fatalf("stop on stopped timer should return nothing, got %+v", in)
	}
}

func TestTimerTooShort(t *testing.T) {
	tm, clock := testTimer(0)
	tm.start(physics, kinematics)
	clock.advance(20 * time.Second)
	if _, err := tm.stop(); err != errTooShort {
		t.Fatalf("expected errTooShort, got %v", err)
	}
	if tm.running() {
		t.Fatal("timer should stop even when nothing is logged")
	}
}

func TestTimerPauseExcludesGap(t *testing.T) {
	tm, clock := testTimer(0)
	tm.start(physics, kinematics)

	clock.advance(10 * time.Minute)
	tm.pause()
	if !tm.paused() || !tm.running() {
		t.Fatal("paused timer is still running (not stopped)")
	}
	clock.advance(30 * time.Minute)
	if got := tm.currentElapsed(); got != 10*time.Minute {
		t.Fatalf("elapsed grew while paused: %v", got)
	}

	tm.resume()
	clock.advance(5 * time.Minute)
	in, err := tm.stop()
	if err != nil {
		t.Fatal(err)
	}
	if in.Minutes != 15 {
		t.Fatalf("expected 15 minutes, got %d", in.Minutes)
	}
}

func TestTimerPauseWhenNotRunning(t *testing.T) {
	tm, _ := testTimer(0)
	tm.pause()
	if tm.paused() {
		t.Fatal("should not be paused when stopped")
	}
	tm.toggle()
	if tm.running() {
		t.Fatal("toggle should not start the timer")
	}
}

func TestTimerToggle(t *testing.T) {
	tm, _ := testTimer(0)
	tm.start(physics, kinematics)

	tm.toggle()
	if !tm.paused() {
		t.Fatal("toggle should pause")
	}
	tm.toggle()
	if tm.paused() {
		t.Fatal("toggle should resume")
	}
}

func TestTimerTick(t *testing.T) {
	tm, clock := testTimer(0)
	tm.tick()
	if tm.elapsed != 0 {
		t.Fatal("tick on stopped timer should not change elapsed")
	}

	tm.start(physics, kinematics)
	clock.advance(90 * time.Second)
	tm.tick()
	if tm.elapsed != 90*time.Second {
		t.Fatalf("tick should update elapsed, got %v", tm.elapsed)
	}
}

func TestTimerIdleDetection(t *testing.T) {
	tm, clock := testTimer(5 * time.Minute)
	tm.start(physics, kinematics)

	clock.advance(6 * time.Minute)
	tm.tick()
	if !tm.isIdle || !tm.paused() {
		t.Fatal("timer should auto-pause on idle")
	}

	clock.advance(time.Minute)
	tm.recordActivity()
	if tm.isIdle || tm.paused() {
		t.Fatal("activity should resume an idle timer")
	}
}

func TestTimerIdleDisabled(t *testing.T) {
	tm, clock := testTimer(0)
	tm.start(physics, kinematics)
	clock.advance(3 * time.Hour)
	tm.tick()
	if tm.paused() {
		t.Fatal("zero idle timeout should never pause")
	}
}

func TestTimerActivityDoesNotResumeManualPause(t *testing.T) {
	tm, clock := testTimer(5 * time.Minute)
	tm.start(physics, kinematics)
	tm.pause()
	clock.advance(time.Minute)
	tm.recordActivity()
	if !tm.paused() {
		t.Fatal("a manual pause must survive key presses")
	}
}

// ============================================================
// Helper functions
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{time.Second, "00:00:01"},
		{time.Hour + time.Minute + time.Second, "01:01:01"},
		{25 * time.Hour, "25:00:00"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		mins int
		want string
	}{
		{0, "0m"},
		{45, "45m"},
		{60, "1h 00m"},
		{65, "1h 05m"},
		{1501, "25h 01m"},
	}
	for _, tt := range tests {
		if got := formatMinutes(tt.mins); got != tt.want {
			t.Errorf("formatMinutes(%d) = %q, want %q", tt.mins, got, tt.want)
		}
	}
	if got := formatHours(90); got != "1.5h" {
		t.Errorf("formatHours(90) = %q", got)
	}
}

func TestProgressBar(t *testing.T) {
	if n := strings.Count(progressBar(50, 10), "█"); n != 5 {
		t.Fatalf("expected 5 filled cells, got %d", n)
	}
	if n := strings.Count(progressBar(150, 4), "█"); n != 4 {
		t.Fatalf("percent above 100 should fill the bar, got %d", n)
	}
	if n := strings.Count(progressBar(-5, 4), "░"); n != 4 {
		t.Fatalf("negative percent should leave the bar empty, got %d", n)
	}
	if progressBar(50, 0) != "" {
		t.Fatal("zero width should render nothing")
	}
}

func TestViewNames(t *testing.T) {
	if len(viewNames) != 5 {
		t.Fatalf("expected 5 view names, got %d", len(viewNames))
	}
	if viewNames[viewTests] != "Tests" || viewNames[viewSubjects] != "Subjects" {
		t.Fatalf("view names out of order: %v", viewNames)
	}
}

// ============================================================
// Dashboard model
// ============================================================

func loadedDashboard(t *testing.T, sess *session.Session) (dashboardModel, *fakeClock) {
	t.Helper()
	d := newDashboardModel(sess, store.Preferences{DailyGoalMinutes: 240, IdleTimeoutSeconds: 300})
	d, _ = d.update(d.loadData()())
	clock := newFakeClock()
	d.timer.now = clock.now
	return d, clock
}

func TestDashboardInit(t *testing.T) {
	sess, _ := newTestSession(t)
	d, _ := loadedDashboard(t, sess)

	if d.isRunning() || d.isPaused() || d.elapsed() != 0 {
		t.Fatal("dashboard timer should be idle initially")
	}
	if d.goal != 240 || d.timer.idleTimeout != 5*time.Minute {
		t.Fatalf("preferences not applied: goal %d idle %v", d.goal, d.timer.idleTimeout)
	}
}

func TestDashboardStopRecordsSession(t *testing.T) {
	sess, _ := newTestSession(t)
	addChapter(t, sess, "Kinematics")
	d, clock := loadedDashboard(t, sess)
	if len(d.chapters) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(d.chapters))
	}

	d, _ = d.startTimer(d.chapters[0])
	clock.advance(30 * time.Minute)

	d, cmd := d.stopTimer()
	if d.isRunning() {
		t.Fatal("timer should be stopped")
	}
	msg, ok := cmd().(timerStoppedMsg)
	if !ok || msg.session == nil {
		t.Fatalf("expected timerStoppedMsg with a session, got %#v", cmd())
	}
	if msg.session.Duration != 30 || msg.session.ChapterName != "Kinematics" {
		t.Fatalf("unexpected session: %+v", msg.session)
	}
	if n := len(sess.Plan().Sessions()); n != 1 {
		t.Fatalf("expected 1 stored session, got %d", n)
	}

	d, _ = d.update(d.loadData()())
	if d.overall.Total != 1 {
		t.Fatalf("expected 1 chapter in overall progress, got %d", d.overall.Total)
	}
}

func TestDashboardStartWithoutChapters(t *testing.T) {
	sess, _ := newTestSession(t)
	d, _ := loadedDashboard(t, sess)

	d, cmd := d.update(runeKey("s"))
	if d.isRunning() {
		t.Fatal("timer should not start without chapters")
	}
	if msg, ok := cmd().(statusMsg); !ok || !msg.isError {
		t.Fatalf("expected error status, got %#v", cmd())
	}
}

func TestDashboardPicker(t *testing.T) {
	sess, _ := newTestSession(t)
	addChapter(t, sess, "Kinematics")
	addChapter(t, sess, "Optics")
	d, _ := loadedDashboard(t, sess)

	d, _ = d.update(runeKey("s"))
	if !d.picking {
		t.Fatal("two chapters should open the picker")
	}
	d, _ = d.update(tea.KeyMsg{Type: tea.KeyDown})
	d, _ = d.update(tea.KeyMsg{Type: tea.KeyEnter})
	if d.picking || !d.isRunning() {
		t.Fatal("enter should start the timer")
	}
	if d.timer.chapterName != "Optics" {
		t.Fatalf("expected Optics, got %q", d.timer.chapterName)
	}
}

// ============================================================
// Subjects model
// ============================================================

func chapterView(t *testing.T, sess *session.Session) subjectsModel {
	t.Helper()
	m := newSubjectsModel(sess)
	m.setSize(120, 40)
	m.level = levelChapter
	return m
}

func TestSubjectsAddChapterForm(t *testing.T) {
	sess, _ := newTestSession(t)
	m := newSubjectsModel(sess)
	m.level = levelChapters

	m, _ = m.showChapterForm()
	if !m.formActive || m.formType != "chapter" {
		t.Fatal("chapter form should be active")
	}
	*m.formName = "  Optics "
	*m.formTarget = "90"
	m, _ = m.submitForm()

	chapters := sess.Plan().Subjects[0].Chapters
	if len(chapters) != 1 || chapters[0].Name != "Optics" || chapters[0].TargetMinutes != 90 {
		t.Fatalf("unexpected chapters: %+v", chapters)
	}
	if len(m.plan.Subjects[0].Chapters) != 1 {
		t.Fatal("model snapshot not refreshed")
	}
}

func TestSubjectsRangeWarningThenConfirm(t *testing.T) {
	sess, _ := newTestSession(t)
	chapterID := addChapter(t, sess, "Kinematics")
	bookID := addBook(t, sess, chapterID, "HC Verma", 20)
	m := chapterView(t, sess)

	in := study.RangeInput{SubjectID: "1", ChapterID: chapterID, BookID: bookID, Range: progress.QuestionRange{Start: 15, End: 25}}
	m, _ = m.logRange(in)
	if !m.formActive || m.formType != "confirm" || m.pendingRange == nil {
		t.Fatal("exceeding the total should ask for confirmation")
	}
	if bp, _ := sess.Plan().BookProgress("1", chapterID, bookID); len(bp.CompletedRanges) != 0 {
		t.Fatal("nothing should be stored before confirming")
	}

	*m.formConfirm = true
	m, _ = m.submitForm()
	bp, err := sess.Plan().BookProgress("1", chapterID, bookID)
	if err != nil {
		t.Fatal(err)
	}
	if bp.Percentage != 55 {
		t.Fatalf("expected 55%%, got %d", bp.Percentage)
	}
	if m.pendingRange != nil {
		t.Fatal("pending range should be cleared")
	}
}

func TestSubjectsRangeDeclined(t *testing.T) {
	sess, _ := newTestSession(t)
	chapterID := addChapter(t, sess, "Kinematics")
	bookID := addBook(t, sess, chapterID, "HC Verma", 20)
	m := chapterView(t, sess)

	m, _ = m.logRange(study.RangeInput{SubjectID: "1", ChapterID: chapterID, BookID: bookID, Range: progress.QuestionRange{Start: 15, End: 25}})
	*m.formConfirm = false
	m, _ = m.submitForm()
	if bp, _ := sess.Plan().BookProgress("1", chapterID, bookID); len(bp.CompletedRanges) != 0 {
		t.Fatalf("declined range was stored: %+v", bp)
	}
}

func TestSubjectsRangeForm(t *testing.T) {
	sess, _ := newTestSession(t)
	chapterID := addChapter(t, sess, "Kinematics")
	bookID := addBook(t, sess, chapterID, "HC Verma", 20)
	m := chapterView(t, sess)

	m, _ = m.showRangeForm()
	*m.formStart = "1"
	*m.formEnd = "8"
	m, _ = m.submitForm()
	if m.formActive {
		t.Fatal("a valid range should not ask for confirmation")
	}
	bp, _ := sess.Plan().BookProgress("1", chapterID, bookID)
	if bp.Percentage != 40 {
		t.Fatalf("expected 40%%, got %d", bp.Percentage)
	}
}

func TestSubjectsBookInfoForm(t *testing.T) {
	sess, _ := newTestSession(t)
	chapterID := addChapter(t, sess, "Kinematics")
	bookID := addBook(t, sess, chapterID, "HC Verma", 20)
	m := chapterView(t, sess)

	m, _ = m.showInfoForm()
	if *m.formTotal != "20" {
		t.Fatalf("form should be prefilled with the total, got %q", *m.formTotal)
	}
	*m.formExercises = "1.1:10\n1.2: 15\nnotes without count\n"
	m, _ = m.submitForm()

	info, err := sess.Plan().BookInfo("1", chapterID, bookID)
	if err != nil || info == nil {
		t.Fatalf("book info missing: %v", err)
	}
	if info.TotalQuestions != 25 || len(info.Exercises) != 2 {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestSubjectsBookInfoEmpty(t *testing.T) {
	sess, _ := newTestSession(t)
	chapterID := addChapter(t, sess, "Kinematics")
	addBook(t, sess, chapterID, "HC Verma", 20)
	m := chapterView(t, sess)

	m, _ = m.showInfoForm()
	*m.formTotal = ""
	*m.formExercises = "no count here"
	_, cmd := m.submitForm()
	if msg, ok := cmd().(statusMsg); !ok || !msg.isError {
		t.Fatalf("expected error status, got %#v", cmd())
	}
}

func TestParseExerciseRows(t *testing.T) {
	rows := parseExerciseRows("1.1:10\nMisc : 5")
	if len(rows) != 2 || rows[1].Number != "Misc " || rows[1].Count != " 5" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	info, err := progress.BuildBookInfo(rows)
	if err != nil || info.TotalQuestions != 15 {
		t.Fatalf("got %+v, %v", info, err)
	}
	if got := formatExerciseRows(info.Exercises); got != "1.1:10\nMisc:5" {
		t.Fatalf("formatExerciseRows = %q", got)
	}
}

func TestNextStatus(t *testing.T) {
	if nextStatus(study.NotStarted) != study.InProgress ||
		nextStatus(study.InProgress) != study.Completed ||
		nextStatus(study.Completed) != study.NotStarted {
		t.Fatal("status should cycle NotStarted -> InProgress -> Completed")
	}
}

func TestSubjectsViewsRender(t *testing.T) {
	sess, _ := newTestSession(t)
	chapterID := addChapter(t, sess, "Kinematics")
	addBook(t, sess, chapterID, "HC Verma", 20)
	m := newSubjectsModel(sess)
	m.setSize(120, 40)

	for _, lvl := range []subjectsLevel{levelSubjects, levelChapters, levelChapter} {
		m.level = lvl
		out := m.view()
		if !strings.Contains(out, "Physics") {
			t.Fatalf("level %d view missing subject name", lvl)
		}
	}
	m.level = levelChapter
	if !strings.Contains(m.view(), "HC Verma") {
		t.Fatal("chapter view should list books")
	}
}

func TestSubjectsChapterListMinutes(t *testing.T) {
	sess, _ := newTestSession(t)
	chapterID := addChapter(t, sess, "Kinematics")
	target := 120
	err := sess.Mutate(context.Background(), func(p *study.Plan) error {
		return p.UpdateChapter("1", chapterID, study.ChapterUpdate{TargetMinutes: &target})
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sess.RecordSession(context.Background(), study.SessionInput{
		SubjectID: "1", ChapterID: chapterID, Start: time.Now(), Minutes: 45,
	}); err != nil {
		t.Fatal(err)
	}

	m := newSubjectsModel(sess)
	m.setSize(120, 40)
	m.level = levelChapters
	if out := m.view(); !strings.Contains(out, "45m") || !strings.Contains(out, "2h 00m") {
		t.Fatalf("chapter row should show studied and target minutes: %q", out)
	}
}

// ============================================================
// Tests model
// ============================================================

func fillTestForm(m testsModel, chapterID string, correct, wrong, unattempted string) {
	*m.formTestType = "DAT"
	*m.formDate = "2026-03-05"
	*m.formSubjects = []string{"1"}
	*m.formChapters = []string{chapterID}
	*m.formCorrect = correct
	*m.formWrong = wrong
	*m.formUnattempted = unattempted
	*m.formRemarks = "rushed"
}

func TestTestsSaveRecord(t *testing.T) {
	sess, _ := newTestSession(t)
	chapterID := addChapter(t, sess, "Kinematics")
	m := newTestsModel(sess)
	m.typeIndex = 2

	fillTestForm(m, chapterID, "6", "3", "1")
	m, _ = m.saveRecord()

	recs := sess.Plan().TestRecordsOf(study.DAT)
	if len(recs) != 1 || recs[0].Score != 21 {
		t.Fatalf("unexpected records: %+v", recs)
	}
	if m.selectedType() != study.DAT {
		t.Fatalf("view should switch to the recorded type, got %s", m.selectedType())
	}
}

func TestTestsSaveRecordInvalid(t *testing.T) {
	sess, _ := newTestSession(t)
	chapterID := addChapter(t, sess, "Kinematics")
	m := newTestsModel(sess)

	fillTestForm(m, chapterID, "1", "1", "1")
	_, cmd := m.saveRecord()
	if msg, ok := cmd().(statusMsg); !ok || !msg.isError {
		t.Fatalf("expected error status, got %#v", cmd())
	}
	if len(sess.Plan().TestRecords) != 0 {
		t.Fatal("invalid record was stored")
	}
}

func TestTestsScoresFormNeedsChapters(t *testing.T) {
	sess, _ := newTestSession(t)
	m := newTestsModel(sess)
	*m.formSubjects = []string{"2"}

	m, cmd := m.showScoresForm()
	if m.formActive {
		t.Fatal("scores form should not open without chapters")
	}
	if msg, ok := cmd().(statusMsg); !ok || !msg.isError {
		t.Fatalf("expected error status, got %#v", cmd())
	}
}

func TestTestsTypeCycling(t *testing.T) {
	sess, _ := newTestSession(t)
	m := newTestsModel(sess)

	m, _ = m.update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.selectedType() != study.FLT {
		t.Fatalf("left from DAT should wrap to FLT, got %s", m.selectedType())
	}
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyRight})
	if m.selectedType() != study.DAT {
		t.Fatalf("right should wrap back to DAT, got %s", m.selectedType())
	}
}

func TestTestsDeleteRecord(t *testing.T) {
	sess, _ := newTestSession(t)
	chapterID := addChapter(t, sess, "Kinematics")
	m := newTestsModel(sess)
	fillTestForm(m, chapterID, "6", "3", "1")
	m, _ = m.saveRecord()

	m, _ = m.update(runeKey("d"))
	if len(sess.Plan().TestRecords) != 0 {
		t.Fatal("record should be deleted")
	}
	if len(m.records()) != 0 {
		t.Fatal("snapshot should be refreshed")
	}
}

func TestTestsScoreTrend(t *testing.T) {
	sess, _ := newTestSession(t)
	chapterID := addChapter(t, sess, "Kinematics")
	m := newTestsModel(sess)
	m.setSize(100, 40)

	fillTestForm(m, chapterID, "6", "3", "1")
	m, _ = m.saveRecord()
	if strings.Contains(m.view(), "Score trend") {
		t.Fatal("trend needs at least two tests")
	}

	fillTestForm(m, chapterID, "8", "1", "1")
	*m.formDate = "2026-03-06"
	m, _ = m.saveRecord()
	if got := m.plan.ScoreTrend(study.DAT); len(got) != 2 {
		t.Fatalf("expected two trend points, got %+v", got)
	}
	if !strings.Contains(m.view(), "Score trend") {
		t.Fatal("trend chart missing from view")
	}
}

// ============================================================
// Reports model
// ============================================================

func testReports(sess *session.Session, weekStart string) reportsModel {
	r := newReportsModel(sess, weekStart)
	r.today = func() study.Date { return study.Date{Year: 2026, Month: time.March, Day: 11} }
	r.setSize(100, 40)
	return r
}

func TestReportsDateRange(t *testing.T) {
	sess, _ := newTestSession(t)

	tests := []struct {
		weekStart string
		mode      reportMode
		offset    int
		from, to  string
	}{
		{"monday", reportDaily, 0, "2026-03-05", "2026-03-11"},
		{"monday", reportDaily, 1, "2026-02-26", "2026-03-04"},
		{"monday", reportWeekly, 0, "2026-03-09", "2026-03-15"},
		{"monday", reportWeekly, 1, "2026-03-02", "2026-03-08"},
		{"sunday", reportWeekly, 0, "2026-03-08", "2026-03-14"},
	}
	for _, tt := range tests {
		r := testReports(sess, tt.weekStart)
		r.mode = tt.mode
		r.offset = tt.offset
		from, to := r.dateRange()
		if from.String() != tt.from || to.String() != tt.to {
			t.Errorf("%s mode %d offset %d: got %s..%s, want %s..%s",
				tt.weekStart, tt.mode, tt.offset, from, to, tt.from, tt.to)
		}
	}
}

func TestReportsRefresh(t *testing.T) {
	sess, _ := newTestSession(t)
	chapterID := addChapter(t, sess, "Kinematics")
	if _, err := sess.RecordSession(context.Background(), study.SessionInput{
		SubjectID: "1", ChapterID: chapterID, Start: time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC), Minutes: 45,
	}); err != nil {
		t.Fatal(err)
	}

	r := testReports(sess, "monday")
	r, _ = r.update(r.refresh()())
	if len(r.days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(r.days))
	}
	if r.totalMinutes() != 45 {
		t.Fatalf("expected 45 minutes, got %d", r.totalMinutes())
	}
	if len(r.subjects) != 1 || r.subjects[0].Name != "Physics" {
		t.Fatalf("unexpected subject totals: %+v", r.subjects)
	}
	out := r.view()
	if !strings.Contains(out, "Reports") || !strings.Contains(out, "Physics") {
		t.Fatal("report view missing header or subject table")
	}
}

func TestReportsModeToggle(t *testing.T) {
	sess, _ := newTestSession(t)
	r := testReports(sess, "monday")
	r.offset = 3

	r, _ = r.update(tea.KeyMsg{Type: tea.KeyTab})
	if r.mode != reportWeekly || r.offset != 0 {
		t.Fatal("tab should switch to weekly and reset the offset")
	}
	r, _ = r.update(tea.KeyMsg{Type: tea.KeyRight})
	if r.offset != 0 {
		t.Fatal("offset should not go below zero")
	}
}

// ============================================================
// Settings model
// ============================================================

func TestSettingsSave(t *testing.T) {
	st := newTestStore(t)
	s := newSettingsModel(st, false, false)
	s, _ = s.showForm()
	if *s.dailyGoal != "4.0" || *s.idleTimeout != "5" || *s.weekStart != "monday" {
		t.Fatalf("form not prefilled from defaults: %q %q %q", *s.dailyGoal, *s.idleTimeout, *s.weekStart)
	}

	*s.dailyGoal = "1.5"
	*s.idleTimeout = "10"
	*s.timerMinutes = "45"
	*s.weekStart = "sunday"
	prefs, err := s.saveSettings()
	if err != nil {
		t.Fatal(err)
	}
	want := store.Preferences{DailyGoalMinutes: 90, WeekStart: "sunday", IdleTimeoutSeconds: 600, TimerDefaultMinutes: 45}
	if prefs != want {
		t.Fatalf("got %+v, want %+v", prefs, want)
	}
	if v, _ := st.GetSetting("idle_timeout"); v != "600" {
		t.Fatalf("idle_timeout stored as %q", v)
	}
}

func TestSettingsShowsIntegrations(t *testing.T) {
	st := newTestStore(t)
	s := newSettingsModel(st, true, false)
	s.setSize(100, 40)
	out := s.view()
	if !strings.Contains(out, "google_calendar") || !strings.Contains(out, "ai_assistant") {
		t.Fatalf("integrations missing from view: %q", out)
	}
	if !strings.Contains(out, "on") || !strings.Contains(out, "off (see config file)") {
		t.Fatalf("expected calendar on and assistant off: %q", out)
	}
}

func TestFormatSettingValue(t *testing.T) {
	tests := []struct {
		k, v, want string
	}{
		{"idle_timeout", "300", "5 min"},
		{"idle_timeout", "0", "off"},
		{"daily_goal", "240", "4.0 hours"},
		{"timer_minutes", "60", "60 min"},
		{"week_start", "monday", "monday"},
		{"idle_timeout", "abc", "abc"},
	}
	for _, tt := range tests {
		if got := formatSettingValue(tt.k, tt.v); got != tt.want {
			t.Errorf("formatSettingValue(%q, %q) = %q, want %q", tt.k, tt.v, got, tt.want)
		}
	}
}

func TestHoursConversion(t *testing.T) {
	if hoursToMin("1.5") != 90 || hoursToMin("x") != 0 || hoursToMin("-1") != 0 {
		t.Fatal("hoursToMin mismatch")
	}
	if minToHours(90) != "1.5" {
		t.Fatalf("minToHours(90) = %q", minToHours(90))
	}
	if validHours("2") != nil || validHours("two") == nil {
		t.Fatal("validHours mismatch")
	}
}

// ============================================================
// App model
// ============================================================

func newTestApp(t *testing.T) (App, *session.Session) {
	t.Helper()
	sess, st := newTestSession(t)
	app := NewApp(sess, st)
	app.exportDir = t.TempDir()
	return app, sess
}

func TestNewApp(t *testing.T) {
	app, _ := newTestApp(t)

	if app.activeView != viewDashboard {
		t.Fatal("default view should be dashboard")
	}
	if app.showHelp || app.exportPicking {
		t.Fatal("overlays should be hidden by default")
	}
	if app.isFormActive() {
		t.Fatal("no forms should be active initially")
	}
}

func TestAppLoadingState(t *testing.T) {
	app, _ := newTestApp(t)
	if out := app.View(); out != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", out)
	}
}

func TestAppViewStates(t *testing.T) {
	app, sess := newTestApp(t)
	addChapter(t, sess, "Kinematics")
	model, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	app = model.(App)

	for v := range viewNames {
		app.activeView = viewState(v)
		if out := app.View(); out == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	app, _ := newTestApp(t)
	app.width = 120
	app.height = 40

	header := app.renderHeader()
	for _, name := range append([]string{"studyplan", "alice"}, viewNames...) {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing %q", name)
		}
	}
}

func TestAppStatusMessage(t *testing.T) {
	app, _ := newTestApp(t)
	app.width = 120
	app.height = 40

	model, _ := app.Update(statusMsg{text: "test status"})
	app = model.(App)
	if !strings.Contains(app.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppTabCycles(t *testing.T) {
	app, _ := newTestApp(t)
	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyTab})
	app = model.(App)
	if app.activeView != viewSubjects {
		t.Fatalf("tab should move to subjects, got %d", app.activeView)
	}

	model, _ = app.Update(runeKey("3"))
	app = model.(App)
	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyTab})
	app = model.(App)
	if app.activeView != viewReports || app.reports.mode != reportWeekly {
		t.Fatal("tab on reports should switch report mode, not view")
	}
}

func TestAppTimerStoppedStatus(t *testing.T) {
	app, _ := newTestApp(t)
	sess := &study.StudySession{Duration: 25, SubjectName: "Physics", ChapterName: "Kinematics"}
	model, _ := app.Update(timerStoppedMsg{session: sess})
	app = model.(App)
	if app.status != "Logged 25m to Physics / Kinematics" {
		t.Fatalf("unexpected status %q", app.status)
	}
}

func TestAppPreferencesChanged(t *testing.T) {
	app, _ := newTestApp(t)
	prefs := store.Preferences{DailyGoalMinutes: 60, WeekStart: "sunday", IdleTimeoutSeconds: 120}
	model, _ := app.Update(preferencesChangedMsg{prefs: prefs})
	app = model.(App)
	if app.dashboard.goal != 60 || app.reports.weekStart != "sunday" || app.dashboard.timer.idleTimeout != 2*time.Minute {
		t.Fatal("preferences not propagated")
	}
}

func TestAppExport(t *testing.T) {
	app, sess := newTestApp(t)
	chapterID := addChapter(t, sess, "Kinematics")
	if _, err := sess.RecordSession(context.Background(), study.SessionInput{
		SubjectID: "1", ChapterID: chapterID, Start: time.Now(), Minutes: 30,
	}); err != nil {
		t.Fatal(err)
	}

	for format := range exportFormats {
		msg, ok := app.doExport(format)().(exportDoneMsg)
		if !ok {
			t.Fatalf("format %d: export failed", format)
		}
		data, err := os.ReadFile(msg.path)
		if err != nil {
			t.Fatal(err)
		}
		if format != 1 && !strings.Contains(string(data), "Kinematics") {
			t.Fatalf("format %d: export missing session: %s", format, data)
		}
	}
}

func TestAppExportPicker(t *testing.T) {
	app, _ := newTestApp(t)
	model, _ := app.Update(runeKey("e"))
	app = model.(App)
	if !app.exportPicking {
		t.Fatal("e should open the export picker")
	}
	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	app = model.(App)
	if app.exportPicking {
		t.Fatal("esc should close the export picker")
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
	for i, g := range keys.FullHelp() {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles (smoke test)
// ============================================================

func TestStylesRender(t *testing.T) {
	styles := map[string]func() string{
		"activeTab":    func() string { return activeTabStyle.Render("test") },
		"inactiveTab":  func() string { return inactiveTabStyle.Render("test") },
		"panel":        func() string { return panelStyle.Render("test") },
		"timerRunning": func() string { return timerRunningStyle.Render("test") },
		"timerPaused":  func() string { return timerPausedStyle.Render("test") },
		"accent":       func() string { return accentStyle.Render("test") },
		"status":       func() string { return statusStyle(study.Completed).Render("test") },
		"dot":          func() string { return dot("#6C63FF") },
	}
	for name, fn := range styles {
		if fn() == "" {
			t.Fatalf("style %q rendered empty", name)
		}
	}
}
