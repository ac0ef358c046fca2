package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studyplan/internal/session"
	"github.com/sadopc/studyplan/internal/store"
	"github.com/sadopc/studyplan/internal/study"
)

// chapterRef pairs a chapter with its subject for pickers.
type chapterRef struct {
	subject study.Subject
	chapter study.Chapter
}

func chapterRefs(p *study.Plan) []chapterRef {
	var out []chapterRef
	for _, s := range p.Subjects {
		for _, c := range s.Chapters {
			out = append(out, chapterRef{subject: s, chapter: c})
		}
	}
	return out
}

type dashboardModel struct {
	sess   *session.Session
	timer  timerModel
	width  int
	height int

	goal         int // daily goal in minutes
	todayMinutes int
	streak       int
	upcoming     []study.ScheduleItem
	overall      study.OverallProgress
	chapters     []chapterRef

	picking      bool
	pickerCursor int
}

func newDashboardModel(sess *session.Session, prefs store.Preferences) dashboardModel {
	return dashboardModel{
		sess:  sess,
		timer: newTimerModel(time.Duration(prefs.IdleTimeoutSeconds) * time.Second),
		goal:  prefs.DailyGoalMinutes,
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

// applyPreferences picks up edited settings without touching a running timer.
func (d *dashboardModel) applyPreferences(prefs store.Preferences) {
	d.goal = prefs.DailyGoalMinutes
	d.timer.idleTimeout = time.Duration(prefs.IdleTimeoutSeconds) * time.Second
}

func (d dashboardModel) isRunning() bool { return d.timer.running() }
func (d dashboardModel) isPaused() bool  { return d.timer.paused() }
func (d dashboardModel) elapsed() time.Duration {
	return d.timer.currentElapsed()
}

type dashboardDataMsg struct {
	todayMinutes int
	streak       int
	upcoming     []study.ScheduleItem
	overall      study.OverallProgress
	chapters     []chapterRef
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		p := d.sess.Plan()
		now := time.Now()
		today := study.DateOf(now)

		msg := dashboardDataMsg{
			streak:   p.Streak(today),
			overall:  p.Overall(),
			chapters: chapterRefs(p),
		}
		if days := p.MinutesByDay(today, today); len(days) == 1 {
			msg.todayMinutes = days[0].Minutes
		}
		upcoming := p.UpcomingSchedule(now)
		if len(upcoming) > 5 {
			upcoming = upcoming[:5]
		}
		msg.upcoming = upcoming
		return msg
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.todayMinutes = msg.todayMinutes
		d.streak = msg.streak
		d.upcoming = msg.upcoming
		d.overall = msg.overall
		d.chapters = msg.chapters
		if d.pickerCursor >= len(d.chapters) {
			d.pickerCursor = max(0, len(d.chapters)-1)
		}
		return d, nil

	case tickMsg:
		d.timer.tick()
		return d, nil

	case tea.KeyMsg:
		d.timer.recordActivity()

		if d.picking {
			return d.updatePicker(msg)
		}

		switch {
		case key.Matches(msg, keys.Start):
			if d.timer.running() {
				return d, nil
			}
			if len(d.chapters) == 0 {
				return d, func() tea.Msg {
					return statusMsg{text: "No chapters yet. Press 2 to go to Subjects and add one.", isError: true}
				}
			}
			if len(d.chapters) == 1 {
				return d.startTimer(d.chapters[0])
			}
			d.picking = true
			d.pickerCursor = 0
			return d, nil

		case key.Matches(msg, keys.Stop):
			return d.stopTimer()

		case key.Matches(msg, keys.Pause):
			d.timer.toggle()
			return d, nil
		}
	}
	return d, nil
}

func (d dashboardModel) updatePicker(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if d.pickerCursor > 0 {
			d.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if d.pickerCursor < len(d.chapters)-1 {
			d.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		if d.pickerCursor < len(d.chapters) {
			d.picking = false
			return d.startTimer(d.chapters[d.pickerCursor])
		}
	case key.Matches(msg, keys.Back):
		d.picking = false
	}
	return d, nil
}

func (d dashboardModel) startTimer(ref chapterRef) (dashboardModel, tea.Cmd) {
	d.timer.start(ref.subject, ref.chapter)
	return d, func() tea.Msg { return timerStartedMsg{} }
}

// stopTimer ends the run and records it as a study session.
func (d dashboardModel) stopTimer() (dashboardModel, tea.Cmd) {
	if !d.timer.running() {
		return d, nil
	}
	in, err := d.timer.stop()
	if err != nil {
		return d, tea.Batch(
			func() tea.Msg { return statusMsg{text: err.Error(), isError: true} },
			func() tea.Msg { return timerStoppedMsg{} },
		)
	}
	sess := d.sess
	return d, func() tea.Msg {
		ctx, cancel := uiContext()
		defer cancel()
		rec, err := sess.RecordSession(ctx, in)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return timerStoppedMsg{session: &rec}
	}
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	timerPanel := d.renderTimerPanel(contentWidth)
	todayPanel := d.renderTodayPanel(contentWidth)

	var bottomPanel string
	if d.picking {
		bottomPanel = d.renderChapterPicker(contentWidth)
	} else {
		bottomPanel = d.renderUpcomingPanel(contentWidth)
	}

	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, todayPanel, bottomPanel)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	if d.timer.running() {
		timeStr := formatDuration(d.timer.currentElapsed())

		var timeDisplay, indicator string
		if d.timer.paused() {
			timeDisplay = timerPausedStyle.Width(w - 6).Render(timeStr)
			if d.timer.isIdle {
				indicator = warningStyle.Render("⏸  IDLE")
			} else {
				indicator = warningStyle.Render("⏸  PAUSED")
			}
		} else {
			timeDisplay = timerRunningStyle.Width(w - 6).Render(timeStr)
			indicator = successStyle.Render("●  STUDYING")
		}

		chapterLine := highlightStyle.Render(d.timer.subjectName) + mutedStyle.Render(" / "+d.timer.chapterName)

		content := lipgloss.JoinVertical(lipgloss.Center, timeDisplay, indicator, chapterLine)
		return activePanelStyle.Width(w).Render(content)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		timerStyle.Width(w-6).Render("00:00:00"),
		mutedStyle.Render("■  STOPPED"),
		mutedStyle.Render("Press s to start a study session"),
	)
	return panelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderTodayPanel(w int) string {
	goalPct := 0
	if d.goal > 0 {
		goalPct = min(100, d.todayMinutes*100/d.goal)
	}

	header := fmt.Sprintf("%s  %s %s",
		titleStyle.Render("Today"),
		highlightStyle.Render(formatMinutes(d.todayMinutes)),
		mutedStyle.Render("of "+formatMinutes(d.goal)+" goal"),
	)
	rows := []string{
		header,
		"  " + progressBar(goalPct, 30) + fmt.Sprintf(" %d%%", goalPct),
		"",
		fmt.Sprintf("  Streak   %s", accentStyle.Render(fmt.Sprintf("%d day(s)", d.streak))),
		fmt.Sprintf("  Syllabus %s %d/%d chapters", progressBar(d.overall.Percent, 20), d.overall.Completed, d.overall.Total),
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderUpcomingPanel(w int) string {
	title := titleStyle.Render("Upcoming")
	if len(d.upcoming) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("Nothing scheduled"),
		))
	}

	rows := []string{title}
	for _, it := range d.upcoming {
		start := it.StartTime.Local()
		row := fmt.Sprintf("  %s %s-%s  %-18s %s",
			start.Format("Mon 02"),
			start.Format("15:04"),
			it.EndTime.Local().Format("15:04"),
			it.Subject,
			it.Chapter,
		)
		if it.Book != "" {
			row += mutedStyle.Render("  " + it.Book)
		}
		rows = append(rows, row)
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderChapterPicker(w int) string {
	rows := []string{titleStyle.Render("Select Chapter")}
	for i, ref := range d.chapters {
		style := normalItemStyle
		if i == d.pickerCursor {
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %s / %s",
			cursorPrefix(i == d.pickerCursor), dot(ref.subject.Color), ref.subject.Name, ref.chapter.Name)))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: select  esc: cancel"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
