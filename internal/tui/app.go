package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studyplan/internal/export"
	"github.com/sadopc/studyplan/internal/session"
	"github.com/sadopc/studyplan/internal/store"
)

var exportFormats = []string{"Sessions CSV", "Tests CSV", "JSON"}

// App is the root Bubble Tea model.
type App struct {
	sess   *session.Session
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	exportDir     string

	dashboard dashboardModel
	subjects  subjectsModel
	reports   reportsModel
	tests     testsModel
	settings  settingsModel

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(sess *session.Session, settings store.Settings) App {
	h := help.New()
	h.ShowAll = false
	prefs := store.LoadPreferences(settings)
	home, _ := os.UserHomeDir()

	return App{
		sess:       sess,
		activeView: viewDashboard,
		exportDir:  home,
		dashboard:  newDashboardModel(sess, prefs),
		subjects:   newSubjectsModel(sess),
		reports:    newReportsModel(sess, prefs.WeekStart),
		tests:      newTestsModel(sess),
		settings:   newSettingsModel(settings, sess.CalendarEnabled(), sess.AssistEnabled()),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.dashboard.Init(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.subjects.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.tests.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		// Any key counts as activity for the idle detector, whichever view
		// is showing.
		a.dashboard.timer.recordActivity()

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, a.dashboard.loadData()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewSubjects
			return a, a.subjects.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewReports
			return a, a.reports.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewTests
			return a, a.tests.refresh()
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			// Reports uses tab to switch its own mode.
			if a.activeView != viewReports {
				a.activeView = (a.activeView + 1) % viewState(len(viewNames))
				return a, a.refreshCurrentView()
			}
		}

	case tickMsg:
		// Always route ticks to the dashboard timer
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		return a, tea.Batch(tickCmd(), cmd)

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		return a, nil

	case timerStartedMsg:
		a.setStatus(fmt.Sprintf("Studying %s / %s", a.dashboard.timer.subjectName, a.dashboard.timer.chapterName))
		return a, nil

	case timerStoppedMsg:
		if msg.session == nil {
			return a, nil
		}
		a.setStatus(fmt.Sprintf("Logged %s to %s / %s", formatMinutes(msg.session.Duration), msg.session.SubjectName, msg.session.ChapterName))
		return a, tea.Batch(a.dashboard.loadData(), a.refreshCurrentView())

	case planChangedMsg:
		return a, tea.Batch(a.dashboard.loadData(), a.refreshCurrentView())

	case preferencesChangedMsg:
		a.dashboard.applyPreferences(msg.prefs)
		a.reports.weekStart = msg.prefs.WeekStart
		a.setStatus("Settings saved")
		return a, a.dashboard.loadData()

	case exportDoneMsg:
		a.setStatus("Exported to " + msg.path)
		a.exportPicking = false
		return a, nil

	case dashboardDataMsg:
		// Data loads are addressed to their view regardless of which is active.
		a.dashboard, _ = a.dashboard.update(msg)
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a *App) setStatus(text string) {
	a.status = text
	a.statusErr = false
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewSubjects:
		a.subjects, cmd = a.subjects.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewTests:
		a.tests, cmd = a.tests.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.picking
	case viewSubjects:
		return a.subjects.formActive
	case viewTests:
		return a.tests.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.loadData()
	case viewSubjects:
		return a.subjects.refresh()
	case viewReports:
		return a.reports.refresh()
	case viewTests:
		return a.tests.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewSubjects:
		content = a.subjects.view()
	case viewReports:
		content = a.reports.view()
	case viewTests:
		content = a.tests.view()
	case viewSettings:
		content = a.settings.view()
	}

	contentHeight := max(1, a.height-lipgloss.Height(header)-lipgloss.Height(footer))

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("studyplan")
	user := mutedStyle.Render(" " + a.sess.UserID())
	gap := max(1, a.width-lipgloss.Width(title)-lipgloss.Width(user)-lipgloss.Width(tabRow)-4)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, user, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	timerInfo := ""
	if a.dashboard.isRunning() {
		elapsed := a.dashboard.elapsed()
		timerInfo = successStyle.Render(" ● " + formatDuration(elapsed))
		if a.dashboard.isPaused() {
			timerInfo = warningStyle.Render(" ⏸ " + formatDuration(elapsed))
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export"), ""}
	for i, f := range exportFormats {
		style := normalItemStyle
		if i == a.exportCursor {
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursorPrefix(i == a.exportCursor)+f))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	plan := a.sess.Plan()
	user := a.sess.UserID()
	dir := a.exportDir
	return func() tea.Msg {
		dateStr := time.Now().Format("2006-01-02")

		var path string
		var err error
		switch format {
		case 0:
			path = filepath.Join(dir, fmt.Sprintf("studyplan-sessions-%s.csv", dateStr))
			err = export.SessionsToCSV(plan, path)
		case 1:
			path = filepath.Join(dir, fmt.Sprintf("studyplan-tests-%s.csv", dateStr))
			err = export.TestsToCSV(plan, path)
		default:
			path = filepath.Join(dir, fmt.Sprintf("studyplan-export-%s.json", dateStr))
			err = export.ToJSON(plan, user, path)
		}
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
