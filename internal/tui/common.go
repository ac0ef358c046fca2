package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/studyplan/internal/study"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewSubjects
	viewReports
	viewTests
	viewSettings
)

var viewNames = []string{"Dashboard", "Subjects", "Reports", "Tests", "Settings"}

// --- Messages ---

type timerStartedMsg struct{}

type timerStoppedMsg struct {
	session *study.StudySession // nil when nothing was recorded
}

// planChangedMsg is sent after any successful mutation so views reload.
type planChangedMsg struct{}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func statusCmd(format string, args ...any) tea.Cmd {
	text := fmt.Sprintf(format, args...)
	return func() tea.Msg { return statusMsg{text: text} }
}

func errorCmd(err error) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true} }
}

func planChanged() tea.Msg { return planChangedMsg{} }

// uiTimeout bounds every backend call issued from the UI.
const uiTimeout = 10 * time.Second

func uiContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), uiTimeout)
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// formatMinutes renders a minute count as "1h 05m" or "45m".
func formatMinutes(mins int) string {
	if mins < 60 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dh %02dm", mins/60, mins%60)
}

func formatHours(mins int) string {
	return fmt.Sprintf("%.1fh", float64(mins)/60)
}

// progressBar draws a fixed-width bar for a 0-100 percentage.
func progressBar(percent, width int) string {
	if width <= 0 {
		return ""
	}
	percent = max(0, min(100, percent))
	filled := percent * width / 100
	return successStyle.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", width-filled))
}

func cursorPrefix(selected bool) string {
	if selected {
		return "> "
	}
	return "  "
}
