package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studyplan/internal/session"
	"github.com/sadopc/studyplan/internal/study"
)

type reportMode int

const (
	reportDaily reportMode = iota
	reportWeekly
)

type reportsModel struct {
	sess   *session.Session
	width  int
	height int

	weekStart string // monday or sunday
	mode      reportMode
	offset    int // 7-day blocks back from today (0 = current)
	today     func() study.Date

	days     []study.DayMinutes
	subjects []study.SubjectMinutes

	chart barchart.Model
}

func newReportsModel(sess *session.Session, weekStart string) reportsModel {
	return reportsModel{
		sess:      sess,
		weekStart: weekStart,
		today:     func() study.Date { return study.DateOf(time.Now()) },
		chart:     barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reportsDataMsg struct {
	days     []study.DayMinutes
	subjects []study.SubjectMinutes
}

func (r reportsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		p := r.sess.Plan()
		from, to := r.dateRange()
		return reportsDataMsg{days: p.MinutesByDay(from, to), subjects: p.MinutesBySubject()}
	}
}

// dateRange returns the inclusive 7-day window being shown.
func (r reportsModel) dateRange() (study.Date, study.Date) {
	today := r.today()

	switch r.mode {
	case reportWeekly:
		first := time.Monday
		if r.weekStart == "sunday" {
			first = time.Sunday
		}
		back := (int(today.In(time.UTC).Weekday()) - int(first) + 7) % 7
		start := today.AddDays(-back - 7*r.offset)
		return start, start.AddDays(6)
	default:
		end := today.AddDays(-7 * r.offset)
		return end.AddDays(-6), end
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.days = msg.days
		r.subjects = msg.subjects
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		case key.Matches(msg, keys.Tab):
			if r.mode == reportDaily {
				r.mode = reportWeekly
			} else {
				r.mode = reportDaily
			}
			r.offset = 0
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := max(20, r.width-8)
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	barStyle := lipgloss.NewStyle().Foreground(colorPrimary)
	var bars []barchart.BarData
	for _, d := range r.days {
		style := barStyle
		if d.Minutes == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label:  d.Date.In(time.UTC).Format("Mon 02"),
			Values: []barchart.BarValue{{Name: "Study", Value: float64(d.Minutes) / 60, Style: style}},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) totalMinutes() int {
	total := 0
	for _, d := range r.days {
		total += d.Minutes
	}
	return total
}

func (r reportsModel) view() string {
	w := r.width - 4

	dailyTab := inactiveTabStyle.Render("Daily")
	weeklyTab := inactiveTabStyle.Render("Weekly")
	if r.mode == reportDaily {
		dailyTab = activeTabStyle.Render("Daily")
	} else {
		weeklyTab = activeTabStyle.Render("Weekly")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, dailyTab, weeklyTab)

	from, to := r.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s to %s", from.In(time.UTC).Format("Jan 02"), to.In(time.UTC).Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs, "  ", dateLabel,
	)
	total := fmt.Sprintf("  %s %s", mutedStyle.Render("Total"), highlightStyle.Render(formatMinutes(r.totalMinutes())))

	nav := mutedStyle.Render("  ←/→: navigate  tab: switch mode")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), total, "", r.renderSubjectTable(w), "", nav,
		),
	)
}

// renderSubjectTable lists all-time minutes per subject.
func (r reportsModel) renderSubjectTable(w int) string {
	if len(r.subjects) == 0 {
		return mutedStyle.Render("  No study sessions logged yet")
	}

	rows := []string{
		mutedStyle.Render(fmt.Sprintf("  %-24s %10s %8s", "Subject", "Time", "Hours")),
		mutedStyle.Render("  " + strings.Repeat("─", min(w-6, 44))),
	}
	for _, s := range r.subjects {
		rows = append(rows, fmt.Sprintf("  %s %-22s %10s %8s",
			dot(s.Color), s.Name, formatMinutes(s.Minutes), formatHours(s.Minutes),
		))
	}
	return strings.Join(rows, "\n")
}
