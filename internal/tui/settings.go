package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studyplan/internal/store"
)

type settingsModel struct {
	store  store.Settings
	width  int
	height int

	settings   []store.Setting
	calendarOn bool
	assistOn   bool
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	dailyGoal    *string
	idleTimeout  *string
	timerMinutes *string
	weekStart    *string
}

func newSettingsModel(s store.Settings, calendarOn, assistOn bool) settingsModel {
	dg, it, tm, ws := "", "", "", ""
	return settingsModel{
		store:        s,
		calendarOn:   calendarOn,
		assistOn:     assistOn,
		dailyGoal:    &dg,
		idleTimeout:  &it,
		timerMinutes: &tm,
		weekStart:    &ws,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

// preferencesChangedMsg carries the saved preferences to the other views.
type preferencesChangedMsg struct {
	prefs store.Preferences
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	prefs := store.LoadPreferences(s.store)
	*s.dailyGoal = minToHours(prefs.DailyGoalMinutes)
	*s.idleTimeout = strconv.Itoa(prefs.IdleTimeoutSeconds / 60)
	*s.timerMinutes = strconv.Itoa(prefs.TimerDefaultMinutes)
	*s.weekStart = prefs.WeekStart

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Daily goal (hours)").Value(s.dailyGoal).Validate(validHours),
			huh.NewInput().Title("Scheduled slot length (min)").Value(s.timerMinutes).Validate(optionalCount),
		).Title("Study"),
		huh.NewGroup(
			huh.NewInput().Title("Idle timeout (min, 0 = off)").Value(s.idleTimeout).Validate(optionalCount),
			huh.NewSelect[string]().Title("Week starts on").
				Options(
					huh.NewOption("Monday", "monday"),
					huh.NewOption("Sunday", "sunday"),
				).Value(s.weekStart),
		).Title("General"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		prefs, err := s.saveSettings()
		if err != nil {
			return s, errorCmd(err)
		}
		return s, tea.Batch(s.refresh(), func() tea.Msg { return preferencesChangedMsg{prefs: prefs} })
	}

	return s, cmd
}

func (s settingsModel) saveSettings() (store.Preferences, error) {
	prefs := store.Preferences{
		DailyGoalMinutes:    hoursToMin(*s.dailyGoal),
		WeekStart:           *s.weekStart,
		IdleTimeoutSeconds:  atoiOrZero(*s.idleTimeout) * 60,
		TimerDefaultMinutes: atoiOrZero(*s.timerMinutes),
	}
	if err := store.SavePreferences(s.store, prefs); err != nil {
		return store.Preferences{}, err
	}
	return store.LoadPreferences(s.store), nil
}

func (s settingsModel) view() string {
	w := s.width - 4

	title := titleStyle.Render("Settings")
	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	rows := []string{title, ""}
	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}
	rows = append(rows, "", mutedStyle.Render("Integrations"),
		fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(24).Render("google_calendar"), onOff(s.calendarOn)),
		fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(24).Render("ai_assistant"), onOff(s.assistOn)),
	)
	rows = append(rows, "", mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func onOff(enabled bool) string {
	if enabled {
		return successStyle.Render("on")
	}
	return mutedStyle.Render("off (see config file)")
}

func formatSettingValue(k, v string) string {
	switch k {
	case "idle_timeout":
		if secs, err := strconv.Atoi(v); err == nil {
			if secs == 0 {
				return "off"
			}
			return fmt.Sprintf("%d min", secs/60)
		}
	case "daily_goal":
		if mins, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%.1f hours", float64(mins)/60)
		}
	case "timer_minutes":
		return v + " min"
	}
	return v
}

func minToHours(mins int) string {
	return strconv.FormatFloat(float64(mins)/60, 'f', 1, 64)
}

func hoursToMin(s string) int {
	hours, err := strconv.ParseFloat(s, 64)
	if err != nil || hours < 0 {
		return 0
	}
	return int(hours * 60)
}

func validHours(s string) error {
	if h, err := strconv.ParseFloat(s, 64); err != nil || h < 0 {
		return fmt.Errorf("enter a number of hours")
	}
	return nil
}
