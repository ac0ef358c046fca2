package store

import (
	"fmt"
	"strconv"
)

var defaultSettings = map[string]string{
	"daily_goal":    "240",
	"week_start":    "monday",
	"idle_timeout":  "300",
	"timer_minutes": "60",
}

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// LoadPreferences reads the typed preferences, falling back to defaults for
// missing or malformed values.
func LoadPreferences(s Settings) Preferences {
	get := func(key string) string {
		if v, err := s.GetSetting(key); err == nil {
			return v
		}
		return defaultSettings[key]
	}
	atoi := func(key string) int {
		n, err := strconv.Atoi(get(key))
		if err != nil || n < 0 {
			n, _ = strconv.Atoi(defaultSettings[key])
		}
		return n
	}
	p := Preferences{
		DailyGoalMinutes:    atoi("daily_goal"),
		WeekStart:           get("week_start"),
		IdleTimeoutSeconds:  atoi("idle_timeout"),
		TimerDefaultMinutes: atoi("timer_minutes"),
	}
	if p.WeekStart != "monday" && p.WeekStart != "sunday" {
		p.WeekStart = defaultSettings["week_start"]
	}
	return p
}

// SavePreferences writes every preference back.
func SavePreferences(s Settings, p Preferences) error {
	pairs := []Setting{
		{"daily_goal", strconv.Itoa(p.DailyGoalMinutes)},
		{"week_start", p.WeekStart},
		{"idle_timeout", strconv.Itoa(p.IdleTimeoutSeconds)},
		{"timer_minutes", strconv.Itoa(p.TimerDefaultMinutes)},
	}
	for _, kv := range pairs {
		if err := s.SetSetting(kv.Key, kv.Value); err != nil {
			return fmt.Errorf("save setting %q: %w", kv.Key, err)
		}
	}
	return nil
}
