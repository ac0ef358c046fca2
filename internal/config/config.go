package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	User     string         `yaml:"user"`
	Backend  string         `yaml:"backend"` // sqlite or redis
	DBPath   string         `yaml:"db_path"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
	AI       AIConfig       `yaml:"ai"`
	Calendar CalendarConfig `yaml:"calendar"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LogConfig struct {
	Mode string `yaml:"mode"` // dev or prod
	Path string `yaml:"path"`
}

type AIConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Enabled reports whether summaries can be requested.
func (c AIConfig) Enabled() bool { return strings.TrimSpace(c.APIKey) != "" }

type CalendarConfig struct {
	Token      string `yaml:"token"`
	CalendarID string `yaml:"calendar_id"`
}

func (c CalendarConfig) Enabled() bool { return strings.TrimSpace(c.Token) != "" }

type ConfigErrorCode string

const (
	ConfigErrorReadFile       ConfigErrorCode = "read_file"
	ConfigErrorParseFile      ConfigErrorCode = "parse_file"
	ConfigErrorMissingUser    ConfigErrorCode = "missing_user"
	ConfigErrorInvalidBackend ConfigErrorCode = "invalid_backend"
	ConfigErrorMissingRedis   ConfigErrorCode = "missing_redis_addr"
	ConfigErrorInvalidLogMode ConfigErrorCode = "invalid_log_mode"
	ConfigErrorInvalidTimeout ConfigErrorCode = "invalid_timeout"
	ConfigErrorInvalidRedisDB ConfigErrorCode = "invalid_redis_db"
)

type ConfigError struct {
	Code  ConfigErrorCode
	Value string
	Cause error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "invalid config"
	}
	switch e.Code {
	case ConfigErrorReadFile:
		return fmt.Sprintf("read config %s: %v", e.Value, e.Cause)
	case ConfigErrorParseFile:
		return fmt.Sprintf("parse config %s: %v", e.Value, e.Cause)
	case ConfigErrorMissingUser:
		return "user is required (set STUDYPLAN_USER or --user)"
	case ConfigErrorInvalidBackend:
		return fmt.Sprintf("invalid backend %q; expected sqlite or redis", e.Value)
	case ConfigErrorMissingRedis:
		return "redis backend requires STUDYPLAN_REDIS_ADDR"
	case ConfigErrorInvalidLogMode:
		return fmt.Sprintf("invalid log mode %q; expected dev or prod", e.Value)
	case ConfigErrorInvalidTimeout:
		return fmt.Sprintf("invalid STUDYPLAN_AI_TIMEOUT_SECONDS=%q; expected positive integer", e.Value)
	case ConfigErrorInvalidRedisDB:
		return fmt.Sprintf("invalid redis db %q; expected non-negative integer", e.Value)
	default:
		return "invalid config"
	}
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func Default() Config {
	user := strings.TrimSpace(os.Getenv("USER"))
	if user == "" {
		user = "local"
	}
	return Config{
		User:    user,
		Backend: "sqlite",
		Log:     LogConfig{Mode: "prod"},
		AI: AIConfig{
			BaseURL:        "https://api.openai.com/v1",
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 30,
		},
		Calendar: CalendarConfig{CalendarID: "primary"},
	}
}

// DefaultPath returns ~/.config/studyplan/config.yaml
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "studyplan", "config.yaml"), nil
}

// Load reads the YAML file at path, applies environment overrides and
// validates. An empty path means DefaultPath, which may be absent; an
// explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, &ConfigError{Code: ConfigErrorParseFile, Value: path, Cause: err}
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return Config{}, &ConfigError{Code: ConfigErrorReadFile, Value: path, Cause: err}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	str("STUDYPLAN_USER", &cfg.User)
	str("STUDYPLAN_BACKEND", &cfg.Backend)
	str("STUDYPLAN_DB", &cfg.DBPath)
	str("STUDYPLAN_REDIS_ADDR", &cfg.Redis.Addr)
	str("STUDYPLAN_REDIS_PASSWORD", &cfg.Redis.Password)
	str("STUDYPLAN_LOG_MODE", &cfg.Log.Mode)
	str("STUDYPLAN_LOG_PATH", &cfg.Log.Path)
	str("STUDYPLAN_AI_BASE_URL", &cfg.AI.BaseURL)
	str("STUDYPLAN_AI_API_KEY", &cfg.AI.APIKey)
	str("STUDYPLAN_AI_MODEL", &cfg.AI.Model)
	str("STUDYPLAN_CALENDAR_TOKEN", &cfg.Calendar.Token)
	str("STUDYPLAN_CALENDAR_ID", &cfg.Calendar.CalendarID)

	if raw := strings.TrimSpace(os.Getenv("STUDYPLAN_REDIS_DB")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return &ConfigError{Code: ConfigErrorInvalidRedisDB, Value: raw, Cause: err}
		}
		cfg.Redis.DB = n
	}
	if raw := strings.TrimSpace(os.Getenv("STUDYPLAN_AI_TIMEOUT_SECONDS")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return &ConfigError{Code: ConfigErrorInvalidTimeout, Value: raw, Cause: err}
		}
		cfg.AI.TimeoutSeconds = n
	}
	return nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.User) == "" {
		return &ConfigError{Code: ConfigErrorMissingUser}
	}
	switch strings.ToLower(c.Backend) {
	case "sqlite":
	case "redis":
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return &ConfigError{Code: ConfigErrorMissingRedis}
		}
	default:
		return &ConfigError{Code: ConfigErrorInvalidBackend, Value: c.Backend}
	}
	if c.Redis.DB < 0 {
		return &ConfigError{Code: ConfigErrorInvalidRedisDB, Value: strconv.Itoa(c.Redis.DB)}
	}
	switch strings.ToLower(c.Log.Mode) {
	case "dev", "development", "prod", "production":
	default:
		return &ConfigError{Code: ConfigErrorInvalidLogMode, Value: c.Log.Mode}
	}
	if c.AI.TimeoutSeconds <= 0 {
		return &ConfigError{Code: ConfigErrorInvalidTimeout, Value: strconv.Itoa(c.AI.TimeoutSeconds)}
	}
	return nil
}
