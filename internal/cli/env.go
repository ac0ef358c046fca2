package cli

import (
	"context"
	"strings"
	"time"

	"github.com/sadopc/studyplan/internal/assist"
	"github.com/sadopc/studyplan/internal/calendar"
	"github.com/sadopc/studyplan/internal/config"
	"github.com/sadopc/studyplan/internal/logger"
	"github.com/sadopc/studyplan/internal/session"
	"github.com/sadopc/studyplan/internal/store"
)

// env is everything a command needs to act on one user's plan.
type env struct {
	cfg     config.Config
	log     *logger.Logger
	backend store.Backend
	sess    *session.Session
}

func openEnv(ctx context.Context, opts *rootOptions) (*env, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if u := strings.TrimSpace(opts.user); u != "" {
		cfg.User = u
	}

	logPath := cfg.Log.Path
	if logPath == "" {
		if p, err := logger.DefaultPath(); err == nil {
			logPath = p
		}
	}
	log, err := logger.New(cfg.Log.Mode, logPath)
	if err != nil {
		return nil, err
	}
	log = log.With("user", cfg.User)
	log.Debug("config loaded",
		"backend", cfg.Backend,
		"ai_enabled", cfg.AI.Enabled(),
		"calendar_enabled", cfg.Calendar.Enabled(),
		"api_key", cfg.AI.APIKey,
	)

	backend, err := store.Open(store.OpenOptions{
		Backend: cfg.Backend,
		DBPath:  cfg.DBPath,
		Redis: store.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
	})
	if err != nil {
		log.Error("open backend", "backend", cfg.Backend, "error", err)
		log.Sync()
		return nil, err
	}

	sopts := session.Options{Logger: log}
	if cfg.Calendar.Enabled() {
		cal, err := calendar.New(ctx, cfg.Calendar.Token, cfg.Calendar.CalendarID)
		if err != nil {
			// Study tracking works without the calendar.
			log.Warn("calendar sync disabled", "error", err)
		} else {
			sopts.Calendar = cal
		}
	}
	if cfg.AI.Enabled() {
		ai, err := assist.New(assist.Config{
			BaseURL: cfg.AI.BaseURL,
			APIKey:  cfg.AI.APIKey,
			Model:   cfg.AI.Model,
			Timeout: time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
		})
		if err != nil {
			log.Warn("assistant disabled", "error", err)
		} else {
			sopts.Assist = ai
		}
	}

	sess, err := session.Open(ctx, backend, cfg.User, sopts)
	if err != nil {
		_ = backend.Close()
		log.Sync()
		return nil, err
	}
	return &env{cfg: cfg, log: log, backend: backend, sess: sess}, nil
}

func (e *env) Close() {
	if err := e.backend.Close(); err != nil {
		e.log.Warn("close backend", "error", err)
	}
	e.log.Sync()
}
