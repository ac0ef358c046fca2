package store

import (
	"context"
	"errors"

	"github.com/sadopc/studyplan/internal/study"
)

var ErrEmptyUser = errors.New("user id must not be empty")

// Revision counts saves of a user's plan. Zero means nothing was stored yet.
type Revision int64

// Kind names one of the documents a plan is split into.
type Kind string

const (
	KindSubjects    Kind = "subjects"
	KindSchedule    Kind = "schedule"
	KindTestRecords Kind = "test_records"
)

var Kinds = []Kind{KindSubjects, KindSchedule, KindTestRecords}

// Backend persists whole plans per user. Saves overwrite every document, so
// concurrent writers follow last-write-wins.
type Backend interface {
	LoadPlan(ctx context.Context, userID string) (*study.Plan, Revision, error)
	SavePlan(ctx context.Context, userID string, p *study.Plan) error
	Settings
	Close() error
}

// Settings holds device-wide preferences as string pairs.
type Settings interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
	GetAllSettings() ([]Setting, error)
}

type Setting struct {
	Key   string
	Value string
}

// Preferences is the typed view of the settings table.
type Preferences struct {
	DailyGoalMinutes    int
	WeekStart           string // monday or sunday
	IdleTimeoutSeconds  int
	TimerDefaultMinutes int
}
