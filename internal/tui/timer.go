package tui

import (
	"errors"
	"time"

	"github.com/sadopc/studyplan/internal/study"
)

var errTooShort = errors.New("session shorter than a minute, not logged")

type timerState int

const (
	timerStopped timerState = iota
	timerRunning
	timerPaused
)

// timerModel is a stopwatch for one chapter. It holds no plan state; stop
// hands back the session to record.
type timerModel struct {
	state     timerState
	startTime time.Time
	elapsed   time.Duration
	pausedAt  time.Time
	pauseGap  time.Duration

	subjectID   string
	subjectName string
	chapterID   string
	chapterName string

	lastActivity time.Time
	idleTimeout  time.Duration
	isIdle       bool

	now func() time.Time
}

func newTimerModel(idleTimeout time.Duration) timerModel {
	return timerModel{
		state:        timerStopped,
		lastActivity: time.Now(),
		idleTimeout:  idleTimeout,
		now:          time.Now,
	}
}

func (t *timerModel) start(subject study.Subject, chapter study.Chapter) {
	now := t.now()
	t.state = timerRunning
	t.startTime = now
	t.elapsed = 0
	t.pauseGap = 0
	t.subjectID = subject.ID
	t.subjectName = subject.Name
	t.chapterID = chapter.ID
	t.chapterName = chapter.Name
	t.lastActivity = now
	t.isIdle = false
}

// stop ends the run and returns the session input for the studied minutes,
// rounded to the nearest minute.
func (t *timerModel) stop() (study.SessionInput, error) {
	if t.state == timerStopped {
		return study.SessionInput{}, nil
	}
	elapsed := t.currentElapsed()
	in := study.SessionInput{
		SubjectID: t.subjectID,
		ChapterID: t.chapterID,
		Start:     t.startTime,
		Minutes:   int(elapsed.Round(time.Minute) / time.Minute),
	}
	t.state = timerStopped
	t.elapsed = 0
	t.isIdle = false
	if in.Minutes < 1 {
		return study.SessionInput{}, errTooShort
	}
	return in, nil
}

func (t *timerModel) pause() {
	if t.state != timerRunning {
		return
	}
	t.state = timerPaused
	t.pausedAt = t.now()
}

func (t *timerModel) resume() {
	if t.state != timerPaused {
		return
	}
	now := t.now()
	t.pauseGap += now.Sub(t.pausedAt)
	t.state = timerRunning
	t.isIdle = false
	t.lastActivity = now
}

func (t *timerModel) toggle() {
	switch t.state {
	case timerRunning:
		t.pause()
	case timerPaused:
		t.resume()
	}
}

func (t *timerModel) tick() {
	if t.state != timerRunning {
		return
	}
	now := t.now()
	t.elapsed = now.Sub(t.startTime) - t.pauseGap

	if t.idleTimeout > 0 && now.Sub(t.lastActivity) > t.idleTimeout && !t.isIdle {
		t.isIdle = true
		t.pause()
	}
}

func (t *timerModel) recordActivity() {
	t.lastActivity = t.now()
	if t.isIdle && t.state == timerPaused {
		t.resume()
		t.isIdle = false
	}
}

func (t timerModel) running() bool {
	return t.state != timerStopped
}

func (t timerModel) paused() bool {
	return t.state == timerPaused
}

func (t timerModel) currentElapsed() time.Duration {
	switch t.state {
	case timerStopped:
		return 0
	case timerPaused:
		return t.pausedAt.Sub(t.startTime) - t.pauseGap
	}
	return t.now().Sub(t.startTime) - t.pauseGap
}
