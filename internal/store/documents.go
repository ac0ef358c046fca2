package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sadopc/studyplan/internal/study"
)

// encodePlan splits p into its stored documents.
func encodePlan(p *study.Plan) (map[Kind][]byte, error) {
	subjects := p.Subjects
	if subjects == nil {
		subjects = []study.Subject{}
	}
	schedule := p.Schedule
	if schedule == nil {
		schedule = []study.ScheduleItem{}
	}
	tests := p.TestRecords
	if tests == nil {
		tests = []study.TestRecord{}
	}

	docs := make(map[Kind][]byte, len(Kinds))
	for kind, v := range map[Kind]any{
		KindSubjects:    subjects,
		KindSchedule:    schedule,
		KindTestRecords: tests,
	} {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", kind, err)
		}
		docs[kind] = b
	}
	return docs, nil
}

// decodePlan rebuilds a plan from whichever documents exist. Missing
// documents decode as empty and predefined subjects are always present.
func decodePlan(docs map[Kind][]byte) (*study.Plan, error) {
	p := &study.Plan{}
	targets := map[Kind]any{
		KindSubjects:    &p.Subjects,
		KindSchedule:    &p.Schedule,
		KindTestRecords: &p.TestRecords,
	}
	for kind, dst := range targets {
		b, ok := docs[kind]
		if !ok || len(b) == 0 {
			continue
		}
		if err := json.Unmarshal(b, dst); err != nil {
			return nil, fmt.Errorf("decode %s: %w", kind, err)
		}
	}
	p.EnsureSubjects()
	return p, nil
}

func checkUser(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", ErrEmptyUser
	}
	return userID, nil
}

// LoadPlan returns the stored plan for userID, or a fresh seeded plan with
// revision 0 when the user has nothing stored.
func (s *Store) LoadPlan(ctx context.Context, userID string) (*study.Plan, Revision, error) {
	userID, err := checkUser(userID)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, body, revision FROM documents WHERE user_id = ?`, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("load documents: %w", err)
	}
	defer rows.Close()

	docs := make(map[Kind][]byte)
	var rev Revision
	for rows.Next() {
		var (
			kind string
			body string
			r    int64
		)
		if err := rows.Scan(&kind, &body, &r); err != nil {
			return nil, 0, fmt.Errorf("scan document: %w", err)
		}
		docs[Kind(kind)] = []byte(body)
		if Revision(r) > rev {
			rev = Revision(r)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("load documents: %w", err)
	}

	p, err := decodePlan(docs)
	if err != nil {
		return nil, 0, fmt.Errorf("load plan %s: %w", userID, err)
	}
	return p, rev, nil
}

// SavePlan overwrites all documents of userID in one transaction and bumps
// the revision.
func (s *Store) SavePlan(ctx context.Context, userID string, p *study.Plan) error {
	userID, err := checkUser(userID)
	if err != nil {
		return err
	}
	docs, err := encodePlan(p)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	var rev int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(revision), 0) FROM documents WHERE user_id = ?`, userID).Scan(&rev)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("read revision: %w", err)
	}
	rev++

	for _, kind := range Kinds {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO documents (user_id, kind, body, revision, updated_at)
			VALUES (?, ?, ?, ?, strftime('%Y-%m-%dT%H:%M:%SZ','now'))
			ON CONFLICT(user_id, kind) DO UPDATE SET
				body = excluded.body,
				revision = excluded.revision,
				updated_at = excluded.updated_at`,
			userID, string(kind), string(docs[kind]), rev,
		)
		if err != nil {
			return fmt.Errorf("save %s: %w", kind, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Users lists every user with stored documents.
func (s *Store) Users(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM documents ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
