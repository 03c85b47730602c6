// Package history keeps a local log of the ads posted and deleted through
// gummie. The session never reads it back.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gummiebot/internal/chrono"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const Schema = `
create table if not exists attempt (
	id text primary key,
	action text not null,
	subject text not null,
	success integer not null,
	error text not null default '',
	created_at integer not null
);

create index if not exists attempt_created_at on attempt(created_at);
`

type Action string

const (
	ACTION_POST   Action = "post"
	ACTION_DELETE Action = "delete"
)

// Attempt is one post or delete, Subject is the ad title for posts and the ad
// id for deletions.
type Attempt struct {
	Id        uuid.UUID
	Action    Action
	Subject   string
	Success   bool
	Error     string
	CreatedAt time.Time
}

type Store struct {
	db    *sql.DB
	clock chrono.TimeAPI
}

// Open opens (and creates if needed) the sqlite database at path.
func Open(path string) (Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return Store{}, err
	}
	// :memory: databases are per connection
	db.SetMaxOpenConns(1)

	_, err = db.Exec(Schema)
	if err != nil {
		db.Close()
		return Store{}, fmt.Errorf("create history schema: %w", err)
	}
	return Store{db: db, clock: chrono.NewStandardTime()}, nil
}

func (s Store) Close() error {
	return s.db.Close()
}

// Record stores the outcome of an attempt, err may be nil.
func (s Store) Record(ctx context.Context, action Action, subject string, success bool, err error) (Attempt, error) {
	attempt := Attempt{
		Id:        uuid.New(),
		Action:    action,
		Subject:   subject,
		Success:   success,
		CreatedAt: s.clock.Now(),
	}
	if err != nil {
		attempt.Error = err.Error()
	}

	_, dberr := s.db.ExecContext(
		ctx,
		"insert into attempt(id, action, subject, success, error, created_at) values (?, ?, ?, ?, ?, ?)",
		attempt.Id.String(),
		string(attempt.Action),
		attempt.Subject,
		attempt.Success,
		attempt.Error,
		attempt.CreatedAt.UnixMilli(),
	)
	if dberr != nil {
		return Attempt{}, fmt.Errorf("record attempt: %w", dberr)
	}
	return attempt, nil
}

// Recent returns the latest attempts, newest first.
func (s Store) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	rows, err := s.db.QueryContext(
		ctx,
		"select id, action, subject, success, error, created_at from attempt order by created_at desc, rowid desc limit ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var (
			id        string
			action    string
			attempt   Attempt
			createdAt int64
		)
		err = rows.Scan(&id, &action, &attempt.Subject, &attempt.Success, &attempt.Error, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempt.Id, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse attempt id: %w", err)
		}
		attempt.Action = Action(action)
		attempt.CreatedAt = time.UnixMilli(createdAt)
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}
