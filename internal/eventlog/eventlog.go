// Package eventlog appends domain events to an audit table. Submissions and
// quiz-day flag changes are recorded so admins can reconstruct what happened
// to a participant's answers.
package eventlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

type Event struct {
	Seq       int64  `json:"seq"`
	Type      string `json:"type"`
	Key       string `json:"key"`
	DataJSON  string `json:"data"`
	CreatedAt int64  `json:"createdAt"`
}

type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Append(ctx context.Context, typ, key string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		typ, key, string(raw), time.Now().Unix())
	return err
}

// Recent returns the newest events first, for the admin audit view.
func (r *Repo) Recent(ctx context.Context, limit int) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, typ, key, data, created_at FROM event_log ORDER BY seq DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Seq, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
