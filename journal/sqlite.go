package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var ErrUnknownKey = errors.New("unknown idempotency key")

type SQLite struct {
	db *sql.DB
}

var _ Claimer = (*SQLite)(nil)

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// Claim inserts key unless it exists. The primary key makes the check and
// the insert a single atomic statement, so two processes sharing the file
// cannot both win.
func (j *SQLite) Claim(ctx context.Context, key, tickID, symbol string, units float64) (bool, error) {
	res, err := j.db.ExecContext(ctx, `
		INSERT INTO submissions
		(idem_key, tick_id, symbol, units, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(idem_key) DO NOTHING`,
		key, tickID, symbol, units, string(StatusPending), time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", key, err)
	}
	return n == 1, nil
}

func (j *SQLite) Complete(ctx context.Context, key, tradeID string, status Status) error {
	res, err := j.db.ExecContext(ctx,
		`UPDATE submissions SET trade_id = ?, status = ? WHERE idem_key = ?`,
		tradeID, string(status), key,
	)
	if err != nil {
		return fmt.Errorf("complete %s: %w", key, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("complete %s: %w", key, ErrUnknownKey)
	}
	return nil
}

func (j *SQLite) Get(ctx context.Context, key string) (Submission, error) {
	var (
		s      Submission
		status string
	)
	err := j.db.QueryRowContext(ctx, `
		SELECT idem_key, tick_id, symbol, units, trade_id, status, created_at
		FROM submissions WHERE idem_key = ?`, key,
	).Scan(&s.Key, &s.TickID, &s.Symbol, &s.Units, &s.TradeID, &status, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Submission{}, fmt.Errorf("get %s: %w", key, ErrUnknownKey)
	}
	if err != nil {
		return Submission{}, fmt.Errorf("get %s: %w", key, err)
	}
	s.Status = Status(status)
	return s, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
