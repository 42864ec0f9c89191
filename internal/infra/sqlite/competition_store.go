package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // driver: sqlite

	"quiz-competition-service/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS competitions (
    id         TEXT PRIMARY KEY,
    data       TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS competitions_created_at_idx ON competitions (created_at DESC);
`

// DefaultDSN is used when no DSN is configured.
const DefaultDSN = "file:competitions.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"

// CompetitionStore keeps JSON competition documents in an embedded SQLite database.
type CompetitionStore struct {
	db *sql.DB
}

// Open opens the database and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*CompetitionStore, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &CompetitionStore{db: db}, nil
}

func (s *CompetitionStore) Close() error {
	return s.db.Close()
}

func (s *CompetitionStore) Insert(ctx context.Context, c domain.Competition) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal competition: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO competitions (id, data, created_at) VALUES (?, ?, ?) ON CONFLICT (id) DO NOTHING`,
		c.ID, string(data), c.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert competition: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert competition: %w", err)
	}
	if n == 0 {
		return domain.ErrDuplicateID
	}
	return nil
}

func (s *CompetitionStore) FindByID(ctx context.Context, id string) (domain.Competition, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM competitions WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Competition{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Competition{}, fmt.Errorf("load competition: %w", err)
	}
	var competition domain.Competition
	if err := json.Unmarshal([]byte(raw), &competition); err != nil {
		return domain.Competition{}, fmt.Errorf("unmarshal competition: %w", err)
	}
	return competition, nil
}

func (s *CompetitionStore) List(ctx context.Context) ([]domain.CompetitionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id,
		       json_extract(data, '$.title'),
		       json_extract(data, '$.description'),
		       json_array_length(data, '$.questions'),
		       created_at
		  FROM competitions
		 ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list competitions: %w", err)
	}
	defer rows.Close()

	summaries := make([]domain.CompetitionSummary, 0)
	for rows.Next() {
		var (
			summary   domain.CompetitionSummary
			createdAt int64
		)
		if err := rows.Scan(&summary.ID, &summary.Title, &summary.Description, &summary.QuestionCount, &createdAt); err != nil {
			return nil, fmt.Errorf("scan competition: %w", err)
		}
		summary.CreatedAt = time.UnixMilli(createdAt).UTC()
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list competitions: %w", err)
	}
	return summaries, nil
}
