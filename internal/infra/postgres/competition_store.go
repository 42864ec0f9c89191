package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-competition-service/internal/domain"
)

// CompetitionStore keeps each competition as a JSONB document keyed by its id.
type CompetitionStore struct {
	pool *pgxpool.Pool
}

func NewCompetitionStore(pool *pgxpool.Pool) *CompetitionStore {
	return &CompetitionStore{pool: pool}
}

func (s *CompetitionStore) Insert(ctx context.Context, c domain.Competition) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal competition: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO competitions (id, data, created_at) VALUES ($1, $2::jsonb, $3) ON CONFLICT (id) DO NOTHING`,
		c.ID, string(data), c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert competition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicateID
	}
	return nil
}

func (s *CompetitionStore) FindByID(ctx context.Context, id string) (domain.Competition, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM competitions WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Competition{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Competition{}, fmt.Errorf("load competition: %w", err)
	}
	var competition domain.Competition
	if err := json.Unmarshal(raw, &competition); err != nil {
		return domain.Competition{}, fmt.Errorf("unmarshal competition: %w", err)
	}
	return competition, nil
}

// List projects summaries inside the database so question bodies never leave it.
func (s *CompetitionStore) List(ctx context.Context) ([]domain.CompetitionSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id,
		       data->>'title',
		       data->>'description',
		       jsonb_array_length(data->'questions'),
		       created_at
		  FROM competitions
		 ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list competitions: %w", err)
	}
	defer rows.Close()

	summaries := make([]domain.CompetitionSummary, 0)
	for rows.Next() {
		var summary domain.CompetitionSummary
		if err := rows.Scan(&summary.ID, &summary.Title, &summary.Description, &summary.QuestionCount, &summary.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan competition: %w", err)
		}
		summary.CreatedAt = summary.CreatedAt.UTC()
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list competitions: %w", err)
	}
	return summaries, nil
}
