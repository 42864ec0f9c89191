package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"quiz-competition-service/internal/domain"
)

// IDLength matches the short identifiers handed out in share links.
const IDLength = 10

// maxIDAttempts bounds regeneration when a fresh id collides with a stored one.
const maxIDAttempts = 3

// CompetitionStore abstracts the document collection holding competitions
// (in-memory, Postgres, SQLite, optionally behind a cache).
type CompetitionStore interface {
	// Insert returns domain.ErrDuplicateID if the id is taken.
	Insert(ctx context.Context, c domain.Competition) error
	// FindByID returns domain.ErrNotFound when nothing matches.
	FindByID(ctx context.Context, id string) (domain.Competition, error)
	// List returns every competition, newest first.
	List(ctx context.Context) ([]domain.CompetitionSummary, error)
}

// EventPublisher announces newly created competitions.
type EventPublisher interface {
	PublishCompetitionCreated(ctx context.Context, summary domain.CompetitionSummary) error
}

// NopPublisher discards events; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishCompetitionCreated(context.Context, domain.CompetitionSummary) error {
	return nil
}

// CompetitionService lists, fetches and creates competitions.
type CompetitionService struct {
	store     CompetitionStore
	publisher EventPublisher
	logger    *slog.Logger
	newID     func() (string, error)
	now       func() time.Time
}

// CompetitionOption customizes a CompetitionService.
type CompetitionOption func(*CompetitionService)

// WithIDGenerator replaces nanoid generation; tests use it to force collisions.
func WithIDGenerator(gen func() (string, error)) CompetitionOption {
	return func(s *CompetitionService) { s.newID = gen }
}

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) CompetitionOption {
	return func(s *CompetitionService) { s.now = now }
}

func NewCompetitionService(store CompetitionStore, publisher EventPublisher, logger *slog.Logger, opts ...CompetitionOption) *CompetitionService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &CompetitionService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		newID:     func() (string, error) { return gonanoid.New(IDLength) },
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns summaries newest first. A non-empty filter keeps entries whose
// title or description contains it, case-insensitively.
func (s *CompetitionService) List(ctx context.Context, filter string) ([]domain.CompetitionSummary, error) {
	summaries, err := s.store.List(ctx)
	if err != nil {
		return nil, s.unavailable("list competitions", err)
	}
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		return summaries, nil
	}
	matched := make([]domain.CompetitionSummary, 0, len(summaries))
	for _, summary := range summaries {
		if strings.Contains(strings.ToLower(summary.Title), filter) ||
			strings.Contains(strings.ToLower(summary.Description), filter) {
			matched = append(matched, summary)
		}
	}
	return matched, nil
}

// Get returns the full competition, answer keys included.
func (s *CompetitionService) Get(ctx context.Context, id string) (domain.Competition, error) {
	competition, err := s.store.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Competition{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Competition{}, s.unavailable("get competition", err)
	}
	return competition, nil
}

// Create validates input, assigns an id and creation time, and persists it.
func (s *CompetitionService) Create(ctx context.Context, input domain.NewCompetition) (domain.Competition, error) {
	if err := input.Validate(); err != nil {
		return domain.Competition{}, err
	}
	input = input.Normalize()

	competition := domain.Competition{
		Title:       input.Title,
		Description: input.Description,
		Questions:   input.Questions,
		CreatedAt:   s.now().UTC().Truncate(time.Millisecond),
	}

	var lastErr error
	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		id, err := s.newID()
		if err != nil {
			return domain.Competition{}, s.unavailable("generate id", err)
		}
		competition.ID = id

		lastErr = s.store.Insert(ctx, competition)
		if lastErr == nil {
			break
		}
		if !errors.Is(lastErr, domain.ErrDuplicateID) {
			return domain.Competition{}, s.unavailable("insert competition", lastErr)
		}
		s.logger.Warn("competition id collision", "id", id, "attempt", attempt)
	}
	if lastErr != nil {
		return domain.Competition{}, s.unavailable("insert competition", lastErr)
	}

	s.logger.Info("competition created", "id", competition.ID, "questions", len(competition.Questions))
	if err := s.publisher.PublishCompetitionCreated(ctx, competition.Summary()); err != nil {
		s.logger.Error("publish competition created", "id", competition.ID, "error", err)
	}
	return competition, nil
}

func (s *CompetitionService) unavailable(op string, err error) error {
	s.logger.Error(op, "error", err)
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStoreUnavailable, err)
}
