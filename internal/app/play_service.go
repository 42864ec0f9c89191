package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"quiz-competition-service/internal/domain"
)

// DefaultPlayTTL is how long a play-through may sit idle before it is evicted.
const DefaultPlayTTL = 30 * time.Minute

// PlayRepository abstracts where live play-throughs are tracked (in-memory, Redis, etc).
type PlayRepository interface {
	Put(play *Play)
	// Get returns false for unknown plays and for plays the repository considers expired.
	Get(playID string) (*Play, bool)
	Delete(playID string)
	List() []*Play
	Len() int
}

// PlayService drives play-throughs. Plays only read competitions; nothing is written back.
type PlayService struct {
	competitions *CompetitionService
	plays        PlayRepository
	clearDelay   time.Duration
	ttl          time.Duration
	now          func() time.Time
	logger       *slog.Logger
}

// PlayOption customises a PlayService.
type PlayOption func(*PlayService)

// WithPlayTTL sets the idle time after which a play is evicted. Zero disables eviction.
func WithPlayTTL(ttl time.Duration) PlayOption {
	return func(s *PlayService) { s.ttl = ttl }
}

// WithPlayClock replaces time.Now for idle tracking.
func WithPlayClock(now func() time.Time) PlayOption {
	return func(s *PlayService) { s.now = now }
}

func NewPlayService(competitions *CompetitionService, plays PlayRepository, clearDelay time.Duration, logger *slog.Logger, opts ...PlayOption) *PlayService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &PlayService{
		competitions: competitions,
		plays:        plays,
		clearDelay:   clearDelay,
		ttl:          DefaultPlayTTL,
		now:          time.Now,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the competition and registers a fresh play-through at question zero.
func (s *PlayService) Start(ctx context.Context, competitionID string) (*Play, error) {
	competition, err := s.competitions.Get(ctx, competitionID)
	if err != nil {
		return nil, err
	}
	session, err := NewSession(competition)
	if err != nil {
		s.logger.Warn("competition not playable", "id", competitionID, "error", err)
		return nil, err
	}
	play := NewPlay(uuid.NewString(), session, s.clearDelay)
	play.Touch(s.now())
	s.plays.Put(play)
	s.logger.Debug("play started", "play", play.ID(), "competition", competitionID)
	return play, nil
}

// Get returns a live play-through and marks it active. Idle plays are evicted
// here as well as by the sweeper.
func (s *PlayService) Get(playID string) (*Play, error) {
	play, ok := s.plays.Get(playID)
	if !ok {
		return nil, domain.ErrPlayNotFound
	}
	now := s.now()
	if s.expired(play, now) {
		s.End(playID)
		return nil, domain.ErrPlayNotFound
	}
	play.Touch(now)
	return play, nil
}

func (s *PlayService) Select(playID string, option int) (domain.PlayState, error) {
	play, err := s.Get(playID)
	if err != nil {
		return domain.PlayState{}, err
	}
	return play.Select(option)
}

func (s *PlayService) Advance(playID string) (domain.PlayState, error) {
	play, err := s.Get(playID)
	if err != nil {
		return domain.PlayState{}, err
	}
	return play.Advance()
}

func (s *PlayService) Restart(playID string) (domain.PlayState, error) {
	play, err := s.Get(playID)
	if err != nil {
		return domain.PlayState{}, err
	}
	return play.Restart(), nil
}

// End closes the play-through and forgets it. Unknown ids are ignored.
func (s *PlayService) End(playID string) {
	play, ok := s.plays.Get(playID)
	if !ok {
		return
	}
	play.Close()
	s.plays.Delete(playID)
	s.logger.Debug("play ended", "play", playID)
}

// Sweep ends every play idle for longer than the TTL and reports how many it evicted.
func (s *PlayService) Sweep() int {
	now := s.now()
	evicted := 0
	for _, play := range s.plays.List() {
		if s.expired(play, now) {
			s.End(play.ID())
			evicted++
		}
	}
	if evicted > 0 {
		s.logger.Info("evicted idle plays", "evicted", evicted, "live", s.plays.Len())
	}
	return evicted
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *PlayService) RunSweeper(ctx context.Context, interval time.Duration) error {
	if s.ttl <= 0 {
		<-ctx.Done()
		return nil
	}
	if interval <= 0 {
		interval = s.ttl / 4
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *PlayService) expired(play *Play, now time.Time) bool {
	return s.ttl > 0 && now.Sub(play.LastActive()) > s.ttl
}
