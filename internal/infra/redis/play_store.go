package redis

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-competition-service/internal/app"
)

// PlayStore is a Redis-aware implementation of app.PlayRepository.
// Notes:
//   - Plays own timers and subscriber channels, so the live objects stay in a
//     local map.
//   - Redis holds the lease (key play:{id} -> competition id, EX ttl). Get
//     renews it; once it has expired the local play is closed and dropped.
//   - When Redis is unreachable the local map stays authoritative.
type PlayStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	mu     sync.RWMutex
	plays  map[string]*app.Play
}

func NewPlayStore(client *redis.Client, ttl time.Duration, logger *slog.Logger) *PlayStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlayStore{
		client: client,
		ttl:    ttl,
		logger: logger,
		plays:  make(map[string]*app.Play),
	}
}

func (s *PlayStore) Put(play *app.Play) {
	s.mu.Lock()
	s.plays[play.ID()] = play
	s.mu.Unlock()
	if err := s.client.Set(context.Background(), s.key(play.ID()), play.Session().CompetitionID(), s.ttl).Err(); err != nil {
		s.logger.Warn("write play lease", "play", play.ID(), "error", err)
	}
}

func (s *PlayStore) Get(playID string) (*app.Play, bool) {
	s.mu.RLock()
	play, ok := s.plays[playID]
	s.mu.RUnlock()
	if !ok || s.ttl <= 0 {
		return play, ok
	}

	renewed, err := s.client.Expire(context.Background(), s.key(playID), s.ttl).Result()
	if err != nil {
		s.logger.Warn("renew play lease", "play", playID, "error", err)
		return play, true
	}
	if !renewed {
		s.logger.Debug("play lease expired", "play", playID)
		s.drop(playID)
		return nil, false
	}
	return play, true
}

func (s *PlayStore) Delete(playID string) {
	s.mu.Lock()
	_, ok := s.plays[playID]
	delete(s.plays, playID)
	s.mu.Unlock()
	if !ok {
		return
	}
	if err := s.client.Del(context.Background(), s.key(playID)).Err(); err != nil {
		s.logger.Warn("delete play lease", "play", playID, "error", err)
	}
}

func (s *PlayStore) List() []*app.Play {
	s.mu.RLock()
	defer s.mu.RUnlock()
	plays := make([]*app.Play, 0, len(s.plays))
	for _, play := range s.plays {
		plays = append(plays, play)
	}
	return plays
}

func (s *PlayStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.plays)
}

func (s *PlayStore) drop(playID string) {
	s.mu.Lock()
	play, ok := s.plays[playID]
	delete(s.plays, playID)
	s.mu.Unlock()
	if ok {
		play.Close()
	}
}

func (s *PlayStore) key(playID string) string {
	return "play:" + playID
}
