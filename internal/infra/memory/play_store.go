package memory

import (
	"sync"

	"quiz-competition-service/internal/app"
)

// PlayStore is an in-memory implementation of app.PlayRepository.
type PlayStore struct {
	mu    sync.RWMutex
	plays map[string]*app.Play
}

func NewPlayStore() *PlayStore {
	return &PlayStore{
		plays: make(map[string]*app.Play),
	}
}

func (s *PlayStore) Put(play *app.Play) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plays[play.ID()] = play
}

func (s *PlayStore) Get(playID string) (*app.Play, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	play, ok := s.plays[playID]
	return play, ok
}

func (s *PlayStore) Delete(playID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.plays, playID)
}

// List returns a snapshot of the live plays.
func (s *PlayStore) List() []*app.Play {
	s.mu.RLock()
	defer s.mu.RUnlock()
	plays := make([]*app.Play, 0, len(s.plays))
	for _, play := range s.plays {
		plays = append(plays, play)
	}
	return plays
}

// Len reports how many plays are live.
func (s *PlayStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.plays)
}
