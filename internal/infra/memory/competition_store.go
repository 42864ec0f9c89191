package memory

import (
	"context"
	"sort"
	"sync"

	"quiz-competition-service/internal/domain"
)

// CompetitionStore is an in-memory document collection (default driver, and the fake used in tests).
type CompetitionStore struct {
	mu      sync.RWMutex
	docs    map[string]storedCompetition
	counter uint64
}

type storedCompetition struct {
	competition domain.Competition
	seq         uint64
}

func NewCompetitionStore(seed ...domain.Competition) *CompetitionStore {
	s := &CompetitionStore{docs: make(map[string]storedCompetition)}
	for _, c := range seed {
		_ = s.Insert(context.Background(), c)
	}
	return s
}

func (s *CompetitionStore) Insert(_ context.Context, c domain.Competition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[c.ID]; ok {
		return domain.ErrDuplicateID
	}
	s.counter++
	s.docs[c.ID] = storedCompetition{competition: cloneCompetition(c), seq: s.counter}
	return nil
}

func (s *CompetitionStore) FindByID(_ context.Context, id string) (domain.Competition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return domain.Competition{}, domain.ErrNotFound
	}
	return cloneCompetition(doc.competition), nil
}

func (s *CompetitionStore) List(_ context.Context) ([]domain.CompetitionSummary, error) {
	s.mu.RLock()
	docs := make([]storedCompetition, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	s.mu.RUnlock()

	// Newest first; equal timestamps fall back to insertion order, latest first.
	sort.Slice(docs, func(i, j int) bool {
		ci, cj := docs[i].competition.CreatedAt, docs[j].competition.CreatedAt
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return docs[i].seq > docs[j].seq
	})

	summaries := make([]domain.CompetitionSummary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, doc.competition.Summary())
	}
	return summaries, nil
}

// cloneCompetition keeps callers from aliasing stored slices.
func cloneCompetition(c domain.Competition) domain.Competition {
	out := c
	out.Questions = make([]domain.Question, len(c.Questions))
	for i, q := range c.Questions {
		q.Options = append([]string(nil), q.Options...)
		out.Questions[i] = q
	}
	return out
}
