package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-competition-service/internal/app"
	"quiz-competition-service/internal/domain"
)

// loadTimeout bounds a shared store load once it is detached from its callers.
const loadTimeout = 10 * time.Second

// CachedStore caches FindByID results with TTL to avoid repeated store hits.
// Competitions never change after insert, so entries are only dropped by expiry.
type CachedStore struct {
	app.CompetitionStore

	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand
	rndMu sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedCompetition
}

type cachedCompetition struct {
	competition domain.Competition
	expiresAt   time.Time
}

func NewCachedStore(store app.CompetitionStore, ttl time.Duration) *CachedStore {
	return &CachedStore{
		CompetitionStore: store,
		ttl:              ttl,
		clock:            time.Now,
		rnd:              rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:            make(map[string]cachedCompetition),
	}
}

func (r *CachedStore) FindByID(ctx context.Context, id string) (domain.Competition, error) {
	if c, ok := r.lookup(id, r.clock()); ok {
		return c, nil
	}

	ch := r.sf.DoChan(id, func() (interface{}, error) {
		now := r.clock()
		if c, ok := r.lookup(id, now); ok {
			return c, nil
		}

		// The load is shared; one waiter giving up must not fail the others.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		competition, err := r.CompetitionStore.FindByID(loadCtx, id)
		if err != nil {
			return domain.Competition{}, err
		}

		r.mu.Lock()
		r.cache[id] = cachedCompetition{
			competition: competition,
			expiresAt:   now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return competition, nil
	})
	select {
	case <-ctx.Done():
		return domain.Competition{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.Competition{}, res.Err
		}
		return cloneCompetition(res.Val.(domain.Competition)), nil
	}
}

func (r *CachedStore) lookup(id string, now time.Time) (domain.Competition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.cache[id]; ok && entry.expiresAt.After(now) {
		return cloneCompetition(entry.competition), true
	}
	return domain.Competition{}, false
}

func (r *CachedStore) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
