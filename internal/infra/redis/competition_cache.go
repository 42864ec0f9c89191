package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-competition-service/internal/app"
	"quiz-competition-service/internal/domain"
)

// loadTimeout bounds a shared store load once it is detached from its callers.
const loadTimeout = 10 * time.Second

// CachedStore caches competition documents in Redis and falls back to the wrapped
// store on a miss. Documents are stored as: SET competition:{id} <json> EX ttl.
// Insert and List pass straight through; competitions are immutable so nothing is invalidated.
type CachedStore struct {
	app.CompetitionStore

	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewCachedStore(client *redis.Client, store app.CompetitionStore, ttl time.Duration, logger *slog.Logger) *CachedStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedStore{
		CompetitionStore: store,
		client:           client,
		ttl:              ttl,
		logger:           logger,
		rnd:              rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CachedStore) FindByID(ctx context.Context, id string) (domain.Competition, error) {
	key := r.key(id)
	if c, ok := r.lookup(ctx, key); ok {
		return c, nil
	}

	ch := r.sf.DoChan(id, func() (interface{}, error) {
		// The load is shared; one waiter giving up must not fail the others.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		// Re-check cache in case another goroutine filled it.
		if c, ok := r.lookup(loadCtx, key); ok {
			return c, nil
		}

		competition, err := r.CompetitionStore.FindByID(loadCtx, id)
		if err != nil {
			return domain.Competition{}, err
		}

		data, err := json.Marshal(competition)
		if err != nil {
			return competition, nil
		}
		// A failed fill only costs a future miss.
		if err := r.client.Set(loadCtx, key, data, r.ttlWithJitter()).Err(); err != nil {
			r.logger.Warn("cache competition", "id", id, "error", err)
		}
		return competition, nil
	})
	select {
	case <-ctx.Done():
		return domain.Competition{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.Competition{}, res.Err
		}
		return res.Val.(domain.Competition), nil
	}
}

// lookup treats any Redis failure as a miss so the backing store stays authoritative.
func (r *CachedStore) lookup(ctx context.Context, key string) (domain.Competition, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("read cached competition", "key", key, "error", err)
		}
		return domain.Competition{}, false
	}
	var competition domain.Competition
	if err := json.Unmarshal(data, &competition); err != nil {
		r.logger.Warn("decode cached competition", "key", key, "error", err)
		return domain.Competition{}, false
	}
	return competition, true
}

func (r *CachedStore) key(id string) string {
	return "competition:" + id
}

func (r *CachedStore) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
