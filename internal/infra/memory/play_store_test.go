package memory

import (
	"testing"
	"time"

	"quiz-competition-service/internal/app"
)

func TestPlayStoreLifecycle(t *testing.T) {
	session, err := app.NewSession(sampleCompetition("c1", time.Unix(100, 0)))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	store := NewPlayStore()
	store.Put(app.NewPlay("p1", session, time.Second))

	if _, ok := store.Get("p1"); !ok {
		t.Fatalf("expected play present")
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 play, got %d", store.Len())
	}

	store.Delete("p1")
	if _, ok := store.Get("p1"); ok {
		t.Fatalf("expected play removed")
	}
}

func TestPlayStoreListSnapshots(t *testing.T) {
	session, err := app.NewSession(sampleCompetition("c1", time.Unix(100, 0)))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	store := NewPlayStore()
	store.Put(app.NewPlay("p1", session, time.Second))
	store.Put(app.NewPlay("p2", session, time.Second))

	plays := store.List()
	store.Delete("p1")
	if len(plays) != 2 || store.Len() != 1 {
		t.Fatalf("expected snapshot of 2 and 1 live play, got %d and %d", len(plays), store.Len())
	}
}
