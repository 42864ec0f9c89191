package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quiz-competition-service/internal/app"
	"quiz-competition-service/internal/domain"
	"quiz-competition-service/internal/infra/memory"
)

func TestCreateGetAndList(t *testing.T) {
	server := httptest.NewServer(newTestRouter(memory.NewCompetitionStore()))
	defer server.Close()

	body := `{"title":"T","description":"D","questions":[
		{"questionText":"Q1","options":["A","B"],"correctIndex":1},
		{"questionText":"Q2","options":["A","B"],"correctIndex":0},
		{"questionText":"Q3","options":["A","B"],"correctIndex":0},
		{"questionText":"Q4","options":["A","B"],"correctIndex":1},
		{"questionText":"Q5","options":["A","B","C"],"correctIndex":2}]}`
	resp := doJSON(t, http.MethodPost, server.URL+"/competitions", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created domain.Competition
	decode(t, resp, &created)
	if created.ID == "" || created.CreatedAt.IsZero() || len(created.Questions) != 5 {
		t.Fatalf("unexpected created competition %+v", created)
	}

	resp = doJSON(t, http.MethodGet, server.URL+"/competitions/"+created.ID, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var raw map[string]any
	decode(t, resp, &raw)
	if raw["_id"] != created.ID || raw["title"] != "T" {
		t.Fatalf("unexpected document %v", raw)
	}
	questions := raw["questions"].([]any)
	if questions[0].(map[string]any)["correctIndex"] != float64(1) {
		t.Fatalf("expected answer keys in full fetch, got %v", questions[0])
	}

	resp = doJSON(t, http.MethodGet, server.URL+"/competitions", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var list []map[string]any
	decode(t, resp, &list)
	if len(list) != 1 || list[0]["_id"] != created.ID || list[0]["questionCount"] != float64(5) {
		t.Fatalf("unexpected list %v", list)
	}
	if _, ok := list[0]["questions"]; ok {
		t.Fatalf("list must not include questions")
	}
}

func TestListFilterAndEmpty(t *testing.T) {
	server := httptest.NewServer(newTestRouter(memory.NewCompetitionStore(sampleCompetition())))
	defer server.Close()

	var list []map[string]any
	resp := doJSON(t, http.MethodGet, server.URL+"/competitions?q=WARM", "")
	decode(t, resp, &list)
	if len(list) != 1 {
		t.Fatalf("expected filter match, got %v", list)
	}

	resp = doJSON(t, http.MethodGet, server.URL+"/competitions?q=nothing-like-this", "")
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(bytes.TrimSpace(data)) != "[]" {
		t.Fatalf("expected empty JSON array, got %s", data)
	}
}

func TestGetMissingIs404(t *testing.T) {
	server := httptest.NewServer(newTestRouter(memory.NewCompetitionStore()))
	defer server.Close()

	resp := doJSON(t, http.MethodGet, server.URL+"/competitions/nonexistent-id", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	var body errorBody
	decode(t, resp, &body)
	if body.Error != "competition not found" {
		t.Fatalf("unexpected error body %+v", body)
	}
}

func TestCreateValidationIs400(t *testing.T) {
	server := httptest.NewServer(newTestRouter(memory.NewCompetitionStore()))
	defer server.Close()

	cases := map[string]string{
		`{"title":"","description":"D","questions":[{"questionText":"Q","options":["A","B"],"correctIndex":0}]}`: "title",
		`{"title":"T","description":"D","questions":[]}`:                                                        "questions",
		`{"title":"T","description":"D"}`:                                                                       "questions",
		`{"title":"T","questions":[{"questionText":"Q","options":["A","B"],"correctIndex":0}]}`:                 "description",
	}
	for payload, field := range cases {
		resp := doJSON(t, http.MethodPost, server.URL+"/competitions", payload)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", payload, resp.StatusCode)
		}
		var body errorBody
		decode(t, resp, &body)
		if body.Field != field {
			t.Fatalf("expected field %q, got %+v", field, body)
		}
	}

	resp := doJSON(t, http.MethodPost, server.URL+"/competitions", `{not json`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestStoreFailureIs500(t *testing.T) {
	server := httptest.NewServer(newTestRouter(brokenStore{}))
	defer server.Close()

	for _, path := range []string{"/competitions", "/competitions/abc"} {
		resp := doJSON(t, http.MethodGet, server.URL+path, "")
		if resp.StatusCode != http.StatusInternalServerError {
			t.Fatalf("expected 500 for %s, got %d", path, resp.StatusCode)
		}
		var body errorBody
		decode(t, resp, &body)
		if body.Error == "" || bytes.Contains([]byte(body.Error), []byte("dial tcp")) {
			t.Fatalf("expected generic error message, got %q", body.Error)
		}
	}

	resp := doJSON(t, http.MethodPost, server.URL+"/competitions",
		`{"title":"T","description":"D","questions":[{"questionText":"Q","options":["A","B"],"correctIndex":0}]}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 on insert failure, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestHealthz(t *testing.T) {
	server := httptest.NewServer(newTestRouter(memory.NewCompetitionStore()))
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(data) != "ok" {
		t.Fatalf("unexpected health response %d %q", resp.StatusCode, data)
	}
}

type brokenStore struct{}

func (brokenStore) Insert(context.Context, domain.Competition) error {
	return errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
}
func (brokenStore) FindByID(context.Context, string) (domain.Competition, error) {
	return domain.Competition{}, errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
}
func (brokenStore) List(context.Context) ([]domain.CompetitionSummary, error) {
	return nil, errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
}

func newTestRouter(store app.CompetitionStore) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	competitions := app.NewCompetitionService(store, nil, logger)
	plays := app.NewPlayService(competitions, memory.NewPlayStore(), 20*time.Millisecond, logger)
	return NewRouter(competitions, plays, logger, RouterOptions{})
}

func doJSON(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func sampleCompetition() domain.Competition {
	return domain.Competition{
		ID:          "quiz-1",
		Title:       "Warm-up",
		Description: "Two quick sums",
		Questions: []domain.Question{
			{QuestionText: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectIndex: 1},
			{QuestionText: "What is 3 + 3?", Options: []string{"6", "7"}, CorrectIndex: 0},
		},
		CreatedAt: time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC),
	}
}

func TestOversizedBodyIs413(t *testing.T) {
	store := memory.NewCompetitionStore(sampleCompetition())
	router := newTestRouter(store)

	huge := `{"title":"` + strings.Repeat("x", maxBodyBytes) + `","description":"D","questions":[]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/competitions", strings.NewReader(huge)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}

	list, err := store.List(context.Background())
	if err != nil || len(list) != 1 {
		t.Fatalf("oversized create must not store anything, got %d (%v)", len(list), err)
	}

	// A play select body is capped the same way.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/competitions/quiz-1/plays", nil))
	var state domain.PlayState
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode play: %v", err)
	}
	pad := `{"option":0,"pad":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/plays/"+state.PlayID+"/select", strings.NewReader(pad)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 on oversized select, got %d", rec.Code)
	}
}
