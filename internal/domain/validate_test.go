package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNormalizeDoesNotAliasInput(t *testing.T) {
	in := NewCompetition{
		Title:       " T ",
		Description: " D ",
		Questions:   []Question{{QuestionText: " Q ", Options: []string{" A ", "B"}, CorrectIndex: 1}},
	}
	out := in.Normalize()
	if out.Title != "T" || out.Questions[0].Options[0] != "A" {
		t.Fatalf("expected trimmed copy, got %+v", out)
	}
	if in.Questions[0].Options[0] != " A " {
		t.Fatalf("normalize mutated its input")
	}
}

func TestValidationErrorMatchesSentinel(t *testing.T) {
	err := NewCompetition{Description: "D"}.Validate()
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if err.Error() != "title: is required" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestCheckPlayable(t *testing.T) {
	c := Competition{ID: "c1", Questions: []Question{{QuestionText: "Q", Options: []string{"A", "B"}, CorrectIndex: 1}}}
	if err := c.CheckPlayable(); err != nil {
		t.Fatalf("expected playable, got %v", err)
	}

	c.Questions = append(c.Questions, Question{QuestionText: "Q2", Options: []string{"A"}, CorrectIndex: -1})
	err := c.CheckPlayable()
	var integrity *IntegrityError
	if !errors.As(err, &integrity) || integrity.QuestionIndex != 1 || !errors.Is(err, ErrDataIntegrity) {
		t.Fatalf("expected integrity error on question 1, got %v", err)
	}

	if err := (Competition{ID: "empty"}).CheckPlayable(); !errors.Is(err, ErrDataIntegrity) {
		t.Fatalf("expected integrity error for empty competition, got %v", err)
	}
}

func TestSummaryCountsQuestions(t *testing.T) {
	created := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	c := Competition{ID: "c1", Title: "T", Description: "D", Questions: make([]Question, 4), CreatedAt: created}
	s := c.Summary()
	if s.ID != "c1" || s.QuestionCount != 4 || !s.CreatedAt.Equal(created) {
		t.Fatalf("unexpected summary %+v", s)
	}
}
