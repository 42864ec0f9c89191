package domain

import (
	"fmt"
	"strings"
)

// Normalize trims surrounding whitespace from every text field.
func (n NewCompetition) Normalize() NewCompetition {
	out := NewCompetition{
		Title:       strings.TrimSpace(n.Title),
		Description: strings.TrimSpace(n.Description),
		Questions:   make([]Question, len(n.Questions)),
	}
	for i, q := range n.Questions {
		options := make([]string, len(q.Options))
		for j, opt := range q.Options {
			options[j] = strings.TrimSpace(opt)
		}
		out.Questions[i] = Question{
			QuestionText: strings.TrimSpace(q.QuestionText),
			Options:      options,
			CorrectIndex: q.CorrectIndex,
		}
	}
	return out
}

// Validate returns the first offending field as a *ValidationError.
// Question bodies are checked as strictly as the create form does, so nothing
// unplayable reaches the store.
func (n NewCompetition) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	if strings.TrimSpace(n.Description) == "" {
		return &ValidationError{Field: "description", Message: "is required"}
	}
	if len(n.Questions) == 0 {
		return &ValidationError{Field: "questions", Message: "at least one question is required"}
	}
	for i, q := range n.Questions {
		if err := validateQuestion(i, q); err != nil {
			return err
		}
	}
	return nil
}

func validateQuestion(i int, q Question) error {
	prefix := fmt.Sprintf("questions[%d]", i)
	if strings.TrimSpace(q.QuestionText) == "" {
		return &ValidationError{Field: prefix + ".questionText", Message: "is required"}
	}
	if len(q.Options) < MinOptions || len(q.Options) > MaxOptions {
		return &ValidationError{
			Field:   prefix + ".options",
			Message: fmt.Sprintf("must have between %d and %d options", MinOptions, MaxOptions),
		}
	}
	for j, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return &ValidationError{Field: fmt.Sprintf("%s.options[%d]", prefix, j), Message: "is required"}
		}
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return &ValidationError{Field: prefix + ".correctIndex", Message: "must reference one of the options"}
	}
	return nil
}

// CheckPlayable reports stored data a play-through cannot be built from.
func (c Competition) CheckPlayable() error {
	if len(c.Questions) == 0 {
		return &IntegrityError{CompetitionID: c.ID, QuestionIndex: -1, Reason: "no questions"}
	}
	for i, q := range c.Questions {
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return &IntegrityError{
				CompetitionID: c.ID,
				QuestionIndex: i,
				Reason:        fmt.Sprintf("correctIndex %d outside %d options", q.CorrectIndex, len(q.Options)),
			}
		}
	}
	return nil
}
