package cli

import (
	"time"

	"quiz-competition-service/internal/domain"
)

// sampleCompetitions seeds the in-memory driver so a fresh server has something to play.
func sampleCompetitions() []domain.Competition {
	return []domain.Competition{
		{
			ID:          "demo-quiz1",
			Title:       "Warm-up",
			Description: "Three quick questions to try the quiz flow",
			Questions: []domain.Question{
				{QuestionText: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectIndex: 1},
				{QuestionText: "Which planet is known as the Red Planet?", Options: []string{"Venus", "Jupiter", "Mars", "Mercury"}, CorrectIndex: 2},
				{QuestionText: "How many sides does a hexagon have?", Options: []string{"6", "8"}, CorrectIndex: 0},
			},
			CreatedAt: time.Date(2024, 11, 22, 0, 0, 0, 0, time.UTC),
		},
	}
}
