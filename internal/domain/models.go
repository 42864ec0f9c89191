package domain

import "time"

// MaxOptions mirrors the option cap the create form enforces.
const (
	MinOptions = 2
	MaxOptions = 6
)

// Question models an MCQ prompt whose correct answer is addressed by index.
type Question struct {
	QuestionText string   `json:"questionText"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
}

// Competition is a named quiz. Records are append-only: created once, never mutated.
type Competition struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Summary projects a competition for listings; answer keys never leave the store here.
func (c Competition) Summary() CompetitionSummary {
	return CompetitionSummary{
		ID:            c.ID,
		Title:         c.Title,
		Description:   c.Description,
		QuestionCount: len(c.Questions),
		CreatedAt:     c.CreatedAt,
	}
}

// CompetitionSummary is the list view of a competition.
type CompetitionSummary struct {
	ID            string    `json:"_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	QuestionCount int       `json:"questionCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewCompetition is the client-supplied payload for creating a competition.
type NewCompetition struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
}

// QuestionView is a question with its answer key stripped.
type QuestionView struct {
	QuestionText string   `json:"questionText"`
	Options      []string `json:"options"`
}

// PlayState is the client-facing snapshot of a play-through.
// SelectedOption and IsCorrect are nil when nothing is selected / not yet judged.
type PlayState struct {
	PlayID          string        `json:"playId"`
	CompetitionID   string        `json:"competitionId"`
	CurrentQuestion int           `json:"currentQuestion"`
	TotalQuestions  int           `json:"totalQuestions"`
	SelectedOption  *int          `json:"selectedOption"`
	IsCorrect       *bool         `json:"isCorrect"`
	Score           int           `json:"score"`
	WrongAttempts   int           `json:"wrongAttempts"`
	Completed       bool          `json:"completed"`
	Question        *QuestionView `json:"question,omitempty"`
}
