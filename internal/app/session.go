package app

import "quiz-competition-service/internal/domain"

// Verdict is the tri-state correctness of the current selection.
type Verdict int

const (
	VerdictUnknown Verdict = iota
	VerdictCorrect
	VerdictIncorrect
)

const noSelection = -1

// Session is one play-through of a competition. It is an immutable value:
// every transition returns a new Session and leaves the receiver untouched.
// The competition is borrowed and never written to.
type Session struct {
	competition   domain.Competition
	current       int
	selected      int
	verdict       Verdict
	score         int
	wrongAttempts int
	completed     bool
	seq           uint64
}

// NewSession starts at the first question with a zero score.
func NewSession(c domain.Competition) (Session, error) {
	if err := c.CheckPlayable(); err != nil {
		return Session{}, err
	}
	return Session{competition: c, selected: noSelection}, nil
}

func (s Session) CompetitionID() string { return s.competition.ID }
func (s Session) CurrentQuestion() int  { return s.current }
func (s Session) TotalQuestions() int   { return len(s.competition.Questions) }
func (s Session) Verdict() Verdict      { return s.verdict }
func (s Session) Score() int            { return s.score }
func (s Session) WrongAttempts() int    { return s.wrongAttempts }
func (s Session) Completed() bool       { return s.completed }

// Seq increments on every accepted transition. Timers capture it to detect staleness.
func (s Session) Seq() uint64 { return s.seq }

// Selected returns the pending option index, if any.
func (s Session) Selected() (int, bool) {
	return s.selected, s.selected != noSelection
}

// Retrying reports the Retry state: a wrong answer awaits another attempt.
func (s Session) Retrying() bool {
	return !s.completed && s.verdict == VerdictIncorrect
}

// Select evaluates option o against the current question.
// A correct pick credits the question once and locks selection until Advance.
// A wrong pick moves to Retry; it never costs score.
func (s Session) Select(o int) (Session, error) {
	if s.completed {
		return s, domain.ErrSessionCompleted
	}
	q := s.competition.Questions[s.current]
	if o < 0 || o >= len(q.Options) {
		return s, domain.ErrOptionOutOfRange
	}
	if s.selected != noSelection && s.verdict != VerdictIncorrect {
		return s, domain.ErrSelectionLocked
	}

	next := s
	next.seq++
	next.selected = o
	if o == q.CorrectIndex {
		next.verdict = VerdictCorrect
		next.score++
	} else {
		next.verdict = VerdictIncorrect
		next.wrongAttempts++
	}
	return next, nil
}

// ClearSelection is the delayed half of a wrong answer: the selection is dropped
// while the session stays in Retry. It applies only if nothing happened since the
// transition numbered seq; otherwise the caller's timer is stale and this is a no-op.
func (s Session) ClearSelection(seq uint64) Session {
	if seq != s.seq || s.verdict != VerdictIncorrect || s.selected == noSelection {
		return s
	}
	next := s
	next.seq++
	next.selected = noSelection
	return next
}

// Advance moves past a correctly answered question, completing the quiz after
// the last one. Without a correct answer it dismisses the attempt and stays put.
func (s Session) Advance() (Session, error) {
	if s.completed {
		return s, domain.ErrSessionCompleted
	}
	next := s
	next.seq++
	if s.verdict != VerdictCorrect {
		next.selected = noSelection
		next.verdict = VerdictUnknown
		return next, nil
	}
	if s.current < len(s.competition.Questions)-1 {
		next.current++
		next.selected = noSelection
		next.verdict = VerdictUnknown
		return next, nil
	}
	next.completed = true
	return next, nil
}

// Restart discards all progress. Seq keeps counting so timers from the old run go stale.
func (s Session) Restart() Session {
	return Session{
		competition: s.competition,
		selected:    noSelection,
		seq:         s.seq + 1,
	}
}

// State renders the session for clients; the answer key is never included.
func (s Session) State(playID string) domain.PlayState {
	state := domain.PlayState{
		PlayID:          playID,
		CompetitionID:   s.competition.ID,
		CurrentQuestion: s.current,
		TotalQuestions:  len(s.competition.Questions),
		Score:           s.score,
		WrongAttempts:   s.wrongAttempts,
		Completed:       s.completed,
	}
	if s.selected != noSelection {
		selected := s.selected
		state.SelectedOption = &selected
	}
	if s.verdict != VerdictUnknown {
		correct := s.verdict == VerdictCorrect
		state.IsCorrect = &correct
	}
	if !s.completed {
		q := s.competition.Questions[s.current]
		state.Question = &domain.QuestionView{
			QuestionText: q.QuestionText,
			Options:      append([]string(nil), q.Options...),
		}
	}
	return state
}
