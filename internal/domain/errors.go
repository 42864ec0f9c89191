package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is matched by every *ValidationError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound indicates no competition matches the requested id.
	ErrNotFound = errors.New("competition not found")
	// ErrStoreUnavailable wraps connectivity and write failures of the backing store.
	ErrStoreUnavailable = errors.New("competition store unavailable")
	// ErrDataIntegrity marks stored data a play-through cannot be built from.
	ErrDataIntegrity = errors.New("competition data integrity violation")
	// ErrDuplicateID is returned by stores when an insert collides with an existing id.
	ErrDuplicateID = errors.New("competition id already exists")

	// ErrPlayNotFound is returned when a play-through id is unknown or already ended.
	ErrPlayNotFound = errors.New("play not found")
	// ErrSessionCompleted rejects everything but restart once the last question is done.
	ErrSessionCompleted = errors.New("quiz already completed")
	// ErrSelectionLocked rejects re-selection after a correct answer until advance.
	ErrSelectionLocked = errors.New("selection locked until advance")
	// ErrOptionOutOfRange indicates the selected option index does not exist.
	ErrOptionOutOfRange = errors.New("option out of range")
)

// ValidationError reports which field of a create payload was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrInvalidInput) match any validation failure.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// IntegrityError pinpoints the question that makes a competition unplayable.
type IntegrityError struct {
	CompetitionID string
	QuestionIndex int
	Reason        string
}

func (e *IntegrityError) Error() string {
	if e.QuestionIndex < 0 {
		return fmt.Sprintf("competition %s: %s", e.CompetitionID, e.Reason)
	}
	return fmt.Sprintf("competition %s question %d: %s", e.CompetitionID, e.QuestionIndex, e.Reason)
}

func (e *IntegrityError) Is(target error) bool {
	return target == ErrDataIntegrity
}
