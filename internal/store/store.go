package store

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// StoredAttempt is one persisted answer attempt, as read back for the
// back-office history view.
type StoredAttempt struct {
	ID               string
	QuestionID       string
	CourseID         string
	SelectedOptionID string
	IsCorrect        bool
	CreatedAt        time.Time
}
