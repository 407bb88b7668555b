package question

import (
	"errors"

	"github.com/studydeck/backend/internal/id"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the three supported levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

var (
	ErrEmptyPrompt   = errors.New("question prompt cannot be empty")
	ErrTooFewOptions = errors.New("question needs at least two options")
	ErrUnknownOption = errors.New("correct option must reference a listed option")
	ErrBadDifficulty = errors.New("difficulty must be easy, medium or hard")
)

// Option is a single answer choice.
type Option struct {
	ID   string
	Text string
}

// Question is immutable for the lifetime of a practice session.
type Question struct {
	ID              string
	CourseID        string
	LessonID        *string // optional link to a related lesson
	Subject         string
	Topic           string
	Difficulty      Difficulty
	Prompt          string
	Options         []Option
	CorrectOptionID string
	Explanation     string
}

func New(courseID, subject, topic string, difficulty Difficulty, prompt string) *Question {
	return &Question{
		ID:         id.WithPrefix("qst"),
		CourseID:   courseID,
		Subject:    subject,
		Topic:      topic,
		Difficulty: difficulty,
		Prompt:     prompt,
	}
}

// AddOption appends an answer choice with a generated ID and returns it.
func (q *Question) AddOption(text string) Option {
	opt := Option{ID: id.WithPrefix("opt"), Text: text}
	q.Options = append(q.Options, opt)
	return opt
}

// SetCorrectOption marks one of the listed options as correct.
func (q *Question) SetCorrectOption(optionID string) error {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			q.CorrectOptionID = optionID
			return nil
		}
	}
	return ErrUnknownOption
}

// Validate checks the structural invariants of a question.
func (q *Question) Validate() error {
	if q.Prompt == "" {
		return ErrEmptyPrompt
	}
	if !q.Difficulty.Valid() {
		return ErrBadDifficulty
	}
	if len(q.Options) < 2 {
		return ErrTooFewOptions
	}
	for _, opt := range q.Options {
		if opt.ID == q.CorrectOptionID {
			return nil
		}
	}
	return ErrUnknownOption
}

// Filters narrows a course's question pool. Nil fields match everything.
type Filters struct {
	Topic      *string
	Difficulty *Difficulty
	LessonID   *string
}

// Match reports whether q satisfies every set filter.
func (f Filters) Match(q Question) bool {
	if f.Topic != nil && q.Topic != *f.Topic {
		return false
	}
	if f.Difficulty != nil && q.Difficulty != *f.Difficulty {
		return false
	}
	if f.LessonID != nil {
		if q.LessonID == nil || *q.LessonID != *f.LessonID {
			return false
		}
	}
	return true
}
