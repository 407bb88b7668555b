// Package practice implements the practice session engine: a resumable,
// scored quiz-taking session over a filtered, shuffled question pool,
// with a per-topic performance summary.
//
// An Engine owns at most one session at a time. All state mutations are
// synchronous and expected to run on a single goroutine; the only
// detached work is recording answer attempts, which never writes back
// into session state.
package practice

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/studydeck/backend/internal/domain/question"
)

// QuestionSource supplies the already-permission-checked question pool
// for a course. It may legitimately return an empty slice.
type QuestionSource interface {
	FetchQuestions(ctx context.Context, courseID string, filters question.Filters) ([]question.Question, error)
}

// Attempt is a single recorded answer fact.
type Attempt struct {
	QuestionID       string
	CourseID         string
	SelectedOptionID string
	IsCorrect        bool
}

// AttemptRecorder durably records one attempt. From the engine's
// perspective the call is best-effort: failures are logged, never
// surfaced into the session.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, attempt Attempt) error
}

// MissedQuestionSupplier lists the ids of questions the user has ever
// answered incorrectly. Consulted only when OnlyMistakes is set.
type MissedQuestionSupplier interface {
	ListIncorrectQuestionIDs(ctx context.Context, courseID string) (map[string]struct{}, error)
}

// SessionConfig is the input to Start.
type SessionConfig struct {
	CourseID      string
	LessonID      *string // nil = whole course
	Topic         *string
	Difficulty    *question.Difficulty
	OnlyMistakes  bool
	QuestionCount *int // nil = no cap
}

func (c SessionConfig) filters() question.Filters {
	return question.Filters{
		Topic:      c.Topic,
		Difficulty: c.Difficulty,
		LessonID:   c.LessonID,
	}
}

// Answer is the recorded verdict for one question in the session.
type Answer struct {
	SelectedOptionID string
	IsCorrect        bool
}

// Engine is the session state machine. The zero session state is Idle;
// Start moves it to Active and Complete is terminal until Reset.
type Engine struct {
	source   QuestionSource
	recorder AttemptRecorder
	missed   MissedQuestionSupplier
	logger   *slog.Logger
	rng      *rand.Rand

	config       SessionConfig
	questions    []question.Question
	currentIndex int
	answers      map[string]Answer
	selected     string // tentative choice for the current question, not yet submitted
	active       bool
	complete     bool

	// generation changes on Start/Reset so detached recording goroutines
	// can tell they outlived their session.
	generation atomic.Uint64
	records    sync.WaitGroup
}

func NewEngine(source QuestionSource, recorder AttemptRecorder, missed MissedQuestionSupplier, logger *slog.Logger) *Engine {
	return NewEngineWithRand(source, recorder, missed, logger, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewEngineWithRand injects the random source used for shuffling.
func NewEngineWithRand(source QuestionSource, recorder AttemptRecorder, missed MissedQuestionSupplier, logger *slog.Logger, rng *rand.Rand) *Engine {
	return &Engine{
		source:   source,
		recorder: recorder,
		missed:   missed,
		logger:   logger,
		rng:      rng,
	}
}

// Start begins a new session, discarding any session already in
// progress. It reports false when no questions remain after filtering
// (and the only-mistakes intersection), or when the pool fetch fails;
// both collapse into the same caller-visible failure and leave the
// engine Idle.
func (e *Engine) Start(ctx context.Context, cfg SessionConfig) bool {
	e.Reset()

	pool, err := e.source.FetchQuestions(ctx, cfg.CourseID, cfg.filters())
	if err != nil {
		e.logger.Error("failed to fetch question pool", "course_id", cfg.CourseID, "error", err)
		return false
	}

	if cfg.OnlyMistakes {
		missedIDs, err := e.missed.ListIncorrectQuestionIDs(ctx, cfg.CourseID)
		if err != nil {
			e.logger.Error("failed to list missed questions", "course_id", cfg.CourseID, "error", err)
			return false
		}
		pool = intersectMissed(pool, missedIDs)
	}

	if len(pool) == 0 {
		return false
	}

	questions := Shuffle(pool, e.rng)
	if cfg.QuestionCount != nil && *cfg.QuestionCount > 0 && *cfg.QuestionCount < len(questions) {
		questions = questions[:*cfg.QuestionCount]
	}

	e.config = cfg
	e.questions = questions
	e.currentIndex = 0
	e.answers = make(map[string]Answer)
	e.selected = ""
	e.active = true
	e.complete = false
	return true
}

// SelectAnswer records a tentative choice for the current question.
// No-op once the current question has been submitted, so a recorded
// answer can never be changed.
func (e *Engine) SelectAnswer(optionID string) {
	if !e.active || e.complete {
		return
	}
	q := e.CurrentQuestion()
	if q == nil {
		return
	}
	if _, answered := e.answers[q.ID]; answered {
		return
	}
	e.selected = optionID
}

// SubmitAnswer grades the selected option against the current question.
// It returns the verdict and ok=true when a verdict exists. Submitting
// an already-answered question returns the original verdict without
// re-recording. Without an active session, a current question, or a
// prior selection it returns ok=false.
func (e *Engine) SubmitAnswer(ctx context.Context) (isCorrect, ok bool) {
	if !e.active || e.complete {
		return false, false
	}
	q := e.CurrentQuestion()
	if q == nil {
		return false, false
	}
	if prior, answered := e.answers[q.ID]; answered {
		return prior.IsCorrect, true
	}
	if e.selected == "" {
		return false, false
	}

	correct := e.selected == q.CorrectOptionID
	e.answers[q.ID] = Answer{SelectedOptionID: e.selected, IsCorrect: correct}

	e.recordAttempt(Attempt{
		QuestionID:       q.ID,
		CourseID:         e.config.CourseID,
		SelectedOptionID: e.selected,
		IsCorrect:        correct,
	})

	return correct, true
}

// recordAttempt persists the attempt on a detached goroutine. It uses
// context.Background because recording must outlive the caller's
// request; failures are logged and never abort the session.
func (e *Engine) recordAttempt(attempt Attempt) {
	gen := e.generation.Load()
	e.records.Add(1)
	go func() {
		defer e.records.Done()
		if err := e.recorder.RecordAttempt(context.Background(), attempt); err != nil {
			e.logger.Error("failed to record attempt",
				"question_id", attempt.QuestionID,
				"error", err,
			)
			return
		}
		if gen != e.generation.Load() {
			e.logger.Debug("attempt recorded after its session ended", "question_id", attempt.QuestionID)
		}
	}()
}

// WaitRecords blocks until all detached attempt recordings have
// returned. Used on shutdown and in tests.
func (e *Engine) WaitRecords() {
	e.records.Wait()
}

// NextQuestion advances the cursor, or transitions to Complete when the
// cursor is already on the last question.
func (e *Engine) NextQuestion() {
	if !e.active || e.complete {
		return
	}
	if e.currentIndex >= len(e.questions)-1 {
		e.complete = true
		return
	}
	e.currentIndex++
	e.restoreSelection()
}

// PreviousQuestion moves the cursor back one question. This is
// read-only time travel: the restored question keeps its submitted
// verdict and cannot be re-answered.
func (e *Engine) PreviousQuestion() {
	if !e.active || e.complete {
		return
	}
	if e.currentIndex == 0 {
		return
	}
	e.currentIndex--
	e.restoreSelection()
}

// restoreSelection mirrors the answers map into the transient slot:
// answered questions show their submitted option, unanswered ones start
// blank.
func (e *Engine) restoreSelection() {
	e.selected = ""
	if q := e.CurrentQuestion(); q != nil {
		if prior, answered := e.answers[q.ID]; answered {
			e.selected = prior.SelectedOptionID
		}
	}
}

// CompleteSession force-finishes the session regardless of cursor
// position. Idempotent.
func (e *Engine) CompleteSession() {
	if !e.active {
		return
	}
	e.complete = true
}

// Reset discards all session state back to Idle. No-op when already
// Idle, except that the generation still advances so stale async
// results are recognizable.
func (e *Engine) Reset() {
	e.generation.Add(1)
	e.config = SessionConfig{}
	e.questions = nil
	e.currentIndex = 0
	e.answers = nil
	e.selected = ""
	e.active = false
	e.complete = false
}

// ── Derived queries ─────────────────────────────────────────────────────────
//
// All queries are pure reads. With no session (or an empty pool) the
// numeric ones return 0 and CurrentQuestion returns nil; nothing panics.

// HasSession reports whether a session exists (Active or Complete).
func (e *Engine) HasSession() bool { return e.active }

// IsComplete reports whether the session reached its terminal state.
func (e *Engine) IsComplete() bool { return e.active && e.complete }

// Config returns the configuration of the current session.
func (e *Engine) Config() SessionConfig { return e.config }

// CurrentQuestion returns a copy of the question under the cursor, or
// nil when there is no session.
func (e *Engine) CurrentQuestion() *question.Question {
	if !e.active || len(e.questions) == 0 {
		return nil
	}
	q := e.questions[e.currentIndex]
	return &q
}

// QuestionNumber is the 1-based position of the cursor, 0 when Idle.
func (e *Engine) QuestionNumber() int {
	if !e.active || len(e.questions) == 0 {
		return 0
	}
	return e.currentIndex + 1
}

// TotalQuestions is the fixed size of the session's question list.
func (e *Engine) TotalQuestions() int {
	if !e.active {
		return 0
	}
	return len(e.questions)
}

// Progress is the share of answered questions, as a rounded percentage.
func (e *Engine) Progress() int {
	if !e.active || len(e.questions) == 0 {
		return 0
	}
	return roundPercent(len(e.answers), len(e.questions))
}

// CurrentAnswered reports whether the current question has a submitted
// verdict.
func (e *Engine) CurrentAnswered() bool {
	q := e.CurrentQuestion()
	if q == nil {
		return false
	}
	_, answered := e.answers[q.ID]
	return answered
}

// IsLastQuestion reports whether the cursor is on the final question.
func (e *Engine) IsLastQuestion() bool {
	if !e.active || len(e.questions) == 0 {
		return false
	}
	return e.currentIndex == len(e.questions)-1
}

// SelectedOption returns the tentative (or restored) choice for the
// current question, "" when nothing is selected.
func (e *Engine) SelectedOption() string { return e.selected }

// CurrentResult returns the verdict and the correct option id for the
// current question once it has been answered.
func (e *Engine) CurrentResult() (isCorrect bool, correctOptionID string, ok bool) {
	q := e.CurrentQuestion()
	if q == nil {
		return false, "", false
	}
	prior, answered := e.answers[q.ID]
	if !answered {
		return false, "", false
	}
	return prior.IsCorrect, q.CorrectOptionID, true
}

func intersectMissed(pool []question.Question, missed map[string]struct{}) []question.Question {
	var kept []question.Question
	for _, q := range pool {
		if _, ok := missed[q.ID]; ok {
			kept = append(kept, q)
		}
	}
	return kept
}

func roundPercent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
