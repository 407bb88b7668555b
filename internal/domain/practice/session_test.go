package practice_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"

	"github.com/studydeck/backend/internal/domain/practice"
	"github.com/studydeck/backend/internal/domain/question"
)

const testCourseID = "crs_test"

// ── Fake collaborators ──────────────────────────────────────────────────────

type fakeSource struct {
	questions []question.Question
	err       error
}

func (f *fakeSource) FetchQuestions(_ context.Context, _ string, filters question.Filters) ([]question.Question, error) {
	if f.err != nil {
		return nil, f.err
	}
	var matched []question.Question
	for _, q := range f.questions {
		if filters.Match(q) {
			matched = append(matched, q)
		}
	}
	return matched, nil
}

type fakeRecorder struct {
	mu       sync.Mutex
	attempts []practice.Attempt
	err      error
}

func (f *fakeRecorder) RecordAttempt(_ context.Context, attempt practice.Attempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.attempts = append(f.attempts, attempt)
	return nil
}

func (f *fakeRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.attempts)
}

type fakeMissed struct {
	ids map[string]struct{}
	err error
}

func (f *fakeMissed) ListIncorrectQuestionIDs(_ context.Context, _ string) (map[string]struct{}, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.ids == nil {
		return map[string]struct{}{}, nil
	}
	return f.ids, nil
}

// ── Helpers ─────────────────────────────────────────────────────────────────

// makeQuestion builds a two-option question whose correct option id is
// always "<id>-a".
func makeQuestion(id, topic string) question.Question {
	return question.Question{
		ID:         id,
		CourseID:   testCourseID,
		Subject:    "Testing",
		Topic:      topic,
		Difficulty: question.DifficultyEasy,
		Prompt:     "Prompt for " + id,
		Options: []question.Option{
			{ID: id + "-a", Text: "right"},
			{ID: id + "-b", Text: "wrong"},
		},
		CorrectOptionID: id + "-a",
	}
}

func makeQuestions(n int, topic string) []question.Question {
	questions := make([]question.Question, n)
	for i := range questions {
		questions[i] = makeQuestion(fmt.Sprintf("q%02d", i), topic)
	}
	return questions
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEngine(questions []question.Question) (*practice.Engine, *fakeRecorder) {
	recorder := &fakeRecorder{}
	engine := practice.NewEngineWithRand(
		&fakeSource{questions: questions},
		recorder,
		&fakeMissed{},
		testLogger(),
		rand.New(rand.NewSource(1)),
	)
	return engine, recorder
}

func startSession(t *testing.T, engine *practice.Engine, cfg practice.SessionConfig) {
	t.Helper()
	if !engine.Start(context.Background(), cfg) {
		t.Fatal("expected session to start")
	}
}

// answerCurrent submits the given verdict for the current question.
func answerCurrent(t *testing.T, engine *practice.Engine, correct bool) {
	t.Helper()
	q := engine.CurrentQuestion()
	if q == nil {
		t.Fatal("no current question")
	}
	optionID := q.CorrectOptionID
	if !correct {
		optionID = q.ID + "-b"
	}
	engine.SelectAnswer(optionID)
	got, ok := engine.SubmitAnswer(context.Background())
	if !ok {
		t.Fatal("expected submission to be accepted")
	}
	if got != correct {
		t.Fatalf("expected verdict %v, got %v", correct, got)
	}
}

// ── Start ───────────────────────────────────────────────────────────────────

func TestStart_EmptyPoolFails(t *testing.T) {
	engine, _ := newEngine(nil)

	if engine.Start(context.Background(), practice.SessionConfig{CourseID: testCourseID}) {
		t.Fatal("expected start to fail with an empty pool")
	}

	if engine.HasSession() {
		t.Error("expected engine to stay idle")
	}
	if _, ok := engine.Summary(); ok {
		t.Error("expected no summary without a session")
	}
	if engine.TotalQuestions() != 0 || engine.QuestionNumber() != 0 || engine.Progress() != 0 {
		t.Error("expected all numeric queries to return 0 when idle")
	}
	if engine.CurrentQuestion() != nil {
		t.Error("expected no current question when idle")
	}
}

func TestStart_FetchFailureFails(t *testing.T) {
	engine := practice.NewEngineWithRand(
		&fakeSource{err: errors.New("db down")},
		&fakeRecorder{},
		&fakeMissed{},
		testLogger(),
		rand.New(rand.NewSource(1)),
	)

	if engine.Start(context.Background(), practice.SessionConfig{CourseID: testCourseID}) {
		t.Fatal("expected start to fail when the fetch fails")
	}
	if engine.HasSession() {
		t.Error("expected engine to stay idle")
	}
}

func TestStart_AppliesFilters(t *testing.T) {
	questions := []question.Question{
		makeQuestion("q1", "maps"),
		makeQuestion("q2", "slices"),
		makeQuestion("q3", "maps"),
	}
	engine, _ := newEngine(questions)

	topic := "maps"
	startSession(t, engine, practice.SessionConfig{CourseID: testCourseID, Topic: &topic})

	if engine.TotalQuestions() != 2 {
		t.Errorf("expected 2 questions, got %d", engine.TotalQuestions())
	}
}

func TestStart_TruncatesToQuestionCount(t *testing.T) {
	engine, _ := newEngine(makeQuestions(30, "topic"))

	maxQ := 10
	startSession(t, engine, practice.SessionConfig{CourseID: testCourseID, QuestionCount: &maxQ})

	if engine.TotalQuestions() != 10 {
		t.Errorf("expected 10 questions, got %d", engine.TotalQuestions())
	}
}

func TestStart_CountGreaterThanPoolKeepsAll(t *testing.T) {
	engine, _ := newEngine(makeQuestions(4, "topic"))

	maxQ := 10
	startSession(t, engine, practice.SessionConfig{CourseID: testCourseID, QuestionCount: &maxQ})

	if engine.TotalQuestions() != 4 {
		t.Errorf("expected all 4 questions, got %d", engine.TotalQuestions())
	}
}

func TestStart_OnlyMistakesIntersectsPool(t *testing.T) {
	questions := makeQuestions(5, "topic")
	engine := practice.NewEngineWithRand(
		&fakeSource{questions: questions},
		&fakeRecorder{},
		&fakeMissed{ids: map[string]struct{}{"q01": {}, "q03": {}}},
		testLogger(),
		rand.New(rand.NewSource(1)),
	)

	startSession(t, engine, practice.SessionConfig{CourseID: testCourseID, OnlyMistakes: true})

	if engine.TotalQuestions() != 2 {
		t.Fatalf("expected 2 missed questions, got %d", engine.TotalQuestions())
	}
}

func TestStart_OnlyMistakesEmptyIntersectionFails(t *testing.T) {
	engine, _ := newEngine(makeQuestions(5, "topic"))

	if engine.Start(context.Background(), practice.SessionConfig{CourseID: testCourseID, OnlyMistakes: true}) {
		t.Fatal("expected start to fail when nothing was ever missed")
	}
}

func TestStart_DiscardsPriorSession(t *testing.T) {
	engine, _ := newEngine(makeQuestions(5, "topic"))

	startSession(t, engine, practice.SessionConfig{CourseID: testCourseID})
	answerCurrent(t, engine, true)

	startSession(t, engine, practice.SessionConfig{CourseID: testCourseID})

	if engine.Progress() != 0 {
		t.Errorf("expected fresh session with no answers, got %d%% progress", engine.Progress())
	}
	if engine.QuestionNumber() != 1 {
		t.Errorf("expected cursor reset to question 1, got %d", engine.QuestionNumber())
	}
}

// ── Select / Submit ─────────────────────────────────────────────────────────

func TestSubmitAnswer_RequiresSelection(t *testing.T) {
	engine, recorder := newEngine(makeQuestions(3, "topic"))
	startSession(t, engine, practice.SessionConfig{CourseID: testCourseID})

	if _, ok := engine.SubmitAnswer(context.Background()); ok {
		t.Fatal("expected submission without a selection to be rejected")
	}
	engine.WaitRecords()
	if recorder.count() != 0 {
		t.Error("expected no attempt to be recorded")
	}
}

func TestSubmitAnswer_GradesSelection(t *testing.T) {
	engine, recorder := newEngine(makeQuestions(2, "topic"))
	startSession(t, engine, practice.SessionConfig{CourseID: testCourseID})

	answerCurrent(t, engine, false)

	isCorrect, correctOptionID, ok := engine.CurrentResult()
	if !ok {
		t.Fatal("expected a result for the answered question")
	}
	if isCorrect {
		t.Error("expected the wrong option to grade as incorrect")
	}
	if correctOptionID != engine.CurrentQuestion().CorrectOptionID {
		t.Error("expected the correct option id to be revealed")
	}

	engine.WaitRecords()
	if recorder.count() != 1 {
		t.Fatalf("expected 1 recorded attempt, got %d", recorder.count())
	}
	attempt := recorder.attempts[0]
	if attempt.CourseID != testCourseID || attempt.IsCorrect {
		t.Errorf("unexpected attempt payload: %+v", attempt)
	}
}

func TestSubmitAnswer_Idempotent(t *testing.T) {
	engine, recorder := newEngine(makeQuestions(2, "topic"))
	startSession(t, engine, practice.SessionConfig{CourseID: testCourseID})

	q := engine.CurrentQuestion()
	engine.SelectAnswer(q.CorrectOptionID)
	first, ok := engine.SubmitAnswer(context.Background())
	if !ok || !first {
		t.Fatal("expected a correct first submission")
	}

	// Changing the selection after submitting must be ignored.
	engine.SelectAnswer(q.ID + "-b")
	if engine.SelectedOption() != q.CorrectOptionID {
		t.Error("expected selection to be locked after submission")
	}

	second, ok := engine.SubmitAnswer(context.Background())
	if !ok {
		t.Fatal("expected resubmission to return the stored verdict")
	}
	if second != first {
		t.Error("expected the original verdict on resubmission")
	}

	engine.WaitRecords()
	if recorder.count() != 1 {
		t.Errorf("expected the recorder to be invoked exactly once, got %d", recorder.count())
	}
	if engine.Progress() != 50 {
		t.Errorf("expected progress to stay at 50%%, got %d", engine.Progress())
	}
}

func TestSubmitAnswer_RecorderFailureKeepsVerdict(t *testing.T) {
	questions := makeQuestions(1, "topic")
	engine := practice.NewEngineWithRand(
		&fakeSource{questions: questions},
		&fakeRecorder{err: errors.New("storage down")},
		&fakeMissed{},
		testLogger(),
		rand.New(rand.NewSource(1)),
	)
	startSession(t, engine, practice.SessionConfig{CourseID: testCourseID})

	answerCurrent(t, engine, true)
	engine.WaitRecords()

	// The session still reflects the answer even though persistence failed.
	summary, ok := engine.Summary()
	if !ok {
		t.Fatal("expected a summary")
	}
	if summary.CorrectCount != 1 {
		t.Errorf("expected the answer to count, got %d correct", summary.CorrectCount)
	}
}

// ── Navigation ──────────────────────────────────────────────────────────────

func TestNextQuestion_AdvancesCursor(t *testing.T) {
	engine, _ := newEngine(makeQuestions(3, "topic"))
	startSession(t, engine, practice.SessionConfig{CourseID: testCourseID})

	engine.NextQuestion()

	if engine.QuestionNumber() != 2 {
		t.Errorf("expected question 2, got %d", engine.QuestionNumber())
	}
	if engine.IsComplete() {
		t.Error("expected session to remain active")
	}
}

func TestNextQuestion_OnLastCompletesSession(t *testing.T) {
	engine, _ := newEngine(makeQuestions(1, "topic"))
	startSession(t, engine, practice.SessionConfig{CourseID: testCourseID})

	answerCurrent(t, engine, true)
	engine.NextQuestion()

	if !engine.IsComplete() {
		t.Fatal("expected session to complete after the only question")
	}
	if engine.Progress() != 100 {
		t.Errorf("expected 100%% progress, got %d", engine.Progress())
	}
	if engine.QuestionNumber() != 1 {
		t.Errorf("expected cursor frozen at question 1, got %d", engine.QuestionNumber())
	}
}

func TestPreviousQuestion_AtFirstIsNoOp(t *testing.T) {
	engine, _ := newEngine(makeQuestions(3, "topic"))
	startSession(t, engine, practice.SessionConfig{CourseID: testCourseID})

	engine.PreviousQuestion()

	if engine.QuestionNumber() != 1 {
		t.Errorf("expected cursor unchanged at question 1, got %d", engine.QuestionNumber())
	}
}

func TestPreviousQuestion_RestoresSubmittedAnswer(t *testing.T) {
	engine, recorder := newEngine(makeQuestions(3, "topic"))
	startSession(t, engine, practice.SessionConfig{CourseID: testCourseID})

	q := engine.CurrentQuestion()
	wrongOption := q.ID + "-b"
	engine.SelectAnswer(wrongOption)
	engine.SubmitAnswer(context.Background())
	engine.NextQuestion()

	engine.PreviousQuestion()

	if engine.SelectedOption() != wrongOption {
		t.Errorf("expected restored selection %q, got %q", wrongOption, engine.SelectedOption())
	}
	if !engine.CurrentAnswered() {
		t.Error("expected the restored question to stay answered")
	}

	// Time travel is read-only: resubmitting changes nothing.
	engine.SelectAnswer(q.CorrectOptionID)
	verdict, ok := engine.SubmitAnswer(context.Background())
	if !ok || verdict {
		t.Error("expected the original incorrect verdict")
	}
	engine.WaitRecords()
	if recorder.count() != 1 {
		t.Errorf("expected a single recorded attempt, got %d", recorder.count())
	}
}

func TestPreviousQuestion_ClearsSelectionOnUnanswered(t *testing.T) {
	engine, _ := newEngine(makeQuestions(3, "topic"))
	startSession(t, engine, practice.SessionConfig{CourseID: testCourseID})

	engine.SelectAnswer(engine.CurrentQuestion().CorrectOptionID)
	engine.NextQuestion() // leave question 1 selected but unsubmitted
	engine.PreviousQuestion()

	if engine.SelectedOption() != "" {
		t.Errorf("expected cleared selection, got %q", engine.SelectedOption())
	}
}

// ── Completion / Reset ──────────────────────────────────────────────────────

func TestCompleteSession_FreezesState(t *testing.T) {
	engine, recorder := newEngine(makeQuestions(4, "topic"))
	startSession(t, engine, practice.SessionConfig{CourseID: testCourseID})

	answerCurrent(t, engine, true)
	engine.CompleteSession()
	engine.CompleteSession() // idempotent

	if !engine.IsComplete() {
		t.Fatal("expected session to be complete")
	}

	numberBefore, progressBefore := engine.QuestionNumber(), engine.Progress()

	engine.NextQuestion()
	engine.PreviousQuestion()
	engine.SelectAnswer("anything")
	if _, ok := engine.SubmitAnswer(context.Background()); ok {
		t.Error("expected no submissions after completion")
	}

	if engine.QuestionNumber() != numberBefore {
		t.Error("expected cursor frozen after completion")
	}
	if engine.Progress() != progressBefore {
		t.Error("expected answers frozen after completion")
	}
	engine.WaitRecords()
	if recorder.count() != 1 {
		t.Errorf("expected no further recordings after completion, got %d", recorder.count())
	}
}

func TestReset_ReturnsToIdle(t *testing.T) {
	engine, _ := newEngine(makeQuestions(3, "topic"))
	startSession(t, engine, practice.SessionConfig{CourseID: testCourseID})
	answerCurrent(t, engine, true)

	engine.Reset()

	if engine.HasSession() {
		t.Error("expected engine to be idle after reset")
	}
	if _, ok := engine.Summary(); ok {
		t.Error("expected no summary after reset")
	}

	engine.Reset() // no-op when already idle
	if engine.TotalQuestions() != 0 {
		t.Error("expected idle engine after double reset")
	}
}
