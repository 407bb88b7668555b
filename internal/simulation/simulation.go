// Package simulation drives a complete practice flow against a real
// SQLite store, end to end: seed a course, run a session, print the
// summary. Used by cmd/demo as a smoke test of the whole stack.
package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/studydeck/backend/internal/domain/course"
	"github.com/studydeck/backend/internal/domain/practice"
	"github.com/studydeck/backend/internal/domain/question"
	"github.com/studydeck/backend/internal/service"
	"github.com/studydeck/backend/internal/store"
)

func seedQuestion(db *store.SQLiteStore, courseID, topic string, difficulty question.Difficulty, prompt, correct string, wrong ...string) error {
	q := question.New(courseID, "Go Fundamentals", topic, difficulty, prompt)
	opt := q.AddOption(correct)
	q.CorrectOptionID = opt.ID
	for _, text := range wrong {
		q.AddOption(text)
	}
	return db.SaveQuestion(context.Background(), q)
}

// Run seeds a demo course in dir and plays one full session, answering
// every question with the first listed option.
func Run(dir string, logger *slog.Logger) error {
	ctx := context.Background()

	db, err := store.NewSQLite(filepath.Join(dir, "demo.db"))
	if err != nil {
		return err
	}
	defer db.Close()

	demo := course.New("Go Fundamentals")
	if err := db.SaveCourse(ctx, demo); err != nil {
		return err
	}

	seeds := []error{
		seedQuestion(db, demo.ID, "concurrency", question.DifficultyEasy,
			"What is a goroutine?",
			"A lightweight thread managed by the Go runtime",
			"An OS thread", "A CPU core"),
		seedQuestion(db, demo.ID, "concurrency", question.DifficultyMedium,
			"What does a channel do?",
			"Sends and receives values between goroutines",
			"Schedules goroutines", "Allocates memory"),
		seedQuestion(db, demo.ID, "syntax", question.DifficultyEasy,
			"Which keyword declares a variable?",
			"var",
			"let", "dim"),
	}
	for _, err := range seeds {
		if err != nil {
			return err
		}
	}

	recorder := service.NewRecorderService(db, logger, 2, 8)
	defer recorder.Close()

	engine := practice.NewEngine(db, recorder, db, logger)
	if !engine.Start(ctx, practice.SessionConfig{CourseID: demo.ID}) {
		return fmt.Errorf("session failed to start")
	}
	fmt.Printf("Session started: %d questions\n", engine.TotalQuestions())

	for engine.HasSession() && !engine.IsComplete() {
		q := engine.CurrentQuestion()
		fmt.Printf("Q%d/%d: %s\n", engine.QuestionNumber(), engine.TotalQuestions(), q.Prompt)

		engine.SelectAnswer(q.Options[0].ID)
		if correct, ok := engine.SubmitAnswer(ctx); ok {
			fmt.Printf("  answered %q — correct: %v\n", q.Options[0].Text, correct)
		}
		engine.NextQuestion()
	}

	summary, ok := engine.Summary()
	if !ok {
		return fmt.Errorf("no summary available")
	}
	fmt.Printf("Score: %d/%d (%d%%)\n", summary.CorrectCount, summary.TotalQuestions, summary.Percentage)
	for _, tp := range summary.Topics {
		fmt.Printf("  %s: %d/%d (%d%%)\n", tp.Topic, tp.Correct, tp.Total, tp.Percentage)
	}

	engine.WaitRecords()
	recorder.Drain()

	missed, err := db.ListIncorrectQuestionIDs(ctx, demo.ID)
	if err != nil {
		return err
	}
	fmt.Printf("Questions to revisit: %d\n", len(missed))

	return nil
}
