package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/studydeck/backend/internal/domain/practice"
	"github.com/studydeck/backend/internal/domain/question"
)

// ============================================================================
// Questions
// ============================================================================

func (s *SQLiteStore) SaveQuestion(ctx context.Context, q *question.Question) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO questions (id, course_id, lesson_id, subject, topic, difficulty, prompt, correct_option_id, explanation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.CourseID, q.LessonID, q.Subject, q.Topic, string(q.Difficulty), q.Prompt, q.CorrectOptionID, q.Explanation,
	)
	if err != nil {
		return err
	}

	for i, opt := range q.Options {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO options (id, question_id, position, text) VALUES (?, ?, ?, ?)",
			opt.ID, q.ID, i, opt.Text,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetQuestion(ctx context.Context, id string) (*question.Question, error) {
	var q question.Question
	var lessonID sql.NullString
	var difficulty string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, course_id, lesson_id, subject, topic, difficulty, prompt, correct_option_id, explanation
		FROM questions WHERE id = ?`, id,
	).Scan(&q.ID, &q.CourseID, &lessonID, &q.Subject, &q.Topic, &difficulty, &q.Prompt, &q.CorrectOptionID, &q.Explanation)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if lessonID.Valid {
		q.LessonID = &lessonID.String
	}
	q.Difficulty = question.Difficulty(difficulty)

	if err := s.loadOptions(ctx, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *SQLiteStore) DeleteQuestion(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, "DELETE FROM options WHERE question_id = ?", id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM questions WHERE id = ?", id)
	if err != nil {
		return err
	}
	if err := requireRows(result); err != nil {
		return err
	}

	return tx.Commit()
}

// ListQuestions returns every question of a course, options included.
func (s *SQLiteStore) ListQuestions(ctx context.Context, courseID string) ([]question.Question, error) {
	return s.FetchQuestions(ctx, courseID, question.Filters{})
}

// FetchQuestions is the engine's Question Source: the course pool
// narrowed by the set filters, options hydrated in stored order.
func (s *SQLiteStore) FetchQuestions(ctx context.Context, courseID string, filters question.Filters) ([]question.Question, error) {
	query := `
		SELECT id, course_id, lesson_id, subject, topic, difficulty, prompt, correct_option_id, explanation
		FROM questions WHERE course_id = ?`
	args := []any{courseID}

	var conds []string
	if filters.Topic != nil {
		conds = append(conds, "topic = ?")
		args = append(args, *filters.Topic)
	}
	if filters.Difficulty != nil {
		conds = append(conds, "difficulty = ?")
		args = append(args, string(*filters.Difficulty))
	}
	if filters.LessonID != nil {
		conds = append(conds, "lesson_id = ?")
		args = append(args, *filters.LessonID)
	}
	if len(conds) > 0 {
		query += " AND " + strings.Join(conds, " AND ")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []question.Question
	for rows.Next() {
		var q question.Question
		var lessonID sql.NullString
		var difficulty string
		if err := rows.Scan(&q.ID, &q.CourseID, &lessonID, &q.Subject, &q.Topic, &difficulty, &q.Prompt, &q.CorrectOptionID, &q.Explanation); err != nil {
			return nil, err
		}
		if lessonID.Valid {
			q.LessonID = &lessonID.String
		}
		q.Difficulty = question.Difficulty(difficulty)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range questions {
		if err := s.loadOptions(ctx, &questions[i]); err != nil {
			return nil, err
		}
	}
	return questions, nil
}

func (s *SQLiteStore) loadOptions(ctx context.Context, q *question.Question) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, text FROM options WHERE question_id = ? ORDER BY position", q.ID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var opt question.Option
		if err := rows.Scan(&opt.ID, &opt.Text); err != nil {
			return err
		}
		q.Options = append(q.Options, opt)
	}
	return rows.Err()
}

// ============================================================================
// Attempts
// ============================================================================

// RecordAttempt is the engine's Attempt Recorder: a single append-only
// row per submitted answer.
func (s *SQLiteStore) RecordAttempt(ctx context.Context, attempt practice.Attempt) error {
	correct := 0
	if attempt.IsCorrect {
		correct = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attempts (id, question_id, course_id, selected_option_id, is_correct, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), attempt.QuestionID, attempt.CourseID, attempt.SelectedOptionID,
		correct, time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// ListIncorrectQuestionIDs is the engine's Missed-Question Supplier. A
// question counts as missed once it has ever been answered incorrectly,
// regardless of later correct attempts.
func (s *SQLiteStore) ListIncorrectQuestionIDs(ctx context.Context, courseID string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT question_id FROM attempts WHERE course_id = ? AND is_correct = 0", courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	missed := make(map[string]struct{})
	for rows.Next() {
		var questionID string
		if err := rows.Scan(&questionID); err != nil {
			return nil, err
		}
		missed[questionID] = struct{}{}
	}
	return missed, rows.Err()
}

// ListAttempts returns a course's attempt history, newest first.
func (s *SQLiteStore) ListAttempts(ctx context.Context, courseID string) ([]StoredAttempt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question_id, course_id, selected_option_id, is_correct, created_at
		FROM attempts WHERE course_id = ? ORDER BY created_at DESC`, courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []StoredAttempt
	for rows.Next() {
		var a StoredAttempt
		var correct int
		var createdAt string
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.CourseID, &a.SelectedOptionID, &correct, &createdAt); err != nil {
			return nil, err
		}
		a.IsCorrect = correct == 1
		a.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
