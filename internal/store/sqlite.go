package store

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/studydeck/backend/internal/domain/course"
)

const schema = `
CREATE TABLE IF NOT EXISTS courses (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS lessons (
    id TEXT PRIMARY KEY,
    course_id TEXT NOT NULL,
    title TEXT NOT NULL,
    FOREIGN KEY (course_id) REFERENCES courses(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS questions (
    id TEXT PRIMARY KEY,
    course_id TEXT NOT NULL,
    lesson_id TEXT,
    subject TEXT NOT NULL,
    topic TEXT NOT NULL,
    difficulty TEXT NOT NULL,
    prompt TEXT NOT NULL,
    correct_option_id TEXT NOT NULL,
    explanation TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (course_id) REFERENCES courses(id) ON DELETE CASCADE,
    FOREIGN KEY (lesson_id) REFERENCES lessons(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS options (
    id TEXT PRIMARY KEY,
    question_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    text TEXT NOT NULL,
    FOREIGN KEY (question_id) REFERENCES questions(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS attempts (
    id TEXT PRIMARY KEY,
    question_id TEXT NOT NULL,
    course_id TEXT NOT NULL,
    selected_option_id TEXT NOT NULL,
    is_correct INTEGER NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_questions_course ON questions(course_id);
CREATE INDEX IF NOT EXISTS idx_attempts_course ON attempts(course_id);
`

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Courses
// ============================================================================

func (s *SQLiteStore) SaveCourse(ctx context.Context, c *course.Course) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO courses (id, title, description) VALUES (?, ?, ?)",
		c.ID, c.Title, c.Description,
	)
	return err
}

func (s *SQLiteStore) GetCourse(ctx context.Context, id string) (*course.Course, error) {
	var c course.Course
	err := s.db.QueryRowContext(ctx,
		"SELECT id, title, description FROM courses WHERE id = ?", id,
	).Scan(&c.ID, &c.Title, &c.Description)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLiteStore) ListCourses(ctx context.Context) ([]*course.Course, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, title, description FROM courses")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []*course.Course
	for rows.Next() {
		var c course.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description); err != nil {
			return nil, err
		}
		courses = append(courses, &c)
	}
	return courses, rows.Err()
}

func (s *SQLiteStore) UpdateCourse(ctx context.Context, c *course.Course) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE courses SET title = ?, description = ? WHERE id = ?",
		c.Title, c.Description, c.ID,
	)
	if err != nil {
		return err
	}
	return requireRows(result)
}

func (s *SQLiteStore) DeleteCourse(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM options
		WHERE question_id IN (SELECT id FROM questions WHERE course_id = ?)
	`, id)
	if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM questions WHERE course_id = ?", id); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM lessons WHERE course_id = ?", id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM courses WHERE id = ?", id)
	if err != nil {
		return err
	}
	if err := requireRows(result); err != nil {
		return err
	}

	return tx.Commit()
}

// ============================================================================
// Lessons
// ============================================================================

func (s *SQLiteStore) SaveLesson(ctx context.Context, l *course.Lesson) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO lessons (id, course_id, title) VALUES (?, ?, ?)",
		l.ID, l.CourseID, l.Title,
	)
	return err
}

func (s *SQLiteStore) ListLessons(ctx context.Context, courseID string) ([]*course.Lesson, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, course_id, title FROM lessons WHERE course_id = ?", courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lessons []*course.Lesson
	for rows.Next() {
		var l course.Lesson
		if err := rows.Scan(&l.ID, &l.CourseID, &l.Title); err != nil {
			return nil, err
		}
		lessons = append(lessons, &l)
	}
	return lessons, rows.Err()
}

func (s *SQLiteStore) DeleteLesson(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Questions survive the lesson, they just lose the link.
	if _, err = tx.ExecContext(ctx, "UPDATE questions SET lesson_id = NULL WHERE lesson_id = ?", id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM lessons WHERE id = ?", id)
	if err != nil {
		return err
	}
	if err := requireRows(result); err != nil {
		return err
	}

	return tx.Commit()
}

func requireRows(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
