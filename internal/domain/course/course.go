package course

import "github.com/studydeck/backend/internal/id"

// Course is the top level of the content hierarchy:
// Course → Lessons → Questions.
type Course struct {
	ID          string
	Title       string
	Description string
}

func New(title string) *Course {
	return &Course{
		ID:    id.WithPrefix("crs"),
		Title: title,
	}
}

// Lesson scopes a subset of a course's questions.
type Lesson struct {
	ID       string
	CourseID string
	Title    string
}

func NewLesson(courseID, title string) *Lesson {
	return &Lesson{
		ID:       id.WithPrefix("les"),
		CourseID: courseID,
		Title:    title,
	}
}
