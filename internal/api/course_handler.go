package api

import (
	"errors"
	"net/http"

	"github.com/studydeck/backend/internal/domain/course"
)

// ── Request / Response types ────────────────────────────────────────────────

type CreateCourseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

func (r *CreateCourseRequest) Validate() error {
	if r.Title == "" {
		return errors.New("title is required")
	}
	return nil
}

type CourseResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type CreateLessonRequest struct {
	Title string `json:"title"`
}

func (r *CreateLessonRequest) Validate() error {
	if r.Title == "" {
		return errors.New("title is required")
	}
	return nil
}

type LessonResponse struct {
	ID       string `json:"id"`
	CourseID string `json:"course_id"`
	Title    string `json:"title"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// POST /courses
func (h *Handler) createCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateCourseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	c := course.New(req.Title)
	c.Description = req.Description

	if err := h.store.SaveCourse(ctx, c); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save course")
		return
	}

	respondJSON(w, http.StatusCreated, CourseResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
	})
}

// GET /courses
func (h *Handler) listCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.store.ListCourses(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load courses")
		return
	}

	response := make([]CourseResponse, 0, len(courses))
	for _, c := range courses {
		response = append(response, CourseResponse{ID: c.ID, Title: c.Title, Description: c.Description})
	}
	respondJSON(w, http.StatusOK, response)
}

// GET /courses/{courseID}
func (h *Handler) getCourse(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.GetCourse(r.Context(), r.PathValue("courseID"))
	if h.handleStoreError(w, err, "course") {
		return
	}

	respondJSON(w, http.StatusOK, CourseResponse{ID: c.ID, Title: c.Title, Description: c.Description})
}

// PUT /courses/{courseID}
func (h *Handler) updateCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courseID := r.PathValue("courseID")

	var req CreateCourseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	c := &course.Course{ID: courseID, Title: req.Title, Description: req.Description}
	if h.handleStoreError(w, h.store.UpdateCourse(ctx, c), "course") {
		return
	}

	respondJSON(w, http.StatusOK, CourseResponse{ID: c.ID, Title: c.Title, Description: c.Description})
}

// DELETE /courses/{courseID}
func (h *Handler) deleteCourse(w http.ResponseWriter, r *http.Request) {
	if h.handleStoreError(w, h.store.DeleteCourse(r.Context(), r.PathValue("courseID")), "course") {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /courses/{courseID}/lessons
func (h *Handler) createLesson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courseID := r.PathValue("courseID")

	if _, err := h.store.GetCourse(ctx, courseID); h.handleStoreError(w, err, "course") {
		return
	}

	var req CreateLessonRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	l := course.NewLesson(courseID, req.Title)
	if err := h.store.SaveLesson(ctx, l); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save lesson")
		return
	}

	respondJSON(w, http.StatusCreated, LessonResponse{ID: l.ID, CourseID: l.CourseID, Title: l.Title})
}

// GET /courses/{courseID}/lessons
func (h *Handler) listLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.store.ListLessons(r.Context(), r.PathValue("courseID"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load lessons")
		return
	}

	response := make([]LessonResponse, 0, len(lessons))
	for _, l := range lessons {
		response = append(response, LessonResponse{ID: l.ID, CourseID: l.CourseID, Title: l.Title})
	}
	respondJSON(w, http.StatusOK, response)
}

// DELETE /lessons/{lessonID}
func (h *Handler) deleteLesson(w http.ResponseWriter, r *http.Request) {
	if h.handleStoreError(w, h.store.DeleteLesson(r.Context(), r.PathValue("lessonID")), "lesson") {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
