package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/studydeck/backend/internal/domain/question"
)

// ── Request / Response types ────────────────────────────────────────────────

type AddQuestionRequest struct {
	Subject      string   `json:"subject"`
	Topic        string   `json:"topic"`
	Difficulty   string   `json:"difficulty"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation,omitempty"`
	LessonID     *string  `json:"lesson_id,omitempty"`
}

func (r *AddQuestionRequest) Validate() error {
	if r.Topic == "" {
		return errors.New("topic is required")
	}
	if r.Prompt == "" {
		return errors.New("prompt is required")
	}
	if !question.Difficulty(r.Difficulty).Valid() {
		return errors.New("difficulty must be easy, medium or hard")
	}
	if len(r.Options) < 2 {
		return errors.New("at least two options are required")
	}
	if r.CorrectIndex < 0 || r.CorrectIndex >= len(r.Options) {
		return errors.New("correct_index is out of range")
	}
	return nil
}

type OptionResponse struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type QuestionResponse struct {
	ID              string           `json:"id"`
	CourseID        string           `json:"course_id"`
	LessonID        *string          `json:"lesson_id,omitempty"`
	Subject         string           `json:"subject"`
	Topic           string           `json:"topic"`
	Difficulty      string           `json:"difficulty"`
	Prompt          string           `json:"prompt"`
	Options         []OptionResponse `json:"options"`
	CorrectOptionID string           `json:"correct_option_id"`
	Explanation     string           `json:"explanation,omitempty"`
}

func toQuestionResponse(q *question.Question) QuestionResponse {
	options := make([]OptionResponse, len(q.Options))
	for i, opt := range q.Options {
		options[i] = OptionResponse{ID: opt.ID, Text: opt.Text}
	}
	return QuestionResponse{
		ID:              q.ID,
		CourseID:        q.CourseID,
		LessonID:        q.LessonID,
		Subject:         q.Subject,
		Topic:           q.Topic,
		Difficulty:      string(q.Difficulty),
		Prompt:          q.Prompt,
		Options:         options,
		CorrectOptionID: q.CorrectOptionID,
		Explanation:     q.Explanation,
	}
}

type AttemptResponse struct {
	ID               string    `json:"id"`
	QuestionID       string    `json:"question_id"`
	SelectedOptionID string    `json:"selected_option_id"`
	IsCorrect        bool      `json:"is_correct"`
	CreatedAt        time.Time `json:"created_at"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// POST /courses/{courseID}/questions
func (h *Handler) addQuestion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courseID := r.PathValue("courseID")

	if _, err := h.store.GetCourse(ctx, courseID); h.handleStoreError(w, err, "course") {
		return
	}

	var req AddQuestionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	q := question.New(courseID, req.Subject, req.Topic, question.Difficulty(req.Difficulty), req.Prompt)
	q.Explanation = req.Explanation
	q.LessonID = req.LessonID

	for i, text := range req.Options {
		opt := q.AddOption(text)
		if i == req.CorrectIndex {
			q.CorrectOptionID = opt.ID
		}
	}

	if err := q.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.SaveQuestion(ctx, q); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save question")
		return
	}

	respondJSON(w, http.StatusCreated, toQuestionResponse(q))
}

// GET /courses/{courseID}/questions
func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.store.ListQuestions(r.Context(), r.PathValue("courseID"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load questions")
		return
	}

	response := make([]QuestionResponse, 0, len(questions))
	for i := range questions {
		response = append(response, toQuestionResponse(&questions[i]))
	}
	respondJSON(w, http.StatusOK, response)
}

// GET /questions/{questionID}
func (h *Handler) getQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := h.store.GetQuestion(r.Context(), r.PathValue("questionID"))
	if h.handleStoreError(w, err, "question") {
		return
	}
	respondJSON(w, http.StatusOK, toQuestionResponse(q))
}

// DELETE /questions/{questionID}
func (h *Handler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	if h.handleStoreError(w, h.store.DeleteQuestion(r.Context(), r.PathValue("questionID")), "question") {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /courses/{courseID}/attempts
func (h *Handler) listAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.store.ListAttempts(r.Context(), r.PathValue("courseID"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load attempts")
		return
	}

	response := make([]AttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		response = append(response, AttemptResponse{
			ID:               a.ID,
			QuestionID:       a.QuestionID,
			SelectedOptionID: a.SelectedOptionID,
			IsCorrect:        a.IsCorrect,
			CreatedAt:        a.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, response)
}
