package api

import (
	"errors"
	"net/http"

	"github.com/studydeck/backend/internal/domain/practice"
	"github.com/studydeck/backend/internal/domain/question"
)

// ── Request / Response types ────────────────────────────────────────────────

type StartSessionRequest struct {
	CourseID      string  `json:"course_id"`
	LessonID      *string `json:"lesson_id,omitempty"`
	Topic         *string `json:"topic,omitempty"`
	Difficulty    *string `json:"difficulty,omitempty"`
	OnlyMistakes  bool    `json:"only_mistakes"`
	QuestionCount *int    `json:"question_count,omitempty"`
}

func (r *StartSessionRequest) Validate() error {
	if r.CourseID == "" {
		return errors.New("course_id is required")
	}
	if r.Difficulty != nil && !question.Difficulty(*r.Difficulty).Valid() {
		return errors.New("difficulty must be easy, medium or hard")
	}
	if r.QuestionCount != nil && *r.QuestionCount < 1 {
		return errors.New("question_count must be positive")
	}
	return nil
}

func (r *StartSessionRequest) config() practice.SessionConfig {
	cfg := practice.SessionConfig{
		CourseID:      r.CourseID,
		LessonID:      r.LessonID,
		Topic:         r.Topic,
		OnlyMistakes:  r.OnlyMistakes,
		QuestionCount: r.QuestionCount,
	}
	if r.Difficulty != nil {
		d := question.Difficulty(*r.Difficulty)
		cfg.Difficulty = &d
	}
	return cfg
}

// SessionQuestion is the current question as shown while answering:
// the verdict fields stay hidden until the answer is submitted.
type SessionQuestion struct {
	ID         string           `json:"id"`
	Subject    string           `json:"subject"`
	Topic      string           `json:"topic"`
	Difficulty string           `json:"difficulty"`
	Prompt     string           `json:"prompt"`
	Options    []OptionResponse `json:"options"`
	LessonID   *string          `json:"lesson_id,omitempty"`
}

type SessionStateResponse struct {
	QuestionNumber   int              `json:"question_number"`
	TotalQuestions   int              `json:"total_questions"`
	ProgressPercent  int              `json:"progress_percent"`
	IsComplete       bool             `json:"is_complete"`
	IsLastQuestion   bool             `json:"is_last_question"`
	CurrentAnswered  bool             `json:"current_answered"`
	SelectedOptionID string           `json:"selected_option_id,omitempty"`
	Question         *SessionQuestion `json:"question,omitempty"`
}

type SelectAnswerRequest struct {
	OptionID string `json:"option_id"`
}

func (r *SelectAnswerRequest) Validate() error {
	if r.OptionID == "" {
		return errors.New("option_id is required")
	}
	return nil
}

type SubmitAnswerResponse struct {
	IsCorrect       bool   `json:"is_correct"`
	CorrectOptionID string `json:"correct_option_id"`
	Explanation     string `json:"explanation,omitempty"`
}

type TopicPerformanceResponse struct {
	Topic      string `json:"topic"`
	Total      int    `json:"total"`
	Correct    int    `json:"correct"`
	Percentage int    `json:"percentage"`
}

type SummaryResponse struct {
	TotalQuestions int                        `json:"total_questions"`
	CorrectCount   int                        `json:"correct_count"`
	Percentage     int                        `json:"percentage"`
	Topics         []TopicPerformanceResponse `json:"topics"`
	WeakestTopics  []TopicPerformanceResponse `json:"weakest_topics"`
}

type PreviewResponse struct {
	Count int `json:"count"`
}

// sessionStateLocked builds the state view. Caller must hold h.mu.
func (h *Handler) sessionStateLocked() SessionStateResponse {
	resp := SessionStateResponse{
		QuestionNumber:   h.engine.QuestionNumber(),
		TotalQuestions:   h.engine.TotalQuestions(),
		ProgressPercent:  h.engine.Progress(),
		IsComplete:       h.engine.IsComplete(),
		IsLastQuestion:   h.engine.IsLastQuestion(),
		CurrentAnswered:  h.engine.CurrentAnswered(),
		SelectedOptionID: h.engine.SelectedOption(),
	}

	if q := h.engine.CurrentQuestion(); q != nil {
		options := make([]OptionResponse, len(q.Options))
		for i, opt := range q.Options {
			options[i] = OptionResponse{ID: opt.ID, Text: opt.Text}
		}
		resp.Question = &SessionQuestion{
			ID:         q.ID,
			Subject:    q.Subject,
			Topic:      q.Topic,
			Difficulty: string(q.Difficulty),
			Prompt:     q.Prompt,
			Options:    options,
			LessonID:   q.LessonID,
		}
	}

	return resp
}

// ── Handlers ────────────────────────────────────────────────────────────────

// GET /practice/preview
func (h *Handler) previewCount(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := StartSessionRequest{
		CourseID:     query.Get("course_id"),
		OnlyMistakes: query.Get("only_mistakes") == "true",
	}
	if v := query.Get("topic"); v != "" {
		req.Topic = &v
	}
	if v := query.Get("difficulty"); v != "" {
		req.Difficulty = &v
	}
	if v := query.Get("lesson_id"); v != "" {
		req.LessonID = &v
	}
	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.mu.Lock()
	count, err := h.engine.PreviewCount(r.Context(), req.config())
	h.mu.Unlock()
	if err != nil {
		h.logger.Error("preview count failed", "course_id", req.CourseID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to count questions")
		return
	}

	respondJSON(w, http.StatusOK, PreviewResponse{Count: count})
}

// POST /practice/session
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.engine.Start(r.Context(), req.config()) {
		respondError(w, http.StatusBadRequest, "no questions match the filters")
		return
	}

	respondJSON(w, http.StatusCreated, h.sessionStateLocked())
}

// GET /practice/session
func (h *Handler) sessionState(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.engine.HasSession() {
		respondError(w, http.StatusNotFound, "no active session")
		return
	}
	respondJSON(w, http.StatusOK, h.sessionStateLocked())
}

// DELETE /practice/session
func (h *Handler) resetSession(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.engine.Reset()
	h.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// POST /practice/session/select
func (h *Handler) selectAnswer(w http.ResponseWriter, r *http.Request) {
	var req SelectAnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.engine.HasSession() {
		respondError(w, http.StatusNotFound, "no active session")
		return
	}
	h.engine.SelectAnswer(req.OptionID)
	respondJSON(w, http.StatusOK, h.sessionStateLocked())
}

// POST /practice/session/submit
func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.engine.HasSession() {
		respondError(w, http.StatusNotFound, "no active session")
		return
	}

	q := h.engine.CurrentQuestion()
	if _, ok := h.engine.SubmitAnswer(r.Context()); !ok {
		respondError(w, http.StatusBadRequest, "nothing selected for the current question")
		return
	}

	isCorrect, correctOptionID, _ := h.engine.CurrentResult()
	respondJSON(w, http.StatusOK, SubmitAnswerResponse{
		IsCorrect:       isCorrect,
		CorrectOptionID: correctOptionID,
		Explanation:     q.Explanation,
	})
}

// POST /practice/session/next
func (h *Handler) nextQuestion(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.engine.HasSession() {
		respondError(w, http.StatusNotFound, "no active session")
		return
	}
	h.engine.NextQuestion()
	respondJSON(w, http.StatusOK, h.sessionStateLocked())
}

// POST /practice/session/previous
func (h *Handler) previousQuestion(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.engine.HasSession() {
		respondError(w, http.StatusNotFound, "no active session")
		return
	}
	h.engine.PreviousQuestion()
	respondJSON(w, http.StatusOK, h.sessionStateLocked())
}

// POST /practice/session/complete
func (h *Handler) completeSession(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.engine.HasSession() {
		respondError(w, http.StatusNotFound, "no active session")
		return
	}
	h.engine.CompleteSession()
	respondJSON(w, http.StatusOK, h.sessionStateLocked())
}

// GET /practice/session/summary
func (h *Handler) sessionSummary(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	summary, ok := h.engine.Summary()
	h.mu.Unlock()

	if !ok {
		respondError(w, http.StatusNotFound, "no active session")
		return
	}

	respondJSON(w, http.StatusOK, SummaryResponse{
		TotalQuestions: summary.TotalQuestions,
		CorrectCount:   summary.CorrectCount,
		Percentage:     summary.Percentage,
		Topics:         toTopicResponses(summary.Topics),
		WeakestTopics:  toTopicResponses(summary.WeakestTopics),
	})
}

func toTopicResponses(topics []practice.TopicPerformance) []TopicPerformanceResponse {
	response := make([]TopicPerformanceResponse, 0, len(topics))
	for _, tp := range topics {
		response = append(response, TopicPerformanceResponse{
			Topic:      tp.Topic,
			Total:      tp.Total,
			Correct:    tp.Correct,
			Percentage: tp.Percentage,
		})
	}
	return response
}
