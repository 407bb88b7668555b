package api

import "net/http"

// RegisterRoutes attaches every API route to mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Courses
	mux.HandleFunc("POST /courses", h.createCourse)
	mux.HandleFunc("GET /courses", h.listCourses)
	mux.HandleFunc("GET /courses/{courseID}", h.getCourse)
	mux.HandleFunc("PUT /courses/{courseID}", h.updateCourse)
	mux.HandleFunc("DELETE /courses/{courseID}", h.deleteCourse)

	// Lessons
	mux.HandleFunc("POST /courses/{courseID}/lessons", h.createLesson)
	mux.HandleFunc("GET /courses/{courseID}/lessons", h.listLessons)
	mux.HandleFunc("DELETE /lessons/{lessonID}", h.deleteLesson)

	// Questions
	mux.HandleFunc("POST /courses/{courseID}/questions", h.addQuestion)
	mux.HandleFunc("GET /courses/{courseID}/questions", h.listQuestions)
	mux.HandleFunc("GET /questions/{questionID}", h.getQuestion)
	mux.HandleFunc("DELETE /questions/{questionID}", h.deleteQuestion)

	// Attempt history
	mux.HandleFunc("GET /courses/{courseID}/attempts", h.listAttempts)

	// Practice session (one active session per server)
	mux.HandleFunc("GET /practice/preview", h.previewCount)
	mux.HandleFunc("POST /practice/session", h.startSession)
	mux.HandleFunc("GET /practice/session", h.sessionState)
	mux.HandleFunc("DELETE /practice/session", h.resetSession)
	mux.HandleFunc("POST /practice/session/select", h.selectAnswer)
	mux.HandleFunc("POST /practice/session/submit", h.submitAnswer)
	mux.HandleFunc("POST /practice/session/next", h.nextQuestion)
	mux.HandleFunc("POST /practice/session/previous", h.previousQuestion)
	mux.HandleFunc("POST /practice/session/complete", h.completeSession)
	mux.HandleFunc("GET /practice/session/summary", h.sessionSummary)

	// Content transfer
	mux.HandleFunc("GET /export", h.exportAll)
	mux.HandleFunc("POST /import", h.importAll)
}
