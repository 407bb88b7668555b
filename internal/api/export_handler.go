package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/studydeck/backend/internal/domain/course"
	"github.com/studydeck/backend/internal/domain/question"
)

// ── Request / Response types ────────────────────────────────────────────────

type ExportOption struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct,omitempty"`
}

type ExportQuestion struct {
	Subject     string         `json:"subject,omitempty"`
	Topic       string         `json:"topic"`
	Difficulty  string         `json:"difficulty"`
	Prompt      string         `json:"prompt"`
	Options     []ExportOption `json:"options"`
	Explanation string         `json:"explanation,omitempty"`
}

type ExportCourse struct {
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Questions   []ExportQuestion `json:"questions"`
}

type ExportData struct {
	Version    string         `json:"version"`
	ExportedAt string         `json:"exported_at"`
	Courses    []ExportCourse `json:"courses"`
}

type ImportResult struct {
	CoursesCreated   int `json:"courses_created"`
	QuestionsCreated int `json:"questions_created"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// GET /export
func (h *Handler) exportAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courses, err := h.store.ListCourses(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load courses")
		return
	}

	exportData := ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Courses:    make([]ExportCourse, 0),
	}

	for _, c := range courses {
		questions, err := h.store.ListQuestions(ctx, c.ID)
		if err != nil {
			continue
		}

		exportCourse := ExportCourse{
			Title:       c.Title,
			Description: c.Description,
			Questions:   make([]ExportQuestion, len(questions)),
		}

		for i, q := range questions {
			options := make([]ExportOption, len(q.Options))
			for j, opt := range q.Options {
				options[j] = ExportOption{
					Text:    opt.Text,
					Correct: opt.ID == q.CorrectOptionID,
				}
			}
			exportCourse.Questions[i] = ExportQuestion{
				Subject:     q.Subject,
				Topic:       q.Topic,
				Difficulty:  string(q.Difficulty),
				Prompt:      q.Prompt,
				Options:     options,
				Explanation: q.Explanation,
			}
		}

		exportData.Courses = append(exportData.Courses, exportCourse)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=studydeck-export.json")
	json.NewEncoder(w).Encode(exportData)
}

// POST /import
func (h *Handler) importAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var importData ExportData
	if !decodeJSON(w, r, &importData) {
		return
	}

	result := ImportResult{}

	for _, exportCourse := range importData.Courses {
		newCourse := course.New(exportCourse.Title)
		newCourse.Description = exportCourse.Description
		if err := h.store.SaveCourse(ctx, newCourse); err != nil {
			h.logger.Error("failed to create course", "title", exportCourse.Title, "error", err)
			continue
		}
		result.CoursesCreated++

		for _, eq := range exportCourse.Questions {
			q := question.New(newCourse.ID, eq.Subject, eq.Topic, question.Difficulty(eq.Difficulty), eq.Prompt)
			q.Explanation = eq.Explanation
			for _, eo := range eq.Options {
				opt := q.AddOption(eo.Text)
				if eo.Correct {
					q.CorrectOptionID = opt.ID
				}
			}

			if err := q.Validate(); err != nil {
				h.logger.Error("skipping invalid question", "prompt", eq.Prompt, "error", err)
				continue
			}
			if err := h.store.SaveQuestion(ctx, q); err != nil {
				h.logger.Error("failed to save question", "error", err)
				continue
			}
			result.QuestionsCreated++
		}
	}

	respondJSON(w, http.StatusCreated, result)
}
