package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ilmhub/quizhub/internal/quiz"
)

func CreateQuestionHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quiz.CreateQuestionRequest
		if err := decodeBody(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		q, err := svc.CreateQuestion(r.Context(), req)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, q)
	}
}

// ListQuestionsHandler is admin-only: it returns questions with their answer
// key, for review while composing a day.
func ListQuestionsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs, err := store.ListQuestions(r.Context(), chi.URLParam(r, "quizDayID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, qs)
	}
}
