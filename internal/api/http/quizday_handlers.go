package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ilmhub/quizhub/internal/quiz"
)

// UpsertQuizDayHandler creates a day under a module, or patches label and
// active flag when an id is supplied.
func UpsertQuizDayHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quiz.UpsertQuizDayRequest
		if err := decodeBody(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		d, err := svc.UpsertQuizDay(r.Context(), req)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

func ListQuizDaysHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, err := svc.ListQuizDays(r.Context(), r.URL.Query().Get("moduleId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, days)
	}
}

// ListPublishedQuizDaysHandler is the participant listing. With a moduleID
// path param it is scoped to that module, otherwise it spans all modules.
func ListPublishedQuizDaysHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, err := svc.ListPublishedQuizDays(r.Context(), chi.URLParam(r, "moduleID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, days)
	}
}

// SetQuizDayFlagHandler toggles one admin-controlled flag. The body field name
// follows the flag so the client reads naturally: {"isPublished": true}.
func SetQuizDayFlagHandler(svc *quiz.Service, flag quiz.Flag, field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]*bool
		if err := decodeBody(r, &body); err != nil {
			writeErr(w, err)
			return
		}
		value := body[field]
		if value == nil {
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		d, err := svc.SetQuizDayFlag(r.Context(), chi.URLParam(r, "quizDayID"), flag, *value)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}
