package http

import (
	"net/http"

	"github.com/ilmhub/quizhub/internal/auth"
	"github.com/ilmhub/quizhub/internal/quiz"
)

// FetchQuizHandler serves the quiz-taking payload for the requested day, or
// the latest published active day when no quizDayId is given.
func FetchQuizHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.FetchQuiz(r.Context(),
			auth.SubjectFromContext(r.Context()), r.URL.Query().Get("quizDayId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func SubmitQuizHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quiz.SubmitRequest
		if err := decodeBody(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		sub, err := svc.Submit(r.Context(), auth.SubjectFromContext(r.Context()), req)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}

func MySubmissionsHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subs, err := svc.MySubmissions(r.Context(), auth.SubjectFromContext(r.Context()))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, subs)
	}
}
