package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ilmhub/quizhub/internal/auth"
	"github.com/ilmhub/quizhub/internal/eventlog"
	"github.com/ilmhub/quizhub/internal/leaderboard"
	"github.com/ilmhub/quizhub/internal/quiz"
)

func ModuleEvaluationHandler(svc *leaderboard.Service, store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		moduleID := chi.URLParam(r, "moduleID")
		if _, err := store.GetModule(r.Context(), moduleID); err != nil {
			writeErr(w, err)
			return
		}
		eval, err := svc.EvaluateModule(r.Context(), moduleID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, eval)
	}
}

func GlobalLeaderboardHandler(svc *leaderboard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.Global(r.Context(), r.URL.Query().Get("section"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func ModuleLeaderboardHandler(svc *leaderboard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.Module(r.Context(), chi.URLParam(r, "moduleID"), r.URL.Query().Get("section"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

// ParticipantsByDayHandler lists a day's submissions ranked by score then
// completion time.
func ParticipantsByDayHandler(svc *leaderboard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subs, err := svc.ParticipantsByDay(r.Context(), chi.URLParam(r, "quizDayID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, subs)
	}
}

// ParticipantProfileHandler combines a user's public fields with their
// submission history.
func ParticipantProfileHandler(authSvc *auth.Service, quizSvc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		u, err := authSvc.GetUser(r.Context(), userID)
		if err != nil {
			writeErr(w, err)
			return
		}
		subs, err := quizSvc.MySubmissions(r.Context(), userID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": u, "submissions": subs})
	}
}

// RecentEventsHandler exposes the audit trail, newest first.
func RecentEventsHandler(repo *eventlog.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntDefault(r.URL.Query().Get("limit"), 100)
		events, err := repo.Recent(r.Context(), limit)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, events)
	}
}
