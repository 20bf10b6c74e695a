package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ilmhub/quizhub/internal/auth"
	"github.com/ilmhub/quizhub/internal/quiz"
)

func CreateModuleHandler(svc *quiz.Service) http.HandlerFunc {
	type request struct {
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
		Section     string `json:"section" validate:"required"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		m, err := svc.CreateModule(r.Context(), auth.SubjectFromContext(r.Context()),
			req.Name, req.Description, req.Section)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	}
}

// ListModulesHandler serves both surfaces: admins get creator names attached,
// participants get the bare list.
func ListModulesHandler(svc *quiz.Service, withCreator bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mods, err := svc.ListModules(r.Context(), withCreator)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, mods)
	}
}

func GetModuleHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := svc.GetModuleDetail(r.Context(), chi.URLParam(r, "moduleID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

func UpdateModuleHandler(svc *quiz.Service) http.HandlerFunc {
	type request struct {
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		m, err := svc.UpdateModule(r.Context(), chi.URLParam(r, "moduleID"), req.Name, req.Description)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func DeleteModuleHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteModule(r.Context(), chi.URLParam(r, "moduleID")); err != nil {
			writeErr(w, err)
			return
		}
		writeMessage(w, http.StatusOK, "Module deleted successfully")
	}
}
