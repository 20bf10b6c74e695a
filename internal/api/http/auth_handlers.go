package http

import (
	"errors"
	"net/http"

	"github.com/ilmhub/quizhub/internal/auth"
)

func SignupHandler(svc *auth.Service) http.HandlerFunc {
	type request struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		u, tok, err := svc.Signup(r.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"token": tok, "user": u.PublicView()})
	}
}

func LoginHandler(svc *auth.Service) http.HandlerFunc {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		u, tok, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"token": tok, "user": u.PublicView()})
	}
}

func MeHandler(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := svc.GetUser(r.Context(), auth.SubjectFromContext(r.Context()))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

func UpdateProfileHandler(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var up auth.ProfileUpdate
		if err := decodeBody(r, &up); err != nil {
			writeErr(w, err)
			return
		}
		u, err := svc.UpdateProfile(r.Context(), auth.SubjectFromContext(r.Context()), up)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

func ChangePasswordHandler(svc *auth.Service) http.HandlerFunc {
	type request struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		err := svc.ChangePassword(r.Context(), auth.SubjectFromContext(r.Context()), req.OldPassword, req.NewPassword)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeMessage(w, http.StatusForbidden, "Current password is incorrect")
			return
		}
		if err != nil {
			writeErr(w, err)
			return
		}
		writeMessage(w, http.StatusOK, "Password updated successfully")
	}
}

// ListParticipantsHandler lists every account with the participant role.
func ListParticipantsHandler(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.ListUsersByRole(r.Context(), "user")
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}
