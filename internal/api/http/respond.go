package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"reflect"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/ilmhub/quizhub/internal/auth"
	"github.com/ilmhub/quizhub/internal/materials"
	"github.com/ilmhub/quizhub/internal/quiz"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeErr maps domain errors to status codes and client-safe messages.
func writeErr(w http.ResponseWriter, err error) {
	var authVal *auth.ValidationError
	var quizVal quiz.ValidationError
	var matVal materials.ValidationError
	switch {
	case errors.As(err, &authVal):
		writeMessage(w, http.StatusBadRequest, authVal.Msg)
	case errors.As(err, &quizVal):
		writeMessage(w, http.StatusBadRequest, quizVal.Msg)
	case errors.As(err, &matVal):
		writeMessage(w, http.StatusBadRequest, matVal.Msg)
	case errors.Is(err, auth.ErrEmailTaken):
		writeMessage(w, http.StatusBadRequest, "Email already in use")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, auth.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, "User not found")
	case errors.Is(err, quiz.ErrModuleNotFound):
		writeMessage(w, http.StatusNotFound, "Module not found")
	case errors.Is(err, quiz.ErrQuizDayNotFound):
		writeMessage(w, http.StatusNotFound, "Quiz day not found")
	case errors.Is(err, quiz.ErrNoPublishedQuiz):
		writeMessage(w, http.StatusNotFound, "No published quiz found")
	case errors.Is(err, quiz.ErrNotPublished):
		writeMessage(w, http.StatusForbidden, "Quiz is not published")
	case errors.Is(err, quiz.ErrResponsesClosed):
		writeMessage(w, http.StatusForbidden, "Responses are closed for this quiz")
	case errors.Is(err, quiz.ErrSubmissionNotFound):
		writeMessage(w, http.StatusNotFound, "Submission not found")
	case errors.Is(err, materials.ErrNotPDF):
		writeMessage(w, http.StatusBadRequest, "Only PDF uploads are allowed")
	case errors.Is(err, materials.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Material not found")
	default:
		log.Printf("http: unexpected error: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}

// decodeBody decodes JSON and, for struct payloads, runs tag validation.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return quiz.ValidationError{Msg: "Invalid request body"}
	}
	if v := reflect.Indirect(reflect.ValueOf(dst)); v.Kind() == reflect.Struct {
		if err := validate.Struct(dst); err != nil {
			return quiz.ValidationError{Msg: "Invalid request body"}
		}
	}
	return nil
}
