// Package handlers provides HTTP handlers for API endpoints
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"sewa-attendance/internal/models"
	"sewa-attendance/internal/services"
)

var validate = newValidator()

// newValidator adds the "hhmm" tag for zero-padded 24-hour times
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return models.ValidTime(fl.Field().String())
	})
	return v
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
// It writes a 400 response and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, "Invalid input")
			return false
		}
		fields := make(map[string]string, len(ve))
		for _, fe := range ve {
			fields[fe.Field()] = fe.Tag()
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Validation failed", Fields: fields})
		return false
	}
	return true
}

// dateParam returns the date query parameter, defaulting to today
func dateParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	date := r.URL.Query().Get("date")
	if date == "" {
		return models.TodayKey(), true
	}
	if !models.ValidDate(date) {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return "", false
	}
	return date, true
}

// writeDeskError maps attendance desk errors to HTTP status codes
func writeDeskError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidName), errors.Is(err, services.ErrInvalidRecord):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrShiftComplete):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
