package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/myrjola/repquest/internal/errors"
)

// writeJSON writes the payload with the given status.
func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		app.serverError(w, r, fmt.Errorf("marshal response: %w", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// decodeJSON decodes the request body into dst, rejecting unknown fields.
// On failure it writes a 400 response and returns false.
func (app *application) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		app.clientError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid request body: %s", err))
		return false
	}
	return true
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	app.writeJSON(w, r, http.StatusInternalServerError, map[string]string{
		"error": http.StatusText(http.StatusInternalServerError),
	})
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.logger.LogAttrs(r.Context(), slog.LevelDebug, "client error",
		slog.Int("status", status), slog.String("message", message))
	app.writeJSON(w, r, status, map[string]string{"error": message})
}

// parseExerciseIDParam parses the "exerciseID" path parameter from the request URL.
// On failure, sends HTTP 404 response automatically.
func (app *application) parseExerciseIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	exerciseIDStr := r.PathValue("exerciseID")
	exerciseID, err := strconv.ParseInt(exerciseIDStr, 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return exerciseID, true
}
