package main

import (
	"net/http"

	"github.com/myrjola/repquest/internal/contexthelpers"
)

type registerRequest struct {
	BodyweightKg float64 `json:"bodyweight_kg"`
}

type registerResponse struct {
	UserID string `json:"user_id"`
}

// registerPOST creates an anonymous user account bound to the session cookie.
// Repeated calls on an already-registered session are a no-op.
func (app *application) registerPOST(w http.ResponseWriter, r *http.Request) {
	if contexthelpers.IsRegistered(r.Context()) {
		app.clientError(w, r, http.StatusConflict, "already registered")
		return
	}

	var req registerRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}
	if req.BodyweightKg <= 0 {
		app.clientError(w, r, http.StatusBadRequest, "bodyweight_kg must be positive")
		return
	}

	userID, publicID, err := app.workoutService.Register(r.Context(), req.BodyweightKg)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	// Renew the session token on privilege change to prevent session fixation.
	if err = app.sessionManager.RenewToken(r.Context()); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.sessionManager.Put(r.Context(), sessionUserIDKey, userID)

	app.writeJSON(w, r, http.StatusCreated, registerResponse{UserID: publicID})
}
