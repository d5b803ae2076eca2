package main

import (
	"net/http"
)

type bodyweightRequest struct {
	BodyweightKg float64 `json:"bodyweight_kg"`
}

// bodyweightPOST updates the user's bodyweight used for bodyweight-exercise
// effective load.
func (app *application) bodyweightPOST(w http.ResponseWriter, r *http.Request) {
	var req bodyweightRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}
	if req.BodyweightKg <= 0 {
		app.clientError(w, r, http.StatusBadRequest, "bodyweight_kg must be positive")
		return
	}

	if err := app.workoutService.SetBodyweight(r.Context(), req.BodyweightKg); err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
