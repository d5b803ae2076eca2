package main

import (
	"net/http"

	"github.com/myrjola/repquest/internal/workout"
)

type progressResponse struct {
	Muscles []workout.MuscleSnapshot `json:"muscles"`
}

// progressGET returns the user's per-muscle leveling state with decay applied
// up to the time of the request.
func (app *application) progressGET(w http.ResponseWriter, r *http.Request) {
	snapshots, err := app.workoutService.Progress(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, progressResponse{Muscles: snapshots})
}
