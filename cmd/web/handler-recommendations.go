package main

import (
	"net/http"

	"github.com/myrjola/repquest/internal/recommend"
)

type recommendationsResponse struct {
	Exercises []recommend.ScoredExercise `json:"exercises"`
}

// recommendationsGET ranks the exercise catalog for what the user should do
// next, highest score first.
func (app *application) recommendationsGET(w http.ResponseWriter, r *http.Request) {
	scored, err := app.workoutService.Recommendations(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, recommendationsResponse{Exercises: scored})
}
