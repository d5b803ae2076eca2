package main

import (
	"net/http"

	"github.com/myrjola/repquest/internal/errors"
	"github.com/myrjola/repquest/internal/workout"
)

type exercisesResponse struct {
	Exercises []workout.Exercise `json:"exercises"`
}

// exercisesGET returns the exercise catalog.
func (app *application) exercisesGET(w http.ResponseWriter, r *http.Request) {
	exercises, err := app.workoutService.ListExercises(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, exercisesResponse{Exercises: exercises})
}

// exerciseGET returns one exercise.
func (app *application) exerciseGET(w http.ResponseWriter, r *http.Request) {
	exerciseID, ok := app.parseExerciseIDParam(w, r)
	if !ok {
		return
	}

	exercise, err := app.workoutService.GetExercise(r.Context(), exerciseID)
	if err != nil {
		if errors.Is(err, workout.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, exercise)
}
