package main

import (
	"net/http"

	"github.com/myrjola/repquest/internal/errors"
	"github.com/myrjola/repquest/internal/scoring"
	"github.com/myrjola/repquest/internal/workout"
)

type workoutStartRequest struct {
	Goal string `json:"goal"`
}

// workoutStartPOST opens a new workout session under the requested goal.
func (app *application) workoutStartPOST(w http.ResponseWriter, r *http.Request) {
	var req workoutStartRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}

	goal := scoring.GoalBucket(req.Goal)
	switch goal {
	case scoring.GoalStrength, scoring.GoalHypertrophy, scoring.GoalEndurance:
	default:
		app.clientError(w, r, http.StatusBadRequest, "goal must be one of strength, hypertrophy, endurance")
		return
	}

	session, err := app.workoutService.StartSession(r.Context(), goal)
	if err != nil {
		if errors.Is(err, workout.ErrSessionInProgress) {
			app.clientError(w, r, http.StatusConflict, "a workout session is already in progress")
			return
		}
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusCreated, session)
}

type workoutCurrentResponse struct {
	Session workout.Session     `json:"session"`
	Sets    []workout.LoggedSet `json:"sets"`
}

// workoutCurrentGET returns the session in progress with its logged sets.
func (app *application) workoutCurrentGET(w http.ResponseWriter, r *http.Request) {
	session, sets, err := app.workoutService.ActiveSession(r.Context())
	if err != nil {
		if errors.Is(err, workout.ErrNoActiveSession) {
			app.clientError(w, r, http.StatusNotFound, "no active workout session")
			return
		}
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, workoutCurrentResponse{Session: session, Sets: sets})
}

type workoutSetRequest struct {
	ExerciseID int64    `json:"exercise_id"`
	WeightKg   *float64 `json:"weight_kg,omitempty"`
	Reps       int      `json:"reps"`
}

// workoutSetPOST scores and logs one set in the active session.
func (app *application) workoutSetPOST(w http.ResponseWriter, r *http.Request) {
	var req workoutSetRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}
	if req.Reps < 1 {
		app.clientError(w, r, http.StatusBadRequest, "reps must be at least 1")
		return
	}
	if req.WeightKg != nil && *req.WeightKg <= 0 {
		app.clientError(w, r, http.StatusBadRequest, "weight_kg must be positive when present")
		return
	}

	result, err := app.workoutService.LogSet(r.Context(), req.ExerciseID, req.WeightKg, req.Reps)
	if err != nil {
		switch {
		case errors.Is(err, workout.ErrNoActiveSession):
			app.clientError(w, r, http.StatusConflict, "no active workout session")
		case errors.Is(err, workout.ErrNotFound):
			app.clientError(w, r, http.StatusNotFound, "exercise not found")
		default:
			app.serverError(w, r, err)
		}
		return
	}

	app.writeJSON(w, r, http.StatusCreated, result)
}

// workoutCompletePOST closes the active session and awards the completion
// bonus when the session qualifies.
func (app *application) workoutCompletePOST(w http.ResponseWriter, r *http.Request) {
	result, err := app.workoutService.CompleteSession(r.Context())
	if err != nil {
		if errors.Is(err, workout.ErrNoActiveSession) {
			app.clientError(w, r, http.StatusConflict, "no active workout session")
			return
		}
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, result)
}
