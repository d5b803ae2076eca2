package main

import (
	"net/http"

	"github.com/myrjola/repquest/internal/charm"
	"github.com/myrjola/repquest/internal/errors"
	"github.com/myrjola/repquest/internal/workout"
)

type charmsResponse struct {
	Charms []charm.Definition `json:"charms"`
}

// charmsGET returns the full charm catalog.
func (app *application) charmsGET(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, r, http.StatusOK, charmsResponse{Charms: app.workoutService.CharmCatalog()})
}

// equippedCharmsGET returns the user's equipped charms in equip order.
func (app *application) equippedCharmsGET(w http.ResponseWriter, r *http.Request) {
	defs, err := app.workoutService.EquippedCharms(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, charmsResponse{Charms: defs})
}

type equipCharmsRequest struct {
	CharmIDs []string `json:"charm_ids"`
}

// equippedCharmsPUT replaces the user's equipped charm set.
func (app *application) equippedCharmsPUT(w http.ResponseWriter, r *http.Request) {
	var req equipCharmsRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}
	if len(req.CharmIDs) > workout.MaxEquippedCharms {
		app.clientError(w, r, http.StatusBadRequest, "too many charms")
		return
	}

	if err := app.workoutService.EquipCharms(r.Context(), req.CharmIDs); err != nil {
		switch {
		case errors.Is(err, workout.ErrNotFound):
			app.clientError(w, r, http.StatusNotFound, err.Error())
		case errors.Is(err, workout.ErrCharmLocked):
			app.clientError(w, r, http.StatusForbidden, err.Error())
		default:
			app.serverError(w, r, err)
		}
		return
	}

	defs, err := app.workoutService.EquippedCharms(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, charmsResponse{Charms: defs})
}
