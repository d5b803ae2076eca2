package main

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/myrjola/repquest/internal/errors"
	"github.com/myrjola/repquest/internal/workout"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var exerciseInfoTemplate = template.Must(template.New("exercise-info").Parse(`<!doctype html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <title>{{.Name}}</title>
</head>
<body>
<h1>{{.Name}}</h1>
<p>Primary muscle: {{.PrimaryMuscle}}</p>
<main>{{.Description}}</main>
</body>
</html>
`))

type exerciseInfoData struct {
	Name          string
	PrimaryMuscle string
	Description   template.HTML
}

// markdown renders the trusted, server-authored exercise descriptions.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// exerciseInfoGET renders the exercise's description as an HTML page. This is
// the one HTML surface; mobile clients open it in a web view.
func (app *application) exerciseInfoGET(w http.ResponseWriter, r *http.Request) {
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

	var rendered bytes.Buffer
	if err = markdown.Convert([]byte(exercise.DescriptionMarkdown), &rendered); err != nil {
		app.serverError(w, r, fmt.Errorf("render exercise description: %w", err))
		return
	}

	data := exerciseInfoData{
		Name:          exercise.Name,
		PrimaryMuscle: exercise.PrimaryMuscle,
		Description:   template.HTML(rendered.String()), //nolint:gosec // descriptions are authored server-side.
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	var page bytes.Buffer
	if err = exerciseInfoTemplate.Execute(&page, data); err != nil {
		app.serverError(w, r, fmt.Errorf("render exercise info page: %w", err))
		return
	}
	_, _ = page.WriteTo(w)
}
