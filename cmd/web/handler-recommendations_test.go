package main

import (
	"net/http"
	"testing"

	"github.com/myrjola/repquest/internal/e2etest"
	"github.com/myrjola/repquest/internal/recommend"
	"github.com/myrjola/repquest/internal/testhelpers"
)

func Test_application_recommendations(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv(t), run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	client := server.Client()

	if _, err = client.Register(ctx, 80); err != nil {
		t.Fatalf("Failed to register: %v", err)
	}

	type recommendationsResponse struct {
		Exercises []recommend.ScoredExercise `json:"exercises"`
	}

	t.Run("Covers the whole catalog", func(t *testing.T) {
		var out recommendationsResponse
		resp, err := client.GetJSON(ctx, "/api/recommendations", &out)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", resp.StatusCode)
		}
		if len(out.Exercises) == 0 {
			t.Fatal("Expected recommendations for the seeded catalog")
		}
		for i := 1; i < len(out.Exercises); i++ {
			if out.Exercises[i-1].Score < out.Exercises[i].Score {
				t.Fatalf("Expected descending scores, got %f before %f",
					out.Exercises[i-1].Score, out.Exercises[i].Score)
			}
		}
	})

	t.Run("In-session exercise drops to the bottom", func(t *testing.T) {
		bench := findExercise(t, client, "Barbell Bench Press")
		if _, err := client.PostJSON(ctx, "/api/workouts/start",
			map[string]string{"goal": "hypertrophy"}, nil); err != nil {
			t.Fatalf("Failed to start session: %v", err)
		}
		if _, err := client.PostJSON(ctx, "/api/workouts/sets", map[string]any{
			"exercise_id": bench.ID,
			"weight_kg":   100.0,
			"reps":        8,
		}, nil); err != nil {
			t.Fatalf("Failed to log set: %v", err)
		}

		var out recommendationsResponse
		resp, err := client.GetJSON(ctx, "/api/recommendations", &out)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", resp.StatusCode)
		}
		if len(out.Exercises) == 0 {
			t.Fatal("Expected recommendations")
		}
		last := out.Exercises[len(out.Exercises)-1]
		if last.Candidate.ExerciseID != bench.ID {
			t.Errorf("Expected the already-logged exercise last, got exercise %d", last.Candidate.ExerciseID)
		}
		if last.AlreadyDone >= 0 {
			t.Errorf("Expected an already-done penalty, got %f", last.AlreadyDone)
		}
	})
}
