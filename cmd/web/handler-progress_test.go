package main

import (
	"net/http"
	"testing"

	"github.com/myrjola/repquest/internal/e2etest"
	"github.com/myrjola/repquest/internal/testhelpers"
	"github.com/myrjola/repquest/internal/workout"
)

func Test_application_progress(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv(t), run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	client := server.Client()

	if _, err = client.Register(ctx, 80); err != nil {
		t.Fatalf("Failed to register: %v", err)
	}

	type progressResponse struct {
		Muscles []workout.MuscleSnapshot `json:"muscles"`
	}

	t.Run("Empty before training", func(t *testing.T) {
		var out progressResponse
		resp, err := client.GetJSON(ctx, "/api/progress", &out)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", resp.StatusCode)
		}
		if len(out.Muscles) != 0 {
			t.Errorf("Expected no muscle progress, got %d entries", len(out.Muscles))
		}
	})

	t.Run("Training grows the primary muscle", func(t *testing.T) {
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

		var out progressResponse
		resp, err := client.GetJSON(ctx, "/api/progress", &out)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", resp.StatusCode)
		}
		if len(out.Muscles) != 1 {
			t.Fatalf("Expected 1 muscle entry, got %d", len(out.Muscles))
		}
		chest := out.Muscles[0]
		if chest.Muscle != "chest" {
			t.Errorf("Expected chest progress, got %q", chest.Muscle)
		}
		// 1680 XP clears the 1000 XP first level with 680 left over.
		if chest.Level != 1 {
			t.Errorf("Expected level 1, got %d", chest.Level)
		}
		if chest.XPIntoLevel != 680 {
			t.Errorf("Expected 680 XP into level, got %d", chest.XPIntoLevel)
		}
		if chest.TotalXP != 1680 {
			t.Errorf("Expected 1680 total XP, got %d", chest.TotalXP)
		}
		if chest.NextLevelXP == 0 {
			t.Error("Expected a next level cost below the level cap")
		}
		if chest.LastTrained == nil {
			t.Error("Expected last trained timestamp")
		}
	})
}
