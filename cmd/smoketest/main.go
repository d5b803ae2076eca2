package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/myrjola/repquest/internal/e2etest"
	"github.com/myrjola/repquest/internal/logging"
	"github.com/myrjola/repquest/internal/testhelpers"
)

// TestWorkoutFlow registers a fresh account and runs one tiny workout through
// the API to prove the deployment is alive end to end.
func TestWorkoutFlow(client *e2etest.Client) error {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()
	var err error

	if _, err = client.Register(ctx, 80); err != nil {
		return fmt.Errorf("register user: %w", err)
	}

	var resp *http.Response
	if resp, err = client.PostJSON(ctx, "/api/workouts/start",
		map[string]string{"goal": "hypertrophy"}, nil); err != nil {
		return fmt.Errorf("start workout: %w", err)
	}
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("start workout: unexpected status code: %d", resp.StatusCode)
	}

	var exercises struct {
		Exercises []struct {
			ID int64 `json:"id"`
		} `json:"exercises"`
	}
	if resp, err = client.GetJSON(ctx, "/api/exercises", &exercises); err != nil {
		return fmt.Errorf("list exercises: %w", err)
	}
	if resp.StatusCode != http.StatusOK || len(exercises.Exercises) == 0 {
		return fmt.Errorf("list exercises: status %d with %d exercises", resp.StatusCode, len(exercises.Exercises))
	}

	if resp, err = client.PostJSON(ctx, "/api/workouts/sets", map[string]any{
		"exercise_id": exercises.Exercises[0].ID,
		"weight_kg":   20.0,
		"reps":        10,
	}, nil); err != nil {
		return fmt.Errorf("log set: %w", err)
	}
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("log set: unexpected status code: %d", resp.StatusCode)
	}

	if resp, err = client.PostJSON(ctx, "/api/workouts/complete", nil, nil); err != nil {
		return fmt.Errorf("complete workout: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("complete workout: unexpected status code: %d", resp.StatusCode)
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		client   *e2etest.Client
		err      error
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	if client, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", slog.Any("error", err))
		os.Exit(1)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}
	if err = TestWorkoutFlow(client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing workout flow", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌", slog.Duration("duration", time.Since(start)))
	os.Exit(0)
}
