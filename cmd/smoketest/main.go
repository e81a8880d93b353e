package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/myrjola/interrogation/internal/e2etest"
	"github.com/myrjola/interrogation/internal/errors"
	"github.com/myrjola/interrogation/internal/logging"
)

func expectStatus(resp e2etest.Response, status int) error {
	if resp.StatusCode != status {
		return errors.New("unexpected status",
			slog.Int("want", status), slog.Int("got", resp.StatusCode), slog.String("body", string(resp.Body)))
	}
	return nil
}

// TestInterrogation starts a session of the first scenario and questions its first suspect once.
func TestInterrogation(ctx context.Context, client *e2etest.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second) //nolint:mnd // a real reply can take a while.
	defer cancel()

	resp, err := client.Get(ctx, "/api/scenarios")
	if err != nil {
		return errors.Wrap(err, "list scenarios")
	}
	if err = expectStatus(resp, http.StatusOK); err != nil {
		return errors.Wrap(err, "list scenarios")
	}
	var scenarios struct {
		Scenarios []struct {
			ID int64 `json:"id"`
		} `json:"scenarios"`
	}
	if err = resp.Decode(&scenarios); err != nil {
		return err
	}
	if len(scenarios.Scenarios) == 0 {
		return errors.New("no scenarios loaded")
	}

	if resp, err = client.Post(ctx, "/api/sessions",
		map[string]int64{"scenario_id": scenarios.Scenarios[0].ID}); err != nil {
		return errors.Wrap(err, "create session")
	}
	if err = expectStatus(resp, http.StatusCreated); err != nil {
		return errors.Wrap(err, "create session")
	}
	var overview struct {
		SessionID int64 `json:"session_id"`
		Suspects  []struct {
			ID int64 `json:"id"`
		} `json:"suspects"`
	}
	if err = resp.Decode(&overview); err != nil {
		return err
	}
	if len(overview.Suspects) == 0 {
		return errors.New("scenario has no suspects")
	}

	path := fmt.Sprintf("/api/sessions/%d/suspects/%d/messages", overview.SessionID, overview.Suspects[0].ID)
	if resp, err = client.Post(ctx, path, map[string]string{"text": "Where were you last night?"}); err != nil {
		return errors.Wrap(err, "interrogate")
	}
	if err = expectStatus(resp, http.StatusOK); err != nil {
		return errors.Wrap(err, "interrogate")
	}
	return nil
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only the base URL to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <base-url>")
		os.Exit(1)
	}

	url := os.Args[1]
	ctx = logging.WithAttrs(ctx, slog.String("url", url))
	client := e2etest.NewClient(url)

	if err := client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready", errors.SlogError(err))
		os.Exit(1)
	}
	if err := TestInterrogation(ctx, client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing interrogation", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}
