package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tvu/careboard/internal/api"
	"github.com/tvu/careboard/internal/app"
	"github.com/tvu/careboard/internal/board"
	"github.com/tvu/careboard/internal/credential"
	"github.com/tvu/careboard/internal/model"
	"github.com/tvu/careboard/internal/store"
	"github.com/tvu/careboard/internal/watch"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "careboard:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := model.LoadConfig(model.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	dbPath, err := databasePath()
	if err != nil {
		return err
	}
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer s.Close()

	retention := time.Duration(cfg.Notifications.RetentionHours) * time.Hour
	if err := s.PruneNotificationsOlderThan(context.Background(), retention); err != nil {
		return fmt.Errorf("pruning notifications: %w", err)
	}

	// A stored token that still decodes and has not expired skips the
	// sign-in form. Anything else falls through to ViewLogin.
	token, _ := credential.Get(credential.TokenKey)
	if credential.TokenExpired(token) {
		token = ""
	}

	client := api.NewClient(cfg.Server.BaseURL, token)

	var user *model.User
	if token != "" {
		u, err := client.CurrentUser(context.Background())
		if err == nil {
			user = u
		} else {
			client.SetToken("")
		}
	}

	scanInterval := time.Duration(cfg.Notifications.ScanIntervalSec) * time.Second
	watcher := watch.New(s, scanInterval)
	controller := board.New(client, s, watcher)

	root := app.New(app.Deps{
		Store:           s,
		Client:          client,
		Controller:      controller,
		Watcher:         watcher,
		User:            user,
		RefreshInterval: scanInterval,
	})

	program := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}

// databasePath returns the sqlite file path, creating the config
// directory when missing.
func databasePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	dir := filepath.Join(home, ".config", "careboard")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return filepath.Join(dir, "careboard.db"), nil
}
