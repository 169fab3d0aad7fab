package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/nhle/maildeck/internal/api"
	"github.com/nhle/maildeck/internal/app"
	"github.com/nhle/maildeck/internal/credential"
	"github.com/nhle/maildeck/internal/model"
	"github.com/nhle/maildeck/internal/session"
	"github.com/nhle/maildeck/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "maildeck:", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := model.DefaultConfigPath()
	cfg, err := model.LoadConfig(cfgPath)
	if err != nil {
		return err
	}

	dataDir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory %s: %w", dataDir, err)
	}

	// The terminal belongs to the UI, so logs go to a file.
	logFile, err := os.OpenFile(
		filepath.Join(dataDir, "maildeck.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644,
	)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()
	log := zerolog.New(logFile).With().Timestamp().Logger()

	ring, err := credential.Open()
	if err != nil {
		return fmt.Errorf("opening credential store: %w", err)
	}
	sessions := session.NewStore(ring)

	db, err := store.NewSQLiteStore(filepath.Join(dataDir, "cache.db"))
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer db.Close()

	client := api.NewClient(
		cfg.Server.BaseURL,
		sessions,
		time.Duration(cfg.Server.TimeoutSec)*time.Second,
		log,
	)

	root := app.New(app.Deps{
		Config: cfg,
		Client: client,
		Store:  db,
		Log:    log,
	})

	p := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
