package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/five82/epiwatch/internal/config"
	"github.com/five82/epiwatch/internal/datagov"
	"github.com/five82/epiwatch/internal/prefs"
	"github.com/five82/epiwatch/internal/ui"
	"github.com/five82/epiwatch/internal/view"
)

var _ view.Loader = (*datagov.Client)(nil)

// Options configure the epiwatch application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses ~/.config/epiwatch/prefs.toml
	ResourceID string // overrides resource_id from config
	Limit      int    // overrides limit from config when positive
}

// Run boots the epiwatch TUI until the user quits or the context is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = applyOverrides(cfg, opts)

	logger, closer, err := openLogger(cfg.LogPath(), cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closer.Close()

	ctrl, endpoint, err := newController(cfg, logger)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		logger.Warn("using default preferences", "error", err)
	}

	logger.Info("epiwatch starting", "endpoint", endpoint, "theme", userPrefs.Theme)
	err = ui.Run(ui.Options{
		Context:    ctx,
		Controller: ctrl,
		Logger:     logger,
		Source:     endpoint,
		LogPath:    cfg.LogPath(),
		ThemeName:  userPrefs.Theme,
		PrefsPath:  opts.PrefsPath,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("ui exited with error", "error", err)
		return err
	}
	logger.Info("epiwatch stopped")
	return nil
}

// newController builds the data.gov.sg client and the view controller on top
// of it.
func newController(cfg config.Config, logger *slog.Logger) (*view.Controller, string, error) {
	endpoint, err := cfg.Endpoint()
	if err != nil {
		return nil, "", fmt.Errorf("build endpoint: %w", err)
	}
	client, err := datagov.NewClient(endpoint,
		datagov.WithTimeout(cfg.Timeout),
		datagov.WithLogger(logger.With("component", "datagov")),
	)
	if err != nil {
		return nil, "", fmt.Errorf("init datagov client: %w", err)
	}
	ctrl := view.New(client, view.WithLogger(logger.With("component", "view")))
	return ctrl, client.URL(), nil
}

func applyOverrides(cfg config.Config, opts Options) config.Config {
	if opts.ResourceID != "" {
		cfg.ResourceID = opts.ResourceID
	}
	if opts.Limit > 0 {
		cfg.Limit = opts.Limit
	}
	return cfg
}
