package app

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clipper/internal/common"
	"github.com/ternarybob/clipper/internal/handlers"
	"github.com/ternarybob/clipper/internal/interfaces"
	"github.com/ternarybob/clipper/internal/services/auth"
	"github.com/ternarybob/clipper/internal/services/clip"
	"github.com/ternarybob/clipper/internal/services/extractor"
	"github.com/ternarybob/clipper/internal/services/tracker"
	"github.com/ternarybob/clipper/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Core services
	AuthService      *auth.Service
	TrackerClient    *tracker.Client
	ExtractorService *extractor.Service
	ClipService      *clip.Service

	// HTTP handlers
	AuthHandler    *handlers.AuthHandler
	ClipHandler    *handlers.ClipHandler
	PreviewHandler *handlers.PreviewHandler
	UIHandler      *handlers.UIHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Initialize storage
	storageManager, err := badger.NewManager(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.StorageManager = storageManager

	// Initialize services
	app.AuthService = auth.NewService(cfg.OAuth, storageManager.CredentialStorage(), logger)
	app.TrackerClient = tracker.NewClient(cfg.Tracker, app.AuthService, logger)
	app.ExtractorService = extractor.NewService(cfg.Extractor, logger)
	app.ClipService = clip.NewService(app.AuthService, app.TrackerClient, storageManager.PreferenceStorage(), logger)

	// Initialize HTTP handlers
	app.AuthHandler = handlers.NewAuthHandler(app.AuthService, app.ClipService, logger)
	app.ClipHandler = handlers.NewClipHandler(app.ClipService, app.ExtractorService, app.AuthService, storageManager.PreferenceStorage(), logger)
	app.PreviewHandler = handlers.NewPreviewHandler(logger)
	app.UIHandler = handlers.NewUIHandler(logger)

	logger.Info().Msg("Application initialized")

	return app, nil
}

// Close releases application resources
func (a *App) Close() error {
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}
	return nil
}
