// Package cli implements the taskpilot command line interface.
package cli

import (
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/taskpilot/internal/app"
	"github.com/google/uuid"
)

// App carries the initialized container plus CLI-level state.
type App struct {
	*app.Container
	CurrentUserID uuid.UUID
}

var (
	appMu      sync.RWMutex
	currentApp *App
)

// SetApp installs the application for command handlers.
func SetApp(a *App) {
	appMu.Lock()
	defer appMu.Unlock()
	currentApp = a
}

// GetApp returns the current application, or nil when initialization failed.
func GetApp() *App {
	appMu.RLock()
	defer appMu.RUnlock()
	return currentApp
}

// SetLogger installs the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}
