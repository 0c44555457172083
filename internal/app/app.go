package app

import (
	"io"
	"log/slog"

	"github.com/constel-build/constel/internal/constellation"
)

// App encapsulates the generator's dependencies, configuration and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	resolve constellation.Resolver
}

// NewApp constructs the application with its own isolated logger. A nil
// resolver selects the conventional <root>/deps/<name> layout.
func NewApp(outW io.Writer, config *Config, resolve constellation.Resolver) *App {
	logger := newLogger(config.LogLevel, config.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	if resolve == nil {
		resolve = constellation.DirResolver(config.RootPath)
	}

	return &App{
		outW:    outW,
		logger:  logger,
		config:  config,
		resolve: resolve,
	}
}
