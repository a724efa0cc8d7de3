// Package app provides the application context and dependency management
// for the halpsync CLI: configuration loading, logger construction, and
// lazy creation of the reconciler.
package app

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/tophatmonocle/halpsync"
	"github.com/tophatmonocle/halpsync/pkg/errors"
)

// App represents the halpsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Reconciler instance (lazy-initialized, singleton)
	mu         sync.Mutex
	reconciler halpsync.Reconciler
}

// New creates a new App instance with the given version information.
func New(version, commit, date string) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.NewConfigError("app", "loading configuration", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	return app, nil
}

// Version returns the version string.
func (a *App) Version() string {
	return a.version
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Reconciler returns the reconciler, creating it lazily from the loaded
// configuration. Thread-safe; only one instance is ever created.
func (a *App) Reconciler() (halpsync.Reconciler, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.reconciler != nil {
		return a.reconciler, nil
	}

	opts, err := a.buildOptions()
	if err != nil {
		return nil, err
	}

	rec, err := halpsync.New(opts...)
	if err != nil {
		return nil, err
	}
	a.reconciler = rec
	return rec, nil
}

// buildOptions translates the loaded configuration into reconciler
// options, reading the optional remap and domain-rule files.
func (a *App) buildOptions() ([]halpsync.Option, error) {
	opts := []halpsync.Option{
		halpsync.WithDirectoryToken(a.config.DirectoryToken),
		halpsync.WithContactStore(a.config.ContactStoreHost, a.config.ContactStoreAPIKey),
		halpsync.WithInboundAddress(a.config.InboundAddress),
		halpsync.WithLogger(a.logger),
	}

	if a.config.AgentRequesterEmail != "" {
		opts = append(opts, halpsync.WithAgentRequesterEmail(a.config.AgentRequesterEmail))
	}

	if a.config.NameRemapFile != "" {
		remap, err := LoadNameRemap(a.config.NameRemapFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, halpsync.WithNameRemap(remap))
	}

	if a.config.DomainRulesFile != "" {
		rules, err := LoadDomainRules(a.config.DomainRulesFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, halpsync.WithDomainRules(*rules))
	}

	return opts, nil
}
