package main

import (
	"log/slog"
	"strings"
	"sync"

	"pdf2ofx/internal/artifacts"
	"pdf2ofx/internal/config"
	"pdf2ofx/internal/console"
	"pdf2ofx/internal/ledger"
	"pdf2ofx/internal/logging"
	"pdf2ofx/internal/workspace"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// environment bundles everything a statement-touching command needs. The run
// lock is held for the lifetime of the environment; callers must Close.
type environment struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *artifacts.Store
	ledger   *ledger.Store
	prompter *console.Console
	lock     *workspace.RunLock
}

func (c *commandContext) openEnvironment() (*environment, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	lock, err := workspace.NewRunLock(cfg.Paths.StagingDir)
	if err != nil {
		return nil, err
	}
	if err := lock.Acquire(); err != nil {
		return nil, err
	}

	store, err := artifacts.NewStore(cfg.Paths.StagingDir)
	if err != nil {
		lock.Release()
		return nil, err
	}
	led, err := ledger.Open(cfg)
	if err != nil {
		lock.Release()
		return nil, err
	}

	return &environment{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		ledger:   led,
		prompter: console.New(),
		lock:     lock,
	}, nil
}

func (e *environment) Close() {
	if e.ledger != nil {
		e.ledger.Close()
	}
	if e.lock != nil {
		e.lock.Release()
	}
}
