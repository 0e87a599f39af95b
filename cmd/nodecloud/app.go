package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/recera/nodecloud/internal/config"
	"github.com/recera/nodecloud/internal/dataset"
	"github.com/recera/nodecloud/internal/logging"
	"github.com/recera/nodecloud/pkg/nodecloud"
)

const configFileName = config.FileName

// app holds what every subcommand shares: flags, config and logger
type app struct {
	configPath  string
	datasetPath string
	logLevel    string

	cfg      *config.Config
	log      *zap.Logger
	closeLog func() error
}

// setup loads the config, applies the root flags and builds the logger.
// quiet drops console logging for commands that own the terminal.
func (a *app) setup(quiet bool) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.datasetPath != "" {
		cfg.Dataset = a.datasetPath
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg

	if quiet && cfg.Log.File == "" {
		a.log = zap.NewNop()
		a.closeLog = func() error { return nil }
		return nil
	}
	log, closer, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.log, a.closeLog = log, closer
	return nil
}

func (a *app) close() error {
	if a.closeLog == nil {
		return nil
	}
	// stderr sync fails on terminals; nothing to report
	_ = a.closeLog()
	return nil
}

// entities loads the configured dataset
func (a *app) entities() ([]nodecloud.Entity, error) {
	entities, err := dataset.Load(a.cfg.Dataset)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	source := a.cfg.Dataset
	if source == "" {
		source = "built-in sample"
	}
	a.log.Info("dataset loaded", zap.String("source", source), zap.Int("entities", len(entities)))
	return entities, nil
}

// options returns the engine options with the app logger attached
func (a *app) options() nodecloud.Options {
	opts := a.cfg.Options()
	opts.Logger = a.log.Named("engine")
	return opts
}

func (a *app) watching() bool {
	return a.cfg.Dataset != "" && *a.cfg.Server.Watch
}
