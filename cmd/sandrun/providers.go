package main

import (
	"context"
	"log/slog"

	"github.com/judgebox/sandrun/lib/idgen"
	"github.com/judgebox/sandrun/lib/logger"
	sandrunotel "github.com/judgebox/sandrun/lib/otel"
	"github.com/judgebox/sandrun/lib/sandbox"
)

// The functions in this file are wire's provider set for cmd/sandrun's
// dependency graph: logger config -> subsystem loggers -> OTel provider ->
// sandbox.Launcher. See wire.go for the injector signature wire would
// generate this file's wire_gen.go counterpart from.

func provideOtelProvider(ctx context.Context, cfg sandrunotel.Config) (*sandrunotel.Provider, func(context.Context) error, error) {
	return sandrunotel.Init(ctx, cfg)
}

func provideParentLogger(cfg logger.Config, otelHandler slog.Handler) *slog.Logger {
	return logger.NewSubsystemLogger(logger.SubsystemParent, cfg, otelHandler)
}

func provideChildLogger(cfg logger.Config, otelHandler slog.Handler) *slog.Logger {
	return logger.NewSubsystemLogger(logger.SubsystemChild, cfg, otelHandler)
}

func provideSupervisorLogger(cfg logger.Config, otelHandler slog.Handler) *slog.Logger {
	return logger.NewSubsystemLogger(logger.SubsystemSupervisor, cfg, otelHandler)
}

func provideReportLogger(cfg logger.Config, otelHandler slog.Handler) *slog.Logger {
	return logger.NewSubsystemLogger(logger.SubsystemReport, cfg, otelHandler)
}

func provideRunID() (string, error) {
	return idgen.NewRunID()
}

// NewLauncher assembles a sandbox.Launcher from its resolved dependencies.
func NewLauncher(parentLog, childLog, supervisorLog, reportLog *slog.Logger, otelProvider *sandrunotel.Provider, runID string) *sandbox.Launcher {
	return &sandbox.Launcher{
		ParentLog:     parentLog,
		ChildLog:      childLog,
		SupervisorLog: supervisorLog,
		ReportLog:     reportLog,
		Otel:          otelProvider,
		RunID:         runID,
	}
}
