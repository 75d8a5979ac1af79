//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/judgebox/sandrun/lib/logger"
	sandrunotel "github.com/judgebox/sandrun/lib/otel"
	"github.com/judgebox/sandrun/lib/sandbox"
)

// InitializeLauncher wires a sandbox.Launcher from its constituent
// providers. This file is never compiled (the wireinject build tag excludes
// it); it documents the dependency graph that wire_gen.go realizes by hand,
// the same generated-injector shape a larger binary in this codebase would
// produce with `wire gen`.
func InitializeLauncher(ctx context.Context, logCfg logger.Config, otelCfg sandrunotel.Config) (*sandbox.Launcher, func(context.Context) error, error) {
	wire.Build(
		provideOtelProvider,
		provideParentLogger,
		provideChildLogger,
		provideSupervisorLogger,
		provideReportLogger,
		provideRunID,
		NewLauncher,
	)
	return nil, nil, nil
}
