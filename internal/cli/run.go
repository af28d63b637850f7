// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/tombee/frames/internal/config"
	"github.com/tombee/frames/internal/lifecycle"
	framelog "github.com/tombee/frames/internal/log"
	"github.com/tombee/frames/internal/renderer"
	"github.com/tombee/frames/internal/topology"
)

// Launcher hands the current process over to a renderer.
type Launcher interface {
	Launch(ctx context.Context, role topology.Role, apps []string) error
}

// Invocation carries everything one run of the command depends on.
type Invocation struct {
	Config *config.Config
	Logger *slog.Logger

	// Child is set when the process was re-executed by a supervisor;
	// Role is then the role it was assigned.
	Child bool
	Role  topology.Role

	SessionID string
	Launcher  Launcher

	// Spawner starts the renderer children. Nil re-executes the running
	// binary.
	Spawner lifecycle.Spawner

	// SupervisorOptions are applied after the ones derived from Config.
	SupervisorOptions []lifecycle.Option
}

// NewInvocation builds an Invocation from the environment and the
// configuration file.
func NewInvocation() (*Invocation, error) {
	role, child, err := lifecycle.RoleFromEnv()
	if err != nil {
		return nil, NewUsageError("invalid re-exec environment", err)
	}

	cfg, err := config.Load("")
	if err != nil {
		return nil, NewConfigError("failed to load configuration", err)
	}
	if err := cfg.ExpandPaths(); err != nil {
		return nil, NewConfigError("failed to expand configuration paths", err)
	}

	sessionID := os.Getenv(lifecycle.EnvSession)
	if sessionID == "" {
		sessionID = lifecycle.NewSessionID()
	}

	logger := framelog.New(cfg.LoggerConfig())
	if child {
		logger = framelog.WithProcess(logger, role.String(), sessionID)
	} else {
		logger = logger.With(slog.String(framelog.SessionKey, sessionID))
	}

	return &Invocation{
		Config:    cfg,
		Logger:    logger,
		Child:     child,
		Role:      role,
		SessionID: sessionID,
		Launcher:  renderer.NewLauncher(cfg.Renderer, framelog.WithComponent(logger, "renderer")),
	}, nil
}

// Run dispatches to the process variant for args. The renderer variants
// only return on failure; the supervisor returns once its children have
// been reaped and the exit hook has run.
func Run(ctx context.Context, inv *Invocation, args []string) error {
	logger := inv.Logger
	if logger == nil {
		logger = framelog.Discard()
	}

	if inv.Child {
		logger.Debug("running as renderer child", slog.Any(framelog.AppsKey, args))
		return launch(ctx, inv.Launcher, inv.Role, args)
	}

	plan := topology.Partition(args)
	if !plan.Split() {
		v, c, b := GetVersion()
		logger.Info("starting unified renderer", "version", v, "commit", c, "build_date", b)
		return launch(ctx, inv.Launcher, topology.RoleUnified, plan.Apps(topology.RoleUnified))
	}

	return supervise(ctx, inv, plan, logger)
}

func launch(ctx context.Context, l Launcher, role topology.Role, apps []string) error {
	if l == nil {
		return NewFailure("no renderer configured", nil)
	}
	if err := l.Launch(ctx, role, apps); err != nil {
		return NewFailure("failed to start "+role.ProgramName(), err)
	}
	return nil
}

func supervise(ctx context.Context, inv *Invocation, plan topology.PartitionResult, logger *slog.Logger) error {
	spawner := inv.Spawner
	if spawner == nil {
		s, err := lifecycle.NewExecSpawner(inv.SessionID)
		if err != nil {
			return NewFailure("failed to prepare renderer children", err)
		}
		spawner = s
	}

	cfg := inv.Config
	if cfg == nil {
		cfg = config.Default()
	}

	v, c, b := GetVersion()
	logger.Info("starting supervisor",
		"version", v, "commit", c, "build_date", b,
		slog.Any("dark_apps", plan.DarkApps),
		slog.Any("light_apps", plan.LightApps))

	opts := []lifecycle.Option{
		lifecycle.WithLogger(framelog.WithComponent(logger, "supervisor")),
		lifecycle.WithSessionID(inv.SessionID),
		lifecycle.WithPIDFile(lifecycle.NewPIDFile(cfg.Supervisor.PIDFile)),
		lifecycle.WithEventLog(lifecycle.NewEventLog(cfg.Supervisor.EventLog)),
	}
	opts = append(opts, inv.SupervisorOptions...)

	sup := lifecycle.NewSupervisor(spawner, opts...)
	if err := sup.Start(ctx, plan); err != nil {
		if errors.Is(err, lifecycle.ErrAlreadySupervising) {
			return NewFailure("another supervisor is running", err)
		}
		return NewFailure("failed to start renderer children", err)
	}

	if err := sup.Supervise(ctx); err != nil {
		return NewFailure("supervision failed", err)
	}
	return nil
}
