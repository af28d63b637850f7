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

// Package renderer hands a process over to the decoration renderer.
//
// The renderer binary draws the frames and runs its own event loop for the
// lifetime of the process. Launch replaces the current process image with
// it, so a successful Launch never returns. Everything the renderer needs
// to know about its role travels in argv[0] and the environment.
package renderer

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/tombee/frames/internal/config"
	"github.com/tombee/frames/internal/lifecycle"
	framelog "github.com/tombee/frames/internal/log"
	"github.com/tombee/frames/internal/topology"
	frameserrors "github.com/tombee/frames/pkg/errors"
)

// Environment variables read by the renderer.
const (
	EnvColorScheme     = "FRAMES_COLOR_SCHEME"
	EnvPlatformLibrary = "FRAMES_PLATFORM_LIBRARY"
)

// Launcher starts the renderer for one role.
type Launcher struct {
	binary          string
	platformLibrary string
	env             []string
	logger          *slog.Logger

	lookPath func(file string) (string, error)
	exec     func(argv0 string, argv []string, envv []string) error
}

// NewLauncher creates a launcher from the renderer config section.
func NewLauncher(cfg config.RendererConfig, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = framelog.Discard()
	}
	return &Launcher{
		binary:          cfg.Path,
		platformLibrary: cfg.PlatformLibrary,
		env:             os.Environ(),
		logger:          logger,
		lookPath:        exec.LookPath,
		exec:            syscall.Exec,
	}
}

// Command resolves the renderer binary and builds argv and the
// environment for role.
func (l *Launcher) Command(role topology.Role, apps []string) (string, []string, []string, error) {
	path, err := l.lookPath(l.binary)
	if err != nil {
		return "", nil, nil, &frameserrors.RendererError{Binary: l.binary, Reason: "not found", Cause: err}
	}

	argv := make([]string, 0, len(apps)+1)
	argv = append(argv, role.ProgramName())
	argv = append(argv, apps...)

	useLibrary := ShouldLoadPlatformLibrary(l.platformLibrary, getenv(l.env, "XDG_CURRENT_DESKTOP"))
	return path, argv, Env(l.env, role.ColorScheme(), useLibrary), nil
}

// Launch execs the renderer. It returns only if the handover failed.
func (l *Launcher) Launch(ctx context.Context, role topology.Role, apps []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, argv, env, err := l.Command(role, apps)
	if err != nil {
		return err
	}

	l.logger.Info("starting renderer",
		slog.String("binary", path),
		slog.String("program", argv[0]),
		slog.Any(framelog.AppsKey, apps))

	if err := l.exec(path, argv, env); err != nil {
		return &frameserrors.RendererError{Binary: path, Reason: "exec failed", Cause: err}
	}
	// syscall.Exec does not return on success; a replacement exec that does
	// is treated as having handed over.
	return nil
}

// Env derives the renderer environment from base. The GDK backend is
// pinned to x11 and GSK to the cairo renderer regardless of what the
// compositor passed down; the role marker of a re-executed child is
// dropped.
func Env(base []string, scheme topology.ColorScheme, platformLibrary bool) []string {
	env := lifecycle.WithoutEnv(base,
		lifecycle.EnvRole,
		"GDK_BACKEND",
		"GSK_RENDERER",
		EnvColorScheme,
		EnvPlatformLibrary,
	)

	library := config.PlatformLibraryNone
	if platformLibrary {
		library = config.PlatformLibraryAdwaita
	}

	return append(env,
		"GDK_BACKEND=x11",
		"GSK_RENDERER=cairo",
		EnvColorScheme+"="+string(scheme),
		EnvPlatformLibrary+"="+library,
	)
}

func getenv(env []string, key string) string {
	for i := len(env) - 1; i >= 0; i-- {
		if v, ok := strings.CutPrefix(env[i], key+"="); ok {
			return v
		}
	}
	return ""
}
