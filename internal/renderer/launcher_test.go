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

package renderer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/frames/internal/config"
	"github.com/tombee/frames/internal/lifecycle"
	"github.com/tombee/frames/internal/topology"
	frameserrors "github.com/tombee/frames/pkg/errors"
)

type execCall struct {
	path string
	argv []string
	env  []string
}

func newTestLauncher(cfg config.RendererConfig, env []string, execErr error) (*Launcher, *[]execCall) {
	var calls []execCall
	l := NewLauncher(cfg, nil)
	l.env = env
	l.lookPath = func(file string) (string, error) {
		if file == "missing" {
			return "", errors.New("executable file not found in $PATH")
		}
		return "/usr/libexec/" + file, nil
	}
	l.exec = func(path string, argv, env []string) error {
		calls = append(calls, execCall{path: path, argv: argv, env: env})
		return execErr
	}
	return l, &calls
}

func TestLauncher_Launch(t *testing.T) {
	tests := []struct {
		name    string
		role    topology.Role
		apps    []string
		argv    []string
		scheme  string
		library string
	}{
		{
			name:    "unified renderer",
			role:    topology.RoleUnified,
			apps:    []string{},
			argv:    []string{"mutter-x11-frames"},
			scheme:  "default",
			library: "adwaita",
		},
		{
			name:    "dark renderer",
			role:    topology.RoleDark,
			apps:    []string{"org.gnome.Nautilus", "firefox"},
			argv:    []string{"mutter-x11-frames_dark", "org.gnome.Nautilus", "firefox"},
			scheme:  "dark",
			library: "adwaita",
		},
		{
			name:    "light renderer",
			role:    topology.RoleLight,
			apps:    []string{"gimp"},
			argv:    []string{"mutter-x11-frames_light", "gimp"},
			scheme:  "light",
			library: "adwaita",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := []string{
				"XDG_CURRENT_DESKTOP=ubuntu:GNOME",
				"GDK_BACKEND=wayland",
				lifecycle.EnvRole + "=dark",
				lifecycle.EnvSession + "=abcd1234",
			}
			l, calls := newTestLauncher(config.RendererConfig{Path: "mutter-x11-frames-renderer"}, env, nil)

			require.NoError(t, l.Launch(context.Background(), tt.role, tt.apps))
			require.Len(t, *calls, 1)

			call := (*calls)[0]
			assert.Equal(t, "/usr/libexec/mutter-x11-frames-renderer", call.path)
			assert.Equal(t, tt.argv, call.argv)
			assert.Contains(t, call.env, EnvColorScheme+"="+tt.scheme)
			assert.Contains(t, call.env, EnvPlatformLibrary+"="+tt.library)
			assert.Contains(t, call.env, "GDK_BACKEND=x11")
			assert.Contains(t, call.env, "GSK_RENDERER=cairo")
			assert.Contains(t, call.env, lifecycle.EnvSession+"=abcd1234")
			assert.NotContains(t, call.env, "GDK_BACKEND=wayland")
			assert.NotContains(t, call.env, lifecycle.EnvRole+"=dark")
		})
	}
}

func TestLauncher_MissingBinary(t *testing.T) {
	l, calls := newTestLauncher(config.RendererConfig{Path: "missing"}, nil, nil)

	err := l.Launch(context.Background(), topology.RoleDark, nil)
	var rendererErr *frameserrors.RendererError
	require.True(t, errors.As(err, &rendererErr))
	assert.Equal(t, "missing", rendererErr.Binary)
	assert.Empty(t, *calls)
}

func TestLauncher_ExecFailure(t *testing.T) {
	execErr := errors.New("exec format error")
	l, _ := newTestLauncher(config.RendererConfig{Path: "renderer"}, nil, execErr)

	err := l.Launch(context.Background(), topology.RoleLight, nil)
	assert.ErrorIs(t, err, execErr)

	var rendererErr *frameserrors.RendererError
	require.True(t, errors.As(err, &rendererErr))
	assert.Equal(t, "exec failed", rendererErr.Reason)
}

func TestLauncher_CancelledContext(t *testing.T) {
	l, calls := newTestLauncher(config.RendererConfig{Path: "renderer"}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, l.Launch(ctx, topology.RoleDark, nil), context.Canceled)
	assert.Empty(t, *calls)
}

func TestLauncher_PlatformLibrarySetting(t *testing.T) {
	l, _ := newTestLauncher(config.RendererConfig{Path: "renderer", PlatformLibrary: "none"}, []string{"XDG_CURRENT_DESKTOP=GNOME"}, nil)

	_, _, env, err := l.Command(topology.RoleUnified, nil)
	require.NoError(t, err)
	assert.Contains(t, env, EnvPlatformLibrary+"=none")
}

func TestEnv_ReplacesExistingValues(t *testing.T) {
	base := []string{"PATH=/usr/bin", "GSK_RENDERER=vulkan", EnvColorScheme + "=light"}

	env := Env(base, topology.ColorSchemeDark, false)
	assert.Equal(t, []string{
		"PATH=/usr/bin",
		"GDK_BACKEND=x11",
		"GSK_RENDERER=cairo",
		EnvColorScheme + "=dark",
		EnvPlatformLibrary + "=none",
	}, env)
}

func TestShouldLoadPlatformLibrary(t *testing.T) {
	tests := []struct {
		setting string
		desktop string
		want    bool
	}{
		{setting: "none", desktop: "GNOME", want: false},
		{setting: "adwaita", desktop: "KDE", want: true},
		{setting: "adwaita", desktop: "", want: true},
		{setting: "", desktop: "GNOME", want: true},
		{setting: "", desktop: "ubuntu:GNOME", want: true},
		{setting: "", desktop: "GNOME-Flashback:GNOME", want: true},
		{setting: "", desktop: "GNOME-Classic", want: false},
		{setting: "", desktop: "KDE", want: false},
		{setting: "", desktop: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.setting+"/"+tt.desktop, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldLoadPlatformLibrary(tt.setting, tt.desktop))
		})
	}
}

func TestGetenv_LastValueWins(t *testing.T) {
	env := []string{"A=1", "AB=x", "A=2"}
	assert.Equal(t, "2", getenv(env, "A"))
	assert.Equal(t, "", getenv(env, "B"))
}
