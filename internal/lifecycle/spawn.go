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

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"

	"github.com/tombee/frames/internal/topology"
)

const (
	// EnvRole marks a re-executed child and names its renderer role.
	EnvRole = "FRAMES_ROLE"
	// EnvSession carries the supervisor's session id into every child.
	EnvSession = "FRAMES_SESSION_ID"
)

// Process is a handle on one spawned renderer.
type Process interface {
	PID() int
	Signal(sig os.Signal) error
	// Wait blocks until the process has exited and been reaped.
	Wait() error
}

// Spawner starts renderer children.
type Spawner interface {
	Spawn(ctx context.Context, role topology.Role, apps []string) (Process, error)
}

// NewSessionID returns a short id shared by a supervisor and its children.
func NewSessionID() string {
	return uuid.New().String()[:8]
}

// RoleFromEnv reports whether the current process is a re-executed child
// and, if so, which role it was assigned.
func RoleFromEnv() (topology.Role, bool, error) {
	val, ok := os.LookupEnv(EnvRole)
	if !ok {
		return topology.RoleUnified, false, nil
	}
	role, err := topology.ParseRole(val)
	if err != nil {
		return topology.RoleUnified, true, fmt.Errorf("%s: %w", EnvRole, err)
	}
	return role, true, nil
}

// ChildEnv returns base with the role and session variables replaced.
func ChildEnv(base []string, role topology.Role, sessionID string) []string {
	env := WithoutEnv(base, EnvRole, EnvSession)
	env = append(env, EnvRole+"="+role.String())
	if sessionID != "" {
		env = append(env, EnvSession+"="+sessionID)
	}
	return env
}

// WithoutEnv returns a copy of env with the named variables removed.
func WithoutEnv(env []string, keys ...string) []string {
	out := make([]string, 0, len(env))
	for _, kv := range env {
		name, _, _ := strings.Cut(kv, "=")
		drop := false
		for _, key := range keys {
			if name == key {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, kv)
		}
	}
	return out
}

// ExecSpawner starts each child by re-executing a binary (normally the
// current executable) with the role's monitored apps as its arguments.
type ExecSpawner struct {
	// Executable is the binary to run.
	Executable string

	// Args are inserted before the monitored apps.
	Args []string

	// Env is the base environment; role and session variables are added.
	Env []string

	// SessionID is exported to every child.
	SessionID string

	// Stdout and Stderr default to the supervisor's own.
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecSpawner creates a spawner that re-executes the running binary.
func NewExecSpawner(sessionID string) (*ExecSpawner, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}
	return &ExecSpawner{
		Executable: exe,
		Env:        os.Environ(),
		SessionID:  sessionID,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}, nil
}

// Spawn starts one child for role. The child is not tied to ctx: it runs
// until it is signalled during shutdown.
func (s *ExecSpawner) Spawn(ctx context.Context, role topology.Role, apps []string) (Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if role == topology.RoleUnified {
		return nil, errors.New("the unified renderer is never spawned")
	}

	args := make([]string, 0, len(s.Args)+len(apps))
	args = append(args, s.Args...)
	args = append(args, apps...)

	cmd := exec.Command(s.Executable, args...)
	cmd.Env = ChildEnv(s.Env, role, s.SessionID)
	cmd.Stdin = nil
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr
	cmd.SysProcAttr = childProcAttr()

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start process: %w", err)
	}

	return &ExecProcess{cmd: cmd}, nil
}

// ExecProcess is a Process backed by an *exec.Cmd.
type ExecProcess struct {
	cmd *exec.Cmd

	waitOnce sync.Once
	waitErr  error
}

// PID returns the child's process id.
func (p *ExecProcess) PID() int {
	return p.cmd.Process.Pid
}

// Signal delivers sig to the child. A child that has already been reaped
// reports os.ErrProcessDone; one that is gone but not yet reaped reports
// ErrProcessNotRunning.
func (p *ExecProcess) Signal(sig os.Signal) error {
	if p.cmd.ProcessState != nil {
		return fmt.Errorf("failed to send signal %v to process %d: %w", sig, p.PID(), os.ErrProcessDone)
	}
	unixSig, ok := sig.(syscall.Signal)
	if !ok {
		return fmt.Errorf("unsupported signal %v", sig)
	}
	return SendSignal(p.PID(), unixSig)
}

// Wait reaps the child. A child that died from SIGTERM exited cleanly.
// Repeated calls return the first result.
func (p *ExecProcess) Wait() error {
	p.waitOnce.Do(func() {
		err := p.cmd.Wait()
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() && status.Signal() == syscall.SIGTERM {
				err = nil
			}
		}
		p.waitErr = err
	})
	return p.waitErr
}
