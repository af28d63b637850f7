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
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	framelog "github.com/tombee/frames/internal/log"
	"github.com/tombee/frames/internal/topology"
	frameserrors "github.com/tombee/frames/pkg/errors"
)

// State is the supervisor's position in its lifecycle.
type State int

const (
	StateStart State = iota
	StateSupervising
	StateShuttingDown
	StateDone
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateSupervising:
		return "supervising"
	case StateShuttingDown:
		return "shutting_down"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrNothingToSupervise is returned by Start for a unified topology.
	ErrNothingToSupervise = errors.New("topology has no children to supervise")

	// ErrInvalidState is returned when an operation is called out of order.
	ErrInvalidState = errors.New("invalid supervisor state")
)

// ChildProcess is one tracked renderer child.
type ChildProcess struct {
	Role  topology.Role
	PID   int
	Apps  []string
	Alive bool

	proc Process
}

// Supervisor owns the renderer children of one invocation. It is driven
// from a single goroutine: Start, then Supervise.
type Supervisor struct {
	spawner   Spawner
	logger    *slog.Logger
	events    *EventLog
	pidFile   *PIDFile
	sessionID string
	exit      func(code int)

	signals   <-chan os.Signal
	ownSignal chan os.Signal

	state    State
	children []*ChildProcess
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithLogger sets the logger. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Supervisor) { s.logger = logger }
}

// WithEventLog sets the event log. A nil log disables it.
func WithEventLog(events *EventLog) Option {
	return func(s *Supervisor) { s.events = events }
}

// WithPIDFile sets the PID file held while supervising.
func WithPIDFile(f *PIDFile) Option {
	return func(s *Supervisor) { s.pidFile = f }
}

// WithSessionID tags events with the session id.
func WithSessionID(id string) Option {
	return func(s *Supervisor) { s.sessionID = id }
}

// WithSignals replaces SIGTERM registration with the given channel.
func WithSignals(ch <-chan os.Signal) Option {
	return func(s *Supervisor) { s.signals = ch }
}

// WithExit replaces os.Exit as the final step of Supervise.
func WithExit(exit func(code int)) Option {
	return func(s *Supervisor) { s.exit = exit }
}

// NewSupervisor creates a supervisor that spawns children with spawner.
func NewSupervisor(spawner Spawner, opts ...Option) *Supervisor {
	s := &Supervisor{
		spawner: spawner,
		logger:  framelog.Discard(),
		exit:    os.Exit,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.events = s.events.WithSession(s.sessionID)
	return s
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	return s.state
}

// Children returns a snapshot of the tracked children in tracking order.
func (s *Supervisor) Children() []ChildProcess {
	out := make([]ChildProcess, 0, len(s.children))
	for _, c := range s.children {
		out = append(out, *c)
	}
	return out
}

// Start spawns one child per role in plan, dark before light. SIGTERM is
// registered before the first spawn so it cannot be lost. If any spawn
// fails, children already started are shut down before the error returns.
func (s *Supervisor) Start(ctx context.Context, plan topology.PartitionResult) error {
	if s.state != StateStart {
		return fmt.Errorf("%w: start called in %s", ErrInvalidState, s.state)
	}
	roles := plan.Roles()
	if len(roles) == 0 {
		return ErrNothingToSupervise
	}

	stale, err := s.pidFile.Acquire(os.Getpid())
	if err != nil {
		return err
	}
	if stale {
		s.logger.Warn("replaced stale PID file", "path", s.pidFile.Path())
	}

	if s.signals == nil {
		s.ownSignal = make(chan os.Signal, 1)
		signal.Notify(s.ownSignal, syscall.SIGTERM)
		s.signals = s.ownSignal
	}

	for _, role := range roles {
		apps := plan.Apps(role)
		framelog.Trace(s.logger, "spawning renderer",
			slog.String(framelog.RoleKey, role.String()),
			slog.Any(framelog.AppsKey, apps))
		proc, err := s.spawner.Spawn(ctx, role, apps)
		if err != nil {
			s.logger.Error("failed to spawn renderer",
				slog.String(framelog.RoleKey, role.String()),
				framelog.Error(err))
			s.recordEvent(s.events.LogSpawnFailure(role, err))

			s.Shutdown()
			s.stopSignals()
			return &frameserrors.SpawnError{Role: role.String(), Cause: err}
		}

		child := &ChildProcess{Role: role, PID: proc.PID(), Apps: apps, Alive: true, proc: proc}
		s.children = append(s.children, child)

		s.logger.Info("spawned renderer",
			slog.String(framelog.RoleKey, role.String()),
			slog.Int(framelog.PIDKey, child.PID),
			slog.Any(framelog.AppsKey, apps))
		s.recordEvent(s.events.LogSpawn(role, child.PID, apps))
	}

	s.state = StateSupervising
	return nil
}

// Supervise blocks until SIGTERM arrives or ctx is cancelled, shuts the
// children down and calls the exit function with status 0.
func (s *Supervisor) Supervise(ctx context.Context) error {
	if s.state != StateSupervising {
		return fmt.Errorf("%w: supervise called in %s", ErrInvalidState, s.state)
	}

	select {
	case sig := <-s.signals:
		s.logger.Info("received signal, shutting down", "signal", sig)
	case <-ctx.Done():
		s.logger.Info("context cancelled, shutting down", framelog.Error(ctx.Err()))
	}

	// one-shot: the handler stays installed until exit, so a repeated
	// SIGTERM lands in the unread channel
	s.Shutdown()
	s.exit(0)
	s.stopSignals()
	return nil
}

// Shutdown signals and reaps every live child in tracking order. Each
// child is reaped before the next one is signalled. Failures are logged
// and never stop the sequence.
func (s *Supervisor) Shutdown() {
	if s.state == StateDone {
		return
	}
	s.state = StateShuttingDown
	started := time.Now()

	reaped := 0
	for _, child := range s.children {
		if !child.Alive {
			continue
		}
		if s.stopChild(child) {
			reaped++
		}
	}

	if err := s.pidFile.Release(); err != nil {
		s.logger.Warn("failed to remove PID file", framelog.Error(err))
	}

	s.logger.Info("shutdown complete", "reaped", reaped, "duration", time.Since(started))
	s.recordEvent(s.events.LogShutdown(reaped, time.Since(started)))
	s.state = StateDone
}

// stopChild delivers SIGTERM to child and waits for it. It reports whether
// the child was reaped.
func (s *Supervisor) stopChild(child *ChildProcess) bool {
	logger := s.logger.With(
		slog.String(framelog.RoleKey, child.Role.String()),
		slog.Int(framelog.PIDKey, child.PID))

	sigErr := child.proc.Signal(syscall.SIGTERM)
	s.recordEvent(s.events.LogSignal(child.Role, child.PID, sigErr))
	if sigErr != nil {
		if !isGone(sigErr) {
			// the child may still be running; waiting could block forever
			logger.Warn("failed to signal renderer, not waiting for it", framelog.Error(sigErr))
			child.Alive = false
			return false
		}
		logger.Debug("renderer already exited", framelog.Error(sigErr))
	}

	waitErr := child.proc.Wait()
	child.Alive = false
	s.recordEvent(s.events.LogReap(child.Role, child.PID, waitErr))
	if waitErr != nil {
		logger.Warn("renderer did not exit cleanly", framelog.Error(waitErr))
	} else {
		logger.Debug("renderer reaped")
	}
	return true
}

func (s *Supervisor) stopSignals() {
	if s.ownSignal != nil {
		signal.Stop(s.ownSignal)
		s.ownSignal = nil
	}
}

func (s *Supervisor) recordEvent(err error) {
	if err != nil {
		s.logger.Warn("failed to write event log", framelog.Error(err))
	}
}
