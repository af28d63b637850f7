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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tombee/frames/internal/topology"
)

// Event names written to the event log.
const (
	EventSpawn        = "spawn"
	EventSpawnFailure = "spawn_failure"
	EventSignal       = "signal"
	EventReap         = "reap"
	EventShutdown     = "shutdown"
)

// Event is one line of the event log.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Event     string    `json:"event"`
	SessionID string    `json:"session_id,omitempty"`
	Role      string    `json:"role,omitempty"`
	PID       int       `json:"pid,omitempty"`
	Apps      []string  `json:"apps,omitempty"`
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// EventLog appends topology events to a JSON-lines file. A nil *EventLog
// is valid and discards everything.
type EventLog struct {
	path      string
	sessionID string
	now       func() time.Time

	mu sync.Mutex
}

// NewEventLog creates an event log writing to path. An empty path
// returns nil, which disables logging.
func NewEventLog(path string) *EventLog {
	if path == "" {
		return nil
	}
	return &EventLog{path: path, now: time.Now}
}

// WithSession returns the log with every event tagged by sessionID.
func (l *EventLog) WithSession(sessionID string) *EventLog {
	if l == nil {
		return nil
	}
	l.sessionID = sessionID
	return l
}

// LogSpawn records a started child.
func (l *EventLog) LogSpawn(role topology.Role, pid int, apps []string) error {
	return l.write(Event{
		Event:   EventSpawn,
		Role:    role.String(),
		PID:     pid,
		Apps:    apps,
		Success: true,
	})
}

// LogSpawnFailure records a child that could not be started.
func (l *EventLog) LogSpawnFailure(role topology.Role, err error) error {
	return l.write(Event{
		Event:   EventSpawnFailure,
		Role:    role.String(),
		Success: false,
		Error:   errString(err),
	})
}

// LogSignal records SIGTERM delivery to a child.
func (l *EventLog) LogSignal(role topology.Role, pid int, err error) error {
	return l.write(Event{
		Event:   EventSignal,
		Role:    role.String(),
		PID:     pid,
		Success: err == nil,
		Error:   errString(err),
	})
}

// LogReap records the end of a child.
func (l *EventLog) LogReap(role topology.Role, pid int, err error) error {
	return l.write(Event{
		Event:   EventReap,
		Role:    role.String(),
		PID:     pid,
		Success: err == nil,
		Error:   errString(err),
	})
}

// LogShutdown records the end of the shutdown sequence.
func (l *EventLog) LogShutdown(reaped int, duration time.Duration) error {
	return l.write(Event{
		Event:   EventShutdown,
		PID:     os.Getpid(),
		Success: true,
		Message: fmt.Sprintf("reaped %d children in %v", reaped, duration),
	})
}

func (l *EventLog) write(event Event) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	event.Timestamp = l.now()
	event.SessionID = l.sessionID

	if err := os.MkdirAll(filepath.Dir(l.path), 0700); err != nil {
		return fmt.Errorf("failed to create event log directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open event log: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
