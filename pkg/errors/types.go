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

// Package errors defines the typed errors shared across mutter-x11-frames.
//
// Startup failures (configuration, spawning a renderer child, launching the
// renderer binary) carry enough context to be reported once at the entry
// point. Shutdown problems are never surfaced as errors; they are logged.
package errors

import (
	"fmt"
)

// ConfigError represents configuration problems.
// Use this for configuration file errors or invalid config values.
type ConfigError struct {
	// Key is the configuration key that has the problem (e.g., "log.level")
	Key string

	// Reason explains what's wrong with the configuration
	Reason string

	// Cause is the underlying error (e.g., file read error, parse error)
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	msg := "config error"
	if e.Key != "" {
		msg = fmt.Sprintf("config error at %s", e.Key)
	}
	msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Suggestion implements UserVisibleError.
func (e *ConfigError) Suggestion() string {
	return "check the config file (FRAMES_CONFIG) and the FRAMES_* environment variables"
}

// SpawnError represents a failure to start a renderer child process.
// The topology cannot be partially established, so this is always fatal.
type SpawnError struct {
	// Role is the wire name of the renderer role being spawned ("dark", "light")
	Role string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s renderer: %v", e.Role, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *SpawnError) Unwrap() error {
	return e.Cause
}

// RendererError represents a failure to hand the process over to the
// renderer binary.
type RendererError struct {
	// Binary is the renderer binary path or name
	Binary string

	// Reason explains what failed
	Reason string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *RendererError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("renderer %s: %s: %v", e.Binary, e.Reason, e.Cause)
	}
	return fmt.Sprintf("renderer %s: %s", e.Binary, e.Reason)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *RendererError) Unwrap() error {
	return e.Cause
}

// Suggestion implements UserVisibleError.
func (e *RendererError) Suggestion() string {
	return "install the renderer or point FRAMES_RENDERER at it"
}
