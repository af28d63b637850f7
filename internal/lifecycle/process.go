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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/tombee/frames/internal/topology"
)

var (
	// ErrProcessNotRunning is returned when the process does not exist.
	ErrProcessNotRunning = errors.New("process not running")
)

// IsProcessRunning checks if a process with the given PID exists.
// A process we are not allowed to signal still exists.
func IsProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

// IsFramesProcess reports whether pid is a mutter-x11-frames supervisor.
// It guards against trusting a PID file whose PID was reused. Renderers run
// under role-suffixed names and the renderer binary under its own, so
// neither matches.
func IsFramesProcess(pid int) bool {
	argv0, err := processName(pid)
	if err != nil {
		return false
	}
	return isSupervisorName(argv0)
}

func isSupervisorName(argv0 string) bool {
	return argv0 != "" && filepath.Base(argv0) == topology.BaseProgramName
}

// SendSignal sends a signal to the given process.
func SendSignal(pid int, sig unix.Signal) error {
	if err := unix.Kill(pid, sig); err != nil {
		if errors.Is(err, unix.ESRCH) {
			return fmt.Errorf("%w: pid %d", ErrProcessNotRunning, pid)
		}
		return fmt.Errorf("failed to send signal %v to process %d: %w", sig, pid, err)
	}
	return nil
}

// isGone reports whether err means the target process no longer exists.
func isGone(err error) bool {
	return errors.Is(err, os.ErrProcessDone) ||
		errors.Is(err, ErrProcessNotRunning) ||
		errors.Is(err, unix.ESRCH) ||
		errors.Is(err, unix.ECHILD)
}
