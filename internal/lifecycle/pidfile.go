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
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

var (
	// ErrPIDFileExists is returned when the PID file appears between the
	// stale check and exclusive creation.
	ErrPIDFileExists = errors.New("PID file already exists")

	// ErrPIDFileLocked is returned when another process holds the PID file lock.
	ErrPIDFileLocked = errors.New("PID file is locked by another process")

	// ErrInvalidPID is returned when the PID file contains invalid data.
	ErrInvalidPID = errors.New("invalid PID in file")

	// ErrUnsafeDirectory is returned when the PID file parent is world-writable.
	ErrUnsafeDirectory = errors.New("PID file directory is world-writable")

	// ErrAlreadySupervising is returned when a live supervisor owns the PID file.
	ErrAlreadySupervising = errors.New("another mutter-x11-frames supervisor is running")
)

// PIDFile is the supervisor's flock'd PID file. It is created with O_EXCL
// and stays open, locked, until Release.
type PIDFile struct {
	path string
	lock *os.File

	// alive decides whether a recorded PID still belongs to a supervisor.
	alive func(pid int) bool
}

// NewPIDFile creates a PID file handle for path. An empty path returns
// nil; a nil *PIDFile is valid and does nothing.
func NewPIDFile(path string) *PIDFile {
	if path == "" {
		return nil
	}
	return &PIDFile{
		path: path,
		alive: func(pid int) bool {
			return IsProcessRunning(pid) && IsFramesProcess(pid)
		},
	}
}

// Path returns the file location.
func (f *PIDFile) Path() string {
	if f == nil {
		return ""
	}
	return f.path
}

// Acquire records pid in the file. A file left by a process that is gone,
// or that is not mutter-x11-frames, is stale and replaced. The returned
// bool reports whether a stale file was removed.
func (f *PIDFile) Acquire(pid int) (bool, error) {
	if f == nil {
		return false, nil
	}

	stale := false
	existing, err := f.Read()
	switch {
	case err == nil:
		if existing != pid && f.alive(existing) {
			return false, fmt.Errorf("%w (pid %d, %s)", ErrAlreadySupervising, existing, f.path)
		}
		stale = true
	case errors.Is(err, ErrInvalidPID):
		stale = true
	case errors.Is(err, os.ErrNotExist):
	default:
		return false, err
	}

	if stale {
		if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
			return false, fmt.Errorf("failed to remove stale PID file: %w", err)
		}
	}

	return stale, f.create(pid)
}

func (f *PIDFile) create(pid int) error {
	parentDir := filepath.Dir(f.path)
	if err := verifyDirectorySafety(parentDir); err != nil {
		return fmt.Errorf("unsafe PID file location: %w", err)
	}
	if err := os.MkdirAll(parentDir, 0700); err != nil {
		return fmt.Errorf("failed to create PID file directory: %w", err)
	}

	// O_EXCL refuses symlinks and races; O_RDWR is needed for flock
	file, err := os.OpenFile(f.path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if os.IsExist(err) {
			return ErrPIDFileExists
		}
		return fmt.Errorf("failed to create PID file: %w", err)
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		file.Close()
		os.Remove(f.path)
		if errors.Is(err, unix.EWOULDBLOCK) {
			return ErrPIDFileLocked
		}
		return fmt.Errorf("failed to lock PID file: %w", err)
	}

	if _, err := fmt.Fprintf(file, "%d\n", pid); err != nil {
		file.Close()
		os.Remove(f.path)
		return fmt.Errorf("failed to write PID: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(f.path)
		return fmt.Errorf("failed to sync PID file: %w", err)
	}

	f.lock = file
	return nil
}

// Read returns the PID stored in the file.
func (f *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	pidStr := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(pidStr)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPID, pidStr)
	}
	if pid <= 0 {
		return 0, fmt.Errorf("%w: PID must be positive, got %d", ErrInvalidPID, pid)
	}
	return pid, nil
}

// Release unlocks and removes the file. Calling it twice is harmless.
func (f *PIDFile) Release() error {
	if f == nil || f.lock == nil {
		return nil
	}

	unix.Flock(int(f.lock.Fd()), unix.LOCK_UN)
	f.lock.Close()
	f.lock = nil

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// verifyDirectorySafety checks that the directory is not world-writable.
func verifyDirectorySafety(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if mode := info.Mode(); mode&0002 != 0 {
		return fmt.Errorf("%w: %s has mode %04o", ErrUnsafeDirectory, dir, mode&os.ModePerm)
	}
	return nil
}
