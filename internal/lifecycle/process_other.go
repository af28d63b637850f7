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

//go:build !linux

package lifecycle

import (
	"fmt"
	"os/exec"
	"strings"
	"syscall"
)

// childProcAttr returns default attributes. Pdeathsig is Linux-only.
func childProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{}
}

// processName returns the command name of the process using ps.
func processName(pid int) (string, error) {
	output, err := exec.Command("ps", "-p", fmt.Sprintf("%d", pid), "-o", "comm=").Output()
	if err != nil {
		return "", fmt.Errorf("ps command failed: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}
