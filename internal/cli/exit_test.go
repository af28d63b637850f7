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
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	frameserrors "github.com/tombee/frames/pkg/errors"
)

func TestExitError(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name    string
		err     *ExitError
		code    int
		message string
	}{
		{"failure", NewFailure("failed to start children", cause), ExitFailure, "failed to start children: boom"},
		{"usage", NewUsageError("invalid re-exec environment", cause), ExitUsage, "invalid re-exec environment: boom"},
		{"config", NewConfigError("failed to load configuration", nil), ExitConfig, "failed to load configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.message, tt.err.Error())
			assert.Equal(t, tt.code, ExitCode(tt.err))
		})
	}

	assert.ErrorIs(t, NewFailure("x", cause), cause)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitFailure, ExitCode(errors.New("plain")))
	assert.Equal(t, ExitConfig, ExitCode(fmt.Errorf("wrapped: %w", NewConfigError("bad", nil))))
}

func TestPrintError_Suggestion(t *testing.T) {
	var buf bytes.Buffer
	err := NewFailure("failed to start mutter-x11-frames_dark",
		&frameserrors.RendererError{Binary: "mutter-x11-frames-renderer", Reason: "not found"})

	printError(&buf, err)

	out := buf.String()
	assert.Contains(t, out, "Error: failed to start mutter-x11-frames_dark")
	assert.Contains(t, out, "Suggestion: ")
}

func TestPrintError_NoSuggestion(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, errors.New("plain"))

	assert.Equal(t, "Error: plain\n", buf.String())
}
