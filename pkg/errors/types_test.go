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

package errors

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigError(t *testing.T) {
	cause := errors.New("yaml: line 3: did not find expected key")
	err := &ConfigError{Key: "config_file", Reason: "failed to parse", Cause: cause}

	assert.Equal(t, "config error at config_file: failed to parse: yaml: line 3: did not find expected key", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := &ConfigError{Reason: "invalid"}
	assert.Equal(t, "config error: invalid", bare.Error())
}

func TestSpawnError(t *testing.T) {
	err := &SpawnError{Role: "light", Cause: fs.ErrPermission}

	assert.Equal(t, "spawn light renderer: permission denied", err.Error())
	assert.ErrorIs(t, err, fs.ErrPermission)
}

func TestRendererError(t *testing.T) {
	err := &RendererError{Binary: "mutter-x11-frames-renderer", Reason: "not found", Cause: fs.ErrNotExist}

	assert.Equal(t, "renderer mutter-x11-frames-renderer: not found: file does not exist", err.Error())
	assert.ErrorIs(t, err, fs.ErrNotExist)

	var uv UserVisibleError
	assert.True(t, errors.As(error(err), &uv))
	assert.NotEmpty(t, uv.Suggestion())

	noCause := &RendererError{Binary: "r", Reason: "exec failed"}
	assert.Equal(t, "renderer r: exec failed", noCause.Error())
}
