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
	"slices"
	"strings"

	"github.com/tombee/frames/internal/config"
)

// ShouldLoadPlatformLibrary decides whether the renderer loads the
// optional theming library. An explicit setting wins; otherwise it is
// loaded only on a GNOME session.
func ShouldLoadPlatformLibrary(setting, currentDesktop string) bool {
	switch setting {
	case config.PlatformLibraryNone:
		return false
	case config.PlatformLibraryAdwaita:
		return true
	}

	if currentDesktop == "" {
		return false
	}
	return slices.Contains(strings.Split(currentDesktop, ":"), "GNOME")
}
