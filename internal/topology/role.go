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

package topology

import (
	"fmt"
	"strings"
)

// Role identifies which visual variant a renderer process presents.
type Role int

const (
	// RoleUnified is the single renderer that runs when no split is requested.
	RoleUnified Role = iota
	// RoleDark is the renderer biased toward a dark color scheme.
	RoleDark
	// RoleLight is the renderer biased toward a light color scheme.
	RoleLight
)

// BaseProgramName is the program name of the unified renderer. Split
// renderers append a role suffix so the compositor can tell them apart.
const BaseProgramName = "mutter-x11-frames"

// ColorScheme is the color-mode bias handed to the renderer.
type ColorScheme string

const (
	ColorSchemeDefault ColorScheme = "default"
	ColorSchemeDark    ColorScheme = "dark"
	ColorSchemeLight   ColorScheme = "light"
)

// String returns the wire name of the role used in FRAMES_ROLE and logs.
func (r Role) String() string {
	switch r {
	case RoleUnified:
		return "unified"
	case RoleDark:
		return "dark"
	case RoleLight:
		return "light"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseRole converts a wire name back into a Role.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unified", "":
		return RoleUnified, nil
	case "dark":
		return RoleDark, nil
	case "light":
		return RoleLight, nil
	default:
		return RoleUnified, fmt.Errorf("unknown role %q", s)
	}
}

// ProgramName returns the process name the renderer should run under.
func (r Role) ProgramName() string {
	switch r {
	case RoleDark:
		return BaseProgramName + "_dark"
	case RoleLight:
		return BaseProgramName + "_light"
	default:
		return BaseProgramName
	}
}

// ColorScheme returns the color-mode bias for the role.
func (r Role) ColorScheme() ColorScheme {
	switch r {
	case RoleDark:
		return ColorSchemeDark
	case RoleLight:
		return ColorSchemeLight
	default:
		return ColorSchemeDefault
	}
}
