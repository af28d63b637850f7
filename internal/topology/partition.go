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

// PartitionResult is the full topology decision for one invocation.
// It is computed once, before anything is spawned, and never mutated.
type PartitionResult struct {
	NeedsDark  bool
	NeedsLight bool
	DarkApps   []string
	LightApps  []string
}

// IsDelimiter reports whether arg separates the dark and light groups.
// An application identifier that starts with '.' is indistinguishable
// from a delimiter and is treated as one.
func IsDelimiter(arg string) bool {
	return len(arg) > 0 && arg[0] == '.'
}

// Partition classifies args (the argument vector without the program
// name). It never fails and never retains or modifies args.
func Partition(args []string) PartitionResult {
	var result PartitionResult
	if len(args) == 0 {
		return result
	}

	result.NeedsDark = true
	result.DarkApps = []string{}

	split := false
	for _, arg := range args {
		if IsDelimiter(arg) {
			if !split {
				split = true
				result.NeedsLight = true
				result.LightApps = []string{}
			}
			continue
		}
		if split {
			result.LightApps = append(result.LightApps, arg)
		} else {
			result.DarkApps = append(result.DarkApps, arg)
		}
	}

	return result
}

// Split reports whether any child process has to be spawned.
func (p PartitionResult) Split() bool {
	return p.NeedsDark || p.NeedsLight
}

// Roles returns the roles to spawn, in the order they are tracked and
// later shut down. It is empty when the unified renderer runs alone.
func (p PartitionResult) Roles() []Role {
	var roles []Role
	if p.NeedsDark {
		roles = append(roles, RoleDark)
	}
	if p.NeedsLight {
		roles = append(roles, RoleLight)
	}
	return roles
}

// Apps returns a copy of the monitored applications assigned to role.
// The unified renderer monitors nothing.
func (p PartitionResult) Apps(role Role) []string {
	var src []string
	switch role {
	case RoleDark:
		src = p.DarkApps
	case RoleLight:
		src = p.LightApps
	default:
		return []string{}
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}
