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

/*
Package topology decides the process layout for one invocation.

The command line is a flat list of monitored application identifiers,
optionally split by a delimiter token (any argument starting with '.'):

	mutter-x11-frames [app-id ...] [. app-id ...]

Identifiers before the first delimiter are monitored by the dark
renderer, identifiers after it by the light renderer. With no arguments
a single unified renderer runs and nothing is spawned.

	result := topology.Partition(os.Args[1:])
	for _, role := range result.Roles() {
	    // spawn a child for role with result.Apps(role)
	}

Partition is pure; the returned PartitionResult is the only value the
supervisor needs to build the topology.
*/
package topology
