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
Package cli provides the root command of mutter-x11-frames.

The command takes no flags. Every argument is an application identifier or
a '.'-prefixed delimiter separating the dark group from the light group:

	mutter-x11-frames [app-id ...] [. app-id ...]

Which process variant runs is decided once, at the top of the command:

  - a re-executed child (FRAMES_ROLE set) becomes the renderer of its role
    and never returns;
  - an invocation without arguments becomes the unified renderer;
  - anything else becomes the supervisor of one or two renderer children.

Errors are mapped to exit codes by HandleExitError. Errors that implement
errors.UserVisibleError have their suggestion printed after the message.
*/
package cli
