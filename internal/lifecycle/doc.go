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
Package lifecycle builds and tears down the renderer process topology.

A Supervisor takes the topology.PartitionResult computed at startup,
spawns one child per required role (dark first, then light) and tracks
them. When SIGTERM arrives it forwards the signal to every live child in
tracking order, reaps each one before moving to the next, and exits the
process with status 0. Shutdown errors are logged and never stop the
sequence.

# Re-exec Children

Go cannot fork without exec, so children are the same binary started
again with the role in the environment:

	spawner, err := lifecycle.NewExecSpawner(sessionID)
	if err != nil {
	    // Handle error
	}

	sup := lifecycle.NewSupervisor(spawner, lifecycle.WithLogger(logger))
	if err := sup.Start(ctx, plan); err != nil {
	    // Startup failed; any child already started has been reaped
	}
	sup.Supervise(ctx) // blocks until SIGTERM, then exits 0

A child detects its role with RoleFromEnv and hands itself over to the
renderer without ever supervising.

# PID File

The supervisor can hold an flock'd PID file while it runs. A PID file
left behind by a dead or unrelated process is replaced:

	pidFile := lifecycle.NewPIDFile("/run/user/1000/mutter-x11-frames.pid")
	sup := lifecycle.NewSupervisor(spawner, lifecycle.WithPIDFile(pidFile))

# Event Log

Spawn, signal and reap events can be appended as JSON lines for later
inspection:

	events := lifecycle.NewEventLog("/tmp/frames-events.log")
	sup := lifecycle.NewSupervisor(spawner, lifecycle.WithEventLog(events))
*/
package lifecycle
