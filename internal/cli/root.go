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
	"context"

	"github.com/spf13/cobra"
)

// Build-time version information
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	version = v
	commit = c
	buildDate = b
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return version, commit, buildDate
}

// NewRootCommand creates the root Cobra command for mutter-x11-frames
func NewRootCommand() *cobra.Command {
	return newRootCommand(func(ctx context.Context, args []string) error {
		inv, err := NewInvocation()
		if err != nil {
			return err
		}
		return Run(ctx, inv, args)
	})
}

func newRootCommand(run func(ctx context.Context, args []string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mutter-x11-frames [app-id ...] [. app-id ...]",
		Short: "Window decorations for X11 clients of mutter",
		Long: `mutter-x11-frames draws the frames of X11 client windows for mutter.

Without arguments a single renderer handles every window. Application ids
listed before a '.' delimiter are drawn with a dark frame, ids after it with
a light frame; each group runs in its own renderer process.`,
		Args: cobra.ArbitraryArgs,
		// App ids are passed through verbatim, including ones that look like flags.
		DisableFlagParsing: true,
		CompletionOptions:  cobra.CompletionOptions{DisableDefaultCmd: true},
		SilenceUsage:       true, // Don't show usage on errors
		SilenceErrors:      true, // We handle errors ourselves for proper exit codes
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args)
		},
	}

	return cmd
}

// Execute runs the root command with args (without the program name).
func Execute(ctx context.Context, args []string) error {
	return execute(ctx, NewRootCommand(), args)
}

func execute(ctx context.Context, cmd *cobra.Command, args []string) error {
	if args == nil {
		// cobra falls back to os.Args for nil
		args = []string{}
	}
	if len(args) > 0 && isCompletionRequest(args[0]) {
		// cobra routes these to its hidden completion command before RunE;
		// here they are app ids like any other
		cmd.SetContext(ctx)
		return cmd.RunE(cmd, args)
	}
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func isCompletionRequest(arg string) bool {
	return arg == cobra.ShellCompRequestCmd || arg == cobra.ShellCompNoDescRequestCmd
}
