// Package cli implements the aspect-outpaint command-line interface.
//
// Commands:
//   - pad: pad images onto an aspect-ratio canvas and write canvas + mask
//   - presets: list aspect ratio presets, placements and scales
//
// All commands accept --verbose (-v) for debug logging. The logger travels
// in the command context.
package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the CLI
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "aspect-outpaint",
		Short:        "Pad images to an aspect ratio and build outpaint masks",
		Long:         `aspect-outpaint places an image on a larger canvas of a chosen aspect ratio, optionally rotating and shrinking it first, and writes a feathered mask marking the border to be outpainted.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("aspect-outpaint %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newPadCmd())
	root.AddCommand(newPresetsCmd())

	return root
}
