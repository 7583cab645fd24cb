package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/menta2k/aspect-outpaint/pkg/aspect"
	"github.com/menta2k/aspect-outpaint/pkg/params"
	"github.com/menta2k/aspect-outpaint/pkg/types"
)

func newPresetsCmd() *cobra.Command {
	var legacy bool

	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List aspect ratios, placements and scales",
		RunE: func(cmd *cobra.Command, args []string) error {
			ratios := aspect.Presets()
			placements := types.Placements()
			if legacy {
				ratios = aspect.LegacyPresets()
				placements = types.LegacyPlacements()
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Aspect ratios:")
			for _, r := range ratios {
				orientation := "horizontal"
				if r.IsVertical() {
					orientation = "vertical"
				}
				fmt.Fprintf(w, "  %-6s %.4f  %s\n", r.Name, r.Value(), orientation)
			}
			fmt.Fprintln(w, "  random")

			names := make([]string, len(placements))
			for i, p := range placements {
				names[i] = string(p)
			}
			fmt.Fprintf(w, "Placements: %s\n", strings.Join(names, ", "))

			if !legacy {
				fmt.Fprintf(w, "Scales: %v (1:1 canvases: %v), random\n", params.Scales(aspect.Widescreen), params.Scales(aspect.Square))
				fmt.Fprintf(w, "Rotations: %v, random\n", params.Rotations())
				fmt.Fprintln(w, "Backgrounds: white, black, grey")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&legacy, "legacy", false, "show the legacy variant's options")
	return cmd
}
