package cli

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bimtower/pkg/errors"
	"github.com/matzehuels/bimtower/pkg/manifest"
)

// demoCommand creates the demo command that writes bundled example manifests.
func (c *CLI) demoCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "demo [name]",
		Short: "Write a bundled example manifest",
		Long: `Demo writes one of the bundled example buildings as a manifest. Without a
name it lists the available demos. The format follows the output extension
(.json or .toml).`,
		Example: `  bimtower demo
  bimtower demo simple-house -o house.toml
  bimtower demo two-storey -o building.json`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: slices.Sorted(maps.Keys(manifest.Demos)),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, name := range slices.Sorted(maps.Keys(manifest.Demos)) {
					fmt.Fprintf(w, "%s  %s\n", StyleHighlight.Render(name), StyleDim.Render(manifest.Demos[name]().Name))
				}
				return nil
			}

			build, ok := manifest.Demos[args[0]]
			if !ok {
				return errors.New(errors.ErrCodeNotFound, "unknown demo %q (available: %v)", args[0], slices.Sorted(maps.Keys(manifest.Demos)))
			}
			doc := build()

			if output == "" || output == "-" {
				data, err := manifest.Marshal(doc, manifest.FormatTOML)
				if err != nil {
					return err
				}
				_, err = w.Write(data)
				return err
			}
			if err := manifest.WriteFile(doc, output); err != nil {
				return err
			}
			printSuccess(w, "Wrote %s", StyleHighlight.Render(doc.Name))
			printFile(w, output)
			printNextStep(w, "Export it", "bimtower export "+output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output manifest file (default: TOML on stdout)")

	return cmd
}
