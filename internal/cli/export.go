package cli

import (
	"cmp"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bimtower/pkg/pipeline"
	"github.com/matzehuels/bimtower/pkg/step"
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	output       string
	projectID    string
	projectName  string
	absolute     bool
	author       string
	organization string
	description  string
}

// exportCommand creates the export command for writing IFC exchange files.
func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export [manifest]",
		Short: "Export a building manifest as an IFC STEP file",
		Long: `Export a building manifest (JSON or TOML) as an IFC STEP exchange file.

Header values are taken from the config file, then the manifest's own header,
then flags. Use -o - to write to stdout.`,
		Example: `  bimtower export house.toml
  bimtower export house.json -o out/house.ifc --author "Jane Architect"
  bimtower export house.toml --project-id 2f0e7a56-8c3b-4d5e-9a41-7d1f0c2b3a64 -o -`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: manifestArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <manifest>.ifc, - for stdout)")
	cmd.Flags().StringVar(&opts.projectID, "project-id", "", "GlobalId of the project entity (default: random)")
	cmd.Flags().StringVar(&opts.projectName, "project-name", "", "project name when the model has no Project element")
	cmd.Flags().BoolVar(&opts.absolute, "absolute", false, "write absolute placements instead of parent-relative ones")
	cmd.Flags().StringVar(&opts.author, "author", "", "header author")
	cmd.Flags().StringVar(&opts.organization, "organization", "", "header organization")
	cmd.Flags().StringVar(&opts.description, "description", "", "header description")

	return cmd
}

func (c *CLI) runExport(cmd *cobra.Command, input string, opts exportOpts) error {
	ctx := cmd.Context()
	prog := newProgress(c.Logger)

	runner, err := c.newRunner(ctx, "cli:")
	if err != nil {
		return err
	}
	defer runner.Close()

	m, err := runner.LoadFile(ctx, input)
	if err != nil {
		return err
	}

	header := step.Header{
		Author:       opts.author,
		Organization: opts.organization,
		Description:  opts.description,
	}.Merge(c.Config.Export.Header())

	data := runner.Export(ctx, m, pipeline.Options{
		Header:      header,
		ProjectID:   opts.projectID,
		ProjectName: cmp.Or(opts.projectName, c.Config.Export.ProjectName),
		Absolute:    opts.absolute,
	})

	out := opts.output
	if out == "" {
		out = basePath("", input) + ".ifc"
	}
	if err := writeOutput(cmd.OutOrStdout(), out, data); err != nil {
		return err
	}
	if out == "-" {
		return nil
	}

	prog.done("exported", "model", m.Name, "bytes", len(data))
	w := cmd.OutOrStdout()
	printSuccess(w, "Exported %s", StyleHighlight.Render(m.Name))
	printStats(w, m.Snapshot.Len(), 0, false)
	printFile(w, out)
	return nil
}
