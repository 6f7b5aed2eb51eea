package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bimtower/pkg/errors"
	"github.com/matzehuels/bimtower/pkg/pipeline"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate [manifest...]",
		Short: "Check building manifests for problems",
		Long: `Validate loads each manifest and reports load errors, hierarchy problems
and unresolvable placements. It exits non-zero if any manifest fails.

Placement issues (cycles, dangling parents) are warnings unless --strict is set.`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: manifestArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			runner := pipeline.NewRunner(nil, nil, c.Logger)

			failed := 0
			for _, path := range args {
				m, err := runner.LoadFile(cmd.Context(), path)
				if err != nil {
					failed++
					printError(w, "%s", path)
					printDetail(w, "%s", errors.UserMessage(err))
					for _, d := range causes(err) {
						printDetail(w, "%s", d)
					}
					continue
				}

				rep := runner.Inspect(m)
				if rep.OK() {
					printSuccess(w, "%s %s", path, StyleDim.Render(fmt.Sprintf("(%d elements)", rep.Elements)))
					continue
				}
				if strict {
					failed++
					printError(w, "%s", path)
				} else {
					printWarning(w, "%s", path)
				}
				for _, p := range rep.Problems {
					printDetail(w, "%s", p)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d manifests failed validation", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "treat placement issues as failures")

	return cmd
}

// causes lists the individual problems behind a coded error.
func causes(err error) []string {
	var cause error
	if e, ok := err.(*errors.Error); ok {
		cause = e.Cause
	}
	joined, ok := cause.(interface{ Unwrap() []error })
	if !ok {
		return nil
	}
	var out []string
	for _, e := range joined.Unwrap() {
		out = append(out, e.Error())
	}
	return out
}
