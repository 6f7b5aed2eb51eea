package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bimtower/pkg/pipeline"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var asJSON, interactive bool

	cmd := &cobra.Command{
		Use:   "inspect [manifest]",
		Short: "Summarize a building model",
		Long: `Inspect loads a manifest, resolves placement and prints a summary: element
counts per type, hierarchy depth, model bounds and any problems found.

With --interactive, browse the containment tree in the terminal.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: manifestArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := pipeline.NewRunner(nil, nil, c.Logger)
			m, err := runner.LoadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rep := runner.Inspect(m)

			w := cmd.OutOrStdout()
			switch {
			case asJSON:
				data, err := json.MarshalIndent(rep, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(w, string(data))
				return err
			case interactive:
				p := tea.NewProgram(
					NewElementTreeModel(m.Name, rep.Scene),
					tea.WithAltScreen(),
					tea.WithContext(cmd.Context()),
				)
				_, err := p.Run()
				return err
			}
			printReport(w, rep)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse the element tree interactively")
	cmd.MarkFlagsMutuallyExclusive("json", "interactive")

	return cmd
}

// printReport renders a human-readable inspection report.
func printReport(w io.Writer, rep *pipeline.Report) {
	fmt.Fprintln(w, StyleTitle.Render(rep.Name))
	printKeyValue(w, "hash", shortHash(rep.Hash))
	printKeyValue(w, "elements", strconv.Itoa(rep.Elements))
	printKeyValue(w, "roots", strings.Join(rep.Roots, ", "))
	printKeyValue(w, "depth", strconv.Itoa(rep.MaxDepth))
	if b := rep.Bounds; b != nil {
		printKeyValue(w, "bounds", fmtVec(b.Min)+" "+iconArrow+" "+fmtVec(b.Max))
	}
	fmt.Fprintln(w)

	if len(rep.Types) > 0 {
		fmt.Fprintln(w, typesTable(rep.Types).Render())
	}

	if rep.OK() {
		printSuccess(w, "No problems found")
		return
	}
	for _, p := range rep.Problems {
		printWarning(w, "%s", p)
	}
}

// typesTable lists element counts per type, most frequent first.
func typesTable(types map[string]int) *table.Table {
	names := slices.SortedFunc(maps.Keys(types), func(a, b string) int {
		if d := types[b] - types[a]; d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})
	rows := make([][]string, 0, len(names))
	for _, n := range names {
		rows = append(rows, []string{n, strconv.Itoa(types[n])})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Type", "Count").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 1:
				return StyleNumber
			}
			return StyleValue
		})
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
