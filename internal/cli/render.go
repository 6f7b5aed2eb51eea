package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bimtower/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string   // output file path (or base path for multiple outputs)
	views      []string // views: plan, iso, hierarchy, scene
	formats    []string // output formats; empty means each view's default
	scale      float64  // pixels per metre
	labels     bool     // draw element names
	containers bool     // draw spatial containers as outlines
	detailed   bool     // hierarchy labels with positions and properties
	properties bool     // include properties in scene JSON
	refresh    bool     // bypass the artifact cache
}

// renderCommand creates the render command for generating views.
func (c *CLI) renderCommand() *cobra.Command {
	var viewsStr, formatsStr string
	opts := renderOpts{scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "render [manifest]",
		Short: "Render plan, isometric or hierarchy views of a building",
		Long: `Render views of a building manifest.

Views:
  plan       top-down floor plan (svg, png, pdf)
  iso        isometric projection (svg, png, pdf)
  hierarchy  element containment graph (svg, png, pdf, dot)
  scene      resolved geometry for external viewers (json)

PNG and PDF output requires rsvg-convert on PATH.`,
		Example: `  bimtower render house.toml
  bimtower render house.toml -t plan,iso -f svg,png --labels
  bimtower render house.toml -t hierarchy -f dot -o -`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: manifestArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.views = parseList(viewsStr)
			if len(opts.views) == 0 {
				opts.views = []string{pipeline.DefaultView}
			}
			opts.formats = parseList(formatsStr)
			return c.runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single view/format), base path (multiple), or - for stdout")
	cmd.Flags().StringVarP(&viewsStr, "type", "t", "", "view(s): plan (default), iso, hierarchy, scene (comma-separated)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg, png, pdf, dot, json (default depends on view)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "pixels per metre")
	cmd.Flags().BoolVar(&opts.labels, "labels", false, "draw element names")
	cmd.Flags().BoolVar(&opts.containers, "containers", false, "draw spatial containers as outlines")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show positions and properties in the hierarchy view")
	cmd.Flags().BoolVar(&opts.properties, "properties", false, "include element properties in scene JSON")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached artifacts")

	return cmd
}

// renderJob is one view rendered to one or more formats.
type renderJob struct {
	view    string
	options pipeline.Options
}

// plan validates the flags and expands them into one job per view.
func (o renderOpts) plan() ([]renderJob, error) {
	jobs := make([]renderJob, 0, len(o.views))
	for _, view := range o.views {
		formats := o.formats
		if len(formats) > 0 && len(o.views) > 1 {
			// With several views, drop formats a view cannot produce.
			supported := pipeline.FormatsFor(view)
			formats = slices.DeleteFunc(slices.Clone(formats), func(f string) bool {
				return !slices.Contains(supported, f)
			})
			if len(formats) == 0 {
				return nil, fmt.Errorf("view %s supports none of the requested formats (want one of %v)", view, supported)
			}
		}
		opts := pipeline.Options{
			View:       view,
			Formats:    formats,
			Scale:      o.scale,
			Labels:     o.labels,
			Containers: o.containers,
			Detailed:   o.detailed,
			Properties: o.properties,
			Refresh:    o.refresh,
		}
		if err := opts.ValidateAndSetDefaults(); err != nil {
			return nil, err
		}
		jobs = append(jobs, renderJob{view: view, options: opts})
	}
	return jobs, nil
}

// outputPaths maps each view/format pair to a file path. A single artifact
// goes to output verbatim; several artifacts share a base path.
func outputPaths(jobs []renderJob, output, input string) map[string]string {
	total := 0
	for _, j := range jobs {
		total += len(j.options.Formats)
	}

	paths := make(map[string]string, total)
	base := basePath(output, input)
	for _, j := range jobs {
		for _, f := range j.options.Formats {
			key := j.view + "." + f
			switch {
			case total == 1 && output != "":
				paths[key] = output
			case len(jobs) == 1:
				paths[key] = base + "." + f
			default:
				paths[key] = base + "_" + j.view + "." + f
			}
		}
	}
	return paths
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts renderOpts) error {
	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	jobs, err := opts.plan()
	if err != nil {
		return err
	}
	paths := outputPaths(jobs, opts.output, input)
	if opts.output == "-" && len(paths) > 1 {
		return fmt.Errorf("cannot write %d artifacts to stdout; pick a single view and format", len(paths))
	}

	runner, err := c.newRunner(ctx, "cli:")
	if err != nil {
		return err
	}
	defer runner.Close()

	m, err := runner.LoadFile(ctx, input)
	if err != nil {
		return err
	}
	c.Logger.Infof("Loaded %s: %d elements", m.Name, m.Snapshot.Len())

	var spin *Spinner
	if opts.output != "-" && !c.verbose {
		spin = newSpinnerWithContext(ctx, c.errOut, "Rendering "+m.Name)
		spin.Start()
	}

	prog := newProgress(c.Logger)
	written := make([]string, 0, len(paths))
	allCached := true
	for _, j := range jobs {
		artifacts, cached, err := runner.RenderWithCacheInfo(ctx, m, j.options)
		if err != nil {
			if spin != nil {
				spin.StopWithError("Render failed")
			}
			return fmt.Errorf("render %s: %w", j.view, err)
		}
		allCached = allCached && cached
		for _, f := range j.options.Formats {
			path := paths[j.view+"."+f]
			if err := writeOutput(w, path, artifacts[f]); err != nil {
				if spin != nil {
					spin.Stop()
				}
				return err
			}
			written = append(written, path)
		}
	}
	if spin != nil {
		spin.Stop()
	}
	if opts.output == "-" {
		return nil
	}

	prog.done("rendered", "model", m.Name, "artifacts", len(written))
	printSuccess(w, "Rendered %s", StyleHighlight.Render(m.Name))
	printStats(w, m.Snapshot.Len(), len(written), allCached)
	for _, p := range written {
		printFile(w, p)
	}
	return nil
}
