package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bayesplay/adapters/excel"
	"bayesplay/app"
	"bayesplay/domain/core"
	"bayesplay/internal"
	"bayesplay/internal/config"
	"bayesplay/internal/errors"
	"bayesplay/internal/grid"
	"bayesplay/internal/modelfile"
	"bayesplay/ports"
)

// cli carries state shared by all commands.
type cli struct {
	out       io.Writer
	modelPath string
	cfg       *config.Config
	service   *app.ModelService
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	rootCmd := &cobra.Command{
		Use:   "bayesplay",
		Short: "Evaluate priors, likelihoods and posteriors and compute Bayes factors",
		Long: `bayesplay works on a model file naming a likelihood, a prior and an optional
null prior, in YAML or JSON:

  likelihood:
    family: noncentral_d
    params: [{name: d, value: 0.227}, {name: n, value: 80}]
  prior:
    family: cauchy
    params: [{name: location, value: 0}, {name: scale, value: 0.707}]
  null_prior:
    family: point
    params: [{name: point, value: 0}]

Integration tolerances are read from BAYESPLAY_REL_TOL, BAYESPLAY_ABS_TOL and
BAYESPLAY_MAX_SUBDIVISIONS.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := internal.NewLogger(cmd.ErrOrStderr(), cfg.Log.Level)
			c.cfg = cfg
			c.service = app.NewModelService(cfg.Integration.Quadrature(logger), logger)
			return nil
		},
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().StringVarP(&c.modelPath, "model", "m", "", "Path to a .yaml, .yml or .json model file")

	rootCmd.AddCommand(
		c.newEvaluateCmd(),
		c.newIntegrateCmd(),
		c.newEvidenceCmd(),
		c.newBayesFactorCmd(),
		c.newSweepCmd(),
		c.newSummarizeCmd(),
		c.newSchemaCmd(),
	)
	return rootCmd
}

func (c *cli) load() (*modelfile.Document, error) {
	if c.modelPath == "" {
		return nil, errors.InvalidInput("--model is required")
	}
	doc, err := modelfile.Load(c.modelPath)
	if err != nil {
		var docErr *modelfile.DocumentError
		if stderrors.As(err, &docErr) {
			err = errors.WithCode(errors.CodeValidationError, err)
		}
		return nil, errors.Wrapf(err, "model file %s", c.modelPath)
	}
	return doc, nil
}

func (c *cli) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, string(data))
	return err
}

// function builds the target of evaluate and sweep.
func (c *cli) function(cmd *cobra.Command, doc *modelfile.Document, target string) (ports.Function, error) {
	switch target {
	case "prior":
		return c.service.BuildPrior(doc.Prior.App())
	case "likelihood":
		return c.service.BuildLikelihood(doc.Likelihood.App())
	case "model":
		return c.service.BuildModel(doc.Prior.App(), doc.Likelihood.App())
	case "posterior":
		return c.service.BuildPosterior(cmd.Context(), doc.Prior.App(), doc.Likelihood.App())
	default:
		return nil, fmt.Errorf("unknown target %q (use prior, likelihood, model or posterior)", target)
	}
}

func (c *cli) newEvaluateCmd() *cobra.Command {
	var target string
	var xs []float64

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate the prior, likelihood, model or posterior at points",
		Long: `Evaluate a function of the model at one or more parameter values.
Points outside the support print as null.

Example: bayesplay evaluate -m ttest.yaml --target posterior --x 0,0.2,0.4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.load()
			if err != nil {
				return err
			}
			fn, err := c.function(cmd, doc, target)
			if err != nil {
				return err
			}
			values, err := fn.FunctionVec(xs)
			if err != nil {
				return err
			}
			return c.printJSON(map[string]any{"x": xs, "values": values})
		},
	}
	cmd.Flags().StringVar(&target, "target", "posterior", "prior|likelihood|model|posterior")
	cmd.Flags().Float64SliceVar(&xs, "x", nil, "Comma separated parameter values")
	return cmd
}

func (c *cli) newIntegrateCmd() *cobra.Command {
	var target string
	var lower, upper float64

	cmd := &cobra.Command{
		Use:   "integrate",
		Short: "Integrate the prior, model or posterior over an interval",
		Long: `Integrate over [lower, upper]. An omitted bound is the edge of the support.

Example: bayesplay integrate -m ttest.yaml --target posterior --lower 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.load()
			if err != nil {
				return err
			}
			var lo, hi *float64
			if cmd.Flags().Changed("lower") {
				lo = core.Bound(lower)
			}
			if cmd.Flags().Changed("upper") {
				hi = core.Bound(upper)
			}

			var v float64
			switch target {
			case "prior":
				p, err := c.service.BuildPrior(doc.Prior.App())
				if err != nil {
					return err
				}
				v, err = p.IntegrateContext(cmd.Context(), lo, hi)
				if err != nil {
					return err
				}
			case "model":
				m, err := c.service.BuildModel(doc.Prior.App(), doc.Likelihood.App())
				if err != nil {
					return err
				}
				v, err = m.IntegrateContext(cmd.Context(), lo, hi)
				if err != nil {
					return err
				}
			case "posterior":
				p, err := c.service.BuildPosterior(cmd.Context(), doc.Prior.App(), doc.Likelihood.App())
				if err != nil {
					return err
				}
				v, err = p.IntegrateContext(cmd.Context(), lo, hi)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown target %q (use prior, model or posterior)", target)
			}
			return c.printJSON(map[string]any{"value": v})
		},
	}
	cmd.Flags().StringVar(&target, "target", "posterior", "prior|model|posterior")
	cmd.Flags().Float64Var(&lower, "lower", 0, "Lower bound")
	cmd.Flags().Float64Var(&upper, "upper", 0, "Upper bound")
	return cmd
}

func (c *cli) newEvidenceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evidence",
		Short: "Compute the marginal likelihood of prior x likelihood",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.load()
			if err != nil {
				return err
			}
			ev, err := c.service.Evidence(cmd.Context(), doc.Prior.App(), doc.Likelihood.App())
			if err != nil {
				return err
			}
			return c.printJSON(map[string]any{"evidence": ev.Value})
		},
	}
}

func (c *cli) newBayesFactorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bayes-factor",
		Short: "Compare the prior against the null prior under the same likelihood",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.load()
			if err != nil {
				return err
			}
			if doc.NullPrior == nil {
				return errors.ValidationError(fmt.Sprintf("model file %s has no null_prior", c.modelPath))
			}
			cmp, err := c.service.CompareModels(cmd.Context(), doc.Likelihood.App(), doc.Prior.App(), doc.NullPrior.App())
			if err != nil {
				return err
			}
			// bf01 is undefined when the alternative has no evidence
			var bf01 *float64
			if cmp.BF10 > 0 {
				v := 1 / cmp.BF10
				bf01 = &v
			}
			return c.printJSON(map[string]any{
				"h1":   cmp.H1.Value,
				"h0":   cmp.H0.Value,
				"bf10": cmp.BF10,
				"bf01": bf01,
			})
		},
	}
}

func (c *cli) newSweepCmd() *cobra.Command {
	var lower, upper float64
	var points int
	var export string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Evaluate prior, likelihood and posterior over a grid",
		Long: `Evaluate prior, likelihood and posterior over evenly spaced points and print
a summary of each series. With --xlsx the grid is exported; a .csv path writes CSV.
Relative export paths are resolved against EXPORT_DIR.

Example: bayesplay sweep -m ttest.yaml --lower -2 --upper 2 --points 401 --xlsx sweep.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.load()
			if err != nil {
				return err
			}
			series := make([]grid.Series, 0, 3)
			for _, target := range []string{"prior", "likelihood", "posterior"} {
				fn, err := c.function(cmd, doc, target)
				if err != nil {
					return err
				}
				series = append(series, grid.Series{Name: target, Fn: fn})
			}

			table, err := grid.Sweep(cmd.Context(), lower, upper, points, series...)
			if err != nil {
				return err
			}

			if err := c.printSummaries(table); err != nil {
				return err
			}

			if export == "" {
				return nil
			}
			path := export
			if !filepath.IsAbs(path) {
				path = filepath.Join(c.cfg.Export.Dir, path)
			}
			if err := excel.NewWriter(excel.DefaultExportConfig(), nil).WriteSweep(path, table); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "exported %s\n", path)
			return nil
		},
	}
	cmd.Flags().Float64Var(&lower, "lower", -3, "Lower end of the grid")
	cmd.Flags().Float64Var(&upper, "upper", 3, "Upper end of the grid")
	cmd.Flags().IntVar(&points, "points", 301, "Number of grid points")
	cmd.Flags().StringVar(&export, "xlsx", "", "Export the grid to this .xlsx or .csv file")
	return cmd
}

func (c *cli) printSummaries(table *grid.Table) error {
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SERIES\tCOUNT\tMISSING\tMIN\tMAX\tARGMAX\tAREA\tMASS")
	for _, col := range table.Columns {
		s, err := grid.Summarize(table.X, col)
		if err != nil {
			fmt.Fprintf(tw, "%s\t0\t%d\t-\t-\t-\t-\t-\n", col.Name, len(col.Values))
			continue
		}
		mass := "-"
		if s.Mass != nil {
			mass = fmt.Sprintf("%.6g", *s.Mass)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.6g\t%.6g\t%.6g\t%.6g\t%s\n",
			s.Name, s.Count, s.Missing, s.Min, s.Max, s.ArgMax, s.Area, mass)
	}
	return tw.Flush()
}

func (c *cli) newSummarizeCmd() *cobra.Command {
	var sheet string

	cmd := &cobra.Command{
		Use:   "summarize FILE",
		Short: "Summarize a sweep previously exported to .xlsx or .csv",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := excel.NewSweepReader(args[0], excel.ExportConfig{SheetName: sheet}).ReadSweep()
			if err != nil {
				return err
			}
			return c.printSummaries(table)
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", excel.DefaultExportConfig().SheetName, "Sheet holding the grid in .xlsx files")
	return cmd
}

func (c *cli) newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of model files",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := modelfile.Schema()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.out, strings.TrimSpace(string(s)))
			return err
		},
	}
}
