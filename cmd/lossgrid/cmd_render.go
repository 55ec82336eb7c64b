package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spboyer/lossgrid/internal/collector"
	"github.com/spboyer/lossgrid/internal/colorscale"
	"github.com/spboyer/lossgrid/internal/dataset"
	"github.com/spboyer/lossgrid/internal/logging"
	"github.com/spboyer/lossgrid/internal/models"
	"github.com/spboyer/lossgrid/internal/predict"
	"github.com/spboyer/lossgrid/internal/projectconfig"
	"github.com/spboyer/lossgrid/internal/render"
	"github.com/spboyer/lossgrid/internal/reporting"
	"github.com/spboyer/lossgrid/internal/spinner"
	"github.com/spf13/cobra"
)

type renderFlags struct {
	project    string
	data       string
	shape      string
	n          int
	batchSize  int
	columns    int
	cellSize   int
	dotSpacing int
	dotRadius  float64
	degenerate string
	predictor  string
	command    string
	args       []string
	out        string
}

func newRenderCommand(root *rootOptions) *cobra.Command {
	var f *renderFlags

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Collect samples, rank them by loss and draw the grid",
		Long: `Render loads a labelled image dataset, scores the first N samples with a
predictor, ranks them by cross-entropy loss and writes a PNG grid.

Settings come from .lossgrid.yaml (searched upward from --project, or the
current directory) and are overridden by any flag given explicitly.

The dataset is a CSV file (optionally .gz or .zst compressed) with a label
column, one p<i> column per pixel in channel-major order, an optional id
column and, for the table predictor, one s<k> column per class score.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return renderCommandE(cmd, root, f)
		},
	}
	f = bindRenderFlags(cmd)

	return cmd
}

func bindRenderFlags(cmd *cobra.Command) *renderFlags {
	f := &renderFlags{}
	fl := cmd.Flags()
	fl.StringVar(&f.project, "project", ".", "Directory to search for "+projectconfig.FileName)
	fl.StringVar(&f.data, "data", "", "Dataset CSV file (.csv, .csv.gz or .csv.zst)")
	fl.StringVar(&f.shape, "shape", projectconfig.DefaultShape, "Per-sample shape as channels,height,width")
	fl.IntVar(&f.n, "n", projectconfig.DefaultSamples, "Number of samples to collect")
	fl.IntVar(&f.batchSize, "batch-size", projectconfig.DefaultBatchSize, "Samples per predictor call")
	fl.IntVar(&f.columns, "columns", projectconfig.DefaultColumns, "Grid columns")
	fl.IntVar(&f.cellSize, "cell-size", projectconfig.DefaultCellSize, "Target cell size in pixels")
	fl.IntVar(&f.dotSpacing, "dot-spacing", projectconfig.DefaultDotSpacing, "Overlay dot spacing in source pixels")
	fl.Float64Var(&f.dotRadius, "dot-radius", projectconfig.DefaultDotRadius, "Overlay dot radius in source pixels")
	fl.StringVar(&f.degenerate, "degenerate", projectconfig.DefaultDegenerate, "Constant images: error or gray")
	fl.StringVar(&f.predictor, "predictor", projectconfig.DefaultPredictor, "Predictor kind: table or program")
	fl.StringVar(&f.command, "command", "", "Program predictor command")
	fl.StringArrayVar(&f.args, "arg", nil, "Program predictor argument (repeatable)")
	fl.StringVarP(&f.out, "out", "o", projectconfig.DefaultOutput, "Output PNG path")
	return f
}

func renderCommandE(cmd *cobra.Command, root *rootOptions, f *renderFlags) error {
	cfg, err := projectconfig.Load(f.project)
	if err != nil {
		return err
	}
	applyRenderFlags(cmd, cfg, f)

	log, err := newLogger(cmd, root, cfg)
	if err != nil {
		return err
	}
	defer log.Close() //nolint:errcheck
	logger := log.Slog()
	if p := log.Path(); p != "" {
		logger.Debug("logging to file", "path", p)
	}

	if cfg.Dataset.Path == "" {
		return models.NewInvalidInput("data", "no dataset given; pass --data or set dataset.path in %s", projectconfig.FileName)
	}
	shape, err := dataset.ParseShape(cfg.Dataset.Shape)
	if err != nil {
		return err
	}
	set, err := dataset.Load(cfg.Dataset.Path, shape, cfg.Dataset.Start, cfg.Dataset.End)
	if err != nil {
		return err
	}
	logger.Info("loaded dataset", "path", cfg.Dataset.Path, "items", set.Len(), "shape", shape.String())

	pred, err := predict.New(predict.Kind(cfg.Predictor.Kind), cfg.Predictor.Params, set.ScoreTable())
	if err != nil {
		return err
	}

	opts := []collector.Option{collector.WithLogger(logger)}
	n := cfg.Collect.Samples
	if !root.quiet && spinner.Enabled(os.Stderr) {
		sp := spinner.Start(os.Stderr, fmt.Sprintf("collecting 0/%d", n))
		defer sp.Stop()
		opts = append(opts, collector.WithProgress(func(collected int) {
			sp.Update(fmt.Sprintf("collecting %d/%d", collected, n))
		}))
	}

	samples, err := collector.New(pred, opts...).Collect(cmd.Context(), set.Batches(cfg.Collect.BatchSize), n)
	if err != nil {
		return err
	}

	renderOpts, err := renderOptions(cfg, logger)
	if err != nil {
		return err
	}
	r, err := render.New(renderOpts)
	if err != nil {
		return err
	}
	fig, err := r.Render(samples)
	if err != nil {
		return err
	}

	out := cfg.Render.Output
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := fig.SavePNG(out); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	logger.Info("wrote grid", "path", out, "samples", len(fig.Samples), "rows", fig.Layout.Rows())

	if !root.quiet {
		reporting.WriteSummary(cmd.OutOrStdout(), reporting.Summary{
			Samples:   fig.Samples,
			Requested: n,
			Output:    out,
			Scale:     renderOpts.Scale,
		})
	}
	return nil
}

// applyRenderFlags overrides config values with flags the user set explicitly.
func applyRenderFlags(cmd *cobra.Command, cfg *projectconfig.ProjectConfig, f *renderFlags) {
	changed := cmd.Flags().Changed

	if changed("data") {
		cfg.Dataset.Path = f.data
	}
	if changed("shape") {
		cfg.Dataset.Shape = f.shape
	}
	if changed("n") {
		cfg.Collect.Samples = f.n
	}
	if changed("batch-size") {
		cfg.Collect.BatchSize = f.batchSize
	}
	if changed("columns") {
		cfg.Render.Columns = f.columns
	}
	if changed("cell-size") {
		cfg.Render.CellSize = f.cellSize
	}
	if changed("dot-spacing") {
		cfg.Render.DotSpacing = f.dotSpacing
	}
	if changed("dot-radius") {
		cfg.Render.DotRadius = f.dotRadius
	}
	if changed("degenerate") {
		cfg.Render.Degenerate = f.degenerate
	}
	if changed("out") {
		cfg.Render.Output = f.out
	}
	if changed("predictor") {
		cfg.Predictor.Kind = f.predictor
	}
	if changed("command") || changed("arg") {
		params := map[string]any{}
		for k, v := range cfg.Predictor.Params {
			params[k] = v
		}
		if changed("command") {
			params["command"] = f.command
			if !changed("predictor") {
				cfg.Predictor.Kind = string(predict.KindProgram)
			}
		}
		if changed("arg") {
			params["args"] = f.args
		}
		cfg.Predictor.Params = params
	}
}

func newLogger(cmd *cobra.Command, root *rootOptions, cfg *projectconfig.ProjectConfig) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	if root.debug {
		level = slog.LevelDebug
	}
	return logging.New(logging.Options{
		Name:     cfg.Logging.Name,
		ToScreen: *cfg.Logging.Screen && !root.quiet,
		ToFile:   *cfg.Logging.File || root.logFile,
		Level:    level,
		Dir:      cfg.Logging.Dir,
		Screen:   cmd.ErrOrStderr(),
	})
}

func renderOptions(cfg *projectconfig.ProjectConfig, logger *slog.Logger) (render.Options, error) {
	opts := render.DefaultOptions()
	rc := cfg.Render

	opts.Columns = rc.Columns
	opts.Slots = cfg.Collect.Samples
	opts.CellSize = rc.CellSize
	if rc.Padding != nil {
		opts.Padding = *rc.Padding
	}
	opts.DotSpacing = rc.DotSpacing
	opts.DotRadius = rc.DotRadius
	if rc.DotAlpha != nil {
		opts.DotAlpha = *rc.DotAlpha
	}
	opts.Degenerate = render.DegeneratePolicy(rc.Degenerate)
	opts.Logger = logger

	if len(rc.ColorStops) > 0 {
		positions := make([]float64, len(rc.ColorStops))
		colors := make([]string, len(rc.ColorStops))
		for i, s := range rc.ColorStops {
			positions[i] = s.At
			colors[i] = s.Color
		}
		scale, err := colorscale.ParseStops(positions, colors)
		if err != nil {
			return render.Options{}, err
		}
		opts.Scale = scale
	}
	return opts, nil
}
