package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/qsense/kinfit/internal/config"
	"github.com/qsense/kinfit/internal/dataset"
	"github.com/qsense/kinfit/internal/fitting"
	"github.com/qsense/kinfit/internal/kinetics"
	"github.com/qsense/kinfit/internal/metrics"
	"github.com/qsense/kinfit/internal/params"
	"github.com/qsense/kinfit/internal/prompt"
	"github.com/qsense/kinfit/internal/report"
	"github.com/qsense/kinfit/internal/storage"
)

var (
	dataDir    string
	configFile string
	preset     string
	dataFile   string
	paramFile  string
	model      string
	valueCol   int
	maxIter    int
	skipPrompt bool
	showAscii  bool
	// gen flags
	genParams string
	genOnset  float64
	genBase   float64
	genCount  int
	genStep   float64
	genNoise  float64
	genSeed   int64
	genOut    string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kinfit",
		Short: "kinetic model fitting for QCM-D frequency data",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".kinfit", "run data directory")

	fitCmd := &cobra.Command{
		Use:   "fit",
		Short: "fit a kinetic model to a data file",
		RunE:  runFit,
	}
	fitCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	fitCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	fitCmd.Flags().StringVar(&dataFile, "data-file", "", "time/frequency CSV")
	fitCmd.Flags().StringVar(&paramFile, "param-file", "", "parameter table CSV")
	fitCmd.Flags().StringVar(&model, "model", "", "kinetic model variant")
	fitCmd.Flags().IntVar(&valueCol, "column", 0, "frequency-shift column index")
	fitCmd.Flags().IntVar(&maxIter, "max-iter", 0, "optimizer iteration budget")
	fitCmd.Flags().BoolVar(&skipPrompt, "yes", false, "skip the confirmation prompt")
	fitCmd.Flags().BoolVar(&showAscii, "ascii", false, "print terminal plots after the fit")

	genCmd := &cobra.Command{
		Use:   "gen [model]",
		Short: "generate a synthetic data file from known parameters",
		Args:  cobra.ExactArgs(1),
		RunE:  runGen,
	}
	genCmd.Flags().StringVar(&genParams, "params", "", "comma-separated parameter values")
	genCmd.Flags().Float64Var(&genOnset, "onset", 0, "adsorption onset time")
	genCmd.Flags().Float64Var(&genBase, "baseline", 0, "baseline shift at onset")
	genCmd.Flags().IntVar(&genCount, "n", 500, "sample count")
	genCmd.Flags().Float64Var(&genStep, "step", 1.0, "sample spacing")
	genCmd.Flags().Float64Var(&genNoise, "noise", 0.0, "gaussian noise sigma")
	genCmd.Flags().Int64Var(&genSeed, "seed", time.Now().UnixNano(), "random seed")
	genCmd.Flags().StringVar(&genOut, "out", "data.csv", "output path")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list kinetic model variants",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range kinetics.Names() {
				m, err := kinetics.New(name)
				if err != nil {
					continue
				}
				fmt.Printf("%-12s parameters: %s\n", name, strings.Join(m.ParamNames(), ", "))
			}
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored fit runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	traceCmd := &cobra.Command{
		Use:   "trace [run_id]",
		Short: "plot a stored run's loss trace",
		Args:  cobra.ExactArgs(1),
		RunE:  traceRun,
	}

	rootCmd.AddCommand(fitCmd, genCmd, modelsCmd, presetsCmd, listCmd, showCmd, plotCmd, traceCmd)

	return rootCmd
}

func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		mdl := model
		if mdl == "" {
			mdl = cfg.Model
		}
		p := config.GetPreset(mdl, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(mdl))
		}
		cfg.Model = p.Model
		cfg.OnsetScan = p.OnsetScan
		cfg.Saturation = p.Saturation
		cfg.Optimizer = p.Optimizer
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	// CLI flags override both preset and file.
	if cmd.Flags().Changed("data-file") {
		cfg.DataFile = dataFile
	}
	if cmd.Flags().Changed("param-file") {
		cfg.ParamFile = paramFile
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = model
	}
	if cmd.Flags().Changed("column") {
		cfg.ValueColumn = valueCol
	}
	if cmd.Flags().Changed("max-iter") {
		cfg.Optimizer.MaxIterations = maxIter
	}
	if cmd.Flags().Changed("data") {
		cfg.DataDir = dataDir
	}

	return cfg, cfg.Validate()
}

func runFit(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	series, err := dataset.Load(cfg.DataFile, cfg.ValueColumn)
	if err != nil {
		return err
	}

	set, err := params.Load(cfg.ParamFile)
	if err != nil {
		return err
	}

	mdl, err := kinetics.New(cfg.Model)
	if err != nil {
		return err
	}
	if sat, ok := mdl.(*kinetics.Saturation); ok {
		sat.OnsetTime = cfg.Saturation.Onset
		sat.Baseline = cfg.Saturation.Baseline
		sat.SwitchScale = cfg.Saturation.SwitchScale
		sat.SwitchRate = cfg.Saturation.SwitchRate
	}

	if !skipPrompt {
		ok, err := prompt.Confirm(set)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("fit cancelled")
			return nil
		}
	}

	fitData := series
	if !cfg.FitWindow.Unset() {
		fitData = series.Trim(cfg.FitWindow.Left, cfg.FitWindow.Right)
	}
	if len(fitData) < 2 {
		return fmt.Errorf("fit window holds %d samples, need at least 2", len(fitData))
	}

	opt := fitting.NewMarquardt()
	opt.MaxIterations = cfg.Optimizer.MaxIterations
	opt.Tolerance = cfg.Optimizer.Tolerance

	initial := set.Snapshot()
	lower, upper := set.Bounds()
	bounds := fitting.Bounds{Lower: lower, Upper: upper}

	fmt.Printf("fitting %s model to %d samples...\n", cfg.Model, len(fitData))
	start := time.Now()

	var result *fitting.FitResult
	var trace fitting.Trace
	onsetModel, hasOnset := mdl.(kinetics.OnsetModel)

	if cfg.OnsetScan.Enabled && hasOnset {
		span := fitData
		if cfg.OnsetScan.Min != 0 || cfg.OnsetScan.Max != 0 {
			span = series.Trim(cfg.OnsetScan.Min, cfg.OnsetScan.Max)
		}
		scan := fitting.NewOnsetScan()
		if cfg.OnsetScan.MaxCandidates > 0 {
			scan.MaxCandidates = cfg.OnsetScan.MaxCandidates
		}
		scanResult, err := scan.Search(context.Background(), onsetModel, fitData, span, opt, initial, bounds)
		if err != nil {
			return err
		}
		result = scanResult.Best
		trace = scanResult.Trace()
		fmt.Printf("onset scan: best at t=%.2f over %d candidates\n", scanResult.Onset, len(scanResult.Candidates))
	} else {
		loss := fitting.NewLoss(mdl, fitData)
		result, err = opt.Fit(context.Background(), initial, bounds, loss.Size(), loss.Residuals)
		if err != nil {
			return err
		}
		trace = result.Trace
	}

	elapsed := time.Since(start)

	if err := set.Update(result.Params); err != nil {
		return err
	}
	if result.Warning != nil {
		fmt.Printf("warning: %v; reporting best-effort fit\n", result.Warning)
	}

	summary := metrics.Evaluate(mdl, result.Params, fitData)

	fmt.Printf("completed in %v\n\n", elapsed)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARAMETER\tINITIAL\tFITTED")
	for i, def := range set.Defs() {
		fmt.Fprintf(w, "%s\t%.6g\t%.6g\n", def.Name, initial[i], result.Params[i])
	}
	w.Flush()
	fmt.Printf("\nloss: %.6g -> %.6g  (rmse %.4g, r2 %.4f)\n",
		result.InitialLoss, result.FinalLoss, summary.RMSE, summary.RSq)

	if sat, ok := mdl.(*kinetics.Saturation); ok {
		if plateau, found := sat.Plateau(result.Params); found {
			fmt.Printf("saturation plateau: %.4g Hz\n", plateau)
		}
		windowStart := fitData[0].Time
		if shift, found := sat.BaselineShift(result.Params, windowStart); found {
			fmt.Printf("baseline shift: %.4g Hz\n", shift)
		}
	}

	plotData := series
	if !cfg.PlotWindow.Unset() {
		plotData = series.Trim(cfg.PlotWindow.Left, cfg.PlotWindow.Right)
	}
	curves := report.Curves{
		Data:        plotData,
		Model:       mdl,
		Initial:     initial,
		Fitted:      result.Params,
		InitialLoss: result.InitialLoss,
		FinalLoss:   result.FinalLoss,
		BestEffort:  result.Warning != nil,
	}

	if err := set.Export(cfg.Output.ParamsFile, result.Params); err != nil {
		return err
	}
	if err := report.WriteTrace(cfg.Output.TraceFile, trace); err != nil {
		return err
	}
	if cfg.Output.PlotFile != "" {
		if err := report.WritePNG(cfg.Output.PlotFile, curves); err != nil {
			return err
		}
	}
	if cfg.Output.SVGFile != "" {
		if err := report.WriteSVG(cfg.Output.SVGFile, curves, 800, 500); err != nil {
			return err
		}
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	meta := storage.RunMetadata{
		Model:       cfg.Model,
		DataFile:    cfg.DataFile,
		ParamNames:  set.Names(),
		Initial:     initial,
		Fitted:      result.Params,
		InitialLoss: result.InitialLoss,
		FinalLoss:   result.FinalLoss,
		Converged:   result.Converged(),
		Metrics:     summary.Map(),
	}
	if hasOnset {
		meta.Onset = onsetModel.Onset()
	}
	runID, err := st.Save(meta, curves, trace)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)

	if showAscii {
		fmt.Println()
		fmt.Println(report.AsciiCurves(curves))
		fmt.Println()
		fmt.Println(report.AsciiTrace(trace))
	}

	return nil
}

func runGen(cmd *cobra.Command, args []string) error {
	mdl, err := kinetics.New(args[0])
	if err != nil {
		return err
	}

	var p params.Vector
	if genParams != "" {
		for _, field := range strings.Split(genParams, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return fmt.Errorf("bad parameter value %q", field)
			}
			p = append(p, v)
		}
	}
	if len(p) != len(mdl.ParamNames()) {
		return fmt.Errorf("%s needs %d parameters (%s), got %d",
			mdl.Name(), len(mdl.ParamNames()), strings.Join(mdl.ParamNames(), ", "), len(p))
	}

	if om, ok := mdl.(kinetics.OnsetModel); ok {
		om.SetOnset(genOnset, genBase)
	}

	rng := rand.New(rand.NewSource(genSeed))

	f, err := os.Create(genOut)
	if err != nil {
		return fmt.Errorf("write %s: %w", genOut, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"time", "frequency_shift"}); err != nil {
		return fmt.Errorf("write %s: %w", genOut, err)
	}
	for i := 0; i < genCount; i++ {
		t := float64(i) * genStep
		v := mdl.Eval(t, p) + genNoise*rng.NormFloat64()
		row := []string{
			strconv.FormatFloat(t, 'f', 6, 64),
			strconv.FormatFloat(v, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", genOut, err)
		}
	}

	fmt.Printf("wrote %d samples to %s\n", genCount, genOut)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tLOSS\tCONVERGED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.4g\t%v\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.FinalLoss,
			run.Converged,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	_, observed, _, fitted, err := st.LoadCurves(args[0])
	if err != nil {
		return err
	}
	if len(observed) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(observed))

	fmt.Println(asciiSeries(observed, "observed frequency shift"))
	fmt.Println()
	fmt.Println(asciiSeries(fitted, "fitted model"))

	return nil
}

func asciiSeries(data []float64, caption string) string {
	return asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
}

func traceRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	trace, err := st.LoadTrace(args[0])
	if err != nil {
		return err
	}
	fmt.Println(report.AsciiTrace(trace))
	return nil
}
