package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/cmplx"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/branchwave/internal/config"
	"github.com/san-kum/branchwave/internal/diag"
	"github.com/san-kum/branchwave/internal/export"
	"github.com/san-kum/branchwave/internal/frame"
	"github.com/san-kum/branchwave/internal/modeshape"
	"github.com/san-kum/branchwave/internal/solver"
	"github.com/san-kum/branchwave/internal/storage"
	"github.com/san-kum/branchwave/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	metricsOut string

	sweepStart float64
	sweepStop  float64
	sweepStep  float64
	newtonTol  float64
	maxIter    int
	precision  float64
	atol       float64
	rtol       float64
	modeStep   float64

	scale   float64
	save    bool
	pngOut  string
	svgOut  string
	jsonOut string

	loadMember     int
	loadConstraint int
	loadForce      float64
	loadPosition   float64

	logOutput io.Writer = os.Stderr
)

// main registers the commands and flags and executes the root command.
// It exits the process with status 1 if command execution returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "branchwave",
		Short:        "wave-propagation vibration analysis of branched frames",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultOutputDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset frame")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error, off)")
	rootCmd.PersistentFlags().StringVar(&metricsOut, "metrics-out", "", "write prometheus metrics to this file on exit")

	rootCmd.PersistentFlags().Float64Var(&sweepStart, "start", config.DefaultSweepStart, "sweep start (Hz)")
	rootCmd.PersistentFlags().Float64Var(&sweepStop, "stop", config.DefaultSweepStop, "sweep stop (Hz)")
	rootCmd.PersistentFlags().Float64Var(&sweepStep, "step", config.DefaultSweepStep, "sweep step (Hz)")
	rootCmd.PersistentFlags().Float64Var(&newtonTol, "tol", config.DefaultNewtonTol, "newton step tolerance (Hz)")
	rootCmd.PersistentFlags().IntVar(&maxIter, "max-iter", config.DefaultNewtonMaxIter, "newton iteration limit")
	rootCmd.PersistentFlags().Float64Var(&precision, "precision", config.DefaultPrecision, "bisection bracket width (Hz)")
	rootCmd.PersistentFlags().Float64Var(&atol, "atol", config.DefaultAtol, "absolute eigenvalue tolerance")
	rootCmd.PersistentFlags().Float64Var(&rtol, "rtol", config.DefaultRtol, "relative eigenvalue tolerance")
	rootCmd.PersistentFlags().Float64Var(&modeStep, "mode-step", config.DefaultModeStep, "mode shape sampling step (m)")

	detCmd := &cobra.Command{
		Use:   "det [hz]",
		Short: "evaluate det A at a frequency",
		Args:  cobra.ExactArgs(1),
		RunE:  runDet,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep det A and locate natural frequencies",
		RunE:  runSweep,
	}
	sweepCmd.Flags().BoolVar(&save, "save", false, "store the sweep in the data directory")
	sweepCmd.Flags().StringVar(&pngOut, "png", "", "write a png plot")
	sweepCmd.Flags().StringVar(&jsonOut, "json", "", "export samples and roots as json")

	newtonCmd := &cobra.Command{
		Use:   "newton [guess_hz]",
		Short: "refine a natural frequency with Newton-Raphson",
		Args:  cobra.ExactArgs(1),
		RunE:  runNewton,
	}

	bisectCmd := &cobra.Command{
		Use:   "bisect [lo_hz] [hi_hz]",
		Short: "bisect a bracket for a natural frequency",
		Args:  cobra.ExactArgs(2),
		RunE:  runBisect,
	}

	modeCmd := &cobra.Command{
		Use:   "mode [hz]",
		Short: "extract the mode shape at a natural frequency",
		Args:  cobra.ExactArgs(1),
		RunE:  runMode,
	}
	modeCmd.Flags().Float64Var(&scale, "scale", 0.1, "displacement scale for drawings")
	modeCmd.Flags().BoolVar(&save, "save", false, "store the mode in the data directory")
	modeCmd.Flags().StringVar(&pngOut, "png", "", "write a png drawing")
	modeCmd.Flags().StringVar(&svgOut, "svg", "", "write an svg drawing")

	respondCmd := &cobra.Command{
		Use:   "respond [hz]",
		Short: "forced response to the configured point loads",
		Args:  cobra.ExactArgs(1),
		RunE:  runRespond,
	}
	respondCmd.Flags().IntVar(&loadMember, "load-member", -1, "add a load on this member")
	respondCmd.Flags().IntVar(&loadConstraint, "load-constraint", -1, "measure the load position from this constraint")
	respondCmd.Flags().Float64Var(&loadForce, "force", 1, "load magnitude (N)")
	respondCmd.Flags().Float64Var(&loadPosition, "position", 0, "load position (m)")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "explore a sweep interactively",
		RunE:  runTUI,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset frames",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(detCmd, sweepCmd, newtonCmd, bisectCmd, modeCmd, respondCmd, runsCmd, plotCmd, tuiCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// session is a built frame with its solver and diagnostics.
type session struct {
	cfg     *config.Config
	frame   *frame.Frame
	solver  *solver.Solver
	sink    diag.Sink
	metrics *diag.Metrics
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, err
		}
	case preset != "":
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (see branchwave presets)", preset)
		}
	default:
		return nil, fmt.Errorf("no frame given: use --config or --preset")
	}

	flags := cmd.Flags()
	if flags.Changed("start") {
		cfg.Sweep.Start = sweepStart
	}
	if flags.Changed("stop") {
		cfg.Sweep.Stop = sweepStop
	}
	if flags.Changed("step") {
		cfg.Sweep.Step = sweepStep
	}
	if flags.Changed("tol") {
		cfg.Solver.NewtonTol = newtonTol
	}
	if flags.Changed("max-iter") {
		cfg.Solver.NewtonMaxIter = maxIter
	}
	if flags.Changed("precision") {
		cfg.Solver.Precision = precision
	}
	if flags.Changed("atol") {
		cfg.Solver.Atol = atol
	}
	if flags.Changed("rtol") {
		cfg.Solver.Rtol = rtol
	}
	if flags.Changed("mode-step") {
		cfg.ModeStep = modeStep
	}
	if flags.Changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("data") || cfg.OutputDir == "" {
		cfg.OutputDir = dataDir
	}
	if flags.Lookup("load-member") != nil && loadMember >= 0 {
		cfg.Loads = append(cfg.Loads, config.LoadConfig{
			Member:     loadMember,
			Constraint: loadConstraint,
			Force:      loadForce,
			Position:   loadPosition,
		})
	}
	return cfg, cfg.Validate()
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := diag.NewZerolog(logOutput, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	metrics := diag.NewMetrics()

	f, err := cfg.Frame(frame.WithSink(logger), frame.WithMetrics(metrics))
	if err != nil {
		return nil, err
	}
	if f.State() != frame.Complete {
		logger.Infof("frame is %s: some member ends are unconstrained", f.State())
	}

	s := solver.New(f,
		solver.WithCertifyTolerance(cfg.Solver.CertifyTolerance),
		solver.WithBisection(cfg.Solver.Precision, cfg.Solver.BisectMaxIter),
		solver.WithSink(logger),
		solver.WithMetrics(metrics),
	)
	return &session{cfg: cfg, frame: f, solver: s, sink: logger, metrics: metrics}, nil
}

func (s *session) close() error {
	if metricsOut == "" {
		return nil
	}
	return s.metrics.WriteFile(metricsOut)
}

func (s *session) name() string {
	if s.cfg.Name != "" {
		return s.cfg.Name
	}
	return "frame"
}

func parseHz(arg string) (float64, error) {
	hz, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frequency %q: %w", arg, err)
	}
	return hz, nil
}

func runDet(cmd *cobra.Command, args []string) error {
	hz, err := parseHz(args[0])
	if err != nil {
		return err
	}
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	d, err := s.solver.Determinant(hz)
	if err != nil {
		return err
	}
	ratio, ok, err := s.solver.Certify(hz)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "frequency\t%g Hz\n", hz)
	fmt.Fprintf(w, "unknowns\t%d\n", len(s.frame.Params()))
	fmt.Fprintf(w, "det A\t%.6e\n", d)
	fmt.Fprintf(w, "|det A|\t%.6e\n", cmplx.Abs(d))
	fmt.Fprintf(w, "sigma_min/sigma_max\t%.3e\n", ratio)
	fmt.Fprintf(w, "singular\t%v\n", ok)
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	ctx := cmd.Context()
	sw := s.cfg.Sweep
	fmt.Printf("sweeping %s over %g..%g Hz (step %g)...\n", s.name(), sw.Start, sw.Stop, sw.Step)
	start := time.Now()

	samples, err := s.solver.Sweep(ctx, sw.Start, sw.Stop, sw.Step)
	if err != nil {
		return err
	}
	roots, err := s.solver.Scan(ctx, sw.Start, sw.Stop, sw.Step)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))
	fmt.Println(viz.SweepGraph(samples, 80, 12))

	if len(roots) == 0 {
		fmt.Println("\nno natural frequencies found")
	} else {
		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "MODE\tFREQUENCY (Hz)\tSIGMA RATIO")
		for i, r := range roots {
			ratio, _, err := s.solver.Certify(r)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%d\t%.9g\t%.2e\n", i+1, r, ratio)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if save {
		st := storage.New(s.cfg.OutputDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.SaveSweep(s.name(), samples, roots, nil)
		if err != nil {
			return err
		}
		fmt.Printf("\nrun id: %s\n", runID)
	}
	if pngOut != "" {
		if err := viz.SaveSweepPNG(pngOut, s.name(), samples, roots); err != nil {
			return err
		}
		fmt.Printf("plot: %s\n", pngOut)
	}
	if jsonOut != "" {
		exportRoots := make([]storage.ExportRoot, len(roots))
		for i, r := range roots {
			ratio, _, err := s.solver.Certify(r)
			if err != nil {
				return err
			}
			exportRoots[i] = storage.ExportRoot{Frequency: r, Ratio: ratio}
		}
		data := storage.NewExport(s.name(), len(s.frame.Members()), len(s.frame.Params()), samples, exportRoots)
		if err := storage.ExportJSON(jsonOut, data); err != nil {
			return err
		}
		fmt.Printf("json: %s\n", jsonOut)
	}
	return nil
}

func runNewton(cmd *cobra.Command, args []string) error {
	guess, err := parseHz(args[0])
	if err != nil {
		return err
	}
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	hz, err := s.solver.Newton(cmd.Context(), guess, s.cfg.Solver.NewtonTol, s.cfg.Solver.NewtonMaxIter)
	if err != nil {
		return err
	}
	ratio, _, err := s.solver.Certify(hz)
	if err != nil {
		return err
	}
	fmt.Printf("natural frequency: %.9g Hz (sigma ratio %.2e)\n", hz, ratio)
	return nil
}

func runBisect(cmd *cobra.Command, args []string) error {
	lo, err := parseHz(args[0])
	if err != nil {
		return err
	}
	hi, err := parseHz(args[1])
	if err != nil {
		return err
	}
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	res, err := s.solver.Bisect(cmd.Context(), lo, hi, s.cfg.Solver.Precision, s.cfg.Solver.BisectMaxIter)
	if err != nil {
		return err
	}
	if !res.Found {
		fmt.Printf("no root in [%g, %g] Hz\n", lo, hi)
		return nil
	}
	fmt.Printf("natural frequency: %.9g Hz (bracket %.2e Hz, %d iterations)\n", res.Frequency, res.Width, res.Iterations)
	return nil
}

func (s *session) mode(hz float64) (*frame.Solution, []modeshape.Curve, error) {
	sol, err := modeshape.SolveParameters(s.frame, hz, s.cfg.Solver.Atol, s.cfg.Solver.Rtol)
	if err != nil {
		return nil, nil, err
	}
	curves, err := modeshape.Shape(s.frame, sol, s.cfg.ModeStep)
	if err != nil {
		return nil, nil, err
	}
	return sol, curves, nil
}

func runMode(cmd *cobra.Command, args []string) error {
	hz, err := parseHz(args[0])
	if err != nil {
		return err
	}
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	sol, curves, err := s.mode(hz)
	if err != nil {
		return err
	}
	if err := printAmplitudes(sol); err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(viz.ModeGraph(curves, 80, 10))

	if save {
		st := storage.New(s.cfg.OutputDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.SaveMode(s.name(), hz, curves)
		if err != nil {
			return err
		}
		fmt.Printf("\nrun id: %s\n", runID)
	}
	if pngOut != "" {
		if err := viz.SaveModePNG(pngOut, fmt.Sprintf("%s at %.4g Hz", s.name(), hz), curves, scale); err != nil {
			return err
		}
		fmt.Printf("plot: %s\n", pngOut)
	}
	if svgOut != "" {
		if err := export.WriteModeSVG(svgOut, curves, scale, 600, 600); err != nil {
			return err
		}
		fmt.Printf("svg: %s\n", svgOut)
	}
	return nil
}

func printAmplitudes(sol *frame.Solution) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "UNKNOWN\tRE\tIM\t|A|")
	for i, p := range sol.Params {
		v := sol.Values[i]
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%.6f\n", p, real(v), imag(v), cmplx.Abs(v))
	}
	return w.Flush()
}

func runRespond(cmd *cobra.Command, args []string) error {
	hz, err := parseHz(args[0])
	if err != nil {
		return err
	}
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	if !s.frame.Forced() {
		return fmt.Errorf("no point loads: add loads to the config or use --load-member")
	}
	sol, err := s.frame.Response(2 * math.Pi * hz)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MEMBER\tEND\t|V| (m)\t|U| (m)\t|M| (N m)\t|Q| (N)")
	for _, m := range s.frame.Members() {
		for _, end := range []struct {
			name string
			x    float64
		}{{"near", 0}, {"far", m.Length()}} {
			fl, err := m.Fields(sol.W, end.x, sol)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%d\t%s\t%.4e\t%.4e\t%.4e\t%.4e\n", m.ID(), end.name,
				cmplx.Abs(fl.V), cmplx.Abs(fl.U), cmplx.Abs(fl.Moment(m)), cmplx.Abs(fl.Shear(m)))
		}
	}
	return w.Flush()
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
	fmt.Fprintln(w, "ID\tKIND\tFRAME\tTIME\tDETAIL")
	for _, run := range runs {
		detail := fmt.Sprintf("%g Hz", run.Frequency)
		if run.Kind == storage.KindSweep {
			detail = fmt.Sprintf("%g..%g Hz, %d roots", run.Start, run.Stop, len(run.Roots))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			run.ID,
			run.Kind,
			run.Frame,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			detail,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	switch meta.Kind {
	case storage.KindSweep:
		samples, err := st.LoadSweep(meta.ID)
		if err != nil {
			return err
		}
		fmt.Println(viz.SweepGraph(samples, 80, 12))
		for i, r := range meta.Roots {
			fmt.Printf("  mode %d: %.9g Hz\n", i+1, r)
		}
	case storage.KindMode:
		points, err := st.LoadMode(meta.ID)
		if err != nil {
			return err
		}
		data := make([]float64, len(points))
		for i, p := range points {
			data[i] = p.Transverse
		}
		if len(data) == 0 {
			fmt.Println("empty mode")
			return nil
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s mode at %g Hz", meta.Frame, meta.Frequency)),
		))
	default:
		return fmt.Errorf("unknown run kind %q", meta.Kind)
	}
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	// keep log output off the alternate screen
	logOutput = io.Discard
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	ctx := cmd.Context()
	sw := s.cfg.Sweep
	samples, err := s.solver.Sweep(ctx, sw.Start, sw.Stop, sw.Step)
	if err != nil {
		return err
	}
	roots, err := s.solver.Scan(ctx, sw.Start, sw.Stop, sw.Step)
	if err != nil {
		return err
	}
	explorer := viz.NewExplorer(s.name(), samples, roots, func(hz float64) ([]modeshape.Curve, error) {
		_, curves, err := s.mode(hz)
		return curves, err
	})
	return viz.RunExplorer(explorer)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tMEMBERS\tJOINTS\tBOUNDARIES")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", name, len(cfg.Members), len(cfg.Joints), len(cfg.Boundaries))
	}
	return w.Flush()
}
