package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/pathreplay/internal/automation"
	"github.com/san-kum/pathreplay/internal/bridge"
	"github.com/san-kum/pathreplay/internal/config"
	"github.com/san-kum/pathreplay/internal/export"
	"github.com/san-kum/pathreplay/internal/grid"
	"github.com/san-kum/pathreplay/internal/metrics"
	"github.com/san-kum/pathreplay/internal/provider"
	"github.com/san-kum/pathreplay/internal/replay"
	"github.com/san-kum/pathreplay/internal/storage"
	"github.com/san-kum/pathreplay/internal/tui"
	"github.com/san-kum/pathreplay/internal/viz"
	"github.com/spf13/cobra"
)

var (
	configFile  string
	dataDir     string
	logLevel    string
	preset      string
	obstacles   int
	gridSize    int
	providerURL string
	// play
	manual    bool
	save      bool
	frameRate int
	// export-svg
	outPath   string
	cellSize  float64
	chartPath string
	// serve
	listen string
	// compare
	workers int
	// root
	theme string
)

// main registers the commands and runs the interactive replay when no
// subcommand is given.
func main() {
	rootCmd := &cobra.Command{
		Use:           "pathreplay",
		Short:         "step through grid pathfinding searches",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runInteractive,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().IntVar(&obstacles, "obstacles", -1, "obstacle count requested from the trace service")
	rootCmd.PersistentFlags().IntVar(&gridSize, "size", 0, "grid size used for empty maps")
	rootCmd.PersistentFlags().StringVar(&providerURL, "url", "", "trace service endpoint")
	rootCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme")

	playCmd := &cobra.Command{
		Use:   "play [algorithm]",
		Short: "fetch a trace and play it in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  playTrace,
	}
	playCmd.Flags().BoolVar(&manual, "step", false, "step manually with enter")
	playCmd.Flags().BoolVar(&save, "save", false, "store the run")
	playCmd.Flags().IntVar(&frameRate, "fps", 30, "maximum redraws per second")

	recordCmd := &cobra.Command{
		Use:   "record [algorithm]",
		Short: "fetch a trace and store it without drawing",
		Args:  cobra.MaximumNArgs(1),
		RunE:  recordTrace,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	replayCmd := &cobra.Command{
		Use:   "replay [run_id]",
		Short: "replay a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  replayRun,
	}
	replayCmd.Flags().BoolVar(&manual, "step", false, "step manually with enter")
	replayCmd.Flags().IntVar(&frameRate, "fps", 30, "maximum redraws per second")

	statsCmd := &cobra.Command{
		Use:   "stats [run_id]",
		Short: "plot visited and frontier counts of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  runStats,
	}

	svgCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "write the final grid of a stored run as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (default <run_id>.svg)")
	svgCmd.Flags().Float64Var(&cellSize, "cell", 16, "cell side in pixels")
	svgCmd.Flags().StringVar(&chartPath, "chart", "", "also write the visited count chart here")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve replay sessions to a browser over websocket",
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&listen, "listen", "", "listen address")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "record every run described by a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "replay every stored run and compare algorithms",
		RunE:  compareRuns,
	}
	compareCmd.Flags().IntVar(&workers, "workers", 4, "concurrent replays")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tALGORITHM\tOBSTACLES\tSIZE\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", name, p.Algorithm, p.ObstacleCount, p.GridSize, p.Description)
			}
			w.Flush()
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "pathreplay.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := config.Save(path, config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}

	rootCmd.AddCommand(playCmd, recordCmd, listCmd, replayCmd, statsCmd, svgCmd, serveCmd, scenarioCmd, compareCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, applies the preset and then any flag
// overrides, and installs the default logger.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if preset != "" {
		if err := cfg.ApplyPreset(preset); err != nil {
			return nil, err
		}
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if obstacles >= 0 {
		cfg.ObstacleCount = obstacles
	}
	if gridSize > 0 {
		cfg.GridSize = gridSize
	}
	if providerURL != "" {
		cfg.Provider.URL = providerURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
	return cfg, nil
}

func algorithmArg(cfg *config.Config, args []string) (provider.Algorithm, error) {
	name := cfg.Algorithm
	if len(args) > 0 {
		name = args[0]
	}
	return provider.ParseAlgorithm(name)
}

func pacingFor(cfg *config.Config) func(provider.Algorithm) replay.Pacing {
	return func(a provider.Algorithm) replay.Pacing { return cfg.PacingFor(a.String()) }
}

func newProvider(cfg *config.Config) *provider.HTTPProvider {
	return provider.NewHTTP(cfg.Provider.URL, cfg.Provider.Timeout)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	alg, err := provider.ParseAlgorithm(cfg.Algorithm)
	if err != nil {
		return err
	}

	// keep log lines off the alternate screen
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	engine := replay.New(replay.WithObserver(metrics.Exporter{}))
	loader := provider.NewLoader(newProvider(cfg), engine, cfg.GridSize, nil)
	if err := loader.Empty(); err != nil {
		return err
	}
	return viz.Run(viz.Options{
		Engine:        engine,
		Loader:        loader,
		Algorithm:     alg,
		ObstacleCount: cfg.ObstacleCount,
		PacingFor:     pacingFor(cfg),
		Theme:         theme,
		Fetch:         true,
	})
}

// session bundles an engine loaded from a provider with the observers used
// to record it.
type session struct {
	engine  *replay.Engine
	metrics *metrics.Set
	ticks   *storage.Recorder
}

func newSession() *session {
	s := &session{
		metrics: metrics.DefaultSet(),
		ticks:   storage.NewRecorder(),
	}
	s.engine = replay.New(
		replay.WithObserver(s.metrics),
		replay.WithObserver(s.ticks),
		replay.WithObserver(metrics.Exporter{}),
	)
	return s
}

func (s *session) run(ctx context.Context, title string, pacing replay.Pacing) error {
	renderer := tui.NewLiveRenderer(title, frameRate)
	if manual {
		return tui.NewStepper(s.engine, renderer, pacing, os.Stdin, os.Stdout).Run(ctx)
	}
	_, err := tui.Play(ctx, s.engine, renderer, pacing)
	return err
}

func printMetrics(vals map[string]float64) {
	for _, name := range []string{"visited", "frontier_peak", "blocked", "path_length", "ticks"} {
		fmt.Printf("  %-14s %.0f\n", name, vals[name])
	}
}

func playTrace(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	alg, err := algorithmArg(cfg, args)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	s := newSession()
	loader := provider.NewLoader(newProvider(cfg), s.engine, cfg.GridSize, nil)
	if err := loader.Regenerate(ctx, alg, cfg.ObstacleCount); err != nil {
		return err
	}
	initial := s.engine.Snapshot().Grid
	tr := s.engine.Trace()

	if err := s.run(ctx, alg.String(), cfg.PacingFor(alg.String())); err != nil && !errors.Is(err, tui.ErrInterrupted) {
		return err
	}

	fmt.Println()
	printMetrics(s.metrics.Values())
	if !tr.HasFinalPath() {
		fmt.Println("  end not reachable")
	}

	if save {
		st := storage.New(cfg.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Save(storage.RunMetadata{
			Algorithm:     alg.String(),
			ObstacleCount: cfg.ObstacleCount,
			Source:        "play",
			Metrics:       s.metrics.Values(),
		}, initial, tr, s.ticks.Ticks())
		if err != nil {
			return err
		}
		fmt.Printf("saved: %s\n", id)
	}
	return nil
}

func recordTrace(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	alg, err := algorithmArg(cfg, args)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	g, tr, err := newProvider(cfg).RequestTrace(ctx, alg, cfg.ObstacleCount)
	if err != nil {
		return err
	}
	_, set, ticks, err := automation.Replay(g, tr)
	if err != nil {
		return err
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	id, err := st.Save(storage.RunMetadata{
		Algorithm:     alg.String(),
		ObstacleCount: cfg.ObstacleCount,
		Source:        "record",
		Metrics:       set.Values(),
	}, g, tr, ticks)
	if err != nil {
		return err
	}

	fmt.Printf("saved: %s\n", id)
	printMetrics(set.Values())
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tALGORITHM\tTIME\tSIZE\tOBSTACLES\tSTEPS\tVISITED\tREACHABLE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%.0f\t%v\n",
			run.ID,
			run.Algorithm,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.GridSize,
			run.ObstacleCount,
			run.Steps,
			run.Metrics["visited"],
			run.Reachable,
		)
	}

	return w.Flush()
}

func replayRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	runID := args[0]

	st := storage.New(cfg.DataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	s := newSession()
	loader := provider.NewLoader(provider.NewStoreProvider(st, runID), s.engine, meta.GridSize, nil)
	if err := loader.Regenerate(ctx, provider.AStar, meta.ObstacleCount); err != nil {
		return err
	}

	if err := s.run(ctx, meta.Algorithm+" "+runID, cfg.PacingFor(meta.Algorithm)); err != nil && !errors.Is(err, tui.ErrInterrupted) {
		return err
	}
	fmt.Println()
	printMetrics(s.metrics.Values())
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	runID := args[0]

	st := storage.New(cfg.DataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	ticks, err := st.LoadTicks(runID)
	if err != nil {
		return err
	}
	if len(ticks) == 0 {
		return fmt.Errorf("no ticks recorded for %s", runID)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("algorithm: %s\n", meta.Algorithm)
	fmt.Printf("grid: %dx%d, %d obstacles requested, %d placed\n", meta.GridSize, meta.GridSize, meta.ObstacleCount, meta.Placed)
	fmt.Printf("steps: %d, ticks: %d\n\n", meta.Steps, len(ticks))

	visited := make([]float64, len(ticks))
	frontier := make([]float64, len(ticks))
	for i, tk := range ticks {
		visited[i] = float64(tk.Visited)
		frontier[i] = float64(tk.Frontier)
	}

	if len(ticks) > 1 {
		fmt.Println(asciigraph.Plot(visited, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("visited cells per tick")))
		fmt.Println()
		fmt.Println(asciigraph.Plot(frontier, asciigraph.Height(6), asciigraph.Width(80), asciigraph.Caption("frontier size per tick")))
		fmt.Println()
	}

	g, tr, err := st.LoadRun(runID)
	if err != nil {
		return err
	}
	final, _, _, err := automation.Replay(g, tr)
	if err != nil {
		return err
	}
	if final.Grid != nil {
		counts := final.Grid.Counts()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STATUS\tCELLS")
		for _, s := range grid.Statuses() {
			fmt.Fprintf(w, "%s\t%d\n", s, counts[s])
		}
		w.Flush()
	}
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	runID := args[0]

	st := storage.New(cfg.DataDir)
	g, tr, err := st.LoadRun(runID)
	if err != nil {
		return err
	}
	final, _, ticks, err := automation.Replay(g, tr)
	if err != nil {
		return err
	}

	path := outPath
	if path == "" {
		path = runID + ".svg"
	}
	if err := export.WriteFile(path, export.GridToSVG(final.Grid, cellSize, nil)); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)

	if chartPath != "" {
		values := make([]float64, len(ticks))
		for i, tk := range ticks {
			values[i] = float64(tk.Visited)
		}
		chart := export.SeriesToSVG(values, 640, 240, "#00ffff")
		if chart == "" {
			return fmt.Errorf("not enough ticks to chart")
		}
		if err := export.WriteFile(chartPath, chart); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", chartPath)
	}
	return nil
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Listen = listen
	}
	alg, err := provider.ParseAlgorithm(cfg.Algorithm)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	srv := bridge.NewServer(bridge.Options{
		Provider:      newProvider(cfg),
		GridSize:      cfg.GridSize,
		Algorithm:     alg,
		ObstacleCount: cfg.ObstacleCount,
		SessionTTL:    cfg.SessionTTL,
		PacingFor:     pacingFor(cfg),
	})
	return srv.ListenAndServe(ctx, cfg.Listen)
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	results, err := automation.RunScenario(ctx, sc, newProvider(cfg), st, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Println()
	return printComparison(results)
}

func compareRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.NewEnsemble(st, workers).Run(ctx, ids)
	if err != nil {
		return err
	}
	return printComparison(results)
}

func printComparison(results []automation.RunSummary) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ALGORITHM\tRUNS\tEMPTY\tREACHABLE\tMEAN VISITED\tMEAN PATH")
	for _, s := range automation.Compare(results) {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.1f\t%.1f\n", s.Algorithm, s.Runs, s.Empty, s.Reachable, s.MeanVisited, s.MeanPath)
	}
	return w.Flush()
}
