// Package main is the entry point for the hyperroute binary. It generates,
// validates and solves serialized routing graphs.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gopkg.in/yaml.v3"

	"github.com/pdrpinto/hyperroute"
	"github.com/pdrpinto/hyperroute/config"
	"github.com/pdrpinto/hyperroute/driver"
	"github.com/pdrpinto/hyperroute/internal/logging"
	"github.com/pdrpinto/hyperroute/jumper"
	"github.com/pdrpinto/hyperroute/serial"
	"github.com/pdrpinto/hyperroute/telemetry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hyperroute",
		Short: "Route connections through region/port hypergraphs",
		Long: `hyperroute searches paths for connections through a graph of regions
joined by ports, ripping up and rerouting earlier routes when networks
contend for the same port.

Example:
  hyperroute generate --cols 2 --connect j0_0:pad1=j1_0:pad4 -o board.yaml
  hyperroute solve board.yaml --config hyperroute.yaml`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file (YAML)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "", "Log level override (debug, info, warn, error)")

	rootCmd.AddCommand(newValidateCmd(), newGenerateCmd(), newSolveCmd())
	return rootCmd
}

// loadConfig loads the configuration named by the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-level flag: %w", err)
	}
	if level != "" {
		cfg.Logging.Level = level
	}
	return cfg, nil
}

func loadGraph(path string) (*hyperroute.Graph, []*hyperroute.Connection, error) {
	doc, err := serial.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	g, conns, err := serial.Resolve(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, conns, nil
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a serialized graph for structural errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, conns, err := loadGraph(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "ok: %d regions, %d ports, %d connections\n",
				len(g.Regions), len(g.Ports), len(conns))
			return err
		},
	}
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a grid of jumper tiles",
		Long: `Generate a grid of 0606x2 jumper tiles. Tile regions are named
j<col>_<row>:<name>, for example j0_0:pad1.

Connections are given as FROM=TO or FROM=TO@NETWORK.`,
		Args: cobra.NoArgs,
		RunE: runGenerate,
	}
	cmd.Flags().Int("cols", 1, "Number of tile columns")
	cmd.Flags().Int("rows", 1, "Number of tile rows")
	cmd.Flags().Float64("pitch-x", 3, "Horizontal distance between tile centres")
	cmd.Flags().Float64("pitch-y", 3, "Vertical distance between tile centres")
	cmd.Flags().StringArray("connect", nil, "Connection FROM=TO[@NETWORK]; repeatable")
	cmd.Flags().StringP("format", "f", "yaml", "Output format (yaml, json)")
	cmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	return cmd
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	cols, _ := flags.GetInt("cols")
	rows, _ := flags.GetInt("rows")
	pitchX, _ := flags.GetFloat64("pitch-x")
	pitchY, _ := flags.GetFloat64("pitch-y")
	connects, _ := flags.GetStringArray("connect")
	formatName, _ := flags.GetString("format")
	output, _ := flags.GetString("output")

	format, err := serial.ParseFormat(formatName)
	if err != nil {
		return err
	}
	topo, err := jumper.Grid(cols, rows, pitchX, pitchY)
	if err != nil {
		return err
	}
	conns := make([]*hyperroute.Connection, 0, len(connects))
	for i, arg := range connects {
		c, err := parseConnection(topo, i, arg)
		if err != nil {
			return err
		}
		conns = append(conns, c)
	}

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", output, err)
		}
		defer f.Close()
		w = f
		if !flags.Changed("format") {
			format = serial.FormatFromPath(output)
		}
	}
	return serial.Encode(w, serial.FromGraph(topo.Graph(), conns), format)
}

// parseConnection parses FROM=TO[@NETWORK].
func parseConnection(topo *jumper.Topology, index int, arg string) (*hyperroute.Connection, error) {
	ends, network, _ := strings.Cut(arg, "@")
	from, to, ok := strings.Cut(ends, "=")
	if !ok || from == "" || to == "" {
		return nil, fmt.Errorf("connection %q: want FROM=TO[@NETWORK]", arg)
	}
	start, ok := topo.Region(hyperroute.RegionID(from))
	if !ok {
		return nil, fmt.Errorf("connection %q: unknown region %q", arg, from)
	}
	end, ok := topo.Region(hyperroute.RegionID(to))
	if !ok {
		return nil, fmt.Errorf("connection %q: unknown region %q", arg, to)
	}
	return &hyperroute.Connection{
		ID:        hyperroute.ConnectionID(fmt.Sprintf("conn%d", index)),
		Start:     start,
		End:       end,
		NetworkID: hyperroute.NetworkID(network),
	}, nil
}

func newSolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve FILE",
		Short: "Route every connection of a serialized graph",
		Args:  cobra.ExactArgs(1),
		RunE:  runSolve,
	}
	cmd.Flags().Bool("ripping", false, "Enable rip-up (overrides config)")
	return cmd
}

// routeReport is the YAML written for each solved route.
type routeReport struct {
	Connection string   `yaml:"connection"`
	Network    string   `yaml:"network"`
	Cost       float64  `yaml:"cost"`
	Ports      []string `yaml:"ports"`
}

type solveReport struct {
	RunID      string        `yaml:"run_id"`
	Steps      int           `yaml:"steps"`
	Iterations int           `yaml:"iterations"`
	Routes     []routeReport `yaml:"routes"`
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("ripping") {
		cfg.Solver.RippingEnabled, _ = cmd.Flags().GetBool("ripping")
	}
	log := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Logging())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracing, err := telemetry.NewTracing(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("failed to initialise tracing: %w", err)
	}
	defer func() {
		if err := tracing.Shutdown(context.Background()); err != nil {
			log.Warn("tracing shutdown", slog.Any("error", err))
		}
	}()

	g, conns, err := loadGraph(args[0])
	if err != nil {
		return err
	}
	if strings.EqualFold(cfg.Solver.Policy, "jumper") {
		if err := jumper.DecodeData(g); err != nil {
			return err
		}
	}

	opts := append(cfg.Solver.Options(), hyperroute.WithLogger(log))
	if cfg.Metrics.Enabled {
		collector, err := telemetry.NewCollector(prometheus.NewRegistry())
		if err != nil {
			return err
		}
		opts = append(opts, hyperroute.WithCollector(collector))
		stopMetrics := serveMetrics(cfg.Metrics.Address, collector, log)
		defer stopMetrics()
	}

	solver, err := hyperroute.NewSolver(g, conns, opts...)
	if err != nil {
		return err
	}
	res, err := driver.Run(ctx, solver, driver.Options{
		MaxSteps:     cfg.Run.MaxSteps,
		StepsPerTick: cfg.Run.StepsPerTick,
		Logger:       log,
		Tracer:       tracing.Tracer("hyperroute/driver"),
	})
	if err != nil {
		return err
	}

	report := solveReport{RunID: res.RunID, Steps: res.Steps, Iterations: solver.Iterations()}
	for _, r := range solver.Routes() {
		rr := routeReport{
			Connection: string(r.Connection.ID),
			Network:    string(r.Connection.NetworkID),
			Cost:       r.Cost(),
		}
		for _, p := range r.Ports() {
			rr.Ports = append(rr.Ports, string(p.ID))
		}
		report.Routes = append(report.Routes, rr)
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}

// serveMetrics exposes the collector until the returned function is called.
func serveMetrics(addr string, collector *telemetry.Collector, log *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", otelhttp.NewHandler(collector.Handler(), "hyperroute.metrics"))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", slog.String("error", err.Error()))
		}
	}()
	log.Info("serving metrics", slog.String("address", addr))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
