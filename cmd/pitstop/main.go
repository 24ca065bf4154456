package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	charmLog "github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/raceday/pitstop/internal/adapters/render"
	"github.com/raceday/pitstop/internal/adapters/server"
	"github.com/raceday/pitstop/internal/adapters/storage/sqlite"
	"github.com/raceday/pitstop/internal/adapters/storage/yamlstore"
	"github.com/raceday/pitstop/internal/app"
	"github.com/raceday/pitstop/internal/config"
	"github.com/raceday/pitstop/internal/platform"
)

// version stores the build version injected at link time.
var version = "dev"

// main handles main.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run runs the requested command flow.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("pitstop", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		configPath   string
		schedulesDir string
		dbPath       string
		appName      string
		devMode      bool
		showVer      bool
	)
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("PITSTOP_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("PITSTOP_APP_NAME")); envApp != "" {
		appName = envApp
	} else {
		appName = "pitstop"
	}
	fs.StringVar(&configPath, "config", "", "path to config TOML")
	fs.StringVar(&schedulesDir, "schedules", "", "path to the schedule universe directory")
	fs.StringVar(&dbPath, "db", "", "path to the snapshot sqlite database")
	fs.StringVar(&appName, "app", appName, "application name for config/data path resolution")
	fs.BoolVar(&devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")
	fs.BoolVar(&showVer, "version", false, "show version")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showVer {
		_, _ = fmt.Fprintf(stdout, "pitstop %s\n", version)
		return nil
	}

	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: appName,
		DevMode: devMode,
	})
	if err != nil {
		return err
	}

	command := firstArg(fs.Args())
	switch command {
	case "paths":
		_, _ = fmt.Fprintf(stdout, "app: %s\n", appName)
		_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", devMode)
		_, _ = fmt.Fprintf(stdout, "config: %s\n", paths.ConfigPath)
		_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
		_, _ = fmt.Fprintf(stdout, "schedules: %s\n", paths.SchedulesDir)
		_, _ = fmt.Fprintf(stdout, "db: %s\n", paths.DBPath)
		return nil
	case "list", "resolve", "explain", "compare", "swap", "check", "snapshot", "serve":
		// Continue.
	case "":
		return fmt.Errorf("a command is required: list, resolve, explain, compare, swap, check, snapshot, serve, paths")
	default:
		return fmt.Errorf("unknown command: %s", command)
	}

	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("PITSTOP_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	cfg, err := config.Load(configPath, config.Default(paths.SchedulesDir, paths.DBPath))
	if err != nil {
		return fmt.Errorf("load config %q: %w", configPath, err)
	}
	if strings.TrimSpace(schedulesDir) == "" {
		if envDir := strings.TrimSpace(os.Getenv("PITSTOP_SCHEDULES")); envDir != "" {
			schedulesDir = envDir
		} else {
			schedulesDir = cfg.Schedules.Dir
		}
	}
	if strings.TrimSpace(dbPath) == "" {
		if envPath := strings.TrimSpace(os.Getenv("PITSTOP_DB_PATH")); envPath != "" {
			dbPath = envPath
		} else {
			dbPath = cfg.Snapshots.DBPath
		}
	}

	logger, err := newRuntimeLogger(stderr, appName, cfg.Logging)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	logger.Info("startup configuration resolved", "app", appName, "dev_mode", devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "schedules_dir", schedulesDir, "db_path", dbPath)

	if !yamlstore.Available(schedulesDir) {
		return fmt.Errorf("no schedule universe at %q (missing forks.yaml)", schedulesDir)
	}
	store, err := yamlstore.Load(schedulesDir)
	if err != nil {
		logger.Error("universe load failed", "schedules_dir", schedulesDir, "err", err)
		return fmt.Errorf("load schedule universe: %w", err)
	}
	logger.Info("universe loaded", "forks", len(store.ForkIDs()), "changes", len(store.ChangeIDs()))

	svcCfg := app.ServiceConfig{IDGen: uuid.NewString}
	if command == "snapshot" {
		logger.Info("opening snapshot ledger", "db_path", dbPath)
		repo, err := sqlite.Open(dbPath)
		if err != nil {
			logger.Error("sqlite open failed", "db_path", dbPath, "err", err)
			return fmt.Errorf("open snapshot ledger: %w", err)
		}
		defer func() {
			if closeErr := repo.Close(); closeErr != nil {
				logger.Warn("sqlite close failed", "db_path", dbPath, "err", closeErr)
			}
		}()
		svcCfg.Snapshots = repo
	}
	svc := app.NewService(store, svcCfg)

	logger.Info("command flow start", "command", command)
	switch command {
	case "list":
		err = runList(svc, stdout)
	case "resolve":
		err = runResolve(svc, fs.Args()[1:], stdout)
	case "explain":
		err = runExplain(svc, fs.Args()[1:], stdout)
	case "compare":
		err = runCompare(svc, fs.Args()[1:], stdout)
	case "swap":
		err = runSwap(svc, fs.Args()[1:], cfg.Generate, stdout)
	case "check":
		err = runCheck(svc, fs.Args()[1:], cfg.Generate, stdout)
	case "snapshot":
		err = runSnapshot(ctx, svc, fs.Args()[1:], stdout)
	case "serve":
		err = runServe(ctx, svc, fs.Args()[1:], cfg.Serve, logger)
	}
	if err != nil {
		logger.Error("command flow failed", "command", command, "err", err)
		return fmt.Errorf("run %s command: %w", command, err)
	}
	logger.Info("command flow complete", "command", command)
	return nil
}

// runList prints the loaded fork and change ids.
func runList(svc *app.Service, stdout io.Writer) error {
	_, _ = fmt.Fprintln(stdout, "forks:")
	for _, id := range svc.ForkIDs() {
		_, _ = fmt.Fprintf(stdout, "  %s\n", id)
	}
	_, _ = fmt.Fprintln(stdout, "changes:")
	for _, id := range svc.ChangeIDsLoaded() {
		_, _ = fmt.Fprintf(stdout, "  %s\n", id)
	}
	return nil
}

// runResolve resolves one fork and prints the flattened schedule as JSON.
func runResolve(svc *app.Service, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("pitstop resolve", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse resolve flags: %w", err)
	}
	if len(fs.Args()) != 1 {
		return fmt.Errorf("usage: pitstop resolve <fork>")
	}

	schedule, err := svc.Resolve(fs.Args()[0])
	if err != nil {
		return err
	}
	digest, err := app.Digest(schedule)
	if err != nil {
		return fmt.Errorf("digest schedule: %w", err)
	}
	return writeJSON(stdout, map[string]any{
		"schedule": schedule,
		"digest":   digest,
	})
}

// runExplain prints the write history for one schedule key.
func runExplain(svc *app.Service, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("pitstop explain", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse explain flags: %w", err)
	}
	if len(fs.Args()) != 3 {
		return fmt.Errorf("usage: pitstop explain <fork> <category> <member>")
	}
	fork, category, member := fs.Args()[0], fs.Args()[1], fs.Args()[2]

	chain, err := svc.Explain(fork, category, member)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "%s.%s on %s:\n", category, member, fork)
	for _, entry := range chain {
		marker := " "
		if entry.Final {
			marker = "*"
		}
		_, _ = fmt.Fprintf(stdout, "  %s %-20s %d\n", marker, entry.ChangeID, entry.Value)
	}
	return nil
}

// runCompare diffs two forks' resolved schedules.
func runCompare(svc *app.Service, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("pitstop compare", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse compare flags: %w", err)
	}
	if len(fs.Args()) != 2 {
		return fmt.Errorf("usage: pitstop compare <left-fork> <right-fork>")
	}

	left, err := svc.Resolve(fs.Args()[0])
	if err != nil {
		return err
	}
	right, err := svc.Resolve(fs.Args()[1])
	if err != nil {
		return err
	}
	comparison := app.Compare(left, right)
	if !comparison.HasDifferences() {
		_, _ = fmt.Fprintf(stdout, "%s and %s resolve to identical schedules\n", left.Fork, right.Fork)
		return nil
	}
	if err := writeJSON(stdout, comparison); err != nil {
		return err
	}
	// Differences mean a non-zero exit, same contract as diff(1).
	return fmt.Errorf("%s and %s: %w", left.Fork, right.Fork, app.ErrSchedulesDiffer)
}

// runSwap resolves one fork and writes a generated client source file.
func runSwap(svc *app.Service, args []string, gen config.GenerateConfig, stdout io.Writer) error {
	fs := flag.NewFlagSet("pitstop swap", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		fork    string
		client  string
		outPath string
	)
	fs.StringVar(&fork, "fork", "", "fork to resolve")
	fs.StringVar(&client, "client", gen.DefaultClient, "target client ("+strings.Join(render.Clients(), ", ")+")")
	fs.StringVar(&outPath, "out", "", "output file path")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse swap flags: %w", err)
	}
	if fork == "" {
		return fmt.Errorf("-fork is required")
	}
	if outPath == "" {
		return fmt.Errorf("-out is required")
	}

	generator, err := render.ForClient(client)
	if err != nil {
		return err
	}
	if err := generator.ValidateOutputPath(outPath); err != nil {
		return err
	}
	schedule, err := svc.Resolve(fork)
	if err != nil {
		return err
	}
	if err := generator.Generate(schedule, outPath); err != nil {
		return fmt.Errorf("generate %s source: %w", generator.Client, err)
	}
	_, _ = fmt.Fprintf(stdout, "wrote %s schedule for %s to %s\n", generator.Client, fork, outPath)
	return nil
}

// runCheck regenerates one client file in memory and diffs it against disk.
func runCheck(svc *app.Service, args []string, gen config.GenerateConfig, stdout io.Writer) error {
	fs := flag.NewFlagSet("pitstop check", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		fork     string
		client   string
		filePath string
	)
	fs.StringVar(&fork, "fork", "", "fork to resolve")
	fs.StringVar(&client, "client", gen.DefaultClient, "target client ("+strings.Join(render.Clients(), ", ")+")")
	fs.StringVar(&filePath, "file", "", "generated file to verify")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse check flags: %w", err)
	}
	if fork == "" {
		return fmt.Errorf("-fork is required")
	}
	if filePath == "" {
		return fmt.Errorf("-file is required")
	}

	generator, err := render.ForClient(client)
	if err != nil {
		return err
	}
	schedule, err := svc.Resolve(fork)
	if err != nil {
		return err
	}
	expected, err := generator.Render(schedule)
	if err != nil {
		return fmt.Errorf("render %s source: %w", generator.Client, err)
	}
	actual, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read generated file: %w", err)
	}

	match, diff := app.Verify("resolved:"+fork, filePath, expected, string(actual))
	if match {
		_, _ = fmt.Fprintf(stdout, "%s matches the resolved %s schedule\n", filePath, fork)
		return nil
	}
	_, _ = fmt.Fprint(stdout, diff)
	return fmt.Errorf("%s is stale for fork %s: %w", filePath, fork, app.ErrVerificationFail)
}

// runSnapshot records, lists, or drift-checks schedule snapshots.
func runSnapshot(ctx context.Context, svc *app.Service, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("pitstop snapshot", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		fork   string
		list   bool
		verify bool
	)
	fs.StringVar(&fork, "fork", "", "fork to snapshot")
	fs.BoolVar(&list, "list", false, "list stored snapshots for the fork")
	fs.BoolVar(&verify, "verify", false, "check the current resolution against the latest snapshot")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse snapshot flags: %w", err)
	}
	if fork == "" {
		return fmt.Errorf("-fork is required")
	}

	switch {
	case list:
		snapshots, err := svc.ListSnapshots(ctx, fork)
		if err != nil {
			return err
		}
		if len(snapshots) == 0 {
			_, _ = fmt.Fprintf(stdout, "no snapshots recorded for %s\n", fork)
			return nil
		}
		for _, snap := range snapshots {
			_, _ = fmt.Fprintf(stdout, "%s  %s  %s\n", snap.TakenAt.Format(time.RFC3339), snap.ID, snap.Digest)
		}
		return nil
	case verify:
		snap, err := svc.CheckDrift(ctx, fork)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(stdout, "%s matches snapshot %s (digest %s)\n", fork, snap.ID, snap.Digest)
		return nil
	default:
		snap, err := svc.TakeSnapshot(ctx, fork)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(stdout, "recorded snapshot %s for %s (digest %s)\n", snap.ID, fork, snap.Digest)
		return nil
	}
}

// runServe starts the REST and MCP transports and blocks until shutdown.
func runServe(ctx context.Context, svc *app.Service, args []string, serveCfg config.ServeConfig, logger *charmLog.Logger) error {
	fs := flag.NewFlagSet("pitstop serve", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var bind string
	fs.StringVar(&bind, "bind", serveCfg.HTTPBind, "http listen address")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse serve flags: %w", err)
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected serve arguments: %v", fs.Args())
	}

	cfg := server.Config{
		HTTPBind:      bind,
		APIEndpoint:   serveCfg.APIEndpoint,
		MCPEndpoint:   serveCfg.MCPEndpoint,
		ServerName:    "pitstop",
		ServerVersion: version,
	}
	logger.Info("starting serve mode", "bind", cfg.HTTPBind, "api", cfg.APIEndpoint, "mcp", cfg.MCPEndpoint)
	return server.Run(ctx, cfg, server.Dependencies{Schedules: svc})
}

// newRuntimeLogger configures the console log sink from config state.
func newRuntimeLogger(stderr io.Writer, appName string, cfg config.LoggingConfig) (*charmLog.Logger, error) {
	level, err := charmLog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}
	return charmLog.NewWithOptions(stderr, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.TextFormatter,
	}), nil
}

// writeJSON pretty-prints one payload to the writer.
func writeJSON(w io.Writer, payload any) error {
	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	encoded = append(encoded, '\n')
	if _, err := w.Write(encoded); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// parseBoolEnv reads one boolean environment flag.
func parseBoolEnv(key string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return false, false
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}
