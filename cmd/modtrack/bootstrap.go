package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"modtrack/internal/checks"
	"modtrack/internal/config"
	"modtrack/internal/history"
	"modtrack/internal/modules"
	"modtrack/internal/paths"
	"modtrack/internal/rules"
	"modtrack/internal/scanner"
	"modtrack/internal/slogutil"
	"modtrack/internal/storage"
)

// app is everything a command needs after startup. Registries are filled
// here and only read afterwards.
type app struct {
	root     string
	cfg      *config.Config
	logger   *slog.Logger
	scanners *scanner.Registry
	rules    *rules.Registry

	closers []io.Closer
}

// newApp resolves the root, loads the config and fills both registries.
func newApp(rootArg string) (*app, error) {
	root, err := paths.ResolveRoot(rootArg)
	if err != nil {
		return nil, err
	}

	bootLogger := slogutil.NewLogger(os.Stderr, slogutil.LevelFromVerbosity(verbosity, quiet))
	cfg, err := config.LoadConfig(root)
	if err != nil {
		bootLogger.Warn("Failed to load config, using defaults", "error", err.Error())
		cfg = config.DefaultConfig()
	}

	logger, logCloser, err := openLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	a := &app{root: root, cfg: cfg, logger: logger, closers: []io.Closer{logCloser}}

	lister, err := modules.NewLister(cfg.Rules.CacheSize, cfg.Scanners.Ignore)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.scanners = scanner.NewRegistry()
	scanOpts := modules.Options{
		DeclarationFile: cfg.Scanners.DeclarationFile,
		LegacyRoots:     cfg.Scanners.LegacyRoots,
		Lister:          lister,
	}
	if err := modules.Register(a.scanners, cfg.Scanners.Enabled, scanOpts, logger); err != nil {
		a.Close()
		return nil, fmt.Errorf("scanners.enabled: %w", err)
	}

	a.rules = rules.NewRegistry()
	ruleOpts := checks.Options{Root: root, RulesFile: cfg.Rules.File, Lister: lister}
	if err := checks.Register(a.rules, cfg.Rules.Enabled, ruleOpts, logger); err != nil {
		a.Close()
		return nil, fmt.Errorf("rules.enabled: %w", err)
	}

	logger.Debug("Registries ready",
		"root", root,
		"scanners", a.scanners.Count(),
		"rules", a.rules.Count(),
	)
	return a, nil
}

// openLogger builds the process logger. -v/-q override the configured level.
func openLogger(lc config.LoggingConfig) (*slog.Logger, io.Closer, error) {
	level := slogutil.LevelFromString(lc.Level)
	if verbosity > 0 || quiet {
		level = slogutil.LevelFromVerbosity(verbosity, quiet)
	}
	return slogutil.Open(slogutil.Options{
		Format:     lc.Format,
		Level:      level,
		File:       lc.File,
		FileLevel:  slog.LevelDebug,
		MaxSize:    lc.MaxSize,
		MaxBackups: lc.MaxBackups,
	})
}

// outputDir returns the report directory; override, when set, wins over the
// configured one.
func (a *app) outputDir(override string) string {
	if override != "" {
		return paths.Resolve(a.root, override)
	}
	return a.cfg.OutputDir(a.root)
}

// historyStore opens the store for backend inside the output directory. An
// empty backend selects the configured one.
func (a *app) historyStore(backend, outputOverride string) (history.Store, error) {
	if backend == "" {
		backend = a.cfg.History.Backend
	}
	dir := a.outputDir(outputOverride)

	switch backend {
	case config.BackendJSON:
		return history.NewFileStore(a.cfg.History.StorePath(backend, dir)), nil
	case config.BackendSQLite:
		db, err := storage.Open(a.cfg.History.StorePath(backend, dir), a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db)
		return history.NewSQLiteStore(db), nil
	default:
		return nil, fmt.Errorf("unknown history backend %q (want %s or %s)", backend, config.BackendJSON, config.BackendSQLite)
	}
}

// Close releases the log file and any open database, newest first.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
	a.closers = nil
}

func rootArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
