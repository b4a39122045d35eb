package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dshills/assetpatch/internal/config"
	"github.com/dshills/assetpatch/internal/logger"
	"github.com/dshills/assetpatch/internal/patcher"
	"github.com/dshills/assetpatch/internal/resolve"
	"github.com/dshills/assetpatch/internal/store"
	"github.com/dshills/assetpatch/internal/vfs"
)

// app holds the components shared by every command.
type app struct {
	streams
	cfg      *config.Config
	log      *logger.Logger
	fsys     vfs.VFS
	store    *store.LineStore
	manifest *resolve.ManifestResolver // nil unless resolver.manifest is set
	meta     *resolve.MetaResolver     // nil unless resolver.meta_root is set
	resolver resolve.Resolver
	patcher  *patcher.Patcher
	color    bool

	input   *bufio.Reader
	closers []io.Closer
}

// newApp loads configuration and wires the store, resolvers and patcher.
func newApp(fsys vfs.VFS, opts globalOptions, s streams) (*app, error) {
	cfg, err := loadConfig(fsys, opts)
	if err != nil {
		return nil, err
	}

	a := &app{streams: s, cfg: cfg, fsys: fsys}

	logCfg := cfg.LoggerConfig()
	logCfg.Output = s.err
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		a.closers = append(a.closers, f)
		logCfg.Output = f
	}
	a.log = logger.New(logCfg)
	logger.Set(a.log)

	for _, verr := range cfg.Validate() {
		a.log.Warn("config: %v", verr)
	}

	a.store = store.New(fsys,
		store.WithBackupSuffix(cfg.Backup.Suffix),
		store.WithLogger(a.log),
	)

	var chain resolve.Chain
	if cfg.Resolver.Manifest != "" {
		a.manifest = resolve.NewManifestResolver(fsys, cfg.Resolver.Manifest)
		chain = append(chain, a.manifest)
	}
	if cfg.Resolver.MetaRoot != "" {
		a.meta = resolve.NewMetaResolver(fsys, cfg.Resolver.MetaRoot, a.log)
		chain = append(chain, a.meta)
	}
	a.resolver = chain

	a.patcher = patcher.New(a.store,
		patcher.WithResolver(a.resolver),
		patcher.WithLogger(a.log),
		patcher.WithStrictMarks(cfg.Interp.StrictMarks),
		patcher.WithBackup(cfg.Backup.Enabled),
	)

	a.color = cfg.Output.Color && !opts.NoColor && isTerminal(s.out)
	return a, nil
}

// loadConfig layers the config file, the environment and the global flags.
func loadConfig(fsys vfs.VFS, opts globalOptions) (*config.Config, error) {
	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultPath
	} else if !fsys.Exists(path) {
		return nil, fmt.Errorf("config file %s does not exist", path)
	}

	cfg, err := config.Load(fsys, path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	return cfg, nil
}

// Close releases files opened by newApp.
func (a *app) Close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
}

// confirm asks a yes/no question on the app's streams. Anything but an
// explicit yes is a no.
func (a *app) confirm(question string) bool {
	if a.input == nil {
		a.input = bufio.NewReader(a.in)
	}
	fmt.Fprintf(a.out, "%s [y/N] ", question)
	answer, err := a.input.ReadString('\n')
	if err != nil && answer == "" {
		fmt.Fprintln(a.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
