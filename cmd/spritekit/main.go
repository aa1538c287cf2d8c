// Command spritekit detects, normalizes and flips sprite sheets, and serves
// the sprite library over HTTP.
//
// Usage:
//
//	spritekit serve     [-config config.json] [-addr :8080]
//	spritekit analyze   [-workers N] sheet.png...
//	spritekit normalize [-frames N] [-out out.png] [-pngquant] sheet.png
//	spritekit flip      [-frames N] [-out out.png] sheet.png
//	spritekit import    [-config config.json] sprite.zip
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogpu/spritekit"
	"github.com/gogpu/spritekit/internal/config"
	"github.com/gogpu/spritekit/internal/optimize"
	"github.com/gogpu/spritekit/internal/server"
	"github.com/gogpu/spritekit/internal/service"
	"github.com/gogpu/spritekit/internal/storage"
	"github.com/gogpu/spritekit/internal/store"
)

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, env *env, args []string) error
}

var commands = []command{
	{"serve", "run the HTTP API", runServe},
	{"analyze", "print the detected frame count of sheets", runAnalyze},
	{"normalize", "crop every frame of a sheet to a shared rectangle", runNormalize},
	{"flip", "mirror every frame of a sheet", runFlip},
	{"import", "import a sprite archive into the library", runImport},
}

// env carries what every subcommand shares.
type env struct {
	cfg    config.AppConfig
	flags  *subcommandFlags
	logger *slog.Logger
	stdout io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "spritekit:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr)
		return errors.New("missing command")
	}
	for _, c := range commands {
		if c.name != args[0] {
			continue
		}
		fs := flag.NewFlagSet(c.name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		configPath := fs.String("config", "config.json", "path to the JSON configuration file")
		logLevel := fs.String("log-level", "", "logging level: debug, info, warn, error (overrides config)")
		e, rest, err := setup(fs, args[1:], configPath, logLevel, stdout, stderr)
		if err != nil {
			return err
		}
		return c.run(ctx, e, rest)
	}
	usage(stderr)
	return fmt.Errorf("unknown command %q", args[0])
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: spritekit <command> [flags] [args]")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.usage)
	}
}

// setup registers the per-command flags, parses args and loads the config.
func setup(fs *flag.FlagSet, args []string, configPath, logLevel *string, stdout, stderr io.Writer) (*env, []string, error) {
	flags := &subcommandFlags{}
	flags.register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, nil, err
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	spritekit.SetLogger(logger)

	flags.apply(&cfg)
	return &env{cfg: cfg, flags: flags, logger: logger, stdout: stdout}, fs.Args(), nil
}

func newAnalyzer(cfg config.AppConfig) (*spritekit.Analyzer, error) {
	return spritekit.NewAnalyzer(
		spritekit.WithParams(cfg.Detection),
		spritekit.WithWorkers(cfg.Workers),
	)
}

func newOptimizer(cfg config.AppConfig) optimize.Optimizer {
	if !cfg.PNGQuant {
		return optimize.Nop{}
	}
	return optimize.PNGQuant{Binary: cfg.PNGQuantPath, Quality: cfg.PNGQuantRange}
}

// openService wires the library used by serve and import.
func openService(e *env, opts ...service.Option) (*service.Service, func(), error) {
	meta, err := store.Open(e.cfg.MetadataPath)
	if err != nil {
		return nil, nil, err
	}
	layout, err := storage.New(e.cfg.StorageRoot)
	if err != nil {
		return nil, nil, err
	}
	analyzer, err := newAnalyzer(e.cfg)
	if err != nil {
		return nil, nil, err
	}
	opts = append([]service.Option{
		service.WithLogger(e.logger),
		service.WithAnalyzer(analyzer),
		service.WithOptimizer(newOptimizer(e.cfg)),
	}, opts...)
	return service.New(meta, layout, opts...), analyzer.Close, nil
}

func runServe(ctx context.Context, e *env, _ []string) error {
	hub := server.NewHub(64, e.logger)
	svc, closeFn, err := openService(e, service.WithPublisher(hub))
	if err != nil {
		return err
	}
	defer closeFn()

	go hub.Run(ctx)
	e.logger.Info("serving", "addr", e.cfg.Addr, "storage", e.cfg.StorageRoot, "metadata", e.cfg.MetadataPath)
	return server.Run(ctx, e.cfg.Addr, server.New(svc, hub, e.logger, e.cfg.MaxUploadBytes))
}

func runImport(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errors.New("import: expected one archive")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	svc, closeFn, err := openService(e)
	if err != nil {
		return err
	}
	defer closeFn()

	info, err := svc.Import(ctx, data)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "%s: %d frames, %dx%d per frame, %s\n", info.Name, info.Frames, info.Width, info.Height, info.ImageURL)
	return nil
}

func runAnalyze(_ context.Context, e *env, args []string) error {
	if len(args) == 0 {
		return errors.New("analyze: no sheets given")
	}
	a, err := newAnalyzer(e.cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	results := a.DetectEach(len(args), func(i int) (*spritekit.PixelBuffer, error) {
		return a.Load(args[i])
	})
	var failed error
	for i, r := range results {
		if r.Err != nil {
			fmt.Fprintf(e.stdout, "%s\terror: %v\n", args[i], r.Err)
			failed = errors.Join(failed, r.Err)
			continue
		}
		fmt.Fprintf(e.stdout, "%s\t%d frames\t%dx%d\n", args[i], r.Frames, r.Width, r.Height)
	}
	return failed
}

// loadSheet reads a sheet and resolves its frame count, detecting it when
// frames is 0.
func loadSheet(a *spritekit.Analyzer, path string, frames int) (*spritekit.PixelBuffer, int, error) {
	buf, err := a.Load(path)
	if err != nil {
		return nil, 0, err
	}
	if frames == 0 {
		if frames, err = a.DetectFrames(buf); err != nil {
			return nil, 0, err
		}
	}
	return buf, frames, nil
}

func runNormalize(ctx context.Context, e *env, args []string) error {
	opts := e.flags
	if len(args) != 1 {
		return errors.New("normalize: expected one sheet")
	}
	a, err := newAnalyzer(e.cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	buf, frames, err := loadSheet(a, args[0], opts.frames)
	if err != nil {
		return err
	}
	out, err := a.Normalize(buf, frames)
	if err != nil {
		return err
	}
	data, err := out.EncodeToBytes()
	if err != nil {
		return err
	}
	var opt optimize.Optimizer = optimize.Nop{}
	if opts.pngquant {
		opt = optimize.PNGQuant{Binary: e.cfg.PNGQuantPath, Quality: e.cfg.PNGQuantRange}
	}
	if small, err := opt.Optimize(ctx, data); err != nil {
		e.logger.Warn("optimization failed, writing unoptimized sheet", "err", err)
	} else {
		data = small
	}
	if err := spritekit.WriteFileAtomic(outPath(opts.out, args[0]), data); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "%s: %d frames, %dx%d -> %dx%d\n", args[0], frames, buf.Width(), buf.Height(), out.Width(), out.Height())
	return nil
}

func runFlip(_ context.Context, e *env, args []string) error {
	opts := e.flags
	if len(args) != 1 {
		return errors.New("flip: expected one sheet")
	}
	a, err := newAnalyzer(e.cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	buf, frames, err := loadSheet(a, args[0], opts.frames)
	if err != nil {
		return err
	}
	out, err := spritekit.FlipHorizontal(buf, frames)
	if err != nil {
		return err
	}
	if err := out.SavePNG(outPath(opts.out, args[0])); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "%s: flipped %d frames\n", args[0], frames)
	return nil
}

func outPath(out, in string) string {
	if out != "" {
		return out
	}
	return in
}
