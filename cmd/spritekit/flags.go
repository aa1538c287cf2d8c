package main

import (
	"flag"

	"github.com/gogpu/spritekit/internal/config"
)

// subcommandFlags holds the flags a subcommand adds on top of -config and
// -log-level. Zero values leave the configuration untouched.
type subcommandFlags struct {
	addr     string
	storage  string
	workers  int
	frames   int
	out      string
	pngquant bool
}

func (f *subcommandFlags) register(fs *flag.FlagSet) {
	fs.IntVar(&f.workers, "workers", 0, "number of analysis workers (0 keeps the configured value)")
	switch fs.Name() {
	case "serve":
		fs.StringVar(&f.addr, "addr", "", "listen address (overrides config)")
		fs.StringVar(&f.storage, "storage", "", "sheet storage root (overrides config)")
	case "import":
		fs.StringVar(&f.storage, "storage", "", "sheet storage root (overrides config)")
	case "normalize":
		fs.IntVar(&f.frames, "frames", 0, "frame count (0 detects it)")
		fs.StringVar(&f.out, "out", "", "output file (default: overwrite the input)")
		fs.BoolVar(&f.pngquant, "pngquant", false, "optimize the result with pngquant")
	case "flip":
		fs.IntVar(&f.frames, "frames", 0, "frame count (0 detects it)")
		fs.StringVar(&f.out, "out", "", "output file (default: overwrite the input)")
	}
}

func (f *subcommandFlags) apply(cfg *config.AppConfig) {
	if f.workers > 0 {
		cfg.Workers = f.workers
	}
	if f.addr != "" {
		cfg.Addr = f.addr
	}
	if f.storage != "" {
		cfg.StorageRoot = f.storage
	}
}
