// Package main is the entry point for the pinclock display.
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
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/jwulff/pinclock-go/internal/config"
	"github.com/jwulff/pinclock-go/internal/engine"
	"github.com/jwulff/pinclock-go/internal/logging"
	"github.com/jwulff/pinclock-go/internal/panel"
	"github.com/jwulff/pinclock-go/internal/pixoo"
	"github.com/jwulff/pinclock-go/internal/preview"
	"github.com/jwulff/pinclock-go/internal/storage"
	"github.com/jwulff/pinclock-go/internal/storage/sqlite"
)

const version = "0.3.0"

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(2)
	}

	var err error
	args := os.Args[2:]
	switch os.Args[1] {
	case "run":
		err = runCmd(args, false)
	case "preview":
		err = runCmd(args, true)
	case "init":
		err = initCmd(args)
	case "ani":
		err = aniCmd(args)
	case "font":
		err = fontCmd(args)
	case "schedule":
		err = scheduleCmd(args)
	case "config":
		err = configCmd(args)
	case "stats":
		err = statsCmd(args)
	case "last":
		err = lastCmd(args)
	case "version":
		fmt.Println("pinclock", version)
	default:
		showUsage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println("pinclock - pinball animation clock for HUB75 panels")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  pinclock run [-testpattern] [-lowpower]    - Drive the panel over GPIO")
	fmt.Println("  pinclock preview [-testpattern] [-log F]   - Show the display in this terminal")
	fmt.Println("  pinclock init                              - Write default settings")
	fmt.Println("  pinclock ani list                          - List the animation archive")
	fmt.Println("  pinclock ani pack <out> <tag> <gif>...     - Build an archive from GIFs")
	fmt.Println("  pinclock font <file.fnt>                   - Describe a font")
	fmt.Println("  pinclock schedule                          - Show the brightness over a day")
	fmt.Println("  pinclock config list|get|set|unset         - Manage stored overrides")
	fmt.Println("  pinclock stats [-since 1h]                 - Show frame rate samples")
	fmt.Println("  pinclock last [-n 10]                      - Show recent animations")
	fmt.Println()
	fmt.Println("Every command takes -config <settings.json> (default settings.json).")
}

// commandFlags returns a flag set with the shared -config flag.
func commandFlags(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	path := fs.String("config", "settings.json", "settings file")
	return fs, path
}

// applyOverrides layers the overrides kept in the store over cfg. Invalid
// overrides are logged and skipped.
func applyOverrides(ctx context.Context, store storage.Store, cfg *config.Settings, log *slog.Logger) error {
	for _, key := range config.OverrideKeys {
		value, err := store.GetConfig(ctx, key)
		if storage.IsNotFound(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read override %s: %w", key, err)
		}
		if err := cfg.Set(key, value); err != nil {
			log.Warn("ignoring override", "key", key, "value", value, "error", err)
			continue
		}
		log.Info("override applied", "key", key, "value", value)
	}
	return nil
}

func runCmd(args []string, inTerminal bool) error {
	name := "run"
	if inTerminal {
		name = "preview"
	}
	fs, path := commandFlags(name)
	testPattern := fs.Bool("testpattern", false, "show the panel test pattern")
	lowPower := fs.Bool("lowpower", false, "cap brightness for a weak supply")
	logFile := fs.String("log", "", "log file (preview logs nowhere by default)")
	fs.Parse(args)

	cfg, err := config.Load(*path)
	if err != nil {
		return err
	}

	var logOut io.Writer = os.Stderr
	if inTerminal {
		logOut = io.Discard
	}
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	log := logging.New(logOut, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.NewFileStore(cfg.Paths.Database)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := applyOverrides(ctx, store, &cfg, log); err != nil {
		return err
	}
	if *testPattern {
		cfg.Panel.TestPattern = true
	}
	log = logging.New(logOut, cfg.LogLevel)
	log.Info("starting pinclock", "version", version, "hostname", cfg.Hostname)

	opts := []engine.Option{
		engine.WithLogger(log),
		engine.WithStore(store),
		engine.WithLowPower(*lowPower),
	}

	if inTerminal {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to open terminal: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("failed to open terminal: %w", err)
		}
		defer screen.Fini()
		opts = append(opts, engine.WithSink(preview.New(screen)))
	} else {
		gpio, err := panel.NewGPIOSink(cfg.GPIO, cfg.Panel.ClockInverted)
		if err != nil {
			return err
		}
		defer gpio.Close()
		opts = append(opts, engine.WithSink(gpio))
	}

	if cfg.Mirror.Enabled {
		client := pixoo.NewClient(cfg.Mirror.Address)
		opts = append(opts, engine.WithSink(pixoo.NewMirror(client, time.Duration(cfg.Mirror.Interval),
			pixoo.WithMirrorLogger(log))))
		log.Info("mirroring to pixoo", "endpoint", client.Endpoint())
	}

	e, err := engine.New(cfg, opts...)
	if err != nil {
		return err
	}
	defer e.Close()

	err = e.Run(ctx)
	if errors.Is(err, preview.ErrQuit) {
		return nil
	}
	if err == nil {
		log.Info("stopped")
	}
	return err
}

func initCmd(args []string) error {
	fs, path := commandFlags("init")
	fs.Parse(args)

	written, err := config.WriteDefaults(*path)
	if err != nil {
		return err
	}
	if !written {
		fmt.Printf("%s already exists, left unchanged\n", *path)
		return nil
	}
	fmt.Printf("Wrote default settings to %s\n", *path)
	return nil
}
