package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Versifine/pietype/internal/chord"
	"github.com/Versifine/pietype/internal/config"
	"github.com/Versifine/pietype/internal/debug"
	"github.com/Versifine/pietype/internal/event"
	"github.com/Versifine/pietype/internal/gamepad"
	"github.com/Versifine/pietype/internal/layout"
	"github.com/Versifine/pietype/internal/logger"
	"github.com/Versifine/pietype/internal/overlay"
	"github.com/Versifine/pietype/internal/pipeline"
	"github.com/Versifine/pietype/internal/sink"
	"github.com/gdamore/tcell/v2"
)

func main() {
	configPath := flag.String("config", "configs/pietype.yaml", "path to the YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	logCfg, offTerminal := logConfig(cfg)
	closeLog, err := logger.Init(logCfg)
	if err != nil {
		slog.Error("Failed to init logger", "error", err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// run has released the terminal by the time it returns.
	if err := run(ctx, cfg); err != nil {
		reportFatal(os.Stderr, offTerminal, err)
		closeLog()
		os.Exit(1)
	}
}

// logConfig derives the logger setup from cfg. offTerminal reports that log
// lines will not reach the terminal: they go to a file, or are discarded
// because the overlay owns the screen.
func logConfig(cfg *config.Config) (logger.Config, bool) {
	lc := logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		File:        cfg.Logging.File,
		RawTerminal: cfg.Input.Driver == config.DriverConsole,
	}
	if cfg.Overlay.Enabled && cfg.Logging.File == "" {
		lc.Output = io.Discard
	}
	return lc, cfg.Overlay.Enabled || cfg.Logging.File != ""
}

// reportFatal logs err and, when logs are off the terminal, echoes it to w.
func reportFatal(w io.Writer, offTerminal bool, err error) {
	slog.Error("pietype stopped", "error", err)
	if offTerminal {
		fmt.Fprintf(w, "pietype: %v\n", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	table, err := layout.ByName(cfg.Layout)
	if err != nil {
		return err
	}
	machine, err := chord.NewMachine(table, cfg.Thresholds.Type, cfg.Thresholds.Return)
	if err != nil {
		return err
	}

	var console *debug.Console
	var provider gamepad.Provider
	if cfg.Input.Driver == config.DriverConsole {
		console = debug.NewConsole()
		provider = console
	} else {
		provider, err = gamepad.Open(gamepad.Options{
			Driver:       cfg.Input.Driver,
			Device:       cfg.Input.Device,
			Index:        cfg.Input.Index,
			Joystick:     cfg.Input.Joystick,
			PollInterval: cfg.Input.PollInterval,
		})
		if err != nil {
			return fmt.Errorf("open gamepad: %w", err)
		}
	}
	defer provider.Close()

	out, err := sink.Open(sink.Options{
		Driver:     cfg.Output.Driver,
		DeviceName: cfg.Output.DeviceName,
	})
	if err != nil {
		return fmt.Errorf("open keystroke sink: %w", err)
	}
	defer out.Close()

	bus := event.NewBus()
	if cfg.Overlay.Enabled {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("create overlay screen: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("init overlay screen: %w", err)
		}
		defer screen.Fini()
		view := overlay.New(screen, table)
		view.Attach(bus)
		go func() {
			if err := view.Run(ctx); err != nil {
				slog.Error("Overlay stopped", "error", err)
			}
			cancel()
		}()
	}

	loop, err := pipeline.New(provider, machine, out, bus, cfg.Input.PollInterval)
	if err != nil {
		return err
	}

	slog.Info("pietype started",
		"input", cfg.Input.Driver,
		"output", cfg.Output.Driver,
		"layout", table.Name(),
		"overlay", cfg.Overlay.Enabled,
	)

	if console == nil {
		return loop.Run(ctx)
	}

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()
	consoleErr := console.Start(ctx)
	cancel()
	if err := <-done; err != nil {
		return err
	}
	return consoleErr
}
