package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipdeck/internal/clip"
	"go.klb.dev/clipdeck/internal/config"
	"go.klb.dev/clipdeck/internal/control"
	"go.klb.dev/clipdeck/internal/hotkey"
	"go.klb.dev/clipdeck/internal/hotkey/hooksource"
	"go.klb.dev/clipdeck/internal/ipc"
	"go.klb.dev/clipdeck/internal/logging"
	"go.klb.dev/clipdeck/internal/persist"
	"go.klb.dev/clipdeck/internal/poller"
	"go.klb.dev/clipdeck/internal/state"
	"go.klb.dev/clipdeck/internal/tray"
	"go.klb.dev/clipdeck/internal/ui"
)

func newRunCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the clipboard history daemon and its search view",
		Long: `Starts capturing the clipboard and serves the control socket. Unless
--no-ui is given the terminal shows the search view whenever it is toggled
(double-tap Ctrl, "clipdeck toggle", or ctrl+t in the terminal).

While the view owns the terminal, logs go to --log-file
(default: <user cache dir>/clipdeck/clipdeck.log).

Precedence (lowest → highest): defaults → config file → CLIPDECK_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runDaemon(cmd.Context(), v) },
	}

	d := config.Default()
	f := cmd.Flags()
	f.Int(config.KeyMaxSize, d.MaxSize, "number of entries kept")
	f.Duration(config.KeyPollInterval, d.PollInterval, "clipboard sampling interval")
	f.Int(config.KeyWindowWidth, d.WindowWidth, "search view width in pixels (8 px per column)")
	f.Int(config.KeyWindowHeight, d.WindowHeight, "search view height in pixels (16 px per row)")
	f.Duration(config.KeyDoubleTapWindow, d.DoubleTapWindow, "longest gap between the two taps of the hotkey")
	f.Duration(config.KeyUIPoll, d.UIPoll, "how often the view re-checks whether it should be shown")
	f.IntSlice(config.KeyHotkeyCodes, d.HotkeyCodes, "key codes that trigger the double tap (default: left and right Ctrl)")
	f.String(config.KeyHistoryFile, "", "history file (default: <user config dir>/clipdeck/history.json)")
	f.String(config.KeyLogFile, "", "log file used while the view is active")
	f.Bool("no-ui", false, "run headless: capture and serve the socket, no search view")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)
	addSocketFlag(cmd)

	return cmd
}

func runDaemon(ctx context.Context, v *viper.Viper) error {
	cfg := config.FromViper(v)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	noUI := v.GetBool("no-ui")
	socket := v.GetString("socket")

	if ipc.IsRunning(socket) {
		return fmt.Errorf("clipdeck is already running on %s", socket)
	}

	var logOut io.Writer = os.Stderr
	if !noUI {
		f, err := openLogFile(cfg.LogFile)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	setupLogging(logOut, cfg)

	histPath := cfg.HistoryFile
	if histPath == "" {
		p, err := persist.DefaultPath()
		if err != nil {
			return err
		}
		histPath = p
	}
	file := persist.NewFile(histPath)
	hist := file.Load(cfg.MaxSize)
	hist.Resize(cfg.MaxSize)

	slog.Info("clipdeck starting",
		"version", Version,
		"history", histPath,
		"entries", hist.Len(),
		"max_size", hist.MaxSize(),
		"ui", !noUI,
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	surface := &ui.ProgramSurface{}
	coord := state.New(hist, state.Options{Persister: file, Surface: surface})

	var wg sync.WaitGroup
	goRun := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	backend, err := clip.New()
	if err != nil {
		slog.Warn("clipboard capture disabled", "err", err)
	} else {
		p := poller.New(backend, coord, cfg.PollInterval)
		goRun(func() { p.Run(ctx) })
	}
	defer backend.Close()

	watcher := hotkey.NewWatcher(coord, cfg.Codes(), cfg.DoubleTapWindow)
	// The input hook can block in native code until End; it is not waited on.
	go hotkey.Start(ctx, hooksource.New(), watcher)

	menu := make(chan tray.Event)
	if ln, err := ipc.Listen(socket); err != nil {
		slog.Warn("control socket disabled", "err", err)
	} else {
		srv := control.NewServer(coord, menu)
		goRun(func() {
			if err := srv.Serve(ctx, ln); err != nil {
				slog.Error("control socket stopped", "err", err)
			}
		})
	}

	if noUI {
		goRun(func() { tray.NewWatcher(coord, cancel).Run(ctx, menu) })
		<-ctx.Done()
		wg.Wait()
		slog.Info("clipdeck stopped")
		return nil
	}

	cols, rows := cfg.Cells()
	model := ui.New(coord, backend, ui.Options{
		Poll:    cfg.UIPoll,
		Wakeups: coord.Wakeups(),
		Cols:    cols,
		Rows:    rows,
	})
	prog := tea.NewProgram(model, tea.WithContext(ctx), tea.WithMouseCellMotion())
	surface.Attach(prog)
	goRun(func() { tray.NewWatcher(coord, prog.Quit).Run(ctx, menu) })

	_, err = prog.Run()
	cancel()
	wg.Wait()
	slog.Info("clipdeck stopped")

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("search view: %w", err)
	}
	return nil
}

func openLogFile(path string) (*os.File, error) {
	if path == "" {
		p, err := logging.DefaultFile()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return logging.OpenFile(path)
}
