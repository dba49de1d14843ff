package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"screen-region-select/src/clipboard"
	"screen-region-select/src/config"
	"screen-region-select/src/eventloop"
	"screen-region-select/src/fsm"
	"screen-region-select/src/gui"
	"screen-region-select/src/hotkey"
	"screen-region-select/src/logutil"
	"screen-region-select/src/runtimeinit"
	"screen-region-select/src/session"
	"screen-region-select/src/singleinstance"
	"screen-region-select/src/tray"
)

type mainOptions struct {
	runOnce    bool
	format     string
	configPath string
	hotkey     string
	noTray     bool
	verbose    bool
}

// stdout receives delegated run-once payloads.
var stdout io.Writer = os.Stdout

func main() {
	// ebiten and the platform window APIs need the main OS thread.
	runtime.LockOSThread()
	enableDPIAwareness()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"region-select"}
	}

	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "region-select",
		Short:         "Select a rectangular screen region and report it",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(*opts)
		},
	}

	cmd.Flags().BoolVar(&opts.runOnce, "run-once", false, "Select once (via the resident if running), print the report and exit")
	cmd.Flags().StringVar(&opts.format, "format", "", "Report format: json, yaml or text (overrides OUTPUT_FORMAT)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to region-select.yml")
	cmd.Flags().StringVar(&opts.hotkey, "hotkey", "", "Global hotkey, e.g. Ctrl+Alt+S (overrides HOTKEY)")
	cmd.Flags().BoolVar(&opts.noTray, "no-tray", false, "Do not show the tray icon")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr")

	return cmd
}

func (o mainOptions) loadOptions() config.LoadOptions {
	return config.LoadOptions{
		ConfigPathOverride:   o.configPath,
		HotkeyOverride:       o.hotkey,
		OutputFormatOverride: o.format,
		DisableTray:          o.noTray,
	}
}

func runWithOptions(opts mainOptions) error {
	if !opts.runOnce {
		return runResident(opts)
	}

	// Load early so .env can set SINGLEINSTANCE_PORT_* before the delegation scan.
	format := opts.format
	if cfg, err := config.LoadWithOptions(opts.loadOptions()); err == nil {
		opts.setupLogging(cfg.EnableFileLogging, levelOf(cfg))
		format = cfg.OutputFormat
	}

	var standaloneErr error
	handleRunOnceWithDelegation(format, singleinstance.NewClient(), func() {
		standaloneErr = runStandalone(opts)
	})
	return standaloneErr
}

type runOnceClient interface {
	TryRunOnce(ctx context.Context, format string) (bool, string, error)
}

func delegateRunOnce(ctx context.Context, format string, client runOnceClient) (string, error) {
	delegated, payload, err := client.TryRunOnce(ctx, format)
	if err != nil {
		return "", err
	}
	if !delegated {
		return "", session.ErrNoResident
	}
	return payload, nil
}

// handleRunOnceWithDelegation prefers the resident and falls back to a
// standalone overlay when none answers or the delegation fails.
func handleRunOnceWithDelegation(format string, client runOnceClient, fallback func()) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	payload, err := delegateRunOnce(ctx, format, client)
	switch {
	case err == nil:
		logutil.Infof("Delegated to resident")
		fmt.Fprintln(stdout, payload)
		return
	case errors.Is(err, session.ErrNoResident):
		logutil.Infof("No resident detected (not delegated), running standalone")
	default:
		logutil.Warnf("Delegation error: %v; falling back to standalone", err)
	}
	if fallback != nil {
		fallback()
	}
}

// runStandalone shows the overlay in this process and exits after the first commit.
func runStandalone(opts mainOptions) error {
	// Logging was configured before the delegation attempt.
	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{LoadOptions: opts.loadOptions()})
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg := rt.Config

	target := rt.Target
	if !cfg.HasTarget(config.TargetStdout) {
		target = append(session.MultiTarget{session.StdoutTarget{Format: cfg.OutputFormat}}, target...)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	loop := eventloop.New(eventloop.Options{
		Machine:         machineOptions(cfg),
		Target:          target,
		Deadline:        time.Duration(cfg.DeliveryDeadline) * time.Second,
		Workers:         1,
		ExitAfterCommit: true,
	})
	defer loop.Close()
	// The launcher is skipped: the overlay opens straight away.
	loop.Trigger()

	logutil.Infof("Running selection once (--run-once mode), format=%s", cfg.OutputFormat)
	return gui.Run(ctx, loop, guiOptions(cfg), cfg.LauncherWidth, cfg.LauncherHeight)
}

func runResident(opts mainOptions) error {
	// Load .env early so SINGLEINSTANCE_PORT_* are available for pre-flight.
	_, _ = config.LoadWithOptions(opts.loadOptions())
	probe, cancelProbe := context.WithTimeout(context.Background(), 300*time.Millisecond)
	port, running := singleinstance.DetectResidentPort(probe)
	cancelProbe()
	if running {
		fmt.Fprintf(stdout, "one is already running on port %d\n", port)
		return fmt.Errorf("resident already running on port %d", port)
	}

	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:  opts.loadOptions(),
		SetupLogging: opts.setupLogging,
	})
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg := rt.Config

	logutil.Infof("Region select initialized")
	logutil.Infof("Hotkey: %s (enabled=%t)", cfg.Hotkey, cfg.EnableHotkey)
	logutil.Infof("Delivery deadline: %ds", cfg.DeliveryDeadline)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var trayIcon *tray.Tray
	loop := eventloop.New(eventloop.Options{
		Machine:  machineOptions(cfg),
		Target:   rt.Target,
		Deadline: time.Duration(cfg.DeliveryDeadline) * time.Second,
		Workers:  cfg.Workers,
		Server:   singleinstance.NewServer(),
		OnDelivered: func(r session.Report, err error) {
			if err == nil && trayIcon != nil {
				trayIcon.SetLastSelection(r.Text())
			}
		},
	})
	if err := loop.Start(ctx); err != nil {
		return fmt.Errorf("failed to start resident server: %w", err)
	}
	defer loop.Close()

	if cfg.EnableHotkey {
		startHotkey(ctx, cfg.Hotkey, loop.Trigger)
	}

	if cfg.EnableTray {
		if err := clipboard.Init(); err != nil {
			logutil.Warnf("Clipboard unavailable, tray copy disabled: %v", err)
		}
		trayIcon = tray.New(tray.Callbacks{
			OnSelect:   loop.Trigger,
			OnCopyLast: func() { copyLast(loop) },
			OnQuit:     cancel,
		}, cfg.Outline())
		go trayIcon.Run()
		defer trayIcon.Quit()
	}

	err = gui.Run(ctx, loop, guiOptions(cfg), cfg.LauncherWidth, cfg.LauncherHeight)
	if err != nil {
		logutil.Errorf("window stopped: %v", err)
	}
	return err
}

func startHotkey(ctx context.Context, combo string, trigger func()) {
	c, err := hotkey.Parse(combo)
	if err != nil {
		logutil.Warnf("Hotkey disabled: %v", err)
		return
	}
	if err := hotkey.Listen(ctx, c, trigger); err != nil {
		logutil.Warnf("Hotkey disabled: %v", err)
	}
}

func copyLast(loop *eventloop.Loop) {
	r, ok := loop.LastReport()
	if !ok {
		return
	}
	if err := clipboard.Write(r.Text()); err != nil {
		logutil.Warnf("Copy last selection failed: %v", err)
	}
}

func machineOptions(cfg *config.Config) fsm.Options {
	return fsm.Options{
		Chrome:            gui.Chrome(),
		LauncherWidth:     cfg.LauncherWidth,
		LauncherHeight:    cfg.LauncherHeight,
		StrictPressOrigin: cfg.StrictPressOrigin,
	}
}

func guiOptions(cfg *config.Config) gui.Options {
	return gui.Options{
		OutlineWidth: cfg.OutlineWidth,
		Outline:      cfg.Outline(),
	}
}

func (o mainOptions) setupLogging(enableFileLogging bool, level logutil.Level) {
	if o.verbose {
		logutil.SetupStderr(level)
		return
	}
	logutil.Setup(enableFileLogging, level)
}

func levelOf(cfg *config.Config) logutil.Level {
	l, err := logutil.ParseLevel(cfg.LogLevel)
	if err != nil {
		return logutil.LevelInfo
	}
	return l
}

var legacyFlags = []string{"run-once", "format", "config", "hotkey", "no-tray", "verbose"}

// normalizeLegacyArgs maps single-dash long flags (-run-once, -format=x) to
// the double-dash form cobra expects.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range legacyFlags {
			switch {
			case arg == "-"+name:
				normalized[i] = "--" + name
			case strings.HasPrefix(arg, "-"+name+"="):
				normalized[i] = "-" + arg
			}
		}
	}

	return normalized
}
