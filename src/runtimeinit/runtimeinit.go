package runtimeinit

import (
	"fmt"
	"io"

	"screen-region-select/src/bus"
	"screen-region-select/src/clipboard"
	"screen-region-select/src/config"
	"screen-region-select/src/logutil"
	"screen-region-select/src/session"
)

type Options struct {
	LoadOptions  config.LoadOptions
	SetupLogging func(enableFileLogging bool, level logutil.Level)
	// Stdout receives reports for the stdout target; nil means os.Stdout.
	Stdout io.Writer
}

// Runtime is everything the resident and run-once modes share.
type Runtime struct {
	Config *config.Config
	Target session.MultiTarget
	Bus    *bus.Bus
}

func Bootstrap(opts Options) (*Runtime, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	lvl, err := logutil.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = logutil.LevelInfo
	}
	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging, lvl)
	}
	if cfg.ConfigPath != "" {
		logutil.Infof("Loaded config file %s", cfg.ConfigPath)
	}

	rt := &Runtime{Config: cfg}
	for _, name := range cfg.Targets {
		switch name {
		case config.TargetStdout:
			rt.Target = append(rt.Target, session.StdoutTarget{Writer: opts.Stdout, Format: cfg.OutputFormat})
		case config.TargetClipboard:
			if err := clipboard.Init(); err != nil {
				rt.Close()
				return nil, fmt.Errorf("failed to initialize clipboard: %w", err)
			}
			rt.Target = append(rt.Target, session.ClipboardTarget{})
		case config.TargetNATS:
			if cfg.NATSURL == "" {
				rt.Close()
				return nil, fmt.Errorf("NATS_URL is required for the %q target", config.TargetNATS)
			}
			b, err := bus.Connect(cfg.NATSURL, cfg.NATSSubject)
			if err != nil {
				rt.Close()
				return nil, fmt.Errorf("failed to connect to NATS at %s: %w", logutil.RedactURL(cfg.NATSURL), err)
			}
			rt.Bus = b
			rt.Target = append(rt.Target, session.PublishTarget{Bus: b, Format: cfg.OutputFormat})
		}
	}
	logutil.Infof("Targets: %v, format=%s", cfg.Targets, cfg.OutputFormat)
	return rt, nil
}

// Close releases the bus connection, if any.
func (r *Runtime) Close() {
	if r == nil || r.Bus == nil {
		return
	}
	r.Bus.Close()
	r.Bus = nil
}
