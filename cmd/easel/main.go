// Package main is the entry point for the easel presenter.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mthille/easel/internal/config"
	"github.com/mthille/easel/internal/session"
	"github.com/mthille/easel/internal/term"
	"github.com/mthille/easel/internal/transport"
	"github.com/mthille/easel/internal/worker/luaworker"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// demoScript runs when no -script is given: a moving box driven by the
// arrow keys, q or ctrl-q to leave.
const demoScript = `
local x, y = 4, 4
local w, h = 0, 0

local function paint()
    easel.set_bg("#1c1c1c")
    easel.fill_rect(0, 0, w, h)
    easel.set_fg("#e6e6e6")
    easel.text("easel demo. arrows move, q quits.", 2, 1, 1)
    easel.set_bg("#ff5f87")
    easel.fill_rect(x, y, 6, 3)
    easel.stroke_rect(1, 3, w - 2, h - 4)
end

easel.on_start = function(width, height)
    w, h = width, height
    paint()
end

easel.on_resize = function(width, height)
    w, h = width, height
    paint()
end

easel.on_key = function(k)
    if k.key == "q" then
        easel.exit()
        return
    end
    if k.key == "ArrowLeft" then x = x - 1 end
    if k.key == "ArrowRight" then x = x + 1 end
    if k.key == "ArrowUp" then y = y - 1 end
    if k.key == "ArrowDown" then y = y + 1 end
    paint()
end
`

type options struct {
	configPath string
	scriptPath string
	logPath    string
	logLevel   string
	debug      bool
}

// deferredNotifier holds the worker's fatal message until the terminal
// is back in cooked mode.
type deferredNotifier struct {
	mu  sync.Mutex
	msg string
	set bool
}

func (n *deferredNotifier) Fatal(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msg = msg
	n.set = true
}

func (n *deferredNotifier) flush() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.set {
		fmt.Fprintf(os.Stderr, "Worker failed: %s\n", n.msg)
	}
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.debug {
		cfg.Session.Debug = true
	}
	if opts.logLevel != "" {
		cfg.Session.LogLevel = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// The capability probe runs before any session state exists; a miss
	// is fatal, not degraded.
	if _, err := transport.Probe(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger := session.NullLogger
	if opts.logPath != "" {
		f, err := os.OpenFile(opts.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: opening log file: %v\n", err)
			return 1
		}
		defer f.Close()
		logger = session.NewLogger(session.LoggerConfig{
			Level:  session.ParseLogLevel(cfg.Session.LogLevel),
			Output: f,
			Prefix: "easel",
		})
	}

	script, name := demoScript, "builtin-demo"
	if opts.scriptPath != "" {
		data, err := os.ReadFile(opts.scriptPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: reading script: %v\n", err)
			return 1
		}
		script, name = string(data), opts.scriptPath
	}

	screen, err := term.NewScreen(cfg.Render.PixelScale)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to take over terminal: %v\n", err)
		return 1
	}
	if !screen.HasTrueColor() {
		logger.Warn("terminal lacks true color, output is quantized")
	}

	notifier := &deferredNotifier{}
	tr, ep := transport.Pair()

	geom := screen.Size()
	sess := session.New(session.Options{
		Config:    cfg,
		Transport: tr,
		Source:    screen,
		Notifier:  notifier,
		Presenter: screen,
		Logger:    logger,
		Width:     geom.Width,
		Height:    geom.Height,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		cancel()
	}()

	go func() {
		if err := luaworker.New(name, script).Run(ctx, ep); err != nil {
			logger.Error("worker: %v", err)
		}
	}()
	go screen.Run()

	runErr := sess.Run(ctx)
	cancel()

	screen.Stop()
	screen.Fini()
	notifier.flush()

	if runErr != nil {
		var fatal *session.FatalError
		if errors.As(runErr, &fatal) {
			// The notifier already printed the message verbatim.
			return 1
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		return 1
	}
	return 0
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.scriptPath, "script", "", "Lua worker script (omit for the built-in demo)")
	flag.StringVar(&opts.scriptPath, "s", "", "Lua worker script (shorthand)")
	flag.StringVar(&opts.logPath, "log", "", "Log file (logging is off without it)")
	flag.BoolVar(&opts.debug, "debug", false, "Enable debug mode with protocol tracing")
	flag.BoolVar(&opts.debug, "d", false, "Enable debug mode (shorthand)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Easel - scripted canvas presenter for the terminal\n\n")
		fmt.Fprintf(os.Stderr, "Usage: easel [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  easel                       Run the built-in demo\n")
		fmt.Fprintf(os.Stderr, "  easel -s sketch.lua         Run a script\n")
		fmt.Fprintf(os.Stderr, "  easel -d -log easel.log     Trace the protocol to a file\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Easel %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	return opts
}
