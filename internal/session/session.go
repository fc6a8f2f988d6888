// Package session orchestrates one presentation session: it owns the
// transport to the worker, the canvas, the coalescing render queue, and
// the input pipelines, and drives them through the lifecycle state
// machine. A session runs at most once; after termination it is inert.
package session

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mthille/easel/internal/canvas"
	"github.com/mthille/easel/internal/config"
	"github.com/mthille/easel/internal/input"
	"github.com/mthille/easel/internal/protocol"
	"github.com/mthille/easel/internal/render"
	"github.com/mthille/easel/internal/transport"
	"github.com/mthille/easel/internal/viewport"
)

// Handler receives the raw user events the session cares about while it
// is active. The session itself implements it, feeding the key filter
// and the resize debouncer.
type Handler interface {
	HandleKey(ev protocol.Key)
	HandleResize(g viewport.Geometry)
}

// EventSource is where raw key and resize events come from. The terminal
// layer implements it over the tcell event loop. Attach registers the
// single handler; Detach removes it. After Detach no further events are
// delivered.
type EventSource interface {
	Attach(h Handler)
	Detach()
}

// Notifier surfaces a worker fatal message to the user. The cmd layer
// implements it on stderr, after the screen has been restored.
type Notifier interface {
	Fatal(msg string)
}

// Presenter shows the finished frame. The terminal layer implements it
// over the tcell screen. It runs on the frame loop goroutine, once per
// tick that flushed anything.
type Presenter interface {
	Present(img *image.RGBA)
}

// Options configures a session. Transport, Source, and Notifier are
// required; the rest defaults.
type Options struct {
	// ID identifies the session in logs and the start handshake.
	// Empty means a fresh UUID.
	ID string

	// Config is the loaded configuration tree.
	Config config.Config

	// Transport connects to the worker.
	Transport transport.Transport

	// Source provides raw key and resize events.
	Source EventSource

	// Notifier receives worker fatal messages.
	Notifier Notifier

	// Presenter shows finished frames. Nil means frames are drawn to
	// the canvas but never shown, which tests use.
	Presenter Presenter

	// Logger for session diagnostics. Nil means NullLogger.
	Logger *Logger

	// Width and Height are the initial canvas geometry in logical units.
	Width  float64
	Height float64
}

// Session is the orchestrator. All lifecycle transitions happen on the
// transport's delivery goroutine; reads take the mutex.
type Session struct {
	id        string
	cfg       config.Config
	transport transport.Transport
	source    EventSource
	notifier  Notifier
	presenter Presenter
	logger    *Logger

	canvas    *canvas.Canvas
	ticker    *render.Ticker
	queue     *render.Queue
	debouncer *viewport.Debouncer
	filter    *input.Filter

	mu    sync.Mutex
	state State
	cause error

	done chan struct{}
}

// New builds a session from options. It does not touch the transport;
// nothing happens until Run.
func New(opts Options) *Session {
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.Logger == nil {
		opts.Logger = NullLogger
	}

	s := &Session{
		id:        opts.ID,
		cfg:       opts.Config,
		transport: opts.Transport,
		source:    opts.Source,
		notifier:  opts.Notifier,
		presenter: opts.Presenter,
		logger:    opts.Logger.WithField("session", opts.ID),
		done:      make(chan struct{}),
	}

	s.canvas = canvas.New(opts.Width, opts.Height, opts.Config.Render.PixelScale)
	s.ticker = render.NewTicker(opts.Config.Render.FPS)
	s.queue = render.NewQueue(s.canvas, s.ticker, func(err error) {
		s.logger.Warn("draw instruction skipped: %v", err)
	})
	s.debouncer = viewport.NewDebouncer(resizeSender{s}, opts.Config.DebounceWindow(), func(err error) {
		s.fail(NewProtocolError("sending resize", err))
	})
	s.filter = input.NewFilter(opts.Transport)

	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Canvas exposes the drawing surface, mainly for tests and diagnostics.
func (s *Session) Canvas() *canvas.Canvas { return s.canvas }

// Run starts the session and blocks until it terminates or the context
// is cancelled. The returned error is nil for a graceful worker exit or
// cancellation, a FatalError when the worker reported one, and a
// ProtocolError when the worker misbehaved on the wire.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateUninitialized {
		st := s.state
		s.mu.Unlock()
		if st == StateTerminated {
			return ErrTerminated
		}
		return ErrAlreadyRunning
	}
	s.mu.Unlock()

	s.applyInitialStyle()
	s.ticker.OnFrame(s.present)

	if reporter, ok := s.transport.(transport.ErrorReporter); ok {
		reporter.OnError(func(err error) {
			s.fail(NewProtocolError("transport", err))
		})
	}
	if err := s.transport.OnReceive(s.dispatch); err != nil {
		return err
	}

	start := protocol.Start{
		SessionID:  s.id,
		WakeHandle: s.transport.WakeHandle(),
		Debug:      s.cfg.Session.Debug,
	}
	start.Width, start.Height = s.canvas.Size()
	s.trace("send", start)
	if err := s.transport.Send(start); err != nil {
		s.fail(NewProtocolError("sending start", err))
		return s.result()
	}

	s.mu.Lock()
	s.state = StateAwaitingStart
	s.mu.Unlock()
	s.logger.Info("session started, awaiting worker")

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		err := s.ticker.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
			s.terminate(nil)
		case <-s.done:
		}
		// Termination also stops the frame loop.
		stop()
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return s.result()
}

// applyInitialStyle seeds the canvas style state from the configuration
// before any worker instruction arrives.
func (s *Session) applyInitialStyle() {
	instrs := []protocol.Instruction{
		protocol.SetFg{Color: s.cfg.Canvas.Foreground},
		protocol.SetBg{Color: s.cfg.Canvas.Background},
		protocol.SetSpecial{Color: s.cfg.Canvas.Special},
		protocol.SetFont{Size: s.cfg.Canvas.FontSize},
	}
	for _, in := range instrs {
		if err := s.canvas.Apply(in); err != nil {
			s.logger.Warn("initial style rejected: %v", err)
		}
	}
}

// dispatch routes one inbound message. The variant set is closed; an
// unknown variant is a protocol violation and terminates the session.
func (s *Session) dispatch(msg protocol.Inbound) {
	s.mu.Lock()
	terminated := s.state == StateTerminated
	s.mu.Unlock()
	if terminated {
		return
	}
	s.traceInbound(msg)

	switch m := msg.(type) {
	case protocol.Draw:
		s.queue.Enqueue(m.Event)

	case protocol.Started:
		s.mu.Lock()
		if s.state == StateAwaitingStart {
			s.state = StateActive
		}
		s.mu.Unlock()
		s.source.Attach(s)
		s.logger.Info("worker ready, listeners attached")

	case protocol.Exited:
		s.logger.Info("worker exited")
		s.terminate(nil)

	case protocol.Fatal:
		s.logger.Error("worker fatal: %s", m.Message)
		if s.notifier != nil {
			s.notifier.Fatal(m.Message)
		}
		s.terminate(&FatalError{Message: m.Message})

	default:
		s.fail(NewProtocolError("unknown inbound message", nil))
	}
}

// HandleKey feeds one raw key event through the filter. Implements
// Handler; the source only calls it between Attach and Detach.
func (s *Session) HandleKey(ev protocol.Key) {
	if err := s.filter.Handle(ev); err != nil {
		s.fail(NewProtocolError("sending key", err))
	}
}

// HandleResize records a raw geometry change with the debouncer.
func (s *Session) HandleResize(g viewport.Geometry) {
	s.debouncer.Observe(g)
}

// fail terminates with a protocol error cause.
func (s *Session) fail(err *ProtocolError) {
	s.logger.Error("%v", err)
	s.terminate(err)
}

// terminate moves to the absorbing final state exactly once: listeners
// detach, the debouncer stops without sending, and the transport closes.
func (s *Session) terminate(cause error) {
	s.mu.Lock()
	if s.state == StateTerminated {
		s.mu.Unlock()
		return
	}
	s.state = StateTerminated
	s.cause = cause
	s.mu.Unlock()

	s.source.Detach()
	s.debouncer.Stop()
	if err := s.transport.Close(); err != nil {
		s.logger.Warn("transport close: %v", err)
	}
	close(s.done)
	s.logger.Info("session terminated")
}

// result reports the recorded termination cause.
func (s *Session) result() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cause
}

// present runs on the frame loop after a flushing tick.
func (s *Session) present() {
	if s.presenter != nil {
		s.presenter.Present(s.canvas.Image())
	}
}

// trace logs an outbound frame in wire form when debug is on.
func (s *Session) trace(dir string, msg protocol.Outbound) {
	if !s.cfg.Session.Debug {
		return
	}
	if data, err := protocol.EncodeOutbound(msg); err == nil {
		s.logger.Debug("%s %s", dir, data)
	}
}

// traceInbound logs an inbound frame in wire form when debug is on.
func (s *Session) traceInbound(msg protocol.Inbound) {
	if !s.cfg.Session.Debug {
		return
	}
	if data, err := protocol.EncodeInbound(msg); err == nil {
		s.logger.Debug("recv %s", data)
	}
}

// resizeSender is the debouncer's outlet. The debounced geometry both
// resizes the canvas, on the frame loop so it cannot race a flush, and
// goes to the worker as one resize message.
type resizeSender struct {
	s *Session
}

func (r resizeSender) Send(msg protocol.Outbound) error {
	if rs, ok := msg.(protocol.Resize); ok {
		r.s.ticker.Schedule(func() {
			r.s.canvas.Resize(rs.Width, rs.Height)
		})
	}
	r.s.trace("send", msg)
	return r.s.transport.Send(msg)
}
