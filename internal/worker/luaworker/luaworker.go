// Package luaworker runs a Lua script as the session's worker. The
// script sees one global table, easel, carrying the drawing and
// lifecycle functions plus the callback slots the main side drives:
//
//	easel.on_start = function(width, height) ... end
//	easel.on_key = function(key) ... end
//	easel.on_resize = function(width, height) ... end
//
// Callbacks run on the worker goroutine; the Lua state is never touched
// from anywhere else. A script error anywhere is reported to the main
// side as a fatal message with the interpreter's text verbatim.
package luaworker

import (
	"context"
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/mthille/easel/internal/protocol"
	"github.com/mthille/easel/internal/transport"
)

// Worker interprets one Lua script as session logic.
type Worker struct {
	name   string
	script string
}

// New creates a worker for the given script source. The name appears in
// load error messages only.
func New(name, script string) *Worker {
	return &Worker{name: name, script: script}
}

// Run loads the script and serves the endpoint until exit, fatal,
// endpoint closure, or context cancellation. Implements worker.Worker.
func (w *Worker) Run(ctx context.Context, ep *transport.Endpoint) error {
	L := lua.NewState()
	defer L.Close()

	r := &runtime{L: L, ep: ep}
	r.register()

	if err := L.DoString(w.script); err != nil {
		_ = ep.Send(protocol.Fatal{Message: err.Error()})
		return fmt.Errorf("loading script %s: %w", w.name, err)
	}

	for !r.done {
		msg, err := ep.Recv(ctx)
		if err != nil {
			if errors.Is(err, transport.ErrClosed) {
				return nil
			}
			return err
		}
		r.handle(msg)
	}
	return r.err
}

// runtime is the per-run Lua environment: the module table, the
// endpoint, and the termination latch.
type runtime struct {
	L      *lua.LState
	ep     *transport.Endpoint
	module *lua.LTable
	acked  bool
	done   bool
	err    error
}

// register installs the easel module table.
func (r *runtime) register() {
	m := r.L.NewTable()
	r.module = m

	fns := map[string]lua.LGFunction{
		"fill_rect":   r.fillRect,
		"stroke_rect": r.strokeRect,
		"text":        r.text,
		"invert":      r.invert,
		"scroll":      r.scroll,
		"set_fg":      r.setFg,
		"set_bg":      r.setBg,
		"set_special": r.setSpecial,
		"set_font":    r.setFont,
		"started":     r.started,
		"exit":        r.exit,
		"fatal":       r.fatal,
	}
	for name, fn := range fns {
		r.L.SetField(m, name, r.L.NewFunction(fn))
	}
	r.L.SetGlobal("easel", m)
}

// handle dispatches one message from the main side.
func (r *runtime) handle(msg protocol.Outbound) {
	switch m := msg.(type) {
	case protocol.Start:
		r.call("on_start", lua.LNumber(m.Width), lua.LNumber(m.Height))
		if !r.done && !r.acked {
			r.sendStarted()
		}

	case protocol.Key:
		// The cell only says "something arrived"; the message itself is
		// already in hand.
		r.ep.WakeCell().Consume()
		r.call("on_key", r.keyTable(m))

	case protocol.Resize:
		r.call("on_resize", lua.LNumber(m.Width), lua.LNumber(m.Height))
	}
}

// call invokes a callback slot if the script filled it. A raised error
// becomes a fatal message and terminates the run.
func (r *runtime) call(slot string, args ...lua.LValue) {
	fn, ok := r.module.RawGetString(slot).(*lua.LFunction)
	if !ok {
		return
	}
	if err := r.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...); err != nil {
		_ = r.ep.Send(protocol.Fatal{Message: err.Error()})
		r.done = true
		r.err = fmt.Errorf("script callback %s: %w", slot, err)
	}
}

func (r *runtime) keyTable(k protocol.Key) *lua.LTable {
	t := r.L.NewTable()
	t.RawSetString("code", lua.LString(k.Code))
	t.RawSetString("key_code", lua.LNumber(k.KeyCode))
	t.RawSetString("key", lua.LString(k.Key))
	t.RawSetString("ctrl", lua.LBool(k.Ctrl))
	t.RawSetString("shift", lua.LBool(k.Shift))
	t.RawSetString("alt", lua.LBool(k.Alt))
	t.RawSetString("meta", lua.LBool(k.Meta))
	return t
}

// emit sends one draw instruction, surfacing send failures as Lua
// errors so the script sees them at the call site.
func (r *runtime) emit(L *lua.LState, in protocol.Instruction) int {
	if err := r.ep.Send(protocol.Draw{Event: in}); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (r *runtime) fillRect(L *lua.LState) int {
	return r.emit(L, protocol.FillRect{
		X: float64(L.CheckNumber(1)),
		Y: float64(L.CheckNumber(2)),
		W: float64(L.CheckNumber(3)),
		H: float64(L.CheckNumber(4)),
	})
}

func (r *runtime) strokeRect(L *lua.LState) int {
	return r.emit(L, protocol.StrokeRect{
		X: float64(L.CheckNumber(1)),
		Y: float64(L.CheckNumber(2)),
		W: float64(L.CheckNumber(3)),
		H: float64(L.CheckNumber(4)),
	})
}

func (r *runtime) text(L *lua.LState) int {
	in := protocol.Text{
		Text: L.CheckString(1),
		X:    float64(L.CheckNumber(2)),
		Y:    float64(L.CheckNumber(3)),
		CW:   float64(L.CheckNumber(4)),
	}
	if opts := L.OptTable(5, nil); opts != nil {
		flag := func(name string) bool {
			b, ok := opts.RawGetString(name).(lua.LBool)
			return ok && bool(b)
		}
		in.Bold = flag("bold")
		in.Italic = flag("italic")
		in.Underline = flag("underline")
		in.Undercurl = flag("undercurl")
		in.Strike = flag("strike")
	}
	return r.emit(L, in)
}

func (r *runtime) invert(L *lua.LState) int {
	return r.emit(L, protocol.InvertRect{
		X: float64(L.CheckNumber(1)),
		Y: float64(L.CheckNumber(2)),
		W: float64(L.CheckNumber(3)),
		H: float64(L.CheckNumber(4)),
	})
}

func (r *runtime) scroll(L *lua.LState) int {
	return r.emit(L, protocol.ScrollRect{
		X:    float64(L.CheckNumber(1)),
		W:    float64(L.CheckNumber(2)),
		SrcY: float64(L.CheckNumber(3)),
		DstY: float64(L.CheckNumber(4)),
		H:    float64(L.CheckNumber(5)),
	})
}

func (r *runtime) setFg(L *lua.LState) int {
	return r.emit(L, protocol.SetFg{Color: L.CheckString(1)})
}

func (r *runtime) setBg(L *lua.LState) int {
	return r.emit(L, protocol.SetBg{Color: L.CheckString(1)})
}

func (r *runtime) setSpecial(L *lua.LState) int {
	return r.emit(L, protocol.SetSpecial{Color: L.CheckString(1)})
}

func (r *runtime) setFont(L *lua.LState) int {
	return r.emit(L, protocol.SetFont{
		Size:   float64(L.CheckNumber(1)),
		Family: L.OptString(2, ""),
	})
}

// started acknowledges handshake completion early, from inside on_start.
// Scripts that never call it are acknowledged automatically once on_start
// returns; either way exactly one Started goes out.
func (r *runtime) started(L *lua.LState) int {
	if !r.acked && !r.done {
		r.sendStarted()
	}
	return 0
}

func (r *runtime) sendStarted() {
	r.acked = true
	if err := r.ep.Send(protocol.Started{}); err != nil {
		r.done = true
		r.err = err
	}
}

func (r *runtime) exit(L *lua.LState) int {
	r.done = true
	if err := r.ep.Send(protocol.Exited{}); err != nil && r.err == nil {
		r.err = err
	}
	return 0
}

func (r *runtime) fatal(L *lua.LState) int {
	msg := L.CheckString(1)
	r.done = true
	_ = r.ep.Send(protocol.Fatal{Message: msg})
	r.err = fmt.Errorf("script fatal: %s", msg)
	return 0
}
