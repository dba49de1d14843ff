package fsm

import (
	"screen-region-select/src/geometry"
	"screen-region-select/src/logutil"
)

const (
	DefaultLauncherWidth  = 320
	DefaultLauncherHeight = 160
)

// Options configures a Machine. All fields are optional.
type Options struct {
	Chrome         Chrome
	LauncherWidth  int
	LauncherHeight int

	// StrictPressOrigin treats a missing press origin as "no active drag"
	// instead of the (0,0) default.
	StrictPressOrigin bool

	OnExit   func(State)
	OnEnter  func(State)
	OnCommit func(geometry.Rect)
}

// Machine drives the Default/SelectRegion views. It is not safe for concurrent
// use; the host calls Tick once per frame from a single goroutine.
type Machine struct {
	opts Options
	ctx  AppContext

	def defaultState
	sel selectionState

	transitioned bool
}

// New returns a machine in StateNone; the first Tick moves it to StateDefault.
func New(opts Options) *Machine {
	if opts.LauncherWidth <= 0 {
		opts.LauncherWidth = DefaultLauncherWidth
	}
	if opts.LauncherHeight <= 0 {
		opts.LauncherHeight = DefaultLauncherHeight
	}
	return &Machine{
		opts: opts,
		sel:  selectionState{strictOrigin: opts.StrictPressOrigin},
	}
}

// Tick runs the active state once, applies the transition table and, on a
// change, runs the exit hook of the old state and the enter hook of the new one.
func (m *Machine) Tick(in Input) {
	m.transitioned = false
	m.ctx.CurEvent = m.run(in)

	next := Transition(m.ctx.CurState, m.ctx.CurEvent)
	if next != m.ctx.CurState {
		logutil.Debugf("fsm: %s --%s--> %s", m.ctx.CurState, m.ctx.CurEvent, next)
		m.exit(m.ctx.CurState)
		m.enter(next)
		m.ctx.PrevState = m.ctx.CurState
		m.ctx.CurState = next
		m.transitioned = true
	}

	if m.ctx.CurEvent == EventRegionSelectionFinished && m.opts.OnCommit != nil {
		m.opts.OnCommit(m.ctx.Committed)
	}
	m.ctx.PrevEvent = m.ctx.CurEvent
}

func (m *Machine) run(in Input) Event {
	switch m.ctx.CurState {
	case StateDefault:
		return m.def.run(in)
	case StateSelectRegion:
		return m.sel.run(&m.ctx, in)
	default:
		return EventNothing
	}
}

func (m *Machine) exit(s State) {
	if m.opts.OnExit != nil {
		m.opts.OnExit(s)
	}
}

func (m *Machine) enter(s State) {
	if m.opts.OnEnter != nil {
		m.opts.OnEnter(s)
	}
	if s == StateSelectRegion {
		m.sel.reset()
	}
	if m.opts.Chrome != nil {
		m.opts.Chrome.Apply(ChromeFor(s, m.opts))
	}
}

// ChromeFor returns the window configuration a state applies on entry.
func ChromeFor(s State, opts Options) WindowChrome {
	switch s {
	case StateSelectRegion:
		return WindowChrome{
			Fullscreen:  true,
			Transparent: true,
			AlwaysOnTop: true,
		}
	default:
		w, h := opts.LauncherWidth, opts.LauncherHeight
		if w <= 0 {
			w = DefaultLauncherWidth
		}
		if h <= 0 {
			h = DefaultLauncherHeight
		}
		return WindowChrome{
			Decorated: true,
			Centered:  true,
			Width:     w,
			Height:    h,
		}
	}
}

// Context returns a copy of the application context.
func (m *Machine) Context() AppContext { return m.ctx }

// State returns the active state.
func (m *Machine) State() State { return m.ctx.CurState }

// Transitioned reports whether the last Tick changed state.
func (m *Machine) Transitioned() bool { return m.transitioned }

// Committed returns the last finished selection.
func (m *Machine) Committed() (geometry.Rect, bool) {
	return m.ctx.Committed, m.ctx.HasCommitted
}

// InProgress returns the rect being dragged, for rendering the outline.
func (m *Machine) InProgress() (geometry.Rect, bool) {
	if m.ctx.CurState != StateSelectRegion || !m.sel.active {
		return geometry.Rect{}, false
	}
	return m.sel.current, true
}
