package eventloop

import (
	"context"
	"errors"
	"sync"
	"time"

	"screen-region-select/src/fsm"
	"screen-region-select/src/geometry"
	"screen-region-select/src/logutil"
	"screen-region-select/src/session"
	"screen-region-select/src/singleinstance"
	"screen-region-select/src/worker"
)

var errBusy = errors.New("Busy, please retry")

// Options configures a Loop. Target and Machine.Chrome are the only fields
// most callers set.
type Options struct {
	Machine  fsm.Options
	Target   session.ResultTarget
	Deadline time.Duration
	Workers  int

	// Server, when set, accepts run-once requests from other processes.
	Server singleinstance.Server

	// OnDelivered runs on the ticking goroutine after a report was handed to
	// every target.
	OnDelivered func(session.Report, error)

	// ExitAfterCommit closes Done once the first selection is delivered.
	ExitAfterCommit bool

	Now func() time.Time
}

// Loop is the single-threaded coordinator between the state machine, the
// triggers that start a selection and the delivery workers. The host calls
// Tick once per frame from one goroutine; Trigger and the accept goroutine
// may run anywhere.
type Loop struct {
	opts    Options
	machine *fsm.Machine
	pool    *worker.Pool

	triggers chan struct{}
	conns    chan singleinstance.Conn
	results  chan result
	pending  []singleinstance.Conn
	inflight int

	mu      sync.Mutex
	last    session.Report
	hasLast bool

	done     chan struct{}
	doneOnce sync.Once
}

type result struct {
	report session.Report
	err    error
	conns  []singleinstance.Conn
}

// New creates a loop. The machine starts in StateNone and reaches the
// launcher on the first Tick.
func New(opts Options) *Loop {
	if opts.Deadline <= 0 {
		opts.Deadline = 5 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	l := &Loop{
		opts:     opts,
		pool:     worker.New(opts.Workers, 4),
		triggers: make(chan struct{}, 4),
		conns:    make(chan singleinstance.Conn, 8),
		results:  make(chan result, 8),
		done:     make(chan struct{}),
	}
	mopts := opts.Machine
	userCommit := mopts.OnCommit
	mopts.OnCommit = func(r geometry.Rect) {
		l.handleCommit(r)
		if userCommit != nil {
			userCommit(r)
		}
	}
	l.machine = fsm.New(mopts)
	return l
}

// Start binds the single-instance server, if configured, and forwards
// accepted run-once requests into the loop until ctx ends.
func (l *Loop) Start(ctx context.Context) error {
	if l.opts.Server == nil {
		return nil
	}
	if err := l.opts.Server.Start(ctx); err != nil {
		return err
	}
	if p := l.opts.Server.Port(); p > 0 {
		start, end := singleinstance.PortRange()
		logutil.Infof("Resident listening on 127.0.0.1:%d (client scan range %d-%d)", p, start, end)
	}
	go func() {
		for {
			conn, err := l.opts.Server.Next(ctx)
			if err != nil {
				return
			}
			select {
			case l.conns <- conn:
			case <-ctx.Done():
				_ = conn.RespondError("shutting down")
				_ = conn.Close()
				return
			}
		}
	}()
	return nil
}

// Trigger requests a new selection, as if the launcher button was clicked.
// Extra triggers beyond the buffer are dropped.
func (l *Loop) Trigger() {
	select {
	case l.triggers <- struct{}{}:
	default:
	}
}

// Tick folds pending triggers and delivery results into this frame and
// advances the state machine once. Triggers and run-once requests stay queued
// until the machine has reached the launcher, so none is lost to the first frame.
func (l *Loop) Tick(in fsm.Input) {
	activated := in.Activated
	ready := l.machine.State() != fsm.StateNone
	for drained := false; !drained; {
		select {
		case res := <-l.results:
			l.handleResult(res)
		default:
			drained = true
		}
	}
	for drained := !ready; !drained; {
		select {
		case <-l.triggers:
			activated = true
		case conn := <-l.conns:
			logutil.Debugf("eventloop: run-once request queued, format=%s", conn.Request().Format)
			l.pending = append(l.pending, conn)
			activated = true
		default:
			drained = true
		}
	}
	in.Activated = activated
	l.machine.Tick(in)
}

func (l *Loop) handleCommit(rect geometry.Rect) {
	report := session.NewReport(rect, l.opts.Now())
	logutil.Infof("Selection committed: %s (%s)", report.Text(), report.ID)

	l.mu.Lock()
	l.last = report
	l.hasLast = true
	l.mu.Unlock()

	conns := l.pending
	l.pending = nil

	var targets session.MultiTarget
	if l.opts.Target != nil {
		targets = append(targets, l.opts.Target)
	}
	for _, c := range conns {
		targets = append(targets, session.DelegatedTarget{Conn: c, Format: c.Request().Format})
	}
	if len(targets) == 0 {
		l.finish(result{report: report})
		return
	}

	sopts := session.Options{Target: targets, Deadline: l.opts.Deadline}
	ctx, cancel := context.WithTimeout(context.Background(), l.opts.Deadline)
	submitted := l.pool.Submit(ctx, "deliver "+report.ID, func(ctx context.Context) error {
		return session.DeliverReport(ctx, sopts, report)
	}, func(err error) {
		cancel()
		l.results <- result{report: report, err: err, conns: conns}
	})
	if !submitted {
		cancel()
		logutil.Warnf("eventloop: delivery queue full, dropping %s", report.ID)
		for _, c := range conns {
			_ = c.RespondError(errBusy.Error())
		}
		l.finish(result{report: report, err: errBusy, conns: conns})
		return
	}
	l.inflight++
}

func (l *Loop) handleResult(res result) {
	l.inflight--
	l.finish(res)
}

func (l *Loop) finish(res result) {
	for _, c := range res.conns {
		_ = c.Close()
	}
	if res.err != nil {
		logutil.Errorf("Delivery of %s failed: %v", res.report.ID, res.err)
	}
	if l.opts.OnDelivered != nil {
		l.opts.OnDelivered(res.report, res.err)
	}
	if l.opts.ExitAfterCommit {
		l.doneOnce.Do(func() { close(l.done) })
	}
}

// Close stops the workers, completing deliveries still queued, and rejects
// run-once requests that never saw a selection.
func (l *Loop) Close() {
	stopped := make(chan struct{})
	go func() {
		l.pool.Close()
		close(stopped)
	}()
	for {
		select {
		case res := <-l.results:
			l.handleResult(res)
		case <-stopped:
			for drained := false; !drained; {
				select {
				case res := <-l.results:
					l.handleResult(res)
				default:
					drained = true
				}
			}
			l.rejectPending()
			if l.opts.Server != nil {
				_ = l.opts.Server.Close()
			}
			return
		}
	}
}

func (l *Loop) rejectPending() {
	for drained := false; !drained; {
		select {
		case c := <-l.conns:
			l.pending = append(l.pending, c)
		default:
			drained = true
		}
	}
	for _, c := range l.pending {
		_ = c.RespondError(session.ErrSelectionCancelled.Error())
		_ = c.Close()
	}
	l.pending = nil
}

// Done is closed after the first delivery when ExitAfterCommit is set.
func (l *Loop) Done() <-chan struct{} { return l.done }

// State returns the active state of the machine.
func (l *Loop) State() fsm.State { return l.machine.State() }

// Transitioned reports whether the last Tick changed state.
func (l *Loop) Transitioned() bool { return l.machine.Transitioned() }

// InProgress returns the rect being dragged.
func (l *Loop) InProgress() (geometry.Rect, bool) { return l.machine.InProgress() }

// LastReport returns the most recent committed selection. Safe for concurrent use.
func (l *Loop) LastReport() (session.Report, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last, l.hasLast
}

// Inflight reports deliveries submitted but not yet finished.
func (l *Loop) Inflight() int { return l.inflight }
