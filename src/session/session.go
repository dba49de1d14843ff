package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"screen-region-select/src/clipboard"
	"screen-region-select/src/geometry"
	"screen-region-select/src/singleinstance"
)

var (
	ErrSelectionCancelled = errors.New("selection cancelled")
	// ErrNoResident means no resident instance answered a run-once delegation.
	ErrNoResident = errors.New("no resident instance")
)

// ResultTarget consumes committed selections.
type ResultTarget interface {
	OnSelection(ctx context.Context, r Report) error
	OnFailure(err error) error
}

// Publisher is the subset of the message bus a target needs.
type Publisher interface {
	Publish(ctx context.Context, data []byte) error
}

type Options struct {
	Deadline time.Duration
	Target   ResultTarget
	// Now defaults to time.Now.
	Now func() time.Time
}

// Deliver builds a report for rect and hands it to the target within the
// deadline.
func Deliver(ctx context.Context, opts Options, rect geometry.Rect) (Report, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	report := NewReport(rect, now())
	return report, DeliverReport(ctx, opts, report)
}

// DeliverReport hands an already built report to the target. A failing target
// is told via its own OnFailure; a MultiTarget does that per member.
func DeliverReport(ctx context.Context, opts Options, report Report) error {
	if opts.Target == nil {
		return errors.New("Target is required")
	}
	deadline := opts.Deadline
	if deadline <= 0 {
		deadline = 5 * time.Second
	}

	jobCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	if err := opts.Target.OnSelection(jobCtx, report); err != nil {
		if _, multi := opts.Target.(MultiTarget); !multi {
			_ = opts.Target.OnFailure(err)
		}
		return err
	}
	return nil
}

type ClipboardTarget struct{}

func (ClipboardTarget) OnSelection(_ context.Context, r Report) error {
	return clipboard.Write(r.Text())
}

func (ClipboardTarget) OnFailure(err error) error {
	return nil
}

type StdoutTarget struct {
	Writer io.Writer
	Format string
}

func (t StdoutTarget) OnSelection(_ context.Context, r Report) error {
	w := t.Writer
	if w == nil {
		w = os.Stdout
	}
	data, err := r.Encode(t.Format)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func (t StdoutTarget) OnFailure(err error) error {
	return nil
}

// PublishTarget sends the encoded report to the message bus.
type PublishTarget struct {
	Bus    Publisher
	Format string
}

func (t PublishTarget) OnSelection(ctx context.Context, r Report) error {
	if t.Bus == nil {
		return errors.New("publish target missing bus")
	}
	data, err := r.Encode(t.Format)
	if err != nil {
		return err
	}
	return t.Bus.Publish(ctx, data)
}

func (t PublishTarget) OnFailure(err error) error {
	return nil
}

// DelegatedTarget answers a run-once client waiting on the resident.
type DelegatedTarget struct {
	Conn   singleinstance.Conn
	Format string
}

func (t DelegatedTarget) OnSelection(_ context.Context, r Report) error {
	if t.Conn == nil {
		return errors.New("delegated target missing connection")
	}
	data, err := r.Encode(t.Format)
	if err != nil {
		return err
	}
	return t.Conn.RespondSuccess(string(data))
}

func (t DelegatedTarget) OnFailure(err error) error {
	if t.Conn == nil {
		return nil
	}
	if err == nil {
		return t.Conn.RespondError("unknown session error")
	}
	return t.Conn.RespondError(err.Error())
}

// MultiTarget fans a report out to every target. All targets run; errors are
// joined. Only the members that failed see OnFailure, so a delegated client
// that already got its payload is never answered twice.
type MultiTarget []ResultTarget

func (m MultiTarget) OnSelection(ctx context.Context, r Report) error {
	var errs []error
	for _, t := range m {
		if err := t.OnSelection(ctx, r); err != nil {
			_ = t.OnFailure(err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OnFailure notifies every member of a failure that happened before delivery.
func (m MultiTarget) OnFailure(err error) error {
	var errs []error
	for _, t := range m {
		if ferr := t.OnFailure(err); ferr != nil {
			errs = append(errs, ferr)
		}
	}
	return errors.Join(errs...)
}
