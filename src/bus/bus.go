package bus

import (
	"context"
	"errors"
	"time"

	"github.com/nats-io/nats.go"

	"screen-region-select/src/logutil"
)

const drainTimeout = 2 * time.Second

// Bus publishes committed selection reports on a single NATS subject.
type Bus struct {
	nc      *nats.Conn
	subject string
}

// Connect dials url and binds the publisher to subject. Extra options are
// passed to nats.Connect (tests use nats.InProcessServer).
func Connect(url, subject string, opts ...nats.Option) (*Bus, error) {
	if subject == "" {
		return nil, errors.New("bus: empty subject")
	}
	opts = append([]nats.Option{
		nats.Name("region-select"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logutil.Warnf("bus: disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logutil.Infof("bus: reconnected to %s", logutil.RedactURL(nc.ConnectedUrl()))
		}),
	}, opts...)

	logutil.Debugf("bus: connecting to %s", logutil.RedactURL(url))
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		logutil.Errorf("bus: connect failed: %v", err)
		return nil, err
	}
	logutil.Infof("bus: connected, subject=%s", subject)
	return &Bus{nc: nc, subject: subject}, nil
}

// Subject returns the subject reports are published on.
func (b *Bus) Subject() string { return b.subject }

// Publish sends payload and waits for the server to acknowledge the flush.
func (b *Bus) Publish(ctx context.Context, payload []byte) error {
	if err := b.nc.Publish(b.subject, payload); err != nil {
		return err
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, drainTimeout)
		defer cancel()
	}
	return b.nc.FlushWithContext(ctx)
}

// Close drains the connection, forcing a close if the drain stalls.
func (b *Bus) Close() {
	if b == nil || b.nc == nil {
		return
	}
	drainDone := make(chan error, 1)
	go func() { drainDone <- b.nc.Drain() }()

	select {
	case err := <-drainDone:
		if err != nil {
			logutil.Warnf("bus: drain failed, forcing close: %v", err)
			b.nc.Close()
		}
	case <-time.After(drainTimeout):
		logutil.Warnf("bus: drain timed out after %s, forcing close", drainTimeout)
		b.nc.Close()
	}
}
