package bus

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startEmbedded(t *testing.T) *server.Server {
	t.Helper()
	ns, err := server.NewServer(&server.Options{DontListen: true})
	require.NoError(t, err)
	go ns.Start()
	if !ns.ReadyForConnections(4 * time.Second) {
		t.Fatal("nats server failed to start within timeout")
	}
	t.Cleanup(func() {
		ns.Shutdown()
		ns.WaitForShutdown()
	})
	return ns
}

func TestPublishDelivers(t *testing.T) {
	ns := startEmbedded(t)

	sub, err := nats.Connect("", nats.InProcessServer(ns))
	require.NoError(t, err)
	defer sub.Close()
	s, err := sub.SubscribeSync("region.selection.committed")
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	b, err := Connect("", "region.selection.committed", nats.InProcessServer(ns))
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, "region.selection.committed", b.Subject())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, b.Publish(ctx, []byte(`{"x":10}`)))

	msg, err := s.NextMsg(2 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, `{"x":10}`, string(msg.Data))
}

func TestConnectRejectsEmptySubject(t *testing.T) {
	_, err := Connect("nats://127.0.0.1:4222", "")
	assert.Error(t, err)
}

func TestCloseNil(t *testing.T) {
	var b *Bus
	b.Close()
}
