package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"time"
)

type tcpClient struct{}

func newTcpClient() Client { return &tcpClient{} }

func (c *tcpClient) TryRunOnce(ctx context.Context, format string) (bool, string, error) {
	dialTimeout := probeTimeout(ctx, 2*time.Second)
	_, addr, ok := findResident(dialTimeout)
	if !ok {
		return false, "", nil
	}
	payload, err := requestSelection(ctx, addr, format, dialTimeout)
	return true, payload, err
}

func requestSelection(ctx context.Context, addr, format string, dialTimeout time.Duration) (string, error) {
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	// Unblock the read when ctx ends; the user may never finish selecting.
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	w := bufio.NewWriter(conn)
	line := selectCommand
	if format != "" {
		line += " " + format
	}
	if _, err := w.WriteString(line + "\n"); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", err
	}

	br := bufio.NewReader(conn)
	status, err := br.ReadString('\n')
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	body, _ := io.ReadAll(br)
	switch status {
	case statusSuccess:
		return string(body), nil
	case statusError:
		return "", errors.New(string(body))
	default:
		return "", errors.New("unexpected resident response: " + status)
	}
}
