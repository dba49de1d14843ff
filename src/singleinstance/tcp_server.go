package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"screen-region-select/src/logutil"
)

const (
	residentHost  = "127.0.0.1"
	pingRequest   = "PING\n"
	pongResponse  = "PONG\n"
	selectCommand = "SELECT"

	statusSuccess = "SUCCESS\n"
	statusError   = "ERROR\n"
)

// tcpServer implements Server over TCP loopback.
type tcpServer struct {
	mu       sync.Mutex
	lis      net.Listener
	incoming chan *tcpConn
	port     int
	portHint int
}

func newTcpServer() *tcpServer { return &tcpServer{incoming: make(chan *tcpConn, 8)} }

// Start binds ONLY the start port of the configured range. If occupied, fail:
// another resident already owns it.
func (s *tcpServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis != nil {
		return nil
	}
	port := s.portHint
	if port == 0 {
		port, _ = getPortRange()
	}
	addr := net.JoinHostPort(residentHost, fmt.Sprint(port))
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logutil.Warnf("singleinstance: failed to bind %s: %v", addr, err)
		return err
	}
	s.lis = lis
	s.port = lis.Addr().(*net.TCPAddr).Port
	logutil.Infof("singleinstance: listening on %s", lis.Addr())
	go s.acceptLoop(ctx, lis)
	return nil
}

// Port returns the bound port (0 if not started).
func (s *tcpServer) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

func (s *tcpServer) acceptLoop(ctx context.Context, lis net.Listener) {
	for {
		c, err := lis.Accept()
		if err != nil {
			return
		}
		remote := c.RemoteAddr().String()
		_ = c.SetDeadline(time.Now().Add(3 * time.Second))
		br := bufio.NewReader(c)
		line, _ := br.ReadString('\n')
		bw := bufio.NewWriter(c)
		if line == pingRequest {
			logutil.Debugf("singleinstance: PING from %s -> PONG", remote)
			_, _ = bw.WriteString(pongResponse)
			_ = bw.Flush()
			_ = c.Close()
			continue
		}

		req, ok := parseRequest(line)
		if !ok {
			logutil.Warnf("singleinstance: bad request from %s: %q", remote, line)
			_, _ = bw.WriteString(statusError + "bad request")
			_ = bw.Flush()
			_ = c.Close()
			continue
		}
		// The answer arrives after an interactive selection; no deadline.
		_ = c.SetDeadline(time.Time{})
		logutil.Infof("singleinstance: select request from %s format=%s", remote, req.Format)
		select {
		case s.incoming <- &tcpConn{c: c, r: req, w: bw}:
		case <-ctx.Done():
			_ = c.Close()
			return
		}
	}
}

// parseRequest parses "SELECT [format]\n".
func parseRequest(line string) (Request, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != selectCommand {
		return Request{}, false
	}
	req := Request{Format: "json"}
	if len(fields) > 1 {
		req.Format = strings.ToLower(fields[1])
	}
	return req, true
}

func (s *tcpServer) Next(ctx context.Context) (Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case tc, ok := <-s.incoming:
		if !ok {
			return nil, net.ErrClosed
		}
		return tc, nil
	}
}

func (s *tcpServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis == nil {
		return nil
	}
	err := s.lis.Close()
	s.lis = nil
	s.port = 0
	return err
}

// ErrAlreadyResponded is returned when a request is answered a second time.
var ErrAlreadyResponded = errors.New("singleinstance: request already answered")

type tcpConn struct {
	c net.Conn
	r Request
	w *bufio.Writer

	mu        sync.Mutex
	responded bool
}

func (tc *tcpConn) Request() Request { return tc.r }

func (tc *tcpConn) RespondSuccess(payload string) error {
	return tc.respond(statusSuccess + payload)
}

func (tc *tcpConn) RespondError(msg string) error {
	return tc.respond(statusError + msg)
}

// respond writes the single status line and body the protocol allows.
func (tc *tcpConn) respond(msg string) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.responded {
		return ErrAlreadyResponded
	}
	tc.responded = true
	if _, err := tc.w.WriteString(msg); err != nil {
		return err
	}
	return tc.w.Flush()
}

func (tc *tcpConn) Close() error { return tc.c.Close() }
