package singleinstance

// Single-instance ownership and run-once delegation over loopback TCP.

import (
	"context"
)

// Server owns the TCP endpoint and answers run-once selection requests.
type Server interface {
	// Start binds the first port of the configured range and accepts client requests.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted request as a Conn, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn is one pending run-once request. The resident answers it after the
// next selection is committed.
type Conn interface {
	Request() Request
	// RespondSuccess sends the encoded selection report.
	RespondSuccess(payload string) error
	// RespondError sends a human-readable error.
	RespondError(msg string) error
	Close() error
}

// Request is a parsed run-once request.
type Request struct {
	// Format is the report encoding the client wants back (json, yaml, text).
	Format string
}

// Client delegates a run-once selection to a resident instance.
type Client interface {
	// TryRunOnce scans the port range, performs the handshake and waits for the
	// resident's answer. delegated=false, err=nil means no resident was found.
	TryRunOnce(ctx context.Context, format string) (delegated bool, payload string, err error)
}

// NewServer returns the TCP implementation.
func NewServer() Server { return newTcpServer() }

// NewClient returns the TCP implementation.
func NewClient() Client { return newTcpClient() }
