package singleinstance

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"time"
)

const defaultProbeTimeout = 300 * time.Millisecond

// DetectResidentPort reports the port of a running region selector, if any.
func DetectResidentPort(ctx context.Context) (int, bool) {
	port, _, ok := findResident(probeTimeout(ctx, defaultProbeTimeout))
	return port, ok
}

// findResident walks the configured range and returns the first port whose
// owner answers PING with PONG.
func findResident(timeout time.Duration) (int, string, bool) {
	start, end := getPortRange()
	for port := start; port <= end; port++ {
		addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
		if ping(addr, timeout) {
			return port, addr, true
		}
	}
	return 0, "", false
}

// probeTimeout shortens fallback to the time left on ctx.
func probeTimeout(ctx context.Context, fallback time.Duration) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < fallback {
			return d
		}
	}
	return fallback
}

func ping(addr string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	if _, err := conn.Write([]byte(pingRequest)); err != nil {
		return false
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	return err == nil && resp == pongResponse
}
