// Command blobvalidator checks out a connection to one or more hosts,
// sends a minimal probe frame, and reports per-host round-trip latency
// and response size.
//
// It is a sample client of the pool, with no message-format parsing of
// its own. For a secure endpoint it probes over a WebSocket upgrade
// instead of a bare TCP frame, exercising the PortNumber.Secure tag
// from the pool's port descriptor.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"connpool/pkg/config"
	"connpool/pkg/logger"
	"connpool/pkg/pool"
)

func main() {
	hostsFlag := flag.String("hosts", "", "comma-separated host:port[:secure] list, e.g. h1:9000,h2:9001:secure")
	timeout := flag.Duration("timeout", 5*time.Second, "checkout timeout per host")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logger.Init(logger.LogLevel(*logLevel), "text")
	log := logger.Get()

	if *hostsFlag == "" {
		fmt.Fprintln(os.Stderr, "usage: blobvalidator -hosts h1:9000,h2:9001:secure")
		os.Exit(2)
	}

	targets, err := parseTargets(*hostsFlag)
	if err != nil {
		log.ErrorWithErr("invalid -hosts", err)
		os.Exit(2)
	}

	cfg := config.DefaultConfig()
	cp := pool.New(cfg.Pool)
	cp.Start()
	defer cp.Shutdown()

	for _, target := range targets {
		validate(cp, target, *timeout, log)
	}
}

type target struct {
	host string
	port pool.PortNumber
}

func parseTargets(spec string) ([]target, error) {
	var targets []target
	for _, entry := range strings.Split(spec, ",") {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) < 2 {
			return nil, fmt.Errorf("malformed target %q, expected host:port[:secure]", entry)
		}
		port, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("malformed port in %q: %w", entry, err)
		}
		secure := len(parts) > 2 && parts[2] == "secure"
		targets = append(targets, target{host: parts[0], port: pool.PortNumber{Port: port, Secure: secure}})
	}
	return targets, nil
}

func validate(cp *pool.ConnectionPool, t target, timeout time.Duration, log *logger.Logger) {
	start := time.Now()

	if t.port.Secure {
		validateSecure(t, timeout, log)
		return
	}

	ctx := context.Background()
	conn, err := cp.Checkout(ctx, t.host, t.port, timeout)
	if err != nil {
		log.ErrorWithErr("checkout failed", err, "host", t.host, "port", t.port.String())
		return
	}

	if _, err := conn.Send([]byte("GET\n")); err != nil {
		log.ErrorWithErr("send failed, destroying connection", err, "host", t.host)
		_ = cp.Destroy(conn)
		return
	}

	buf := make([]byte, 4096)
	n, err := conn.Receive(buf)
	if err != nil {
		log.ErrorWithErr("receive failed, destroying connection", err, "host", t.host)
		_ = cp.Destroy(conn)
		return
	}

	if err := cp.Checkin(conn); err != nil {
		log.ErrorWithErr("checkin failed", err, "host", t.host)
	}

	fmt.Printf("%s:%s ok bytes=%d latency=%s\n", t.host, t.port.String(), n, time.Since(start))
}

// validateSecure probes a "secure" endpoint over a WebSocket upgrade
// rather than a pooled Connection. The pool's port descriptor only
// distinguishes plaintext from secure by value; it does not itself
// negotiate TLS or any upgrade handshake.
func validateSecure(t target, timeout time.Duration, log *logger.Logger) {
	start := time.Now()
	url := fmt.Sprintf("wss://%s:%d/probe", t.host, t.port.Port)

	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		log.ErrorWithErr("secure dial failed", err, "host", t.host)
		return
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte("GET")); err != nil {
		log.ErrorWithErr("secure send failed", err, "host", t.host)
		return
	}

	_, msg, err := conn.ReadMessage()
	if err != nil {
		log.ErrorWithErr("secure receive failed", err, "host", t.host)
		return
	}

	fmt.Printf("%s:%s ok bytes=%d latency=%s\n", t.host, t.port.String(), len(msg), time.Since(start))
}
