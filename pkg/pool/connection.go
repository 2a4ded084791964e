package pool

import (
	"fmt"
	"net"
	"time"

	"connpool/pkg/poolerr"
)

// PortNumber is an opaque port descriptor: a numeric TCP port plus a
// security mode tag. The pool compares it by value and forwards it to
// the Connection constructor; it never inspects the tag itself.
type PortNumber struct {
	Port   int
	Secure bool
}

func (p PortNumber) String() string {
	if p.Secure {
		return fmt.Sprintf("%d(secure)", p.Port)
	}
	return fmt.Sprintf("%d", p.Port)
}

// Connection is the capability the pool requires from any concrete
// transport. The pool never serializes, multiplexes, or interprets
// traffic on a Connection. It only connects, disconnects, and routes by
// remote identity.
type Connection interface {
	// Connect establishes the transport, or returns a *poolerr.TransportError.
	Connect() error
	// Disconnect releases the transport. Idempotent from the pool's
	// perspective: the pool never calls it twice on the same instance.
	Disconnect() error
	// Send writes b to the transport.
	Send(b []byte) (int, error)
	// Receive reads into b, honoring the configured read timeout.
	Receive(b []byte) (int, error)
	// RemoteHost returns the stable identity used to route checkin/destroy.
	RemoteHost() string
	// RemotePort returns the stable identity used to route checkin/destroy.
	RemotePort() PortNumber
}

// connFactory constructs a new, not-yet-connected Connection for one
// endpoint. EndpointPool holds one per instance so tests can substitute a
// fake without touching the network.
type connFactory func(host string, port PortNumber, cfg PoolConfig) Connection

// tcpConnection is the default Connection implementation: a plain TCP
// socket with configurable buffer sizes and a read deadline re-armed on
// every Receive. It belongs to exactly one EndpointPool and is never
// reused after Disconnect.
type tcpConnection struct {
	host string
	port PortNumber

	readBufferSize  int
	writeBufferSize int
	readTimeout     time.Duration

	conn net.Conn
}

func newTCPConnection(host string, port PortNumber, cfg PoolConfig) Connection {
	return &tcpConnection{
		host:            host,
		port:            port,
		readBufferSize:  cfg.ReadBufferSizeBytes,
		writeBufferSize: cfg.WriteBufferSizeBytes,
		readTimeout:     time.Duration(cfg.ReadTimeoutMs) * time.Millisecond,
	}
}

func (c *tcpConnection) Connect() error {
	addr := net.JoinHostPort(c.host, fmt.Sprintf("%d", c.port.Port))
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return &poolerr.TransportError{Host: c.host, Port: c.port.Port, Op: "connect", Err: err}
	}

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if c.readBufferSize > 0 {
			_ = tcpConn.SetReadBuffer(c.readBufferSize)
		}
		if c.writeBufferSize > 0 {
			_ = tcpConn.SetWriteBuffer(c.writeBufferSize)
		}
		applyPlatformSocketTuning(tcpConn, c.readBufferSize, c.writeBufferSize)
	}

	c.conn = conn
	return nil
}

func (c *tcpConnection) Disconnect() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	if err != nil {
		return &poolerr.TransportError{Host: c.host, Port: c.port.Port, Op: "disconnect", Err: err}
	}
	return nil
}

func (c *tcpConnection) Send(b []byte) (int, error) {
	n, err := c.conn.Write(b)
	if err != nil {
		return n, &poolerr.TransportError{Host: c.host, Port: c.port.Port, Op: "send", Err: err}
	}
	return n, nil
}

func (c *tcpConnection) Receive(b []byte) (int, error) {
	if c.readTimeout > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	}
	n, err := c.conn.Read(b)
	if err != nil {
		return n, &poolerr.TransportError{Host: c.host, Port: c.port.Port, Op: "receive", Err: err}
	}
	return n, nil
}

func (c *tcpConnection) RemoteHost() string {
	return c.host
}

func (c *tcpConnection) RemotePort() PortNumber {
	return c.port
}
