package pool

import (
	"errors"
	"sync"
	"sync/atomic"

	"connpool/pkg/poolerr"
)

var errConnectFailed = errors.New("simulated connect failure")

// fakeConn is an in-memory Connection used by the scenario tests in
// endpoint_pool_test.go and connection_pool_test.go. It never touches
// the network, and lets tests inject connect failures on specific
// creation attempts (see fakeFactory.failConnectOn).
type fakeConn struct {
	host      string
	port      PortNumber
	connected bool
	mu        sync.Mutex
}

func (c *fakeConn) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = true
	return nil
}

func (c *fakeConn) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	return nil
}

func (c *fakeConn) Send(b []byte) (int, error)    { return len(b), nil }
func (c *fakeConn) Receive(b []byte) (int, error) { return 0, nil }
func (c *fakeConn) RemoteHost() string            { return c.host }
func (c *fakeConn) RemotePort() PortNumber        { return c.port }

func (c *fakeConn) isConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// fakeFactory produces fakeConns and lets tests fail specific creation
// attempts by ordinal (1-indexed), mirroring S5's "constructor stubbed
// to fail on its second call".
type fakeFactory struct {
	calls         atomic.Int32
	failConnectOn map[int]bool
}

func newFakeFactory(failOn ...int) *fakeFactory {
	f := &fakeFactory{failConnectOn: make(map[int]bool)}
	for _, n := range failOn {
		f.failConnectOn[n] = true
	}
	return f
}

func (f *fakeFactory) make() connFactory {
	return func(host string, port PortNumber, cfg PoolConfig) Connection {
		call := int(f.calls.Add(1))
		if f.failConnectOn[call] {
			return &failingConn{host: host, port: port}
		}
		return &fakeConn{host: host, port: port}
	}
}

// failingConn fails Connect unconditionally; used to simulate a
// transport error during connection creation.
type failingConn struct {
	host string
	port PortNumber
}

func (c *failingConn) Connect() error {
	return &poolerr.TransportError{Host: c.host, Port: c.port.Port, Op: "connect", Err: errConnectFailed}
}
func (c *failingConn) Disconnect() error             { return nil }
func (c *failingConn) Send(b []byte) (int, error)    { return 0, nil }
func (c *failingConn) Receive(b []byte) (int, error) { return 0, nil }
func (c *failingConn) RemoteHost() string            { return c.host }
func (c *failingConn) RemotePort() PortNumber        { return c.port }
