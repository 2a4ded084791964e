package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"connpool/pkg/config"
	"connpool/pkg/logger"
	"connpool/pkg/poolerr"
)

// PoolConfig is the subset of configuration an EndpointPool needs,
// aliased from pkg/config so callers never have to import both packages
// just to build one.
type PoolConfig = config.PoolConfig

// EndpointPool owns a bounded set of Connections to one (host, port)
// endpoint. It implements blocking checkout with timeout, checkin,
// destroy-and-replace, and coordinated cleanup.
//
// The lifecycle lock (lifecycleMu) gates normal operations (read side)
// against cleanup (write side); the construction mutex (constructionMu)
// is nested inside the read side and guards connection creation plus the
// count it protects.
type EndpointPool struct {
	host string
	port PortNumber
	cfg  PoolConfig

	factory connFactory

	lifecycleMu sync.RWMutex

	available chan Connection

	activeMu sync.Mutex
	active   map[Connection]struct{}

	constructionMu sync.Mutex
	count          atomic.Int32

	log *logger.Logger
}

func newEndpointPool(host string, port PortNumber, cfg PoolConfig, factory connFactory) *EndpointPool {
	if factory == nil {
		factory = newTCPConnection
	}
	return &EndpointPool{
		host:      host,
		port:      port,
		cfg:       cfg,
		factory:   factory,
		available: make(chan Connection, cfg.MaxConnectionsPerHost),
		active:    make(map[Connection]struct{}, cfg.MaxConnectionsPerHost),
		log:       logger.Get().With("host", host, "port", port.String()),
	}
}

// Checkout returns a connected Connection, blocking up to timeout if
// none is immediately available and the per-host cap has been reached.
// It never exceeds the cap, blocks only up to the given deadline, and
// avoids holding a coarse lock while blocked.
func (e *EndpointPool) Checkout(ctx context.Context, timeout time.Duration) (Connection, error) {
	e.lifecycleMu.RLock()
	defer e.lifecycleMu.RUnlock()

	cap32 := int32(e.cfg.MaxConnectionsPerHost)

	// Fast path: cap reached, or a connection might already be waiting.
	if e.count.Load() == cap32 || len(e.available) > 0 {
		return e.waitAvailable(ctx, timeout)
	}

	// Slow path: construct a new connection under the construction mutex,
	// which is held only across creation, never across the blocking wait.
	e.constructionMu.Lock()
	if e.count.Load() < cap32 {
		conn := e.factory(e.host, e.port, e.cfg)
		if err := conn.Connect(); err != nil {
			e.constructionMu.Unlock()
			e.log.ErrorWithErr("failed to create connection", err)
			return nil, poolerr.Timeout(err)
		}
		e.available <- conn
		e.count.Add(1)
		e.log.DebugWith("created connection", "count", e.count.Load())
	}
	e.constructionMu.Unlock()

	return e.waitAvailable(ctx, timeout)
}

// waitAvailable dequeues from the available queue, blocking up to
// timeout (or until ctx is otherwise done).
func (e *EndpointPool) waitAvailable(ctx context.Context, timeout time.Duration) (Connection, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case conn := <-e.available:
		e.activeMu.Lock()
		e.active[conn] = struct{}{}
		e.activeMu.Unlock()
		return conn, nil
	case <-waitCtx.Done():
		if ctx.Err() != nil && ctx.Err() != context.DeadlineExceeded {
			return nil, ctx.Err()
		}
		e.log.ErrorWith("timed out waiting for connection")
		return nil, poolerr.Timeout(nil)
	}
}

// Checkin moves conn from active back to available. conn must have been
// previously returned by Checkout and not yet checked in or destroyed.
func (e *EndpointPool) Checkin(conn Connection) {
	e.lifecycleMu.RLock()
	defer e.lifecycleMu.RUnlock()

	e.activeMu.Lock()
	delete(e.active, conn)
	e.activeMu.Unlock()

	e.available <- conn
	e.log.DebugWith("checked in connection", "available", len(e.available))
}

// Destroy removes conn from active, disconnects it, and attempts to
// create a replacement so count is preserved. If conn is not currently
// active, it returns a poolerr.ErrInvalidArgument error.
func (e *EndpointPool) Destroy(conn Connection) error {
	e.lifecycleMu.RLock()
	defer e.lifecycleMu.RUnlock()

	e.activeMu.Lock()
	_, present := e.active[conn]
	if present {
		delete(e.active, conn)
	}
	e.activeMu.Unlock()

	if !present {
		e.log.ErrorWith("invalid connection being destroyed")
		return poolerr.InvalidArgument("connection does not belong to this endpoint pool's active queue")
	}

	_ = conn.Disconnect()

	replacement := e.factory(e.host, e.port, e.cfg)
	if err := replacement.Connect(); err != nil {
		e.log.ErrorWithErr("failed to create replacement connection", err)
		e.constructionMu.Lock()
		e.count.Add(-1)
		e.constructionMu.Unlock()
		return nil
	}

	e.available <- replacement
	e.log.DebugWith("destroyed connection and created replacement")
	return nil
}

// Cleanup disconnects every Connection in both queues, clears them, and
// resets count to zero. It serializes against all other operations on
// this EndpointPool by taking the write side of the lifecycle lock.
func (e *EndpointPool) Cleanup() {
	e.lifecycleMu.Lock()
	defer e.lifecycleMu.Unlock()

	e.log.InfoWith("cleaning up endpoint pool")

	e.activeMu.Lock()
	for conn := range e.active {
		_ = conn.Disconnect()
	}
	e.active = make(map[Connection]struct{}, e.cfg.MaxConnectionsPerHost)
	e.activeMu.Unlock()

	for more := true; more; {
		select {
		case conn := <-e.available:
			_ = conn.Disconnect()
		default:
			more = false
		}
	}
	e.count.Store(0)
}

// Count returns the current number of live Connections owned by this
// pool (available + active). Exposed for tests and diagnostics.
func (e *EndpointPool) Count() int {
	return int(e.count.Load())
}

// AvailableLen returns the number of Connections currently sitting in
// the available queue. Exposed for tests and diagnostics.
func (e *EndpointPool) AvailableLen() int {
	return len(e.available)
}

// ActiveLen returns the number of Connections currently checked out.
// Exposed for tests and diagnostics.
func (e *EndpointPool) ActiveLen() int {
	e.activeMu.Lock()
	defer e.activeMu.Unlock()
	return len(e.active)
}
