package pool

import (
	"context"
	"sync"
	"time"

	"connpool/pkg/config"
	"connpool/pkg/logger"
	"connpool/pkg/poolerr"
)

// endpointKey identifies one remote endpoint.
type endpointKey struct {
	host string
	port PortNumber
}

// ConnectionPool is the top-level registry: one EndpointPool per
// (host, port), created lazily on first checkout. It delegates
// checkout/checkin/destroy to the right EndpointPool and performs
// fleet-wide shutdown.
type ConnectionPool struct {
	cfg config.PoolConfig

	mu        sync.Mutex
	endpoints map[endpointKey]*EndpointPool

	factory connFactory
	log     *logger.Logger
}

// New creates a ConnectionPool from the given configuration. EndpointPools
// are not created until the first Checkout for each endpoint.
func New(cfg config.PoolConfig) *ConnectionPool {
	return &ConnectionPool{
		cfg:       cfg,
		endpoints: make(map[endpointKey]*EndpointPool),
		factory:   newTCPConnection,
		log:       logger.Get(),
	}
}

// Start is an idempotent lifecycle hook. It opens no connections; it
// exists so callers have a symmetrical start/shutdown pair.
func (p *ConnectionPool) Start() {
	p.log.InfoWith("connection pool started")
}

// Checkout resolves or creates the EndpointPool for (host, port) and
// delegates to its Checkout.
func (p *ConnectionPool) Checkout(ctx context.Context, host string, port PortNumber, timeout time.Duration) (Connection, error) {
	return p.endpointPool(host, port).Checkout(ctx, timeout)
}

// Checkin routes conn to the EndpointPool matching its remote identity.
// Returns poolerr.ErrInvalidArgument if no such EndpointPool is registered.
func (p *ConnectionPool) Checkin(conn Connection) error {
	ep, err := p.resolve(conn)
	if err != nil {
		return err
	}
	ep.Checkin(conn)
	return nil
}

// Destroy routes conn to the EndpointPool matching its remote identity
// and delegates to its Destroy.
func (p *ConnectionPool) Destroy(conn Connection) error {
	ep, err := p.resolve(conn)
	if err != nil {
		return err
	}
	return ep.Destroy(conn)
}

// Shutdown invokes Cleanup on every registered EndpointPool.
func (p *ConnectionPool) Shutdown() {
	p.log.InfoWith("shutting down connection pool")

	p.mu.Lock()
	endpoints := make([]*EndpointPool, 0, len(p.endpoints))
	for _, ep := range p.endpoints {
		endpoints = append(endpoints, ep)
	}
	p.mu.Unlock()

	for _, ep := range endpoints {
		ep.Cleanup()
	}
}

// endpointPool returns the EndpointPool for (host, port), creating it on
// first use. The lookup and the creation both happen under the single
// top-level mutex; there is no lock-free first read.
func (p *ConnectionPool) endpointPool(host string, port PortNumber) *EndpointPool {
	key := endpointKey{host: host, port: port}

	p.mu.Lock()
	defer p.mu.Unlock()

	ep, ok := p.endpoints[key]
	if ok {
		return ep
	}

	p.log.DebugWith("creating endpoint pool", "host", host, "port", port.String())
	ep = newEndpointPool(host, port, p.cfg, p.factory)
	p.endpoints[key] = ep
	return ep
}

// resolve finds the EndpointPool whose (host, port) matches conn's
// remote identity, without creating one.
func (p *ConnectionPool) resolve(conn Connection) (*EndpointPool, error) {
	key := endpointKey{host: conn.RemoteHost(), port: conn.RemotePort()}

	p.mu.Lock()
	ep, ok := p.endpoints[key]
	p.mu.Unlock()

	if !ok {
		p.log.ErrorWith("connection does not belong to the pool",
			"host", conn.RemoteHost(), "port", conn.RemotePort().String())
		return nil, poolerr.InvalidArgument("connection does not belong to the pool")
	}
	return ep, nil
}
