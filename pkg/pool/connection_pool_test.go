package pool

import (
	"context"
	"testing"
	"time"

	"connpool/pkg/config"
)

func testConnectionPool(max int) *ConnectionPool {
	cp := New(config.PoolConfig{
		MaxConnectionsPerHost: max,
		ReadBufferSizeBytes:   4096,
		WriteBufferSizeBytes:  4096,
		ReadTimeoutMs:         1000,
	})
	cp.factory = newFakeFactory().make()
	return cp
}

// S7: checkin for a connection with no matching endpoint pool fails,
// and does not create one.
func TestCheckinUnknownHostIsInvalidArgument(t *testing.T) {
	cp := testConnectionPool(2)
	ghost := &fakeConn{host: "ghost", port: PortNumber{Port: 1}}

	if err := cp.Checkin(ghost); err == nil {
		t.Fatal("expected invalid argument error for an unregistered endpoint")
	}
	if len(cp.endpoints) != 0 {
		t.Errorf("checkin should not create an endpoint pool, found %d", len(cp.endpoints))
	}
}

func TestDestroyUnknownHostIsInvalidArgument(t *testing.T) {
	cp := testConnectionPool(2)
	ghost := &fakeConn{host: "ghost", port: PortNumber{Port: 1}}

	if err := cp.Destroy(ghost); err == nil {
		t.Fatal("expected invalid argument error for an unregistered endpoint")
	}
}

// Invariant 6: routing matches (host, port), distinct ports on the same
// host are not confused with each other.
func TestRoutesByHostAndPort(t *testing.T) {
	cp := testConnectionPool(2)

	connA, err := cp.Checkout(context.Background(), "h", PortNumber{Port: 1}, time.Second)
	if err != nil {
		t.Fatalf("checkout A failed: %v", err)
	}
	connB, err := cp.Checkout(context.Background(), "h", PortNumber{Port: 2}, time.Second)
	if err != nil {
		t.Fatalf("checkout B failed: %v", err)
	}

	if err := cp.Checkin(connA); err != nil {
		t.Fatalf("checkin A failed: %v", err)
	}
	if err := cp.Checkin(connB); err != nil {
		t.Fatalf("checkin B failed: %v", err)
	}

	if len(cp.endpoints) != 2 {
		t.Errorf("expected 2 distinct endpoint pools, got %d", len(cp.endpoints))
	}
}

// Lazy creation: the endpoint pool for (host, port) only appears after
// the first checkout.
func TestEndpointPoolCreatedLazily(t *testing.T) {
	cp := testConnectionPool(2)
	if len(cp.endpoints) != 0 {
		t.Fatal("expected no endpoint pools before first checkout")
	}

	conn, err := cp.Checkout(context.Background(), "h", PortNumber{Port: 1}, time.Second)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if len(cp.endpoints) != 1 {
		t.Errorf("expected 1 endpoint pool after first checkout, got %d", len(cp.endpoints))
	}
	_ = cp.Checkin(conn)
}

// Shutdown cleans up every registered endpoint pool, leaving each with a
// connection count of zero.
func TestShutdownCleansUpAllEndpoints(t *testing.T) {
	cp := testConnectionPool(2)

	connA, err := cp.Checkout(context.Background(), "h1", PortNumber{Port: 1}, time.Second)
	if err != nil {
		t.Fatalf("checkout A failed: %v", err)
	}
	connB, err := cp.Checkout(context.Background(), "h2", PortNumber{Port: 1}, time.Second)
	if err != nil {
		t.Fatalf("checkout B failed: %v", err)
	}
	_ = connA
	_ = connB

	cp.Shutdown()

	for key, ep := range cp.endpoints {
		if ep.Count() != 0 {
			t.Errorf("endpoint %v: expected count 0 after shutdown, got %d", key, ep.Count())
		}
	}
}
