// Package pool implements a multi-host blocking connection pool: a
// registry of per-endpoint connection pools that hand out persistent,
// stream-oriented connections, recycle them on checkin, and bound total
// connection count per remote host:port.
package pool
