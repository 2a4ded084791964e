//go:build windows
// +build windows

package pool

import "net"

// applyPlatformSocketTuning is a no-op on Windows: net.TCPConn's
// SetReadBuffer/SetWriteBuffer already cover the portable case and the
// raw winsock option path isn't worth the extra surface for this pool.
func applyPlatformSocketTuning(conn *net.TCPConn, readBuf, writeBuf int) {}
