//go:build !windows
// +build !windows

package pool

import (
	"net"

	"golang.org/x/sys/unix"
)

// applyPlatformSocketTuning sets the raw socket buffer sizes via
// setsockopt, mirroring the Unix/Linux half of the teacher's
// system-stats build-tag split (client/system_stats_unix.go). This is a
// belt-and-suspenders pass alongside net.TCPConn's portable
// SetReadBuffer/SetWriteBuffer: the kernel is free to double the
// requested value, and setting it directly keeps the configured
// ReadBufferSizeBytes/WriteBufferSizeBytes closer to what actually lands
// on the wire.
func applyPlatformSocketTuning(conn *net.TCPConn, readBuf, writeBuf int) {
	rawConn, err := conn.SyscallConn()
	if err != nil {
		return
	}
	_ = rawConn.Control(func(fd uintptr) {
		if readBuf > 0 {
			_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, readBuf)
		}
		if writeBuf > 0 {
			_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_SNDBUF, writeBuf)
		}
	})
}
