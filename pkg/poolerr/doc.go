// Package poolerr centralizes the connection pool's error taxonomy so
// callers can use errors.Is/errors.As instead of matching on message text.
package poolerr
