package poolerr

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the pool's public API. Match with errors.Is.
var (
	// ErrAcquisitionTimeout is returned by checkout when no connection
	// became available within the caller's deadline, or when creating a
	// new connection during checkout failed.
	ErrAcquisitionTimeout = errors.New("acquisition timed out")

	// ErrInvalidArgument is returned by checkin/destroy when the supplied
	// connection does not belong to the resolved endpoint pool, or by
	// destroy when the connection is not currently checked out.
	ErrInvalidArgument = errors.New("invalid argument")
)

// TransportError wraps a failure from Connection.Connect,
// Connection.Disconnect, Connection.Send or Connection.Receive. EndpointPool never returns a TransportError
// directly from checkout; it is always translated into
// ErrAcquisitionTimeout with the TransportError chained as the cause.
type TransportError struct {
	Host string
	Port int
	Op   string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s to %s:%d: %v", e.Op, e.Host, e.Port, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout wraps cause in ErrAcquisitionTimeout so callers can both
// errors.Is(err, ErrAcquisitionTimeout) and unwrap to the original
// transport failure when one triggered the timeout.
func Timeout(cause error) error {
	if cause == nil {
		return ErrAcquisitionTimeout
	}
	return fmt.Errorf("%w: %w", ErrAcquisitionTimeout, cause)
}

// InvalidArgument annotates ErrInvalidArgument with a caller-facing reason.
func InvalidArgument(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, reason)
}
