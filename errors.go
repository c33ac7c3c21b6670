package firedoc

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// TransportError wraps a non-OK RPC status. The server was contacted and may
// have partially acted.
type TransportError struct {
	Code    codes.Code
	Message string
	err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("firedoc: rpc failed with %s: %s", e.Code, e.Message)
}

func (e *TransportError) Unwrap() error { return e.err }

// ValidationError reports a client-side pre-flight failure: a limit
// exceeded, a malformed document path. Nothing was sent to the server.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "firedoc: " + e.Reason
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// TxAbortedError reports that a transactional unit of work failed (by error
// or by panic) and the transaction was rolled back. Cause carries the
// original failure.
type TxAbortedError struct {
	Cause error
}

func (e *TxAbortedError) Error() string {
	return fmt.Sprintf("firedoc: transaction aborted: %v", e.Cause)
}

func (e *TxAbortedError) Unwrap() error { return e.Cause }

// mapRPCError converts a gRPC call error into a *TransportError.
func mapRPCError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	return &TransportError{Code: st.Code(), Message: st.Message(), err: err}
}
