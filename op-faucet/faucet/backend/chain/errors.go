package chain

import (
	"fmt"
)

// RPCError is a JSON-RPC error object returned by the node.
type RPCError struct {
	Method  string
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("%s: rpc error %d: %s", e.Method, e.Code, e.Message)
}

// ErrorCode implements the go-ethereum rpc.Error interface.
func (e *RPCError) ErrorCode() int {
	return e.Code
}

// TransportError is any failure to obtain a well-formed JSON-RPC response:
// timeouts, refused connections, HTTP errors and malformed bodies.
type TransportError struct {
	Method string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
