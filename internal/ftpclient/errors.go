package ftpclient

import (
	"errors"
	"fmt"
	"net/textproto"
)

var (
	ErrConnectionRefused = errors.New("connection refused")
	ErrAuthFailed        = errors.New("authentication failed")
	ErrNotConnected      = errors.New("session is not connected")
)

// ConnectError describes a failed Connect. Kind is ErrConnectionRefused or
// ErrAuthFailed; Code is the server reply code when one was received.
type ConnectError struct {
	Kind error
	Addr string
	Code int
	Err  error
}

func (e *ConnectError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s: %s (reply %d): %v", e.Kind, e.Addr, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// replyCode extracts the FTP reply code carried by err, or 0.
func replyCode(err error) int {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return protoErr.Code
	}
	return 0
}
