package ssh

import (
	"fmt"
	"strings"
)

// The three failure kinds are kept as distinct types so callers can decide
// what a retry is worth: a ConnectionError usually means the host is not
// reachable yet, a SessionError points at a configuration problem (bad key,
// wrong user), and a CommandError means the remote side ran the command and
// rejected it.

// ConnectionError is a transport-level failure to reach a host.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot reach %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// SessionError is a handshake, authentication, or channel-protocol failure
// on an otherwise reachable host.
type SessionError struct {
	Addr string
	Err  error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("ssh session with %s failed: %v", e.Addr, e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }

// CommandError reports a remote command that ran to completion but exited
// with a non-zero status. It carries the captured stderr for diagnosis.
type CommandError struct {
	Addr     string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command on %s exited with status %d", e.Addr, e.ExitCode)
	if detail := strings.TrimSpace(e.Stderr); detail != "" {
		msg += ": " + detail
	}
	return msg
}
