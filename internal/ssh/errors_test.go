package ssh

import (
	"errors"
	"strings"
	"testing"
)

func TestErrors_CarryAddress(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"connection", &ConnectionError{Addr: "10.0.0.1:22", Err: cause}, "10.0.0.1:22"},
		{"session", &SessionError{Addr: "10.0.0.2:22", Err: cause}, "10.0.0.2:22"},
		{"command", &CommandError{Addr: "10.0.0.3:22", ExitCode: 2, Stderr: "oops"}, "10.0.0.3:22"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.err.Error(), tt.want) {
				t.Errorf("error %q does not mention host %s", tt.err.Error(), tt.want)
			}
		})
	}
}

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("handshake failed")

	if !errors.Is(&ConnectionError{Addr: "h:22", Err: cause}, cause) {
		t.Error("ConnectionError does not unwrap to its cause")
	}
	if !errors.Is(&SessionError{Addr: "h:22", Err: cause}, cause) {
		t.Error("SessionError does not unwrap to its cause")
	}
}

func TestErrors_DistinguishableKinds(t *testing.T) {
	var err error = &SessionError{Addr: "h:22", Err: errors.New("auth failed")}

	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		t.Error("SessionError matched *ConnectionError")
	}
	var sessErr *SessionError
	if !errors.As(err, &sessErr) {
		t.Error("SessionError did not match *SessionError")
	}
}

func TestCommandError_Message(t *testing.T) {
	err := &CommandError{Addr: "10.0.0.1:22", ExitCode: 127, Stderr: "bash: nope: command not found\n"}

	msg := err.Error()
	if !strings.Contains(msg, "127") {
		t.Errorf("message %q does not carry the exit code", msg)
	}
	if !strings.Contains(msg, "command not found") {
		t.Errorf("message %q does not carry stderr", msg)
	}

	bare := &CommandError{Addr: "10.0.0.1:22", ExitCode: 1}
	if strings.HasSuffix(bare.Error(), ": ") {
		t.Errorf("message %q has dangling separator for empty stderr", bare.Error())
	}
}
