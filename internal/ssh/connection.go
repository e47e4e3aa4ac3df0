// Package ssh implements the remote-command orchestration layer: a thin
// connection wrapper over golang.org/x/crypto/ssh, a per-instance command
// descriptor, and a connection manager that fans commands out across a fleet
// with bounded retries and poll-based tracking of background jobs.
//
// The package surfaces errors and leaves logging to its callers.
//
// Security: host key verification is disabled. Benchmark fleets are
// ephemeral machines whose keys change on every provisioning round.
package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	scp "github.com/bramvdbogaerde/go-scp"
	"golang.org/x/crypto/ssh"
)

// DefaultTimeout bounds every read and write on a connection when the
// manager is not configured with an explicit timeout.
const DefaultTimeout = 30 * time.Second

// uploadMode is the POSIX file mode applied to uploaded files.
const uploadMode = "0644"

// Result holds both output streams captured from one remote execution.
type Result struct {
	Stdout string
	Stderr string
}

// Connection is one authenticated SSH connection to a single instance. It
// may run several commands sequentially, each on its own channel. A
// connection is either fully authenticated or never handed out: Connect
// closes the socket on any handshake or auth failure.
type Connection struct {
	client *ssh.Client
	addr   string
}

// Connect dials addr, performs the handshake and authenticates with the
// given private key. Dial failures surface as *ConnectionError; handshake,
// key-parse and auth failures as *SessionError.
func Connect(ctx context.Context, addr, username string, privateKey []byte, timeout time.Duration) (*Connection, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	signer, err := ssh.ParsePrivateKey(privateKey)
	if err != nil {
		return nil, &SessionError{Addr: addr, Err: fmt.Errorf("parse private key: %w", err)}
	}

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &ConnectionError{Addr: addr, Err: err}
	}

	config := &ssh.ClientConfig{
		User:            username,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // ephemeral benchmark fleet
		Timeout:         timeout,
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(&deadlineConn{Conn: conn, timeout: timeout}, addr, config)
	if err != nil {
		_ = conn.Close()
		return nil, &SessionError{Addr: addr, Err: err}
	}

	return &Connection{client: ssh.NewClient(sshConn, chans, reqs), addr: addr}, nil
}

// Addr returns the remote endpoint this connection is bound to.
func (c *Connection) Addr() string { return c.addr }

// Close tears down the underlying transport.
func (c *Connection) Close() error { return c.client.Close() }

// Execute runs command to completion on a fresh channel and returns the
// captured stdout and stderr. A non-zero exit status yields *CommandError
// carrying the code and stderr; channel failures yield *SessionError and
// transport failures *ConnectionError.
func (c *Connection) Execute(command string) (Result, error) {
	session, err := c.client.NewSession()
	if err != nil {
		return Result{}, &SessionError{Addr: c.addr, Err: err}
	}
	defer func() { _ = session.Close() }()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	if err := session.Run(command); err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			return Result{}, &CommandError{Addr: c.addr, ExitCode: exitErr.ExitStatus(), Stderr: stderr.String()}
		}
		var netErr net.Error
		if errors.As(err, &netErr) {
			return Result{}, &ConnectionError{Addr: c.addr, Err: err}
		}
		return Result{}, &SessionError{Addr: c.addr, Err: err}
	}

	return Result{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

// Upload writes content to path on the remote host with mode 0644 through
// the scp sub-protocol.
func (c *Connection) Upload(ctx context.Context, path string, content []byte) error {
	client, err := scp.NewClientBySSH(c.client)
	if err != nil {
		return &SessionError{Addr: c.addr, Err: fmt.Errorf("open scp session: %w", err)}
	}
	defer client.Close()

	if err := client.Copy(ctx, bytes.NewReader(content), path, uploadMode, int64(len(content))); err != nil {
		return &ConnectionError{Addr: c.addr, Err: fmt.Errorf("upload %s: %w", path, err)}
	}
	return nil
}

// Download reads the remote file at path through the scp sub-protocol.
func (c *Connection) Download(ctx context.Context, path string) ([]byte, error) {
	client, err := scp.NewClientBySSH(c.client)
	if err != nil {
		return nil, &SessionError{Addr: c.addr, Err: fmt.Errorf("open scp session: %w", err)}
	}
	defer client.Close()

	var buf bytes.Buffer
	if err := client.CopyFromRemotePassThru(ctx, &buf, path, nil); err != nil {
		return nil, &ConnectionError{Addr: c.addr, Err: fmt.Errorf("download %s: %w", path, err)}
	}
	return buf.Bytes(), nil
}

// deadlineConn applies the operation timeout to every read and write so a
// stalled remote cannot hang a session forever.
type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (c *deadlineConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}

func (c *deadlineConn) Write(p []byte) (int, error) {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(p)
}
