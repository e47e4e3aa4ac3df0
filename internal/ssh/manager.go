package ssh

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/imamik/benchfleet/internal/fleet"
)

// DefaultRetryDelay separates consecutive attempts on one instance and
// doubles as the poll interval of WaitForCommand.
const DefaultRetryDelay = 5 * time.Second

// ErrPollTimeout is returned by WaitForCommand when the budget set with
// WithPollTimeout elapses before every instance reaches the desired status.
var ErrPollTimeout = errors.New("timed out waiting for command status")

// ProbeCommand lists the active tmux sessions on an instance. The `|| true`
// keeps the probe's exit status zero when no tmux server is running.
// Matching a background id against its output is the sole mechanism for
// tracking detached jobs.
var ProbeCommand = Uniform("(tmux ls || true)")

// session is the slice of Connection the manager's loops need, carved out so
// retry and polling behavior is testable without a live SSH endpoint.
type session interface {
	Execute(command string) (Result, error)
	Close() error
}

// ConnectionManager carries the fleet-wide connection policy: credentials,
// operation timeout, retry budget and delays. It holds no mutable state
// (every attempt opens a brand-new connection), so one value can be shared by
// any number of concurrent operations. The With* builders return modified
// copies.
type ConnectionManager struct {
	username       string
	privateKeyFile string
	timeout        time.Duration
	retries        int
	retryDelay     time.Duration
	pollTimeout    time.Duration

	// test seams; nil selects the real implementations
	dial  func(ctx context.Context, addr string) (session, error)
	sleep func(ctx context.Context, d time.Duration) error
}

// NewConnectionManager builds a manager that authenticates as username with
// the private key at privateKeyFile, with the default timeout, a single
// attempt per instance, and the default retry delay.
func NewConnectionManager(username, privateKeyFile string) ConnectionManager {
	return ConnectionManager{
		username:       username,
		privateKeyFile: privateKeyFile,
		timeout:        DefaultTimeout,
		retries:        1,
		retryDelay:     DefaultRetryDelay,
	}
}

// WithTimeout sets the per-connection operation timeout. Non-positive values
// reset it to the default.
func (m ConnectionManager) WithTimeout(d time.Duration) ConnectionManager {
	if d <= 0 {
		d = DefaultTimeout
	}
	m.timeout = d
	return m
}

// WithRetries sets the total number of attempts per instance. Values below
// one still perform a single attempt.
func (m ConnectionManager) WithRetries(n int) ConnectionManager {
	if n < 1 {
		n = 1
	}
	m.retries = n
	return m
}

// WithRetryDelay sets the delay between attempts and the poll interval of
// WaitForCommand. Non-positive values reset it to the default.
func (m ConnectionManager) WithRetryDelay(d time.Duration) ConnectionManager {
	if d <= 0 {
		d = DefaultRetryDelay
	}
	m.retryDelay = d
	return m
}

// WithPollTimeout bounds how long WaitForCommand may poll before giving up
// with ErrPollTimeout. Zero keeps the loop unbounded.
func (m ConnectionManager) WithPollTimeout(d time.Duration) ConnectionManager {
	m.pollTimeout = d
	return m
}

// Connect opens a fresh authenticated connection to the instance.
func (m ConnectionManager) Connect(ctx context.Context, instance fleet.Instance) (*Connection, error) {
	addr := instance.SSHAddress()
	key, err := os.ReadFile(m.privateKeyFile)
	if err != nil {
		return nil, &SessionError{Addr: addr, Err: fmt.Errorf("read private key: %w", err)}
	}
	return Connect(ctx, addr, m.username, key, m.timeout)
}

// Execute renders and runs command on every instance concurrently. Each
// instance gets up to the configured number of attempts, each on a fresh
// connection, separated by the retry delay whichever step failed. The
// returned slice is index-aligned with instances. The call succeeds only if
// every instance does; otherwise the first exhausted instance's final error
// is returned, with the results of instances that did succeed still
// populated for diagnostics.
func (m ConnectionManager) Execute(ctx context.Context, instances []fleet.Instance, command Command) ([]Result, error) {
	type outcome struct {
		index int
		res   Result
		err   error
	}

	outcomes := make(chan outcome, len(instances))
	for i, instance := range instances {
		i, instance := i, instance
		go func() {
			res, err := m.executeOne(ctx, instance, command.Stringify(i))
			outcomes <- outcome{index: i, res: res, err: err}
		}()
	}

	results := make([]Result, len(instances))
	var firstErr error
	for range instances {
		out := <-outcomes
		if out.err != nil {
			if firstErr == nil {
				firstErr = out.err
			}
			continue
		}
		results[out.index] = out.res
	}
	return results, firstErr
}

// executeOne is the per-instance attempt loop. Attempts are strictly
// sequential: a new connection is only opened once the previous one is
// closed. The last observed error wins when the budget runs out.
func (m ConnectionManager) executeOne(ctx context.Context, instance fleet.Instance, command string) (Result, error) {
	attempts := m.retries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := m.wait(ctx, m.retryDelay); err != nil {
				return Result{}, err
			}
		}

		conn, err := m.open(ctx, instance)
		if err != nil {
			lastErr = err
			continue
		}

		res, err := conn.Execute(command)
		_ = conn.Close()
		if err == nil {
			return res, nil
		}
		lastErr = err
	}
	return Result{}, lastErr
}

// WaitForCommand blocks until command's background job reports the desired
// status on every instance, probing the whole fleet every retry-delay
// interval. Without a poll timeout the loop only ends on success, probe
// failure, or context cancellation.
func (m ConnectionManager) WaitForCommand(ctx context.Context, instances []fleet.Instance, command Command, desired CommandStatus) error {
	var deadline time.Time
	if m.pollTimeout > 0 {
		deadline = time.Now().Add(m.pollTimeout)
	}

	for {
		if err := m.wait(ctx, m.retryDelay); err != nil {
			return err
		}

		results, err := m.Execute(ctx, instances, ProbeCommand)
		if err != nil {
			return err
		}

		matched := true
		for _, res := range results {
			if command.Status(res.Stdout) != desired {
				matched = false
				break
			}
		}
		if matched {
			return nil
		}

		if !deadline.IsZero() && time.Now().After(deadline) {
			return fmt.Errorf("%w: job %q did not reach %s within %s",
				ErrPollTimeout, command.BackgroundID(), desired, m.pollTimeout)
		}
	}
}

func (m ConnectionManager) open(ctx context.Context, instance fleet.Instance) (session, error) {
	if m.dial != nil {
		return m.dial(ctx, instance.SSHAddress())
	}
	return m.Connect(ctx, instance)
}

func (m ConnectionManager) wait(ctx context.Context, d time.Duration) error {
	if m.sleep != nil {
		return m.sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
