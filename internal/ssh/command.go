package ssh

import (
	"fmt"
	"strings"
)

// CommandStatus is the externally observed state of a command running in the
// background on a remote instance. The orchestration layer never transitions
// this state itself; it only derives it from probe output.
type CommandStatus int

const (
	// StatusRunning means the background session tagged with the command's
	// id is still alive.
	StatusRunning CommandStatus = iota
	// StatusTerminated means the session is gone, or the command was never
	// a background command to begin with.
	StatusTerminated
)

func (s CommandStatus) String() string {
	if s == StatusRunning {
		return "running"
	}
	return "terminated"
}

// Command describes one logical shell command to run on a set of instances.
// The base command is a pure function of the instance ordinal, so a single
// descriptor renders a concrete string per target. Modifiers are additive
// and value-returning, which keeps descriptors safe to share across the
// concurrent renderings of a fan-out.
type Command struct {
	render     func(index int) string
	background string
	dir        string
	logFile    string
}

// NewCommand builds a descriptor from a render function. The function must
// be deterministic for a given index; it may be called once per instance
// from concurrent goroutines.
func NewCommand(render func(index int) string) Command {
	return Command{render: render}
}

// Uniform builds a descriptor that renders the same string for every
// instance.
func Uniform(command string) Command {
	return NewCommand(func(int) string { return command })
}

// WithBackground tags the command with id and makes it start detached inside
// a tmux session of that name. Execution then returns immediately; the
// remote process is tracked afterwards through WaitForCommand.
func (c Command) WithBackground(id string) Command {
	c.background = id
	return c
}

// WithDir wraps execution in a subshell that first changes into dir.
func (c Command) WithDir(dir string) Command {
	c.dir = dir
	return c
}

// WithLogFile redirects both output streams of the command to path while
// keeping them visible on the channel.
func (c Command) WithLogFile(path string) Command {
	c.logFile = path
	return c
}

// BackgroundID returns the background tag, or "" for foreground commands.
func (c Command) BackgroundID() string { return c.background }

// Stringify renders the final shell string for the instance at index.
// Modifiers nest in a fixed order: redirection hugs the base command, the
// tmux wrapper comes next, and the directory change is outermost. Any other
// nesting would redirect the wrong stream or cd inside the detached session.
func (c Command) Stringify(index int) string {
	cmd := c.render(index)
	if c.logFile != "" {
		cmd = fmt.Sprintf("%s |& tee %s", cmd, c.logFile)
	}
	if c.background != "" {
		cmd = fmt.Sprintf("tmux new -d -s %q %q", c.background, cmd)
	}
	if c.dir != "" {
		cmd = fmt.Sprintf("(cd %s && %s)", c.dir, cmd)
	}
	return cmd
}

// Status derives the background job's state from the output of a probe that
// lists active tmux sessions. A command with no background id is never
// running in the background sense.
func (c Command) Status(probeOutput string) CommandStatus {
	if c.background != "" && strings.Contains(probeOutput, c.background) {
		return StatusRunning
	}
	return StatusTerminated
}
