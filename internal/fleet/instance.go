// Package fleet describes the inventory of remote machines a benchmark run
// targets.
package fleet

import (
	"net"
	"strconv"
)

// DefaultSSHPort is used when an instance does not specify a port.
const DefaultSSHPort = 22

// Instance identifies one addressable remote host. Values are immutable once
// built from configuration; the orchestration layer only ever reads them.
type Instance struct {
	// Name is a human-readable label used in logs and summaries.
	Name string
	// Host is the reachable address, an IP or DNS name without port.
	Host string
	// Port is the SSH port; zero selects DefaultSSHPort.
	Port int
	// Ordinal is the instance's index within the fleet, used to render
	// per-instance commands.
	Ordinal int
}

// SSHAddress returns the host:port endpoint for SSH connections.
func (i Instance) SSHAddress() string {
	port := i.Port
	if port == 0 {
		port = DefaultSSHPort
	}
	return net.JoinHostPort(i.Host, strconv.Itoa(port))
}

// String implements fmt.Stringer for log output.
func (i Instance) String() string {
	if i.Name != "" {
		return i.Name
	}
	return i.SSHAddress()
}
