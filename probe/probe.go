// Package probe exposes device connectivity as a boundary capability. A probe
// reports offline only when connectivity is explicitly known to be down;
// absence of a probe means "assume online", failing open toward attempting
// network work rather than silently trusting stale data.
package probe

import (
	"net"
	"time"
)

// Probe reports current connectivity. Online must be cheap and synchronous.
type Probe interface {
	Online() bool
}

// Func adapts a plain function to the Probe interface.
type Func func() bool

// Online implements Probe.
func (f Func) Online() bool { return f() }

// Dialer probes connectivity by opening (and immediately closing) a TCP
// connection to a well-known address.
type Dialer struct {
	// Addr is the host:port to dial.
	Addr string

	// Timeout bounds the dial. Zero means one second.
	Timeout time.Duration
}

// Online implements Probe.
func (d Dialer) Online() bool {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}
	conn, err := net.DialTimeout("tcp", d.Addr, timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
