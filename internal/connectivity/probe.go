// Package connectivity reports whether the device currently has network access.
//
// Probes are synchronous and side-effect free: InterfaceProbe only inspects
// the local interface table and never sends packets.
package connectivity

import (
	"net"
	"sync/atomic"
)

// Probe reports current connectivity
type Probe interface {
	IsConnected() bool
}

// ProbeFunc adapts a function to Probe
type ProbeFunc func() bool

// IsConnected calls f
func (f ProbeFunc) IsConnected() bool {
	return f()
}

// Always is a probe that reports connectivity unconditionally
var Always Probe = ProbeFunc(func() bool { return true })

// Static is a probe whose answer is set by the caller. Safe for concurrent use.
type Static struct {
	connected atomic.Bool
}

// NewStatic creates a Static probe with an initial state
func NewStatic(connected bool) *Static {
	s := &Static{}
	s.connected.Store(connected)
	return s
}

// Set changes the reported state
func (s *Static) Set(connected bool) {
	s.connected.Store(connected)
}

// IsConnected implements Probe
func (s *Static) IsConnected() bool {
	return s.connected.Load()
}

// InterfaceProbe reports connectivity when at least one non-loopback
// interface is up and carries a routable unicast address
type InterfaceProbe struct {
	// interfaces is swapped out in tests
	interfaces func() ([]net.Interface, error)
	addrs      func(net.Interface) ([]net.Addr, error)
}

// NewInterfaceProbe creates a probe over the host's interface table
func NewInterfaceProbe() *InterfaceProbe {
	return &InterfaceProbe{
		interfaces: net.Interfaces,
		addrs:      func(iface net.Interface) ([]net.Addr, error) { return iface.Addrs() },
	}
}

// IsConnected implements Probe. An unreadable interface table counts as
// connected so a platform quirk never blocks every request.
func (p *InterfaceProbe) IsConnected() bool {
	ifaces, err := p.interfaces()
	if err != nil {
		return true
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := p.addrs(iface)
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if routable(addr) {
				return true
			}
		}
	}
	return false
}

func routable(addr net.Addr) bool {
	var ip net.IP
	switch v := addr.(type) {
	case *net.IPNet:
		ip = v.IP
	case *net.IPAddr:
		ip = v.IP
	default:
		return false
	}
	return ip != nil && !ip.IsLoopback() && !ip.IsLinkLocalUnicast() && !ip.IsUnspecified()
}
