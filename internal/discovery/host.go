package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Host is a stepwise HTTP host found on the network
type Host struct {
	// Instance is the mDNS service instance name (e.g., "stepwise-getting-started")
	Instance string

	// Hostname is the mDNS hostname (e.g., "laptop.local.")
	Hostname string

	// IP is the preferred address, IPv4 when available
	IP string

	// Port is the HTTP port
	Port int

	// Wizard is the name of the served wizard definition
	Wizard string

	// BasePath is where step locations start
	BasePath string

	// Steps is the number of steps in the served wizard
	Steps int

	// Metadata contains every TXT record, including the fields above
	Metadata map[string]string

	// DiscoveredAt is when the host was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the host
func (h *Host) String() string {
	return fmt.Sprintf("%s (%s, %d steps) at %s", h.Wizard, h.Instance, h.Steps, h.URL())
}

// URL returns the address of the wizard's first location
func (h *Host) URL() string {
	return "http://" + net.JoinHostPort(h.IP, strconv.Itoa(h.Port)) + h.BasePath
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (h *Host) GetMetadata(key string) string {
	if h.Metadata == nil {
		return ""
	}
	return h.Metadata[key]
}
