package discovery

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/stepwise/internal/logging"
)

const (
	// ServiceType is the mDNS service type stepwise hosts advertise as
	ServiceType = "_http._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for host discovery
	DefaultScanTimeout = 5 * time.Second

	// MarkerKey is the TXT key that identifies a stepwise host among other
	// _http._tcp services
	MarkerKey = "stepwise"
)

// TXT record keys
const (
	txtWizard   = "wizard"
	txtPath     = "path"
	txtSteps    = "steps"
	txtVersion  = "version"
	markerValue = "1"
)

// Info is what a host publishes about its wizard
type Info struct {
	Wizard   string
	BasePath string
	Steps    int
	Version  string
}

// TXTRecords encodes info as mDNS TXT records
func TXTRecords(info Info) []string {
	return []string{
		MarkerKey + "=" + markerValue,
		txtWizard + "=" + info.Wizard,
		txtPath + "=" + info.BasePath,
		txtSteps + "=" + strconv.Itoa(info.Steps),
		txtVersion + "=" + info.Version,
	}
}

// Advertisement is a registered mDNS service
type Advertisement struct {
	server *zeroconf.Server
	once   sync.Once
}

// Advertise registers instance on the local network until Shutdown
func Advertise(instance string, port int, info Info) (*Advertisement, error) {
	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, TXTRecords(info), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("Advertising wizard over mDNS",
		zap.String("instance", instance),
		zap.String("service", ServiceType),
		zap.Int("port", port),
	)
	return &Advertisement{server: server}, nil
}

// Shutdown withdraws the advertisement. Safe to call more than once.
func (a *Advertisement) Shutdown() {
	a.once.Do(func() {
		a.server.Shutdown()
		logging.Debug("mDNS advertisement withdrawn")
	})
}

// Scanner handles mDNS host discovery
type Scanner struct {
	// Timeout is the maximum time to wait for host discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Scan discovers stepwise hosts on the local network until the timeout
// or ctx ends
func (s *Scanner) Scan(ctx context.Context) ([]*Host, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	var mu sync.Mutex
	hosts := make([]*Host, 0)
	collected := make(chan struct{})

	go func() {
		defer close(collected)
		for entry := range entries {
			if host := s.parseServiceEntry(entry); host != nil {
				mu.Lock()
				hosts = append(hosts, host)
				mu.Unlock()
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	// The resolver closes entries once browsing stops
	select {
	case <-collected:
	case <-time.After(time.Second):
	}

	mu.Lock()
	defer mu.Unlock()
	out := make([]*Host, len(hosts))
	copy(out, hosts)
	return out, nil
}

// parseServiceEntry converts a zeroconf service entry to a Host.
// Returns nil if the entry is not a stepwise host
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Host {
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	if metadata[MarkerKey] != markerValue {
		return nil
	}

	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" || entry.Port == 0 {
		return nil
	}

	basePath := metadata[txtPath]
	if basePath == "" {
		basePath = "/"
	}
	steps, _ := strconv.Atoi(metadata[txtSteps])

	return &Host{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         entry.Port,
		Wizard:       metadata[txtWizard],
		BasePath:     basePath,
		Steps:        steps,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// Scan is a convenience function to scan for hosts with a custom timeout
func Scan(ctx context.Context, timeout time.Duration) ([]*Host, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.Scan(ctx)
}
