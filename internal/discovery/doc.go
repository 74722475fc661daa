// Package discovery advertises and finds stepwise HTTP hosts over mDNS.
//
// A host started with "serve --advertise" registers an "_http._tcp" service
// whose TXT records carry a stepwise=1 marker, the wizard name, its base path
// and its step count. Scanners browse the same service type and keep only
// entries that carry the marker.
//
// # Usage Example
//
//	hosts, err := discovery.Scan(ctx, 5*time.Second)
//	if err != nil {
//	    return err
//	}
//	for _, h := range hosts {
//	    fmt.Println(h.String())
//	}
package discovery
