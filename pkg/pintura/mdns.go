package pintura

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/grandcat/zeroconf"
)

// MDNS_PINTURA is the DNS-SD service a display advertises while its setup
// access point is up.
const MDNS_PINTURA string = "_pintura._tcp"

// Discover browses the local network for a Pintura display and returns its
// host:port. The first instance found wins; provisioning targets a single
// device on its own setup network, so ambiguity is not a concern here.
func Discover(ctx context.Context, log logr.Logger, timeout time.Duration) (string, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	found := make(chan string, 1)

	go func() {
		for entry := range entries {
			if entry == nil {
				continue
			}
			log.Info("Found service", "instance", entry.Instance, "host", entry.HostName, "port", entry.Port)
			if len(entry.AddrIPv4) > 0 {
				found <- fmt.Sprintf("%v:%v", entry.AddrIPv4[0], entry.Port)
				cancel()
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, MDNS_PINTURA, "local.", entries); err != nil {
		return "", err
	}

	<-ctx.Done()

	select {
	case host := <-found:
		return host, nil
	default:
		return "", fmt.Errorf("no %s service found within %v", MDNS_PINTURA, timeout)
	}
}
