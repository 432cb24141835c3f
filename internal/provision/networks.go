package provision

import (
	"context"

	"github.com/austinelec/pintura-link/pkg/pintura"
)

// RefreshNetworks re-scans and applies the selection rules:
//
//   - a failed scan keeps the previous list (empty on first load) and
//     returns the error;
//   - an empty scan is valid domain state ("no networks found"), never an
//     error, and never auto-selects;
//   - otherwise, the first listed SSID with a cached credential is selected
//     with its password prefilled (list order is authoritative, not signal
//     strength), falling back to the first entry with an empty password.
//
// With preserve set, the list is replaced but the current selection is kept
// untouched, even if its SSID is absent from the new list: a stale selection
// is valid while a dropdown re-scan is in flight.
func (s *Session) RefreshNetworks(ctx context.Context, preserve bool) ([]pintura.Network, error) {
	list, err := s.gw.FetchNetworks(ctx)
	if err != nil {
		s.log.Error(err, "Network scan failed")
		return s.Networks(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.networks = list
	s.noNetworks = len(list) == 0

	if s.noNetworks || preserve {
		return cloneNetworks(list), nil
	}

	for _, n := range list {
		password, ok, err := s.creds.Lookup(ctx, n.SSID)
		if err != nil {
			s.log.Error(err, "Credential lookup failed", "ssid", n.SSID)
			continue
		}
		if ok {
			s.log.Info("Reusing cached credentials", "ssid", n.SSID)
			s.ssid = n.SSID
			s.password = password
			return cloneNetworks(list), nil
		}
	}

	s.ssid = list[0].SSID
	s.password = ""
	return cloneNetworks(list), nil
}

// Networks returns the last scan result.
func (s *Session) Networks() []pintura.Network {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneNetworks(s.networks)
}

// NoNetworksFound reports whether the last successful scan came back empty.
func (s *Session) NoNetworksFound() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.noNetworks
}

func cloneNetworks(list []pintura.Network) []pintura.Network {
	out := make([]pintura.Network, len(list))
	copy(out, list)
	return out
}
