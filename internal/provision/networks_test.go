package provision

import (
	"context"
	"errors"
	"testing"

	"github.com/austinelec/pintura-link/pkg/pintura"
)

func TestRefreshEmptyScanIsNotAnError(t *testing.T) {
	gw := &fakeGateway{networks: []pintura.Network{}}
	s := newTestSession(t, gw, newFakeCreds())

	list, err := s.RefreshNetworks(context.Background(), false)
	if err != nil {
		t.Fatalf("RefreshNetworks: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d entries", len(list))
	}
	if !s.NoNetworksFound() {
		t.Error("NoNetworksFound should be set after an empty scan")
	}
	if ssid, _ := s.Selected(); ssid != "" {
		t.Errorf("empty scan must never auto-select, got %q", ssid)
	}
}

func TestRefreshSelectsFirstEntryWithoutCache(t *testing.T) {
	gw := &fakeGateway{networks: []pintura.Network{
		{SSID: "Net1", Signal: -40},
		{SSID: "Net2", Signal: -90},
	}}
	s := newTestSession(t, gw, newFakeCreds())

	if _, err := s.RefreshNetworks(context.Background(), false); err != nil {
		t.Fatalf("RefreshNetworks: %v", err)
	}
	ssid, password := s.Selected()
	if ssid != "Net1" {
		t.Errorf("selected = %q, want the first listed entry", ssid)
	}
	if password != "" {
		t.Errorf("password = %q, want empty without a cache hit", password)
	}
	if level := pintura.SignalLevel(-40); level != 5 {
		t.Errorf("SignalLevel(-40) = %d, want 5", level)
	}
	if level := pintura.SignalLevel(-90); level != 1 {
		t.Errorf("SignalLevel(-90) = %d, want 1", level)
	}
}

func TestRefreshPrefersCachedNetworkInListOrder(t *testing.T) {
	gw := &fakeGateway{networks: []pintura.Network{
		{SSID: "Guest", Signal: -40},
		{SSID: "Home", Signal: -80},
		{SSID: "Office", Signal: -50},
	}}
	creds := newFakeCreds()
	creds.cache["Office"] = "office-pw"
	creds.cache["Home"] = "home-pw"
	s := newTestSession(t, gw, creds)

	if _, err := s.RefreshNetworks(context.Background(), false); err != nil {
		t.Fatalf("RefreshNetworks: %v", err)
	}
	// List order decides between several cached matches, not signal
	// strength: Home precedes Office in the scan result.
	ssid, password := s.Selected()
	if ssid != "Home" || password != "home-pw" {
		t.Errorf("selected %q/%q, want Home with its cached password", ssid, password)
	}
}

func TestRefreshPreserveKeepsStaleSelection(t *testing.T) {
	gw := &fakeGateway{networks: []pintura.Network{{SSID: "Net1", Signal: -40}}}
	s := newTestSession(t, gw, newFakeCreds())
	s.Select("Vanished")
	s.SetPassword("secret")

	if _, err := s.RefreshNetworks(context.Background(), true); err != nil {
		t.Fatalf("RefreshNetworks: %v", err)
	}
	ssid, password := s.Selected()
	if ssid != "Vanished" || password != "secret" {
		t.Errorf("preserve mode changed the selection to %q/%q", ssid, password)
	}
	if len(s.Networks()) != 1 {
		t.Errorf("preserve mode should still replace the list, got %d entries", len(s.Networks()))
	}
}

func TestRefreshFailureKeepsPreviousList(t *testing.T) {
	gw := &fakeGateway{networks: []pintura.Network{{SSID: "Net1", Signal: -40}}}
	s := newTestSession(t, gw, newFakeCreds())
	if _, err := s.RefreshNetworks(context.Background(), false); err != nil {
		t.Fatalf("RefreshNetworks: %v", err)
	}

	gw.mu.Lock()
	gw.fetchErr = errors.New("scan failed")
	gw.mu.Unlock()

	list, err := s.RefreshNetworks(context.Background(), false)
	if err == nil {
		t.Fatal("expected the scan error to propagate")
	}
	if len(list) != 1 || list[0].SSID != "Net1" {
		t.Errorf("failed refresh should keep the previous list, got %v", list)
	}
	if ssid, _ := s.Selected(); ssid != "Net1" {
		t.Errorf("failed refresh changed the selection to %q", ssid)
	}
}
