package pintura

// Local HTTP API exposed by a Pintura display on its setup network.

// Network represents a scanned WiFi network.
type Network struct {
	SSID   string `json:"ssid"`   // SSID of the network, may repeat across entries
	Signal int    `json:"signal"` // Signal strength in dBm, typically -100..-10
}

// SignalLevel maps a dBm reading to an ordinal 1..5 bar count.
func SignalLevel(dbm int) int {
	switch {
	case dbm > -50:
		return 5 // excellent
	case dbm > -65:
		return 4
	case dbm > -75:
		return 3
	case dbm > -85:
		return 2
	default:
		return 1 // very weak
	}
}

// ConnStatus is the connection state reported by the device while it joins
// a network. Values other than the constants below may appear on the wire.
type ConnStatus string

const (
	StatusConnecting    ConnStatus = "connecting"
	StatusSuccess       ConnStatus = "success"
	StatusPasswordError ConnStatus = "password_error"
	StatusTimeout       ConnStatus = "timeout"
)

type statusResponse struct {
	Status ConnStatus `json:"status"`
}

// SubmitResult is the device's answer to a wifi-config push.
type SubmitResult struct {
	Success bool   `json:"success"`
	Detail  string `json:"detail,omitempty"`
}

// SyncResult is returned by force-cloud-sync and reset-menu.
type SyncResult struct {
	Status string `json:"status"` // "success" or "failed"
}
