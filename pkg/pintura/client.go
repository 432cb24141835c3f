package pintura

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-logr/logr"
)

// DefaultTimeout bounds every call to the device. The setup gateway is a
// single slow embedded HTTP server, so one generous client-side timeout
// covers scan, config push and status probe alike.
const DefaultTimeout = 15 * time.Second

// Client talks to the local setup API of one Pintura display.
type Client struct {
	host string
	http *http.Client
	log  logr.Logger
}

func NewClient(log logr.Logger, host string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		host: host,
		http: &http.Client{Timeout: timeout},
		log:  log.WithName("pintura"),
	}
}

func (c *Client) Host() string {
	return c.host
}

// FetchNetworks asks the device for the WiFi networks it currently sees.
// An empty slice is a valid answer, not an error.
func (c *Client) FetchNetworks(ctx context.Context) ([]Network, error) {
	var list []Network
	if err := c.getE(ctx, "wifi-list", nil, &list); err != nil {
		return nil, err
	}
	for i := range list {
		list[i].SSID = DecodeSSID(list[i].SSID)
	}
	c.log.Info("Scanned networks", "count", len(list))
	return list, nil
}

// SubmitConfig pushes WiFi credentials to the device. The device firmware
// only accepts query parameters here, there is no POST body variant.
func (c *Client) SubmitConfig(ctx context.Context, ssid, password string) (SubmitResult, error) {
	var out SubmitResult
	params := url.Values{}
	params.Set("ssid", ssid)
	params.Set("password", password)
	if err := c.getE(ctx, "wifi-config", params, &out); err != nil {
		return SubmitResult{}, err
	}
	c.log.Info("Submitted WiFi config", "ssid", ssid, "accepted", out.Success)
	return out, nil
}

// CheckStatus probes the device's connection progress once.
func (c *Client) CheckStatus(ctx context.Context) (ConnStatus, error) {
	var out statusResponse
	if err := c.getE(ctx, "wifi-status", nil, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

// DeviceID returns the screen identifier printed on the device, fetched once
// at startup. Some firmware revisions answer with a bare string instead of a
// JSON-quoted one.
func (c *Client) DeviceID(ctx context.Context) (string, error) {
	body, err := c.getRaw(ctx, "getScreenId", nil)
	if err != nil {
		return "", err
	}
	var id string
	if err := json.Unmarshal(body, &id); err != nil {
		id = strings.TrimSpace(string(body))
	}
	if id == "" {
		return "", fmt.Errorf("device returned an empty screen id")
	}
	return id, nil
}

// ForceCloudSync asks the device to synchronize with the cloud immediately.
func (c *Client) ForceCloudSync(ctx context.Context) (SyncResult, error) {
	var out SyncResult
	if err := c.getE(ctx, "force-cloud-sync", nil, &out); err != nil {
		return SyncResult{}, err
	}
	return out, nil
}

// ResetMenu triggers the device's on-screen recovery menu.
func (c *Client) ResetMenu(ctx context.Context) (SyncResult, error) {
	var out SyncResult
	if err := c.getE(ctx, "reset-menu", nil, &out); err != nil {
		return SyncResult{}, err
	}
	return out, nil
}

func (c *Client) getE(ctx context.Context, cmd string, params url.Values, out any) error {
	body, err := c.getRaw(ctx, cmd, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.log.Error(err, "Failed to decode response", "cmd", cmd)
		return fmt.Errorf("decoding %s response: %w", cmd, err)
	}
	return nil
}

func (c *Client) getRaw(ctx context.Context, cmd string, params url.Values) ([]byte, error) {
	requestURL := fmt.Sprintf("http://%s/api/%s", c.host, cmd)
	if len(params) > 0 {
		requestURL = fmt.Sprintf("%s?%s", requestURL, params.Encode())
	}
	c.log.V(1).Info("Calling", "method", http.MethodGet, "url", requestURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.http.Do(req)
	if err != nil {
		c.log.Error(err, "HTTP GET error", "cmd", cmd)
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		err := fmt.Errorf("device answered %s to %s", res.Status, cmd)
		c.log.Error(err, "HTTP error")
		return nil, err
	}

	return io.ReadAll(res.Body)
}

// DecodeSSID undoes the \xNN hex escaping the firmware applies to non-ASCII
// SSID bytes, yielding the UTF-8 name as broadcast.
func DecodeSSID(s string) string {
	if !strings.Contains(s, `\x`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if i+3 < len(s) && s[i] == '\\' && s[i+1] == 'x' {
			hi, okHi := unhex(s[i+2])
			lo, okLo := unhex(s[i+3])
			if okHi && okLo {
				b.WriteByte(hi<<4 | lo)
				i += 4
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
