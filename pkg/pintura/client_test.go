package pintura

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-logr/logr/testr"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(testr.New(t), strings.TrimPrefix(srv.URL, "http://"), 0)
}

func TestFetchNetworksDecodesEscapedSSIDs(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/wifi-list" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`[{"ssid":"MyHomeWiFi-5G","signal":-45},{"ssid":"caf\\xc3\\xa9","signal":-82}]`))
	}))

	list, err := c.FetchNetworks(context.Background())
	if err != nil {
		t.Fatalf("FetchNetworks: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d networks, want 2", len(list))
	}
	if list[0].SSID != "MyHomeWiFi-5G" || list[0].Signal != -45 {
		t.Errorf("unexpected first entry %+v", list[0])
	}
	if list[1].SSID != "café" {
		t.Errorf("escaped SSID not decoded, got %q", list[1].SSID)
	}
}

func TestSubmitConfigPassesQueryParams(t *testing.T) {
	var gotSSID, gotPassword string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/wifi-config" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotSSID = r.URL.Query().Get("ssid")
		gotPassword = r.URL.Query().Get("password")
		w.Write([]byte(`{"success":true}`))
	}))

	res, err := c.SubmitConfig(context.Background(), "Net 1", "p@ss word")
	if err != nil {
		t.Fatalf("SubmitConfig: %v", err)
	}
	if !res.Success {
		t.Error("expected the push to be accepted")
	}
	if gotSSID != "Net 1" || gotPassword != "p@ss word" {
		t.Errorf("device saw %q/%q", gotSSID, gotPassword)
	}
}

func TestCheckStatus(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"connecting"}`))
	}))

	status, err := c.CheckStatus(context.Background())
	if err != nil {
		t.Fatalf("CheckStatus: %v", err)
	}
	if status != StatusConnecting {
		t.Errorf("status = %q, want connecting", status)
	}
}

func TestDeviceIDAcceptsBareAndQuotedBodies(t *testing.T) {
	for name, body := range map[string]string{
		"quoted": `"PSb935e6L006761"`,
		"bare":   "PSb935e6L006761\n",
	} {
		t.Run(name, func(t *testing.T) {
			c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/getScreenId" {
					t.Errorf("unexpected path %q", r.URL.Path)
				}
				w.Write([]byte(body))
			}))
			id, err := c.DeviceID(context.Background())
			if err != nil {
				t.Fatalf("DeviceID: %v", err)
			}
			if id != "PSb935e6L006761" {
				t.Errorf("id = %q", id)
			}
		})
	}
}

func TestHTTPErrorSurfacesAsError(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	if _, err := c.FetchNetworks(context.Background()); err == nil {
		t.Error("FetchNetworks should fail on a 500")
	}
	if _, err := c.CheckStatus(context.Background()); err == nil {
		t.Error("CheckStatus should fail on a 500")
	}
}
