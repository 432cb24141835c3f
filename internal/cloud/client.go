// Package cloud implements the Pintura cloud account API: login, token
// keeping and screen-group membership.
package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-logr/logr"
)

// Regional endpoints. Accounts registered in China live on the CN cluster,
// everything else on the US one.
const (
	BaseURLCN = "http://cloud-service.austinelec.com:8080"
	BaseURLUS = "http://cloud-service-us.austinelec.com:8080"
)

var (
	// ErrUnauthorized means the stored token was rejected (HTTP 401). The
	// token has already been purged; the user must log in again.
	ErrUnauthorized = errors.New("cloud session expired")

	ErrUserNotFound      = errors.New("account does not exist")
	ErrPasswordIncorrect = errors.New("password incorrect")
)

// Sessions is the slice of the settings store the client needs: the opaque
// bearer token, the account label and an optional endpoint override.
type Sessions interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
	SetAccount(ctx context.Context, account string) error
	BaseURL(ctx context.Context) (string, error)
	SetBaseURL(ctx context.Context, u string) error
}

type Client struct {
	http     *http.Client
	sessions Sessions
	log      logr.Logger
}

func NewClient(log logr.Logger, sessions Sessions) *Client {
	return &Client{
		http:     &http.Client{Timeout: 30 * time.Second},
		sessions: sessions,
		log:      log.WithName("cloud"),
	}
}

// Login authenticates and stores the returned bearer token. Email accounts
// (containing '@') use loginType 3, phone accounts loginType 2 with the
// dialing code. The regional endpoint is chosen from region and persisted,
// unless a dev override is already in place.
func (c *Client) Login(ctx context.Context, account, password, region, areaCode string) error {
	override, err := c.sessions.BaseURL(ctx)
	if err != nil {
		return err
	}
	if override == "" {
		base := BaseURLUS
		if region == "CN" {
			base = BaseURLCN
		}
		if err := c.sessions.SetBaseURL(ctx, base); err != nil {
			return err
		}
	}

	req := loginRequest{
		Account:   account,
		Password:  password,
		LoginType: 2,
	}
	if strings.Contains(account, "@") {
		req.LoginType = 3
	} else if areaCode != "" {
		req.AreaCode = "+" + strings.TrimPrefix(areaCode, "+")
	}

	env, err := c.do(ctx, http.MethodPost, "/api/v1/account/login", req)
	if err != nil {
		return err
	}
	switch env.Code {
	case codeUserNotFound:
		return ErrUserNotFound
	case codePasswordIncorrect:
		return ErrPasswordIncorrect
	}

	var token string
	if err := json.Unmarshal(env.Data, &token); err != nil || token == "" {
		c.log.Info("Login response did not contain a token", "code", env.Code, "msg", env.Msg)
		return fmt.Errorf("login failed: %s", env.Msg)
	}

	if err := c.sessions.SetToken(ctx, token); err != nil {
		return err
	}
	if err := c.sessions.SetAccount(ctx, account); err != nil {
		return err
	}
	c.log.Info("Logged in", "account", account)
	return nil
}

// Logout drops the stored token.
func (c *Client) Logout(ctx context.Context) error {
	return c.sessions.ClearToken(ctx)
}

// GroupList fetches the screen groups of the logged-in account.
func (c *Client) GroupList(ctx context.Context) ([]Group, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/v1/host/screen/group/list", nil)
	if err != nil {
		return nil, err
	}
	var groups []Group
	if len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		if err := json.Unmarshal(env.Data, &groups); err != nil {
			return nil, fmt.Errorf("decoding group list: %w", err)
		}
	}
	return groups, nil
}

// GroupCreate creates a screen group containing the given screen.
func (c *Client) GroupCreate(ctx context.Context, name, screenID string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/v1/host/screen/group/add", createGroupRequest{
		ScreenGroupName: name,
		ScreenIDList:    []string{screenID},
		Type:            1,
	})
	return err
}

// GroupJoin adds the given screen to an existing group.
func (c *Client) GroupJoin(ctx context.Context, groupID int64, screenID string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/v1/host/screen/group/join", joinGroupRequest{
		ScreenGroupID: groupID,
		ScreenIDList:  []string{screenID},
	})
	return err
}

// UseDevEndpoint points the client at a development cluster (empty url
// reverts to the regional default). Either way the token is purged, since
// sessions do not carry across clusters.
func (c *Client) UseDevEndpoint(ctx context.Context, u string) error {
	if err := c.sessions.SetBaseURL(ctx, u); err != nil {
		return err
	}
	return c.sessions.ClearToken(ctx)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	base, err := c.sessions.BaseURL(ctx)
	if err != nil {
		return nil, err
	}
	if base == "" {
		base = BaseURLCN
	}

	var payload *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		payload = bytes.NewReader(data)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, payload)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.sessions.Token(ctx)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("X-TOKEN", token)
	}

	c.log.V(1).Info("Calling", "method", method, "url", base+path)
	res, err := c.http.Do(req)
	if err != nil {
		c.log.Error(err, "HTTP error", "method", method, "path", path)
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized {
		// Fatal to the current session: purge the token, force a new login.
		if err := c.sessions.ClearToken(ctx); err != nil {
			c.log.Error(err, "Failed to purge token after 401")
		}
		return nil, ErrUnauthorized
	}
	if res.StatusCode != http.StatusOK {
		err := fmt.Errorf("cloud answered %s to %s", res.Status, path)
		c.log.Error(err, "HTTP error")
		return nil, err
	}

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		c.log.Error(err, "Failed to decode response", "path", path)
		return nil, err
	}
	return &env, nil
}
