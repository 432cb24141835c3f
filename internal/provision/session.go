// Package provision drives a Pintura display through the WiFi provisioning
// lifecycle: scan, select, submit, poll until a terminal state.
package provision

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/austinelec/pintura-link/pkg/pintura"
	"github.com/go-logr/logr"
)

// Status is the provisioning session state. Exactly one is active at a time.
type Status string

const (
	StatusIdle          Status = "idle"
	StatusConnecting    Status = "connecting"
	StatusSuccess       Status = "success"
	StatusPasswordError Status = "password_error"
	StatusTimeout       Status = "timeout"
	StatusError         Status = "error"
)

// Terminal reports whether no further automatic transition can occur.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusPasswordError || s == StatusTimeout || s == StatusError
}

var (
	// ErrPasswordRequired is returned by Submit before any network call when
	// the password field is empty.
	ErrPasswordRequired = errors.New("password required")

	// ErrBusy is returned by Submit when a submission is already in flight.
	ErrBusy = errors.New("session is not idle")
)

const msgGenericError = "connection failed"

const (
	// DefaultInterval is the delay between the completion of one status
	// probe and the start of the next.
	DefaultInterval = 1 * time.Second

	// DefaultBudget bounds the total time spent in StatusConnecting.
	DefaultBudget = 60 * time.Second
)

// Gateway is the slice of the device API the session needs.
type Gateway interface {
	FetchNetworks(ctx context.Context) ([]pintura.Network, error)
	SubmitConfig(ctx context.Context, ssid, password string) (pintura.SubmitResult, error)
	CheckStatus(ctx context.Context) (pintura.ConnStatus, error)
}

// Credentials persists last-known-good passwords keyed by SSID.
type Credentials interface {
	Lookup(ctx context.Context, ssid string) (password string, ok bool, err error)
	Save(ctx context.Context, ssid, password string) error
}

// Session owns one provisioning attempt's state, including its own poll
// timer and deadline. All mutation goes through the session; a cancelled
// poll run can never write to it again.
type Session struct {
	log      logr.Logger
	gw       Gateway
	creds    Credentials
	interval time.Duration
	budget   time.Duration

	mu           sync.Mutex
	networks     []pintura.Network
	noNetworks   bool
	ssid         string
	password     string
	status       Status
	errMsg       string
	submitting   bool // config push in flight, status not yet Connecting
	pollDeadline time.Time
	gen          uint64        // bumped whenever the active poll run changes
	stop         chan struct{} // closed to cancel the active poll run
	terminal     chan Status
}

func NewSession(log logr.Logger, gw Gateway, creds Credentials) *Session {
	return &Session{
		log:      log.WithName("provision"),
		gw:       gw,
		creds:    creds,
		interval: DefaultInterval,
		budget:   DefaultBudget,
		status:   StatusIdle,
		terminal: make(chan Status, 1),
	}
}

// SetPolling overrides the poll cadence and the total time budget. Only
// meaningful before Submit.
func (s *Session) SetPolling(interval, budget time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if interval > 0 {
		s.interval = interval
	}
	if budget > 0 {
		s.budget = budget
	}
}

// Status returns the current state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Err returns the user-facing error message. Non-empty only in StatusError.
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Selected returns the SSID and password the session would submit.
func (s *Session) Selected() (ssid, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ssid, s.password
}

// Select picks an SSID. The password is left alone so a previous entry (or a
// cache prefill) survives switching back and forth. Ignored unless idle.
func (s *Session) Select(ssid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusIdle {
		return
	}
	s.ssid = ssid
}

// SetPassword sets the password for the next submission. Ignored unless idle.
func (s *Session) SetPassword(password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusIdle {
		return
	}
	s.password = password
}

// Terminal yields the terminal status of the current submission. The channel
// is buffered; reading it is optional.
func (s *Session) Terminal() <-chan Status {
	return s.terminal
}

// Submit validates locally, pushes the configuration to the device and, if
// the device accepts it, enters StatusConnecting and starts polling. The
// caller is expected to have obtained explicit user confirmation first.
//
// Only local precondition failures are returned as errors; a rejected or
// failed push transitions the session to StatusError instead, since the
// session is the final handler for operational errors.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.status != StatusIdle || s.submitting {
		s.mu.Unlock()
		return ErrBusy
	}
	if s.password == "" {
		s.mu.Unlock()
		return ErrPasswordRequired
	}
	ssid, password := s.ssid, s.password
	// The status stays Idle while the push is in flight, so a second Submit
	// must be fenced off explicitly.
	s.submitting = true
	// Drain a leftover terminal notification from a previous run.
	select {
	case <-s.terminal:
	default:
	}
	s.mu.Unlock()

	res, err := s.gw.SubmitConfig(ctx, ssid, password)
	if err != nil {
		s.log.Error(err, "Config push failed", "ssid", ssid)
		s.transition(0, StatusError, msgGenericError)
		return nil
	}
	if !res.Success {
		s.log.Info("Config push rejected by device", "ssid", ssid, "detail", res.Detail)
		s.transition(0, StatusError, msgGenericError)
		return nil
	}

	s.mu.Lock()
	s.submitting = false
	s.status = StatusConnecting
	s.errMsg = ""
	s.pollDeadline = time.Now().Add(s.budget)
	s.gen++
	gen := s.gen
	stop := make(chan struct{})
	s.stop = stop
	deadline := s.pollDeadline
	interval := s.interval
	s.mu.Unlock()

	s.log.Info("Connecting", "ssid", ssid, "deadline", deadline)
	go s.poll(ctx, gen, stop, ssid, password, deadline, interval)
	return nil
}

// poll runs the status check chain for one submission: strictly sequential,
// re-armed only after the previous probe resolves, stopped by the first
// terminal answer, the deadline, or cancellation.
func (s *Session) poll(ctx context.Context, gen uint64, stop chan struct{}, ssid, password string, deadline time.Time, interval time.Duration) {
	for {
		// The deadline is checked before issuing each probe so a probe that
		// would start after the budget never fires.
		if !time.Now().Before(deadline) {
			s.transition(gen, StatusTimeout, "")
			return
		}

		status, err := s.gw.CheckStatus(ctx)
		if err != nil {
			s.log.Error(err, "Status probe failed", "ssid", ssid)
			s.transition(gen, StatusError, msgGenericError)
			return
		}

		switch status {
		case pintura.StatusConnecting:
			// Re-arm relative to completion of this probe, never at a fixed
			// rate: at most one probe is in flight at any time.
			timer := time.NewTimer(interval)
			select {
			case <-timer.C:
			case <-stop:
				timer.Stop()
				return
			case <-ctx.Done():
				timer.Stop()
				s.transition(gen, StatusError, msgGenericError)
				return
			}
		case pintura.StatusSuccess:
			// Written only now, so failed attempts never pollute the cache.
			if err := s.creds.Save(ctx, ssid, password); err != nil {
				s.log.Error(err, "Failed to persist credentials", "ssid", ssid)
			}
			s.transition(gen, StatusSuccess, "")
			return
		case pintura.StatusPasswordError:
			s.transition(gen, StatusPasswordError, "")
			return
		case pintura.StatusTimeout:
			s.transition(gen, StatusTimeout, "")
			return
		default:
			// Unrecognized answers terminate rather than hang silently.
			s.transition(gen, StatusError, fmt.Sprintf("device reported unexpected status %q", status))
			return
		}
	}
}

// transition applies a terminal state if the originating run is still
// current. gen 0 marks transitions from Submit itself, which always apply.
func (s *Session) transition(gen uint64, status Status, msg string) {
	s.mu.Lock()
	if gen != 0 && gen != s.gen {
		s.mu.Unlock()
		return
	}
	if gen == 0 {
		s.submitting = false
	}
	s.status = status
	if status == StatusError {
		s.errMsg = msg
	} else {
		s.errMsg = ""
	}
	if s.stop != nil && gen != 0 {
		s.stop = nil
	}
	s.mu.Unlock()

	s.log.Info("Session state", "status", status, "error", msg)
	if status.Terminal() {
		select {
		case s.terminal <- status:
		default:
		}
	}
}

// Stop cancels the active poll run, if any. Idempotent: a second call is a
// no-op, and an already-scheduled probe timer that has not fired yet is
// invalidated so it cannot resume a dead session.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

// Reset returns a terminal session to idle. The password (and SSID) are kept
// on purpose so the user can retry quickly; only the error message clears.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.status.Terminal() {
		return
	}
	s.status = StatusIdle
	s.errMsg = ""
}

// Close tears the session down. Any pending scheduled probe is cancelled so
// no late callback mutates state afterwards.
func (s *Session) Close() {
	s.Stop()
}
