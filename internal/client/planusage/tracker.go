// Package planusage keeps a client-side view of a shop's plan and usage and
// turns plan-gating denials (HTTP 403) into an upgrade prompt.
package planusage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	UsagePath      = "/api/plan-usage"
	DefaultMessage = "You've reached the limit of your current plan. Upgrade to PRO to keep going."
	GenericError   = "Failed to load plan usage"
)

type Counter struct {
	Used  int64 `json:"used"`
	Limit int64 `json:"limit"`
}

type UpgradePrompt struct {
	Open    bool   `json:"open"`
	Message string `json:"message"`
	Plan    string `json:"plan"`
}

type State struct {
	Plan    string             `json:"plan"`
	Usage   map[string]Counter `json:"usage"`
	Loading bool               `json:"loading"`
	Error   string             `json:"error,omitempty"`
	Prompt  UpgradePrompt      `json:"upgradePrompt"`
}

type Config struct {
	BaseURL string
	// Token is sent as the session bearer token when set.
	Token       string
	HTTP        *http.Client
	AutoRefresh bool
}

type Tracker struct {
	cfg Config

	mu    sync.Mutex
	state State
}

// New builds a tracker. With AutoRefresh it loads usage before returning; a
// failed load is recorded in the state rather than returned.
func New(ctx context.Context, cfg Config) *Tracker {
	if cfg.HTTP == nil {
		cfg.HTTP = &http.Client{Timeout: 15 * time.Second}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	t := &Tracker{cfg: cfg}
	if cfg.AutoRefresh {
		_ = t.Refresh(ctx)
	}
	return t
}

// State returns a snapshot safe to read while the tracker keeps updating.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.state
	if t.state.Usage != nil {
		s.Usage = make(map[string]Counter, len(t.state.Usage))
		for k, v := range t.state.Usage {
			s.Usage[k] = v
		}
	}
	return s
}

type payload struct {
	Success bool               `json:"success"`
	Plan    planName           `json:"plan"`
	Usage   map[string]Counter `json:"usage"`
	Code    string             `json:"code"`
	Message string             `json:"message"`
}

// planName accepts either "PRO" or an object such as {"name":"PRO"}. Any
// other shape decodes to "" so the rest of the payload is still read.
type planName string

func (p *planName) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*p = planName(s)
		return nil
	}
	var obj struct {
		Name string `json:"name"`
		Plan string `json:"plan"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		*p = ""
		return nil
	}
	if obj.Name != "" {
		*p = planName(obj.Name)
	} else {
		*p = planName(obj.Plan)
	}
	return nil
}

// Refresh fetches the usage endpoint and updates the state.
func (t *Tracker) Refresh(ctx context.Context) error {
	t.mu.Lock()
	t.state.Loading = true
	t.state.Error = ""
	t.mu.Unlock()

	err := t.refresh(ctx)

	t.mu.Lock()
	t.state.Loading = false
	if err != nil {
		t.state.Error = GenericError
	}
	t.mu.Unlock()
	return err
}

func (t *Tracker) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.cfg.BaseURL+UsagePath, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if t.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+t.cfg.Token)
	}

	resp, err := t.cfg.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("fetch plan usage: %w", err)
	}
	defer resp.Body.Close()

	denied, err := t.HandlePlanResponse(resp)
	if err != nil || denied {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch plan usage: status %d", resp.StatusCode)
	}

	var p payload
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&p); err != nil {
		return fmt.Errorf("decode plan usage: %w", err)
	}

	t.mu.Lock()
	t.state.Plan = string(p.Plan)
	t.state.Usage = p.Usage
	t.mu.Unlock()
	return nil
}

// HandlePlanResponse applies the plan-gating contract to any API response.
// A 403 is consumed: plan and usage from its body are stored and the upgrade
// prompt opens. Other responses are left unread and reported as not denied.
func (t *Tracker) HandlePlanResponse(resp *http.Response) (bool, error) {
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		return false, nil
	}

	var p payload
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil && len(body) > 0 {
		// a malformed body still counts as a denial
		_ = json.Unmarshal(body, &p)
	}

	msg := strings.TrimSpace(p.Message)
	if msg == "" {
		msg = DefaultMessage
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if p.Plan != "" {
		t.state.Plan = string(p.Plan)
	}
	if p.Usage != nil {
		t.state.Usage = p.Usage
	}
	t.state.Prompt = UpgradePrompt{Open: true, Message: msg, Plan: t.state.Plan}
	return true, nil
}

func (t *Tracker) CloseUpgradePrompt() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Prompt = UpgradePrompt{}
}
