package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the Shopify Admin REST API of one or more shops.
type Client struct {
	HTTP       *http.Client
	APIVersion string
	// BaseURL maps a shop domain to its admin origin; tests point it at httptest.
	BaseURL func(shop string) string
}

func NewClient(apiVersion string) *Client {
	return &Client{
		HTTP:       &http.Client{Timeout: 15 * time.Second},
		APIVersion: apiVersion,
		BaseURL:    ShopOrigin,
	}
}

func ShopOrigin(shop string) string {
	return "https://" + shop
}

// StatusError is returned for any response outside the accepted statuses.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("shopify %s %s: unexpected status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

type RecurringCharge struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Price           string  `json:"price"`
	Status          string  `json:"status"`
	ReturnURL       string  `json:"return_url"`
	ConfirmationURL string  `json:"confirmation_url,omitempty"`
	TrialDays       int     `json:"trial_days"`
	TrialEndsOn     *string `json:"trial_ends_on"`
	BillingOn       *string `json:"billing_on"`
	ActivatedOn     *string `json:"activated_on"`
	CancelledOn     *string `json:"cancelled_on"`
	Test            *bool   `json:"test"`
}

type NewCharge struct {
	Name      string `json:"name"`
	Price     string `json:"price"`
	ReturnURL string `json:"return_url"`
	TrialDays int    `json:"trial_days,omitempty"`
	Test      *bool  `json:"test,omitempty"`
}

type chargeEnvelope struct {
	Charge RecurringCharge `json:"recurring_application_charge"`
}

func (c *Client) path(resource string) string {
	return fmt.Sprintf("/admin/api/%s/%s", c.APIVersion, resource)
}

func (c *Client) do(ctx context.Context, method, shop, token, path string, body any, out any, okStatuses ...int) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL(shop)+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("X-Shopify-Access-Token", token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("shopify %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))

	accepted := false
	for _, s := range okStatuses {
		if res.StatusCode == s {
			accepted = true
			break
		}
	}
	if !accepted {
		return &StatusError{Method: method, Path: path, StatusCode: res.StatusCode, Body: string(raw)}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("shopify %s %s: decode: %w", method, path, err)
		}
	}
	return nil
}

func (c *Client) CreateRecurringCharge(ctx context.Context, shop, token string, charge NewCharge) (*RecurringCharge, error) {
	var env chargeEnvelope
	body := map[string]NewCharge{"recurring_application_charge": charge}
	if err := c.do(ctx, http.MethodPost, shop, token, c.path("recurring_application_charges.json"), body, &env, http.StatusCreated, http.StatusOK); err != nil {
		return nil, err
	}
	return &env.Charge, nil
}

func (c *Client) GetRecurringCharge(ctx context.Context, shop, token string, id int64) (*RecurringCharge, error) {
	var env chargeEnvelope
	path := c.path(fmt.Sprintf("recurring_application_charges/%d.json", id))
	if err := c.do(ctx, http.MethodGet, shop, token, path, nil, &env, http.StatusOK); err != nil {
		return nil, err
	}
	return &env.Charge, nil
}

// ActivateRecurringCharge is only needed for charges left in "accepted" by
// older API versions; newer versions activate on approval.
func (c *Client) ActivateRecurringCharge(ctx context.Context, shop, token string, id int64) (*RecurringCharge, error) {
	var env chargeEnvelope
	path := c.path(fmt.Sprintf("recurring_application_charges/%d/activate.json", id))
	if err := c.do(ctx, http.MethodPost, shop, token, path, map[string]any{}, &env, http.StatusOK); err != nil {
		return nil, err
	}
	return &env.Charge, nil
}

// CancelRecurringCharge deletes the charge. 200 and 204 are success.
func (c *Client) CancelRecurringCharge(ctx context.Context, shop, token string, id int64) error {
	path := c.path(fmt.Sprintf("recurring_application_charges/%d.json", id))
	return c.do(ctx, http.MethodDelete, shop, token, path, nil, nil, http.StatusOK, http.StatusNoContent)
}

// ParseDate accepts the date-only and RFC 3339 forms Shopify returns.
func ParseDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, *s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
