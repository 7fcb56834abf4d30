// Package lemonsqueezy talks to the license-key provider. Only the fields the
// entitlement logic consumes are decoded.
package lemonsqueezy

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/communityhq/membergate/internal/config"
	"github.com/hashicorp/go-retryablehttp"
)

const defaultBaseURL = "https://api.lemonsqueezy.com/v1"

// Reasons a key check can fail with. These are surfaced verbatim to clients.
const (
	ReasonInvalidKey      = "invalid_key"
	ReasonInactiveKey     = "inactive_key"
	ReasonProductMismatch = "product_mismatch"
	ReasonNoAPIKey        = "no_api_key"
	ReasonFetchError      = "fetch_error"
)

// Result is the outcome of a validate or activate call.
type Result struct {
	OK         bool
	Reason     string
	InstanceID string
}

// Client calls the license provider's validate/activate endpoints.
type Client struct {
	// BaseURL may be overridden in tests.
	BaseURL string

	apiKey string
	http   *retryablehttp.Client
	log    *slog.Logger
}

// New creates a license provider client.
func New(cfg config.LemonSqueezyConfig, log *slog.Logger) *Client {
	cl := retryablehttp.NewClient()
	cl.RetryMax = 2
	cl.HTTPClient.Timeout = 8 * time.Second
	cl.Logger = nil
	return &Client{BaseURL: defaultBaseURL, apiKey: cfg.APIKey, http: cl, log: log}
}

type licenseResponse struct {
	Valid      bool    `json:"valid"`
	Activated  bool    `json:"activated"`
	Error      *string `json:"error"`
	LicenseKey struct {
		Status string `json:"status"`
	} `json:"license_key"`
	Meta struct {
		ProductID int64 `json:"product_id"`
	} `json:"meta"`
	Instance *struct {
		ID string `json:"id"`
	} `json:"instance"`
}

// Validate checks that a key is active and, when the product carries an
// expected provider product id, that the key belongs to that product.
func (c *Client) Validate(ctx context.Context, key, expectedProductID string) Result {
	if c.apiKey == "" {
		return Result{Reason: ReasonNoAPIKey}
	}

	resp, ok := c.post(ctx, "/licenses/validate", url.Values{"license_key": {key}})
	if !ok {
		return Result{Reason: ReasonFetchError}
	}
	if !resp.Valid {
		return Result{Reason: statusReason(resp.LicenseKey.Status)}
	}
	if !productMatches(resp, expectedProductID) {
		return Result{Reason: ReasonProductMismatch}
	}
	return Result{OK: true}
}

// Activate registers a new device instance for the key. When the provider
// reports the activation limit is already reached, the key may still
// legitimately belong to the caller (activated on another device), so the
// check falls back to a plain validation instead of failing outright.
func (c *Client) Activate(ctx context.Context, key, instanceName, expectedProductID string) Result {
	if c.apiKey == "" {
		return Result{Reason: ReasonNoAPIKey}
	}

	resp, ok := c.post(ctx, "/licenses/activate", url.Values{
		"license_key":   {key},
		"instance_name": {instanceName},
	})
	if !ok {
		return Result{Reason: ReasonFetchError}
	}
	if !resp.Activated {
		if isActivationLimit(resp.Error) {
			return c.Validate(ctx, key, expectedProductID)
		}
		return Result{Reason: statusReason(resp.LicenseKey.Status)}
	}
	if !productMatches(resp, expectedProductID) {
		return Result{Reason: ReasonProductMismatch}
	}

	res := Result{OK: true}
	if resp.Instance != nil {
		res.InstanceID = resp.Instance.ID
	}
	return res
}

func (c *Client) post(ctx context.Context, path string, form url.Values) (*licenseResponse, bool) {
	req, err := retryablehttp.NewRequestWithContext(ctx, "POST", c.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, false
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("license provider call failed", "path", path, "error", err)
		return nil, false
	}
	defer resp.Body.Close()

	// The provider returns 400 with a JSON body for invalid keys, so any
	// parseable body is a usable answer regardless of status code.
	var out licenseResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, false
	}
	return &out, true
}

func statusReason(status string) string {
	if status == "inactive" || status == "expired" || status == "disabled" {
		return ReasonInactiveKey
	}
	return ReasonInvalidKey
}

func productMatches(resp *licenseResponse, expected string) bool {
	if expected == "" {
		return true
	}
	return strconv.FormatInt(resp.Meta.ProductID, 10) == expected
}

func isActivationLimit(apiErr *string) bool {
	return apiErr != nil && strings.Contains(strings.ToLower(*apiErr), "activation limit")
}
