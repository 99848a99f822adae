package soracom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/soracom/connectivity-benchmark/pkg/logger"
)

const DefaultAPIRoot = "https://g.api.soracom.io/v1/"

// Subscriber is the part of the subscriber record the benchmark reads.
type Subscriber struct {
	IMSI           string         `json:"imsi"`
	ICCID          string         `json:"iccid"`
	Status         string         `json:"status"`
	SessionStatus  *SessionStatus `json:"sessionStatus"`
	LastModifiedAt int64          `json:"lastModifiedAt"`
}

type SessionStatus struct {
	Online        bool  `json:"online"`
	LastUpdatedAt int64 `json:"lastUpdatedAt"`
}

const (
	StatusReady  = "ready"
	StatusActive = "active"
)

// Online reports the session state; a missing session counts as offline.
func (s *Subscriber) Online() bool {
	return s.SessionStatus != nil && s.SessionStatus.Online
}

func (s *Subscriber) LastModified() time.Time {
	return time.UnixMilli(s.LastModifiedAt)
}

type authResponse struct {
	APIKey     string `json:"apiKey"`
	OperatorID string `json:"operatorId"`
	Token      string `json:"token"`
}

// Client talks to the Soracom API. Authenticate must succeed before the
// subscriber calls; the token pair is not refreshed afterwards.
type Client struct {
	root       string
	httpClient *http.Client

	apiKey     string
	token      string
	operatorID string
}

func NewClient(apiRoot string, httpClient *http.Client) *Client {
	if apiRoot == "" {
		apiRoot = DefaultAPIRoot
	}
	if !strings.HasSuffix(apiRoot, "/") {
		apiRoot += "/"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{root: apiRoot, httpClient: httpClient}
}

func (c *Client) OperatorID() string {
	return c.operatorID
}

func (c *Client) Authenticate(ctx context.Context, creds Credentials) error {
	payload, err := json.Marshal(creds.authBody())
	if err != nil {
		return err
	}

	var out authResponse
	if err := c.do(ctx, "auth", http.MethodPost, "auth", payload, false, ErrAuth, &out); err != nil {
		return err
	}
	c.apiKey = out.APIKey
	c.token = out.Token
	c.operatorID = out.OperatorID
	logger.Log.Debugf("Authenticated as operator %s", out.OperatorID)
	return nil
}

func (c *Client) GetSubscriber(ctx context.Context, imsi string) (*Subscriber, error) {
	var sub Subscriber
	path := "subscribers/" + url.PathEscape(imsi)
	if err := c.do(ctx, "get subscriber", http.MethodGet, path, nil, true, ErrRequest, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (c *Client) ActivateSubscriber(ctx context.Context, imsi string) error {
	path := "subscribers/" + url.PathEscape(imsi) + "/activate"
	return c.do(ctx, "activate subscriber", http.MethodPost, path, nil, true, ErrActivation, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte, authed bool, kind error, out any) error {
	if authed && c.token == "" {
		return fmt.Errorf("%s: %w", op, ErrNotAuthorized)
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.root+path, rd)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("X-Soracom-API-Key", c.apiKey)
		req.Header.Set("X-Soracom-Token", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if resp.StatusCode == http.StatusNotFound && kind == ErrRequest {
			kind = ErrNotFound
		}
		return &APIError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg)), Kind: kind}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
