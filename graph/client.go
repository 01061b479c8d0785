/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PivotLLM/MCPGraph/global"
)

// DefaultTimeout applies when no *http.Client is supplied
const DefaultTimeout = 30 * time.Second

// maxResponseBytes bounds how much of a response body is read
const maxResponseBytes = 32 << 20

// TokenSource supplies bearer tokens for Graph requests
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token
type StaticToken string

// Token implements TokenSource
func (s StaticToken) Token(_ context.Context) (string, error) {
	if s == "" {
		return "", errors.New("no token configured")
	}
	return string(s), nil
}

// ClientConfig configures a Client
type ClientConfig struct {
	Service    string // used to attribute errors
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource // nil sends no Authorization header
	Profile    string      // reported in authentication errors
	Logger     global.Logger
	UserAgent  string
}

// Client issues HTTP requests against one Graph service
type Client struct {
	service    string
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	profile    string
	logger     global.Logger
	userAgent  string
}

// Request is a single Graph call. Path is appended to the base URL verbatim
// and must already be percent-encoded.
type Request struct {
	Method   string
	Path     string
	Query    url.Values
	Header   http.Header
	Body     any
	Endpoint string // used to attribute errors
}

// Response is a completed Graph call with a status below 400
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// DecodeJSON unmarshals the response body into v
func (r *Response) DecodeJSON(v any) error {
	if len(r.Body) == 0 {
		return errors.New("empty response body")
	}
	return json.Unmarshal(r.Body, v)
}

// NewClient creates a Client
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "MCPGraph"
	}

	return &Client{
		service:    cfg.Service,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		tokens:     cfg.Tokens,
		profile:    cfg.Profile,
		logger:     cfg.Logger,
		userAgent:  userAgent,
	}
}

// Do issues method against path with an optional JSON body
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	return c.DoRequest(ctx, &Request{Method: method, Path: path, Body: body})
}

// DoRequest issues req. Transport failures return *NetworkError and
// statuses of 400 and above return *APIError.
func (c *Client) DoRequest(ctx context.Context, req *Request) (*Response, error) {
	correlationID, _ := ctx.Value(global.CorrelationIDKey).(string)

	rawURL := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, NewConfigurationError("path", c.service, fmt.Sprintf("invalid URL: %s", rawURL), err)
	}
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), bodyReader)
	if err != nil {
		return nil, NewNetworkError(target.String(), req.Method, "failed to create HTTP request", err, false, correlationID)
	}

	for name, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(name, value)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if bodyReader != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if correlationID != "" {
		httpReq.Header.Set("client-request-id", correlationID)
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, &AuthenticationError{Service: c.service, Profile: c.profile, Message: "no usable access token", Cause: err}
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	if c.logger != nil {
		c.logger.Debugf("Executing HTTP request: %s %s [%s]", httpReq.Method, httpReq.URL.String(), correlationID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.wrapNetworkError(err, httpReq, correlationID)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, NewNetworkError(httpReq.URL.String(), httpReq.Method, "failed to read response body", err, false, correlationID)
	}

	if c.logger != nil {
		c.logger.Debugf("HTTP response received: status=%d, %d bytes [%s]", resp.StatusCode, len(data), correlationID)
	}

	if resp.StatusCode >= 400 {
		apiErr := NewAPIError(c.service, req.Endpoint, resp.StatusCode, data, correlationID)
		if c.logger != nil {
			c.logger.Errorf("API error [%s]: status=%d code=%s message=%s", correlationID, resp.StatusCode, apiErr.Code, apiErr.Message)
		}
		return nil, apiErr
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// wrapNetworkError wraps transport errors in NetworkError
func (c *Client) wrapNetworkError(err error, req *http.Request, correlationID string) error {
	timeout := errors.Is(err, context.DeadlineExceeded)
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		timeout = true
	}
	return NewNetworkError(req.URL.String(), req.Method, "request failed", err, timeout, correlationID)
}
