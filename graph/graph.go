/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

// Package graph exposes configured Microsoft Graph endpoints as MCP tools.
//
// Each endpoint in the configuration becomes a tool named
// {serviceKey}_{endpointID}. A tool call validates its arguments, builds the
// request path (placeholder substitution followed by identifier rewriting in
// package pathrewrite), issues the request with the service's bearer token
// and formats the response.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/PivotLLM/MCPGraph/global"
	"github.com/PivotLLM/MCPGraph/pathrewrite"
)

var _ global.ToolProvider = (*Provider)(nil)

// TokenSourceFunc returns the TokenSource for a token store profile
type TokenSourceFunc func(profile string) TokenSource

// Provider turns a Config into tool definitions
type Provider struct {
	config     *Config
	logger     global.Logger
	httpClient *http.Client
	rewriter   *pathrewrite.Rewriter
	metrics    *Metrics
	tokens     TokenSourceFunc
	userAgent  string
}

// Option configures a Provider
type Option func(*Provider)

// WithConfig sets the endpoint configuration
func WithConfig(config *Config) Option {
	return func(p *Provider) {
		p.config = config
	}
}

// WithLogger sets the logger
func WithLogger(logger global.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// WithHTTPClient sets the HTTP client used for every service
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = client
	}
}

// WithTimeout sets the request timeout of the default HTTP client
func WithTimeout(timeout time.Duration) Option {
	return func(p *Provider) {
		p.httpClient = &http.Client{Timeout: timeout}
	}
}

// WithRewriter replaces the identifier rewriter. Without it the Provider
// uses the configuration's RewriteTable, or pathrewrite.Default().
func WithRewriter(rewriter *pathrewrite.Rewriter) Option {
	return func(p *Provider) {
		p.rewriter = rewriter
	}
}

// WithMetrics enables Prometheus metrics
func WithMetrics(metrics *Metrics) Option {
	return func(p *Provider) {
		p.metrics = metrics
	}
}

// WithTokenSources sets where bearer services get their tokens
func WithTokenSources(fn TokenSourceFunc) Option {
	return func(p *Provider) {
		p.tokens = fn
	}
}

// WithUserAgent sets the User-Agent header sent to Graph
func WithUserAgent(userAgent string) Option {
	return func(p *Provider) {
		p.userAgent = userAgent
	}
}

// New creates a Provider
func New(options ...Option) *Provider {
	p := &Provider{}
	for _, option := range options {
		option(p)
	}
	if p.rewriter == nil {
		if p.config != nil && p.config.RewriteTable != nil {
			p.rewriter = pathrewrite.New(p.config.RewriteTable)
		} else {
			p.rewriter = pathrewrite.Default()
		}
	}
	if p.httpClient == nil {
		p.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return p
}

// Config returns the loaded configuration
func (p *Provider) Config() *Config {
	return p.config
}

// RegisterTools returns one tool per configured endpoint, ordered by service key
func (p *Provider) RegisterTools() []global.ToolDefinition {
	if p.config == nil {
		if p.logger != nil {
			p.logger.Warning("No configuration loaded, cannot register tools")
		}
		return []global.ToolDefinition{}
	}

	keys := make([]string, 0, len(p.config.Services))
	for key := range p.config.Services {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var tools []global.ToolDefinition
	for _, key := range keys {
		service := p.config.Services[key]
		if service.ServiceKey == "" {
			service.ServiceKey = key
		}
		client := p.newClient(service)

		for i := range service.Endpoints {
			tool, err := p.createToolDefinition(service, &service.Endpoints[i], client)
			if err != nil {
				if p.logger != nil {
					p.logger.Errorf("Skipping tool %s_%s: %v", key, service.Endpoints[i].ID, err)
				}
				continue
			}
			tools = append(tools, tool)
		}
	}

	if p.logger != nil {
		p.logger.Infof("Registered %d tools from configuration", len(tools))
	}

	return tools
}

func (p *Provider) newClient(service *ServiceConfig) *Client {
	cfg := ClientConfig{
		Service:    service.ServiceKey,
		BaseURL:    service.BaseURL,
		HTTPClient: p.httpClient,
		Logger:     p.logger,
		UserAgent:  p.userAgent,
	}

	if service.Auth.Type == AuthTypeBearer {
		cfg.Profile = service.Auth.Profile()
		if p.tokens != nil {
			cfg.Tokens = p.tokens(cfg.Profile)
		} else {
			cfg.Tokens = StaticToken("")
		}
	}

	return NewClient(cfg)
}

// createToolDefinition creates a tool definition from an endpoint configuration
func (p *Provider) createToolDefinition(service *ServiceConfig, endpoint *EndpointConfig, client *Client) (global.ToolDefinition, error) {
	names, err := BuildParameterMappings(endpoint.Parameters, p.logger)
	if err != nil {
		return global.ToolDefinition{}, err
	}

	var parameters []global.Parameter
	for i := range endpoint.Parameters {
		param := &endpoint.Parameters[i]
		if param.Static {
			continue
		}

		globalParam := global.Parameter{
			Name:        MCPParameterName(param),
			Description: param.Description,
			Required:    param.Required,
			Type:        string(param.Type),
			Default:     param.Default,
		}
		if param.Type == ParameterTypeInteger {
			globalParam.Type = string(ParameterTypeNumber)
		}
		if param.Validation != nil {
			globalParam.Pattern = param.Validation.Pattern
			globalParam.Format = param.Validation.Format
			globalParam.Enum = param.Validation.Enum
		}
		globalParam.Description = globalParam.EnhancedDescription()

		parameters = append(parameters, globalParam)
	}

	toolName := global.BuildToolName(service.ServiceKey, endpoint.ID)
	hints := global.DefaultHints(endpoint.Method).Merge(endpoint.Hints.ToolHints())

	return global.ToolDefinition{
		Name:        toolName,
		Description: endpoint.Description,
		Parameters:  parameters,
		Hints:       hints,
		Handler: func(ctx context.Context, options map[string]any) (string, error) {
			result, err := p.handle(ctx, service, endpoint, client, names, options)
			p.metrics.ObserveToolCall(toolName, err)
			return result, err
		},
	}, nil
}

// handle executes one tool call
func (p *Provider) handle(ctx context.Context, service *ServiceConfig, endpoint *EndpointConfig, client *Client,
	names *ParameterNameMapper, options map[string]any) (string, error) {

	correlationID, _ := ctx.Value(global.CorrelationIDKey).(string)
	if correlationID == "" {
		correlationID = NewCorrelationID()
		ctx = context.WithValue(ctx, global.CorrelationIDKey, correlationID)
	}

	if p.logger != nil {
		p.logger.Infof("Handling %s_%s [%s]", service.ServiceKey, endpoint.ID, correlationID)
	}

	args := names.MapArgsToOriginal(options)

	if err := NewValidator(p.logger).ValidateParameters(endpoint.Parameters, args); err != nil {
		if p.logger != nil {
			p.logger.Warningf("Parameter validation failed [%s]: %v", correlationID, err)
		}
		return "", err
	}

	mapper := NewMapper(p.logger, p.rewriter)

	path, applied, err := mapper.BuildPath(endpoint.Path, endpoint.Parameters, args)
	if err != nil {
		return "", err
	}
	p.metrics.ObserveRewrites(applied)

	req := &Request{
		Method:   endpoint.Method,
		Path:     path,
		Query:    mapper.BuildQuery(endpoint.Parameters, args),
		Header:   http.Header{},
		Endpoint: endpoint.ID,
	}
	mapper.ApplyHeaders(req.Header, endpoint.Parameters, args)

	if body := mapper.BuildRequestBody(endpoint.Parameters, args); body != nil {
		switch endpoint.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			req.Body = body
		default:
			if p.logger != nil {
				p.logger.Warningf("Body parameters provided for %s request will be ignored [%s]", endpoint.Method, correlationID)
			}
		}
	}

	start := time.Now()
	resp, err := client.DoRequest(ctx, req)
	p.metrics.ObserveRequest(service.ServiceKey, endpoint.ID, statusOf(resp, err), time.Since(start))
	if err != nil {
		return "", err
	}

	return p.processResponse(resp, endpoint, mapper)
}

// processResponse formats a successful response according to the endpoint configuration
func (p *Provider) processResponse(resp *Response, endpoint *EndpointConfig, mapper *Mapper) (string, error) {
	if len(resp.Body) == 0 {
		return fmt.Sprintf("Success (HTTP %d)", resp.StatusCode), nil
	}

	if endpoint.Response.Type != ResponseTypeJSON {
		return string(resp.Body), nil
	}

	var data any
	if err := resp.DecodeJSON(&data); err != nil {
		if !strings.Contains(resp.Header.Get("Content-Type"), "json") {
			return string(resp.Body), nil
		}
		return "", fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if endpoint.Response.Transform != "" {
		transformed, err := mapper.TransformResponse(data, endpoint.Response.Transform)
		if err != nil {
			return "", err
		}
		data = transformed
	}

	result, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal response: %w", err)
	}
	return string(result), nil
}

func statusOf(resp *Response, err error) int {
	if resp != nil {
		return resp.StatusCode
	}
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.StatusCode
	}
	return 0
}
