/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/itchyny/gojq"

	"github.com/PivotLLM/MCPGraph/db"
	"github.com/PivotLLM/MCPGraph/global"
	"github.com/PivotLLM/MCPGraph/pathrewrite"
)

// AuthType represents the type of authentication to use
type AuthType string

const (
	AuthTypeBearer AuthType = "bearer"
	AuthTypeNone   AuthType = "none"
)

// ParameterType represents the type of a parameter
type ParameterType string

const (
	ParameterTypeString  ParameterType = "string"
	ParameterTypeNumber  ParameterType = "number"
	ParameterTypeInteger ParameterType = "integer"
	ParameterTypeBoolean ParameterType = "boolean"
	ParameterTypeArray   ParameterType = "array"
	ParameterTypeObject  ParameterType = "object"
)

// ParameterLocation represents where a parameter is placed in the request
type ParameterLocation string

const (
	ParameterLocationPath   ParameterLocation = "path"
	ParameterLocationQuery  ParameterLocation = "query"
	ParameterLocationBody   ParameterLocation = "body"
	ParameterLocationHeader ParameterLocation = "header"

	// ParameterLocationIdentifier marks a container identifier that only
	// selects the qualified form of the endpoint path.
	ParameterLocationIdentifier ParameterLocation = "identifier"
)

// ResponseType represents the type of response expected
type ResponseType string

const (
	ResponseTypeJSON ResponseType = "json"
	ResponseTypeText ResponseType = "text"
)

// Config holds a set of Graph services loaded from one or more files
type Config struct {
	Services   map[string]*ServiceConfig `json:"services"`
	ConfigPath string                    `json:"-"`

	// RewriteTable is checked against identifier parameters. Nil means
	// pathrewrite.DefaultTable.
	RewriteTable *pathrewrite.Table `json:"-"`
}

// ServiceConfig represents the configuration for a single service
type ServiceConfig struct {
	ServiceKey string           `json:"-"`
	Name       string           `json:"name"`
	BaseURL    string           `json:"baseURL"`
	Auth       AuthConfig       `json:"auth"`
	Endpoints  []EndpointConfig `json:"endpoints"`
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Type   AuthType       `json:"type"`
	Config map[string]any `json:"config,omitempty"`
}

// Profile returns the token store profile used by bearer auth
func (a *AuthConfig) Profile() string {
	if a.Config != nil {
		if p, ok := a.Config["profile"].(string); ok && p != "" {
			return p
		}
	}
	return db.DefaultProfile
}

// EndpointConfig represents configuration for a single API endpoint
type EndpointConfig struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Parameters  []ParameterConfig `json:"parameters"`
	Response    ResponseConfig    `json:"response"`
	Hints       *HintsConfig      `json:"hints,omitempty"`
}

// HintsConfig overrides the tool hints computed from the HTTP method.
// A nil field keeps the computed default.
type HintsConfig struct {
	ReadOnly    *bool `json:"readOnly,omitempty"`
	Destructive *bool `json:"destructive,omitempty"`
	Idempotent  *bool `json:"idempotent,omitempty"`
	OpenWorld   *bool `json:"openWorld,omitempty"`
}

// ToolHints converts the override to global.ToolHints
func (h *HintsConfig) ToolHints() global.ToolHints {
	if h == nil {
		return global.ToolHints{}
	}
	return global.ToolHints{
		ReadOnly:    h.ReadOnly,
		Destructive: h.Destructive,
		Idempotent:  h.Idempotent,
		OpenWorld:   h.OpenWorld,
	}
}

// ParameterConfig represents configuration for a parameter
type ParameterConfig struct {
	Name        string            `json:"name"`
	Alias       string            `json:"alias,omitempty"`
	Description string            `json:"description"`
	Type        ParameterType     `json:"type"`
	Required    bool              `json:"required"`
	Location    ParameterLocation `json:"location"`
	Default     any               `json:"default,omitempty"`
	Validation  *ValidationConfig `json:"validation,omitempty"`
	Static      bool              `json:"static,omitempty"` // not exposed to MCP, always uses Default
}

// ValidationConfig represents validation rules for a parameter
type ValidationConfig struct {
	Pattern   string   `json:"pattern,omitempty"`
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Minimum   *float64 `json:"minimum,omitempty"`
	Maximum   *float64 `json:"maximum,omitempty"`
	Enum      []any    `json:"enum,omitempty"`
	Format    string   `json:"format,omitempty"`
}

// ResponseConfig represents configuration for response handling
type ResponseConfig struct {
	Type      ResponseType `json:"type"`
	Transform string       `json:"transform,omitempty"`
}

// LoadConfigFromFile loads configuration from a JSON file
func LoadConfigFromFile(filePath string, logger global.Logger) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, NewConfigurationError("file", "",
			fmt.Sprintf("failed to read config file %s", filePath), err)
	}

	return LoadConfigFromJSONWithLogger(data, filePath, logger)
}

// LoadConfigFromJSON loads configuration from JSON data
func LoadConfigFromJSON(data []byte, configPath string) (*Config, error) {
	return LoadConfigFromJSONWithLogger(data, configPath, nil)
}

// LoadConfigFromJSONWithLogger loads configuration from JSON data with logging support
func LoadConfigFromJSONWithLogger(data []byte, configPath string, logger global.Logger) (*Config, error) {
	if logger != nil {
		logger.Infof("Loading configuration from %s", configPath)
		logger.Debugf("Configuration data size: %d bytes", len(data))
	}

	expanded := expandEnvironmentVariables(data)

	var config Config
	if err := json.Unmarshal(expanded, &config); err != nil {
		if logger != nil {
			logger.Errorf("Failed to parse JSON configuration: %v", err)
		}
		return nil, NewConfigurationError("json", "", "failed to parse JSON configuration", err)
	}

	if err := validateSchema(expanded); err != nil {
		if logger != nil {
			logger.Errorf("Configuration does not match schema: %v", err)
		}
		return nil, NewConfigurationError("schema", "", "configuration does not match schema", err)
	}

	config.ConfigPath = configPath

	if err := config.ValidateWithLogger(logger); err != nil {
		if logger != nil {
			logger.Errorf("Configuration validation failed: %v", err)
		}
		return nil, NewConfigurationError("validation", "", "configuration validation failed", err)
	}

	for key, service := range config.Services {
		service.ServiceKey = key
	}

	if logger != nil {
		logger.Infof("Successfully loaded configuration with %d services", len(config.Services))
		for key, service := range config.Services {
			logger.Debugf("Service '%s': %d endpoints, auth type: %s", key, len(service.Endpoints), service.Auth.Type)
		}
	}

	return &config, nil
}

// serviceKeyPattern keeps the first underscore of a tool name as the separator
var serviceKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

func (c *Config) rewriteTable() *pathrewrite.Table {
	if c.RewriteTable != nil {
		return c.RewriteTable
	}
	return pathrewrite.DefaultTable
}

// ValidateWithLogger validates the configuration with logging support
func (c *Config) ValidateWithLogger(logger global.Logger) error {
	if len(c.Services) == 0 {
		return fmt.Errorf("no services configured")
	}

	table := c.rewriteTable()
	for key, service := range c.Services {
		if logger != nil {
			logger.Debugf("Validating service: %s", key)
		}
		if !serviceKeyPattern.MatchString(key) {
			return fmt.Errorf("service key %q must contain only letters, digits and hyphens", key)
		}
		if service == nil {
			return fmt.Errorf("service %s: empty definition", key)
		}
		if err := service.validate(table); err != nil {
			return fmt.Errorf("service %s: %w", key, err)
		}
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	return c.ValidateWithLogger(nil)
}

func (s *ServiceConfig) validate(table *pathrewrite.Table) error {
	if s.Name == "" {
		return fmt.Errorf("service name is required")
	}
	if s.BaseURL == "" {
		return fmt.Errorf("service baseURL is required")
	}
	if !strings.HasPrefix(s.BaseURL, "http://") && !strings.HasPrefix(s.BaseURL, "https://") {
		return fmt.Errorf("service baseURL must be an http or https URL: %s", s.BaseURL)
	}

	switch s.Auth.Type {
	case AuthTypeBearer:
		if err := db.ValidateProfile(s.Auth.Profile()); err != nil {
			return fmt.Errorf("auth configuration: %w", err)
		}
	case AuthTypeNone:
	default:
		return fmt.Errorf("auth configuration: unsupported auth type: %s", s.Auth.Type)
	}

	if len(s.Endpoints) == 0 {
		return fmt.Errorf("at least one endpoint is required")
	}

	seen := make(map[string]bool, len(s.Endpoints))
	for i := range s.Endpoints {
		endpoint := &s.Endpoints[i]
		if err := endpoint.validate(table); err != nil {
			return fmt.Errorf("endpoint %d (%s): %w", i, endpoint.ID, err)
		}
		if seen[endpoint.ID] {
			return fmt.Errorf("duplicate endpoint ID: %s", endpoint.ID)
		}
		seen[endpoint.ID] = true
	}

	return nil
}

var validMethods = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PUT":    true,
	"DELETE": true,
	"PATCH":  true,
}

func (e *EndpointConfig) validate(table *pathrewrite.Table) error {
	if e.ID == "" {
		return fmt.Errorf("endpoint ID is required")
	}
	if e.Name == "" {
		return fmt.Errorf("endpoint name is required")
	}
	if !validMethods[e.Method] {
		return fmt.Errorf("invalid HTTP method: %q", e.Method)
	}
	if !strings.HasPrefix(e.Path, "/") {
		return fmt.Errorf("endpoint path must start with '/': %q", e.Path)
	}

	for i := range e.Parameters {
		param := &e.Parameters[i]
		if err := param.validate(); err != nil {
			return fmt.Errorf("parameter %d (%s): %w", i, param.Name, err)
		}

		switch param.Location {
		case ParameterLocationPath:
			if !strings.Contains(e.Path, "{"+param.Name+"}") {
				return fmt.Errorf("path parameter %s has no {%s} placeholder in %s", param.Name, param.Name, e.Path)
			}
		case ParameterLocationIdentifier:
			rule, ok := table.Lookup(param.Name)
			if !ok {
				return fmt.Errorf("identifier parameter %s has no rewrite rule", param.Name)
			}
			if !rule.Matches(e.Path) {
				return fmt.Errorf("identifier parameter %s can never apply to %s (rule %s)", param.Name, e.Path, rule)
			}
		}
	}

	if err := ValidateParameterNames(e.Parameters); err != nil {
		return err
	}

	switch e.Response.Type {
	case ResponseTypeJSON, ResponseTypeText:
	default:
		return fmt.Errorf("invalid response type: %q", e.Response.Type)
	}
	if e.Response.Transform != "" {
		if e.Response.Type != ResponseTypeJSON {
			return fmt.Errorf("response transform requires a json response")
		}
		if _, err := gojq.Parse(e.Response.Transform); err != nil {
			return fmt.Errorf("invalid response transform: %w", err)
		}
	}

	return nil
}

var validTypes = map[ParameterType]bool{
	ParameterTypeString:  true,
	ParameterTypeNumber:  true,
	ParameterTypeInteger: true,
	ParameterTypeBoolean: true,
	ParameterTypeArray:   true,
	ParameterTypeObject:  true,
}

var validLocations = map[ParameterLocation]bool{
	ParameterLocationPath:       true,
	ParameterLocationQuery:      true,
	ParameterLocationBody:       true,
	ParameterLocationHeader:     true,
	ParameterLocationIdentifier: true,
}

func (p *ParameterConfig) validate() error {
	if p.Name == "" {
		return fmt.Errorf("parameter name is required")
	}
	if !validTypes[p.Type] {
		return fmt.Errorf("invalid parameter type: %q", p.Type)
	}
	if !validLocations[p.Location] {
		return fmt.Errorf("invalid parameter location: %q", p.Location)
	}
	if p.Location == ParameterLocationIdentifier && p.Type != ParameterTypeString {
		return fmt.Errorf("identifier parameters must be strings")
	}
	if p.Static && p.Default == nil {
		return fmt.Errorf("static parameter must have a default value")
	}
	if p.Validation != nil {
		if err := p.Validation.validate(); err != nil {
			return fmt.Errorf("validation config: %w", err)
		}
	}
	return nil
}

func (v *ValidationConfig) validate() error {
	if v.Pattern != "" {
		if _, err := regexp.Compile(v.Pattern); err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
	}
	if v.MinLength != nil && *v.MinLength < 0 {
		return fmt.Errorf("minLength cannot be negative")
	}
	if v.MinLength != nil && v.MaxLength != nil && *v.MinLength > *v.MaxLength {
		return fmt.Errorf("minLength cannot be greater than maxLength")
	}
	if v.Minimum != nil && v.Maximum != nil && *v.Minimum > *v.Maximum {
		return fmt.Errorf("minimum cannot be greater than maximum")
	}
	return nil
}

var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

// expandEnvironmentVariables replaces ${VAR} and ${VAR:default}. Unset
// variables without a default are left as written.
func expandEnvironmentVariables(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		groups := envPattern.FindSubmatch(match)
		name := string(groups[1])

		if value := os.Getenv(name); value != "" {
			return []byte(value)
		}
		if strings.Contains(string(match), ":") {
			return groups[2]
		}
		return match
	})
}

// EndpointByID finds an endpoint by ID within a service
func (s *ServiceConfig) EndpointByID(id string) *EndpointConfig {
	for i := range s.Endpoints {
		if s.Endpoints[i].ID == id {
			return &s.Endpoints[i]
		}
	}
	return nil
}

// ParameterByName finds a parameter by name
func (e *EndpointConfig) ParameterByName(name string) *ParameterConfig {
	for i := range e.Parameters {
		if e.Parameters[i].Name == name {
			return &e.Parameters[i]
		}
	}
	return nil
}

// Merge adds the services of other to c. Service keys must be unique.
func (c *Config) Merge(other *Config) error {
	if other == nil {
		return nil
	}
	if c.Services == nil {
		c.Services = make(map[string]*ServiceConfig)
	}

	for key := range other.Services {
		if _, exists := c.Services[key]; exists {
			return NewConfigurationError("merge", key,
				fmt.Sprintf("service '%s' is defined in more than one configuration file", key), nil)
		}
	}
	for key, service := range other.Services {
		c.Services[key] = service
	}

	return nil
}
