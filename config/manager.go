/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/PivotLLM/MCPGraph/global"
	"github.com/PivotLLM/MCPGraph/graph"
)

// Manager loads endpoint configuration files and merges their services
type Manager struct {
	configFiles []string
	config      *graph.Config
	logger      global.Logger
	mu          sync.RWMutex
}

// Option defines a function type for configuring the Manager
type Option func(*Manager)

// WithLogger sets the logger for the config manager
func WithLogger(logger global.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithConfigFiles sets the configuration files to load
func WithConfigFiles(files ...string) Option {
	return func(m *Manager) {
		m.configFiles = files
	}
}

// New creates a new config manager instance
func New(options ...Option) *Manager {
	m := &Manager{
		config:      &graph.Config{Services: make(map[string]*graph.ServiceConfig)},
		configFiles: []string{},
	}

	for _, option := range options {
		option(m)
	}

	return m
}

// LoadConfigs loads every configured file. A file that fails to load is
// logged and skipped; a service key defined by two files is an error.
func (m *Manager) LoadConfigs() error {
	if len(m.configFiles) == 0 {
		if m.logger != nil {
			m.logger.Warning("No configuration files specified")
		}
		return nil
	}

	successCount := 0
	for _, configFile := range m.configFiles {
		if m.logger != nil {
			m.logger.Infof("Loading configuration file: %s", configFile)
		}

		loaded, err := graph.LoadConfigFromFile(configFile, m.logger)
		if err != nil {
			if m.logger != nil {
				m.logger.Errorf("Failed to load config %s: %v", configFile, err)
			}
			continue
		}

		if err := m.merge(loaded); err != nil {
			return fmt.Errorf("failed to merge %s: %w", configFile, err)
		}

		successCount++
		if m.logger != nil {
			m.logger.Infof("Successfully loaded config: %s", configFile)
		}
	}

	if successCount == 0 {
		return fmt.Errorf("failed to load any configuration files from %d specified", len(m.configFiles))
	}

	if m.logger != nil {
		m.logger.Infof("Loaded %d services from %d config files", m.ServiceCount(), successCount)
	}

	return nil
}

func (m *Manager) merge(loaded *graph.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.config.Merge(loaded); err != nil {
		return err
	}
	if m.logger != nil {
		for key, service := range loaded.Services {
			m.logger.Debugf("Loaded service '%s' with %d endpoints from %s", key, len(service.Endpoints), loaded.ConfigPath)
		}
	}
	return nil
}

// Service returns a service configuration by key
func (m *Manager) Service(key string) (*graph.ServiceConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	service, exists := m.config.Services[key]
	if !exists {
		return nil, fmt.Errorf("service '%s' not found", key)
	}
	return service, nil
}

// ServiceNames returns the loaded service keys in sorted order
func (m *Manager) ServiceNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.config.Services))
	for name := range m.config.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasService checks if a service exists
func (m *Manager) HasService(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.config.Services[key]
	return exists
}

// ServiceCount returns the number of loaded services
func (m *Manager) ServiceCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.config.Services)
}

// Config returns the merged configuration for graph.WithConfig
func (m *Manager) Config() *graph.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.config
}
