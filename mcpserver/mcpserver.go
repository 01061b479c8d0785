/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/PivotLLM/MCPGraph/global"
)

// Option defines a function type for configuring the MCPServer.
type Option func(*MCPServer)

// MCPServerTransport is an interface that abstracts the different transport types
//
//goland:noinspection GoNameStartsWithPackageName
type MCPServerTransport interface {
	Start(addr string) error
	Shutdown(ctx context.Context) error
}

// MCPServer represents the server instance.
type MCPServer struct {
	listen        string
	srv           *server.MCPServer
	transport     MCPServerTransport
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	logger        global.Logger
	debug         bool
	name          string
	version       string
	noStreaming   bool
	toolProviders []global.ToolProvider
	toolCount     int
	errCh         chan error
}

func WithListen(listen string) Option {
	return func(m *MCPServer) {
		m.listen = listen
	}
}

func WithLogger(logger global.Logger) Option {
	return func(m *MCPServer) {
		m.logger = logger
	}
}

func WithDebug(debug bool) Option {
	return func(m *MCPServer) {
		m.debug = debug
	}
}

func WithName(name string) Option {
	return func(m *MCPServer) {
		m.name = name
	}
}

func WithVersion(version string) Option {
	return func(m *MCPServer) {
		m.version = version
	}
}

func WithToolProviders(providers []global.ToolProvider) Option {
	return func(s *MCPServer) {
		s.toolProviders = providers
	}
}

// WithNoStreaming selects the streamable HTTP transport instead of SSE
func WithNoStreaming(noStreaming bool) Option {
	return func(m *MCPServer) {
		m.noStreaming = noStreaming
	}
}

// New creates a new MCPServer instance with the provided options.
func New(options ...Option) (*MCPServer, error) {
	m := &MCPServer{
		listen:  "localhost:8888",
		name:    "MCPGraph",
		version: "0.0.1",
		errCh:   make(chan error, 1),
	}

	for _, opt := range options {
		opt(m)
	}

	if m.logger == nil {
		return nil, fmt.Errorf("logger not set")
	}

	hooks := &server.Hooks{}
	hooks.AddAfterListTools(m.hookAfterListTools)

	m.srv = server.NewMCPServer(m.name, m.version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
		server.WithRecovery(),
		WithRequestLogging(m.logger, m.debug),
		server.WithHooks(hooks),
	)

	m.AddTools()

	return m, nil
}

// ToolCount returns the number of registered tools
func (s *MCPServer) ToolCount() int {
	return s.toolCount
}

// Start runs the MCP server in a background goroutine. Errors other than a
// normal shutdown are delivered on Errors().
func (s *MCPServer) Start() error {
	if s.logger == nil {
		return fmt.Errorf("logger not set")
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	if s.noStreaming {
		s.transport = server.NewStreamableHTTPServer(s.srv)
		s.logger.Infof("MCP server listening on %s (streamable HTTP mode)", s.listen)
	} else {
		s.transport = server.NewSSEServer(s.srv)
		s.logger.Infof("MCP server listening on %s (SSE mode)", s.listen)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.transport.Start(s.listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("MCP server stopped: %v", err)
			s.errCh <- err
		}
	}()
	return nil
}

// Errors reports transport failures after Start
func (s *MCPServer) Errors() <-chan error {
	return s.errCh
}

// Stop signals the MCP server to shut down and waits for the goroutine to exit.
func (s *MCPServer) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}

	var err error
	if s.transport != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err = s.transport.Shutdown(ctx)
		if errors.Is(err, context.DeadlineExceeded) {
			err = nil
		}
	}

	waitCh := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
	case <-time.After(1 * time.Second):
	}
	return err
}

// WithRequestLogging logs every tool call and the size of its result
func WithRequestLogging(logger global.Logger, debug bool) server.ServerOption {
	return server.WithToolHandlerMiddleware(func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if debug {
				logger.Debugf("tools/call: %s %v", request.Params.Name, request.GetArguments())
			}

			start := time.Now()
			result, err := next(ctx, request)

			switch {
			case err != nil:
				logger.Errorf("tools/call: %s failed: %v", request.Params.Name, err)
			case result != nil && result.IsError:
				logger.Warningf("tools/call: %s returned an error result (%s)", request.Params.Name, time.Since(start))
			default:
				logger.Infof("tools/call: %s completed (%d bytes, %s)", request.Params.Name, resultSize(result), time.Since(start))
			}
			return result, err
		}
	})
}

// resultSize counts the text carried by a tool result
func resultSize(result *mcp.CallToolResult) int {
	if result == nil {
		return 0
	}
	size := 0
	for _, content := range result.Content {
		switch c := content.(type) {
		case mcp.TextContent:
			size += len(c.Text)
		case *mcp.TextContent:
			size += len(c.Text)
		case mcp.EmbeddedResource:
			if textResource, ok := c.Resource.(mcp.TextResourceContents); ok {
				size += len(textResource.Text)
			}
		}
	}
	return size
}
