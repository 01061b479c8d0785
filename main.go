/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PivotLLM/MCPGraph/config"
	"github.com/PivotLLM/MCPGraph/db"
	"github.com/PivotLLM/MCPGraph/global"
	"github.com/PivotLLM/MCPGraph/graph"
	"github.com/PivotLLM/MCPGraph/mcpserver"
	"github.com/PivotLLM/MCPGraph/mlogger"
)

// Version information
const (
	AppName    = "MCPGraph"
	AppVersion = "0.1.0"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode")
	portFlag := flag.Int("port", 0, "Port to listen on (overrides the listen setting)")
	noStreamingFlag := flag.Bool("no-streaming", false, "Use streamable HTTP instead of SSE")
	configFlag := flag.String("config", "", "Comma-separated endpoint configuration files")
	settingsFlag := flag.String("settings", "", "YAML settings file (default $"+config.SettingsFileEnv+")")
	helpFlag := flag.Bool("help", false, "Show help information")
	versionFlag := flag.Bool("version", false, "Show version information")

	// Token management subcommands
	tokenSetFlag := flag.String("token-set", "", "Store a Graph access token")
	tokenProfileFlag := flag.String("token-profile", db.DefaultProfile, "Token profile used by -token-set")
	tokenExpiresFlag := flag.Duration("token-expires", 0, "Lifetime of the token given to -token-set (0 if unknown)")
	tokenListFlag := flag.Bool("token-list", false, "List stored Graph tokens")
	tokenDeleteFlag := flag.String("token-del", "", "Delete the Graph token stored for a profile")

	flag.Usage = func() {
		fmt.Printf("MCPGraph - Microsoft Graph Model Context Protocol Server\n\n")
		fmt.Printf("Usage:\n")
		fmt.Printf("  %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nEnvironment Variables:\n")
		fmt.Printf("  %s<SETTING>   Override any settings key, e.g. MCPGRAPH_LISTEN, MCPGRAPH_DATA_DIR\n", config.EnvPrefix)
		fmt.Printf("  MS365_GRAPH_BASE_URL  Graph base URL used by configs/microsoft365.json\n")
		fmt.Printf("  MS365_TOKEN_PROFILE   Token profile used by configs/microsoft365.json\n\n")
		fmt.Printf("Examples:\n")
		fmt.Printf("  # Start server with configuration\n")
		fmt.Printf("  %s -config configs/microsoft365.json -port 8888\n\n", os.Args[0])
		fmt.Printf("  # Token management examples\n")
		fmt.Printf("  %s -token-set eyJ0eXAi... -token-profile work -token-expires 1h\n", os.Args[0])
		fmt.Printf("  %s -token-list\n", os.Args[0])
		fmt.Printf("  %s -token-del work\n\n", os.Args[0])
	}

	flag.Parse()

	if *helpFlag {
		flag.Usage()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("%s version %s\n", AppName, AppVersion)
		os.Exit(0)
	}

	loadedEnv := loadEnvFiles()

	settings, err := config.LoadSettings(*settingsFlag)
	if err != nil {
		fmt.Printf("Unable to load settings: %v\n", err)
		os.Exit(1)
	}

	// Flags given on the command line win over settings
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "debug":
			settings.Debug = *debugFlag
		case "no-streaming":
			settings.NoStreaming = *noStreamingFlag
		case "port":
			settings.Listen = fmt.Sprintf("localhost:%d", *portFlag)
		}
	})
	if *configFlag != "" {
		settings.AddConfigFiles(*configFlag)
	}
	if err := settings.Validate(); err != nil {
		fmt.Printf("Invalid settings: %v\n", err)
		os.Exit(1)
	}

	logger, err := mlogger.New(
		mlogger.WithPrefix(AppName),
		mlogger.WithDateFormat("2006-01-02 15:04:05"),
		mlogger.WithLogFile(settings.LogFile),
		mlogger.WithLogStdout(true),
		mlogger.WithDebug(settings.Debug),
	)
	if err != nil {
		fmt.Printf("Unable to create logger: %v\n", err)
		os.Exit(1)
	}

	if loadedEnv != "" {
		logger.Infof("Loaded environment variables from %s", loadedEnv)
	}

	database, err := db.New(db.WithLogger(logger), db.WithDataDir(settings.DataDir))
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}

	if *tokenSetFlag != "" || *tokenListFlag || *tokenDeleteFlag != "" {
		err := handleTokenCommands(database, *tokenSetFlag, *tokenProfileFlag, *tokenExpiresFlag,
			*tokenListFlag, *tokenDeleteFlag)
		_ = database.Close()
		if err != nil {
			logger.Errorf("Token management failed: %v", err)
			logger.Close()
			os.Exit(1)
		}
		logger.Close()
		os.Exit(0)
	}

	manager := config.New(
		config.WithLogger(logger),
		config.WithConfigFiles(settings.ConfigFiles...),
	)
	if err := manager.LoadConfigs(); err != nil {
		logger.Fatalf("Unable to load endpoint configuration: %v", err)
	}

	metrics := graph.NewMetrics(nil)
	metrics.Registry().MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	provider := graph.New(
		graph.WithConfig(manager.Config()),
		graph.WithLogger(logger),
		graph.WithTimeout(settings.HTTPTimeout),
		graph.WithMetrics(metrics),
		graph.WithUserAgent(AppName+"/"+AppVersion),
		graph.WithTokenSources(func(profile string) graph.TokenSource {
			return database.Source(profile)
		}),
	)

	mcp, err := mcpserver.New(
		mcpserver.WithListen(settings.Listen),
		mcpserver.WithDebug(settings.Debug),
		mcpserver.WithLogger(logger),
		mcpserver.WithName(AppName),
		mcpserver.WithVersion(AppVersion),
		mcpserver.WithNoStreaming(settings.NoStreaming),
		mcpserver.WithToolProviders([]global.ToolProvider{provider}),
	)
	if err != nil {
		logger.Fatalf("Unable to create MCP server: %v", err)
	}
	logger.Infof("Registered %d tools", mcp.ToolCount())

	if err = mcp.Start(); err != nil {
		logger.Fatalf("MCP server failed to start: %v", err)
	}

	var metricsServer *http.Server
	if settings.MetricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
		metricsServer = &http.Server{
			Addr:              settings.MetricsListen,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Infof("Metrics listening on %s/metrics", settings.MetricsListen)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf("Metrics server stopped: %v", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-sigChan:
		logger.Infof("Received %s, shutting down...", sig)
	case err := <-mcp.Errors():
		logger.Errorf("MCP server failed: %v", err)
		exitCode = 1
	}

	if err = mcp.Stop(); err != nil {
		logger.Errorf("Error stopping MCP server: %v", err)
		exitCode = 1
	}

	if metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = metricsServer.Shutdown(ctx)
		cancel()
	}

	if err := database.Close(); err != nil {
		logger.Errorf("Error closing database: %v", err)
	} else {
		logger.Info("Database connection closed successfully")
	}

	logger.Infof("MCP server stopped")
	logger.Close()
	os.Exit(exitCode)
}

// loadEnvFiles loads the first env file found and returns its path
func loadEnvFiles() string {
	envFiles := []string{"/opt/mcpgraph/env"}

	if homeDir, err := os.UserHomeDir(); err == nil {
		envFiles = append(envFiles, filepath.Join(homeDir, ".mcpgraph", "env"))
	}

	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err == nil {
				return envFile
			}
		}
	}
	return ""
}

// handleTokenCommands processes token management commands
func handleTokenCommands(database *db.DB, tokenSet, profile string, expires time.Duration, tokenList bool, tokenDelete string) error {
	if tokenSet != "" {
		return handleTokenSet(database, tokenSet, profile, expires)
	}

	if tokenList {
		return handleTokenList(database)
	}

	if tokenDelete != "" {
		return handleTokenDelete(database, tokenDelete)
	}

	return nil
}

// handleTokenSet stores a Graph access token for a profile
func handleTokenSet(database *db.DB, token, profile string, expires time.Duration) error {
	if expires < 0 {
		return fmt.Errorf("token lifetime cannot be negative")
	}

	var expiresAt time.Time
	if expires > 0 {
		expiresAt = time.Now().Add(expires)
	}

	if err := database.StoreToken(profile, token, expiresAt); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	fmt.Printf("Token stored for profile %s\n", profile)
	if !expiresAt.IsZero() {
		fmt.Printf("Expires: %s\n", expiresAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// handleTokenList displays all stored tokens
func handleTokenList(database *db.DB) error {
	tokens, err := database.ListTokens()
	if err != nil {
		return fmt.Errorf("failed to list tokens: %w", err)
	}

	if len(tokens) == 0 {
		fmt.Printf("No Graph tokens found.\n")
		fmt.Printf("Store one with: %s -token-set <token> [-token-profile name]\n", os.Args[0])
		return nil
	}

	fmt.Printf("%-20s %-14s %-20s %-20s %s\n", "PROFILE", "TOKEN", "UPDATED", "EXPIRES", "STATUS")
	fmt.Printf("%-20s %-14s %-20s %-20s %s\n", "-------", "-----", "-------", "-------", "------")

	for _, token := range tokens {
		expires := "Unknown"
		if token.ExpiresAt != nil {
			expires = token.ExpiresAt.Format("2006-01-02 15:04:05")
		}
		status := "valid"
		if token.Expired {
			status = "expired"
		}
		fmt.Printf("%-20s %-14s %-20s %-20s %s\n", token.Profile, token.Prefix,
			token.UpdatedAt.Format("2006-01-02 15:04:05"), expires, status)
	}

	fmt.Printf("\nTotal: %d tokens\n", len(tokens))
	return nil
}

// handleTokenDelete removes the token stored for a profile
func handleTokenDelete(database *db.DB, profile string) error {
	if err := database.DeleteToken(profile); err != nil {
		if db.IsNotFound(err) {
			return fmt.Errorf("no token stored for profile '%s'", profile)
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}

	fmt.Printf("Token for profile %s deleted.\n", profile)
	return nil
}
