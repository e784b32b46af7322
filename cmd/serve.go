package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/schedwise/schedwise/internal/dialogue"
	"github.com/schedwise/schedwise/internal/extract"
	"github.com/schedwise/schedwise/internal/instrumentation"
	"github.com/schedwise/schedwise/internal/search"
	"github.com/schedwise/schedwise/internal/server"
	"github.com/schedwise/schedwise/internal/tools/schedule_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

// ExtractorConfig holds the language-model API settings for the extractor.
type ExtractorConfig struct {
	// BaseURL is the OpenAI-compatible API root (e.g., "https://api.openai.com/v1")
	BaseURL string

	// APIKey authenticates requests to the API
	APIKey string

	// ChatModel and EmbedModel override the client defaults when set
	ChatModel  string
	EmbedModel string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode        bool
		transport        string
		httpAddr         string
		disableStreaming bool
		// Extractor configuration
		llmBaseURL    string
		llmChatModel  string
		llmEmbedModel string
		// Event store configuration
		dbPath string
		// Metrics server configuration
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server that provides
conversational scheduling tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport

Language Model:
  The scheduling dialogue extracts structured data from natural language
  via an OpenAI-compatible API. Configure it with:
    --llm-base-url OR SCHEDWISE_LLM_BASE_URL env var
    SCHEDWISE_LLM_API_KEY env var (OPENAI_API_KEY as fallback)

Google Calendar:
  Calendar access uses a stored OAuth token per account.
  Run 'schedwise auth' first to authorize the default account.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			extractorConfig := ExtractorConfig{
				BaseURL:    llmBaseURL,
				ChatModel:  llmChatModel,
				EmbedModel: llmEmbedModel,
			}
			loadExtractorEnvVars(cmd, &extractorConfig)

			metricsConfig := MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			}

			return runServe(transport, debugMode, httpAddr, disableStreaming, dbPath, extractorConfig, metricsConfig)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&disableStreaming, "disable-streaming", false, "Disable streaming for HTTP transport (for compatibility with certain clients)")

	// Language model flags
	cmd.Flags().StringVar(&llmBaseURL, "llm-base-url", "", "OpenAI-compatible API base URL. Can also use SCHEDWISE_LLM_BASE_URL env var. Default: https://api.openai.com/v1")
	cmd.Flags().StringVar(&llmChatModel, "llm-chat-model", "", "Chat model used for extraction. Can also use SCHEDWISE_LLM_CHAT_MODEL env var.")
	cmd.Flags().StringVar(&llmEmbedModel, "llm-embed-model", "", "Embedding model used for event search. Can also use SCHEDWISE_LLM_EMBED_MODEL env var.")

	// Event store flags
	cmd.Flags().StringVar(&dbPath, "db-path", "", "Path to the SQLite event store. Can also use SCHEDWISE_DB_PATH env var. Default: <user cache dir>/schedwise/schedwise.db")

	// Metrics server flags
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// loadExtractorEnvVars fills in extractor settings from environment
// variables. Environment variables only override flag values when the flag
// was not explicitly set.
func loadExtractorEnvVars(cmd *cobra.Command, config *ExtractorConfig) {
	if !cmd.Flags().Changed("llm-base-url") {
		if baseURL := os.Getenv("SCHEDWISE_LLM_BASE_URL"); baseURL != "" {
			config.BaseURL = baseURL
		}
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}

	config.APIKey = os.Getenv("SCHEDWISE_LLM_API_KEY")
	if config.APIKey == "" {
		config.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if !cmd.Flags().Changed("llm-chat-model") {
		if model := os.Getenv("SCHEDWISE_LLM_CHAT_MODEL"); model != "" {
			config.ChatModel = model
		}
	}
	if !cmd.Flags().Changed("llm-embed-model") {
		if model := os.Getenv("SCHEDWISE_LLM_EMBED_MODEL"); model != "" {
			config.EmbedModel = model
		}
	}
}

// resolveDBPath returns the event store location, falling back to the
// user cache directory when neither the flag nor the env var is set.
func resolveDBPath(dbPath string) string {
	if dbPath != "" {
		return dbPath
	}
	if envPath := os.Getenv("SCHEDWISE_DB_PATH"); envPath != "" {
		return envPath
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = "."
	}
	return search.DefaultPath(filepath.Join(cacheDir, "schedwise"))
}

func runServe(transport string, debugMode bool, httpAddr string, disableStreaming bool, dbPath string, extractorConfig ExtractorConfig, metricsConfig MetricsConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if debugMode {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	// Load metrics config from environment if not set via flags
	if !metricsConfig.Enabled {
		if os.Getenv("METRICS_ENABLED") == "true" {
			metricsConfig.Enabled = true
		}
	}
	if metricsConfig.Addr == "" || metricsConfig.Addr == ":9090" {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			metricsConfig.Addr = addr
		}
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			if transport != "stdio" {
				log.Printf("Error during instrumentation shutdown: %v", err)
			}
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if transport != "stdio" && metricsConfig.Enabled && provider.Enabled() {
		var err error
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm metrics server started successfully
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		// Wait for metrics server to be ready or fail
		select {
		case <-metricsReady:
			log.Printf("Metrics server started on %s", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}

	// Create the extractor client. The server starts without one so that
	// conversations fail with a clear message instead of the process
	// refusing to boot, which matters for stdio clients.
	var extractor *extract.Client
	if extractorConfig.APIKey != "" {
		extractor, err = extract.NewClient(extract.Config{
			BaseURL:    extractorConfig.BaseURL,
			APIKey:     extractorConfig.APIKey,
			ChatModel:  extractorConfig.ChatModel,
			EmbedModel: extractorConfig.EmbedModel,
		})
		if err != nil {
			return fmt.Errorf("failed to create extractor client: %w", err)
		}
	} else if transport != "stdio" {
		log.Printf("Warning: no language model API key configured (set SCHEDWISE_LLM_API_KEY or OPENAI_API_KEY); scheduling conversations will be unavailable")
	}

	// Open the event store
	db, err := search.Open(resolveDBPath(dbPath))
	if err != nil {
		return fmt.Errorf("failed to open event store: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil && transport != "stdio" {
			log.Printf("Error closing event store: %v", err)
		}
	}()

	// Create server context
	serverConfig := server.Config{
		Store:   search.NewStore(db),
		Manager: dialogue.NewManager(dialogue.DefaultIdleTTL),
	}
	if extractor != nil {
		serverConfig.Extractor = extractor
	}
	serverContext, err := server.NewServerContext(shutdownCtx, serverConfig)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}

	// Set metrics and audit logger on server context for tool instrumentation
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(nil, instrConfig.AuditLogging))
	}
	defer func() {
		// Shutdown metrics server first
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("Error during metrics server shutdown: %v", err)
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			if transport != "stdio" {
				log.Printf("Error during server context shutdown: %v", err)
			}
		}
	}()

	// Create MCP server
	mcpSrv := mcpserver.NewMCPServer("schedwise", version,
		mcpserver.WithToolCapabilities(true),
	)

	// Register all tools
	if err := schedule_tools.RegisterScheduleTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register scheduling tools: %w", err)
	}

	// Start the appropriate server based on transport type
	switch transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		fmt.Printf("Starting schedwise MCP server with %s transport...\n", transport)
		return runStreamableHTTPServer(mcpSrv, serverContext, httpAddr, shutdownCtx, disableStreaming, metricsConfig, provider)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", transport)
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(mcpSrv *mcpserver.MCPServer, serverContext *server.ServerContext, addr string, ctx context.Context, disableStreaming bool, metricsConfig MetricsConfig, instrProvider *instrumentation.Provider) error {
	httpServer := server.NewHTTPServer(mcpSrv, disableStreaming)

	// Set up health checker for health check endpoints
	healthChecker := server.NewHealthChecker(serverContext)
	httpServer.SetHealthChecker(healthChecker)

	// Set up HTTP instrumentation for metrics
	if instrProvider != nil && instrProvider.Enabled() {
		httpServer.SetMetrics(instrProvider.Metrics())
	}

	fmt.Printf("Streamable HTTP server starting on %s\n", addr)
	fmt.Printf("  HTTP endpoint: /mcp\n")
	fmt.Printf("  Health endpoints: /healthz, /readyz\n")
	if metricsConfig.Enabled {
		fmt.Printf("  Metrics endpoint: %s/metrics\n", metricsConfig.Addr)
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(addr); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Println("Shutdown signal received, stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		fmt.Println("HTTP server stopped normally")
	}

	fmt.Println("HTTP server gracefully stopped")
	return nil
}
