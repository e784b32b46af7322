// Package server provides the MCP server context and the HTTP and
// metrics servers for the schedwise application.
//
// # Key Components
//
// ServerContext manages the scheduling dependencies shared by all MCP
// tool handlers: per-account Google API clients with lazy initialization
// and caching, the language-model extractor, the event store, and the
// conversation registry. A dialogue controller is built per account and
// skill on first use and cached for the lifetime of the context.
//
// HTTPServer serves the streamable HTTP MCP transport together with
// health check endpoints (/healthz, /readyz) for Kubernetes probes, and
// records per-request metrics when instrumentation is enabled.
//
// MetricsServer exposes the Prometheus /metrics endpoint on a dedicated
// port, separate from the MCP transport.
package server
