// Package common provides shared utilities for MCP tool implementations:
// account argument handling and the instrumented handler wrappers that
// record metrics and audit logs around every tool invocation.
package common
