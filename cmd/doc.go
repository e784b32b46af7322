// Package cmd implements the command-line interface for schedwise.
//
// This package provides the following commands:
//   - serve: Start the MCP server that exposes the scheduling tools
//   - chat: Run a scheduling conversation interactively in the terminal
//   - auth: Authorize access to a Google account
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The serve command is the default command when no subcommand is specified.
package cmd
