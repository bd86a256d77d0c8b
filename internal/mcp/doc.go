// Package mcp exposes the analysis engine as a Model Context Protocol server.
//
// The server registers a single tool, analyze_reflection, built on the MCP SDK
// (github.com/modelcontextprotocol/go-sdk/mcp). It returns the analysis result
// as structured output together with a short German text summary, and it runs
// over the stdio transport so editors and agents can spawn it directly.
package mcp
