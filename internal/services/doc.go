// Package services assembles the reflectify service graph from configuration.
//
// Build wires the LLM client, privacy scrubber, prompt generator, analysis
// engine and, on request, the SQLite store, event publisher and journal into a
// Registry. Both binaries use it so the daemon, the CLI and the MCP server run
// the same engine with the same settings.
package services
