// Package server implements the MCP (Model Context Protocol) server for line
// detection tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the Hough line
// detector through the MCP protocol. It's designed to work with Claude and
// other MCP-compatible clients, enabling AI systems to measure line work in
// images with precision.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// The server provides 6 tools organized into categories:
//
// Image Loading:
//   - image_load: Load image and get metadata
//
// Line Detection:
//   - detect_lines: Full-image line segment detection
//   - detect_lines_region: Detection restricted to a rectangular region
//
// Queries:
//   - nearest_line: Segment nearest to a point
//
// Diagnostics:
//   - gradient_preview: Gradient magnitude map as PNG
//   - accumulator_heatmap: Hough vote accumulator as PNG
//
// # Caching and Pass State
//
// Decoded images and computed gradient fields are cached by path (and
// gradient options) for the lifetime of the process, so repeated detection
// calls against the same file skip disk I/O and convolution. The server also
// remembers its most recent detection pass: nearest_line reuses it when the
// inputs match, and accumulator_heatmap always renders it.
//
// All detection tools accept the full set of gradient options and detector
// parameters; omitted fields fall back to the documented defaults.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv, err := server.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Close()
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
