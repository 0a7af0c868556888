// Package mcp exposes bundle generation to MCP clients over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes the generator tools.
type Server struct {
	configPath string
	mcp        *server.MCPServer
}

// NewServer creates an MCP server whose tools default to configPath.
func NewServer(configPath string) *Server {
	s := &Server{configPath: configPath}

	s.mcp = server.NewMCPServer(
		"nlkit",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(generateBundleTool, s.handleGenerateBundle)
	s.mcp.AddTool(validateConfigTool, s.handleValidateConfig)
	s.mcp.AddTool(listProvidersTool, s.handleListProviders)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
