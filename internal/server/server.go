// Package server exposes the flowchart pipeline over the Model
// Context Protocol. Three tools cover the pipeline's output forms:
// raw geometry, the directed flow graph, and Mermaid text.
package server

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/flowforge/flowforge/internal/pipeline"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// FlowchartServer wraps an MCP server with flowchart tool handlers.
type FlowchartServer struct {
	extractor *pipeline.Extractor
	mcpServer *server.MCPServer
}

// New creates a FlowchartServer with all tools registered. A nil
// extractor gets the deterministic default pipeline.
func New(extractor *pipeline.Extractor) *FlowchartServer {
	if extractor == nil {
		extractor = pipeline.New(pipeline.Options{})
	}

	s := &FlowchartServer{extractor: extractor}

	mcpSrv := server.NewMCPServer(
		"flowforge",
		Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Flowforge converts raster flowchart images into directed flow graphs. Use flowchart_detect for raw shape geometry, flowchart_graph for the wired graph as JSON, and flowchart_mermaid for Mermaid flowchart text."),
	)

	mcpSrv.AddTools(s.tools()...)
	s.mcpServer = mcpSrv
	return s
}

// Serve starts the stdio transport and blocks until ctx is cancelled
// or stdin closes.
func (s *FlowchartServer) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying MCPServer for testing or custom
// transports.
func (s *FlowchartServer) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *FlowchartServer) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: detectTool(), Handler: s.handleDetect},
		{Tool: graphTool(), Handler: s.handleGraph},
		{Tool: mermaidTool(), Handler: s.handleMermaid},
	}
}
