package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/flowforge/flowforge/internal/flowgraph"
	"github.com/flowforge/flowforge/internal/geometry"
	"github.com/flowforge/flowforge/internal/pipeline"
)

// handleDetect returns the raw detected geometry for an image.
func (s *FlowchartServer) handleDetect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, result := s.run(ctx, req)
	if result != nil {
		return result, nil
	}
	data, err := json.MarshalIndent(out.Geometry, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode geometry: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// handleGraph returns the wired flow graph as canonical JSON.
func (s *FlowchartServer) handleGraph(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, result := s.run(ctx, req)
	if result != nil {
		return result, nil
	}
	data, err := flowgraph.MarshalGraph(out.Graph)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode graph: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// handleMermaid returns the flow graph as Mermaid flowchart text.
func (s *FlowchartServer) handleMermaid(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, result := s.run(ctx, req)
	if result != nil {
		return result, nil
	}
	return mcp.NewToolResultText(flowgraph.Mermaid(out.Graph)), nil
}

// run resolves the shared path/orientation parameters and executes the
// pipeline. A non-nil CallToolResult is the error to return as-is.
func (s *FlowchartServer) run(ctx context.Context, req mcp.CallToolRequest) (*pipeline.Output, *mcp.CallToolResult) {
	path, err := req.RequireString("path")
	if err != nil {
		return nil, mcp.NewToolResultError("path is required")
	}

	extractor := s.extractor
	if name := req.GetString("orientation", ""); name != "" {
		orientation := geometry.ParseOrientation(name)
		if orientation == geometry.OrientationUnset {
			return nil, mcp.NewToolResultError(fmt.Sprintf("unknown orientation %q, want top-down or left-right", name))
		}
		extractor = extractor.WithOrientation(orientation)
	}

	out, err := extractor.Run(ctx, path)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("extraction failed: %v", err))
	}
	return out, nil
}

// --- Tool definitions ---

func detectTool() mcp.Tool {
	return mcp.NewTool("flowchart_detect",
		mcp.WithDescription("Detect flowchart shapes in a raster image and return their geometry (bounding boxes, shape types, confidences) as JSON"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Filesystem path to the flowchart image (PNG or JPEG)")),
		mcp.WithString("orientation",
			mcp.Enum("top-down", "left-right"),
			mcp.Description("Force the diagram flow direction instead of inferring it"),
		),
	)
}

func graphTool() mcp.Tool {
	return mcp.NewTool("flowchart_graph",
		mcp.WithDescription("Extract a directed flow graph from a flowchart image and return it as JSON with nodes, branch pointers, and the start node"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Filesystem path to the flowchart image (PNG or JPEG)")),
		mcp.WithString("orientation",
			mcp.Enum("top-down", "left-right"),
			mcp.Description("Force the diagram flow direction instead of inferring it"),
		),
	)
}

func mermaidTool() mcp.Tool {
	return mcp.NewTool("flowchart_mermaid",
		mcp.WithDescription("Extract a flow graph from a flowchart image and return it as Mermaid flowchart text"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Filesystem path to the flowchart image (PNG or JPEG)")),
		mcp.WithString("orientation",
			mcp.Enum("top-down", "left-right"),
			mcp.Description("Force the diagram flow direction instead of inferring it"),
		),
	)
}
