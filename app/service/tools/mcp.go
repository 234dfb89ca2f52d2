package tools

import (
	"aarogya/app/config"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

// mcpTool exposes a tool of an external MCP server through the registry,
// so deployments can plug in extra lookups (drug databases, insurance
// checks) without touching the reasoning loop.
type mcpTool struct {
	client client.MCPClient
	tool   mcp.Tool
	name   string
}

func (m *mcpTool) Name() string {
	return m.name
}

func (m *mcpTool) Description() string {
	return m.tool.Description
}

func (m *mcpTool) Call(ctx context.Context, input string) (string, error) {
	callRequest := mcp.CallToolRequest{
		Request: mcp.Request{
			Method: "tools/call",
		},
	}
	callRequest.Params.Name = m.tool.Name

	var args map[string]interface{}
	if err := json.Unmarshal([]byte(input), &args); err == nil {
		callRequest.Params.Arguments = args
	} else {
		callRequest.Params.Arguments = map[string]interface{}{
			"input": input,
		}
	}

	response, err := m.client.CallTool(ctx, callRequest)
	if err != nil {
		return "", fmt.Errorf("MCP tool call failed: %w", err)
	}

	var result strings.Builder
	for _, content := range response.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			result.WriteString(textContent.Text)
			result.WriteString("\n")
		}
	}

	return strings.TrimSpace(result.String()), nil
}

func (r *Registry) registerMCPServers(servers []config.MCPServer) error {
	for _, server := range servers {
		mcpClient, err := client.NewStdioMCPClient(server.Command, nil, server.Args...)
		if err != nil {
			return fmt.Errorf("failed to create MCP client for %s: %w", server.Name, err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)

		initRequest := mcp.InitializeRequest{}
		initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
		initRequest.Params.ClientInfo = mcp.Implementation{
			Name:    "aarogya-triage",
			Version: "1.0.0",
		}

		if _, err = mcpClient.Initialize(ctx, initRequest); err != nil {
			cancel()
			return fmt.Errorf("failed to initialize MCP client %s: %w", server.Name, err)
		}

		toolsResponse, err := mcpClient.ListTools(ctx, mcp.ListToolsRequest{})
		cancel()
		if err != nil {
			return fmt.Errorf("failed to list tools from %s: %w", server.Name, err)
		}

		for _, remoteTool := range toolsResponse.Tools {
			schema, err := json.Marshal(remoteTool.InputSchema)
			if err != nil {
				return fmt.Errorf("failed to marshal schema of %s: %w", remoteTool.Name, err)
			}

			r.Register(&mcpTool{
				client: mcpClient,
				tool:   remoteTool,
				name:   fmt.Sprintf("%s_%s", server.Name, remoteTool.Name),
			}, schema)
		}
	}

	return nil
}
