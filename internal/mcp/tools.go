package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/newsletter-kit/internal/bundle"
)

// generateBundleTool defines the generate_bundle MCP tool.
var generateBundleTool = mcp.NewTool("generate_bundle",
	mcp.WithDescription("Generate the newsletter automation bundle (Code.gs, index.html, thank-you.html, INSTRUCTIONS.md) from an nlkit config file. Nothing is written to disk."),
	mcp.WithString("config_path",
		mcp.Description("Path to the nlkit YAML config (defaults to the server's config)"),
	),
	mcp.WithString("file",
		mcp.Description("Return only this file instead of the combined bundle"),
		mcp.Enum(bundle.FileScript, bundle.FileForm, bundle.FileConfirmation, bundle.FileInstructions),
	),
)

// validateConfigTool defines the validate_config MCP tool.
var validateConfigTool = mcp.NewTool("validate_config",
	mcp.WithDescription("Check an nlkit config file and report the first missing or malformed field."),
	mcp.WithString("config_path",
		mcp.Description("Path to the nlkit YAML config (defaults to the server's config)"),
	),
)

// listProvidersTool defines the list_providers MCP tool.
var listProvidersTool = mcp.NewTool("list_providers",
	mcp.WithDescription("List the supported email providers in failover priority order with the Script Properties each one needs."),
)
