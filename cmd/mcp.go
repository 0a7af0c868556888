package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/newsletter-kit/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing bundle generation, config validation and the provider list to AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "nlkit MCP server started on stdio (config=%s)\n", cfgFile)

		return mcpserver.NewServer(cfgFile).Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
