package cmd

import (
	"github.com/huangsam/hubstats/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the hubstats MCP server",
	Long:  `Launch an MCP server over stdio that lets AI agents read the dashboard, single series and store status.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Logs go to stderr; stdio carries the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager, version)
	},
}
