package commands

import (
	"github.com/spf13/cobra"

	"github.com/nadzzz/codeswitch/internal/mcpserver"
)

// McpCmd serves the translation tools over MCP stdio.
var McpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP server on stdio",
	Long: `Expose translate_code, validate_syntax and translation_status as Model
Context Protocol tools over stdin/stdout. Logs go to stderr.

Example client configuration:
  {"command": "codeswitch", "args": ["mcp"]}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		return mcpserver.New(a.pipeline, Version, a.log).Serve()
	},
}
