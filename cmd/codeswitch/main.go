// Codeswitch translates source code between Java and C using an LLM backend,
// with compiler-backed syntax validation and OCR input from images.
//
// Usage:
//
//	codeswitch serve [--config /path/to/codeswitch.yaml]
//	codeswitch translate Main.java
//	codeswitch validate --lang c hello.c
//
//	@title			codeswitch API
//	@version		1.0
//	@description	Java and C source translation with syntax validation and OCR input.
//	@BasePath		/
package main

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nadzzz/codeswitch/cmd/codeswitch/commands"
	_ "github.com/nadzzz/codeswitch/docs"
	"github.com/nadzzz/codeswitch/internal/errors"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "codeswitch",
	Short: "codeswitch - Java and C code translation",
	Long: `codeswitch translates source code between Java and C.

Translations come from the Anthropic Messages API (or a self-hosted Ollama
model); without an API key a deterministic mock is used. Source and target
code are checked with javac/gcc when installed, falling back to heuristics.

Available commands:
  serve     - Run the HTTP/WebSocket and gRPC API
  translate - Translate a source file
  validate  - Check the syntax of a source file
  ocr       - Extract (and optionally translate) code from an image
  config    - Show the effective configuration
  cache     - Inspect and prune the translation cache
  mcp       - Serve translation tools over MCP stdio

Examples:
  codeswitch serve --config configs/codeswitch.yaml
  codeswitch translate Main.java > main.c
  codeswitch ocr --from java screenshot.png`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	commands.Version = version

	rootCmd.PersistentFlags().StringVar(&commands.ConfigFile, "config", "", "path to config file (e.g. configs/codeswitch.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "override logging.level (debug, info, warn, error)")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.TranslateCmd)
	rootCmd.AddCommand(commands.ValidateCmd)
	rootCmd.AddCommand(commands.OcrCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.CacheCmd)
	rootCmd.AddCommand(commands.McpCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.WithWriter(os.Stderr).Println(err.Error())
		for _, hint := range errors.GetAllHints(err) {
			pterm.Info.WithWriter(os.Stderr).Println(hint)
		}
		os.Exit(1)
	}
}
