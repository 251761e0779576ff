package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nadzzz/codeswitch/internal/errors"
)

// ConfigCmd groups configuration subcommands.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect codeswitch configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Long: `Print the configuration after merging defaults, the config file and
CODESWITCH_* environment variables. The API key is masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		out, err := yaml.Marshal(cfg.Redacted())
		if err != nil {
			return errors.Wrap(err, "encoding configuration")
		}

		source := cfg.File
		if source == "" {
			source = "defaults and environment"
		}
		stderr(pterm.Info).Printfln("Configuration from %s", source)
		fmt.Print(string(out))
		return nil
	},
}

func init() {
	ConfigCmd.AddCommand(configShowCmd)
}
