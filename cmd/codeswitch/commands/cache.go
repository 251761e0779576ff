package commands

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nadzzz/codeswitch/internal/cache"
	"github.com/nadzzz/codeswitch/internal/errors"
)

// CacheCmd groups translation cache subcommands.
var CacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the translation cache",
	Long: `Inspect and prune the SQLite translation cache.

Examples:
  codeswitch cache stats
  codeswitch cache prune --older-than 720h`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry and hit counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		store, path, err := openCache(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		st, err := store.Stats(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(st)
		}
		pterm.Info.Printfln("Cache: %s", path)
		pterm.Printf("  Entries: %d\n", st.Entries)
		pterm.Printf("  Hits:    %d\n", st.Hits)
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete entries not used recently",
	RunE: func(cmd *cobra.Command, args []string) error {
		olderThan, _ := cmd.Flags().GetDuration("older-than")
		if olderThan <= 0 {
			return errors.New("--older-than must be positive")
		}

		store, _, err := openCache(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Pruned %d entries unused for %s", n, olderThan)
		return nil
	},
}

func openCache(cmd *cobra.Command) (*cache.Store, string, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, "", err
	}
	if !cfg.Cache.Enabled {
		return nil, "", errors.WithHint(errors.New("translation cache is disabled"),
			"set cache.enabled: true in the config")
	}
	store, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		return nil, "", errors.Wrap(err, "opening translation cache")
	}
	return store, cfg.Cache.Path, nil
}

func init() {
	cacheStatsCmd.Flags().BoolP("json", "j", false, "Output stats as JSON")
	cachePruneCmd.Flags().Duration("older-than", 30*24*time.Hour, "Remove entries last used before this age")

	CacheCmd.AddCommand(cacheStatsCmd)
	CacheCmd.AddCommand(cachePruneCmd)
}
