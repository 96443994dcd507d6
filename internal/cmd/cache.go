package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/movelens/movelens/internal/core"
	"github.com/movelens/movelens/internal/core/pokeapi"
	"github.com/movelens/movelens/internal/output"
)

var (
	cachePurgeResource string
	cachePurgeAll      bool
	cachePurgeYes      bool
	cacheOutput        string
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the persistent PokeAPI payload cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete cached payloads (expired only unless --all)",
	RunE: func(cmd *cobra.Command, args []string) error {
		resource := strings.ToLower(strings.TrimSpace(cachePurgeResource))
		if resource != "" && resource != pokeapi.ResourcePokemon && resource != pokeapi.ResourceMove {
			return fmt.Errorf("unknown resource %q (expected %s or %s)", resource, pokeapi.ResourcePokemon, pokeapi.ResourceMove)
		}
		if cachePurgeAll && !cachePurgeYes {
			return errors.New("--all requires --yes")
		}

		db, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		deleted, err := db.PurgePayloads(cmd.Context(), resource, !cachePurgeAll)
		if err != nil {
			return err
		}

		scope := "expired"
		if cachePurgeAll {
			scope = "all"
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d %s cached payload(s)\n", deleted, scope)
		return err
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cached payload counts per resource",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(cacheOutput)
		if err != nil {
			return err
		}
		if format != output.FormatJSON && format != output.FormatTable {
			return fmt.Errorf("unsupported output format: %s", format)
		}

		db, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		stats, err := db.PayloadStats(cmd.Context())
		if err != nil {
			return err
		}
		if err := writeCacheStats(cmd.OutOrStdout(), format, stats); err != nil {
			return err
		}
		if format == output.FormatTable {
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Database: %s\n", getDBPath())
		}
		return err
	},
}

func writeCacheStats(w io.Writer, format output.Format, stats []core.PayloadStats) error {
	if stats == nil {
		stats = []core.PayloadStats{}
	}

	if format == output.FormatJSON {
		payload, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(payload))
		return err
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Resource", "Entries", "Expired", "Bytes", "Last Fetched"})

	var entries, expired int
	var bytes int64
	for _, s := range stats {
		t.AppendRow(table.Row{s.Resource, s.Entries, s.Expired, s.Bytes, formatTimeAgo(s.LastFetched)})
		entries += s.Entries
		expired += s.Expired
		bytes += s.Bytes
	}
	t.AppendFooter(table.Row{"total", entries, expired, formatFileSize(bytes), ""})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func init() {
	cacheCmd.AddCommand(cachePurgeCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	rootCmd.AddCommand(cacheCmd)

	cachePurgeCmd.Flags().StringVar(&cachePurgeResource, "resource", "", "Limit purge to one resource (pokemon|move)")
	cachePurgeCmd.Flags().BoolVar(&cachePurgeAll, "all", false, "Delete unexpired payloads too")
	cachePurgeCmd.Flags().BoolVar(&cachePurgeYes, "yes", false, "Confirm destructive purge")

	cacheStatsCmd.Flags().StringVar(&cacheOutput, "output-format", string(output.FormatTable), "Output format: table|json")
}
