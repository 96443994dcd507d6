package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/ascii"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/movelens/movelens/internal/config"
	"github.com/movelens/movelens/internal/core/engine"
	"github.com/movelens/movelens/internal/core/store"
	"github.com/movelens/movelens/internal/output"
)

var rateLimitCmd = &cobra.Command{
	Use:   "rate-limit",
	Short: "Inspect or reset persisted PokeAPI rate limit windows",
}

var rateLimitListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show stored windows with the effective per-host budget",
	RunE:  runRateLimitList,
}

var rateLimitResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete stored windows so the next request starts fresh",
	RunE:  runRateLimitReset,
}

func init() {
	rateLimitCmd.AddCommand(rateLimitListCmd, rateLimitResetCmd)
	rootCmd.AddCommand(rateLimitCmd)

	for _, c := range []*cobra.Command{rateLimitListCmd, rateLimitResetCmd} {
		c.Flags().String("output-format", string(output.FormatTable), "Output format: table|json")
		c.Flags().String("out", "", "Write output to a file (default stdout)")
		c.Flags().String("out-dir", "", "Write output to a directory")
		c.Flags().String("prefix", "", "Match endpoints with this prefix")
		c.Flags().Bool("all", false, "Match every endpoint")
	}
	rateLimitResetCmd.Flags().String("endpoint", "", "Match a single endpoint exactly")
	rateLimitResetCmd.Flags().Bool("yes", false, "Confirm a reset of every endpoint")
	rateLimitResetCmd.Flags().Bool("dry-run", false, "Report matches without deleting")
}

// rateLimitRow is the rendered view of one stored window.
type rateLimitRow struct {
	Endpoint     string     `json:"endpoint"`
	Limit        int        `json:"limit"`
	Window       string     `json:"window"`
	Used         int        `json:"used"`
	WindowStart  time.Time  `json:"windowStart"`
	BackoffUntil *time.Time `json:"backoffUntil,omitempty"`
	Last429At    *time.Time `json:"last429At,omitempty"`
}

func rateLimitQuery(cmd *cobra.Command) store.RateLimitQuery {
	all, _ := cmd.Flags().GetBool("all")
	prefix, _ := cmd.Flags().GetString("prefix")
	q := store.RateLimitQuery{All: all, Prefix: strings.TrimSpace(prefix)}
	if endpoint, err := cmd.Flags().GetString("endpoint"); err == nil {
		q.Endpoint = strings.TrimSpace(endpoint)
	}
	return q
}

// rateLimitSink resolves the output format and destination shared by both
// subcommands.
func rateLimitSink(cmd *cobra.Command, base string) (output.Format, *outputSink, error) {
	raw, _ := cmd.Flags().GetString("output-format")
	format, err := output.ParseFormat(raw)
	if err != nil {
		return "", nil, err
	}
	if format != output.FormatJSON && format != output.FormatTable {
		return "", nil, fmt.Errorf("unsupported output format: %s", format)
	}

	outPath, outDir, err := resolveOutputTargets(cmd)
	if err != nil {
		return "", nil, err
	}
	path, err := resolveSinkPath(outPath, outDir, base, format)
	if err != nil {
		return "", nil, err
	}
	sink, err := openSink(path)
	if err != nil {
		return "", nil, err
	}
	return format, sink, nil
}

func runRateLimitList(cmd *cobra.Command, _ []string) error {
	query := rateLimitQuery(cmd)
	if query.Prefix == "" {
		// list defaults to everything
		query.All = true
	}

	ctx := cmd.Context()
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := openStoreWithConfig(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close() // nolint:errcheck // best-effort cleanup

	entries, err := db.ListRateLimits(ctx, query)
	if err != nil {
		return err
	}

	format, sink, err := rateLimitSink(cmd, "rate-limit.list")
	if err != nil {
		return err
	}
	defer func() { _ = sink.Close() }()

	return writeRateLimits(sink, format, rateLimitRows(newLimiter(cfg, db), entries))
}

func rateLimitRows(limiter *engine.RateLimiter, entries []store.RateLimitEntry) []rateLimitRow {
	rows := make([]rateLimitRow, 0, len(entries))
	for _, entry := range entries {
		limit := limiter.LimitFor(entry.Endpoint)
		rows = append(rows, rateLimitRow{
			Endpoint:     entry.Endpoint,
			Limit:        limit.RequestsPerWindow,
			Window:       limit.WindowDuration.String(),
			Used:         entry.State.RequestCount,
			WindowStart:  entry.State.WindowStart,
			BackoffUntil: entry.State.BackoffUntil,
			Last429At:    entry.State.Last429At,
		})
	}
	return rows
}

func writeRateLimits(w io.Writer, format output.Format, rows []rateLimitRow) error {
	if format == output.FormatJSON {
		payload, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(payload))
		return err
	}

	if len(rows) == 0 {
		_, err := fmt.Fprint(w, ascii.DrawBox("Rate Limits\n\n(no stored rate limit state)", 0))
		return err
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Endpoint", "Used", "Budget", "Window Start", "Backoff Until"})
	for _, row := range rows {
		backoff := "-"
		if row.BackoffUntil != nil {
			backoff = row.BackoffUntil.UTC().Format(time.RFC3339)
		}
		t.AppendRow(table.Row{
			row.Endpoint,
			row.Used,
			fmt.Sprintf("%d/%s", row.Limit, row.Window),
			row.WindowStart.UTC().Format(time.RFC3339),
			backoff,
		})
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func runRateLimitReset(cmd *cobra.Command, _ []string) error {
	query := rateLimitQuery(cmd)
	if err := query.Validate(); err != nil {
		return err
	}
	yes, _ := cmd.Flags().GetBool("yes")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if query.All && !yes && !dryRun {
		return errors.New("--all requires --yes (or use --dry-run)")
	}

	ctx := cmd.Context()
	db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close() // nolint:errcheck // best-effort cleanup

	matched, err := db.CountRateLimits(ctx, query)
	if err != nil {
		return err
	}

	format, sink, err := rateLimitSink(cmd, "rate-limit.reset")
	if err != nil {
		return err
	}
	defer func() { _ = sink.Close() }()

	var deleted int64
	if !dryRun {
		if deleted, err = db.ResetRateLimits(ctx, query); err != nil {
			return err
		}
	}
	return writeResetResult(sink, format, matched, deleted, dryRun)
}

func writeResetResult(w io.Writer, format output.Format, matched int, deleted int64, dryRun bool) error {
	if format == output.FormatJSON {
		payload, err := json.MarshalIndent(map[string]any{
			"matched": matched,
			"deleted": deleted,
			"dry_run": dryRun,
		}, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(payload))
		return err
	}

	if dryRun {
		_, err := fmt.Fprintf(w, "Would delete %d rate limit entr(ies)\n", matched)
		return err
	}
	_, err := fmt.Fprintf(w, "Deleted %d/%d rate limit entr(ies)\n", deleted, matched)
	return err
}
