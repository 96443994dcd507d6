package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strconv"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/movelens/movelens/internal/config"
	"github.com/movelens/movelens/internal/observability"
	"github.com/movelens/movelens/internal/output"
)

type infoRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type infoSection struct {
	Title string    `json:"title"`
	Rows  []infoRow `json:"rows"`
}

var envInfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Display environment information",
	Long:  "Display version, runtime, configuration and engine tuning in one report.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := resolveOutputFormat(cmd)
		if err != nil {
			return err
		}
		if format != output.FormatTable && format != output.FormatJSON {
			return fmt.Errorf("unsupported output format: %s", format)
		}

		cfg, err := config.Load(cmd.Context())
		if err != nil {
			observability.CLILogger.Warn("Config load failed; showing build and runtime only", zap.Error(err))
			cfg = nil
		}
		return writeEnvInfo(cmd.OutOrStdout(), format, envInfoSections(cfg))
	},
}

func envInfoSections(cfg *config.Config) []infoSection {
	v := crucible.GetVersion()
	sections := []infoSection{
		{"Application", []infoRow{
			{"Name", appBinaryName()},
			{"Version", versionInfo.Version},
			{"Commit", versionInfo.Commit},
			{"Built", versionInfo.BuildDate},
		}},
		{"Foundation", []infoRow{
			{"Gofulmen", v.Gofulmen},
			{"Crucible", v.Crucible},
		}},
		{"Runtime", []infoRow{
			{"Go", runtime.Version()},
			{"Platform", runtime.GOOS + "/" + runtime.GOARCH},
			{"CPUs", strconv.Itoa(runtime.NumCPU())},
		}},
	}
	if cfg == nil {
		return sections
	}

	location, _ := storeLocation(cfg)
	rateLimits := "defaults"
	if len(cfg.RateLimits) > 0 {
		rateLimits = fmt.Sprintf("%v", cfg.RateLimits)
	}
	tuning := cfg.Engine
	return append(sections,
		infoSection{"Configuration", []infoRow{
			{"Config file", orUnresolved(config.DefaultConfigPath())},
			{"Listen", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)},
			{"Log level", cfg.Logging.Level + " (" + cfg.Logging.Profile + ")"},
			{"Store", cfg.Store.Driver + " " + location},
			{"Metrics port", strconv.Itoa(cfg.Metrics.Port)},
		}},
		infoSection{"PokeAPI", []infoRow{
			{"Base URL", cfg.PokeAPI.BaseURL},
			{"Timeout", cfg.PokeAPI.Timeout.String()},
			{"Payload cache", strconv.FormatBool(cfg.PokeAPI.UseCache)},
			{"User agent", userAgent(cfg)},
			{"Rate limits", rateLimits},
			{"Rate margin", strconv.FormatFloat(cfg.RateLimitMargin, 'f', 2, 64)},
		}},
		infoSection{"Cache", []infoRow{
			{"Species TTL", cfg.Cache.SpeciesTTL.String()},
			{"Move TTL", cfg.Cache.MoveTTL.String()},
			{"Result TTL", cfg.Cache.ResultTTL.String()},
			{"Result size", strconv.Itoa(cfg.Cache.ResultSize)},
		}},
		infoSection{"Engine", []infoRow{
			{"Viability threshold", strconv.FormatFloat(tuning.ViabilityThreshold, 'f', 0, 64)},
			{"Strong power", strconv.Itoa(tuning.StrongPower)},
			{"Sweeper speed", strconv.Itoa(tuning.SweeperSpeed)},
			{"Tank bulk", strconv.Itoa(tuning.TankBulk)},
			{"Bias margin", strconv.Itoa(tuning.Margin())},
			{"Max candidates", strconv.Itoa(tuning.MaxCandidates)},
			{"Fetch batch size", strconv.Itoa(tuning.FetchBatchSize)},
		}},
	)
}

func writeEnvInfo(w io.Writer, format output.Format, sections []infoSection) error {
	if format == output.FormatJSON {
		payload, err := json.MarshalIndent(sections, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(payload))
		return err
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetTitle(appBinaryName() + " environment")
	for i, section := range sections {
		if i > 0 {
			t.AppendSeparator()
		}
		for j, row := range section.Rows {
			title := ""
			if j == 0 {
				title = section.Title
			}
			t.AppendRow(table.Row{title, row.Label, row.Value})
		}
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func init() {
	rootCmd.AddCommand(envInfoCmd)
	envInfoCmd.Flags().String("output-format", string(output.FormatTable), "Output format: table|json")
}
