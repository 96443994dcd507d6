package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/movelens/movelens/internal/config"
	"github.com/movelens/movelens/internal/observability"
	"github.com/movelens/movelens/internal/output"
)

var profileCmd = &cobra.Command{
	Use:   "profile <species>",
	Short: "Show the battle profile of a species",
	Long:  "Show offensive bias, speed, bulk, role flags and type weaknesses for a species.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := resolveOutputFormat(cmd)
		if err != nil {
			return err
		}
		outPath, outDir, err := resolveOutputTargets(cmd)
		if err != nil {
			return err
		}
		noCache, err := cmd.Flags().GetBool("no-cache")
		if err != nil {
			return err
		}

		identifier := strings.ToLower(strings.TrimSpace(args[0]))
		if identifier == "" {
			return fmt.Errorf("species is required")
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

		service := buildService(cfg, db, !noCache, observability.CLILogger)
		analysis, err := service.MoveSets(ctx, identifier)
		if err != nil {
			return err
		}

		rendered, err := output.FormatProfile(format, output.NewProfileReport(analysis))
		if err != nil {
			return err
		}
		path, err := resolveSinkPath(outPath, outDir, analysis.Species+".profile", format)
		if err != nil {
			return err
		}
		return writeRendered(path, rendered)
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)

	profileCmd.Flags().String("output-format", string(output.FormatTable), "Output format: table|json|markdown|yaml")
	profileCmd.Flags().String("out", "", "Write output to a file (default stdout)")
	profileCmd.Flags().String("out-dir", "", "Write output to a directory")
	profileCmd.Flags().Bool("no-cache", false, "Skip the persistent payload cache")
}
