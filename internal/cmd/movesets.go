package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/movelens/movelens/internal/config"
	"github.com/movelens/movelens/internal/core"
	"github.com/movelens/movelens/internal/core/engine"
	"github.com/movelens/movelens/internal/observability"
	"github.com/movelens/movelens/internal/output"
)

var moveSetsCmd = &cobra.Command{
	Use:   "movesets <species>...",
	Short: "Recommend competitive move sets",
	Long: `Recommend sweeper, wallbreaker, tank and support move sets for one or
more species. Species may be given by name or national dex number, as
arguments or through --species-file (use "-" for stdin).`,
	Args: cobra.ArbitraryArgs,
	RunE: runMoveSets,
}

func init() {
	rootCmd.AddCommand(moveSetsCmd)

	moveSetsCmd.Flags().String("output-format", string(output.FormatTable), "Output format: table|json|markdown|yaml")
	moveSetsCmd.Flags().String("out", "", "Write output to a file (default stdout)")
	moveSetsCmd.Flags().String("out-dir", "", "Write one file per species to a directory")
	moveSetsCmd.Flags().Bool("no-cache", false, "Skip the persistent payload cache")
	moveSetsCmd.Flags().String("species-file", "", "Read species identifiers from a file, one per line")
}

func runMoveSets(cmd *cobra.Command, args []string) error {
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

	speciesFile, err := cmd.Flags().GetString("species-file")
	if err != nil {
		return err
	}
	identifiers, err := resolveSpecies(args, speciesFile)
	if err != nil {
		return err
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

	startedAt := time.Now()
	analyses, failed := analyzeAll(ctx, service, identifiers)
	observability.CLILogger.Debug("Move set analysis complete",
		zap.Int("species", len(identifiers)),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(startedAt)))

	if outDir != "" {
		formatter := output.NewFormatter(format)
		for _, analysis := range analyses {
			rendered, err := formatter.FormatAnalysis(analysis)
			if err != nil {
				return err
			}
			path, err := resolveSinkPath("", outDir, analysis.Species+".movesets", format)
			if err != nil {
				return err
			}
			if err := writeRendered(path, rendered); err != nil {
				return err
			}
		}
	} else {
		rendered, err := output.FormatAnalysisList(format, analyses)
		if err != nil {
			return err
		}
		if err := writeRendered(outPath, rendered); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d species had no competitive data", failed, len(identifiers))
	}
	return nil
}

type moveSetSource interface {
	MoveSets(ctx context.Context, identifier string) (*core.SpeciesAnalysis, error)
}

// analyzeAll runs each identifier in order. A failed species becomes an
// unavailable analysis with empty sets so the rest of the batch still renders.
func analyzeAll(ctx context.Context, service moveSetSource, identifiers []string) ([]*core.SpeciesAnalysis, int) {
	analyses := make([]*core.SpeciesAnalysis, 0, len(identifiers))
	failed := 0
	for _, identifier := range identifiers {
		analysis, err := service.MoveSets(ctx, identifier)
		if err != nil {
			failed++
			analyses = append(analyses, unavailableAnalysis(identifier, err))
			continue
		}
		analyses = append(analyses, analysis)
	}
	return analyses, failed
}

func unavailableAnalysis(identifier string, err error) *core.SpeciesAnalysis {
	message := engine.ErrNoCompetitiveData.Error()
	if err != nil {
		message = err.Error()
	}
	return &core.SpeciesAnalysis{
		Species:     identifier,
		Types:       []string{},
		Weaknesses:  []string{},
		MoveSets:    core.EmptyMoveSets(),
		Unavailable: true,
		Message:     message,
	}
}

// normalizeIdentifiers lowercases, trims, splits on commas and drops
// duplicates while keeping first-seen order.
func normalizeIdentifiers(args []string) []string {
	seen := make(map[string]struct{}, len(args))
	identifiers := make([]string, 0, len(args))
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			id := strings.ToLower(strings.TrimSpace(part))
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			identifiers = append(identifiers, id)
		}
	}
	return identifiers
}
