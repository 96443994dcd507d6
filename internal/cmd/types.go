package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/movelens/movelens/internal/core/typechart"
	"github.com/movelens/movelens/internal/output"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "Query the type chart",
}

var typesWeaknessesCmd = &cobra.Command{
	Use:   "weaknesses <type>...",
	Short: "List attacking types that are super effective against a type combination",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		types, err := parseTypeArgs(args)
		if err != nil {
			return err
		}
		return writeTypeReport(cmd, output.WeaknessReport(types), strings.Join(types, "-")+".weaknesses")
	},
}

var typesCoverageCmd = &cobra.Command{
	Use:   "coverage <type>",
	Short: "Show how an attacking type fares against each defending type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, ok := output.CoverageReport(args[0])
		if !ok {
			return fmt.Errorf("unknown type: %s", args[0])
		}
		return writeTypeReport(cmd, report, report.Types[0]+".coverage")
	},
}

func init() {
	typesCmd.AddCommand(typesWeaknessesCmd)
	typesCmd.AddCommand(typesCoverageCmd)
	rootCmd.AddCommand(typesCmd)

	for _, c := range []*cobra.Command{typesWeaknessesCmd, typesCoverageCmd} {
		c.Flags().String("output-format", string(output.FormatTable), "Output format: table|json|markdown|yaml")
		c.Flags().String("out", "", "Write output to a file (default stdout)")
		c.Flags().String("out-dir", "", "Write output to a directory")
	}
}

func parseTypeArgs(args []string) ([]string, error) {
	types := normalizeIdentifiers(args)
	if len(types) == 0 {
		return nil, fmt.Errorf("at least one type is required")
	}
	for _, name := range types {
		if !typechart.IsKnown(name) {
			return nil, fmt.Errorf("unknown type: %s", name)
		}
	}
	return types, nil
}

func writeTypeReport(cmd *cobra.Command, report *output.TypeReport, base string) error {
	format, err := resolveOutputFormat(cmd)
	if err != nil {
		return err
	}
	outPath, outDir, err := resolveOutputTargets(cmd)
	if err != nil {
		return err
	}

	rendered, err := output.NewFormatter(format).FormatTypeReport(report)
	if err != nil {
		return err
	}
	path, err := resolveSinkPath(outPath, outDir, base, format)
	if err != nil {
		return err
	}
	return writeRendered(path, rendered)
}
