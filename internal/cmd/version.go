package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
)

var (
	extended      bool
	versionFormat string
)

type versionReport struct {
	Binary    string `json:"binary"`
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"buildDate,omitempty"`
	Go        string `json:"go,omitempty"`
	Gofulmen  string `json:"gofulmen,omitempty"`
	Crucible  string `json:"crucible,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version information. Use --extended for commit, build and library versions.",
	RunE: func(cmd *cobra.Command, args []string) error {
		binary := "movelens"
		if identity := GetAppIdentity(); identity != nil {
			binary = identity.BinaryName
		}
		return writeVersion(cmd.OutOrStdout(), buildVersionReport(binary, extended), versionFormat)
	},
}

func buildVersionReport(binary string, full bool) versionReport {
	report := versionReport{Binary: binary, Version: versionInfo.Version}
	if !full {
		return report
	}
	report.Commit = versionInfo.Commit
	report.BuildDate = versionInfo.BuildDate
	report.Go = runtime.Version()

	libs := crucible.GetVersion()
	report.Gofulmen = libs.Gofulmen
	report.Crucible = libs.Crucible
	return report
}

func writeVersion(w io.Writer, report versionReport, format string) error {
	switch format {
	case "json":
		payload, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(payload))
		return err
	case "", "text":
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}

	if _, err := fmt.Fprintf(w, "%s %s\n", report.Binary, report.Version); err != nil {
		return err
	}
	if report.Go == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, "Commit: %s\nBuilt: %s\nGo: %s\n\nGofulmen: %s\nCrucible: %s\n",
		report.Commit, report.BuildDate, report.Go, report.Gofulmen, report.Crucible)
	return err
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVarP(&extended, "extended", "e", false, "show extended version information")
	versionCmd.Flags().StringVar(&versionFormat, "output-format", "text", "Output format: text|json")
}
