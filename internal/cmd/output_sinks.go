package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/movelens/movelens/internal/output"
)

// stdoutPath selects standard output wherever a path is accepted.
const stdoutPath = "-"

// outputSink is where a command writes its rendered report.
type outputSink struct {
	io.Writer
	path   string
	closer io.Closer
}

func (s *outputSink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// sanitizeFilename lowercases value and collapses anything outside
// [a-z0-9._-] into single dashes.
func sanitizeFilename(value string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
			dash = false
		case !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	clean := strings.Trim(b.String(), "-.")
	if clean == "" {
		return "output"
	}
	return clean
}

func resolveOutputFormat(cmd *cobra.Command) (output.Format, error) {
	value, err := cmd.Flags().GetString("output-format")
	if err != nil {
		return "", err
	}
	return output.ParseFormat(value)
}

// resolveOutputTargets reads --out and --out-dir. At most one may be set.
func resolveOutputTargets(cmd *cobra.Command) (outPath, outDir string, err error) {
	flags := cmd.Flags()
	if outPath, err = flags.GetString("out"); err != nil {
		return "", "", err
	}
	if outDir, err = flags.GetString("out-dir"); err != nil {
		return "", "", err
	}
	outPath, outDir = strings.TrimSpace(outPath), strings.TrimSpace(outDir)
	if outPath != "" && outDir != "" {
		return "", "", errors.New("--out and --out-dir are mutually exclusive")
	}
	return outPath, outDir, nil
}

func openSink(path string) (*outputSink, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == stdoutPath {
		return &outputSink{Writer: os.Stdout, path: stdoutPath}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &outputSink{Writer: file, path: path, closer: file}, nil
}

// resolveSinkPath picks the destination for one rendered document. With an
// output directory the file is base plus the format extension.
func resolveSinkPath(outPath, outDir, base string, format output.Format) (string, error) {
	if outDir == "" {
		return outPath, nil
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	if abs, err := filepath.Abs(outDir); err == nil {
		outDir = abs
	}
	return filepath.Join(outDir, sanitizeFilename(base)+format.Extension()), nil
}

// writeRendered writes rendered to path, ending it with a newline.
func writeRendered(path, rendered string) (err error) {
	sink, err := openSink(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := sink.Close(); err == nil {
			err = closeErr
		}
	}()

	if !strings.HasSuffix(rendered, "\n") {
		rendered += "\n"
	}
	_, err = io.WriteString(sink, rendered)
	return err
}
