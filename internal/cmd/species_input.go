package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// resolveSpecies merges positional identifiers with an optional species
// file. The file form accepts one identifier per line and "#" comments.
func resolveSpecies(positional []string, speciesFile string) ([]string, error) {
	trimmed := strings.TrimSpace(speciesFile)
	if trimmed != "" {
		if len(positional) > 0 {
			return nil, fmt.Errorf("cannot combine positional species with --species-file")
		}
		var reader io.Reader = os.Stdin
		if trimmed != "-" {
			file, err := os.Open(trimmed)
			if err != nil {
				return nil, err
			}
			defer file.Close() // nolint:errcheck
			reader = file
		}
		return readSpecies(reader)
	}

	identifiers := normalizeIdentifiers(positional)
	if len(identifiers) == 0 {
		return nil, fmt.Errorf("at least one species is required")
	}
	return identifiers, nil
}

func readSpecies(reader io.Reader) ([]string, error) {
	lines := make([]string, 0)
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		lines = append(lines, raw)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	identifiers := normalizeIdentifiers(lines)
	if len(identifiers) == 0 {
		return nil, fmt.Errorf("no species found")
	}
	return identifiers, nil
}
