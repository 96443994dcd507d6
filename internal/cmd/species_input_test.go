package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveSpeciesPositional(t *testing.T) {
	species, err := resolveSpecies([]string{"Garchomp", "ferrothorn"}, "")
	require.NoError(t, err)
	require.Equal(t, []string{"garchomp", "ferrothorn"}, species)

	_, err = resolveSpecies([]string{" "}, "")
	require.Error(t, err)
}

func TestResolveSpeciesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "team.txt")
	require.NoError(t, os.WriteFile(path, []byte("# team\nGarchomp\n\nferrothorn\ngarchomp\n"), 0o600))

	species, err := resolveSpecies(nil, path)
	require.NoError(t, err)
	require.Equal(t, []string{"garchomp", "ferrothorn"}, species)

	_, err = resolveSpecies([]string{"rotom"}, path)
	require.Error(t, err)
}

func TestReadSpeciesRejectsEmptyInput(t *testing.T) {
	_, err := readSpecies(strings.NewReader("# nothing here\n\n"))
	require.Error(t, err)
}
