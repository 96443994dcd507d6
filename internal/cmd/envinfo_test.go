package cmd

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movelens/movelens/internal/config"
	"github.com/movelens/movelens/internal/core"
	"github.com/movelens/movelens/internal/output"
)

func sectionTitles(sections []infoSection) []string {
	titles := make([]string, 0, len(sections))
	for _, s := range sections {
		titles = append(titles, s.Title)
	}
	return titles
}

func TestEnvInfoSectionsWithoutConfig(t *testing.T) {
	assert.Equal(t, []string{"Application", "Foundation", "Runtime"}, sectionTitles(envInfoSections(nil)))
}

func TestEnvInfoSectionsWithConfig(t *testing.T) {
	cfg := &config.Config{Engine: core.DefaultTuning(), RateLimitMargin: 0.9}
	cfg.Store.Driver = "libsql"
	cfg.Store.URL = "libsql://example.turso.io"
	cfg.Cache.SpeciesTTL = time.Hour

	sections := envInfoSections(cfg)
	assert.Equal(t, []string{"Application", "Foundation", "Runtime", "Configuration", "PokeAPI", "Cache", "Engine"}, sectionTitles(sections))

	var buf bytes.Buffer
	require.NoError(t, writeEnvInfo(&buf, output.FormatTable, sections))
	out := buf.String()
	assert.Contains(t, out, "libsql libsql://example.turso.io")
	assert.Contains(t, out, "0.90")
	assert.Contains(t, out, "1h0m0s")
	assert.Contains(t, out, "defaults")
}

func TestEnvInfoJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeEnvInfo(&buf, output.FormatJSON, envInfoSections(nil)))

	var decoded []infoSection
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, "Runtime", decoded[2].Title)
	assert.Equal(t, "Go", decoded[2].Rows[0].Label)
}
