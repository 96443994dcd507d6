package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/movelens/movelens/internal/config"
	"github.com/movelens/movelens/internal/core"
	"github.com/movelens/movelens/internal/core/store"
	"github.com/movelens/movelens/internal/observability"
)

type checkLevel int

const (
	checkOK checkLevel = iota
	checkWarn
	checkFail
	checkSkip
)

func (l checkLevel) marker() string {
	switch l {
	case checkOK:
		return "✅"
	case checkWarn:
		return "⚠️ "
	case checkFail:
		return "❌"
	default:
		return "skipped"
	}
}

type checkResult struct {
	level  checkLevel
	detail string
	fields []zap.Field
}

func passed(detail string, fields ...zap.Field) checkResult {
	return checkResult{level: checkOK, detail: detail, fields: fields}
}

func warned(detail string, fields ...zap.Field) checkResult {
	return checkResult{level: checkWarn, detail: detail, fields: fields}
}

func failed(detail string, fields ...zap.Field) checkResult {
	return checkResult{level: checkFail, detail: detail, fields: fields}
}

func skipped(detail string) checkResult {
	return checkResult{level: checkSkip, detail: detail}
}

// doctorState is shared by the checks. Earlier checks fill in what later
// ones depend on.
type doctorState struct {
	online bool
	cfg    *config.Config
	db     *store.Store
}

type doctorCheck struct {
	title string
	run   func(ctx context.Context, st *doctorState) checkResult
}

var doctorChecks = []doctorCheck{
	{"runtime", checkRuntime},
	{"foundation libraries", checkFoundation},
	{"config directory", checkConfigDir},
	{"configuration", checkConfiguration},
	{"database", checkDatabase},
	{"schema", checkSchema},
	{"payload cache", checkPayloadCache},
	{"PokeAPI", checkPokeAPI},
}

func checkRuntime(context.Context, *doctorState) checkResult {
	return passed(fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH),
		zap.String("go_version", runtime.Version()),
		zap.String("os", runtime.GOOS),
		zap.String("arch", runtime.GOARCH))
}

func checkFoundation(context.Context, *doctorState) checkResult {
	v := crucible.GetVersion()
	if v.Crucible == "" || v.Gofulmen == "" {
		return failed("crucible or gofulmen version unavailable")
	}
	return passed(fmt.Sprintf("crucible v%s, gofulmen v%s", v.Crucible, v.Gofulmen),
		zap.String("crucible_version", v.Crucible),
		zap.String("gofulmen_version", v.Gofulmen))
}

func checkConfigDir(context.Context, *doctorState) checkResult {
	path := config.DefaultConfigPath()
	if path == "" {
		return failed("cannot resolve config directory")
	}
	dir := filepath.Dir(path)
	return passed(dir, zap.String("config_dir", dir))
}

func checkConfiguration(ctx context.Context, st *doctorState) checkResult {
	cfg, err := config.Load(ctx)
	if err != nil {
		return failed("config not loaded", zap.Error(err))
	}
	st.cfg = cfg
	return passed("loaded and valid")
}

func checkDatabase(ctx context.Context, st *doctorState) checkResult {
	if st.cfg == nil {
		return skipped("config not loaded")
	}
	location, remote := storeLocation(st.cfg)
	db, err := openStoreWithConfig(ctx, st.cfg)
	if err != nil {
		return failed(location+" (cannot open)", zap.String("db", location), zap.Error(err))
	}
	st.db = db
	if remote {
		return passed(location+" (remote)", zap.String("db_url", location))
	}
	info, err := os.Stat(location)
	if err != nil {
		return warned(location+" (not on disk)", zap.String("db_path", location), zap.Error(err))
	}
	return passed(fmt.Sprintf("%s (%s)", location, formatFileSize(info.Size())),
		zap.String("db_path", location),
		zap.Int64("db_size", info.Size()))
}

func checkSchema(ctx context.Context, st *doctorState) checkResult {
	if st.db == nil {
		return skipped("store not open")
	}
	version, err := st.db.SchemaVersion(ctx)
	if err != nil {
		return failed("cannot read schema version", zap.Error(err))
	}
	latest := store.LatestSchemaVersion()
	if version != latest {
		return warned(fmt.Sprintf("v%d (latest v%d)", version, latest), zap.Int("schema_version", version))
	}
	return passed(fmt.Sprintf("v%d", version), zap.Int("schema_version", version))
}

func checkPayloadCache(ctx context.Context, st *doctorState) checkResult {
	if st.db == nil {
		return skipped("store not open")
	}
	stats, err := st.db.PayloadStats(ctx)
	if err != nil {
		return warned("cannot read stats", zap.Error(err))
	}
	entries, expired := summarizePayloadStats(stats)
	return passed(fmt.Sprintf("%d entries (%d expired)", entries, expired),
		zap.Int("entries", entries),
		zap.Int("expired", expired))
}

func checkPokeAPI(ctx context.Context, st *doctorState) checkResult {
	if !st.online {
		return skipped("use --online")
	}
	if st.db == nil {
		return skipped("store not open")
	}
	client := buildClient(st.cfg, st.db, false)
	started := time.Now()
	if _, err := client.FetchSpecies(ctx, "1"); err != nil {
		return warned(client.Host()+" unreachable", zap.Error(err))
	}
	return passed(fmt.Sprintf("%s (%s)", client.Host(), time.Since(started).Round(time.Millisecond)),
		zap.String("base_url", st.cfg.PokeAPI.BaseURL))
}

// runChecks runs every check in order and reports each result. It returns
// the number of failures.
func runChecks(ctx context.Context, checks []doctorCheck, st *doctorState, report func(step int, title string, r checkResult)) int {
	failures := 0
	for i, check := range checks {
		result := check.run(ctx, st)
		if result.level == checkFail {
			failures++
		}
		report(i+1, check.title, result)
	}
	return failures
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks",
	Long:  "Run diagnostic checks on the installation and suggest fixes for common issues.",
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	logger := observability.CLILogger
	online, err := cmd.Flags().GetBool("online")
	if err != nil {
		return err
	}

	name := appBinaryName()
	logger.Info("=== " + name + " doctor ===")
	logger.Info("")

	st := &doctorState{online: online}
	defer func() {
		if st.db != nil {
			_ = st.db.Close()
		}
	}()

	total := len(doctorChecks)
	failures := runChecks(cmd.Context(), doctorChecks, st, func(step int, title string, r checkResult) {
		line := fmt.Sprintf("[%d/%d] %s... %s %s", step, total, title, r.level.marker(), r.detail)
		switch r.level {
		case checkFail:
			logger.Error(line, r.fields...)
		case checkWarn:
			logger.Warn(line, r.fields...)
		default:
			logger.Info(line, r.fields...)
		}
	})

	logger.Info("")
	if failures > 0 {
		logger.Warn("Some checks failed. Review the output above for details.")
		return fmt.Errorf("%d diagnostic check(s) failed", failures)
	}
	logger.Info(fmt.Sprintf("All checks passed. Your %s installation is healthy.", name))
	return nil
}

var doctorInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		force, err := cmd.Flags().GetBool("force")
		if err != nil {
			return err
		}
		path, err := writeStarterConfig(config.DefaultConfigPath(), appBinaryName(), force)
		if err != nil {
			return err
		}
		observability.CLILogger.Info("Config initialized", zap.String("path", path))
		return nil
	},
}

func writeStarterConfig(path, binary string, force bool) (string, error) {
	if path == "" {
		return "", errors.New("config path not resolved")
	}
	if fileExists(path) && !force {
		return "", fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, config.StarterConfig(binary), 0o644); err != nil {
		return "", fmt.Errorf("write config file: %w", err)
	}
	return path, nil
}

var doctorConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration paths, environment and effective settings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cfg, err := config.Load(ctx)
		if err != nil {
			observability.CLILogger.Warn("Config load failed", zap.Error(err))
		}

		var stats []core.PayloadStats
		if cfg != nil {
			if db, openErr := openStoreWithConfig(ctx, cfg); openErr != nil {
				observability.CLILogger.Warn("Payload cache unavailable", zap.Error(openErr))
			} else {
				stats, err = db.PayloadStats(ctx)
				_ = db.Close()
				if err != nil {
					observability.CLILogger.Warn("Payload cache status unavailable", zap.Error(err))
				}
			}
		}
		return writeConfigReport(cmd.OutOrStdout(), cfg, stats)
	},
}

// envReported lists the env vars whose presence doctor config shows. Values
// are never printed.
var envReported = []string{"POKEAPI_BASE_URL", "DB_URL", "DB_AUTH_TOKEN", "ADMIN_TOKEN"}

func writeConfigReport(w io.Writer, cfg *config.Config, stats []core.PayloadStats) error {
	paths := table.NewWriter()
	paths.SetStyle(table.StyleRounded)
	paths.SetTitle("Paths")
	paths.AppendHeader(table.Row{"Item", "Location", "Status"})
	paths.AppendRow(table.Row{"config file", orUnresolved(config.DefaultConfigPath()), existenceStatus(config.DefaultConfigPath())})
	paths.AppendRow(table.Row{"data directory", orUnresolved(config.DefaultDataDir()), existenceStatus(config.DefaultDataDir())})
	paths.AppendRow(table.Row{"cache directory", orUnresolved(config.DefaultCacheDir()), existenceStatus(config.DefaultCacheDir())})
	if cfg != nil {
		location, remote := storeLocation(cfg)
		status := "remote"
		if !remote {
			status = existenceStatus(location)
			if info, err := os.Stat(location); err == nil {
				status = formatFileSize(info.Size())
			}
		}
		paths.AppendRow(table.Row{"database", location, status})
	}
	if _, err := fmt.Fprintln(w, paths.Render()); err != nil {
		return err
	}
	if cfg == nil {
		return nil
	}

	prefix := "MOVELENS_"
	if identity := GetAppIdentity(); identity != nil && identity.EnvPrefix != "" {
		prefix = identity.EnvPrefix
	}
	env := table.NewWriter()
	env.SetStyle(table.StyleRounded)
	env.SetTitle("Environment")
	for _, name := range envReported {
		env.AppendRow(table.Row{prefix + name, envStatus(prefix + name)})
	}
	if _, err := fmt.Fprintln(w, env.Render()); err != nil {
		return err
	}

	entries, expired := summarizePayloadStats(stats)
	settings := table.NewWriter()
	settings.SetStyle(table.StyleRounded)
	settings.SetTitle("Effective settings")
	settings.AppendRows([]table.Row{
		{"pokeapi.base_url", cfg.PokeAPI.BaseURL},
		{"pokeapi.use_cache", cfg.PokeAPI.UseCache},
		{"cache.species_ttl", cfg.Cache.SpeciesTTL},
		{"cache.move_ttl", cfg.Cache.MoveTTL},
		{"cache.result_size", cfg.Cache.ResultSize},
		{"engine.max_candidates", cfg.Engine.MaxCandidates},
		{"engine.fetch_batch_size", cfg.Engine.FetchBatchSize},
		{"rate_limit_margin", cfg.RateLimitMargin},
		{"payload cache", fmt.Sprintf("%d entries (%d expired)", entries, expired)},
	})
	_, err := fmt.Fprintln(w, settings.Render())
	return err
}

var doctorResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove the user config file and/or the local database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()
		resetConfig, _ := flags.GetBool("config")
		resetData, _ := flags.GetBool("data")
		if all, _ := flags.GetBool("all"); all {
			resetConfig, resetData = true, true
		}
		if !resetConfig && !resetData {
			return errors.New("specify --config, --data, or --all")
		}

		if resetConfig {
			if err := removeReported("Config", config.DefaultConfigPath()); err != nil {
				return err
			}
		}
		if resetData {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			location, remote := storeLocation(cfg)
			if remote {
				return errors.New("remote store configured; database reset is not supported")
			}
			if err := removeReported("Database", location); err != nil {
				return err
			}
		}
		return nil
	},
}

// removeReported deletes path, treating an already missing file as done.
func removeReported(what, path string) error {
	logger := observability.CLILogger
	if path == "" {
		logger.Warn(what + " path not resolved; skipping")
		return nil
	}
	err := os.Remove(path)
	switch {
	case err == nil:
		logger.Info(what+" removed", zap.String("path", path))
	case os.IsNotExist(err):
		logger.Info(what+" already removed", zap.String("path", path))
	default:
		return fmt.Errorf("remove %s: %w", strings.ToLower(what), err)
	}
	return nil
}

var doctorValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the current config file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := config.DefaultConfigPath()
		if !fileExists(path) {
			return fmt.Errorf("config file not found: %s", orUnresolved(path))
		}
		if _, err := config.Load(cmd.Context()); err != nil {
			return err
		}
		observability.CLILogger.Info("Config is valid", zap.String("path", path))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.AddCommand(doctorInitCmd, doctorConfigCmd, doctorResetCmd, doctorValidateCmd)

	doctorCmd.Flags().Bool("online", false, "also fetch a species from PokeAPI")
	doctorInitCmd.Flags().Bool("force", false, "overwrite an existing config file")
	doctorResetCmd.Flags().Bool("config", false, "remove the user config file")
	doctorResetCmd.Flags().Bool("data", false, "remove the local database")
	doctorResetCmd.Flags().Bool("all", false, "remove config and data")
}

func appBinaryName() string {
	if identity := GetAppIdentity(); identity != nil && identity.BinaryName != "" {
		return identity.BinaryName
	}
	return "movelens"
}

func formatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d bytes", bytes)
	}
	value := float64(bytes)
	suffix := "B"
	for _, s := range []string{"KB", "MB", "GB"} {
		value /= unit
		suffix = s
		if value < unit {
			break
		}
	}
	return fmt.Sprintf("%.1f %s", value, suffix)
}

func formatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	plural := func(n int, unit string) string {
		if n == 1 {
			return "1 " + unit + " ago"
		}
		return fmt.Sprintf("%d %ss ago", n, unit)
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "min")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	default:
		return plural(int(d.Hours()/24), "day")
	}
}

func summarizePayloadStats(stats []core.PayloadStats) (entries, expired int) {
	for _, s := range stats {
		entries += s.Entries
		expired += s.Expired
	}
	return entries, expired
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func existenceStatus(path string) string {
	if fileExists(path) {
		return "exists"
	}
	return "missing"
}

func orUnresolved(path string) string {
	if path == "" {
		return "(not resolved)"
	}
	return path
}

func envStatus(name string) string {
	if strings.TrimSpace(os.Getenv(name)) != "" {
		return "(set)"
	}
	return "(not set)"
}
