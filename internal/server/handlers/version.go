package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"

	"github.com/fulmenhq/gofulmen/crucible"

	"github.com/movelens/movelens/internal/appid"
)

// Build metadata, set from main through SetVersionInfo.
var (
	AppVersion   = "dev"
	AppCommit    = "unknown"
	AppBuildDate = "unknown"

	appIdentity *appid.Identity
)

// SetVersionInfo records build metadata for GET /version.
func SetVersionInfo(version, commit, buildDate string) {
	AppVersion = version
	AppCommit = commit
	AppBuildDate = buildDate
}

// SetAppIdentity sets the identity reported by GET /version.
func SetAppIdentity(identity *appid.Identity) {
	appIdentity = identity
}

type VersionResponse struct {
	App          AppInfo     `json:"app"`
	Dependencies DepInfo     `json:"dependencies"`
	Runtime      RuntimeInfo `json:"runtime"`
}

type AppInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}

type DepInfo struct {
	Gofulmen string `json:"gofulmen"`
	Crucible string `json:"crucible"`
}

type RuntimeInfo struct {
	Platform      string `json:"platform"`
	NumCPU        int    `json:"num_cpu"`
	NumGoroutines int    `json:"num_goroutines"`
}

// VersionHandler serves GET /version.
func VersionHandler(w http.ResponseWriter, _ *http.Request) {
	deps := crucible.GetVersion()

	writeJSON(w, http.StatusOK, VersionResponse{
		App: AppInfo{
			Name:      binaryName(),
			Version:   AppVersion,
			Commit:    commit(),
			BuildDate: AppBuildDate,
			GoVersion: runtime.Version(),
		},
		Dependencies: DepInfo{Gofulmen: deps.Gofulmen, Crucible: deps.Crucible},
		Runtime: RuntimeInfo{
			Platform:      runtime.GOOS + "/" + runtime.GOARCH,
			NumCPU:        runtime.NumCPU(),
			NumGoroutines: runtime.NumGoroutine(),
		},
	})
}

func binaryName() string {
	if appIdentity != nil && appIdentity.BinaryName != "" {
		return appIdentity.BinaryName
	}
	if len(os.Args) > 0 && os.Args[0] != "" {
		return filepath.Base(os.Args[0])
	}
	return "unknown"
}

// commit falls back to the VCS stamp embedded by go build when no ldflags
// commit was supplied.
func commit() string {
	if AppCommit != "" && AppCommit != "unknown" {
		return AppCommit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				return setting.Value
			}
		}
	}
	return "unknown"
}
