package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gfconfig "github.com/fulmenhq/gofulmen/config"

	"github.com/movelens/movelens/internal/appid"
)

const fallbackAppName = "movelens"

// appNames returns the XDG directory name and the binary name.
func appNames(identity *appid.Identity) (configName, binaryName string) {
	configName, binaryName = fallbackAppName, fallbackAppName
	if identity == nil {
		return configName, binaryName
	}
	if name := strings.TrimSpace(identity.ConfigName); name != "" {
		configName = name
	}
	if name := strings.TrimSpace(identity.BinaryName); name != "" {
		binaryName = name
	}
	return configName, binaryName
}

func currentIdentity() *appid.Identity {
	identity, _ := appid.Get(context.Background())
	return identity
}

// userConfigFile returns the pinned file, or the first config file found
// on the XDG search path.
func userConfigFile(identity *appid.Identity) string {
	configMu.RLock()
	pinned := explicitPath
	configMu.RUnlock()
	if pinned != "" {
		return pinned
	}

	configName, binaryName := appNames(identity)
	var legacy []string
	if binaryName != configName {
		legacy = append(legacy, binaryName)
	}
	for _, path := range gfconfig.GetAppConfigPaths(configName, legacy...) {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// DefaultConfigPath is where the user config file is expected.
func DefaultConfigPath() string {
	configName, _ := appNames(currentIdentity())
	dir := gfconfig.GetAppConfigDir(configName)
	if strings.TrimSpace(dir) == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

func DefaultDataDir() string {
	configName, _ := appNames(currentIdentity())
	return gfconfig.GetAppDataDir(configName)
}

func DefaultCacheDir() string {
	configName, _ := appNames(currentIdentity())
	return gfconfig.GetAppCacheDir(configName)
}

// DefaultStorePath is the local libsql file used when no store is configured.
func DefaultStorePath() string {
	configName, binaryName := appNames(currentIdentity())
	dir := gfconfig.GetAppDataDir(configName)
	if strings.TrimSpace(dir) == "" {
		return "./" + binaryName + ".db"
	}
	return filepath.Join(dir, binaryName+".db")
}

// StarterConfig is the file written by "doctor init": the embedded defaults
// under a header naming the tool that created it.
func StarterConfig(binaryName string) []byte {
	if binaryName == "" {
		binaryName = fallbackAppName
	}
	body := string(defaultsYAML)
	if i := strings.IndexByte(body, '\n'); i >= 0 && strings.HasPrefix(body, "#") {
		body = body[i+1:]
	}
	return []byte(fmt.Sprintf("# %s config, created by '%s doctor init'\n%s", binaryName, binaryName, body))
}
