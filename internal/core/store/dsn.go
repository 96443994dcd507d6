package store

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/movelens/movelens/internal/config"
)

const memoryDSN = ":memory:"

// buildLibsqlDSN turns the store config into a go-libsql DSN. A URL wins
// over a path. Bare paths become file: DSNs and their directory is created.
func buildLibsqlDSN(cfg config.StoreConfig) (string, error) {
	if remote := strings.TrimSpace(cfg.URL); remote != "" {
		return withAuthToken(remote, cfg.AuthToken)
	}

	path := strings.TrimSpace(cfg.Path)
	switch {
	case path == "":
		return "", errors.New("store path or url is required")
	case path == memoryDSN, strings.HasPrefix(path, "libsql:"):
		return path, nil
	case strings.HasPrefix(path, "file:"):
		local, err := filePathOf(path)
		if err != nil {
			return "", err
		}
		return path, ensureParentDir(local)
	default:
		return "file:" + filepath.Clean(path), ensureParentDir(path)
	}
}

func isLocalDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "file:")
}

// withAuthToken adds a Turso auth token unless the URL already carries one.
func withAuthToken(dsn, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return dsn, nil
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid store url: %w", err)
	}
	q := u.Query()
	if q.Get("authToken") != "" {
		return dsn, nil
	}
	q.Set("authToken", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func filePathOf(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid store path: %w", err)
	}
	path := u.Path
	if path == "" {
		path = u.Opaque
	}
	return strings.TrimPrefix(path, "//"), nil
}

func ensureParentDir(path string) error {
	if strings.TrimSpace(path) == "" || path == memoryDSN {
		return nil
	}
	dir := filepath.Dir(filepath.Clean(path))
	if dir == "." || dir == string(filepath.Separator) {
		return nil
	}
	// #nosec G301 -- data directories use 0755 for multi-user access compatibility
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	return nil
}
