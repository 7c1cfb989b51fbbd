package store

import (
	"os"
	"path/filepath"
	"strings"
)

// ConfigDir is where famjam keeps per-user files (prefs.json, famjam.toml, famjam.sqlite).
func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.famjam).
	if v := strings.TrimSpace(os.Getenv("FAMJAM_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".famjam"), nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}
