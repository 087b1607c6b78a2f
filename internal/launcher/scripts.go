package launcher

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	appErrors "tenant-reports/pkg/errors"
)

// Script is one launchable report binary.
type Script struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Discover lists executable regular files in dir, excluding the launcher's
// own binary (self, given as an absolute path).
func Discover(dir, self string) ([]Script, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	selfAbs, _ := filepath.Abs(self)

	var scripts []Script
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.Mode()&0o111 == 0 || !info.Mode().IsRegular() {
			continue
		}
		path, err := filepath.Abs(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		if path == selfAbs {
			continue
		}
		scripts = append(scripts, Script{
			Name:     entry.Name(),
			Path:     path,
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}
	return scripts, nil
}

// Find resolves a script by name within the discovered set.
func Find(scripts []Script, name string) (Script, error) {
	for _, s := range scripts {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return Script{}, appErrors.ErrScriptNotFound
}
