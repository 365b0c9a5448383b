package director

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultScriptDir is where generated scroll scripts are stored.
const DefaultScriptDir = "scripts"

// GenerateScriptPath creates a timestamped script filename in dir.
func GenerateScriptPath(dir string) string {
	if dir == "" {
		dir = DefaultScriptDir
	}
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("script_%s.yaml", timestamp))
}

// FindLatestScript returns the most recently modified .yaml script in dir.
func FindLatestScript(dir string) (string, error) {
	if dir == "" {
		dir = DefaultScriptDir
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read scripts directory: %w", err)
	}

	type candidate struct {
		path string
		mod  time.Time
	}
	var scripts []candidate
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		scripts = append(scripts, candidate{filepath.Join(dir, entry.Name()), info.ModTime()})
	}

	if len(scripts) == 0 {
		return "", fmt.Errorf("no script files found in %s", dir)
	}

	sort.Slice(scripts, func(i, j int) bool {
		return scripts[i].mod.After(scripts[j].mod)
	})
	return scripts[0].path, nil
}
