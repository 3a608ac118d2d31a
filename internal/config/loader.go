package config

import (
	"os"
	"path/filepath"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = "datespine.yaml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "datespine.yml"

// FindConfigFile finds the config file in the given directory.
// Returns empty string if not found.
func FindConfigFile(dir string) string {
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// FindProjectRoot walks up from the given directory, at most maxLevels
// directories, to find one containing datespine.yaml or datespine.yml.
// Returns empty string if not found.
func FindProjectRoot(startDir string, maxLevels int) string {
	dir := startDir
	for i := 0; i < maxLevels; i++ {
		if FindConfigFile(dir) != "" {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
	return ""
}
