// Package paths provides path resolution utilities.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// ProjectDir is the per-project directory holding config and definitions.
const ProjectDir = ".langue"

// ConfigDir returns the user-level config directory (~/.config/langue), or
// "" when the home directory cannot be determined.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "langue")
}

// ResolveLanguagesDir resolves the directory holding user definitions.
//
// Input normalization:
//   - "~/defs" -> "$HOME/defs"
//   - "/path/to/project" (containing .langue) -> "/path/to/project/.langue/languages"
//   - "/path/to/defs" -> "/path/to/defs"
//   - "" -> "./.langue/languages" when present, else "~/.config/langue/languages"
//
// A "redirect" file inside the resolved directory points elsewhere, relative
// to the directory, so a checkout can share definitions with another one.
func ResolveLanguagesDir(path string) string {
	if path == "" {
		local := filepath.Join(ProjectDir, "languages")
		if isDir(local) {
			return followRedirect(local)
		}
		cfg := ConfigDir()
		if cfg == "" {
			return ""
		}
		return followRedirect(filepath.Join(cfg, "languages"))
	}

	path = filepath.Clean(expandHome(path))

	if filepath.Base(path) != ProjectDir && isDir(filepath.Join(path, ProjectDir)) {
		return followRedirect(filepath.Join(path, ProjectDir, "languages"))
	}
	if filepath.Base(path) == ProjectDir {
		return followRedirect(filepath.Join(path, "languages"))
	}
	return followRedirect(path)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// followRedirect checks for a redirect file and follows it if present.
func followRedirect(dir string) string {
	redirectPath := filepath.Join(dir, "redirect")

	content, err := os.ReadFile(redirectPath) //nolint:gosec // redirect path is within the languages dir
	if err != nil {
		return dir
	}

	redirectTarget := strings.TrimSpace(string(content))
	if redirectTarget == "" {
		return dir
	}

	return filepath.Clean(filepath.Join(dir, redirectTarget))
}
