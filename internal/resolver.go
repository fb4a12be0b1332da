package internal

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sahilm/fuzzy"
)

// DashTransform is the deterministic naming transform most tools apply
// when flattening a project path into a directory name: every path
// separator becomes a dash, so /Users/me/proj becomes -Users-me-proj.
func DashTransform(projectPath string) string {
	cleaned := filepath.Clean(projectPath)
	return strings.ReplaceAll(cleaned, string(filepath.Separator), "-")
}

// ResolveProjectDirs maps a project's absolute path to candidate
// storage directories under baseDir, ranked by plausibility.
//
// The exact transform is tried first; when it exists it is returned
// alone. Otherwise the base directory's immediate children are scored
// by substring containment: a candidate matches if its lowercased name
// contains the lowercased conjunction of the last two path segments,
// or contains any individual segment. Matches are ordered by fuzzy
// score against the project's base name. Absence of the base directory
// yields an empty result; nothing here returns an error.
func ResolveProjectDirs(baseDir, projectPath string) []string {
	if baseDir == "" || projectPath == "" {
		return nil
	}

	exact := filepath.Join(baseDir, DashTransform(projectPath))
	if info, err := os.Stat(exact); err == nil && info.IsDir() {
		return []string{exact}
	}

	entries, err := os.ReadDir(baseDir)
	if err != nil {
		LogDebug("resolver: %v", &ResolveError{ProjectPath: projectPath, Base: baseDir, Err: err})
		return nil
	}

	segments := splitPathSegments(projectPath)
	if len(segments) == 0 {
		return nil
	}
	lastTwo := ""
	if len(segments) >= 2 {
		lastTwo = strings.ToLower(segments[len(segments)-2] + "-" + segments[len(segments)-1])
	}

	var matched []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		if containsProject(name, lastTwo, segments) {
			matched = append(matched, entry.Name())
		}
	}
	if len(matched) == 0 {
		return nil
	}

	ordered := rankByPlausibility(matched, segments[len(segments)-1])
	dirs := make([]string, 0, len(ordered))
	for _, name := range ordered {
		dirs = append(dirs, filepath.Join(baseDir, name))
	}
	return dirs
}

func containsProject(loweredName, lastTwo string, segments []string) bool {
	if lastTwo != "" && strings.Contains(loweredName, lastTwo) {
		return true
	}
	for _, segment := range segments {
		if strings.Contains(loweredName, strings.ToLower(segment)) {
			return true
		}
	}
	return false
}

// rankByPlausibility orders candidate names by fuzzy score against the
// project's base name; candidates the matcher rejects keep their
// directory-listing order at the end.
func rankByPlausibility(names []string, baseName string) []string {
	if len(names) < 2 {
		return names
	}

	matches := fuzzy.Find(strings.ToLower(baseName), lowerAll(names))
	ordered := make([]string, 0, len(names))
	taken := make(map[int]bool, len(matches))
	for _, m := range matches {
		ordered = append(ordered, names[m.Index])
		taken[m.Index] = true
	}
	for i, name := range names {
		if !taken[i] {
			ordered = append(ordered, name)
		}
	}
	return ordered
}

func lowerAll(names []string) []string {
	lowered := make([]string, len(names))
	for i, name := range names {
		lowered[i] = strings.ToLower(name)
	}
	return lowered
}

func splitPathSegments(projectPath string) []string {
	parts := strings.FieldsFunc(projectPath, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	segments := parts[:0]
	for _, part := range parts {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}
	return segments
}
