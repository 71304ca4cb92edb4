package parse

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// skipDirs are directory names excluded from scanning in addition to hidden
// directories. These hold build output or vendored code, not project sources.
var skipDirs = map[string]bool{
	"target":       true,
	"build":        true,
	"dist":         true,
	"__pycache__":  true,
	"node_modules": true,
	"vendor":       true,
}

// Detect walks the tree rooted at fsys and returns the adapter whose file
// extensions match the most files, together with per-language file counts.
// Returns nil when no registered extension matches anything. exclude lists
// extra directory names to skip.
//
// Ties break by adapter registration order, so detection is deterministic
// for a fixed adapter list.
func Detect(fsys fs.FS, all []Adapter, exclude []string) (Adapter, map[string]int, error) {
	counts := make(map[string]int, len(all))

	byExt := make(map[string]string) // extension -> language
	for _, a := range all {
		for _, ext := range a.Extensions() {
			byExt[ext] = a.Language()
		}
	}

	err := walkSources(fsys, exclude, func(path string) {
		if lang, ok := byExt[filepath.Ext(path)]; ok {
			counts[lang]++
		}
	})
	if err != nil {
		return nil, nil, err
	}

	var best Adapter
	bestCount := 0
	for _, a := range all {
		if c := counts[a.Language()]; c > bestCount {
			best, bestCount = a, c
		}
	}
	return best, counts, nil
}

// Files returns the relative paths of all files under fsys matching any of
// the given extensions, sorted for reproducible processing order. Hidden
// directories, common build directories, and the given extra directory
// names are skipped.
func Files(fsys fs.FS, extensions, exclude []string) ([]string, error) {
	var paths []string
	err := walkSources(fsys, exclude, func(path string) {
		if slices.Contains(extensions, filepath.Ext(path)) {
			paths = append(paths, path)
		}
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(paths)
	return paths, nil
}

func walkSources(fsys fs.FS, exclude []string, visit func(path string)) error {
	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != "." && (strings.HasPrefix(name, ".") || skipDirs[name] || slices.Contains(exclude, name)) {
				return fs.SkipDir
			}
			return nil
		}
		visit(path)
		return nil
	})
}
