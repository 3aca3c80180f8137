// Package discover walks a project root and returns the files one scan
// will analyze: source in supported languages plus compiled JVM classes.
package discover

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/callsight/callsight/internal/lang"
)

// skipDirs are directory names never descended into: VCS metadata, tool
// caches, build output.
var skipDirs = map[string]bool{
	".cache": true, ".eggs": true, ".env": true, ".git": true,
	".gradle": true, ".hg": true, ".idea": true, ".maven": true,
	".mypy_cache": true, ".nox": true, ".npm": true, ".nyc_output": true,
	".pnpm-store": true, ".pytest_cache": true, ".ruff_cache": true,
	".svn": true, ".tox": true, ".venv": true, ".vs": true,
	".vscode": true, ".yarn": true, "__pycache__": true, "bin": true,
	"bower_components": true, "build": true, "coverage": true, "target": true,
	"dist": true, "env": true, "htmlcov": true, "obj": true,
	"out": true, "Pods": true, "temp": true, "tmp": true, "venv": true,
}

// dependencyDirs hold third-party source trees. They are skipped by
// default and descended at most one level deep when dependency analysis
// is on, so a vendored tree's own vendor directory never recurses.
var dependencyDirs = map[string]bool{
	"node_modules":  true,
	"vendor":        true,
	"site-packages": true,
	"gems":          true,
}

// skipSuffixes are artifact files never analyzed. Compiled JVM classes are
// deliberately absent: they feed the bytecode decoder.
var skipSuffixes = []string{
	".tmp", "~", ".pyc", ".pyo", ".o", ".a", ".so", ".dll", ".jar", ".min.js",
}

// FileInfo is one discovered file.
type FileInfo struct {
	Path     string // absolute
	RelPath  string // slash-separated, relative to the project root
	Language lang.Language
}

// Options configures discovery.
type Options struct {
	// IgnoreFile overrides the default <root>/.callsightignore location.
	IgnoreFile string
	// IncludeDependencies descends into vendored dependency trees
	// (node_modules, vendor, ...) one level deep.
	IncludeDependencies bool
	// ExtraSkipDirs adds project-specific directory names to skip.
	ExtraSkipDirs []string
}

// Discover walks the project root. Unreadable subtrees are skipped, not
// fatal; an unreadable root returns the walk error.
func Discover(ctx context.Context, root string, opts *Options) ([]FileInfo, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &Options{}
	}

	ignorePath := opts.IgnoreFile
	if ignorePath == "" {
		ignorePath = filepath.Join(root, ".callsightignore")
	}
	extraIgnore, _ := loadIgnoreFile(ignorePath)
	extraIgnore = append(extraIgnore, opts.ExtraSkipDirs...)

	var files []FileInfo
	err = filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			return filepath.SkipDir
		}

		rel, _ := filepath.Rel(root, path)
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if path == root {
				return nil
			}
			if shouldSkipDir(info.Name(), rel, extraIgnore, opts.IncludeDependencies) {
				return filepath.SkipDir
			}
			return nil
		}

		for _, suffix := range skipSuffixes {
			if strings.HasSuffix(path, suffix) {
				return nil
			}
		}

		ext := filepath.Ext(path)
		if ext == ".class" {
			files = append(files, FileInfo{Path: path, RelPath: rel, Language: lang.JVMBytecode})
			return nil
		}
		if l, ok := lang.LanguageForExtension(ext); ok {
			files = append(files, FileInfo{Path: path, RelPath: rel, Language: l})
		}
		return nil
	})
	return files, err
}

func shouldSkipDir(name, rel string, extraIgnore []string, includeDeps bool) bool {
	if skipDirs[name] {
		return true
	}
	if dependencyDirs[name] {
		if !includeDeps {
			return true
		}
		if insideDependencyTree(filepath.Dir(rel)) {
			return true
		}
	}
	for _, pattern := range extraIgnore {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

// insideDependencyTree reports whether any ancestor segment is itself a
// dependency directory.
func insideDependencyTree(rel string) bool {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if dependencyDirs[part] {
			return true
		}
	}
	return false
}

// loadIgnoreFile reads glob patterns, one per line, # for comments.
func loadIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}
	return patterns, scanner.Err()
}
