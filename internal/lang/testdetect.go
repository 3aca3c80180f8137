package lang

import (
	"path/filepath"
	"strings"
)

// IsTestFile returns true if the file path indicates a test file under
// this language's conventions.
func (s *LanguageSpec) IsTestFile(relPath string) bool {
	base := filepath.Base(relPath)

	for _, suffix := range s.TestFileSuffixes {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	for _, prefix := range s.TestFilePrefixes {
		if strings.HasPrefix(base, prefix) {
			return true
		}
	}
	if len(s.TestDirs) > 0 {
		return containsTestDir(filepath.Dir(relPath), s.TestDirs)
	}
	return false
}

// IsTestFunction returns true if the function name matches the language's
// test naming convention.
func (s *LanguageSpec) IsTestFunction(name string) bool {
	for _, prefix := range s.TestFuncPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// IsTestEnclosingCall returns true for DSL calls like it/describe whose
// block arguments are test bodies.
func (s *LanguageSpec) IsTestEnclosingCall(callee string) bool {
	for _, name := range s.TestEnclosingCalls {
		if callee == name {
			return true
		}
	}
	return false
}

// containsTestDir returns true if any segment of dir matches one of the patterns.
func containsTestDir(dir string, patterns []string) bool {
	normalised := filepath.ToSlash(dir)
	for _, p := range patterns {
		if strings.Contains(normalised, p+"/") || strings.HasSuffix(normalised, p) {
			return true
		}
	}
	return false
}
