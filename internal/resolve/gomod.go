package resolve

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
)

// GoModulePath reads the module path from the project's go.mod, or ""
// when the project has none.
func GoModulePath(rootDir string) (string, error) {
	path := filepath.Join(rootDir, "go.mod")
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read go.mod: %w", err)
	}
	f, err := modfile.Parse(path, data, nil)
	if err != nil {
		return "", fmt.Errorf("parse go.mod: %w", err)
	}
	if f.Module == nil {
		return "", nil
	}
	return f.Module.Mod.Path, nil
}

// RewriteGoImports maps imports under the project's own module path onto
// project qualified names, so "github.com/acme/app/internal/billing"
// resolves like the local package it is.
func RewriteGoImports(imports map[string]string, modulePath, project string) {
	if modulePath == "" {
		return
	}
	dotted := strings.ReplaceAll(modulePath, "/", ".")
	for local, qn := range imports {
		if qn == dotted {
			imports[local] = project
		} else if strings.HasPrefix(qn, dotted+".") {
			imports[local] = project + strings.TrimPrefix(qn, dotted)
		}
	}
}
