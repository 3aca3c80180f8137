package fqn

import (
	"path/filepath"
	"strings"
)

// ModuleScopeName is the synthetic function that owns top-level statements
// in a source file. Calls outside any function body attach to it so that
// script-style code stays connected to the graph.
const ModuleScopeName = "<module>"

// Compute returns the canonical qualified name for a function or class.
// Format: <project>.<rel_path_parts_dotted>.<name>
// Examples:
//   - billing.app.handlers.create_invoice
//   - billing.lib.tax.TaxTable.lookup
func Compute(project, relPath, name string) string {
	relPath = strings.TrimSuffix(relPath, filepath.Ext(relPath))
	parts := strings.Split(filepath.ToSlash(relPath), "/")

	// Python packages: foo/__init__.py defines module foo
	if len(parts) > 0 && parts[len(parts)-1] == "__init__" {
		parts = parts[:len(parts)-1]
	}
	// JS/TS index files resolve to their directory
	if len(parts) > 0 && parts[len(parts)-1] == "index" {
		parts = parts[:len(parts)-1]
	}

	all := append([]string{project}, parts...)
	if name != "" {
		all = append(all, name)
	}
	return strings.Join(all, ".")
}

// ModuleQN returns the qualified name of a file's module (no member name).
func ModuleQN(project, relPath string) string {
	return Compute(project, relPath, "")
}

// ModuleScopeQN returns the qualified name of the module-level pseudo-function.
func ModuleScopeQN(project, relPath string) string {
	return Compute(project, relPath, ModuleScopeName)
}

// JVMQN returns the qualified name for a JVM class member. The class name
// arrives in internal form ("com/example/Foo").
func JVMQN(binaryClassName, member string) string {
	qn := strings.ReplaceAll(binaryClassName, "/", ".")
	if member != "" {
		qn += "." + member
	}
	return qn
}

// SimpleName extracts the last dot-separated segment of a qualified name.
func SimpleName(qn string) string {
	if idx := strings.LastIndex(qn, "."); idx >= 0 {
		return qn[idx+1:]
	}
	return qn
}
