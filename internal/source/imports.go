package source

import (
	"path"
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/callsight/callsight/internal/fqn"
	"github.com/callsight/callsight/internal/lang"
	"github.com/callsight/callsight/internal/parser"
)

// parseImports extracts the local-name → dotted-module-path map the
// resolver uses for qualified call targets. Relative imports resolve
// against the importing file; bare package imports stay as written and
// either match a project module or end up as dead-end edges.
func parseImports(root *tree_sitter.Node, source []byte, l lang.Language, project, relPath string) map[string]string {
	switch l {
	case lang.Python:
		return parsePythonImports(root, source, project, relPath)
	case lang.JavaScript, lang.TypeScript, lang.TSX:
		return parseJSImports(root, source, project, relPath)
	case lang.Go:
		return parseGoImports(root, source, project)
	case lang.Ruby:
		return parseRubyImports(root, source, project, relPath)
	case lang.Java:
		return parseJavaImports(root, source)
	default:
		return nil
	}
}

func parsePythonImports(root *tree_sitter.Node, source []byte, project, relPath string) map[string]string {
	imports := make(map[string]string)

	parser.Walk(root, func(node *tree_sitter.Node) bool {
		switch node.Kind() {
		case "import_statement":
			pythonPlainImport(node, source, project, imports)
			return false
		case "import_from_statement":
			pythonFromImport(node, source, project, relPath, imports)
			return false
		}
		return true
	})
	return imports
}

// pythonPlainImport handles "import X" and "import X as Y".
func pythonPlainImport(node *tree_sitter.Node, source []byte, project string, imports map[string]string) {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			name := parser.NodeText(child, source)
			imports[lastDotSegment(name)] = project + "." + name
		case "aliased_import":
			nameNode := child.ChildByFieldName("name")
			aliasNode := child.ChildByFieldName("alias")
			if nameNode == nil {
				continue
			}
			name := parser.NodeText(nameNode, source)
			local := lastDotSegment(name)
			if aliasNode != nil {
				local = parser.NodeText(aliasNode, source)
			}
			imports[local] = project + "." + name
		}
	}
}

// pythonFromImport handles "from X import Y [as Z]" including relative
// module prefixes.
func pythonFromImport(node *tree_sitter.Node, source []byte, project, relPath string, imports map[string]string) {
	var modulePath string
	if moduleNode := node.ChildByFieldName("module_name"); moduleNode != nil {
		modulePath = parser.NodeText(moduleNode, source)
	}

	var base string
	if strings.HasPrefix(modulePath, ".") {
		base = resolveRelativePython(modulePath, relPath, project)
	} else if modulePath != "" {
		base = project + "." + modulePath
	} else {
		base = project
	}

	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			name := parser.NodeText(child, source)
			if name == modulePath {
				continue // the module_name itself
			}
			imports[lastDotSegment(name)] = base + "." + name
		case "aliased_import":
			nameNode := child.ChildByFieldName("name")
			aliasNode := child.ChildByFieldName("alias")
			if nameNode == nil {
				continue
			}
			name := parser.NodeText(nameNode, source)
			local := lastDotSegment(name)
			if aliasNode != nil {
				local = parser.NodeText(aliasNode, source)
			}
			imports[local] = base + "." + name
		}
	}
}

// resolveRelativePython maps "from ..pkg import x" onto the importing
// file's directory.
func resolveRelativePython(modulePath, relPath, project string) string {
	dots := 0
	for _, ch := range modulePath {
		if ch != '.' {
			break
		}
		dots++
	}
	remainder := strings.TrimLeft(modulePath, ".")

	dir := filepath.Dir(relPath)
	for i := 1; i < dots; i++ {
		dir = filepath.Dir(dir)
	}

	base := project
	if dir != "." && dir != "" {
		base = project + "." + strings.ReplaceAll(filepath.ToSlash(dir), "/", ".")
	}
	if remainder != "" {
		return base + "." + remainder
	}
	return base
}

// parseJSImports handles "import {a, b as c} from './x'" and default
// imports. Relative specifiers resolve against the importing file.
func parseJSImports(root *tree_sitter.Node, source []byte, project, relPath string) map[string]string {
	imports := make(map[string]string)

	parser.Walk(root, func(node *tree_sitter.Node) bool {
		if node.Kind() != "import_statement" {
			return true
		}
		specNode := node.ChildByFieldName("source")
		if specNode == nil {
			return false
		}
		moduleQN := jsModuleQN(stripQuotes(parser.NodeText(specNode, source)), project, relPath)

		parser.Walk(node, func(child *tree_sitter.Node) bool {
			switch child.Kind() {
			case "import_specifier":
				nameNode := child.ChildByFieldName("name")
				if nameNode == nil {
					return false
				}
				local := parser.NodeText(nameNode, source)
				if aliasNode := child.ChildByFieldName("alias"); aliasNode != nil {
					local = parser.NodeText(aliasNode, source)
				}
				imports[local] = moduleQN
				return false
			case "identifier":
				// Default import: import handler from './x'
				imports[parser.NodeText(child, source)] = moduleQN
				return false
			case "namespace_import":
				// import * as x from './y': identifier child is the alias
				for i := uint(0); i < child.NamedChildCount(); i++ {
					if id := child.NamedChild(i); id != nil && id.Kind() == "identifier" {
						imports[parser.NodeText(id, source)] = moduleQN
					}
				}
				return false
			}
			return true
		})
		return false
	})
	return imports
}

// jsModuleQN resolves a module specifier to a dotted path: relative
// specifiers against the importing file, bare specifiers kept as-is.
func jsModuleQN(spec, project, relPath string) string {
	if !strings.HasPrefix(spec, ".") {
		return strings.ReplaceAll(spec, "/", ".")
	}
	joined := path.Join(path.Dir(filepath.ToSlash(relPath)), spec)
	joined = strings.TrimSuffix(joined, path.Ext(joined))
	return fqn.ModuleQN(project, joined)
}

func parseGoImports(root *tree_sitter.Node, source []byte, project string) map[string]string {
	imports := make(map[string]string)

	parser.Walk(root, func(node *tree_sitter.Node) bool {
		if node.Kind() != "import_declaration" {
			return true
		}
		parser.Walk(node, func(child *tree_sitter.Node) bool {
			if child.Kind() != "import_spec" {
				return true
			}
			pathNode := child.ChildByFieldName("path")
			if pathNode == nil {
				return false
			}
			importPath := stripQuotes(parser.NodeText(pathNode, source))
			if importPath == "" {
				return false
			}
			local := lastPathSegment(importPath)
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				alias := parser.NodeText(nameNode, source)
				if alias != "" && alias != "." && alias != "_" {
					local = alias
				}
			}
			imports[local] = resolveGoImportPath(importPath, project)
			return false
		})
		return false
	})
	return imports
}

// resolveGoImportPath converts an import path to a project QN when one of
// its segments matches the project name ("github.com/org/project/pkg/foo"
// → "project.pkg.foo"); external paths keep their dotted form.
func resolveGoImportPath(importPath, project string) string {
	parts := strings.Split(importPath, "/")
	for i, part := range parts {
		if part == project {
			return strings.Join(parts[i:], ".")
		}
	}
	return strings.Join(parts, ".")
}

// parseRubyImports maps require_relative targets to project modules. Plain
// require of gems stays external.
func parseRubyImports(root *tree_sitter.Node, source []byte, project, relPath string) map[string]string {
	imports := make(map[string]string)

	parser.Walk(root, func(node *tree_sitter.Node) bool {
		if node.Kind() != "call" && node.Kind() != "command_call" {
			return true
		}
		methodNode := node.ChildByFieldName("method")
		if methodNode == nil {
			return true
		}
		method := parser.NodeText(methodNode, source)
		if method != "require_relative" && method != "require" {
			return true
		}
		argNode := firstStringArgument(node, source)
		if argNode == "" {
			return false
		}
		if method == "require_relative" {
			joined := path.Join(path.Dir(filepath.ToSlash(relPath)), argNode)
			imports[lastPathSegment(argNode)] = fqn.ModuleQN(project, joined)
		} else {
			imports[lastPathSegment(argNode)] = strings.ReplaceAll(argNode, "/", ".")
		}
		return false
	})
	return imports
}

func firstStringArgument(node *tree_sitter.Node, source []byte) string {
	args := node.ChildByFieldName("arguments")
	if args == nil {
		return ""
	}
	for i := uint(0); i < args.NamedChildCount(); i++ {
		child := args.NamedChild(i)
		if child != nil && child.Kind() == "string" {
			return stripQuotes(parser.NodeText(child, source))
		}
	}
	return ""
}

// parseJavaImports maps "import a.b.C;" to C → a.b.C. Wildcard imports
// cannot name a local symbol and are skipped.
func parseJavaImports(root *tree_sitter.Node, source []byte) map[string]string {
	imports := make(map[string]string)

	parser.Walk(root, func(node *tree_sitter.Node) bool {
		if node.Kind() != "import_declaration" {
			return true
		}
		text := parser.NodeText(node, source)
		text = strings.TrimPrefix(text, "import")
		text = strings.TrimSuffix(strings.TrimSpace(text), ";")
		text = strings.TrimSpace(text)
		if text == "" || strings.HasSuffix(text, "*") || strings.HasPrefix(text, "static ") {
			return false
		}
		imports[lastDotSegment(text)] = text
		return false
	})
	return imports
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
		if s[0] == '`' && s[len(s)-1] == '`' {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func lastPathSegment(p string) string {
	parts := strings.Split(p, "/")
	return parts[len(parts)-1]
}

func lastDotSegment(name string) string {
	parts := strings.Split(name, ".")
	return parts[len(parts)-1]
}
