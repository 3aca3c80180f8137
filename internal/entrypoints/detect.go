package entrypoints

import (
	"path"
	"strings"

	"github.com/callsight/callsight/internal/bytecode"
	"github.com/callsight/callsight/internal/graph"
	"github.com/callsight/callsight/internal/lang"
	"github.com/callsight/callsight/internal/source"
)

// Match is one detector hit: the function node ID and why it is a root.
type Match struct {
	ID   string
	Kind graph.EntrypointKind
}

// Detector applies the pattern table to extractions. One detector serves a
// whole scan.
type Detector struct {
	patterns *Patterns

	// ExportedAPI marks public top-level functions as entrypoints, for
	// library projects with no process main of their own.
	ExportedAPI bool
}

// NewDetector wraps a pattern table.
func NewDetector(p *Patterns) *Detector {
	return &Detector{patterns: p}
}

// DetectSource returns every entrypoint in one file's extraction. Each
// function yields at most one match; kind priority is main, handler, job,
// test, export.
func (d *Detector) DetectSource(ex *source.Extraction) []Match {
	var out []Match
	spec := lang.ForLanguage(ex.Language)

	for _, fn := range ex.Functions {
		if kind, ok := d.classify(ex, fn, spec); ok {
			out = append(out, Match{ID: fn.ID, Kind: kind})
		}
	}
	return out
}

func (d *Detector) classify(ex *source.Extraction, fn *graph.FunctionNode, spec *lang.LanguageSpec) (graph.EntrypointKind, bool) {
	if fn.IsModuleScope {
		return d.classifyModule(ex)
	}

	switch ex.Language {
	case lang.Python:
		if matchesPrefix(fn.Decorators, d.patterns.Python.HandlerDecorators) {
			return graph.EntrypointHandler, true
		}
		if matchesPrefix(fn.Decorators, d.patterns.Python.JobDecorators) {
			return graph.EntrypointJob, true
		}

	case lang.Ruby:
		if fn.IsPublic && underAny(ex.File, d.patterns.Ruby.ControllerDirs) {
			return graph.EntrypointHandler, true
		}
		if fn.IsPublic && underAny(ex.File, d.patterns.Ruby.MailerDirs) {
			return graph.EntrypointHandler, true
		}
		if underAny(ex.File, d.patterns.Ruby.JobDirs) && containsString(d.patterns.Ruby.JobMethods, fn.Name) {
			return graph.EntrypointJob, true
		}

	case lang.Go:
		if fn.Name == d.patterns.Go.MainFunction && !ex.IsTestFile {
			return graph.EntrypointMain, true
		}

	case lang.Rust:
		if fn.Name == d.patterns.Rust.MainFunction && len(fn.Decorators) == 0 {
			return graph.EntrypointMain, true
		}
		if matchesPrefix(fn.Decorators, []string{"tokio::main", "actix_web::main", "async_std::main"}) && fn.Name == d.patterns.Rust.MainFunction {
			return graph.EntrypointMain, true
		}
		if matchesExact(fn.Decorators, d.patterns.Rust.TestAttributes) {
			return graph.EntrypointTest, true
		}
		if matchesPrefix(fn.Decorators, d.patterns.Rust.HandlerAttributes) {
			return graph.EntrypointHandler, true
		}

	case lang.Java:
		if fn.Name == "main" && fn.IsPublic {
			return graph.EntrypointMain, true
		}
		if matchesPrefix(fn.Decorators, d.patterns.Java.HandlerAnnotations) {
			return graph.EntrypointHandler, true
		}
		if matchesPrefix(fn.Decorators, d.patterns.Java.JobAnnotations) {
			return graph.EntrypointJob, true
		}
		if matchesExact(fn.Decorators, d.patterns.Java.TestAnnotations) {
			return graph.EntrypointTest, true
		}
	}

	if spec != nil && spec.IsTestFunction(fn.Name) {
		return graph.EntrypointTest, true
	}

	if d.ExportedAPI && fn.IsPublic {
		return graph.EntrypointExport, true
	}
	return "", false
}

// classifyModule decides whether a file's top-level code is itself a root:
// script mains, route-registration modules, test-DSL files.
func (d *Detector) classifyModule(ex *source.Extraction) (graph.EntrypointKind, bool) {
	base := path.Base(ex.File)

	switch ex.Language {
	case lang.Python:
		if ex.HasMainGuard || containsString(d.patterns.Python.MainFiles, base) {
			return graph.EntrypointMain, true
		}

	case lang.JavaScript, lang.TypeScript, lang.TSX:
		if containsString(d.patterns.JavaScript.MainFiles, base) {
			return graph.EntrypointMain, true
		}
		for _, c := range ex.Calls {
			if c.CallerID == ex.ModuleID && containsString(d.patterns.JavaScript.RouteCalls, c.Callee) {
				return graph.EntrypointHandler, true
			}
		}
	}

	if ex.IsTestFile && ex.HasTestDSL {
		return graph.EntrypointTest, true
	}
	return "", false
}

// DetectClassMethod classifies a decoded bytecode method. Annotation tables
// are not decoded, so tests fall back to the name convention.
func (d *Detector) DetectClassMethod(m *bytecode.Method) (graph.EntrypointKind, bool) {
	if m.Name == "main" && m.Descriptor == d.patterns.Java.MainDescriptor && m.IsPublic() && m.IsStatic() {
		return graph.EntrypointMain, true
	}
	if m.IsPublic() && strings.HasPrefix(m.Name, "test") {
		return graph.EntrypointTest, true
	}
	return "", false
}

// matchesPrefix reports whether any decorator starts with any pattern. The
// prefix rule lets "app.route" match `app.route("/invoices")` as written.
func matchesPrefix(decorators, patterns []string) bool {
	for _, deco := range decorators {
		for _, p := range patterns {
			if strings.HasPrefix(deco, p) {
				return true
			}
		}
	}
	return false
}

func matchesExact(decorators, patterns []string) bool {
	for _, deco := range decorators {
		for _, p := range patterns {
			if deco == p {
				return true
			}
		}
	}
	return false
}

func underAny(relPath string, dirs []string) bool {
	p := strings.ReplaceAll(relPath, "\\", "/")
	for _, dir := range dirs {
		if strings.HasPrefix(p, dir+"/") {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
