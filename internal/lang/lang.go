package lang

// Language represents a supported source language.
type Language string

const (
	Python     Language = "python"
	Ruby       Language = "ruby"
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	TSX        Language = "tsx"
	Go         Language = "go"
	Rust       Language = "rust"
	Java       Language = "java"
	// JVMBytecode is not tree-sitter backed; .class files go through the
	// bytecode decoder instead of a LanguageSpec.
	JVMBytecode Language = "jvm-bytecode"
)

// AllLanguages returns all tree-sitter backed languages.
func AllLanguages() []Language {
	return []Language{Python, Ruby, JavaScript, TypeScript, TSX, Go, Rust, Java}
}

// LanguageSpec defines the tree-sitter node kinds and naming conventions
// for one language. Specs are static data registered at init; analyzers
// never mutate them, so independent scans can share the registry.
type LanguageSpec struct {
	Language          Language
	FileExtensions    []string
	FunctionNodeTypes []string
	ClassNodeTypes    []string
	CallNodeTypes     []string
	ImportNodeTypes   []string
	PackageIndicators []string

	// DecoratorNodeTypes lists decorator/annotation node kinds.
	DecoratorNodeTypes []string

	// DynamicCallNames are callee names whose presence defeats static
	// resolution (eval-style code loading, reflective dispatch).
	DynamicCallNames []string

	// TestFileSuffixes/TestFilePrefixes match on the base filename.
	TestFileSuffixes []string
	TestFilePrefixes []string
	// TestDirs are directory segments that indicate test files.
	TestDirs []string

	// TestFuncPrefixes match function names that are test entry points.
	TestFuncPrefixes []string
	// TestEnclosingCalls are DSL calls whose block arguments are tests
	// (Jest/Mocha it/describe, RSpec it/describe).
	TestEnclosingCalls []string
}

var registry = map[string]*LanguageSpec{}

// Register adds a LanguageSpec to the global registry, keyed by extension.
func Register(spec *LanguageSpec) {
	for _, ext := range spec.FileExtensions {
		registry[ext] = spec
	}
}

// ForExtension returns the LanguageSpec for a file extension (e.g. ".py").
func ForExtension(ext string) *LanguageSpec {
	return registry[ext]
}

// ForLanguage returns the LanguageSpec for a language.
func ForLanguage(lang Language) *LanguageSpec {
	for _, spec := range registry {
		if spec.Language == lang {
			return spec
		}
	}
	return nil
}

// LanguageForExtension returns the Language for a file extension.
func LanguageForExtension(ext string) (Language, bool) {
	spec := registry[ext]
	if spec == nil {
		return "", false
	}
	return spec.Language, true
}
