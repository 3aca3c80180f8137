package lang

func init() {
	Register(&LanguageSpec{
		Language:          Go,
		FileExtensions:    []string{".go"},
		FunctionNodeTypes: []string{"function_declaration", "method_declaration", "func_literal"},
		ClassNodeTypes:    []string{"type_spec"},
		CallNodeTypes:     []string{"call_expression"},
		ImportNodeTypes:   []string{"import_declaration"},
		PackageIndicators: []string{"go.mod"},

		DynamicCallNames: []string{"MethodByName", "plugin.Open"},

		TestFileSuffixes: []string{"_test.go"},
		TestFuncPrefixes: []string{"Test", "Benchmark", "Fuzz"},
	})
}
