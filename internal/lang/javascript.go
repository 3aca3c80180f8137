package lang

func init() {
	Register(&LanguageSpec{
		Language:       JavaScript,
		FileExtensions: []string{".js", ".jsx", ".mjs", ".cjs"},
		FunctionNodeTypes: []string{
			"function_declaration",
			"generator_function_declaration",
			"function_expression",
			"arrow_function",
			"method_definition",
		},
		ClassNodeTypes:    []string{"class_declaration", "class"},
		CallNodeTypes:     []string{"call_expression", "new_expression"},
		ImportNodeTypes:   []string{"import_statement", "export_statement"},
		PackageIndicators: []string{"package.json"},

		DynamicCallNames: []string{"eval", "Function", "Reflect.apply", "Reflect.construct"},

		TestFileSuffixes:   []string{".test.js", ".spec.js", ".test.jsx", ".spec.jsx"},
		TestDirs:           []string{"__tests__"},
		TestEnclosingCalls: []string{"it", "test", "describe"},
	})
}
