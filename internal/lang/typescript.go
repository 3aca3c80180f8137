package lang

func init() {
	Register(&LanguageSpec{
		Language:       TypeScript,
		FileExtensions: []string{".ts", ".mts", ".cts"},
		FunctionNodeTypes: []string{
			"function_declaration",
			"generator_function_declaration",
			"function_expression",
			"arrow_function",
			"method_definition",
		},
		ClassNodeTypes:    []string{"class_declaration", "class", "abstract_class_declaration"},
		CallNodeTypes:     []string{"call_expression", "new_expression"},
		ImportNodeTypes:   []string{"import_statement", "export_statement"},
		PackageIndicators: []string{"package.json"},

		DecoratorNodeTypes: []string{"decorator"},
		DynamicCallNames:   []string{"eval", "Function", "Reflect.apply", "Reflect.construct"},

		TestFileSuffixes:   []string{".test.ts", ".spec.ts"},
		TestDirs:           []string{"__tests__"},
		TestEnclosingCalls: []string{"it", "test", "describe"},
	})
}
