package lang

func init() {
	Register(&LanguageSpec{
		Language:          Java,
		FileExtensions:    []string{".java"},
		FunctionNodeTypes: []string{"method_declaration", "constructor_declaration"},
		ClassNodeTypes: []string{
			"class_declaration",
			"interface_declaration",
			"enum_declaration",
			"record_declaration",
		},
		CallNodeTypes:     []string{"method_invocation", "object_creation_expression"},
		ImportNodeTypes:   []string{"import_declaration"},
		PackageIndicators: []string{"pom.xml", "build.gradle"},

		DecoratorNodeTypes: []string{"marker_annotation", "annotation"},
		DynamicCallNames:   []string{"forName", "getMethod", "getDeclaredMethod", "invoke", "newInstance"},

		TestFileSuffixes: []string{"Test.java", "Tests.java"},
		TestDirs:         []string{"src/test"},
		TestFuncPrefixes: []string{"test"},
	})
}
