package lang

func init() {
	Register(&LanguageSpec{
		Language:          Python,
		FileExtensions:    []string{".py"},
		FunctionNodeTypes: []string{"function_definition"},
		ClassNodeTypes:    []string{"class_definition"},
		CallNodeTypes:     []string{"call"},
		ImportNodeTypes:   []string{"import_statement", "import_from_statement"},
		PackageIndicators: []string{"__init__.py"},

		DecoratorNodeTypes: []string{"decorator"},
		DynamicCallNames:   []string{"eval", "exec", "compile", "getattr", "globals", "locals", "__import__", "importlib.import_module"},

		TestFilePrefixes: []string{"test_"},
		TestFileSuffixes: []string{"_test.py"},
		TestDirs:         []string{"tests", "__tests__"},
		TestFuncPrefixes: []string{"test_"},
	})
}
