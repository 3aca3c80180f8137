package lang

func init() {
	Register(&LanguageSpec{
		Language:          Ruby,
		FileExtensions:    []string{".rb", ".rake"},
		FunctionNodeTypes: []string{"method", "singleton_method"},
		ClassNodeTypes:    []string{"class", "module"},
		CallNodeTypes:     []string{"call", "command_call"},
		ImportNodeTypes:   []string{"call"},
		PackageIndicators: []string{"Gemfile"},

		DynamicCallNames: []string{"send", "__send__", "public_send", "method_missing", "instance_eval", "class_eval", "module_eval", "eval", "define_method", "const_get"},

		TestFileSuffixes:   []string{"_test.rb", "_spec.rb"},
		TestDirs:           []string{"spec", "test"},
		TestFuncPrefixes:   []string{"test_"},
		TestEnclosingCalls: []string{"it", "describe", "context", "specify"},
	})
}
