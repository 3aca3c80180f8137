package lang

func init() {
	Register(&LanguageSpec{
		Language:          Rust,
		FileExtensions:    []string{".rs"},
		FunctionNodeTypes: []string{"function_item"},
		ClassNodeTypes:    []string{"struct_item", "enum_item", "trait_item", "impl_item"},
		CallNodeTypes:     []string{"call_expression", "macro_invocation"},
		ImportNodeTypes:   []string{"use_declaration", "extern_crate_declaration"},
		PackageIndicators: []string{"Cargo.toml"},

		DecoratorNodeTypes: []string{"attribute_item"},

		TestFileSuffixes: []string{"_test.rs"},
		TestDirs:         []string{"tests"},
		TestFuncPrefixes: []string{"test_"},
	})
}
