package source

import (
	"strings"

	"github.com/callsight/callsight/internal/lang"
)

// dynamicMatcher checks callee names against the language's dynamic-code
// patterns. Matching is on the full dotted name or its leaf segment, so
// both "eval" and "importlib.import_module" style patterns work, and a
// receiver prefix ("obj.send") does not hide the construct.
type dynamicMatcher struct {
	full map[string]bool
	leaf map[string]bool
}

func newDynamicMatcher(spec *lang.LanguageSpec) *dynamicMatcher {
	m := &dynamicMatcher{
		full: make(map[string]bool, len(spec.DynamicCallNames)),
		leaf: make(map[string]bool, len(spec.DynamicCallNames)),
	}
	for _, name := range spec.DynamicCallNames {
		m.full[name] = true
		if !strings.Contains(name, ".") {
			m.leaf[name] = true
		}
	}
	return m
}

// match returns the warning kind ("eval", "reflection", ...) and true when
// the callee is a dynamic-code construct.
func (m *dynamicMatcher) match(callee string) (string, bool) {
	matched := m.full[callee]
	if !matched {
		if idx := strings.LastIndex(callee, "."); idx >= 0 {
			matched = m.leaf[callee[idx+1:]]
		}
	}
	if !matched {
		return "", false
	}
	return classifyDynamic(callee), true
}

func classifyDynamic(callee string) string {
	leaf := callee
	if idx := strings.LastIndex(callee, "."); idx >= 0 {
		leaf = callee[idx+1:]
	}
	switch leaf {
	case "eval", "exec", "compile", "Function", "instance_eval", "class_eval", "module_eval":
		return "eval"
	case "send", "__send__", "public_send", "method_missing", "define_method":
		return "dynamic-dispatch"
	case "getattr", "globals", "locals", "forName", "getMethod", "getDeclaredMethod",
		"invoke", "newInstance", "MethodByName", "apply", "construct", "const_get":
		return "reflection"
	case "__import__", "import_module", "Open":
		return "dynamic-load"
	default:
		return "dynamic-code"
	}
}
