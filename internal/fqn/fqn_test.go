package fqn

import "testing"

func TestCompute(t *testing.T) {
	tests := []struct {
		relPath string
		name    string
		want    string
	}{
		{"app/handlers.py", "create_invoice", "billing.app.handlers.create_invoice"},
		{"lib/tax.py", "TaxTable.lookup", "billing.lib.tax.TaxTable.lookup"},
		{"pkg/__init__.py", "helper", "billing.pkg.helper"},
		{"src/api/index.js", "route", "billing.src.api.route"},
		{"main.go", "main", "billing.main.main"},
	}
	for _, tt := range tests {
		if got := Compute("billing", tt.relPath, tt.name); got != tt.want {
			t.Errorf("Compute(%s, %s) = %s, want %s", tt.relPath, tt.name, got, tt.want)
		}
	}
}

func TestModuleScopeQN(t *testing.T) {
	if got := ModuleScopeQN("billing", "app/main.py"); got != "billing.app.main.<module>" {
		t.Errorf("ModuleScopeQN = %s", got)
	}
}

func TestJVMQN(t *testing.T) {
	if got := JVMQN("com/example/Foo", "bar"); got != "com.example.Foo.bar" {
		t.Errorf("JVMQN = %s", got)
	}
	if got := JVMQN("com/example/Foo", ""); got != "com.example.Foo" {
		t.Errorf("JVMQN class only = %s", got)
	}
}

func TestSimpleName(t *testing.T) {
	if got := SimpleName("a.b.c"); got != "c" {
		t.Errorf("SimpleName = %s", got)
	}
	if got := SimpleName("plain"); got != "plain" {
		t.Errorf("SimpleName = %s", got)
	}
}
