package entrypoints

import (
	"testing"

	"github.com/callsight/callsight/internal/bytecode"
	"github.com/callsight/callsight/internal/graph"
	"github.com/callsight/callsight/internal/lang"
	"github.com/callsight/callsight/internal/source"
)

func newTestDetector(t *testing.T) *Detector {
	t.Helper()
	p, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	return NewDetector(p)
}

func kinds(matches []Match) map[string]graph.EntrypointKind {
	out := make(map[string]graph.EntrypointKind, len(matches))
	for _, m := range matches {
		out[m.ID] = m.Kind
	}
	return out
}

func TestDetectPythonMainGuard(t *testing.T) {
	d := newTestDetector(t)
	ex := &source.Extraction{
		File:         "app/cli.py",
		Language:     lang.Python,
		ModuleID:     "proj.app.cli.<module>",
		HasMainGuard: true,
		Functions: []*graph.FunctionNode{
			{ID: "proj.app.cli.<module>", Name: "<module>", IsModuleScope: true},
			{ID: "proj.app.cli.run", Name: "run", IsPublic: true},
		},
	}

	got := kinds(d.DetectSource(ex))
	if got["proj.app.cli.<module>"] != graph.EntrypointMain {
		t.Errorf("module kind = %q, want main", got["proj.app.cli.<module>"])
	}
	if _, ok := got["proj.app.cli.run"]; ok {
		t.Error("plain function must not be an entrypoint")
	}
}

func TestDetectPythonDecorators(t *testing.T) {
	d := newTestDetector(t)
	ex := &source.Extraction{
		File:     "app/views.py",
		Language: lang.Python,
		Functions: []*graph.FunctionNode{
			{ID: "v.list", Name: "list_invoices", Decorators: []string{`app.route("/invoices")`}},
			{ID: "v.job", Name: "nightly_sync", Decorators: []string{"shared_task"}},
			{ID: "v.plain", Name: "format_row"},
		},
	}

	got := kinds(d.DetectSource(ex))
	if got["v.list"] != graph.EntrypointHandler {
		t.Errorf("route-decorated function kind = %q, want handler", got["v.list"])
	}
	if got["v.job"] != graph.EntrypointJob {
		t.Errorf("task-decorated function kind = %q, want job", got["v.job"])
	}
	if _, ok := got["v.plain"]; ok {
		t.Error("undecorated function must not match")
	}
}

func TestDetectRailsConventions(t *testing.T) {
	d := newTestDetector(t)

	tests := []struct {
		name string
		ex   *source.Extraction
		id   string
		want graph.EntrypointKind
	}{
		{
			name: "controller public action",
			ex: &source.Extraction{
				File:     "app/controllers/invoices_controller.rb",
				Language: lang.Ruby,
				Functions: []*graph.FunctionNode{
					{ID: "c.index", Name: "index", IsPublic: true},
				},
			},
			id:   "c.index",
			want: graph.EntrypointHandler,
		},
		{
			name: "job perform",
			ex: &source.Extraction{
				File:     "app/jobs/sync_job.rb",
				Language: lang.Ruby,
				Functions: []*graph.FunctionNode{
					{ID: "j.perform", Name: "perform"},
				},
			},
			id:   "j.perform",
			want: graph.EntrypointJob,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := kinds(d.DetectSource(tt.ex))
			if got[tt.id] != tt.want {
				t.Errorf("kind = %q, want %q", got[tt.id], tt.want)
			}
		})
	}
}

func TestDetectRubyPrivateMethodNotHandler(t *testing.T) {
	d := newTestDetector(t)
	ex := &source.Extraction{
		File:     "app/controllers/invoices_controller.rb",
		Language: lang.Ruby,
		Functions: []*graph.FunctionNode{
			{ID: "c.helper", Name: "load_invoice", IsPublic: false},
		},
	}
	if got := kinds(d.DetectSource(ex)); len(got) != 0 {
		t.Errorf("private controller method matched: %v", got)
	}
}

func TestDetectExpressRouteModule(t *testing.T) {
	d := newTestDetector(t)
	ex := &source.Extraction{
		File:     "src/routes/invoices.js",
		Language: lang.JavaScript,
		ModuleID: "proj.src.routes.invoices.<module>",
		Functions: []*graph.FunctionNode{
			{ID: "proj.src.routes.invoices.<module>", Name: "<module>", IsModuleScope: true},
		},
		Calls: []source.CallSite{
			{CallerID: "proj.src.routes.invoices.<module>", Callee: "router.get"},
		},
	}

	got := kinds(d.DetectSource(ex))
	if got[ex.ModuleID] != graph.EntrypointHandler {
		t.Errorf("route module kind = %q, want handler", got[ex.ModuleID])
	}
}

func TestDetectGoMain(t *testing.T) {
	d := newTestDetector(t)
	ex := &source.Extraction{
		File:     "cmd/server/main.go",
		Language: lang.Go,
		Functions: []*graph.FunctionNode{
			{ID: "proj.cmd.server.main.<module>", Name: "<module>", IsModuleScope: true},
			{ID: "proj.cmd.server.main.main", Name: "main"},
		},
	}
	got := kinds(d.DetectSource(ex))
	if got["proj.cmd.server.main.main"] != graph.EntrypointMain {
		t.Errorf("main kind = %q", got["proj.cmd.server.main.main"])
	}
}

func TestDetectGoTestFunctions(t *testing.T) {
	d := newTestDetector(t)
	ex := &source.Extraction{
		File:       "internal/billing/compute_test.go",
		Language:   lang.Go,
		IsTestFile: true,
		Functions: []*graph.FunctionNode{
			{ID: "t.TestCompute", Name: "TestCompute", IsTest: true},
			{ID: "t.helper", Name: "makeFixture", IsTest: true},
		},
	}
	got := kinds(d.DetectSource(ex))
	if got["t.TestCompute"] != graph.EntrypointTest {
		t.Errorf("Test function kind = %q", got["t.TestCompute"])
	}
	if _, ok := got["t.helper"]; ok {
		t.Error("test helper without Test prefix must not be a root")
	}
}

func TestDetectJestModule(t *testing.T) {
	d := newTestDetector(t)
	ex := &source.Extraction{
		File:       "src/invoice.test.js",
		Language:   lang.JavaScript,
		ModuleID:   "proj.src.invoice.test.<module>",
		IsTestFile: true,
		HasTestDSL: true,
		Functions: []*graph.FunctionNode{
			{ID: "proj.src.invoice.test.<module>", Name: "<module>", IsModuleScope: true},
		},
	}
	got := kinds(d.DetectSource(ex))
	if got[ex.ModuleID] != graph.EntrypointTest {
		t.Errorf("test-DSL module kind = %q, want test", got[ex.ModuleID])
	}
}

func TestDetectSpringAnnotations(t *testing.T) {
	d := newTestDetector(t)
	ex := &source.Extraction{
		File:     "src/main/java/InvoiceController.java",
		Language: lang.Java,
		Functions: []*graph.FunctionNode{
			{ID: "j.list", Name: "listInvoices", Decorators: []string{`GetMapping("/invoices")`}},
			{ID: "j.test", Name: "shouldComputeTotals", Decorators: []string{"Test"}},
		},
	}
	got := kinds(d.DetectSource(ex))
	if got["j.list"] != graph.EntrypointHandler {
		t.Errorf("annotated handler kind = %q", got["j.list"])
	}
	if got["j.test"] != graph.EntrypointTest {
		t.Errorf("annotated test kind = %q", got["j.test"])
	}
}

func TestDetectRustAttributes(t *testing.T) {
	d := newTestDetector(t)
	ex := &source.Extraction{
		File:     "src/main.rs",
		Language: lang.Rust,
		Functions: []*graph.FunctionNode{
			{ID: "r.main", Name: "main"},
			{ID: "r.handler", Name: "list", Decorators: []string{`get("/invoices")`}},
			{ID: "r.test", Name: "totals_add_up", Decorators: []string{"test"}},
		},
	}
	got := kinds(d.DetectSource(ex))
	if got["r.main"] != graph.EntrypointMain {
		t.Errorf("main kind = %q", got["r.main"])
	}
	if got["r.handler"] != graph.EntrypointHandler {
		t.Errorf("attribute handler kind = %q", got["r.handler"])
	}
	if got["r.test"] != graph.EntrypointTest {
		t.Errorf("test attribute kind = %q", got["r.test"])
	}
}

func TestDetectExportedAPI(t *testing.T) {
	p, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	d := NewDetector(p)
	d.ExportedAPI = true

	ex := &source.Extraction{
		File:     "lib/tax.py",
		Language: lang.Python,
		Functions: []*graph.FunctionNode{
			{ID: "l.pub", Name: "lookup_rate", IsPublic: true},
			{ID: "l.priv", Name: "_load_table"},
		},
	}
	got := kinds(d.DetectSource(ex))
	if got["l.pub"] != graph.EntrypointExport {
		t.Errorf("public function kind = %q, want export", got["l.pub"])
	}
	if _, ok := got["l.priv"]; ok {
		t.Error("private function must not be exported")
	}
}

func TestDetectClassMethod(t *testing.T) {
	d := newTestDetector(t)

	tests := []struct {
		name   string
		method bytecode.Method
		want   graph.EntrypointKind
		ok     bool
	}{
		{
			name: "public static main",
			method: bytecode.Method{
				Name:        "main",
				Descriptor:  "([Ljava/lang/String;)V",
				AccessFlags: bytecode.AccPublic | bytecode.AccStatic,
			},
			want: graph.EntrypointMain,
			ok:   true,
		},
		{
			name: "instance main is not an entrypoint",
			method: bytecode.Method{
				Name:        "main",
				Descriptor:  "([Ljava/lang/String;)V",
				AccessFlags: bytecode.AccPublic,
			},
		},
		{
			name: "test-named public method",
			method: bytecode.Method{
				Name:        "testTotals",
				Descriptor:  "()V",
				AccessFlags: bytecode.AccPublic,
			},
			want: graph.EntrypointTest,
			ok:   true,
		},
		{
			name: "private helper",
			method: bytecode.Method{
				Name:        "computeTotals",
				Descriptor:  "()V",
				AccessFlags: bytecode.AccPrivate,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := d.DetectClassMethod(&tt.method)
			if ok != tt.ok || kind != tt.want {
				t.Errorf("DetectClassMethod = (%q, %v), want (%q, %v)", kind, ok, tt.want, tt.ok)
			}
		})
	}
}
