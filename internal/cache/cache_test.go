package cache

import (
	"path/filepath"
	"testing"

	"github.com/callsight/callsight/internal/graph"
	"github.com/callsight/callsight/internal/lang"
	"github.com/callsight/callsight/internal/source"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "callsight.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func sampleExtraction() *source.Extraction {
	return &source.Extraction{
		File:     "app/main.py",
		Language: lang.Python,
		ModuleID: "proj.app.main.<module>",
		Functions: []*graph.FunctionNode{
			{ID: "proj.app.main.<module>", Name: "<module>", IsModuleScope: true},
			{ID: "proj.app.main.run", Name: "run", File: "app/main.py", Line: 3},
		},
		Calls: []source.CallSite{
			{CallerID: "proj.app.main.run", Callee: "helper", Line: 4},
		},
		Imports:      map[string]string{"helper": "proj.lib.helper"},
		HasMainGuard: true,
	}
}

func TestCacheRoundTrip(t *testing.T) {
	c := openTestCache(t)
	content := []byte("def run():\n    helper()\n")
	hash := Hash(content)

	if err := c.Put("app/main.py", hash, sampleExtraction()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := c.Get("app/main.py", hash)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got.Functions) != 2 || got.Functions[1].ID != "proj.app.main.run" {
		t.Errorf("functions = %+v", got.Functions)
	}
	if !got.HasMainGuard {
		t.Error("HasMainGuard lost in round trip")
	}
	if got.Imports["helper"] != "proj.lib.helper" {
		t.Errorf("imports = %v", got.Imports)
	}
}

func TestCacheMissOnChangedContent(t *testing.T) {
	c := openTestCache(t)
	if err := c.Put("app/main.py", Hash([]byte("v1")), sampleExtraction()); err != nil {
		t.Fatal(err)
	}

	_, ok, err := c.Get("app/main.py", Hash([]byte("v2")))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("stale hash must miss")
	}
}

func TestCacheMissOnUnknownFile(t *testing.T) {
	c := openTestCache(t)
	_, ok, err := c.Get("never/seen.py", Hash([]byte("x")))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("unknown file must miss")
	}
}

func TestCachePut_Replaces(t *testing.T) {
	c := openTestCache(t)
	ex := sampleExtraction()
	if err := c.Put("app/main.py", Hash([]byte("v1")), ex); err != nil {
		t.Fatal(err)
	}

	ex2 := sampleExtraction()
	ex2.Functions = ex2.Functions[:1]
	if err := c.Put("app/main.py", Hash([]byte("v2")), ex2); err != nil {
		t.Fatal(err)
	}

	got, ok, err := c.Get("app/main.py", Hash([]byte("v2")))
	if err != nil || !ok {
		t.Fatalf("Get after replace: ok=%v err=%v", ok, err)
	}
	if len(got.Functions) != 1 {
		t.Errorf("functions = %d, want replaced payload", len(got.Functions))
	}
}

func TestCachePrune(t *testing.T) {
	c := openTestCache(t)
	for _, rel := range []string{"a.py", "b.py", "c.py"} {
		if err := c.Put(rel, Hash([]byte(rel)), &source.Extraction{File: rel}); err != nil {
			t.Fatal(err)
		}
	}

	if err := c.Prune(map[string]bool{"a.py": true}); err != nil {
		t.Fatalf("Prune: %v", err)
	}

	if _, ok, _ := c.Get("a.py", Hash([]byte("a.py"))); !ok {
		t.Error("kept file evicted")
	}
	for _, rel := range []string{"b.py", "c.py"} {
		if _, ok, _ := c.Get(rel, Hash([]byte(rel))); ok {
			t.Errorf("%s survived prune", rel)
		}
	}
}

func TestHashStability(t *testing.T) {
	a := Hash([]byte("same content"))
	b := Hash([]byte("same content"))
	if a != b {
		t.Error("hash not deterministic")
	}
	if a == Hash([]byte("other content")) {
		t.Error("distinct content collided")
	}
}
