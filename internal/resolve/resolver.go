// Package resolve links call sites from per-file extractions to function
// nodes in the graph. Resolution is lenient: a callee written as "obj.method"
// can still land on the right node through its simple name when the receiver
// type is unknown.
package resolve

import (
	"strings"

	"github.com/callsight/callsight/internal/fqn"
	"github.com/callsight/callsight/internal/graph"
	"github.com/callsight/callsight/internal/source"
)

// Registry indexes function IDs by qualified name and simple name. It is
// filled during the sequential merge phase and read-only afterwards.
type Registry struct {
	exact map[string]bool
	// byName maps simple names to qualified names in insertion order, so
	// ambiguous lookups resolve deterministically.
	byName map[string][]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		exact:  make(map[string]bool),
		byName: make(map[string][]string),
	}
}

// Add registers one function ID.
func (r *Registry) Add(id string) {
	if id == "" || r.exact[id] {
		return
	}
	r.exact[id] = true
	simple := fqn.SimpleName(id)
	r.byName[simple] = append(r.byName[simple], id)
}

// Exists reports whether a qualified name is registered.
func (r *Registry) Exists(id string) bool {
	return r.exact[id]
}

// Size returns the number of registered IDs.
func (r *Registry) Size() int {
	return len(r.exact)
}

// Resolve maps a callee as written in source to a registered function ID.
// Strategy, in priority order:
//  1. Exact match: the callee is already a registered qualified name
//     (bytecode edges arrive this way).
//  2. Same-module match: the callee defined in the calling file.
//  3. Import-map match: the callee's first segment is an imported name.
//  4. Project-wide lookup by simple name, preferring candidates whose
//     qualified name ends with the callee as written.
//
// Returns "" when nothing matches; the caller records a dead-end edge.
func (r *Registry) Resolve(callee, moduleQN string, imports map[string]string) string {
	prefix, suffix, _ := strings.Cut(callee, ".")

	if r.exact[callee] {
		return callee
	}
	if id := r.sameModule(callee, suffix, moduleQN); id != "" {
		return id
	}
	if id := r.viaImports(prefix, suffix, imports); id != "" {
		return id
	}
	return r.byNameLookup(callee, suffix, moduleQN)
}

func (r *Registry) sameModule(callee, suffix, moduleQN string) string {
	if r.exact[moduleQN+"."+callee] {
		return moduleQN + "." + callee
	}
	// Method call on a local object: self.helper / this.helper.
	if suffix != "" && r.exact[moduleQN+"."+suffix] {
		return moduleQN + "." + suffix
	}
	return ""
}

func (r *Registry) viaImports(prefix, suffix string, imports map[string]string) string {
	resolved, ok := imports[prefix]
	if !ok {
		return ""
	}
	candidate := resolved
	if suffix != "" {
		candidate = resolved + "." + suffix
	}
	if r.exact[candidate] {
		return candidate
	}
	// Imported module defines the symbol one level deeper (class method,
	// re-export). Insertion order keeps the pick stable.
	if suffix != "" {
		for _, qn := range r.byName[fqn.SimpleName(suffix)] {
			if strings.HasPrefix(qn, resolved+".") {
				return qn
			}
		}
	}
	return ""
}

func (r *Registry) byNameLookup(callee, suffix, moduleQN string) string {
	lookup := callee
	if suffix != "" {
		lookup = suffix
	}
	candidates := r.byName[fqn.SimpleName(lookup)]
	if len(candidates) == 0 {
		return ""
	}
	if len(candidates) == 1 {
		return candidates[0]
	}

	// Prefer candidates matching the full dotted callee (Class.method).
	if suffix != "" {
		for _, qn := range candidates {
			if strings.HasSuffix(qn, "."+callee) {
				return qn
			}
		}
	}
	return closestTo(candidates, moduleQN)
}

// closestTo picks the candidate sharing the longest dot-segment prefix with
// the caller's module, approximating "nearest in the project tree". Ties keep
// the earliest-registered candidate.
func closestTo(candidates []string, moduleQN string) string {
	best := ""
	bestLen := -1
	for _, c := range candidates {
		if n := commonSegments(c, moduleQN); n > bestLen {
			bestLen = n
			best = c
		}
	}
	return best
}

func commonSegments(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	n := 0
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] != bs[i] {
			break
		}
		n++
	}
	return n
}

// Link merges extractions into the graph and resolves their call sites.
// Pass 1 inserts every function so cross-file calls resolve regardless of
// file order; pass 2 links calls. Unresolvable callees become dead-end
// edges under their written name, which traversal skips.
func Link(g *graph.CallGraph, project string, extractions []*source.Extraction) {
	reg := NewRegistry()

	for _, ex := range extractions {
		for _, fn := range ex.Functions {
			g.AddFunction(fn)
			reg.Add(fn.ID)
		}
	}

	for _, ex := range extractions {
		moduleQN := fqn.ModuleQN(project, ex.File)
		for _, call := range ex.Calls {
			target := reg.Resolve(call.Callee, moduleQN, ex.Imports)
			if target == "" {
				target = call.Callee
			}
			g.AddCall(call.CallerID, target)
		}
	}
}
