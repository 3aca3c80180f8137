package scan

import (
	"github.com/callsight/callsight/internal/bytecode"
	"github.com/callsight/callsight/internal/entrypoints"
	"github.com/callsight/callsight/internal/fqn"
	"github.com/callsight/callsight/internal/graph"
	"github.com/callsight/callsight/internal/lang"
)

// classResult is a decoded .class file ready for merging.
type classResult struct {
	relPath string
	cls     *bytecode.ClassFile
}

func decodeClass(relPath string, data []byte) (*classResult, error) {
	cls, err := bytecode.Parse(data)
	if err != nil {
		return nil, err
	}
	return &classResult{relPath: relPath, cls: cls}, nil
}

// mergeInto adds one node per method and an edge per recovered invoke
// target. Targets are exact JVM qualified names: they link up when the
// callee's class was also scanned and stay dead-end edges otherwise.
func (c *classResult) mergeInto(g *graph.CallGraph) {
	for i := range c.cls.Methods {
		m := &c.cls.Methods[i]
		id := fqn.JVMQN(c.cls.ClassName, m.Name)
		g.AddFunction(&graph.FunctionNode{
			ID:       id,
			Name:     m.Name,
			File:     c.relPath,
			Language: lang.JVMBytecode,
			IsPublic: m.IsPublic(),
		})
		for _, ref := range m.Calls {
			g.AddCall(id, fqn.JVMQN(ref.Class, ref.Name))
		}
	}
}

// entrypoints classifies the class's methods by access flags and signature
// conventions.
func (c *classResult) entrypoints(d *entrypoints.Detector) []entrypoints.Match {
	var out []entrypoints.Match
	for i := range c.cls.Methods {
		m := &c.cls.Methods[i]
		if kind, ok := d.DetectClassMethod(m); ok {
			out = append(out, entrypoints.Match{
				ID:   fqn.JVMQN(c.cls.ClassName, m.Name),
				Kind: kind,
			})
		}
	}
	return out
}
