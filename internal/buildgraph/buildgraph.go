// Package buildgraph computes reachability from an external build tool's
// dependency graph instead of parsed source. When a project carries an
// authoritative build graph, reusing it removes whole classes of
// source-analysis error.
package buildgraph

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/callsight/callsight/internal/graph"
)

// Runner executes one build-tool query and returns one target per line.
// kindOutput asks for the label-kind annotated variant.
type Runner interface {
	Query(ctx context.Context, expr string, kindOutput bool) ([]string, error)
}

// Target is one build target with its rule kind ("" when the kind query
// was unavailable and the name-pattern fallback applies).
type Target struct {
	Label string
	Kind  string
}

// Analyzer drives the query sequence and assembles targets into a call
// graph, where "may call" becomes "depends on".
type Analyzer struct {
	runner Runner
	log    *slog.Logger
}

// New creates an analyzer over a query runner.
func New(runner Runner, log *slog.Logger) *Analyzer {
	if log == nil {
		log = slog.Default()
	}
	return &Analyzer{runner: runner, log: log}
}

// Analyze enumerates targets (optionally narrowed to reverse dependencies
// of changed files), fetches each target's direct deps, classifies
// entrypoints, and runs the shared traversal. Only the initial enumeration
// query is fatal; per-target dep failures degrade to "assume no deps".
func (a *Analyzer) Analyze(ctx context.Context, changed []string) (*graph.CallGraph, error) {
	targets, err := a.enumerate(ctx, changed)
	if err != nil {
		return nil, err
	}
	a.log.Info("buildgraph.targets", "count", len(targets))

	g := graph.New()
	for _, t := range targets {
		g.AddFunction(&graph.FunctionNode{ID: t.Label, Name: t.Label})
	}

	for _, t := range targets {
		deps, err := a.runner.Query(ctx, fmt.Sprintf("deps(%s, 1)", t.Label), false)
		if err != nil {
			// Recoverable: a target we cannot query contributes no edges.
			a.log.Warn("buildgraph.deps_failed", "target", t.Label, "error", err)
			continue
		}
		for _, dep := range deps {
			if dep == t.Label {
				continue // deps(x, 1) includes x itself
			}
			g.AddCall(t.Label, dep)
		}
	}

	for _, t := range targets {
		if kind, ok := classify(t); ok {
			if err := g.MarkEntrypoint(t.Label, kind); err != nil {
				a.log.Warn("buildgraph.mark_failed", "target", t.Label, "error", err)
			}
		}
	}

	g.Reachability()
	return g, nil
}

// enumerate runs the initial target query. A failure here is scan-fatal:
// with no target list there is nothing to analyze.
func (a *Analyzer) enumerate(ctx context.Context, changed []string) ([]Target, error) {
	expr := "//..."
	if len(changed) > 0 {
		expr = fmt.Sprintf("rdeps(//..., set(%s))", strings.Join(changed, " "))
	}

	lines, err := a.runner.Query(ctx, expr, true)
	if err == nil {
		return parseKindLines(lines), nil
	}

	// The kind-annotated variant may be unsupported; retry plain before
	// giving up, leaving classification to the name-pattern fallback.
	plain, plainErr := a.runner.Query(ctx, expr, false)
	if plainErr != nil {
		return nil, fmt.Errorf("enumerate build targets: %w", err)
	}
	a.log.Warn("buildgraph.kind_query_failed", "error", err)
	targets := make([]Target, 0, len(plain))
	for _, label := range plain {
		if label = strings.TrimSpace(label); label != "" {
			targets = append(targets, Target{Label: label})
		}
	}
	return targets, nil
}

// parseKindLines parses "go_binary rule //app:main" lines. Lines that do
// not follow the shape are kept as bare labels.
func parseKindLines(lines []string) []Target {
	var out []Target
	for _, line := range lines {
		fields := strings.Fields(line)
		switch {
		case len(fields) >= 3:
			out = append(out, Target{Label: fields[len(fields)-1], Kind: fields[0]})
		case len(fields) == 1:
			out = append(out, Target{Label: fields[0]})
		}
	}
	return out
}

// classify decides whether a target is a traversal root. Rule kinds ending
// in _binary or _test are entrypoints; without a kind, the label's name
// pattern decides.
func classify(t Target) (graph.EntrypointKind, bool) {
	if t.Kind != "" {
		switch {
		case strings.HasSuffix(t.Kind, "_binary"):
			return graph.EntrypointTarget, true
		case strings.HasSuffix(t.Kind, "_test"):
			return graph.EntrypointTest, true
		}
		return "", false
	}

	name := t.Label
	if idx := strings.LastIndex(name, ":"); idx >= 0 {
		name = name[idx+1:]
	}
	switch {
	case strings.HasSuffix(name, "_test") || strings.HasSuffix(name, "_tests"):
		return graph.EntrypointTest, true
	case name == "main" || strings.HasSuffix(name, "_bin") || strings.HasSuffix(name, "_binary"):
		return graph.EntrypointTarget, true
	}
	return "", false
}
