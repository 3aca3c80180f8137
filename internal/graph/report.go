package graph

import "sort"

// DynamicCodeWarning records a construct that defeats static call
// resolution (eval, reflection, dynamic dispatch). Any warning downgrades
// the whole project to conservative mode.
type DynamicCodeWarning struct {
	File        string `json:"file"`
	Line        int    `json:"line"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

// VulnerabilityReachability is the per-vulnerability verdict.
type VulnerabilityReachability struct {
	ID        string   `json:"id"`
	Package   string   `json:"package"`
	Version   string   `json:"version"`
	Functions []string `json:"functions"`
	Reachable bool     `json:"reachable"`
	// CallChain is one example path from an entrypoint to the matched
	// function, as an ordered node-ID sequence. Empty when not reachable or
	// when conservative mode fired without a concrete path.
	CallChain []string `json:"call_chain,omitempty"`
}

// ReachabilityReport is the immutable terminal output of one analysis run.
// The graph itself is discarded after the report is produced.
type ReachabilityReport struct {
	AllFunctions    []string `json:"all_functions"`
	Reachable       []string `json:"reachable_functions"`
	Unreachable     []string `json:"unreachable_functions"`
	Entrypoints     []string `json:"entrypoints"`
	Conservative    bool     `json:"conservative_mode"`
	Vulnerabilities []VulnerabilityReachability `json:"vulnerabilities,omitempty"`
	Warnings        []DynamicCodeWarning        `json:"dynamic_code_warnings,omitempty"`
	// FilesByLanguage counts analyzed source files per language.
	FilesByLanguage map[string]int `json:"files_by_language,omitempty"`
	// SkippedFiles lists files dropped with a parse or decode failure.
	SkippedFiles []string `json:"skipped_files,omitempty"`
}

// BuildReport snapshots the graph's current reachability state. Call after
// Reachability or MarkAllReachable.
func (g *CallGraph) BuildReport() *ReachabilityReport {
	report := &ReachabilityReport{
		AllFunctions: make([]string, 0, len(g.nodes)),
	}
	for id, node := range g.nodes {
		report.AllFunctions = append(report.AllFunctions, id)
		if node.Reachable {
			report.Reachable = append(report.Reachable, id)
		} else {
			report.Unreachable = append(report.Unreachable, id)
		}
	}
	sort.Strings(report.AllFunctions)
	sort.Strings(report.Reachable)
	sort.Strings(report.Unreachable)
	report.Entrypoints = g.Entrypoints()
	return report
}
