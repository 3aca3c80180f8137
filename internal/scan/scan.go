// Package scan is the orchestrator: it discovers files, drives the
// per-file analyzers, owns the call graph for one run, and assembles the
// terminal report. Workers parse in parallel; every graph mutation happens
// in this package, single-threaded.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/callsight/callsight/internal/buildgraph"
	"github.com/callsight/callsight/internal/cache"
	"github.com/callsight/callsight/internal/config"
	"github.com/callsight/callsight/internal/discover"
	"github.com/callsight/callsight/internal/entrypoints"
	"github.com/callsight/callsight/internal/graph"
	"github.com/callsight/callsight/internal/lang"
	"github.com/callsight/callsight/internal/resolve"
	"github.com/callsight/callsight/internal/source"
	"github.com/callsight/callsight/internal/vulns"
)

// Strategy selects how reachability is computed.
type Strategy string

const (
	// StrategyAuto prefers the build graph when the project has one.
	StrategyAuto Strategy = "auto"
	// StrategySource always parses source.
	StrategySource Strategy = "source"
	// StrategyBuildGraph requires a build-graph query runner.
	StrategyBuildGraph Strategy = "buildgraph"
)

// Options configures one scan.
type Options struct {
	Root string
	// Changed narrows incremental scans to a changed-file set.
	Changed []string
	// Vulnerabilities are checked against the traversed graph.
	Vulnerabilities []vulns.Vulnerability
	Strategy        Strategy
	// BuildRunner overrides the default bazel runner.
	BuildRunner buildgraph.Runner
	Logger      *slog.Logger
}

// fileResult is one worker's output: exactly one of ex/err is meaningful.
type fileResult struct {
	info discover.FileInfo
	hash string
	ex   *source.Extraction
	cls  *classResult
	err  error
	// cached marks extractions served from the cache.
	cached bool
}

// Run performs one full analysis and returns the report. Only an
// unreadable project root is fatal; per-file failures are warnings in the
// report.
func Run(ctx context.Context, opts Options) (*graph.ReachabilityReport, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if _, err := os.Stat(opts.Root); err != nil {
		return nil, fmt.Errorf("project root: %w", err)
	}

	cfg := config.Load(opts.Root)
	project := cfg.EffectiveProjectName(opts.Root)
	log.Info("scan.start", "project", project, "root", opts.Root)

	strategy := opts.Strategy
	if strategy == "" {
		strategy = StrategyAuto
	}
	if strategy == StrategyAuto && (opts.BuildRunner != nil || buildgraph.HasWorkspace(opts.Root)) {
		strategy = StrategyBuildGraph
	}
	if strategy == StrategyBuildGraph {
		return runBuildGraph(ctx, opts, log)
	}

	return runSource(ctx, opts, cfg, project, log)
}

// runBuildGraph substitutes the build tool's dependency graph for source
// parsing.
func runBuildGraph(ctx context.Context, opts Options, log *slog.Logger) (*graph.ReachabilityReport, error) {
	runner := opts.BuildRunner
	if runner == nil {
		runner = &buildgraph.BazelRunner{Workspace: opts.Root}
	}

	g, err := buildgraph.New(runner, log).Analyze(ctx, opts.Changed)
	if err != nil {
		return nil, err
	}
	report := g.BuildReport()
	report.Vulnerabilities = vulns.Check(g, opts.Vulnerabilities)
	log.Info("scan.done", "strategy", "buildgraph", "targets", len(report.AllFunctions))
	return report, nil
}

func runSource(ctx context.Context, opts Options, cfg *config.Config, project string, log *slog.Logger) (*graph.ReachabilityReport, error) {
	start := time.Now()

	files, err := discover.Discover(ctx, opts.Root, &discover.Options{
		IncludeDependencies: cfg.EffectiveIncludeDependencies(),
		ExtraSkipDirs:       cfg.Scan.SkipDirs,
	})
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	log.Info("scan.discovered", "files", len(files))

	var store *cache.Cache
	if cfg.EffectiveCache() {
		store, err = cache.Open(cfg.EffectiveCachePath(opts.Root))
		if err != nil {
			log.Warn("scan.cache_unavailable", "error", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	goModule, err := resolve.GoModulePath(opts.Root)
	if err != nil {
		log.Warn("scan.gomod_unreadable", "error", err)
	}

	results := extractAll(ctx, files, project, store, log)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	patterns, err := entrypoints.Default()
	if err != nil {
		return nil, err
	}
	detector := entrypoints.NewDetector(patterns)
	detector.ExportedAPI = cfg.EffectiveExportedAPI()

	report := merge(results, project, goModule, detector, store, opts.Vulnerabilities, log)

	if store != nil {
		present := make(map[string]bool, len(files))
		for _, f := range files {
			present[f.RelPath] = true
		}
		if err := store.Prune(present); err != nil {
			log.Warn("scan.cache_prune_failed", "error", err)
		}
	}

	log.Info("scan.done",
		"strategy", "source",
		"functions", len(report.AllFunctions),
		"reachable", len(report.Reachable),
		"conservative", report.Conservative,
		"elapsed", time.Since(start))
	return report, nil
}

// extractAll parses files with a bounded worker pool. Workers only read and
// parse; results carry immutable batches back to the single-threaded merge.
func extractAll(ctx context.Context, files []discover.FileInfo, project string, store *cache.Cache, log *slog.Logger) []*fileResult {
	results := make([]*fileResult, len(files))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for i, f := range files {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = extractOne(f, project, store)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		log.Warn("scan.extract_interrupted", "error", err)
	}
	return results
}

func extractOne(f discover.FileInfo, project string, store *cache.Cache) *fileResult {
	res := &fileResult{info: f}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		res.err = fmt.Errorf("read: %w", err)
		return res
	}
	res.hash = cache.Hash(data)

	if f.Language == lang.JVMBytecode {
		res.cls, res.err = decodeClass(f.RelPath, data)
		return res
	}

	if store != nil {
		if ex, ok, _ := store.Get(f.RelPath, res.hash); ok {
			res.ex = ex
			res.cached = true
			return res
		}
	}

	res.ex, res.err = source.Extract(project, f.RelPath, data, f.Language)
	return res
}

// merge funnels all worker batches into one graph, marks entrypoints, runs
// the traversal (or the conservative override), and snapshots the report.
func merge(results []*fileResult, project, goModule string, detector *entrypoints.Detector, store *cache.Cache, vulnList []vulns.Vulnerability, log *slog.Logger) *graph.ReachabilityReport {
	var (
		extractions []*source.Extraction
		warnings    []graph.DynamicCodeWarning
		skipped     []string
		byLanguage  = make(map[string]int)
		matches     []entrypoints.Match
	)

	g := graph.New()

	for _, res := range results {
		if res == nil {
			continue
		}
		if res.err != nil {
			// One bad file never aborts the run.
			log.Warn("scan.file_skipped", "file", res.info.RelPath, "error", res.err)
			skipped = append(skipped, res.info.RelPath)
			continue
		}
		byLanguage[string(res.info.Language)]++

		if res.cls != nil {
			res.cls.mergeInto(g)
			matches = append(matches, res.cls.entrypoints(detector)...)
			continue
		}

		ex := res.ex
		if goModule != "" && ex.Language == lang.Go {
			resolve.RewriteGoImports(ex.Imports, goModule, project)
		}
		extractions = append(extractions, ex)
		warnings = append(warnings, ex.Warnings...)
		matches = append(matches, detector.DetectSource(ex)...)

		if store != nil && !res.cached {
			if err := store.Put(ex.File, res.hash, ex); err != nil {
				log.Warn("scan.cache_write_failed", "file", ex.File, "error", err)
			}
		}
	}

	resolve.Link(g, project, extractions)

	for _, m := range matches {
		if err := g.MarkEntrypoint(m.ID, m.Kind); err != nil {
			log.Warn("scan.entrypoint_unmatched", "id", m.ID, "error", err)
		}
	}

	conservative := len(warnings) > 0
	if conservative {
		// Any dynamic construct anywhere escalates the whole run.
		log.Warn("scan.conservative", "warnings", len(warnings))
		g.MarkAllReachable()
	} else {
		g.Reachability()
	}

	report := g.BuildReport()
	report.Conservative = conservative
	report.Warnings = warnings
	report.SkippedFiles = skipped
	report.FilesByLanguage = byLanguage
	report.Vulnerabilities = vulns.Check(g, vulnList)
	return report
}
