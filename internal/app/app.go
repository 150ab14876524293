// Package app orchestrates the analysis pipeline: scan, hierarchy
// construction, edge extraction, flow synthesis, and output encoding.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"intmap/internal/config"
	"intmap/internal/extract"
	"intmap/internal/flow"
	"intmap/internal/format"
	"intmap/internal/graph"
	"intmap/internal/hierarchy"
	"intmap/internal/history"
	"intmap/internal/observability"
	"intmap/internal/parser"
	"intmap/internal/scan"
	"intmap/internal/watcher"
)

type App struct {
	Config  *config.Config
	Parser  *parser.Parser
	History *history.Store

	watcher *watcher.Watcher
}

func New(cfg *config.Config) (*App, error) {
	a := &App{
		Config: cfg,
		Parser: parser.New(),
	}

	if cfg.History.DBPath != "" {
		store, err := history.Open(cfg.History.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
		a.History = store
	}

	return a, nil
}

func (a *App) Close() error {
	if a.watcher != nil {
		_ = a.watcher.Close()
	}
	return a.History.Close()
}

// Analyze runs the full pipeline over the configured root and returns the
// canonical result. The registry is frozen between the hierarchy and
// extraction passes, so every identifier an edge can reference was assigned
// its id before the first edge is emitted.
func (a *App) Analyze(ctx context.Context) (*format.Result, error) {
	root, err := filepath.Abs(a.Config.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", a.Config.Root, err)
	}

	scanner, err := scan.New(root, a.Config.Exclude.Dirs, a.Config.Exclude.Files)
	if err != nil {
		return nil, err
	}
	files, err := scanner.Walk()
	if err != nil {
		return nil, err
	}

	return a.run(ctx, root, files)
}

// AnalyzeFile runs the pipeline over a single file, treating its directory
// as the analysis root.
func (a *App) AnalyzeFile(ctx context.Context, path string) (*format.Result, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve file %q: %w", path, err)
	}
	root := filepath.Dir(abs)
	files := []scan.SourceFile{{AbsPath: abs, RelPath: filepath.Base(abs)}}
	return a.run(ctx, root, files)
}

func (a *App) run(ctx context.Context, root string, files []scan.SourceFile) (*format.Result, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.run")
	defer span.End()

	started := time.Now()
	rootName := filepath.Base(root)

	g := graph.New()

	phaseStart := time.Now()
	sources, results, parseErrors := a.buildHierarchy(ctx, files, rootName)
	for _, mergeErr := range hierarchy.Merge(g, results) {
		slog.Warn("hierarchy merge", "error", mergeErr)
	}
	g.Registry().Freeze()
	observability.PhaseDuration.WithLabelValues("hierarchy").Observe(time.Since(phaseStart).Seconds())

	phaseStart = time.Now()
	a.extractEdges(ctx, g, files, sources, rootName)
	observability.PhaseDuration.WithLabelValues("extract").Observe(time.Since(phaseStart).Seconds())

	phaseStart = time.Now()
	analyzer := flow.NewAnalyzer(g, a.Config.Analyze.BoundarySegments, a.Config.Analyze.CriticalPaths)
	crossroads, paths := analyzer.Analyze()
	observability.PhaseDuration.WithLabelValues("flow").Observe(time.Since(phaseStart).Seconds())

	failed := failedFileCount(parseErrors)
	meta := format.Metadata{
		RunID:             uuid.NewString(),
		Root:              root,
		FormatVersion:     format.Version,
		AnalysisTimestamp: time.Now().UTC().Format(time.RFC3339),
		FilesAnalyzed:     len(files) - failed,
		FilesFailed:       failed,
	}
	res := format.BuildResult(g, crossroads, paths, parseErrors, meta)

	a.recordRun(res, root, time.Since(started))

	slog.Info("analysis complete",
		"root", root,
		"files_analyzed", res.Metadata.FilesAnalyzed,
		"files_failed", res.Metadata.FilesFailed,
		"components", res.Metadata.ComponentsFound,
		"edges", res.Metadata.TotalIntegrationPoints,
		"duration", time.Since(started).Round(time.Millisecond))

	return res, nil
}

// buildHierarchy runs pass 1 over all files on a bounded worker pool. Workers
// fill slots indexed by file position, so the merge below consumes results in
// the scanner's sorted order regardless of completion order.
func (a *App) buildHierarchy(ctx context.Context, files []scan.SourceFile, rootName string) ([][]byte, []*hierarchy.FileResult, []format.ParseError) {
	_, span := observability.Tracer.Start(ctx, "app.buildHierarchy")
	defer span.End()

	builder := hierarchy.NewBuilder(a.Parser)
	sources := make([][]byte, len(files))
	results := make([]*hierarchy.FileResult, len(files))
	readErrs := make([]error, len(files))

	a.forEachFile(len(files), func(i int) {
		src, err := os.ReadFile(files[i].AbsPath)
		if err != nil {
			readErrs[i] = err
			return
		}
		sources[i] = src
		res, err := builder.BuildFile(src, files[i].RelPath, rootName)
		if err != nil {
			readErrs[i] = err
			return
		}
		results[i] = res
	})

	var parseErrors []format.ParseError
	merged := make([]*hierarchy.FileResult, 0, len(results))
	for i, res := range results {
		if readErrs[i] != nil {
			slog.Warn("skipping file", "path", files[i].RelPath, "error", readErrs[i])
			parseErrors = append(parseErrors, format.ParseError{
				Path:    files[i].RelPath,
				Message: readErrs[i].Error(),
			})
			continue
		}
		for _, se := range res.Errors {
			parseErrors = append(parseErrors, format.ParseError{
				Path:    se.Path,
				Line:    se.Line,
				Message: se.Message,
			})
		}
		merged = append(merged, res)
	}
	return sources, merged, parseErrors
}

// extractEdges runs pass 2 on the pool and appends each file's edges to the
// graph in sorted file order.
func (a *App) extractEdges(ctx context.Context, g *graph.Graph, files []scan.SourceFile, sources [][]byte, rootName string) {
	_, span := observability.Tracer.Start(ctx, "app.extractEdges")
	defer span.End()

	extractor := extract.New(a.Parser, g)
	edges := make([]*extract.FileEdges, len(files))

	a.forEachFile(len(files), func(i int) {
		if sources[i] == nil {
			return
		}
		fe, err := extractor.ExtractFile(sources[i], files[i].RelPath, rootName)
		if err != nil {
			slog.Warn("edge extraction failed", "path", files[i].RelPath, "error", err)
			return
		}
		edges[i] = fe
	})

	for _, fe := range edges {
		if fe == nil {
			continue
		}
		for _, e := range fe.Edges {
			g.AddEdge(e)
		}
	}
}

func (a *App) forEachFile(n int, fn func(i int)) {
	workers := a.Config.Analyze.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

// WriteOutput encodes the result per the configured format and writes it to
// the configured path ("-" for stdout).
func (a *App) WriteOutput(res *format.Result) error {
	switch a.Config.Output.Format {
	case "compact":
		return format.WriteFile(a.Config.Output.Path, format.EncodeCompact(res), false)
	default:
		return format.WriteFile(a.Config.Output.Path, format.EncodeVerbose(res), true)
	}
}

// StartWatcher re-analyzes the root after each debounced batch of changes.
func (a *App) StartWatcher(ctx context.Context) error {
	root, err := filepath.Abs(a.Config.Root)
	if err != nil {
		return err
	}

	w, err := watcher.New(a.Config.Watch.Debounce, a.Config.Exclude.Dirs, a.Config.Exclude.Files, func(paths []string) {
		slog.Info("files changed, re-analyzing", "count", len(paths))
		res, err := a.Analyze(ctx)
		if err != nil {
			slog.Error("re-analysis failed", "error", err)
			return
		}
		if err := a.WriteOutput(res); err != nil {
			slog.Error("write output failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	if err := w.Watch(root); err != nil {
		_ = w.Close()
		return err
	}
	a.watcher = w
	return nil
}

func (a *App) recordRun(res *format.Result, root string, duration time.Duration) {
	observability.RunsTotal.Inc()
	observability.FilesAnalyzed.Set(float64(res.Metadata.FilesAnalyzed))
	observability.FilesFailed.Set(float64(res.Metadata.FilesFailed))
	observability.Components.Set(float64(res.Metadata.ComponentsFound))
	observability.Edges.Set(float64(res.Metadata.TotalIntegrationPoints))
	observability.Crossroads.Set(float64(res.Metadata.TotalCrossroads))

	unresolved := 0
	for _, e := range res.Edges {
		if !e.Resolved {
			unresolved++
		}
	}
	observability.UnresolvedEdges.Set(float64(unresolved))

	if a.History == nil {
		return
	}
	run := history.Run{
		RunID:      res.Metadata.RunID,
		Root:       root,
		Files:      res.Metadata.FilesAnalyzed,
		Failed:     res.Metadata.FilesFailed,
		Components: res.Metadata.ComponentsFound,
		Edges:      res.Metadata.TotalIntegrationPoints,
		Unresolved: unresolved,
		Crossroads: res.Metadata.TotalCrossroads,
		Duration:   duration,
	}
	if err := a.History.SaveRun(run); err != nil {
		slog.Warn("record run history", "error", err)
	}
}

// failedFileCount counts distinct files that produced parse errors.
func failedFileCount(errs []format.ParseError) int {
	seen := make(map[string]struct{}, len(errs))
	for _, e := range errs {
		seen[e.Path] = struct{}{}
	}
	return len(seen)
}
