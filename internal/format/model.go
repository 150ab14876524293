// # internal/format/model.go

// Package format holds the canonical in-memory analysis result and its two
// presentations: the verbose nested payload and the compact id-interned
// payload. Both formatters are pure transforms over the Result; the compact
// form is always derived, never the model of record. The decoder inverts the
// compact transform exactly: decode(encode(X)) == Canonicalize(X).
package format

import (
	"sort"
	"strings"

	"intmap/internal/flow"
	"intmap/internal/graph"
)

type Metadata struct {
	RunID                  string `json:"run_id"`
	Root                   string `json:"root"`
	FormatVersion          string `json:"format_version"`
	AnalysisTimestamp      string `json:"analysis_timestamp"`
	FilesAnalyzed          int    `json:"files_analyzed"`
	FilesFailed            int    `json:"files_failed"`
	ComponentsFound        int    `json:"components_found"`
	TotalIntegrationPoints int    `json:"total_integration_points"`
	TotalCrossroads        int    `json:"total_crossroads"`
}

type Component struct {
	ID        int      `json:"id"`
	FQN       string   `json:"fqn"`
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	ParentID  int      `json:"parent_id,omitempty"`
	LineRange [2]int   `json:"line_range"`
	Path      string   `json:"path,omitempty"`
	Docstring string   `json:"docstring,omitempty"`
	Bases     []string `json:"bases,omitempty"`
	Redefined [][2]int `json:"redefined,omitempty"`
}

// Edge is one integration edge in fqn space. Target is the resolved
// reference text; TargetID 0 marks the unresolved sentinel.
type Edge struct {
	Kind     string `json:"kind"`
	SourceID int    `json:"source_id"`
	Source   string `json:"source"`
	TargetID int    `json:"target_id"`
	Target   string `json:"target"`
	Resolved bool   `json:"resolved"`
	Line     int    `json:"line"`
	Payload
}

// Payload carries kind-specific edge fields, flattened into the edge record.
type Payload struct {
	Items          []string  `json:"items,omitempty"`
	Star           bool      `json:"star,omitempty"`
	Note           string    `json:"note,omitempty"`
	Args           []CallArg `json:"args,omitempty"`
	ReturnCaptured bool      `json:"return_captured,omitempty"`
	ReturnVar      string    `json:"return_var,omitempty"`
	DataFlow       string    `json:"data_flow,omitempty"`
	Base           string    `json:"base,omitempty"`
	Overridden     []string  `json:"overridden_methods,omitempty"`
	Expr           string    `json:"expr,omitempty"`
}

type CallArg struct {
	Name  string `json:"name,omitempty"`
	Value string `json:"value"`
	Type  string `json:"type,omitempty"`
}

type Crossroad struct {
	ID           string    `json:"id"`
	Components   [2]string `json:"components"`
	ComponentIDs [2]int    `json:"-"`
	EdgeCount    int       `json:"edge_count"`
	Kinds        []string  `json:"kinds"`
	Criticality  string    `json:"criticality"`
}

type CriticalPath struct {
	ID         string `json:"id"`
	EntryPoint string `json:"entry_point"`
	EntryID    int    `json:"-"`
	CallCount  int    `json:"call_count"`
	Complexity string `json:"complexity"`
}

type ParseError struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Result is the canonical model both formatters derive from.
type Result struct {
	Metadata      Metadata
	Components    []Component
	Edges         []Edge
	Crossroads    []Crossroad
	CriticalPaths []CriticalPath
	ParseErrors   []ParseError
}

// BuildResult flattens the graph and analysis products into the canonical
// model. Metadata counts for components, integration points, and crossroads
// are filled in here.
func BuildResult(g *graph.Graph, crossroads []flow.Crossroad, paths []flow.CriticalPath,
	parseErrors []ParseError, meta Metadata) *Result {

	res := &Result{Metadata: meta, ParseErrors: parseErrors}

	for _, c := range g.Components() {
		fc := Component{
			ID:        int(c.ID),
			FQN:       c.FQN,
			Name:      c.Name,
			Kind:      c.Kind.String(),
			ParentID:  int(c.Parent),
			LineRange: [2]int{c.Span.Start, c.Span.End},
			Path:      c.Path,
			Docstring: c.Docstring,
			Bases:     c.Bases,
		}
		for _, s := range c.Redefined {
			fc.Redefined = append(fc.Redefined, [2]int{s.Start, s.End})
		}
		res.Components = append(res.Components, fc)
	}

	for _, e := range g.Edges() {
		fe := Edge{
			Kind:     e.Kind.String(),
			SourceID: int(e.Source),
			Source:   g.Registry().FQN(e.Source),
			TargetID: int(e.Target),
			Target:   e.TargetRef,
			Resolved: e.Resolved(),
			Line:     e.Line,
			Payload: Payload{
				Items:          e.Payload.Items,
				Star:           e.Payload.Star,
				Note:           e.Payload.Note,
				ReturnCaptured: e.Payload.ReturnCaptured,
				ReturnVar:      e.Payload.ReturnVar,
				DataFlow:       e.Payload.DataFlow,
				Base:           e.Payload.Base,
				Overridden:     e.Payload.Overridden,
				Expr:           e.Payload.Expr,
			},
		}
		for _, a := range e.Payload.Args {
			fe.Args = append(fe.Args, CallArg{Name: a.Name, Value: a.Value, Type: a.Type})
		}
		res.Edges = append(res.Edges, fe)
	}

	for _, cr := range crossroads {
		res.Crossroads = append(res.Crossroads, Crossroad{
			ID:           cr.ID,
			Components:   cr.Components,
			ComponentIDs: [2]int{int(cr.ComponentIDs[0]), int(cr.ComponentIDs[1])},
			EdgeCount:    cr.EdgeCount,
			Kinds:        cr.Kinds,
			Criticality:  cr.Criticality,
		})
	}
	for _, cp := range paths {
		res.CriticalPaths = append(res.CriticalPaths, CriticalPath{
			ID:         cp.ID,
			EntryPoint: cp.EntryPoint,
			EntryID:    int(cp.EntryID),
			CallCount:  cp.CallCount,
			Complexity: cp.Complexity,
		})
	}

	res.Metadata.ComponentsFound = len(res.Components)
	res.Metadata.TotalIntegrationPoints = len(res.Edges)
	res.Metadata.TotalCrossroads = len(res.Crossroads)
	return res
}

// Canonicalize returns a copy of r with presentation order normalized:
// components sorted by fqn, edges by (source, line, kind, target), parse
// errors by (path, line), empty collections collapsed to nil. Content is
// never altered. Canonicalize is idempotent.
func Canonicalize(r *Result) *Result {
	out := &Result{Metadata: r.Metadata}

	out.Components = append([]Component(nil), r.Components...)
	sort.Slice(out.Components, func(i, j int) bool {
		return out.Components[i].FQN < out.Components[j].FQN
	})
	for i := range out.Components {
		out.Components[i].Bases = nilIfEmpty(out.Components[i].Bases)
		if len(out.Components[i].Redefined) == 0 {
			out.Components[i].Redefined = nil
		}
	}

	out.Edges = append([]Edge(nil), r.Edges...)
	for i := range out.Edges {
		p := &out.Edges[i].Payload
		p.Items = nilIfEmpty(p.Items)
		p.Overridden = nilIfEmpty(p.Overridden)
		if len(p.Args) == 0 {
			p.Args = nil
		}
	}
	sort.SliceStable(out.Edges, func(i, j int) bool {
		a, b := out.Edges[i], out.Edges[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Target < b.Target
	})

	out.Crossroads = append([]Crossroad(nil), r.Crossroads...)
	for i := range out.Crossroads {
		out.Crossroads[i].Kinds = nilIfEmpty(out.Crossroads[i].Kinds)
	}
	out.CriticalPaths = append([]CriticalPath(nil), r.CriticalPaths...)

	out.ParseErrors = append([]ParseError(nil), r.ParseErrors...)
	sort.Slice(out.ParseErrors, func(i, j int) bool {
		a, b := out.ParseErrors[i], out.ParseErrors[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Line < b.Line
	})

	out.Components = nilIfEmpty(out.Components)
	out.Edges = nilIfEmpty(out.Edges)
	out.Crossroads = nilIfEmpty(out.Crossroads)
	out.CriticalPaths = nilIfEmpty(out.CriticalPaths)
	out.ParseErrors = nilIfEmpty(out.ParseErrors)
	return out
}

func nilIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}

// crossroadID and criticalPathID are the derivation rules shared by the
// analyzer output and the decoder.
func crossroadID(a, b string) string {
	return a + "_" + b + "_junction"
}

func criticalPathID(fqn string) string {
	return "path_" + strings.ReplaceAll(fqn, ".", "_")
}
