// # internal/format/format_test.go
package format

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intmap/internal/errors"
)

func sampleResult() *Result {
	return &Result{
		Metadata: Metadata{
			RunID:             "9ad9fa4e-0a96-4b49-a8f5-d52e04f429a1",
			Root:              "/src/proj",
			FormatVersion:     Version,
			AnalysisTimestamp: "2026-08-29T10:00:00Z",
			FilesAnalyzed:     3,
			FilesFailed:       1,
		},
		Components: []Component{
			{ID: 1, FQN: "pkg", Name: "pkg", Kind: "package", LineRange: [2]int{1, 1}},
			{ID: 4, FQN: "pkg.b", Name: "b", Kind: "module", ParentID: 1, LineRange: [2]int{1, 1}, Path: "pkg/b.py"},
			{ID: 2, FQN: "pkg.a", Name: "a", Kind: "module", ParentID: 1, LineRange: [2]int{1, 1}, Path: "pkg/a.py", Docstring: "Module a."},
			{ID: 3, FQN: "pkg.a.foo", Name: "foo", Kind: "function", ParentID: 2, LineRange: [2]int{5, 9}, Path: "pkg/a.py",
				Redefined: [][2]int{{1, 3}}},
			{ID: 5, FQN: "pkg.b.Impl", Name: "Impl", Kind: "class", ParentID: 4, LineRange: [2]int{3, 12}, Path: "pkg/b.py",
				Bases: []string{"Base"}},
		},
		Edges: []Edge{
			{Kind: "import", SourceID: 4, Source: "pkg.b", TargetID: 3, Target: "pkg.a.foo", Resolved: true, Line: 1,
				Payload: Payload{Items: []string{"foo"}}},
			{Kind: "call", SourceID: 4, Source: "pkg.b", TargetID: 3, Target: "pkg.a.foo", Resolved: true, Line: 2,
				Payload: Payload{
					Args:           []CallArg{{Value: "7", Type: "int"}, {Name: "mode", Value: `"fast"`, Type: "str"}},
					ReturnCaptured: true,
					ReturnVar:      "x",
					DataFlow:       "x <- pkg.a.foo",
				}},
			{Kind: "call", SourceID: 2, Source: "pkg.a", TargetID: 0, Target: "numpy.array", Resolved: false, Line: 8,
				Payload: Payload{Expr: "numpy.array"}},
			{Kind: "import", SourceID: 2, Source: "pkg.a", TargetID: 0, Target: "os", Resolved: false, Line: 1,
				Payload: Payload{Items: []string{"*"}, Star: true, Note: "star import: members not enumerated", Expr: "os"}},
			{Kind: "inherit", SourceID: 5, Source: "pkg.b.Impl", TargetID: 3, Target: "pkg.a.foo", Resolved: true, Line: 3,
				Payload: Payload{Base: "pkg.a.foo", Overridden: []string{"run"}}},
			{Kind: "attr_write", SourceID: 4, Source: "pkg.b", TargetID: 0, Target: "cfg.debug", Resolved: false, Line: 9,
				Payload: Payload{Expr: "cfg.debug"}},
		},
		Crossroads: []Crossroad{
			{ID: "pkg.a_pkg.b_junction", Components: [2]string{"pkg.a", "pkg.b"}, ComponentIDs: [2]int{2, 4},
				EdgeCount: 3, Kinds: []string{"call", "import"}, Criticality: "high"},
		},
		CriticalPaths: []CriticalPath{
			{ID: "path_pkg_a_foo", EntryPoint: "pkg.a.foo", EntryID: 3, CallCount: 2, Complexity: "medium"},
		},
		ParseErrors: []ParseError{
			{Path: "pkg/broken.py", Line: 4, Message: "syntax error near \":\""},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	original := sampleResult()

	data, err := Marshal(EncodeCompact(original), false)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	require.Equal(t, Canonicalize(original), decoded,
		"decode(encode(X)) must equal canonicalize(X)")
}

func TestRoundTripEmpty(t *testing.T) {
	original := &Result{Metadata: Metadata{FormatVersion: Version}}

	data, err := Marshal(EncodeCompact(original), false)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, Canonicalize(original), decoded)
}

func TestCanonicalizeIdempotent(t *testing.T) {
	c1 := Canonicalize(sampleResult())
	c2 := Canonicalize(c1)
	require.Equal(t, c1, c2)
}

func TestCompactIndexHasNoDanglingIDs(t *testing.T) {
	p := EncodeCompact(sampleResult())

	seen := func(id int) bool {
		_, ok := p.Idx[strconv.Itoa(id)]
		return ok
	}
	for _, c := range p.Cmp {
		assert.True(t, seen(c.I), "component id %d missing from idx", c.I)
	}
	for _, e := range p.Edg {
		assert.True(t, seen(e.Src), "edge source %d missing from idx", e.Src)
		if e.Tgt != 0 {
			assert.True(t, seen(e.Tgt), "edge target %d missing from idx", e.Tgt)
		}
	}
	for _, cr := range p.Crd {
		assert.True(t, seen(cr.C[0]) && seen(cr.C[1]), "crossroad ids missing from idx")
	}
	for _, cp := range p.Cp {
		assert.True(t, seen(cp.Ep), "critical path entry %d missing from idx", cp.Ep)
	}
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	_, err := Decode([]byte(`{"v":"99","meta":{},"idx":{},"cmp":[]}`))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeUnsupportedFormat))
}

func TestDecodeRejectsDanglingID(t *testing.T) {
	payload := `{"v":"1","meta":{"fa":0,"ff":0,"cf":0,"tip":0,"tcr":0},"idx":{"1":"pkg"},` +
		`"cmp":[{"i":1,"n":"pkg","t":"pk","l":[1,1]}],"edg":[[1,7,"c",3]]}`
	_, err := Decode([]byte(payload))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestDecodeRejectsUnknownKindCode(t *testing.T) {
	payload := `{"v":"1","meta":{"fa":0,"ff":0,"cf":0,"tip":0,"tcr":0},"idx":{"1":"pkg"},` +
		`"cmp":[{"i":1,"n":"pkg","t":"zz","l":[1,1]}]}`
	_, err := Decode([]byte(payload))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeUnsupportedFormat))
}

func TestCompactEdgeWireShape(t *testing.T) {
	p := EncodeCompact(sampleResult())
	data, err := json.Marshal(p.Edg)
	require.NoError(t, err)

	var raw [][]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, arr := range raw {
		assert.GreaterOrEqual(t, len(arr), 4, "edges are fixed-position arrays")
		assert.LessOrEqual(t, len(arr), 5)
	}
}

func TestVerboseTreeNesting(t *testing.T) {
	v := EncodeVerbose(sampleResult())

	pkg, ok := v.CodebaseTree["pkg"]
	require.True(t, ok, "root package missing from tree")
	require.Contains(t, pkg.Children, "a")
	require.Contains(t, pkg.Children, "b")

	a := pkg.Children["a"]
	assert.Equal(t, "module", a.Type)
	assert.Equal(t, "Module a.", a.Docstring)
	require.Contains(t, a.Children, "foo")
	assert.Equal(t, "function", a.Children["foo"].Type)
	assert.Equal(t, [2]int{5, 9}, a.Children["foo"].LineRange)

	assert.Equal(t, 5, v.GlobalIntegrationMap.Statistics.TotalComponents)
	assert.Equal(t, 6, v.GlobalIntegrationMap.Statistics.TotalIntegrationPoints)
	assert.Len(t, v.GlobalIntegrationMap.Crossroads, 1)
	assert.Len(t, v.ParseErrors, 1)
}

func TestVerboseEdgePayloadKeys(t *testing.T) {
	v := EncodeVerbose(sampleResult())
	data, err := Marshal(v, true)
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"return_captured": true`)
	assert.Contains(t, s, `"overridden_methods"`)
	assert.Contains(t, s, `"data_flow"`)
	// Zero-valued payload fields stay out of the rendered record.
	assert.NotContains(t, s, `"return_var": ""`)
}
