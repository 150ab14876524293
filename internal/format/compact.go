// # internal/format/compact.go
package format

import (
	"encoding/json"
	"strconv"

	"intmap/internal/errors"
)

// CompactPayload is the wire contract of the compact format. Component FQNs
// appear only in the id index; everything else references ids.
type CompactPayload struct {
	V    string             `json:"v"`
	Meta CompactMeta        `json:"meta"`
	Idx  map[string]string  `json:"idx"`
	Cmp  []CompactComponent `json:"cmp"`
	Edg  []CompactEdge      `json:"edg,omitempty"`
	Crd  []CompactCrossroad `json:"crd,omitempty"`
	Cp   []CompactPath      `json:"cp,omitempty"`
	Err  []CompactError     `json:"err,omitempty"`
}

type CompactMeta struct {
	RID string `json:"rid,omitempty"`
	RT  string `json:"rt,omitempty"`
	ATS string `json:"ats,omitempty"`
	FA  int    `json:"fa"`
	FF  int    `json:"ff"`
	CF  int    `json:"cf"`
	TIP int    `json:"tip"`
	TCR int    `json:"tcr"`
}

type CompactComponent struct {
	I  int      `json:"i"`
	N  string   `json:"n"`
	T  string   `json:"t"`
	P  int      `json:"p,omitempty"`
	L  [2]int   `json:"l"`
	Pa string   `json:"pa,omitempty"`
	D  string   `json:"d,omitempty"`
	B  []string `json:"b,omitempty"`
	Rd [][2]int `json:"rd,omitempty"`
}

type compactEdgePayload struct {
	It []string     `json:"it,omitempty"`
	St bool         `json:"st,omitempty"`
	No string       `json:"no,omitempty"`
	A  []compactArg `json:"a,omitempty"`
	Rc bool         `json:"rc,omitempty"`
	Rv string       `json:"rv,omitempty"`
	Df string       `json:"df,omitempty"`
	B  string       `json:"b,omitempty"`
	Om []string     `json:"om,omitempty"`
	X  string       `json:"x,omitempty"`
}

type compactArg struct {
	N string `json:"n,omitempty"`
	V string `json:"v"`
	T string `json:"t,omitempty"`
}

func (p *compactEdgePayload) empty() bool {
	return len(p.It) == 0 && !p.St && p.No == "" && len(p.A) == 0 &&
		!p.Rc && p.Rv == "" && p.Df == "" && p.B == "" && len(p.Om) == 0 && p.X == ""
}

// CompactEdge serializes as a fixed-position array:
// [source_id, target_id, kind_code, line, payload?].
type CompactEdge struct {
	Src     int
	Tgt     int
	Code    string
	Line    int
	Payload *compactEdgePayload
}

func (e CompactEdge) MarshalJSON() ([]byte, error) {
	arr := []any{e.Src, e.Tgt, e.Code, e.Line}
	if e.Payload != nil && !e.Payload.empty() {
		arr = append(arr, e.Payload)
	}
	return json.Marshal(arr)
}

func (e *CompactEdge) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 4 {
		return errors.New(errors.CodeValidationError, "compact edge needs at least 4 elements")
	}
	if err := json.Unmarshal(raw[0], &e.Src); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[1], &e.Tgt); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[2], &e.Code); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[3], &e.Line); err != nil {
		return err
	}
	if len(raw) > 4 {
		e.Payload = &compactEdgePayload{}
		if err := json.Unmarshal(raw[4], e.Payload); err != nil {
			return err
		}
	}
	return nil
}

type CompactCrossroad struct {
	C  [2]int   `json:"c"`
	Ec int      `json:"ec"`
	Ks []string `json:"ks,omitempty"`
	Cr string   `json:"cr"`
}

type CompactPath struct {
	Ep int    `json:"ep"`
	Cc int    `json:"cc"`
	Cx string `json:"cx"`
}

// CompactError serializes as [path, line, message].
type CompactError struct {
	Path    string
	Line    int
	Message string
}

func (e CompactError) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Path, e.Line, e.Message})
}

func (e *CompactError) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return errors.New(errors.CodeValidationError, "compact error needs 3 elements")
	}
	if err := json.Unmarshal(raw[0], &e.Path); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[1], &e.Line); err != nil {
		return err
	}
	return json.Unmarshal(raw[2], &e.Message)
}

// EncodeCompact derives the compact payload from the canonicalized result.
// Canonicalizing inside the encoder is what makes the round-trip contract
// hold for inputs in any presentation order.
func EncodeCompact(r *Result) *CompactPayload {
	c := Canonicalize(r)

	p := &CompactPayload{
		V: Version,
		Meta: CompactMeta{
			RID: c.Metadata.RunID,
			RT:  c.Metadata.Root,
			ATS: c.Metadata.AnalysisTimestamp,
			FA:  c.Metadata.FilesAnalyzed,
			FF:  c.Metadata.FilesFailed,
			CF:  c.Metadata.ComponentsFound,
			TIP: c.Metadata.TotalIntegrationPoints,
			TCR: c.Metadata.TotalCrossroads,
		},
		Idx: make(map[string]string, len(c.Components)),
	}

	for _, comp := range c.Components {
		p.Idx[strconv.Itoa(comp.ID)] = comp.FQN
		p.Cmp = append(p.Cmp, CompactComponent{
			I:  comp.ID,
			N:  comp.Name,
			T:  componentCodes[comp.Kind],
			P:  comp.ParentID,
			L:  comp.LineRange,
			Pa: comp.Path,
			D:  comp.Docstring,
			B:  comp.Bases,
			Rd: comp.Redefined,
		})
	}

	for _, e := range c.Edges {
		pl := &compactEdgePayload{
			It: e.Items,
			St: e.Star,
			No: e.Note,
			Rc: e.ReturnCaptured,
			Rv: e.ReturnVar,
			Df: e.DataFlow,
			B:  e.Base,
			Om: e.Overridden,
			X:  e.Expr,
		}
		for _, a := range e.Args {
			pl.A = append(pl.A, compactArg{N: a.Name, V: a.Value, T: a.Type})
		}
		p.Edg = append(p.Edg, CompactEdge{
			Src:     e.SourceID,
			Tgt:     e.TargetID,
			Code:    edgeCodes[e.Kind],
			Line:    e.Line,
			Payload: pl,
		})
	}

	for _, cr := range c.Crossroads {
		p.Crd = append(p.Crd, CompactCrossroad{
			C:  cr.ComponentIDs,
			Ec: cr.EdgeCount,
			Ks: cr.Kinds,
			Cr: cr.Criticality,
		})
	}
	for _, cp := range c.CriticalPaths {
		p.Cp = append(p.Cp, CompactPath{Ep: cp.EntryID, Cc: cp.CallCount, Cx: cp.Complexity})
	}
	for _, pe := range c.ParseErrors {
		p.Err = append(p.Err, CompactError{Path: pe.Path, Line: pe.Line, Message: pe.Message})
	}
	return p
}
