// # internal/format/decode.go
package format

import (
	"encoding/json"
	"strconv"

	"intmap/internal/errors"
)

// Decode parses raw compact JSON and inverts it into the canonical model.
// The format version is checked before anything else; an unknown version
// fails fast with no partial output.
func Decode(data []byte) (*Result, error) {
	var probe struct {
		V string `json:"v"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "parsing compact payload")
	}
	if probe.V != Version {
		return nil, errors.New(errors.CodeUnsupportedFormat, "unknown compact format version").
			WithContext(errors.CtxVersion, probe.V)
	}

	var payload CompactPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "parsing compact payload")
	}
	return DecodeCompact(&payload)
}

// DecodeCompact is the exact inverse of EncodeCompact. Absent optional
// fields decode to their canonical zero values, never guesses.
func DecodeCompact(p *CompactPayload) (*Result, error) {
	if p.V != Version {
		return nil, errors.New(errors.CodeUnsupportedFormat, "unknown compact format version").
			WithContext(errors.CtxVersion, p.V)
	}

	fqnByID := make(map[int]string, len(p.Idx))
	for key, fqn := range p.Idx {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError, "non-numeric id in index").
				WithContext("id", key)
		}
		fqnByID[id] = fqn
	}

	lookup := func(id int) (string, error) {
		fqn, ok := fqnByID[id]
		if !ok {
			return "", errors.New(errors.CodeValidationError, "dangling id not present in index").
				WithContext("id", strconv.Itoa(id))
		}
		return fqn, nil
	}

	res := &Result{
		Metadata: Metadata{
			RunID:                  p.Meta.RID,
			Root:                   p.Meta.RT,
			FormatVersion:          p.V,
			AnalysisTimestamp:      p.Meta.ATS,
			FilesAnalyzed:          p.Meta.FA,
			FilesFailed:            p.Meta.FF,
			ComponentsFound:        p.Meta.CF,
			TotalIntegrationPoints: p.Meta.TIP,
			TotalCrossroads:        p.Meta.TCR,
		},
	}

	for _, c := range p.Cmp {
		kind, ok := componentKinds[c.T]
		if !ok {
			return nil, errors.New(errors.CodeUnsupportedFormat, "unknown component kind code").
				WithContext("code", c.T)
		}
		fqn, err := lookup(c.I)
		if err != nil {
			return nil, err
		}
		res.Components = append(res.Components, Component{
			ID:        c.I,
			FQN:       fqn,
			Name:      c.N,
			Kind:      kind,
			ParentID:  c.P,
			LineRange: c.L,
			Path:      c.Pa,
			Docstring: c.D,
			Bases:     c.B,
			Redefined: c.Rd,
		})
	}

	for _, e := range p.Edg {
		kind, ok := edgeKinds[e.Code]
		if !ok {
			return nil, errors.New(errors.CodeUnsupportedFormat, "unknown edge kind code").
				WithContext("code", e.Code)
		}
		src, err := lookup(e.Src)
		if err != nil {
			return nil, err
		}

		fe := Edge{
			Kind:     kind,
			SourceID: e.Src,
			Source:   src,
			TargetID: e.Tgt,
			Line:     e.Line,
		}
		pl := e.Payload
		if pl == nil {
			pl = &compactEdgePayload{}
		}
		fe.Payload = Payload{
			Items:          pl.It,
			Star:           pl.St,
			Note:           pl.No,
			ReturnCaptured: pl.Rc,
			ReturnVar:      pl.Rv,
			DataFlow:       pl.Df,
			Base:           pl.B,
			Overridden:     pl.Om,
			Expr:           pl.X,
		}
		for _, a := range pl.A {
			fe.Args = append(fe.Args, CallArg{Name: a.N, Value: a.V, Type: a.T})
		}

		if e.Tgt != 0 {
			tgt, err := lookup(e.Tgt)
			if err != nil {
				return nil, err
			}
			fe.Target = tgt
			fe.Resolved = true
		} else {
			fe.Target = pl.X
		}
		res.Edges = append(res.Edges, fe)
	}

	for _, cr := range p.Crd {
		a, err := lookup(cr.C[0])
		if err != nil {
			return nil, err
		}
		b, err := lookup(cr.C[1])
		if err != nil {
			return nil, err
		}
		res.Crossroads = append(res.Crossroads, Crossroad{
			ID:           crossroadID(a, b),
			Components:   [2]string{a, b},
			ComponentIDs: cr.C,
			EdgeCount:    cr.Ec,
			Kinds:        cr.Ks,
			Criticality:  cr.Cr,
		})
	}

	for _, cp := range p.Cp {
		fqn, err := lookup(cp.Ep)
		if err != nil {
			return nil, err
		}
		res.CriticalPaths = append(res.CriticalPaths, CriticalPath{
			ID:         criticalPathID(fqn),
			EntryPoint: fqn,
			EntryID:    cp.Ep,
			CallCount:  cp.Cc,
			Complexity: cp.Cx,
		})
	}

	for _, pe := range p.Err {
		res.ParseErrors = append(res.ParseErrors, ParseError{
			Path: pe.Path, Line: pe.Line, Message: pe.Message,
		})
	}
	return res, nil
}
