// # internal/graph/types.go
package graph

type ComponentID int

// Unresolved is the explicit sentinel target for edges whose reference could
// not be resolved statically. Registry ids start at 1, so 0 never collides.
const Unresolved ComponentID = 0

type ComponentKind int

const (
	KindPackage ComponentKind = iota
	KindModule
	KindClass
	KindFunction
	KindMethod
	KindAttribute
)

func (k ComponentKind) String() string {
	switch k {
	case KindPackage:
		return "package"
	case KindModule:
		return "module"
	case KindClass:
		return "class"
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindAttribute:
		return "attribute"
	}
	return "unknown"
}

// Span is a 1-based inclusive line range. Components without an intrinsic
// span (file roots, synthesized packages) carry the synthetic span [1,1].
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Component is created during hierarchy construction and immutable afterward.
// It is owned by the Graph; everything else refers to it by id.
type Component struct {
	ID        ComponentID
	FQN       string
	Name      string
	Kind      ComponentKind
	Parent    ComponentID // 0 for roots
	Span      Span
	Path      string // source file (relative to root); empty for packages
	Docstring string
	Bases     []string // declared base expressions, classes only
	Redefined []Span   // spans of earlier same-name definitions in this scope
}

type EdgeKind int

const (
	EdgeImport EdgeKind = iota
	EdgeCall
	EdgeAttrRead
	EdgeAttrWrite
	EdgeInherit
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeImport:
		return "import"
	case EdgeCall:
		return "call"
	case EdgeAttrRead:
		return "attr_read"
	case EdgeAttrWrite:
		return "attr_write"
	case EdgeInherit:
		return "inherit"
	}
	return "unknown"
}

// CallArg captures one call argument: keyword name when present, a short
// value summary, and a best-effort syntactic type tag.
type CallArg struct {
	Name  string `json:"name,omitempty"`
	Value string `json:"value"`
	Type  string `json:"type,omitempty"`
}

// Payload carries the kind-specific fields of an Edge. Fields outside the
// edge's kind stay at their zero value and are omitted from output.
type Payload struct {
	// import
	Items []string `json:"items,omitempty"`
	Star  bool     `json:"star,omitempty"`
	Note  string   `json:"note,omitempty"`

	// call
	Args           []CallArg `json:"args,omitempty"`
	ReturnCaptured bool      `json:"return_captured,omitempty"`
	ReturnVar      string    `json:"return_var,omitempty"`
	DataFlow       string    `json:"data_flow,omitempty"`

	// inherit
	Base       string   `json:"base,omitempty"`
	Overridden []string `json:"overridden_methods,omitempty"`

	// unresolved: the raw expression that defeated static resolution
	Expr string `json:"expr,omitempty"`
}

// Edge is a directed, typed relationship between two components. Target is a
// real component id or Unresolved; TargetRef always carries the resolved FQN
// text (or the raw expression when unresolved) so output never loses the
// referenced name.
type Edge struct {
	Source    ComponentID
	Target    ComponentID
	TargetRef string
	Kind      EdgeKind
	Line      int
	Payload   Payload
}

func (e Edge) Resolved() bool {
	return e.Target != Unresolved
}
