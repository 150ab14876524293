// # internal/format/verbose.go
package format

// TreeNode is one node of the nested codebase tree, keyed by child name.
type TreeNode struct {
	Type      string               `json:"type"`
	FQN       string               `json:"fqn"`
	Name      string               `json:"name"`
	LineRange [2]int               `json:"line_range"`
	Path      string               `json:"path,omitempty"`
	Docstring string               `json:"docstring,omitempty"`
	Bases     []string             `json:"bases,omitempty"`
	Redefined [][2]int             `json:"redefined,omitempty"`
	Children  map[string]*TreeNode `json:"children,omitempty"`
}

type Statistics struct {
	TotalComponents        int `json:"total_components"`
	TotalIntegrationPoints int `json:"total_integration_points"`
}

type GlobalIntegrationMap struct {
	Crossroads    []Crossroad    `json:"crossroads"`
	CriticalPaths []CriticalPath `json:"critical_paths"`
	Statistics    Statistics     `json:"statistics"`
}

// VerbosePayload is the uncompressed presentation: full nested tree, full
// edge records, and the global integration map.
type VerbosePayload struct {
	Metadata             Metadata             `json:"metadata"`
	CodebaseTree         map[string]*TreeNode `json:"codebase_tree"`
	IntegrationEdges     []Edge               `json:"integration_edges"`
	GlobalIntegrationMap GlobalIntegrationMap `json:"global_integration_map"`
	ParseErrors          []ParseError         `json:"parse_errors,omitempty"`
}

// EncodeVerbose renders the canonicalized result as the nested verbose
// payload. Sorting components by FQN guarantees parents are placed before
// their children.
func EncodeVerbose(r *Result) *VerbosePayload {
	c := Canonicalize(r)

	nodes := make(map[int]*TreeNode, len(c.Components))
	tree := make(map[string]*TreeNode)
	for _, comp := range c.Components {
		node := &TreeNode{
			Type:      comp.Kind,
			FQN:       comp.FQN,
			Name:      comp.Name,
			LineRange: comp.LineRange,
			Path:      comp.Path,
			Docstring: comp.Docstring,
			Bases:     comp.Bases,
			Redefined: comp.Redefined,
		}
		nodes[comp.ID] = node

		parent, ok := nodes[comp.ParentID]
		if !ok {
			tree[comp.Name] = node
			continue
		}
		if parent.Children == nil {
			parent.Children = make(map[string]*TreeNode)
		}
		parent.Children[comp.Name] = node
	}

	return &VerbosePayload{
		Metadata:         c.Metadata,
		CodebaseTree:     tree,
		IntegrationEdges: c.Edges,
		GlobalIntegrationMap: GlobalIntegrationMap{
			Crossroads:    c.Crossroads,
			CriticalPaths: c.CriticalPaths,
			Statistics: Statistics{
				TotalComponents:        len(c.Components),
				TotalIntegrationPoints: len(c.Edges),
			},
		},
		ParseErrors: c.ParseErrors,
	}
}
