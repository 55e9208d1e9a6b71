package model

// Path is an ordered alternating sequence of nodes and relationships, as
// returned by a Cypher path expression. Paths are immutable after
// construction and are produced by the ogm result decoder.
type Path struct {
	nodes         []*Node
	relationships []*Relationship
}

// NewPath constructs a path, enforcing the alternation invariant: a path
// over n relationships visits exactly n+1 nodes. Violations fail
// immediately with ErrInvalidPath.
func NewPath(nodes []*Node, relationships []*Relationship) (*Path, error) {
	if len(nodes) != len(relationships)+1 {
		return nil, ErrInvalidPath
	}
	return &Path{nodes: nodes, relationships: relationships}, nil
}

// Nodes returns the path's nodes in traversal order.
func (p *Path) Nodes() []*Node { return p.nodes }

// Relationships returns the path's relationships in traversal order.
func (p *Path) Relationships() []*Relationship { return p.relationships }

// Traverse returns the interleaved sequence
// nodes[0], rel[0], nodes[1], rel[1], ..., nodes[n].
func (p *Path) Traverse() []any {
	out := make([]any, 0, len(p.nodes)+len(p.relationships))
	out = append(out, p.nodes[0])
	for i, rel := range p.relationships {
		out = append(out, rel, p.nodes[i+1])
	}
	return out
}
