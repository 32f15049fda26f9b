package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Role is the kind of reasoning unit a node represents
type Role string

const (
	RolePlan       Role = "plan"
	RoleExecution  Role = "execution"
	RoleMemory     Role = "memory"
	RoleEvidence   Role = "evidence"
	RoleReflection Role = "reflection"
)

// DefaultRole is what an unrecognized stored role tag decodes to
const DefaultRole = RolePlan

// Roles lists every valid role in display order
var Roles = []Role{RolePlan, RoleExecution, RoleMemory, RoleEvidence, RoleReflection}

func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the fixed roles
func (r Role) Valid() bool {
	switch r {
	case RolePlan, RoleExecution, RoleMemory, RoleEvidence, RoleReflection:
		return true
	default:
		return false
	}
}

// ParseRole returns the role for a tag, or false if the tag is unknown
func ParseRole(tag string) (Role, bool) {
	r := Role(tag)
	if !r.Valid() {
		return "", false
	}
	return r, true
}

// DecodeRole is the lenient decode used on stored rows: unknown tags become DefaultRole
func DecodeRole(tag string) Role {
	if r, ok := ParseRole(tag); ok {
		return r
	}
	return DefaultRole
}

// UnmarshalJSON rejects unknown role tags
func (r *Role) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}
	parsed, ok := ParseRole(tag)
	if !ok {
		return fmt.Errorf("unknown role %q", tag)
	}
	*r = parsed
	return nil
}

// Metadata is an optional JSON payload attached to a node or edge.
// A nil Metadata means absent; JSON null decodes to absent.
type Metadata []byte

// MarshalJSON emits the raw payload, or null when absent
func (m Metadata) MarshalJSON() ([]byte, error) {
	if len(m) == 0 {
		return []byte("null"), nil
	}
	return m, nil
}

// UnmarshalJSON keeps the raw payload; null becomes absent
func (m *Metadata) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = nil
		return nil
	}
	*m = append((*m)[0:0], data...)
	return nil
}

// Compact returns the payload with insignificant whitespace removed.
// It fails when the payload is not valid JSON.
func (m Metadata) Compact() (Metadata, error) {
	if len(m) == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, m); err != nil {
		return nil, err
	}
	return Metadata(buf.Bytes()), nil
}

func (m Metadata) equal(other Metadata) bool {
	if len(m) == 0 || len(other) == 0 {
		return len(m) == len(other)
	}
	a, errA := m.Compact()
	b, errB := other.Compact()
	if errA != nil || errB != nil {
		return bytes.Equal(m, other)
	}
	return bytes.Equal(a, b)
}

// Node is a single reasoning or planning unit
type Node struct {
	ID       string   `json:"id" validate:"required"`
	Text     string   `json:"text"`
	Role     Role     `json:"role" validate:"role"`
	Metadata Metadata `json:"metadata,omitempty"`
	ParentID *string  `json:"parent_id"`
}

// Equal compares every field, metadata by its compact form
func (n Node) Equal(other Node) bool {
	return n.ID == other.ID &&
		n.Text == other.Text &&
		n.Role == other.Role &&
		n.Metadata.equal(other.Metadata) &&
		equalOptional(n.ParentID, other.ParentID)
}

// Edge is a directed relation between two nodes. Source and Target are not
// checked against existing nodes and may dangle.
type Edge struct {
	ID       string   `json:"id" validate:"required"`
	Source   string   `json:"source" validate:"required"`
	Target   string   `json:"target" validate:"required"`
	EdgeType string   `json:"edge_type"`
	Metadata Metadata `json:"metadata,omitempty"`
}

// Equal compares every field, metadata by its compact form
func (e Edge) Equal(other Edge) bool {
	return e.ID == other.ID &&
		e.Source == other.Source &&
		e.Target == other.Target &&
		e.EdgeType == other.EdgeType &&
		e.Metadata.equal(other.Metadata)
}

// GraphState is the complete set of live nodes and edges at one instant
type GraphState struct {
	Nodes []Node `json:"nodes" validate:"dive"`
	Edges []Edge `json:"edges" validate:"dive"`
}

// EmptyState returns a state with non-nil, empty slices so it encodes as [] rather than null
func EmptyState() GraphState {
	return GraphState{Nodes: []Node{}, Edges: []Edge{}}
}

// Equal reports id-based set equality: order is ignored, every id must match
// a node (or edge) with identical fields on the other side.
func (s GraphState) Equal(other GraphState) bool {
	if len(s.Nodes) != len(other.Nodes) || len(s.Edges) != len(other.Edges) {
		return false
	}

	nodes, ok := indexNodes(other.Nodes)
	if !ok || !distinctNodes(s.Nodes) {
		return false
	}
	for _, n := range s.Nodes {
		o, ok := nodes[n.ID]
		if !ok || !n.Equal(o) {
			return false
		}
	}

	edges, ok := indexEdges(other.Edges)
	if !ok || !distinctEdges(s.Edges) {
		return false
	}
	for _, e := range s.Edges {
		o, ok := edges[e.ID]
		if !ok || !e.Equal(o) {
			return false
		}
	}
	return true
}

func indexNodes(nodes []Node) (map[string]Node, bool) {
	m := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		m[n.ID] = n
	}
	return m, len(m) == len(nodes)
}

func distinctNodes(nodes []Node) bool {
	_, ok := indexNodes(nodes)
	return ok
}

func indexEdges(edges []Edge) (map[string]Edge, bool) {
	m := make(map[string]Edge, len(edges))
	for _, e := range edges {
		m[e.ID] = e
	}
	return m, len(m) == len(edges)
}

func distinctEdges(edges []Edge) bool {
	_, ok := indexEdges(edges)
	return ok
}

// Sorted returns a copy with nodes and edges ordered by id
func (s GraphState) Sorted() GraphState {
	out := GraphState{
		Nodes: append([]Node{}, s.Nodes...),
		Edges: append([]Edge{}, s.Edges...),
	}
	sort.SliceStable(out.Nodes, func(i, j int) bool { return out.Nodes[i].ID < out.Nodes[j].ID })
	sort.SliceStable(out.Edges, func(i, j int) bool { return out.Edges[i].ID < out.Edges[j].ID })
	return out
}

// RoleCounts tallies nodes per role
func (s GraphState) RoleCounts() map[Role]int {
	counts := make(map[Role]int, len(Roles))
	for _, n := range s.Nodes {
		counts[n.Role]++
	}
	return counts
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// StringPtr is a convenience for optional string fields
func StringPtr(s string) *string {
	return &s
}
