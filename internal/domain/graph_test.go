package domain

import (
	"encoding/json"
	"testing"
)

func TestDecodeRole(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		want Role
	}{
		{name: "plan", tag: "plan", want: RolePlan},
		{name: "execution", tag: "execution", want: RoleExecution},
		{name: "memory", tag: "memory", want: RoleMemory},
		{name: "evidence", tag: "evidence", want: RoleEvidence},
		{name: "reflection", tag: "reflection", want: RoleReflection},
		{name: "unknown tag falls back", tag: "hypothesis", want: RolePlan},
		{name: "wrong case falls back", tag: "Memory", want: RolePlan},
		{name: "empty falls back", tag: "", want: RolePlan},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeRole(tt.tag); got != tt.want {
				t.Errorf("DecodeRole(%q) = %q, want %q", tt.tag, got, tt.want)
			}
		})
	}
}

func TestRole_UnmarshalJSONRejectsUnknown(t *testing.T) {
	var r Role
	if err := json.Unmarshal([]byte(`"evidence"`), &r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != RoleEvidence {
		t.Errorf("expected evidence, got %q", r)
	}

	if err := json.Unmarshal([]byte(`"hypothesis"`), &r); err == nil {
		t.Error("expected error for unknown role, got nil")
	}
}

func TestMetadata_AbsenceRoundTrips(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantAbsent bool
	}{
		{name: "missing field", input: `{"id":"n1","text":"a","role":"plan","parent_id":null}`, wantAbsent: true},
		{name: "explicit null", input: `{"id":"n1","text":"a","role":"plan","metadata":null,"parent_id":null}`, wantAbsent: true},
		{name: "empty object is present", input: `{"id":"n1","text":"a","role":"plan","metadata":{},"parent_id":null}`, wantAbsent: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Node
			if err := json.Unmarshal([]byte(tt.input), &n); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if (n.Metadata == nil) != tt.wantAbsent {
				t.Errorf("metadata absent = %v, want %v (got %q)", n.Metadata == nil, tt.wantAbsent, n.Metadata)
			}

			out, err := json.Marshal(n)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var back Node
			if err := json.Unmarshal(out, &back); err != nil {
				t.Fatalf("unmarshal again: %v", err)
			}
			if !n.Equal(back) {
				t.Errorf("round trip changed node: %s", out)
			}
		})
	}
}

func TestGraphState_EqualIgnoresOrder(t *testing.T) {
	parent := "n1"
	a := GraphState{
		Nodes: []Node{
			{ID: "n1", Text: "root", Role: RolePlan},
			{ID: "n2", Text: "child", Role: RoleExecution, ParentID: &parent, Metadata: Metadata(`{"x": 1}`)},
		},
		Edges: []Edge{{ID: "e1", Source: "n1", Target: "n2", EdgeType: "default"}},
	}
	b := GraphState{
		Nodes: []Node{
			{ID: "n2", Text: "child", Role: RoleExecution, ParentID: StringPtr("n1"), Metadata: Metadata(`{"x":1}`)},
			{ID: "n1", Text: "root", Role: RolePlan},
		},
		Edges: []Edge{{ID: "e1", Source: "n1", Target: "n2", EdgeType: "default"}},
	}

	if !a.Equal(b) {
		t.Error("expected states to be equal regardless of order and whitespace")
	}

	b.Nodes[1].Text = "changed"
	if a.Equal(b) {
		t.Error("expected states with different text to differ")
	}
}

func TestGraphState_EqualDistinguishesAbsentMetadata(t *testing.T) {
	a := GraphState{Nodes: []Node{{ID: "n1", Role: RolePlan}}}
	b := GraphState{Nodes: []Node{{ID: "n1", Role: RolePlan, Metadata: Metadata(`{}`)}}}

	if a.Equal(b) {
		t.Error("absent metadata must not equal an empty object")
	}
}

func TestGraphState_EqualRejectsDuplicateIDs(t *testing.T) {
	a := GraphState{Nodes: []Node{{ID: "n1", Role: RolePlan}, {ID: "n1", Role: RolePlan}}}
	b := GraphState{Nodes: []Node{{ID: "n1", Role: RolePlan}, {ID: "n2", Role: RolePlan}}}

	if a.Equal(b) || b.Equal(a) {
		t.Error("states with duplicate ids must not compare equal to distinct ones")
	}
}

func TestChronological(t *testing.T) {
	newestFirst := []Commit{{ID: "c3"}, {ID: "c2"}, {ID: "c1"}}
	got := Chronological(newestFirst)

	want := []string{"c1", "c2", "c3"}
	for i, c := range got {
		if c.ID != want[i] {
			t.Errorf("position %d: got %s, want %s", i, c.ID, want[i])
		}
	}
	if newestFirst[0].ID != "c3" {
		t.Error("input slice was modified")
	}
}
