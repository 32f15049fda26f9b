package application

import (
	"errors"
	"strings"
	"testing"

	"cortexmap/internal/domain"
)

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		value     string
		wantErr   bool
	}{
		{
			name:      "valid value",
			fieldName: "agentID",
			value:     "agentA",
			wantErr:   false,
		},
		{
			name:      "empty string",
			fieldName: "agentID",
			value:     "",
			wantErr:   true,
		},
		{
			name:      "whitespace only",
			fieldName: "message",
			value:     "   ",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequired(tt.fieldName, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequired() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err != nil {
				var valErr *ValidationError
				if !errors.As(err, &valErr) {
					t.Errorf("expected ValidationError, got %T", err)
				}
				if valErr.Field != tt.fieldName {
					t.Errorf("expected field %s, got %s", tt.fieldName, valErr.Field)
				}
				if !errors.Is(err, ErrValidation) {
					t.Error("expected error to match ErrValidation")
				}
			}
		})
	}
}

func TestValidateGraphState(t *testing.T) {
	tests := []struct {
		name      string
		state     domain.GraphState
		wantErr   bool
		wantField string
	}{
		{
			name: "valid state",
			state: domain.GraphState{
				Nodes: []domain.Node{{ID: "n1", Text: "root", Role: domain.RolePlan, Metadata: domain.Metadata(`{"position":{"x":1,"y":2}}`)}},
				Edges: []domain.Edge{{ID: "e1", Source: "n1", Target: "ghost", EdgeType: "default"}},
			},
		},
		{
			name:  "empty state",
			state: domain.EmptyState(),
		},
		{
			name: "missing node id",
			state: domain.GraphState{
				Nodes: []domain.Node{{Text: "root", Role: domain.RolePlan}},
			},
			wantErr:   true,
			wantField: "nodes[0].id",
		},
		{
			name: "unknown role",
			state: domain.GraphState{
				Nodes: []domain.Node{{ID: "n1", Role: domain.Role("hypothesis")}},
			},
			wantErr:   true,
			wantField: "nodes[0].role",
		},
		{
			name: "edge without target",
			state: domain.GraphState{
				Edges: []domain.Edge{{ID: "e1", Source: "n1"}},
			},
			wantErr:   true,
			wantField: "edges[0].target",
		},
		{
			name: "duplicate node id",
			state: domain.GraphState{
				Nodes: []domain.Node{{ID: "n1", Role: domain.RolePlan}, {ID: "n1", Role: domain.RoleMemory}},
			},
			wantErr:   true,
			wantField: "nodes[1].id",
		},
		{
			name: "node and edge may share an id",
			state: domain.GraphState{
				Nodes: []domain.Node{{ID: "x", Role: domain.RolePlan}},
				Edges: []domain.Edge{{ID: "x", Source: "x", Target: "x"}},
			},
		},
		{
			name: "invalid edge metadata",
			state: domain.GraphState{
				Edges: []domain.Edge{{ID: "e1", Source: "a", Target: "b", Metadata: domain.Metadata(`{"broken":`)}},
			},
			wantErr:   true,
			wantField: "edges[0].metadata",
		},
		{
			name: "metadata number out of float64 range",
			state: domain.GraphState{
				Nodes: []domain.Node{{ID: "n1", Role: domain.RolePlan, Metadata: domain.Metadata(`{"x":1e400}`)}},
			},
			wantErr:   true,
			wantField: "nodes[0].metadata",
		},
		{
			name: "metadata with duplicate keys",
			state: domain.GraphState{
				Nodes: []domain.Node{{ID: "n1", Role: domain.RolePlan, Metadata: domain.Metadata(`{"a":1,"a":2}`)}},
			},
			wantErr:   true,
			wantField: "nodes[0].metadata",
		},
		{
			name: "metadata with a lone surrogate",
			state: domain.GraphState{
				Edges: []domain.Edge{{ID: "e1", Source: "a", Target: "b", Metadata: domain.Metadata(`{"s":"\ud800"}`)}},
			},
			wantErr:   true,
			wantField: "edges[0].metadata",
		},
		{
			name: "metadata with raw invalid UTF-8",
			state: domain.GraphState{
				Nodes: []domain.Node{{ID: "n1", Role: domain.RolePlan, Metadata: domain.Metadata("{\"s\":\"a\xffb\"}")}},
			},
			wantErr:   true,
			wantField: "nodes[0].metadata",
		},
		{
			name: "metadata with escaped surrogate pair and html characters",
			state: domain.GraphState{
				Nodes: []domain.Node{{ID: "n1", Role: domain.RolePlan, Metadata: domain.Metadata(`{"q":"a<b&c","e":"\ud83d\ude00"}`)}},
			},
		},
		{
			name: "node text is not UTF-8",
			state: domain.GraphState{
				Nodes: []domain.Node{{ID: "n1", Text: "a\xffb", Role: domain.RolePlan}},
			},
			wantErr:   true,
			wantField: "nodes[0].text",
		},
		{
			name: "node id is not UTF-8",
			state: domain.GraphState{
				Nodes: []domain.Node{{ID: "n\xc3", Role: domain.RolePlan}},
			},
			wantErr:   true,
			wantField: "nodes[0].id",
		},
		{
			name: "parent id is not UTF-8",
			state: domain.GraphState{
				Nodes: []domain.Node{{ID: "n1", Role: domain.RolePlan, ParentID: domain.StringPtr("\xfe")}},
			},
			wantErr:   true,
			wantField: "nodes[0].parent_id",
		},
		{
			name: "edge type is not UTF-8",
			state: domain.GraphState{
				Edges: []domain.Edge{{ID: "e1", Source: "a", Target: "b", EdgeType: "caus\xe9s"}},
			},
			wantErr:   true,
			wantField: "edges[0].edge_type",
		},
		{
			name: "non-ASCII text is fine",
			state: domain.GraphState{
				Nodes: []domain.Node{{ID: "n-é", Text: "λ → über <tag> & more", Role: domain.RoleMemory}},
				Edges: []domain.Edge{{ID: "e1", Source: "n-é", Target: "n-é", EdgeType: "réfère"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGraphState(tt.state)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateGraphState() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}

			var valErr *ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if valErr.Field != tt.wantField {
				t.Errorf("expected field %s, got %s", tt.wantField, valErr.Field)
			}
		})
	}
}

func TestValidateGraphShape_IgnoresContent(t *testing.T) {
	state := domain.GraphState{
		Nodes: []domain.Node{{ID: "n1", Text: "a\xffb", Role: domain.RolePlan, Metadata: domain.Metadata(`{"x":1e400}`)}},
		Edges: []domain.Edge{},
	}
	if err := ValidateGraphShape(state); err != nil {
		t.Errorf("ValidateGraphShape() error = %v, want nil", err)
	}

	state.Nodes = append(state.Nodes, domain.Node{ID: "n1", Role: domain.RolePlan})
	if err := ValidateGraphShape(state); !errors.Is(err, ErrValidation) {
		t.Errorf("expected duplicate id to fail validation, got %v", err)
	}
}

func TestValidateText(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "empty is allowed", value: ""},
		{name: "whitespace is allowed", value: "   "},
		{name: "non-ASCII", value: "résumé <b> & ✓"},
		{name: "invalid UTF-8", value: "agent\xff", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateText("agentID", tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateText() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Error("expected error to match ErrValidation")
			}
		})
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "not found", err: &NotFoundError{Kind: "commit", ID: "c1"}, want: "not_found"},
		{name: "corrupt", err: &CorruptError{ID: "s1", Reason: "bad json"}, want: "corrupt"},
		{name: "validation", err: &ValidationError{Field: "id", Message: "required"}, want: "validation"},
		{name: "storage", err: &StorageError{Op: "read", Err: errors.New("disk I/O error")}, want: "storage_unavailable"},
		{name: "uncategorized defaults to storage", err: errors.New("boom"), want: "storage_unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Category(tt.err); got != tt.want {
				t.Errorf("Category() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStorage_KeepsExistingCategory(t *testing.T) {
	nf := &NotFoundError{Kind: "snapshot", ID: "s1"}
	if err := Storage("get snapshot", nf); err != nf {
		t.Errorf("expected categorized error to pass through, got %v", err)
	}

	err := Storage("begin", errors.New("database is locked"))
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("expected ErrStorageUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "database is locked") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}
