package ports

import (
	"context"

	"cortexmap/internal/domain"
)

// GraphEditor hands a graph state to a person for editing
type GraphEditor interface {
	// Edit returns the state as left by the user. Returning the input
	// unchanged is not an error.
	Edit(ctx context.Context, state domain.GraphState) (domain.GraphState, error)
}
