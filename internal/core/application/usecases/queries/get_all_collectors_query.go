package queries

import (
	"context"
	"errors"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/pkg/guard"
)

var ErrGetAllCollectorsQueryIsNotConstructed = errors.New(
	"GetAllCollectorsQuery must be created via NewGetAllCollectorsQuery constructor",
)

// GetAllCollectorsQuery retrieves every collector with its duty flag and counters.
//
// Example:
//
//	query := NewGetAllCollectorsQuery()
//	collectors, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to retrieve collectors: %w", err)
//	}
//	for _, c := range collectors {
//	    fmt.Printf("%s: %d active\n", c.Name, c.CurrentAssignments)
//	}
type GetAllCollectorsQuery struct {
	guard guard.ConstructorGuard
}

// NewGetAllCollectorsQuery creates a query to retrieve all collectors.
// This is a parameterless query that fetches the complete collector list.
func NewGetAllCollectorsQuery() GetAllCollectorsQuery {
	return GetAllCollectorsQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetAllCollectorsQueryIsNotConstructed if validation fails.
func (q GetAllCollectorsQuery) Validate() error {
	return q.guard.Validate(ErrGetAllCollectorsQueryIsNotConstructed)
}

// GetAllCollectorsQueryResponse represents collector information in the read model.
type GetAllCollectorsQueryResponse struct {
	ID                 kernel.UUID
	Name               string
	Mobile             string
	IsAvailable        bool
	CurrentAssignments int
	TotalCollections   int
	Version            int64
}

// GetAllCollectorsQueryHandler retrieves all collectors sorted by name.
type GetAllCollectorsQueryHandler struct {
	collectors CollectorReader
}

func NewGetAllCollectorsQueryHandler(collectors CollectorReader) GetAllCollectorsQueryHandler {
	return GetAllCollectorsQueryHandler{collectors: collectors}
}

func (h GetAllCollectorsQueryHandler) Handle(
	ctx context.Context,
	query GetAllCollectorsQuery,
) ([]GetAllCollectorsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	all, err := h.collectors.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]GetAllCollectorsQueryResponse, 0, len(all))
	for _, c := range all {
		result = append(result, GetAllCollectorsQueryResponse{
			ID:                 c.ID(),
			Name:               c.Name(),
			Mobile:             c.Mobile(),
			IsAvailable:        c.IsAvailable(),
			CurrentAssignments: c.CurrentAssignments(),
			TotalCollections:   c.TotalCollections(),
			Version:            c.Version(),
		})
	}
	return result, nil
}
