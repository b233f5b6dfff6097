package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/shared"
)

// ClientFilter defines filtering options for client queries
type ClientFilter struct {
	shared.Filter
	Status *ClientStatus
}

// ClientRepository defines the interface for client persistence
type ClientRepository interface {
	// FindByID finds a client by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)

	// FindByCode finds a client by its unique code
	FindByCode(ctx context.Context, code string) (*Client, error)

	// FindAll lists clients; Filter.Search matches code, name, phone and NID
	FindAll(ctx context.Context, filter ClientFilter) ([]Client, int64, error)

	// ExistsByCode checks if a client code is taken
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// Save creates or updates a client
	Save(ctx context.Context, client *Client) error

	// Delete removes a client. Callers check for active sales first.
	Delete(ctx context.Context, id uuid.UUID) error
}
