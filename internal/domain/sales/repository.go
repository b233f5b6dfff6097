package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/shared"
)

// SaleFilter defines filtering options for sale queries
type SaleFilter struct {
	shared.Filter
	Status     *SaleStatus
	ClientID   *uuid.UUID
	PlotID     *uuid.UUID
	RSNumberID *uuid.UUID
	FromDate   *time.Time
	ToDate     *time.Time
}

// SaleRepository defines the interface for sale persistence
type SaleRepository interface {
	// FindByID finds a sale with its stages
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindByIDForUpdate finds a sale and row-locks it for the current transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindAll lists sales with filtering and returns the total count
	FindAll(ctx context.Context, filter SaleFilter) ([]Sale, int64, error)

	// FindActiveWithDueStages lists active sales having an unpaid stage due on or before the date
	FindActiveWithDueStages(ctx context.Context, dueBy time.Time) ([]Sale, error)

	// ExistsActiveForPlot checks whether a non-cancelled sale holds the plot
	ExistsActiveForPlot(ctx context.Context, plotID uuid.UUID) (bool, error)

	// CountActiveForClient counts non-cancelled sales of a client
	CountActiveForClient(ctx context.Context, clientID uuid.UUID) (int64, error)

	// Save creates a new sale with its stages
	Save(ctx context.Context, sale *Sale) error

	// SaveWithLock updates a sale and its stages with optimistic locking
	SaveWithLock(ctx context.Context, sale *Sale) error
}

// CancellationFilter defines filtering options for cancellation queries
type CancellationFilter struct {
	shared.Filter
	Status   *CancellationStatus
	SaleID   *uuid.UUID
	ClientID *uuid.UUID
}

// CancellationRepository defines the interface for cancellation persistence
type CancellationRepository interface {
	// FindByID finds a cancellation with its refund payments
	FindByID(ctx context.Context, id uuid.UUID) (*Cancellation, error)

	// FindByIDForUpdate finds a cancellation and row-locks it for the current transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Cancellation, error)

	// FindAll lists cancellations with filtering and returns the total count
	FindAll(ctx context.Context, filter CancellationFilter) ([]Cancellation, int64, error)

	// FindPendingBySale finds the pending cancellation of a sale; nil when there is none
	FindPendingBySale(ctx context.Context, saleID uuid.UUID) (*Cancellation, error)

	// Save creates a new cancellation
	Save(ctx context.Context, c *Cancellation) error

	// SaveWithLock updates a cancellation with optimistic locking and appends new refund payments
	SaveWithLock(ctx context.Context, c *Cancellation) error
}
