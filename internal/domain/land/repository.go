package land

import (
	"context"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/shared"
)

// RSNumberFilter defines filtering options for RS number queries
type RSNumberFilter struct {
	shared.Filter
	ProjectName string
}

// RSNumberRepository defines the interface for RS number persistence
type RSNumberRepository interface {
	// FindByID finds an RS number by ID
	FindByID(ctx context.Context, id uuid.UUID) (*RSNumber, error)

	// FindByIDForUpdate finds an RS number and row-locks it for the current transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*RSNumber, error)

	// FindAll lists RS numbers with filtering and returns the total count
	FindAll(ctx context.Context, filter RSNumberFilter) ([]RSNumber, int64, error)

	// ExistsByNumber checks whether an RS number is already registered
	ExistsByNumber(ctx context.Context, number string) (bool, error)

	// Save creates a new RS number
	Save(ctx context.Context, rs *RSNumber) error

	// SaveWithLock updates an RS number with optimistic locking (version check)
	SaveWithLock(ctx context.Context, rs *RSNumber) error
}

// PlotFilter defines filtering options for plot queries
type PlotFilter struct {
	shared.Filter
	RSNumberID *uuid.UUID
	Status     *PlotStatus
	ClientID   *uuid.UUID
}

// PlotRepository defines the interface for plot persistence
type PlotRepository interface {
	// FindByID finds a plot by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Plot, error)

	// FindByIDForUpdate finds a plot and row-locks it for the current transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Plot, error)

	// FindAll lists plots with filtering and returns the total count
	FindAll(ctx context.Context, filter PlotFilter) ([]Plot, int64, error)

	// ExistsByPlotNumber checks whether a plot number is taken within an RS number
	ExistsByPlotNumber(ctx context.Context, rsNumberID uuid.UUID, plotNumber string) (bool, error)

	// SumActiveArea sums the area of plots that still hold area of the RS number
	SumActiveArea(ctx context.Context, rsNumberID uuid.UUID) (AreaTotals, error)

	// Save creates a new plot
	Save(ctx context.Context, plot *Plot) error

	// SaveWithLock updates a plot with optimistic locking (version check)
	SaveWithLock(ctx context.Context, plot *Plot) error

	// Delete removes a plot
	Delete(ctx context.Context, id uuid.UUID) error
}
