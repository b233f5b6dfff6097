package land

import (
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Allocator moves area between an RS number's remaining pool and its plots.
// Callers must hold the RS number exclusively (lock plus row lock) for the
// whole operation and persist both aggregates in one transaction.
type Allocator struct{}

// NewAllocator creates an Allocator
func NewAllocator() Allocator {
	return Allocator{}
}

// CreatePlot carves a plot out of the RS number's remaining area
func (Allocator) CreatePlot(rs *RSNumber, plotNumber string, area decimal.Decimal, status PlotStatus) (*Plot, error) {
	area, err := plotArea(rs, area)
	if err != nil {
		return nil, err
	}
	plot, err := newPlot(rs.ID, plotNumber, area, status)
	if err != nil {
		return nil, err
	}
	if err := rs.take(plot.Bucket, area); err != nil {
		return nil, err
	}
	rs.IncrementVersion()
	plot.AddDomainEvent(NewPlotCreatedEvent(plot))
	return plot, nil
}

// ResizePlot changes a plot's area, adjusting the bucket it occupies by the delta
func (Allocator) ResizePlot(rs *RSNumber, plot *Plot, newArea decimal.Decimal) error {
	if err := checkOwnership(rs, plot); err != nil {
		return err
	}
	newArea, err := plotArea(rs, newArea)
	if err != nil {
		return err
	}
	delta := newArea.Sub(plot.Area)
	if delta.IsZero() {
		return nil
	}
	if plot.Bucket != BucketNone {
		if delta.IsPositive() {
			if err := rs.take(plot.Bucket, delta); err != nil {
				return err
			}
		} else {
			rs.giveBack(plot.Bucket, delta.Neg())
		}
		rs.IncrementVersion()
	}
	old := plot.Area
	plot.Area = newArea
	plot.IncrementVersion()
	plot.AddDomainEvent(NewPlotResizedEvent(plot, old))
	return nil
}

// plotArea rounds a plot area to the scale the RS number counters are
// stored at, so sold + allocated + remaining stays equal to total.
func plotArea(rs *RSNumber, area decimal.Decimal) (decimal.Decimal, error) {
	a, err := valueobject.NewArea(area, rs.UnitType)
	if err != nil {
		return decimal.Zero, shared.NewValidationError("Invalid plot area: " + err.Error())
	}
	return a.Value(), nil
}

// MarkSold moves a plot's area into the sold bucket and assigns the client
func (Allocator) MarkSold(rs *RSNumber, plot *Plot, clientID uuid.UUID, saleDate time.Time) error {
	if err := checkOwnership(rs, plot); err != nil {
		return err
	}
	if !plot.Status.CanSell() {
		return shared.NewInvalidStateError("Plot " + plot.PlotNumber + " cannot be sold in status " + plot.Status.String())
	}
	if clientID == uuid.Nil {
		return shared.NewValidationError("Client is required to sell a plot")
	}
	switch plot.Bucket {
	case BucketNone:
		if err := rs.take(BucketSold, plot.Area); err != nil {
			return err
		}
	default:
		rs.shift(plot.Bucket, BucketSold, plot.Area)
	}
	plot.Bucket = BucketSold
	plot.Status = PlotStatusSold
	plot.ClientID = &clientID
	plot.SaleDate = &saleDate
	rs.IncrementVersion()
	plot.IncrementVersion()
	plot.AddDomainEvent(NewPlotSoldEvent(plot))
	return nil
}

// Release returns the plot's area to the RS number's remaining pool and
// makes the plot available again
func (Allocator) Release(rs *RSNumber, plot *Plot) error {
	if err := checkOwnership(rs, plot); err != nil {
		return err
	}
	rs.giveBack(plot.Bucket, plot.Area)
	plot.Bucket = BucketNone
	plot.Status = PlotStatusAvailable
	plot.ClientID = nil
	plot.SaleDate = nil
	rs.IncrementVersion()
	plot.IncrementVersion()
	plot.AddDomainEvent(NewPlotReleasedEvent(plot))
	return nil
}

// RemovePlot returns an unsold plot's area before the plot is deleted
func (Allocator) RemovePlot(rs *RSNumber, plot *Plot) error {
	if err := checkOwnership(rs, plot); err != nil {
		return err
	}
	if plot.Status != PlotStatusAvailable && plot.Status != PlotStatusBlocked {
		return shared.NewInvalidStateError("Only available or blocked plots can be removed, current status " + plot.Status.String())
	}
	rs.giveBack(plot.Bucket, plot.Area)
	plot.Bucket = BucketNone
	rs.IncrementVersion()
	return nil
}

func checkOwnership(rs *RSNumber, plot *Plot) error {
	if plot.RSNumberID != rs.ID {
		return shared.NewValidationError("Plot " + plot.PlotNumber + " does not belong to RS number " + rs.Number)
	}
	return nil
}
