package land

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PlotStatus is the sale status of a plot
type PlotStatus string

const (
	PlotStatusAvailable PlotStatus = "AVAILABLE"
	PlotStatusReserved  PlotStatus = "RESERVED"
	PlotStatusSold      PlotStatus = "SOLD"
	PlotStatusBlocked   PlotStatus = "BLOCKED"
)

// IsValid checks if the status is known
func (s PlotStatus) IsValid() bool {
	switch s {
	case PlotStatusAvailable, PlotStatusReserved, PlotStatusSold, PlotStatusBlocked:
		return true
	}
	return false
}

// CanSell returns true if a sale can be made on a plot in this status
func (s PlotStatus) CanSell() bool {
	return s == PlotStatusAvailable || s == PlotStatusReserved
}

// String returns the string representation
func (s PlotStatus) String() string {
	return string(s)
}

// AreaBucket names the RS number counter currently holding a plot's area.
// Released plots hold none until they are sold again.
type AreaBucket string

const (
	BucketAllocated AreaBucket = "ALLOCATED"
	BucketSold      AreaBucket = "SOLD"
	BucketNone      AreaBucket = "NONE"
)

// Plot is a saleable subdivision of an RS number
type Plot struct {
	shared.BaseAggregateRoot
	RSNumberID uuid.UUID
	PlotNumber string
	Area       decimal.Decimal
	Status     PlotStatus
	Bucket     AreaBucket
	ClientID   *uuid.UUID
	SaleDate   *time.Time
	Facing     string
	RoadWidth  string
	Notes      string
}

func newPlot(rsNumberID uuid.UUID, plotNumber string, area decimal.Decimal, status PlotStatus) (*Plot, error) {
	plotNumber = strings.TrimSpace(plotNumber)
	if plotNumber == "" {
		return nil, shared.NewValidationError("Plot number cannot be empty")
	}
	if len(plotNumber) > 50 {
		return nil, shared.NewValidationError("Plot number cannot exceed 50 characters")
	}
	if area.IsNegative() {
		return nil, shared.NewValidationError("Plot area cannot be negative")
	}
	if !status.IsValid() {
		return nil, shared.NewValidationError("Invalid plot status: " + string(status))
	}
	bucket := BucketAllocated
	if status == PlotStatusSold {
		bucket = BucketSold
	}
	return &Plot{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		RSNumberID:        rsNumberID,
		PlotNumber:        plotNumber,
		Area:              area,
		Status:            status,
		Bucket:            bucket,
	}, nil
}

// UpdateDetails changes descriptive fields only
func (p *Plot) UpdateDetails(facing, roadWidth, notes string) {
	p.Facing = facing
	p.RoadWidth = roadWidth
	p.Notes = notes
	p.IncrementVersion()
}

// Reserve holds an available plot for a client ahead of a sale
func (p *Plot) Reserve(clientID uuid.UUID) error {
	if p.Status != PlotStatusAvailable {
		return shared.NewInvalidStateError("Only available plots can be reserved, current status " + p.Status.String())
	}
	if clientID == uuid.Nil {
		return shared.NewValidationError("Client is required to reserve a plot")
	}
	p.Status = PlotStatusReserved
	p.ClientID = &clientID
	p.IncrementVersion()
	return nil
}

// Block takes an available plot off the market
func (p *Plot) Block() error {
	if p.Status != PlotStatusAvailable {
		return shared.NewInvalidStateError("Only available plots can be blocked, current status " + p.Status.String())
	}
	p.Status = PlotStatusBlocked
	p.IncrementVersion()
	return nil
}

// Unblock returns a blocked or reserved plot to the market
func (p *Plot) Unblock() error {
	if p.Status != PlotStatusBlocked && p.Status != PlotStatusReserved {
		return shared.NewInvalidStateError("Only blocked or reserved plots can be unblocked, current status " + p.Status.String())
	}
	p.Status = PlotStatusAvailable
	p.ClientID = nil
	p.IncrementVersion()
	return nil
}

// IsReservedFor reports whether the plot is reserved for the given client
func (p *Plot) IsReservedFor(clientID uuid.UUID) bool {
	return p.Status == PlotStatusReserved && p.ClientID != nil && *p.ClientID == clientID
}
