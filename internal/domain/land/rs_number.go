// Package land owns RS number area bookkeeping and plot status.
package land

import (
	"strings"

	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// RSNumber is a registered land parcel from which plots are subdivided.
//
// Invariant: SoldArea + AllocatedArea + RemainingArea == TotalArea, and
// RemainingArea >= 0. Area counters change only through the Allocator.
type RSNumber struct {
	shared.BaseAggregateRoot
	Number        string
	ProjectName   string
	Location      string
	UnitType      valueobject.AreaUnit
	TotalArea     decimal.Decimal
	SoldArea      decimal.Decimal
	AllocatedArea decimal.Decimal
	RemainingArea decimal.Decimal
	Notes         string
}

// NewRSNumber registers a parcel with all of its area remaining
func NewRSNumber(number, projectName, location string, totalArea decimal.Decimal, unit valueobject.AreaUnit) (*RSNumber, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewValidationError("RS number cannot be empty")
	}
	if len(number) > 50 {
		return nil, shared.NewValidationError("RS number cannot exceed 50 characters")
	}
	if strings.TrimSpace(projectName) == "" {
		return nil, shared.NewValidationError("Project name cannot be empty")
	}
	area, err := valueobject.NewArea(totalArea, unit)
	if err != nil {
		return nil, shared.NewValidationError(err.Error())
	}
	if area.IsZero() {
		return nil, shared.NewValidationError("Total area must be positive")
	}

	rs := &RSNumber{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		ProjectName:       strings.TrimSpace(projectName),
		Location:          strings.TrimSpace(location),
		UnitType:          unit,
		TotalArea:         area.Value(),
		SoldArea:          decimal.Zero,
		AllocatedArea:     decimal.Zero,
		RemainingArea:     area.Value(),
	}
	rs.AddDomainEvent(NewRSNumberRegisteredEvent(rs))
	return rs, nil
}

// UpdateDetails changes descriptive fields; area is untouched
func (r *RSNumber) UpdateDetails(projectName, location, notes string) error {
	if strings.TrimSpace(projectName) == "" {
		return shared.NewValidationError("Project name cannot be empty")
	}
	r.ProjectName = strings.TrimSpace(projectName)
	r.Location = strings.TrimSpace(location)
	r.Notes = notes
	r.IncrementVersion()
	return nil
}

// CorrectTotalArea is the only path that changes TotalArea. The new total
// must still cover everything already sold or allocated.
func (r *RSNumber) CorrectTotalArea(newTotal decimal.Decimal, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return shared.NewValidationError("A reason is required to correct the total area")
	}
	area, err := valueobject.NewArea(newTotal, r.UnitType)
	if err != nil {
		return shared.NewValidationError(err.Error())
	}
	consumed := r.SoldArea.Add(r.AllocatedArea)
	if area.Value().LessThan(consumed) {
		return shared.NewInsufficientAreaError(consumed, area.Value())
	}
	old := r.TotalArea
	r.TotalArea = area.Value()
	r.RemainingArea = r.TotalArea.Sub(consumed)
	r.IncrementVersion()
	r.AddDomainEvent(NewRSNumberAreaCorrectedEvent(r, old, reason))
	return nil
}

// CheckInvariant verifies the area counters add up
func (r *RSNumber) CheckInvariant() error {
	if r.RemainingArea.IsNegative() || r.SoldArea.IsNegative() || r.AllocatedArea.IsNegative() {
		return shared.NewInvalidStateError("RS number area counters cannot be negative")
	}
	if !r.SoldArea.Add(r.AllocatedArea).Add(r.RemainingArea).Equal(r.TotalArea) {
		return shared.NewInvalidStateError("RS number area counters do not add up to the total area")
	}
	return nil
}

// HasRemaining reports whether area can still be taken from the remaining pool
func (r *RSNumber) HasRemaining(area decimal.Decimal) bool {
	return area.LessThanOrEqual(r.RemainingArea)
}

// take moves area from the remaining pool into a bucket
func (r *RSNumber) take(bucket AreaBucket, area decimal.Decimal) error {
	if area.IsZero() || bucket == BucketNone {
		return nil
	}
	if !r.HasRemaining(area) {
		return shared.NewInsufficientAreaError(area, r.RemainingArea)
	}
	r.RemainingArea = r.RemainingArea.Sub(area)
	r.addTo(bucket, area)
	return nil
}

// giveBack returns area held by a bucket to the remaining pool
func (r *RSNumber) giveBack(bucket AreaBucket, area decimal.Decimal) {
	if area.IsZero() || bucket == BucketNone {
		return
	}
	r.addTo(bucket, area.Neg())
	r.RemainingArea = r.RemainingArea.Add(area)
}

// shift moves area between two held buckets without touching remaining
func (r *RSNumber) shift(from, to AreaBucket, area decimal.Decimal) {
	if from == to || area.IsZero() {
		return
	}
	r.addTo(from, area.Neg())
	r.addTo(to, area)
}

func (r *RSNumber) addTo(bucket AreaBucket, area decimal.Decimal) {
	switch bucket {
	case BucketAllocated:
		r.AllocatedArea = r.AllocatedArea.Add(area)
	case BucketSold:
		r.SoldArea = r.SoldArea.Add(area)
	}
}

// AreaTotals sums plot area per bucket for one RS number
type AreaTotals struct {
	Allocated decimal.Decimal
	Sold      decimal.Decimal
}

// Reconcile compares the counters with the plot sums held in storage
func (r *RSNumber) Reconcile(totals AreaTotals) error {
	if err := r.CheckInvariant(); err != nil {
		return err
	}
	if !totals.Allocated.Equal(r.AllocatedArea) || !totals.Sold.Equal(r.SoldArea) {
		return shared.NewInvalidStateError("RS number " + r.Number + " counters do not match its plots").
			WithDetail("allocated_area", r.AllocatedArea.String()).
			WithDetail("plots_allocated_area", totals.Allocated.String()).
			WithDetail("sold_area", r.SoldArea.String()).
			WithDetail("plots_sold_area", totals.Sold.String())
	}
	return nil
}
