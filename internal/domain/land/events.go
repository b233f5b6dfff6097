package land

import (
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type names
const (
	AggregateTypeRSNumber = "RSNumber"
	AggregateTypePlot     = "Plot"
)

// Event type names
const (
	EventTypeRSNumberRegistered    = "RSNumberRegistered"
	EventTypeRSNumberAreaCorrected = "RSNumberAreaCorrected"
	EventTypePlotCreated           = "PlotCreated"
	EventTypePlotResized           = "PlotResized"
	EventTypePlotSold              = "PlotSold"
	EventTypePlotReleased          = "PlotReleased"
)

// RSNumberRegisteredEvent is raised when a parcel is registered
type RSNumberRegisteredEvent struct {
	shared.BaseDomainEvent
	RSNumberID uuid.UUID       `json:"rs_number_id"`
	Number     string          `json:"number"`
	TotalArea  decimal.Decimal `json:"total_area"`
}

// NewRSNumberRegisteredEvent creates a new RSNumberRegisteredEvent
func NewRSNumberRegisteredEvent(rs *RSNumber) *RSNumberRegisteredEvent {
	return &RSNumberRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRSNumberRegistered, AggregateTypeRSNumber, rs.ID),
		RSNumberID:      rs.ID,
		Number:          rs.Number,
		TotalArea:       rs.TotalArea,
	}
}

// RSNumberAreaCorrectedEvent is raised when the registered total area is corrected
type RSNumberAreaCorrectedEvent struct {
	shared.BaseDomainEvent
	RSNumberID   uuid.UUID       `json:"rs_number_id"`
	OldTotalArea decimal.Decimal `json:"old_total_area"`
	NewTotalArea decimal.Decimal `json:"new_total_area"`
	Reason       string          `json:"reason"`
}

// NewRSNumberAreaCorrectedEvent creates a new RSNumberAreaCorrectedEvent
func NewRSNumberAreaCorrectedEvent(rs *RSNumber, old decimal.Decimal, reason string) *RSNumberAreaCorrectedEvent {
	return &RSNumberAreaCorrectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRSNumberAreaCorrected, AggregateTypeRSNumber, rs.ID),
		RSNumberID:      rs.ID,
		OldTotalArea:    old,
		NewTotalArea:    rs.TotalArea,
		Reason:          reason,
	}
}

// PlotCreatedEvent is raised when a plot is carved out of an RS number
type PlotCreatedEvent struct {
	shared.BaseDomainEvent
	PlotID     uuid.UUID       `json:"plot_id"`
	RSNumberID uuid.UUID       `json:"rs_number_id"`
	PlotNumber string          `json:"plot_number"`
	Area       decimal.Decimal `json:"area"`
	Status     PlotStatus      `json:"status"`
}

// NewPlotCreatedEvent creates a new PlotCreatedEvent
func NewPlotCreatedEvent(p *Plot) *PlotCreatedEvent {
	return &PlotCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePlotCreated, AggregateTypePlot, p.ID),
		PlotID:          p.ID,
		RSNumberID:      p.RSNumberID,
		PlotNumber:      p.PlotNumber,
		Area:            p.Area,
		Status:          p.Status,
	}
}

// PlotResizedEvent is raised when a plot's area changes
type PlotResizedEvent struct {
	shared.BaseDomainEvent
	PlotID  uuid.UUID       `json:"plot_id"`
	OldArea decimal.Decimal `json:"old_area"`
	NewArea decimal.Decimal `json:"new_area"`
}

// NewPlotResizedEvent creates a new PlotResizedEvent
func NewPlotResizedEvent(p *Plot, old decimal.Decimal) *PlotResizedEvent {
	return &PlotResizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePlotResized, AggregateTypePlot, p.ID),
		PlotID:          p.ID,
		OldArea:         old,
		NewArea:         p.Area,
	}
}

// PlotSoldEvent is raised when a plot is sold to a client
type PlotSoldEvent struct {
	shared.BaseDomainEvent
	PlotID     uuid.UUID `json:"plot_id"`
	RSNumberID uuid.UUID `json:"rs_number_id"`
	ClientID   uuid.UUID `json:"client_id"`
	SaleDate   time.Time `json:"sale_date"`
}

// NewPlotSoldEvent creates a new PlotSoldEvent
func NewPlotSoldEvent(p *Plot) *PlotSoldEvent {
	e := &PlotSoldEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePlotSold, AggregateTypePlot, p.ID),
		PlotID:          p.ID,
		RSNumberID:      p.RSNumberID,
	}
	if p.ClientID != nil {
		e.ClientID = *p.ClientID
	}
	if p.SaleDate != nil {
		e.SaleDate = *p.SaleDate
	}
	return e
}

// PlotReleasedEvent is raised when a plot returns to the market
type PlotReleasedEvent struct {
	shared.BaseDomainEvent
	PlotID     uuid.UUID       `json:"plot_id"`
	RSNumberID uuid.UUID       `json:"rs_number_id"`
	Area       decimal.Decimal `json:"area"`
}

// NewPlotReleasedEvent creates a new PlotReleasedEvent
func NewPlotReleasedEvent(p *Plot) *PlotReleasedEvent {
	return &PlotReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePlotReleased, AggregateTypePlot, p.ID),
		PlotID:          p.ID,
		RSNumberID:      p.RSNumberID,
		Area:            p.Area,
	}
}
