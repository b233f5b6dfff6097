package land

import (
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/land"
	"github.com/shopspring/decimal"
)

// CreateRSNumberRequest registers a new parcel
type CreateRSNumberRequest struct {
	Number      string          `json:"number" binding:"required,max=50"`
	ProjectName string          `json:"project_name" binding:"required,max=200"`
	Location    string          `json:"location" binding:"max=500"`
	TotalArea   decimal.Decimal `json:"total_area" binding:"required,gt=0"`
	UnitType    string          `json:"unit_type" binding:"required,oneof=KATHA DECIMAL SQFT ACRE BIGHA"`
	Notes       string          `json:"notes"`
}

// UpdateRSNumberRequest edits descriptive fields of a parcel
type UpdateRSNumberRequest struct {
	ProjectName string `json:"project_name" binding:"required,max=200"`
	Location    string `json:"location" binding:"max=500"`
	Notes       string `json:"notes"`
}

// CorrectAreaRequest changes the registered total area
type CorrectAreaRequest struct {
	TotalArea decimal.Decimal `json:"total_area" binding:"required,gt=0"`
	Reason    string          `json:"reason" binding:"required,max=500"`
}

// RSNumberListFilter defines list query parameters
type RSNumberListFilter struct {
	Search      string `form:"search"`
	ProjectName string `form:"project_name"`
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size"`
}

// RSNumberResponse represents an RS number in API responses
type RSNumberResponse struct {
	ID            uuid.UUID       `json:"id"`
	Number        string          `json:"number"`
	ProjectName   string          `json:"project_name"`
	Location      string          `json:"location,omitempty"`
	UnitType      string          `json:"unit_type"`
	TotalArea     decimal.Decimal `json:"total_area"`
	SoldArea      decimal.Decimal `json:"sold_area"`
	AllocatedArea decimal.Decimal `json:"allocated_area"`
	RemainingArea decimal.Decimal `json:"remaining_area"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

// CreatePlotRequest carves a plot out of an RS number
type CreatePlotRequest struct {
	RSNumberID uuid.UUID        `json:"rs_number_id" binding:"required"`
	PlotNumber string           `json:"plot_number" binding:"required,max=50"`
	Area       *decimal.Decimal `json:"area" binding:"required,gte=0"`
	Status     string           `json:"status" binding:"omitempty,oneof=AVAILABLE RESERVED SOLD BLOCKED"`
	Facing     string           `json:"facing" binding:"max=50"`
	RoadWidth  string           `json:"road_width" binding:"max=50"`
	Notes      string           `json:"notes"`
}

// ResizePlotRequest changes a plot's area. Zero keeps the plot as a record
// that consumes no area.
type ResizePlotRequest struct {
	Area *decimal.Decimal `json:"area" binding:"required,gte=0"`
}

// ReservePlotRequest holds a plot for a client
type ReservePlotRequest struct {
	ClientID uuid.UUID `json:"client_id" binding:"required"`
}

// PlotListFilter defines list query parameters
type PlotListFilter struct {
	Search     string `form:"search"`
	RSNumberID string `form:"rs_number_id"`
	Status     string `form:"status"`
	ClientID   string `form:"client_id"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

// PlotResponse represents a plot in API responses
type PlotResponse struct {
	ID         uuid.UUID       `json:"id"`
	RSNumberID uuid.UUID       `json:"rs_number_id"`
	PlotNumber string          `json:"plot_number"`
	Area       decimal.Decimal `json:"area"`
	Status     string          `json:"status"`
	Bucket     string          `json:"area_bucket"`
	ClientID   *uuid.UUID      `json:"client_id,omitempty"`
	SaleDate   *time.Time      `json:"sale_date,omitempty"`
	Facing     string          `json:"facing,omitempty"`
	RoadWidth  string          `json:"road_width,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Version    int             `json:"version"`
}

// ToRSNumberResponse converts the domain aggregate to its API shape
func ToRSNumberResponse(rs *land.RSNumber) RSNumberResponse {
	return RSNumberResponse{
		ID:            rs.ID,
		Number:        rs.Number,
		ProjectName:   rs.ProjectName,
		Location:      rs.Location,
		UnitType:      string(rs.UnitType),
		TotalArea:     rs.TotalArea,
		SoldArea:      rs.SoldArea,
		AllocatedArea: rs.AllocatedArea,
		RemainingArea: rs.RemainingArea,
		Notes:         rs.Notes,
		CreatedAt:     rs.CreatedAt,
		UpdatedAt:     rs.UpdatedAt,
		Version:       rs.Version,
	}
}

// ToPlotResponse converts the domain aggregate to its API shape
func ToPlotResponse(p *land.Plot) PlotResponse {
	return PlotResponse{
		ID:         p.ID,
		RSNumberID: p.RSNumberID,
		PlotNumber: p.PlotNumber,
		Area:       p.Area,
		Status:     string(p.Status),
		Bucket:     string(p.Bucket),
		ClientID:   p.ClientID,
		SaleDate:   p.SaleDate,
		Facing:     p.Facing,
		RoadWidth:  p.RoadWidth,
		Notes:      p.Notes,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
		Version:    p.Version,
	}
}
