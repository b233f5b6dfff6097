package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/land"
	"github.com/landerp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// RSNumberModel is the persistence model for the RSNumber aggregate root.
type RSNumberModel struct {
	AggregateModel
	Number        string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	ProjectName   string               `gorm:"type:varchar(200);not null;index"`
	Location      string               `gorm:"type:varchar(300)"`
	UnitType      valueobject.AreaUnit `gorm:"type:varchar(20);not null"`
	TotalArea     decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	SoldArea      decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	AllocatedArea decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	RemainingArea decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Notes         string               `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (RSNumberModel) TableName() string {
	return "rs_numbers"
}

// ToDomain converts the persistence model to a domain RSNumber
func (m *RSNumberModel) ToDomain() *land.RSNumber {
	rs := &land.RSNumber{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Number:            m.Number,
		ProjectName:       m.ProjectName,
		Location:          m.Location,
		UnitType:          m.UnitType,
		TotalArea:         m.TotalArea,
		SoldArea:          m.SoldArea,
		AllocatedArea:     m.AllocatedArea,
		RemainingArea:     m.RemainingArea,
		Notes:             m.Notes,
	}
	rs.MarkPersisted()
	return rs
}

// FromDomain populates the persistence model from a domain RSNumber
func (m *RSNumberModel) FromDomain(rs *land.RSNumber) {
	m.FromDomainAggregateRoot(rs.BaseAggregateRoot)
	m.Number = rs.Number
	m.ProjectName = rs.ProjectName
	m.Location = rs.Location
	m.UnitType = rs.UnitType
	m.TotalArea = rs.TotalArea
	m.SoldArea = rs.SoldArea
	m.AllocatedArea = rs.AllocatedArea
	m.RemainingArea = rs.RemainingArea
	m.Notes = rs.Notes
}

// RSNumberModelFromDomain creates a new persistence model from a domain RSNumber
func RSNumberModelFromDomain(rs *land.RSNumber) *RSNumberModel {
	m := &RSNumberModel{}
	m.FromDomain(rs)
	return m
}

// PlotModel is the persistence model for the Plot aggregate root.
type PlotModel struct {
	AggregateModel
	RSNumberID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_plot_rs_number_plot,priority:1"`
	PlotNumber string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_plot_rs_number_plot,priority:2"`
	Area       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status     land.PlotStatus `gorm:"type:varchar(20);not null;default:'AVAILABLE';index"`
	Bucket     land.AreaBucket `gorm:"type:varchar(20);not null;default:'ALLOCATED'"`
	ClientID   *uuid.UUID      `gorm:"type:uuid;index"`
	SaleDate   *time.Time
	Facing     string `gorm:"type:varchar(50)"`
	RoadWidth  string `gorm:"type:varchar(50)"`
	Notes      string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PlotModel) TableName() string {
	return "plots"
}

// ToDomain converts the persistence model to a domain Plot
func (m *PlotModel) ToDomain() *land.Plot {
	p := &land.Plot{
		BaseAggregateRoot: m.ToAggregateRoot(),
		RSNumberID:        m.RSNumberID,
		PlotNumber:        m.PlotNumber,
		Area:              m.Area,
		Status:            m.Status,
		Bucket:            m.Bucket,
		ClientID:          m.ClientID,
		SaleDate:          m.SaleDate,
		Facing:            m.Facing,
		RoadWidth:         m.RoadWidth,
		Notes:             m.Notes,
	}
	p.MarkPersisted()
	return p
}

// FromDomain populates the persistence model from a domain Plot
func (m *PlotModel) FromDomain(p *land.Plot) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.RSNumberID = p.RSNumberID
	m.PlotNumber = p.PlotNumber
	m.Area = p.Area
	m.Status = p.Status
	m.Bucket = p.Bucket
	m.ClientID = p.ClientID
	m.SaleDate = p.SaleDate
	m.Facing = p.Facing
	m.RoadWidth = p.RoadWidth
	m.Notes = p.Notes
}

// PlotModelFromDomain creates a new persistence model from a domain Plot
func PlotModelFromDomain(p *land.Plot) *PlotModel {
	m := &PlotModel{}
	m.FromDomain(p)
	return m
}
