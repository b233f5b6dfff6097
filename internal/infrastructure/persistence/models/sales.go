package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// SaleModel is the persistence model for the Sale aggregate root.
type SaleModel struct {
	AuditedAggregateModel
	SaleNumber          string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	ClientID            uuid.UUID        `gorm:"type:uuid;not null;index"`
	PlotID              uuid.UUID        `gorm:"type:uuid;not null;index"`
	RSNumberID          uuid.UUID        `gorm:"type:uuid;not null;index"`
	TotalPrice          decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	PaidAmount          decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	DueAmount           decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	Status              sales.SaleStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	SaleDate            time.Time        `gorm:"not null;index"`
	HoldReason          string           `gorm:"type:varchar(500)"`
	CancellationPending bool             `gorm:"not null;default:false"`
	CancelledAt         *time.Time
	CompletedAt         *time.Time
	Stages              []SaleStageModel `gorm:"foreignKey:SaleID;references:ID"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a domain Sale with its stages
func (m *SaleModel) ToDomain() *sales.Sale {
	s := &sales.Sale{
		AuditedAggregateRoot: m.ToAuditedAggregateRoot(),
		SaleNumber:           m.SaleNumber,
		ClientID:             m.ClientID,
		PlotID:               m.PlotID,
		RSNumberID:           m.RSNumberID,
		TotalPrice:           m.TotalPrice,
		PaidAmount:           m.PaidAmount,
		DueAmount:            m.DueAmount,
		Status:               m.Status,
		SaleDate:             m.SaleDate,
		HoldReason:           m.HoldReason,
		CancellationPending:  m.CancellationPending,
		CancelledAt:          m.CancelledAt,
		CompletedAt:          m.CompletedAt,
		Stages:               make([]sales.SaleStage, len(m.Stages)),
	}
	for i := range m.Stages {
		s.Stages[i] = m.Stages[i].ToDomain()
	}
	s.MarkPersisted()
	return s
}

// FromDomain populates the persistence model from a domain Sale
func (m *SaleModel) FromDomain(s *sales.Sale) {
	m.FromDomainAuditedAggregateRoot(s.AuditedAggregateRoot)
	m.SaleNumber = s.SaleNumber
	m.ClientID = s.ClientID
	m.PlotID = s.PlotID
	m.RSNumberID = s.RSNumberID
	m.TotalPrice = s.TotalPrice
	m.PaidAmount = s.PaidAmount
	m.DueAmount = s.DueAmount
	m.Status = s.Status
	m.SaleDate = s.SaleDate
	m.HoldReason = s.HoldReason
	m.CancellationPending = s.CancellationPending
	m.CancelledAt = s.CancelledAt
	m.CompletedAt = s.CompletedAt
	m.Stages = make([]SaleStageModel, len(s.Stages))
	for i := range s.Stages {
		m.Stages[i] = SaleStageModelFromDomain(s.ID, &s.Stages[i])
	}
}

// SaleModelFromDomain creates a new persistence model from a domain Sale
func SaleModelFromDomain(s *sales.Sale) *SaleModel {
	m := &SaleModel{}
	m.FromDomain(s)
	return m
}

// SaleStageModel is one row of a sale's payment plan
type SaleStageModel struct {
	ID             uuid.UUID         `gorm:"type:uuid;primary_key"`
	SaleID         uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_sale_stage_sequence,priority:1"`
	Sequence       int               `gorm:"not null;uniqueIndex:idx_sale_stage_sequence,priority:2"`
	Stage          sales.StageName   `gorm:"type:varchar(20);not null"`
	Percent        decimal.Decimal   `gorm:"type:decimal(5,2);not null"`
	PlannedAmount  decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	ReceivedAmount decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	DueAmount      decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	DueDate        time.Time         `gorm:"not null;index"`
	Status         sales.StageStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
}

// TableName returns the table name for GORM
func (SaleStageModel) TableName() string {
	return "sale_stages"
}

// ToDomain converts the persistence model to a domain SaleStage
func (m *SaleStageModel) ToDomain() sales.SaleStage {
	return sales.SaleStage{
		ID:             m.ID,
		Sequence:       m.Sequence,
		Stage:          m.Stage,
		Percent:        m.Percent,
		PlannedAmount:  m.PlannedAmount,
		ReceivedAmount: m.ReceivedAmount,
		DueAmount:      m.DueAmount,
		DueDate:        m.DueDate,
		Status:         m.Status,
	}
}

// SaleStageModelFromDomain creates a stage row for the given sale
func SaleStageModelFromDomain(saleID uuid.UUID, s *sales.SaleStage) SaleStageModel {
	return SaleStageModel{
		ID:             s.ID,
		SaleID:         saleID,
		Sequence:       s.Sequence,
		Stage:          s.Stage,
		Percent:        s.Percent,
		PlannedAmount:  s.PlannedAmount,
		ReceivedAmount: s.ReceivedAmount,
		DueAmount:      s.DueAmount,
		DueDate:        s.DueDate,
		Status:         s.Status,
	}
}

// CancellationModel is the persistence model for the Cancellation aggregate root.
// The payment snapshot is frozen at request time and stored as JSON.
type CancellationModel struct {
	AuditedAggregateModel
	CancellationNumber  string                   `gorm:"type:varchar(50);not null;uniqueIndex"`
	SaleID              uuid.UUID                `gorm:"type:uuid;not null;index"`
	PlotID              uuid.UUID                `gorm:"type:uuid;not null"`
	RSNumberID          uuid.UUID                `gorm:"type:uuid;not null"`
	ClientID            uuid.UUID                `gorm:"type:uuid;not null;index"`
	CancellationDate    time.Time                `gorm:"not null"`
	Reason              string                   `gorm:"type:text;not null"`
	TotalPaid           decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	OfficeChargePercent decimal.Decimal          `gorm:"type:decimal(5,2);not null"`
	OfficeCharge        decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	RefundableAmount    decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	RefundedAmount      decimal.Decimal          `gorm:"type:decimal(18,2);not null;default:0"`
	PriorSaleStatus     sales.SaleStatus         `gorm:"type:varchar(20);not null"`
	Status              sales.CancellationStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	DecidedBy           *uuid.UUID               `gorm:"type:uuid"`
	DecidedAt           *time.Time
	DecisionRemarks     string               `gorm:"type:varchar(500)"`
	PaymentSnapshot     datatypes.JSON       `gorm:"type:jsonb"`
	Refunds             []RefundPaymentModel `gorm:"foreignKey:CancellationID;references:ID"`
}

// TableName returns the table name for GORM
func (CancellationModel) TableName() string {
	return "cancellations"
}

// ToDomain converts the persistence model to a domain Cancellation
func (m *CancellationModel) ToDomain() (*sales.Cancellation, error) {
	var snapshot []sales.PaidReceipt
	if len(m.PaymentSnapshot) > 0 {
		if err := json.Unmarshal(m.PaymentSnapshot, &snapshot); err != nil {
			return nil, err
		}
	}
	c := &sales.Cancellation{
		AuditedAggregateRoot: m.ToAuditedAggregateRoot(),
		CancellationNumber:   m.CancellationNumber,
		SaleID:               m.SaleID,
		PlotID:               m.PlotID,
		RSNumberID:           m.RSNumberID,
		ClientID:             m.ClientID,
		CancellationDate:     m.CancellationDate,
		Reason:               m.Reason,
		TotalPaid:            m.TotalPaid,
		OfficeChargePercent:  m.OfficeChargePercent,
		OfficeCharge:         m.OfficeCharge,
		RefundableAmount:     m.RefundableAmount,
		RefundedAmount:       m.RefundedAmount,
		PriorSaleStatus:      m.PriorSaleStatus,
		Status:               m.Status,
		DecidedBy:            m.DecidedBy,
		DecidedAt:            m.DecidedAt,
		DecisionRemarks:      m.DecisionRemarks,
		PaymentSnapshot:      snapshot,
		Refunds:              make([]sales.RefundPayment, len(m.Refunds)),
	}
	for i := range m.Refunds {
		c.Refunds[i] = m.Refunds[i].ToDomain()
	}
	c.MarkPersisted()
	return c, nil
}

// FromDomain populates the persistence model from a domain Cancellation
func (m *CancellationModel) FromDomain(c *sales.Cancellation) error {
	snapshot := c.PaymentSnapshot
	if snapshot == nil {
		snapshot = []sales.PaidReceipt{}
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	m.FromDomainAuditedAggregateRoot(c.AuditedAggregateRoot)
	m.CancellationNumber = c.CancellationNumber
	m.SaleID = c.SaleID
	m.PlotID = c.PlotID
	m.RSNumberID = c.RSNumberID
	m.ClientID = c.ClientID
	m.CancellationDate = c.CancellationDate
	m.Reason = c.Reason
	m.TotalPaid = c.TotalPaid
	m.OfficeChargePercent = c.OfficeChargePercent
	m.OfficeCharge = c.OfficeCharge
	m.RefundableAmount = c.RefundableAmount
	m.RefundedAmount = c.RefundedAmount
	m.PriorSaleStatus = c.PriorSaleStatus
	m.Status = c.Status
	m.DecidedBy = c.DecidedBy
	m.DecidedAt = c.DecidedAt
	m.DecisionRemarks = c.DecisionRemarks
	m.PaymentSnapshot = datatypes.JSON(raw)
	m.Refunds = make([]RefundPaymentModel, len(c.Refunds))
	for i := range c.Refunds {
		m.Refunds[i] = RefundPaymentModelFromDomain(c.ID, &c.Refunds[i])
	}
	return nil
}

// RefundPaymentModel is one refund paid out against a cancellation. Rows
// are only ever inserted.
type RefundPaymentModel struct {
	ID             uuid.UUID          `gorm:"type:uuid;primary_key"`
	CancellationID uuid.UUID          `gorm:"type:uuid;not null;index"`
	Amount         decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	Method         sales.RefundMethod `gorm:"type:varchar(20);not null"`
	Reference      string             `gorm:"type:varchar(100)"`
	PaidAt         time.Time          `gorm:"not null"`
	RecordedBy     uuid.UUID          `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (RefundPaymentModel) TableName() string {
	return "refund_payments"
}

// ToDomain converts the persistence model to a domain RefundPayment
func (m *RefundPaymentModel) ToDomain() sales.RefundPayment {
	return sales.RefundPayment{
		ID:         m.ID,
		Amount:     m.Amount,
		Method:     m.Method,
		Reference:  m.Reference,
		PaidAt:     m.PaidAt,
		RecordedBy: m.RecordedBy,
	}
}

// RefundPaymentModelFromDomain creates a refund row for the given cancellation
func RefundPaymentModelFromDomain(cancellationID uuid.UUID, r *sales.RefundPayment) RefundPaymentModel {
	return RefundPaymentModel{
		ID:             r.ID,
		CancellationID: cancellationID,
		Amount:         r.Amount,
		Method:         r.Method,
		Reference:      r.Reference,
		PaidAt:         r.PaidAt,
		RecordedBy:     r.RecordedBy,
	}
}
