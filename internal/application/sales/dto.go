package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// CreateSaleRequest sells a plot to a client
type CreateSaleRequest struct {
	ClientID   uuid.UUID       `json:"client_id" binding:"required"`
	PlotID     uuid.UUID       `json:"plot_id" binding:"required"`
	TotalPrice decimal.Decimal `json:"total_price" binding:"required,gt=0"`
	SaleDate   time.Time       `json:"sale_date" binding:"required"`
}

// HoldSaleRequest pauses a sale
type HoldSaleRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// SaleListFilter defines list query parameters
type SaleListFilter struct {
	Search     string     `form:"search"`
	Status     string     `form:"status"`
	ClientID   string     `form:"client_id"`
	PlotID     string     `form:"plot_id"`
	RSNumberID string     `form:"rs_number_id"`
	FromDate   *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate     *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

// SaleStageResponse is one stage of a sale's plan
type SaleStageResponse struct {
	Sequence       int             `json:"sequence"`
	Stage          string          `json:"stage"`
	Percent        decimal.Decimal `json:"percent"`
	PlannedAmount  decimal.Decimal `json:"planned_amount"`
	ReceivedAmount decimal.Decimal `json:"received_amount"`
	DueAmount      decimal.Decimal `json:"due_amount"`
	DueDate        time.Time       `json:"due_date"`
	Status         string          `json:"status"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID                  uuid.UUID           `json:"id"`
	SaleNumber          string              `json:"sale_number"`
	ClientID            uuid.UUID           `json:"client_id"`
	PlotID              uuid.UUID           `json:"plot_id"`
	RSNumberID          uuid.UUID           `json:"rs_number_id"`
	TotalPrice          decimal.Decimal     `json:"total_price"`
	PaidAmount          decimal.Decimal     `json:"paid_amount"`
	DueAmount           decimal.Decimal     `json:"due_amount"`
	Status              string              `json:"status"`
	SaleDate            time.Time           `json:"sale_date"`
	HoldReason          string              `json:"hold_reason,omitempty"`
	CancellationPending bool                `json:"cancellation_pending"`
	CompletedAt         *time.Time          `json:"completed_at,omitempty"`
	CancelledAt         *time.Time          `json:"cancelled_at,omitempty"`
	Stages              []SaleStageResponse `json:"stages"`
	CreatedBy           uuid.UUID           `json:"created_by"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
	Version             int                 `json:"version"`
}

// InstallmentDueResponse is a stage that is due soon or overdue
type InstallmentDueResponse struct {
	SaleID      uuid.UUID       `json:"sale_id"`
	SaleNumber  string          `json:"sale_number"`
	ClientID    uuid.UUID       `json:"client_id"`
	PlotID      uuid.UUID       `json:"plot_id"`
	Sequence    int             `json:"sequence"`
	Stage       string          `json:"stage"`
	DueDate     time.Time       `json:"due_date"`
	DueAmount   decimal.Decimal `json:"due_amount"`
	Overdue     bool            `json:"overdue"`
	DaysOverdue int             `json:"days_overdue,omitempty"`
}

// RefundPreviewResponse is what a cancellation requested now would refund
type RefundPreviewResponse struct {
	SaleID              uuid.UUID       `json:"sale_id"`
	TotalPaid           decimal.Decimal `json:"total_paid"`
	OfficeChargePercent decimal.Decimal `json:"office_charge_percent"`
	OfficeCharge        decimal.Decimal `json:"office_charge"`
	RefundableAmount    decimal.Decimal `json:"refundable_amount"`
}

// RequestCancellationRequest asks to cancel a sale
type RequestCancellationRequest struct {
	CancellationDate time.Time `json:"cancellation_date" binding:"required"`
	Reason           string    `json:"reason" binding:"required,max=1000"`
}

// DecisionRequest approves or rejects a cancellation
type DecisionRequest struct {
	Remarks string `json:"remarks" binding:"max=1000"`
}

// RecordRefundRequest records one refund payout
type RecordRefundRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Method    string          `json:"method" binding:"required,oneof=CASH BANK_TRANSFER CHEQUE MOBILE_WALLET"`
	Reference string          `json:"reference" binding:"max=100"`
	PaidAt    *time.Time      `json:"paid_at"`
}

// CancellationListFilter defines list query parameters
type CancellationListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status"`
	SaleID   string `form:"sale_id"`
	ClientID string `form:"client_id"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// RefundPaymentResponse is one refund payout
type RefundPaymentResponse struct {
	ID         uuid.UUID       `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Reference  string          `json:"reference,omitempty"`
	PaidAt     time.Time       `json:"paid_at"`
	RecordedBy uuid.UUID       `json:"recorded_by"`
}

// CancellationResponse represents a cancellation in API responses
type CancellationResponse struct {
	ID                  uuid.UUID               `json:"id"`
	CancellationNumber  string                  `json:"cancellation_number"`
	SaleID              uuid.UUID               `json:"sale_id"`
	PlotID              uuid.UUID               `json:"plot_id"`
	ClientID            uuid.UUID               `json:"client_id"`
	CancellationDate    time.Time               `json:"cancellation_date"`
	Reason              string                  `json:"reason"`
	TotalPaid           decimal.Decimal         `json:"total_paid"`
	OfficeChargePercent decimal.Decimal         `json:"office_charge_percent"`
	OfficeCharge        decimal.Decimal         `json:"office_charge"`
	RefundableAmount    decimal.Decimal         `json:"refundable_amount"`
	RefundedAmount      decimal.Decimal         `json:"refunded_amount"`
	RemainingRefundable decimal.Decimal         `json:"remaining_refundable"`
	PriorSaleStatus     string                  `json:"prior_sale_status"`
	Status              string                  `json:"status"`
	DecidedBy           *uuid.UUID              `json:"decided_by,omitempty"`
	DecidedAt           *time.Time              `json:"decided_at,omitempty"`
	DecisionRemarks     string                  `json:"decision_remarks,omitempty"`
	PaymentSnapshot     []sales.PaidReceipt     `json:"payment_snapshot"`
	Refunds             []RefundPaymentResponse `json:"refunds"`
	CreatedBy           uuid.UUID               `json:"created_by"`
	CreatedAt           time.Time               `json:"created_at"`
	Version             int                     `json:"version"`
}

// ToSaleResponse converts the domain aggregate to its API shape
func ToSaleResponse(s *sales.Sale) SaleResponse {
	stages := make([]SaleStageResponse, len(s.Stages))
	for i, st := range s.Stages {
		stages[i] = SaleStageResponse{
			Sequence:       st.Sequence,
			Stage:          string(st.Stage),
			Percent:        st.Percent,
			PlannedAmount:  st.PlannedAmount,
			ReceivedAmount: st.ReceivedAmount,
			DueAmount:      st.DueAmount,
			DueDate:        st.DueDate,
			Status:         string(st.Status),
		}
	}
	return SaleResponse{
		ID:                  s.ID,
		SaleNumber:          s.SaleNumber,
		ClientID:            s.ClientID,
		PlotID:              s.PlotID,
		RSNumberID:          s.RSNumberID,
		TotalPrice:          s.TotalPrice,
		PaidAmount:          s.PaidAmount,
		DueAmount:           s.DueAmount,
		Status:              string(s.Status),
		SaleDate:            s.SaleDate,
		HoldReason:          s.HoldReason,
		CancellationPending: s.CancellationPending,
		CompletedAt:         s.CompletedAt,
		CancelledAt:         s.CancelledAt,
		Stages:              stages,
		CreatedBy:           s.CreatedBy,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
		Version:             s.Version,
	}
}

// ToInstallmentDueResponse converts a due installment to its API shape
func ToInstallmentDueResponse(d sales.InstallmentDue) InstallmentDueResponse {
	return InstallmentDueResponse{
		SaleID:      d.SaleID,
		SaleNumber:  d.SaleNumber,
		ClientID:    d.ClientID,
		PlotID:      d.PlotID,
		Sequence:    d.Sequence,
		Stage:       string(d.Stage),
		DueDate:     d.DueDate,
		DueAmount:   d.DueAmount,
		Overdue:     d.Overdue,
		DaysOverdue: d.DaysOverdue,
	}
}

// ToCancellationResponse converts the domain aggregate to its API shape
func ToCancellationResponse(c *sales.Cancellation) CancellationResponse {
	refunds := make([]RefundPaymentResponse, len(c.Refunds))
	for i, r := range c.Refunds {
		refunds[i] = RefundPaymentResponse{
			ID:         r.ID,
			Amount:     r.Amount,
			Method:     string(r.Method),
			Reference:  r.Reference,
			PaidAt:     r.PaidAt,
			RecordedBy: r.RecordedBy,
		}
	}
	snapshot := c.PaymentSnapshot
	if snapshot == nil {
		snapshot = []sales.PaidReceipt{}
	}
	return CancellationResponse{
		ID:                  c.ID,
		CancellationNumber:  c.CancellationNumber,
		SaleID:              c.SaleID,
		PlotID:              c.PlotID,
		ClientID:            c.ClientID,
		CancellationDate:    c.CancellationDate,
		Reason:              c.Reason,
		TotalPaid:           c.TotalPaid,
		OfficeChargePercent: c.OfficeChargePercent,
		OfficeCharge:        c.OfficeCharge,
		RefundableAmount:    c.RefundableAmount,
		RefundedAmount:      c.RefundedAmount,
		RemainingRefundable: c.RemainingRefundable(),
		PriorSaleStatus:     string(c.PriorSaleStatus),
		Status:              string(c.Status),
		DecidedBy:           c.DecidedBy,
		DecidedAt:           c.DecidedAt,
		DecisionRemarks:     c.DecisionRemarks,
		PaymentSnapshot:     snapshot,
		Refunds:             refunds,
		CreatedBy:           c.CreatedBy,
		CreatedAt:           c.CreatedAt,
		Version:             c.Version,
	}
}
