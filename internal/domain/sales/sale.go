// Package sales owns the staged-payment sale ledger and the cancellation
// and refund calculator.
package sales

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// SaleStatus represents the lifecycle status of a sale
type SaleStatus string

const (
	SaleStatusActive    SaleStatus = "ACTIVE"
	SaleStatusOnHold    SaleStatus = "ON_HOLD"
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusCancelled SaleStatus = "CANCELLED"
)

// IsValid checks if the status is known
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusActive, SaleStatusOnHold, SaleStatusCompleted, SaleStatusCancelled:
		return true
	}
	return false
}

// CanCancel returns true if a cancellation may be requested in this status
func (s SaleStatus) CanCancel() bool {
	return s == SaleStatusActive || s == SaleStatusOnHold
}

// String returns the string representation
func (s SaleStatus) String() string {
	return string(s)
}

// StageStatus is the payment status of one stage
type StageStatus string

const (
	StageStatusPending   StageStatus = "PENDING"
	StageStatusPartial   StageStatus = "PARTIAL"
	StageStatusCompleted StageStatus = "COMPLETED"
)

// SaleStage is one phase of a sale's payment plan
type SaleStage struct {
	ID             uuid.UUID
	Sequence       int
	Stage          StageName
	Percent        decimal.Decimal
	PlannedAmount  decimal.Decimal
	ReceivedAmount decimal.Decimal
	DueAmount      decimal.Decimal
	DueDate        time.Time
	Status         StageStatus
}

// receive fills the stage up to its planned amount and returns what it took
func (s *SaleStage) receive(amount decimal.Decimal) decimal.Decimal {
	room := s.PlannedAmount.Sub(s.ReceivedAmount)
	take := decimal.Min(room, amount)
	if !take.IsPositive() {
		return decimal.Zero
	}
	s.ReceivedAmount = s.ReceivedAmount.Add(take)
	s.DueAmount = s.PlannedAmount.Sub(s.ReceivedAmount)
	s.refreshStatus()
	return take
}

func (s *SaleStage) refreshStatus() {
	switch {
	case s.ReceivedAmount.Equal(s.PlannedAmount):
		s.Status = StageStatusCompleted
	case s.ReceivedAmount.IsPositive():
		s.Status = StageStatusPartial
	default:
		s.Status = StageStatusPending
	}
}

// StageAllocation records how much of a payment landed on a stage
type StageAllocation struct {
	Sequence int             `json:"sequence"`
	Stage    StageName       `json:"stage"`
	Amount   decimal.Decimal `json:"amount"`
}

// Sale is a client's purchase of one plot, paid through a staged plan.
//
// Invariant: PaidAmount + DueAmount == TotalPrice, and the stages'
// received amounts sum to PaidAmount.
type Sale struct {
	shared.AuditedAggregateRoot
	SaleNumber          string
	ClientID            uuid.UUID
	PlotID              uuid.UUID
	RSNumberID          uuid.UUID
	TotalPrice          decimal.Decimal
	PaidAmount          decimal.Decimal
	DueAmount           decimal.Decimal
	Status              SaleStatus
	SaleDate            time.Time
	HoldReason          string
	CancellationPending bool
	CancelledAt         *time.Time
	CompletedAt         *time.Time
	Stages              []SaleStage
}

// NewSale builds a sale with its stage plan. The plot must already be
// marked sold by the land allocator in the same unit of work.
func NewSale(
	saleNumber string,
	clientID, plotID, rsNumberID uuid.UUID,
	totalPrice decimal.Decimal,
	saleDate time.Time,
	plan StagePlan,
	createdBy uuid.UUID,
) (*Sale, error) {
	if strings.TrimSpace(saleNumber) == "" {
		return nil, shared.NewValidationError("Sale number cannot be empty")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewValidationError("Client is required")
	}
	if plotID == uuid.Nil || rsNumberID == uuid.Nil {
		return nil, shared.NewValidationError("Plot is required")
	}
	totalPrice = valueobject.RoundMoney(totalPrice)
	if !totalPrice.IsPositive() {
		return nil, shared.NewValidationError("Total price must be positive")
	}
	if saleDate.IsZero() {
		return nil, shared.NewValidationError("Sale date is required")
	}
	if plan.IsZero() {
		plan = DefaultStagePlan()
	}

	stages, err := buildStages(totalPrice, saleDate, plan)
	if err != nil {
		return nil, err
	}

	sale := &Sale{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(createdBy),
		SaleNumber:           saleNumber,
		ClientID:             clientID,
		PlotID:               plotID,
		RSNumberID:           rsNumberID,
		TotalPrice:           totalPrice,
		PaidAmount:           decimal.Zero,
		DueAmount:            totalPrice,
		Status:               SaleStatusActive,
		SaleDate:             saleDate,
		Stages:               stages,
	}
	sale.AddDomainEvent(NewSaleCreatedEvent(sale))
	return sale, nil
}

func buildStages(total decimal.Decimal, saleDate time.Time, plan StagePlan) ([]SaleStage, error) {
	parts, err := valueobject.NewMoneyBDT(total).AllocateByPercents(plan.Percents())
	if err != nil {
		return nil, shared.NewValidationError("Invalid stage plan: " + err.Error())
	}
	defs := plan.Definitions()
	stages := make([]SaleStage, len(defs))
	for i, def := range defs {
		stages[i] = SaleStage{
			ID:             uuid.New(),
			Sequence:       i + 1,
			Stage:          def.Stage,
			Percent:        def.Percent,
			PlannedAmount:  parts[i].Amount(),
			ReceivedAmount: decimal.Zero,
			DueAmount:      parts[i].Amount(),
			DueDate:        saleDate.AddDate(0, 0, def.DueAfterDays),
			Status:         StageStatusPending,
		}
	}
	return stages, nil
}

// ApplyApprovedReceipt distributes an approved payment over the stages in
// plan order, filling each stage before spilling into the next. It fails
// with OVERPAYMENT, leaving the sale untouched, when the payment exceeds
// the due amount.
func (s *Sale) ApplyApprovedReceipt(receiptID uuid.UUID, amount decimal.Decimal) ([]StageAllocation, error) {
	if s.Status != SaleStatusActive {
		return nil, shared.NewInvalidStateError("Payments can only be applied to an active sale, current status " + s.Status.String())
	}
	allocations, err := s.distribute(amount)
	if err != nil {
		return nil, err
	}
	s.IncrementVersion()
	s.AddDomainEvent(NewSalePaymentAppliedEvent(s, receiptID, amount, allocations))
	s.ComputeStatus()
	return allocations, nil
}

// AcceptsPayment checks that amount still fits in the due amount without
// touching the ledger
func (s *Sale) AcceptsPayment(amount decimal.Decimal) error {
	if s.Status == SaleStatusCancelled {
		return shared.NewInvalidStateError("Sale " + s.SaleNumber + " is cancelled")
	}
	amount = valueobject.RoundMoney(amount)
	if amount.GreaterThan(s.DueAmount) {
		return shared.NewOverpaymentError(amount, s.DueAmount)
	}
	return nil
}

func (s *Sale) distribute(amount decimal.Decimal) ([]StageAllocation, error) {
	amount = valueobject.RoundMoney(amount)
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("Payment amount must be positive")
	}
	if amount.GreaterThan(s.DueAmount) {
		return nil, shared.NewOverpaymentError(amount, s.DueAmount)
	}

	var allocations []StageAllocation
	left := amount
	for i := range s.Stages {
		if !left.IsPositive() {
			break
		}
		taken := s.Stages[i].receive(left)
		if taken.IsPositive() {
			allocations = append(allocations, StageAllocation{
				Sequence: s.Stages[i].Sequence,
				Stage:    s.Stages[i].Stage,
				Amount:   taken,
			})
			left = left.Sub(taken)
		}
	}
	s.PaidAmount = s.PaidAmount.Add(amount)
	s.DueAmount = s.DueAmount.Sub(amount)
	return allocations, nil
}

// ComputeStatus derives COMPLETED once every stage is paid. ON_HOLD and
// CANCELLED are never derived from payment state.
func (s *Sale) ComputeStatus() {
	if s.Status != SaleStatusActive {
		return
	}
	for _, st := range s.Stages {
		if st.Status != StageStatusCompleted {
			return
		}
	}
	now := time.Now()
	s.Status = SaleStatusCompleted
	s.CompletedAt = &now
	s.IncrementVersion()
	s.AddDomainEvent(NewSaleCompletedEvent(s))
}

// Hold pauses an active sale
func (s *Sale) Hold(reason string) error {
	if s.Status != SaleStatusActive {
		return shared.NewInvalidStateError("Only active sales can be put on hold, current status " + s.Status.String())
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewValidationError("A reason is required to hold a sale")
	}
	s.Status = SaleStatusOnHold
	s.HoldReason = strings.TrimSpace(reason)
	s.IncrementVersion()
	s.AddDomainEvent(NewSaleStatusChangedEvent(s, SaleStatusActive))
	return nil
}

// Resume reactivates a sale that was put on hold manually
func (s *Sale) Resume() error {
	if s.Status != SaleStatusOnHold {
		return shared.NewInvalidStateError("Only sales on hold can be resumed, current status " + s.Status.String())
	}
	if s.CancellationPending {
		return shared.NewInvalidStateError("Sale has a pending cancellation; approve or reject it first")
	}
	s.Status = SaleStatusActive
	s.HoldReason = ""
	s.IncrementVersion()
	s.AddDomainEvent(NewSaleStatusChangedEvent(s, SaleStatusOnHold))
	s.ComputeStatus()
	return nil
}

// markCancellationRequested freezes the sale while a cancellation is decided
// and returns the status to restore on rejection
func (s *Sale) markCancellationRequested() (SaleStatus, error) {
	if !s.Status.CanCancel() {
		return "", shared.NewInvalidStateError("Only active or on-hold sales can be cancelled, current status " + s.Status.String())
	}
	if s.CancellationPending {
		return "", shared.NewInvalidStateError("Sale already has a pending cancellation")
	}
	prior := s.Status
	s.Status = SaleStatusOnHold
	if prior == SaleStatusActive {
		s.HoldReason = "Cancellation requested"
	}
	s.CancellationPending = true
	s.IncrementVersion()
	return prior, nil
}

// restoreAfterRejectedCancellation puts the sale back to its prior status
func (s *Sale) restoreAfterRejectedCancellation(prior SaleStatus) {
	s.Status = prior
	if prior == SaleStatusActive {
		s.HoldReason = ""
	}
	s.CancellationPending = false
	s.IncrementVersion()
}

// cancel is irreversible and only reachable through cancellation approval
func (s *Sale) cancel() error {
	if !s.Status.CanCancel() {
		return shared.NewInvalidStateError("Sale cannot be cancelled in status " + s.Status.String())
	}
	prior := s.Status
	now := time.Now()
	s.Status = SaleStatusCancelled
	s.CancellationPending = false
	s.CancelledAt = &now
	s.IncrementVersion()
	s.AddDomainEvent(NewSaleStatusChangedEvent(s, prior))
	return nil
}

// CheckInvariant verifies paid + due == total and that stages agree
func (s *Sale) CheckInvariant() error {
	if !s.PaidAmount.Add(s.DueAmount).Equal(s.TotalPrice) {
		return shared.NewInvalidStateError("Sale paid and due amounts do not add up to the total price")
	}
	if s.DueAmount.IsNegative() {
		return shared.NewInvalidStateError("Sale due amount is negative")
	}
	planned, received := decimal.Zero, decimal.Zero
	for _, st := range s.Stages {
		planned = planned.Add(st.PlannedAmount)
		received = received.Add(st.ReceivedAmount)
	}
	if !planned.Equal(s.TotalPrice) || !received.Equal(s.PaidAmount) {
		return shared.NewInvalidStateError("Sale stages do not agree with sale totals")
	}
	return nil
}

// ReplayStages rebuilds the stage ledger of a fresh sale from an ordered
// sequence of approved payment amounts
func ReplayStages(totalPrice decimal.Decimal, saleDate time.Time, plan StagePlan, amounts []decimal.Decimal) ([]SaleStage, error) {
	if plan.IsZero() {
		plan = DefaultStagePlan()
	}
	stages, err := buildStages(valueobject.RoundMoney(totalPrice), saleDate, plan)
	if err != nil {
		return nil, err
	}
	fresh := &Sale{TotalPrice: totalPrice, DueAmount: totalPrice, PaidAmount: decimal.Zero, Stages: stages}
	for _, amount := range amounts {
		if _, err := fresh.distribute(amount); err != nil {
			return nil, err
		}
	}
	return fresh.Stages, nil
}

// InstallmentDue describes one stage that is due soon or overdue
type InstallmentDue struct {
	SaleID      uuid.UUID
	SaleNumber  string
	ClientID    uuid.UUID
	PlotID      uuid.UUID
	Sequence    int
	Stage       StageName
	DueDate     time.Time
	DueAmount   decimal.Decimal
	Overdue     bool
	DaysOverdue int
}

// DueInstallments lists unpaid stages due on or before asOf+reminderDays.
// Only active sales are chased.
func (s *Sale) DueInstallments(asOf time.Time, reminderDays int) []InstallmentDue {
	if s.Status != SaleStatusActive {
		return nil
	}
	day := truncateDay(asOf)
	horizon := day.AddDate(0, 0, reminderDays)
	var out []InstallmentDue
	for _, st := range s.Stages {
		if !st.DueAmount.IsPositive() {
			continue
		}
		due := truncateDay(st.DueDate)
		if due.After(horizon) {
			continue
		}
		item := InstallmentDue{
			SaleID:     s.ID,
			SaleNumber: s.SaleNumber,
			ClientID:   s.ClientID,
			PlotID:     s.PlotID,
			Sequence:   st.Sequence,
			Stage:      st.Stage,
			DueDate:    st.DueDate,
			DueAmount:  st.DueAmount,
		}
		if due.Before(day) {
			item.Overdue = true
			item.DaysOverdue = int(day.Sub(due).Hours() / 24)
		}
		out = append(out, item)
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StageBySequence returns the stage with the given sequence
func (s *Sale) StageBySequence(seq int) (*SaleStage, bool) {
	for i := range s.Stages {
		if s.Stages[i].Sequence == seq {
			return &s.Stages[i], true
		}
	}
	return nil, false
}
