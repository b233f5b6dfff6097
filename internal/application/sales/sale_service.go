// Package sales exposes the sale ledger and cancellation use cases.
package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	appshared "github.com/landerp/backend/internal/application/shared"
	"github.com/landerp/backend/internal/domain/land"
	"github.com/landerp/backend/internal/domain/sales"
	"github.com/landerp/backend/internal/domain/settings"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// SaleService sells plots and manages the life of a sale
type SaleService struct {
	uow       *appshared.UnitOfWork
	settings  settings.Provider
	plan      sales.StagePlan
	allocator land.Allocator
	logger    *zap.Logger
}

// NewSaleService creates a new SaleService. A zero plan means the default 10/70/15/5 plan.
func NewSaleService(uow *appshared.UnitOfWork, provider settings.Provider, plan sales.StagePlan, logger *zap.Logger) *SaleService {
	if plan.IsZero() {
		plan = sales.DefaultStagePlan()
	}
	return &SaleService{
		uow:       uow,
		settings:  provider,
		plan:      plan,
		allocator: land.NewAllocator(),
		logger:    logger,
	}
}

// CreateSale marks the plot sold and opens the sale with its stage plan in
// one transaction
func (s *SaleService) CreateSale(ctx context.Context, actor shared.Actor, req CreateSaleRequest) (*SaleResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		"plot_id", req.PlotID.String(),
		"client_id", req.ClientID.String(),
		"total_price", req.TotalPrice.String(),
	)

	rsID, err := s.plotRSNumber(ctx, req.PlotID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	keys := []string{
		shared.LockKey(appshared.LockRSNumber, rsID),
		shared.LockKey(appshared.LockPlot, req.PlotID),
		shared.LockKey(appshared.LockClient, req.ClientID),
	}

	var sale *sales.Sale
	err = s.uow.Do(ctx, keys, func(w *appshared.Work) error {
		client, err := w.Repos.Clients().FindByID(ctx, req.ClientID)
		if err != nil {
			return err
		}
		if !client.IsActive() {
			return shared.NewInvalidStateError("Client " + client.Code + " is inactive")
		}
		rs, err := w.Repos.RSNumbers().FindByIDForUpdate(ctx, rsID)
		if err != nil {
			return err
		}
		plot, err := w.Repos.Plots().FindByIDForUpdate(ctx, req.PlotID)
		if err != nil {
			return err
		}
		if plot.Status == land.PlotStatusReserved && !plot.IsReservedFor(client.ID) {
			return shared.NewInvalidStateError("Plot " + plot.PlotNumber + " is reserved for another client")
		}
		if err := s.allocator.MarkSold(rs, plot, client.ID, req.SaleDate); err != nil {
			return err
		}

		number, err := w.Repos.Sequences().Next(ctx, appshared.PrefixSale, req.SaleDate)
		if err != nil {
			return err
		}
		if sale, err = sales.NewSale(number, client.ID, plot.ID, rs.ID, req.TotalPrice, req.SaleDate, s.plan, actor.UserID); err != nil {
			return err
		}

		w.Track(rs, plot, sale)
		if err := w.Repos.RSNumbers().SaveWithLock(ctx, rs); err != nil {
			return err
		}
		if err := w.Repos.Plots().SaveWithLock(ctx, plot); err != nil {
			return err
		}
		return w.Repos.Sales().Save(ctx, sale)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Sale created",
		zap.String("sale_number", sale.SaleNumber),
		zap.String("plot_id", sale.PlotID.String()),
		zap.String("total_price", sale.TotalPrice.StringFixed(2)),
	)
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// GetSale returns a sale with its stages
func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	var resp SaleResponse
	err := s.uow.Read(ctx, func(repos appshared.Repositories) error {
		sale, err := repos.Sales().FindByID(ctx, id)
		if err != nil {
			return err
		}
		resp = ToSaleResponse(sale)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListSales lists sales
func (s *SaleService) ListSales(ctx context.Context, filter SaleListFilter) ([]SaleResponse, int64, error) {
	domainFilter := sales.SaleFilter{FromDate: filter.FromDate, ToDate: filter.ToDate}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search
	if filter.Status != "" {
		status := sales.SaleStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewValidationError("Invalid sale status: " + filter.Status)
		}
		domainFilter.Status = &status
	}
	var err error
	if domainFilter.ClientID, err = parseOptionalID("client_id", filter.ClientID); err != nil {
		return nil, 0, err
	}
	if domainFilter.PlotID, err = parseOptionalID("plot_id", filter.PlotID); err != nil {
		return nil, 0, err
	}
	if domainFilter.RSNumberID, err = parseOptionalID("rs_number_id", filter.RSNumberID); err != nil {
		return nil, 0, err
	}

	var out []SaleResponse
	var total int64
	err = s.uow.Read(ctx, func(repos appshared.Repositories) error {
		items, count, err := repos.Sales().FindAll(ctx, domainFilter)
		if err != nil {
			return err
		}
		out = make([]SaleResponse, len(items))
		for i := range items {
			out[i] = ToSaleResponse(&items[i])
		}
		total = count
		return nil
	})
	return out, total, err
}

// HoldSale pauses an active sale
func (s *SaleService) HoldSale(ctx context.Context, id uuid.UUID, req HoldSaleRequest) (*SaleResponse, error) {
	return s.mutate(ctx, id, func(sale *sales.Sale) error {
		return sale.Hold(req.Reason)
	})
}

// ResumeSale reactivates a sale put on hold
func (s *SaleService) ResumeSale(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	return s.mutate(ctx, id, func(sale *sales.Sale) error {
		return sale.Resume()
	})
}

func (s *SaleService) mutate(ctx context.Context, id uuid.UUID, fn func(*sales.Sale) error) (*SaleResponse, error) {
	var sale *sales.Sale
	err := s.uow.Do(ctx, []string{shared.LockKey(appshared.LockSale, id)}, func(w *appshared.Work) error {
		var err error
		if sale, err = w.Repos.Sales().FindByIDForUpdate(ctx, id); err != nil {
			return err
		}
		if err := fn(sale); err != nil {
			return err
		}
		w.Track(sale)
		return w.Repos.Sales().SaveWithLock(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// DueInstallments lists unpaid stages of active sales that are overdue or
// fall due within the configured reminder window
func (s *SaleService) DueInstallments(ctx context.Context, asOf time.Time) ([]InstallmentDueResponse, error) {
	items, err := s.dueInstallments(ctx, asOf)
	if err != nil {
		return nil, err
	}
	out := make([]InstallmentDueResponse, len(items))
	for i, d := range items {
		out[i] = ToInstallmentDueResponse(d)
	}
	return out, nil
}

func (s *SaleService) dueInstallments(ctx context.Context, asOf time.Time) ([]sales.InstallmentDue, error) {
	values, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	horizon := asOf.AddDate(0, 0, values.InstallmentReminderDays)

	var out []sales.InstallmentDue
	err = s.uow.Read(ctx, func(repos appshared.Repositories) error {
		list, err := repos.Sales().FindActiveWithDueStages(ctx, horizon)
		if err != nil {
			return err
		}
		for i := range list {
			out = append(out, list[i].DueInstallments(asOf, values.InstallmentReminderDays)...)
		}
		return nil
	})
	return out, err
}

// PublishInstallmentReminders raises an InstallmentReminder event for every
// due installment. It is driven by the daily reminder job.
func (s *SaleService) PublishInstallmentReminders(ctx context.Context, publisher shared.EventPublisher, asOf time.Time) (int, error) {
	items, err := s.dueInstallments(ctx, asOf)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}
	events := make([]shared.DomainEvent, len(items))
	for i, d := range items {
		events[i] = sales.NewInstallmentReminderEvent(d, asOf)
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		return 0, err
	}
	return len(events), nil
}

// PreviewRefund computes what a cancellation requested now would refund,
// using the current office charge setting
func (s *SaleService) PreviewRefund(ctx context.Context, saleID uuid.UUID) (*RefundPreviewResponse, error) {
	values, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	var resp *RefundPreviewResponse
	err = s.uow.Read(ctx, func(repos appshared.Repositories) error {
		sale, err := repos.Sales().FindByID(ctx, saleID)
		if err != nil {
			return err
		}
		quote, err := sales.CalculateRefund(sale.PaidAmount, values.OfficeChargePercent)
		if err != nil {
			return err
		}
		resp = &RefundPreviewResponse{
			SaleID:              sale.ID,
			TotalPaid:           quote.TotalPaid,
			OfficeChargePercent: quote.OfficeChargePercent,
			OfficeCharge:        quote.OfficeCharge,
			RefundableAmount:    quote.RefundableAmount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *SaleService) plotRSNumber(ctx context.Context, plotID uuid.UUID) (uuid.UUID, error) {
	var rsID uuid.UUID
	err := s.uow.Read(ctx, func(repos appshared.Repositories) error {
		plot, err := repos.Plots().FindByID(ctx, plotID)
		if err != nil {
			return err
		}
		rsID = plot.RSNumberID
		return nil
	})
	return rsID, err
}

func parseOptionalID(field, raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, shared.NewValidationError("Invalid " + field)
	}
	return &id, nil
}
