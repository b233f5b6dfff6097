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

// CancellationService requests, decides and refunds sale cancellations
type CancellationService struct {
	uow       *appshared.UnitOfWork
	settings  settings.Provider
	allocator land.Allocator
	logger    *zap.Logger
}

// NewCancellationService creates a new CancellationService
func NewCancellationService(uow *appshared.UnitOfWork, provider settings.Provider, logger *zap.Logger) *CancellationService {
	return &CancellationService{
		uow:       uow,
		settings:  provider,
		allocator: land.NewAllocator(),
		logger:    logger,
	}
}

// RequestCancellation snapshots the payments of a sale, computes the refund
// with the office charge in force right now and puts the sale on hold
func (s *CancellationService) RequestCancellation(ctx context.Context, actor shared.Actor, saleID uuid.UUID, req RequestCancellationRequest) (*CancellationResponse, error) {
	values, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}

	var c *sales.Cancellation
	err = s.uow.Do(ctx, []string{shared.LockKey(appshared.LockSale, saleID)}, func(w *appshared.Work) error {
		sale, err := w.Repos.Sales().FindByIDForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		pending, err := w.Repos.Cancellations().FindPendingBySale(ctx, saleID)
		if err != nil {
			return err
		}
		if pending != nil {
			return shared.NewInvalidStateError("Sale already has pending cancellation " + pending.CancellationNumber)
		}

		receipts, err := w.Repos.Receipts().FindApprovedBySale(ctx, saleID)
		if err != nil {
			return err
		}
		snapshot := make([]sales.PaidReceipt, len(receipts))
		for i, r := range receipts {
			snapshot[i] = sales.PaidReceipt{
				ReceiptID:     r.ID,
				ReceiptNumber: r.ReceiptNumber,
				Amount:        r.Amount,
				ReceivedDate:  r.ReceivedDate,
			}
		}

		number, err := w.Repos.Sequences().Next(ctx, appshared.PrefixCancellation, req.CancellationDate)
		if err != nil {
			return err
		}
		c, err = sales.RequestCancellation(number, sale, req.CancellationDate, req.Reason, values.OfficeChargePercent, snapshot, actor.UserID)
		if err != nil {
			return err
		}

		w.Track(sale, c)
		if err := w.Repos.Sales().SaveWithLock(ctx, sale); err != nil {
			return err
		}
		return w.Repos.Cancellations().Save(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	resp := ToCancellationResponse(c)
	return &resp, nil
}

// ApproveCancellation cancels the sale and releases its plot in one transaction
func (s *CancellationService) ApproveCancellation(ctx context.Context, actor shared.Actor, id uuid.UUID, req DecisionRequest) (*CancellationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cancellation", "approve")
	defer span.End()
	telemetry.SetAttributes(span, "cancellation_id", id.String())

	c, err := s.decide(ctx, id, func(w *appshared.Work, c *sales.Cancellation, sale *sales.Sale) error {
		rs, err := w.Repos.RSNumbers().FindByIDForUpdate(ctx, c.RSNumberID)
		if err != nil {
			return err
		}
		plot, err := w.Repos.Plots().FindByIDForUpdate(ctx, c.PlotID)
		if err != nil {
			return err
		}
		if err := c.Approve(actor, req.Remarks, sale); err != nil {
			return err
		}
		if err := s.allocator.Release(rs, plot); err != nil {
			return err
		}
		w.Track(rs, plot)
		if err := w.Repos.RSNumbers().SaveWithLock(ctx, rs); err != nil {
			return err
		}
		return w.Repos.Plots().SaveWithLock(ctx, plot)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.logger.Info("Cancellation approved",
		zap.String("cancellation_number", c.CancellationNumber),
		zap.String("sale_id", c.SaleID.String()),
		zap.String("refundable_amount", c.RefundableAmount.StringFixed(2)),
	)
	resp := ToCancellationResponse(c)
	return &resp, nil
}

// RejectCancellation restores the sale to its status before the request
func (s *CancellationService) RejectCancellation(ctx context.Context, actor shared.Actor, id uuid.UUID, req DecisionRequest) (*CancellationResponse, error) {
	c, err := s.decide(ctx, id, func(_ *appshared.Work, c *sales.Cancellation, sale *sales.Sale) error {
		return c.Reject(actor, req.Remarks, sale)
	})
	if err != nil {
		return nil, err
	}
	resp := ToCancellationResponse(c)
	return &resp, nil
}

// decide locks the cancellation, its sale, plot and RS number, runs fn and
// saves the cancellation and sale
func (s *CancellationService) decide(ctx context.Context, id uuid.UUID, fn func(w *appshared.Work, c *sales.Cancellation, sale *sales.Sale) error) (*sales.Cancellation, error) {
	ref, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	keys := []string{
		shared.LockKey(appshared.LockCancellation, id),
		shared.LockKey(appshared.LockSale, ref.SaleID),
		shared.LockKey(appshared.LockPlot, ref.PlotID),
		shared.LockKey(appshared.LockRSNumber, ref.RSNumberID),
	}

	var c *sales.Cancellation
	err = s.uow.Do(ctx, keys, func(w *appshared.Work) error {
		var err error
		if c, err = w.Repos.Cancellations().FindByIDForUpdate(ctx, id); err != nil {
			return err
		}
		sale, err := w.Repos.Sales().FindByIDForUpdate(ctx, c.SaleID)
		if err != nil {
			return err
		}
		if err := fn(w, c, sale); err != nil {
			return err
		}
		w.Track(c, sale)
		if err := w.Repos.Sales().SaveWithLock(ctx, sale); err != nil {
			return err
		}
		return w.Repos.Cancellations().SaveWithLock(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// RecordRefundPayment pays out part of the refundable amount
func (s *CancellationService) RecordRefundPayment(ctx context.Context, actor shared.Actor, id uuid.UUID, req RecordRefundRequest) (*CancellationResponse, error) {
	paidAt := time.Now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	var c *sales.Cancellation
	err := s.uow.Do(ctx, []string{shared.LockKey(appshared.LockCancellation, id)}, func(w *appshared.Work) error {
		var err error
		if c, err = w.Repos.Cancellations().FindByIDForUpdate(ctx, id); err != nil {
			return err
		}
		if _, err := c.RecordRefundPayment(req.Amount, sales.RefundMethod(req.Method), req.Reference, paidAt, actor.UserID); err != nil {
			return err
		}
		w.Track(c)
		return w.Repos.Cancellations().SaveWithLock(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	resp := ToCancellationResponse(c)
	return &resp, nil
}

// GetCancellation returns one cancellation with its refunds
func (s *CancellationService) GetCancellation(ctx context.Context, id uuid.UUID) (*CancellationResponse, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCancellationResponse(c)
	return &resp, nil
}

// ListCancellations lists cancellations
func (s *CancellationService) ListCancellations(ctx context.Context, filter CancellationListFilter) ([]CancellationResponse, int64, error) {
	domainFilter := sales.CancellationFilter{}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search
	if filter.Status != "" {
		status := sales.CancellationStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewValidationError("Invalid cancellation status: " + filter.Status)
		}
		domainFilter.Status = &status
	}
	var err error
	if domainFilter.SaleID, err = parseOptionalID("sale_id", filter.SaleID); err != nil {
		return nil, 0, err
	}
	if domainFilter.ClientID, err = parseOptionalID("client_id", filter.ClientID); err != nil {
		return nil, 0, err
	}

	var out []CancellationResponse
	var total int64
	err = s.uow.Read(ctx, func(repos appshared.Repositories) error {
		items, count, err := repos.Cancellations().FindAll(ctx, domainFilter)
		if err != nil {
			return err
		}
		out = make([]CancellationResponse, len(items))
		for i := range items {
			out[i] = ToCancellationResponse(&items[i])
		}
		total = count
		return nil
	})
	return out, total, err
}

func (s *CancellationService) find(ctx context.Context, id uuid.UUID) (*sales.Cancellation, error) {
	var c *sales.Cancellation
	err := s.uow.Read(ctx, func(repos appshared.Repositories) error {
		var err error
		c, err = repos.Cancellations().FindByID(ctx, id)
		return err
	})
	return c, err
}
