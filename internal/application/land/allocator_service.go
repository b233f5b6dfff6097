// Package land exposes the land allocator use cases: registering RS
// numbers and creating, resizing, reserving and removing plots.
package land

import (
	"context"

	"github.com/google/uuid"
	appshared "github.com/landerp/backend/internal/application/shared"
	"github.com/landerp/backend/internal/domain/land"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/domain/shared/valueobject"
	"github.com/landerp/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AllocatorService coordinates RS number and plot changes. Every area
// mutation holds the RS number's keyed lock and row lock for the whole
// transaction.
type AllocatorService struct {
	uow       *appshared.UnitOfWork
	allocator land.Allocator
	logger    *zap.Logger
}

// NewAllocatorService creates a new AllocatorService
func NewAllocatorService(uow *appshared.UnitOfWork, logger *zap.Logger) *AllocatorService {
	return &AllocatorService{
		uow:       uow,
		allocator: land.NewAllocator(),
		logger:    logger,
	}
}

// RegisterRSNumber creates a new RS number with its whole area remaining
func (s *AllocatorService) RegisterRSNumber(ctx context.Context, req CreateRSNumberRequest) (*RSNumberResponse, error) {
	rs, err := land.NewRSNumber(req.Number, req.ProjectName, req.Location, req.TotalArea, valueobject.AreaUnit(req.UnitType))
	if err != nil {
		return nil, err
	}
	if req.Notes != "" {
		rs.Notes = req.Notes
	}

	err = s.uow.Do(ctx, []string{"rsnumber-number:" + rs.Number}, func(w *appshared.Work) error {
		exists, err := w.Repos.RSNumbers().ExistsByNumber(ctx, rs.Number)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError(shared.CodeAlreadyExists, "RS number "+rs.Number+" is already registered")
		}
		w.Track(rs)
		return w.Repos.RSNumbers().Save(ctx, rs)
	})
	if err != nil {
		return nil, err
	}
	resp := ToRSNumberResponse(rs)
	return &resp, nil
}

// UpdateRSNumber edits descriptive fields
func (s *AllocatorService) UpdateRSNumber(ctx context.Context, id uuid.UUID, req UpdateRSNumberRequest) (*RSNumberResponse, error) {
	var rs *land.RSNumber
	err := s.uow.Do(ctx, []string{shared.LockKey(appshared.LockRSNumber, id)}, func(w *appshared.Work) error {
		var err error
		if rs, err = w.Repos.RSNumbers().FindByIDForUpdate(ctx, id); err != nil {
			return err
		}
		if err := rs.UpdateDetails(req.ProjectName, req.Location, req.Notes); err != nil {
			return err
		}
		return w.Repos.RSNumbers().SaveWithLock(ctx, rs)
	})
	if err != nil {
		return nil, err
	}
	resp := ToRSNumberResponse(rs)
	return &resp, nil
}

// CorrectTotalArea changes the registered total of an RS number
func (s *AllocatorService) CorrectTotalArea(ctx context.Context, id uuid.UUID, req CorrectAreaRequest) (*RSNumberResponse, error) {
	var rs *land.RSNumber
	err := s.uow.Do(ctx, []string{shared.LockKey(appshared.LockRSNumber, id)}, func(w *appshared.Work) error {
		var err error
		if rs, err = w.Repos.RSNumbers().FindByIDForUpdate(ctx, id); err != nil {
			return err
		}
		if err := rs.CorrectTotalArea(req.TotalArea, req.Reason); err != nil {
			return err
		}
		w.Track(rs)
		return w.Repos.RSNumbers().SaveWithLock(ctx, rs)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("RS number area corrected",
		zap.String("rs_number_id", id.String()),
		zap.String("total_area", rs.TotalArea.String()),
		zap.String("reason", req.Reason),
	)
	resp := ToRSNumberResponse(rs)
	return &resp, nil
}

// GetRSNumber returns one RS number
func (s *AllocatorService) GetRSNumber(ctx context.Context, id uuid.UUID) (*RSNumberResponse, error) {
	var resp RSNumberResponse
	err := s.uow.Read(ctx, func(repos appshared.Repositories) error {
		rs, err := repos.RSNumbers().FindByID(ctx, id)
		if err != nil {
			return err
		}
		resp = ToRSNumberResponse(rs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListRSNumbers lists RS numbers
func (s *AllocatorService) ListRSNumbers(ctx context.Context, filter RSNumberListFilter) ([]RSNumberResponse, int64, error) {
	domainFilter := land.RSNumberFilter{ProjectName: filter.ProjectName}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search

	var out []RSNumberResponse
	var total int64
	err := s.uow.Read(ctx, func(repos appshared.Repositories) error {
		items, count, err := repos.RSNumbers().FindAll(ctx, domainFilter)
		if err != nil {
			return err
		}
		out = make([]RSNumberResponse, len(items))
		for i := range items {
			out[i] = ToRSNumberResponse(&items[i])
		}
		total = count
		return nil
	})
	return out, total, err
}

// ReconcileRSNumber checks the stored counters against the plots' areas
func (s *AllocatorService) ReconcileRSNumber(ctx context.Context, id uuid.UUID) error {
	return s.uow.Do(ctx, []string{shared.LockKey(appshared.LockRSNumber, id)}, func(w *appshared.Work) error {
		rs, err := w.Repos.RSNumbers().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		totals, err := w.Repos.Plots().SumActiveArea(ctx, id)
		if err != nil {
			return err
		}
		return rs.Reconcile(totals)
	})
}

func plotArea(area *decimal.Decimal) (decimal.Decimal, error) {
	if area == nil {
		return decimal.Zero, shared.NewValidationError("Plot area is required")
	}
	return *area, nil
}

// CreatePlot carves a plot out of the RS number's remaining area
func (s *AllocatorService) CreatePlot(ctx context.Context, req CreatePlotRequest) (*PlotResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "land", "create_plot")
	defer span.End()
	area, err := plotArea(req.Area)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, "rs_number_id", req.RSNumberID.String(), "area", area.String())

	status := land.PlotStatus(req.Status)
	if status == "" {
		status = land.PlotStatusAvailable
	}

	var plot *land.Plot
	err = s.uow.Do(ctx, []string{shared.LockKey(appshared.LockRSNumber, req.RSNumberID)}, func(w *appshared.Work) error {
		rs, err := w.Repos.RSNumbers().FindByIDForUpdate(ctx, req.RSNumberID)
		if err != nil {
			return err
		}
		exists, err := w.Repos.Plots().ExistsByPlotNumber(ctx, rs.ID, req.PlotNumber)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError(shared.CodeAlreadyExists, "Plot "+req.PlotNumber+" already exists in RS number "+rs.Number)
		}

		if plot, err = s.allocator.CreatePlot(rs, req.PlotNumber, area, status); err != nil {
			return err
		}
		plot.UpdateDetails(req.Facing, req.RoadWidth, req.Notes)

		w.Track(rs, plot)
		if err := w.Repos.RSNumbers().SaveWithLock(ctx, rs); err != nil {
			return err
		}
		return w.Repos.Plots().Save(ctx, plot)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	resp := ToPlotResponse(plot)
	return &resp, nil
}

// ResizePlot changes a plot's area and moves the delta through its bucket
func (s *AllocatorService) ResizePlot(ctx context.Context, plotID uuid.UUID, req ResizePlotRequest) (*PlotResponse, error) {
	area, err := plotArea(req.Area)
	if err != nil {
		return nil, err
	}
	return s.withPlot(ctx, plotID, func(w *appshared.Work, rs *land.RSNumber, plot *land.Plot) error {
		if err := s.allocator.ResizePlot(rs, plot, area); err != nil {
			return err
		}
		w.Track(rs, plot)
		if err := w.Repos.RSNumbers().SaveWithLock(ctx, rs); err != nil {
			return err
		}
		return w.Repos.Plots().SaveWithLock(ctx, plot)
	})
}

// ReservePlot holds an available plot for a client
func (s *AllocatorService) ReservePlot(ctx context.Context, plotID uuid.UUID, req ReservePlotRequest) (*PlotResponse, error) {
	return s.withPlot(ctx, plotID, func(w *appshared.Work, _ *land.RSNumber, plot *land.Plot) error {
		client, err := w.Repos.Clients().FindByID(ctx, req.ClientID)
		if err != nil {
			return err
		}
		if !client.IsActive() {
			return shared.NewInvalidStateError("Client " + client.Code + " is inactive")
		}
		if err := plot.Reserve(client.ID); err != nil {
			return err
		}
		return w.Repos.Plots().SaveWithLock(ctx, plot)
	})
}

// BlockPlot takes an available plot off the market
func (s *AllocatorService) BlockPlot(ctx context.Context, plotID uuid.UUID) (*PlotResponse, error) {
	return s.withPlot(ctx, plotID, func(w *appshared.Work, _ *land.RSNumber, plot *land.Plot) error {
		if err := plot.Block(); err != nil {
			return err
		}
		return w.Repos.Plots().SaveWithLock(ctx, plot)
	})
}

// UnblockPlot returns a blocked or reserved plot to the market
func (s *AllocatorService) UnblockPlot(ctx context.Context, plotID uuid.UUID) (*PlotResponse, error) {
	return s.withPlot(ctx, plotID, func(w *appshared.Work, _ *land.RSNumber, plot *land.Plot) error {
		if err := plot.Unblock(); err != nil {
			return err
		}
		return w.Repos.Plots().SaveWithLock(ctx, plot)
	})
}

// DeletePlot removes an unsold plot and returns its area to the pool
func (s *AllocatorService) DeletePlot(ctx context.Context, plotID uuid.UUID) error {
	_, err := s.withPlot(ctx, plotID, func(w *appshared.Work, rs *land.RSNumber, plot *land.Plot) error {
		if err := s.allocator.RemovePlot(rs, plot); err != nil {
			return err
		}
		if err := w.Repos.RSNumbers().SaveWithLock(ctx, rs); err != nil {
			return err
		}
		return w.Repos.Plots().Delete(ctx, plot.ID)
	})
	return err
}

// GetPlot returns one plot
func (s *AllocatorService) GetPlot(ctx context.Context, id uuid.UUID) (*PlotResponse, error) {
	var resp PlotResponse
	err := s.uow.Read(ctx, func(repos appshared.Repositories) error {
		plot, err := repos.Plots().FindByID(ctx, id)
		if err != nil {
			return err
		}
		resp = ToPlotResponse(plot)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListPlots lists plots
func (s *AllocatorService) ListPlots(ctx context.Context, filter PlotListFilter) ([]PlotResponse, int64, error) {
	domainFilter := land.PlotFilter{}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search
	if filter.RSNumberID != "" {
		id, err := uuid.Parse(filter.RSNumberID)
		if err != nil {
			return nil, 0, shared.NewValidationError("Invalid rs_number_id")
		}
		domainFilter.RSNumberID = &id
	}
	if filter.ClientID != "" {
		id, err := uuid.Parse(filter.ClientID)
		if err != nil {
			return nil, 0, shared.NewValidationError("Invalid client_id")
		}
		domainFilter.ClientID = &id
	}
	if filter.Status != "" {
		status := land.PlotStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewValidationError("Invalid plot status: " + filter.Status)
		}
		domainFilter.Status = &status
	}

	var out []PlotResponse
	var total int64
	err := s.uow.Read(ctx, func(repos appshared.Repositories) error {
		items, count, err := repos.Plots().FindAll(ctx, domainFilter)
		if err != nil {
			return err
		}
		out = make([]PlotResponse, len(items))
		for i := range items {
			out[i] = ToPlotResponse(&items[i])
		}
		total = count
		return nil
	})
	return out, total, err
}

// withPlot locks the plot and its RS number, loads both for update and runs fn
func (s *AllocatorService) withPlot(ctx context.Context, plotID uuid.UUID, fn func(w *appshared.Work, rs *land.RSNumber, plot *land.Plot) error) (*PlotResponse, error) {
	rsID, err := s.plotRSNumber(ctx, plotID)
	if err != nil {
		return nil, err
	}
	keys := []string{
		shared.LockKey(appshared.LockRSNumber, rsID),
		shared.LockKey(appshared.LockPlot, plotID),
	}

	var plot *land.Plot
	err = s.uow.Do(ctx, keys, func(w *appshared.Work) error {
		rs, err := w.Repos.RSNumbers().FindByIDForUpdate(ctx, rsID)
		if err != nil {
			return err
		}
		if plot, err = w.Repos.Plots().FindByIDForUpdate(ctx, plotID); err != nil {
			return err
		}
		return fn(w, rs, plot)
	})
	if err != nil {
		return nil, err
	}
	resp := ToPlotResponse(plot)
	return &resp, nil
}

// plotRSNumber reads the owning RS number of a plot. The link never changes
// so it can be read before the locks are taken.
func (s *AllocatorService) plotRSNumber(ctx context.Context, plotID uuid.UUID) (uuid.UUID, error) {
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
