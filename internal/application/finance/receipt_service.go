// Package finance exposes receipts, expenses and accounts. Receipts and
// expenses move through the shared approval engine; their final approval
// posts to the sale ledger and the accounts.
package finance

import (
	"context"

	"github.com/google/uuid"
	appapproval "github.com/landerp/backend/internal/application/approval"
	appshared "github.com/landerp/backend/internal/application/shared"
	"github.com/landerp/backend/internal/domain/approval"
	"github.com/landerp/backend/internal/domain/finance"
	"github.com/landerp/backend/internal/domain/sales"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ReceiptService records client payments and runs their approval
type ReceiptService struct {
	uow         *appshared.UnitOfWork
	engine      *appapproval.Engine[*finance.Receipt]
	attachments *attachments
	logger      *zap.Logger
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(uow *appshared.UnitOfWork, storage ObjectStorage, config AttachmentConfig, logger *zap.Logger) *ReceiptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ReceiptService{
		uow:         uow,
		attachments: newAttachments(storage, config),
		logger:      logger,
	}
	s.engine = appapproval.NewEngine(uow, appapproval.Binding[*finance.Receipt]{
		Kind:        appshared.LockReceipt,
		Load:        loadReceipt,
		Save:        saveReceipt,
		LockKeys:    receiptLockKeys,
		CheckSubmit: checkReceiptFits,
		OnApproved:  s.postApprovedReceipt,
	}, logger)
	return s
}

func loadReceipt(ctx context.Context, repos appshared.Repositories, id uuid.UUID, forUpdate bool) (*finance.Receipt, error) {
	if forUpdate {
		return repos.Receipts().FindByIDForUpdate(ctx, id)
	}
	return repos.Receipts().FindByID(ctx, id)
}

func saveReceipt(ctx context.Context, repos appshared.Repositories, r *finance.Receipt) error {
	return repos.Receipts().SaveWithLock(ctx, r)
}

func receiptLockKeys(r *finance.Receipt) []string {
	keys := []string{shared.LockKey(appshared.LockSale, r.SaleID)}
	if r.AccountID != nil {
		keys = append(keys, shared.LockKey(appshared.LockAccount, *r.AccountID))
	}
	return keys
}

// checkReceiptFits rejects a receipt larger than what the sale still owes.
// Receipts pending side by side are checked again on final approval.
func checkReceiptFits(ctx context.Context, w *appshared.Work, r *finance.Receipt) error {
	sale, err := w.Repos.Sales().FindByID(ctx, r.SaleID)
	if err != nil {
		return err
	}
	return sale.AcceptsPayment(r.Amount)
}

// postApprovedReceipt applies the payment to the sale ledger and credits
// the receiving account. Any failure, OVERPAYMENT included, rolls the
// approval back.
func (s *ReceiptService) postApprovedReceipt(ctx context.Context, w *appshared.Work, r *finance.Receipt) error {
	sale, err := w.Repos.Sales().FindByIDForUpdate(ctx, r.SaleID)
	if err != nil {
		return err
	}
	allocations, err := sale.ApplyApprovedReceipt(r.ID, r.Amount)
	if err != nil {
		return err
	}
	w.Track(sale)
	if err := w.Repos.Sales().SaveWithLock(ctx, sale); err != nil {
		return err
	}

	if r.AccountID != nil {
		account, err := w.Repos.Accounts().FindByIDForUpdate(ctx, *r.AccountID)
		if err != nil {
			return err
		}
		if _, err := account.Credit(r.Amount, finance.SubjectTypeReceipt, r.ID, "Receipt "+r.ReceiptNumber); err != nil {
			return err
		}
		if err := w.Repos.Accounts().SaveWithLock(ctx, account); err != nil {
			return err
		}
	}

	s.logger.Info("Receipt posted to sale",
		zap.String("receipt_number", r.ReceiptNumber),
		zap.String("sale_number", sale.SaleNumber),
		zap.String("amount", r.Amount.StringFixed(2)),
		zap.Int("stages_touched", len(allocations)),
		zap.String("sale_status", sale.Status.String()),
	)
	return nil
}

// CreateReceipt records a draft receipt against a sale. The client is taken from the sale.
func (s *ReceiptService) CreateReceipt(ctx context.Context, actor shared.Actor, req CreateReceiptRequest) (*ReceiptResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receipt", "create")
	defer span.End()
	telemetry.SetAttributes(span, "sale_id", req.SaleID.String(), "amount", req.Amount.String())

	details := receiptDetails(req.ReceiptType, req.Method, req.Amount, req.Instrument, req.AccountID, req.ReceivedDate, req.Notes)
	var receipt *finance.Receipt
	err := s.uow.Do(ctx, nil, func(w *appshared.Work) error {
		sale, err := w.Repos.Sales().FindByID(ctx, req.SaleID)
		if err != nil {
			return err
		}
		if sale.Status == sales.SaleStatusCancelled {
			return shared.NewInvalidStateError("Cannot record a receipt for cancelled sale " + sale.SaleNumber)
		}
		if err := checkAccount(ctx, w.Repos, req.AccountID); err != nil {
			return err
		}
		number, err := w.Repos.Sequences().Next(ctx, appshared.PrefixReceipt, req.ReceivedDate)
		if err != nil {
			return err
		}
		if receipt, err = finance.NewReceipt(number, sale.ClientID, sale.ID, details, actor.UserID); err != nil {
			return err
		}
		w.Track(receipt)
		return w.Repos.Receipts().Save(ctx, receipt)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Receipt created",
		zap.String("receipt_number", receipt.ReceiptNumber),
		zap.String("sale_id", receipt.SaleID.String()),
		zap.String("amount", receipt.Amount.StringFixed(2)),
	)
	resp := ToReceiptResponse(receipt)
	return &resp, nil
}

// UpdateReceipt edits a draft receipt
func (s *ReceiptService) UpdateReceipt(ctx context.Context, actor shared.Actor, id uuid.UUID, req UpdateReceiptRequest) (*ReceiptResponse, error) {
	details := receiptDetails(req.ReceiptType, req.Method, req.Amount, req.Instrument, req.AccountID, req.ReceivedDate, req.Notes)
	var receipt *finance.Receipt
	err := s.uow.Do(ctx, []string{shared.LockKey(appshared.LockReceipt, id)}, func(w *appshared.Work) error {
		var err error
		if receipt, err = w.Repos.Receipts().FindByIDForUpdate(ctx, id); err != nil {
			return err
		}
		if err := checkOwner(actor, receipt.CreatedBy); err != nil {
			return err
		}
		if err := checkAccount(ctx, w.Repos, req.AccountID); err != nil {
			return err
		}
		if err := receipt.Update(details); err != nil {
			return err
		}
		return w.Repos.Receipts().SaveWithLock(ctx, receipt)
	})
	if err != nil {
		return nil, err
	}
	resp := ToReceiptResponse(receipt)
	return &resp, nil
}

// GetReceipt returns a receipt with its approval history
func (s *ReceiptService) GetReceipt(ctx context.Context, id uuid.UUID) (*ReceiptResponse, error) {
	var resp ReceiptResponse
	err := s.uow.Read(ctx, func(repos appshared.Repositories) error {
		receipt, err := repos.Receipts().FindByID(ctx, id)
		if err != nil {
			return err
		}
		resp = ToReceiptResponse(receipt)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListReceipts lists receipts
func (s *ReceiptService) ListReceipts(ctx context.Context, filter ReceiptListFilter) ([]ReceiptResponse, int64, error) {
	domainFilter := finance.ReceiptFilter{FromDate: filter.FromDate, ToDate: filter.ToDate}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search
	if filter.Status != "" {
		status := approval.Status(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewValidationError("Invalid receipt status: " + filter.Status)
		}
		domainFilter.Status = &status
	}
	if filter.Method != "" {
		method := finance.PaymentMethod(filter.Method)
		if !method.IsValid() {
			return nil, 0, shared.NewValidationError("Invalid payment method: " + filter.Method)
		}
		domainFilter.Method = &method
	}
	var err error
	if domainFilter.SaleID, err = parseOptionalID("sale_id", filter.SaleID); err != nil {
		return nil, 0, err
	}
	if domainFilter.ClientID, err = parseOptionalID("client_id", filter.ClientID); err != nil {
		return nil, 0, err
	}

	var (
		out   []ReceiptResponse
		total int64
	)
	err = s.uow.Read(ctx, func(repos appshared.Repositories) error {
		receipts, n, err := repos.Receipts().FindAll(ctx, domainFilter)
		if err != nil {
			return err
		}
		total = n
		out = make([]ReceiptResponse, len(receipts))
		for i := range receipts {
			out[i] = ToReceiptResponse(&receipts[i])
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// SubmitReceipt sends a draft receipt to the accounts manager
func (s *ReceiptService) SubmitReceipt(ctx context.Context, actor shared.Actor, id uuid.UUID, req WorkflowRequest) (*ReceiptResponse, error) {
	return s.respond(s.engine.Submit(ctx, actor, id, req.Remarks))
}

// ApproveReceipt passes the current gate. The final approval applies the
// payment to the sale.
func (s *ReceiptService) ApproveReceipt(ctx context.Context, actor shared.Actor, id uuid.UUID, req WorkflowRequest) (*ReceiptResponse, error) {
	return s.respond(s.engine.Approve(ctx, actor, id, req.Remarks))
}

// RejectReceipt rejects a pending receipt
func (s *ReceiptService) RejectReceipt(ctx context.Context, actor shared.Actor, id uuid.UUID, req WorkflowRequest) (*ReceiptResponse, error) {
	return s.respond(s.engine.Reject(ctx, actor, id, req.Remarks))
}

// ReceiptHistory returns the approval history of a receipt
func (s *ReceiptService) ReceiptHistory(ctx context.Context, id uuid.UUID) ([]HistoryEntryResponse, error) {
	entries, err := s.engine.History(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToHistoryResponse(entries), nil
}

// RequestUploadURL attaches a new document key to the receipt and returns
// a presigned URL the client uploads the scan to
func (s *ReceiptService) RequestUploadURL(ctx context.Context, actor shared.Actor, id uuid.UUID, req AttachmentUploadRequest) (*AttachmentURLResponse, error) {
	key, err := s.attachments.storageKey("receipts", id, req)
	if err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, []string{shared.LockKey(appshared.LockReceipt, id)}, func(w *appshared.Work) error {
		receipt, err := w.Repos.Receipts().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := receipt.AttachDocument(key); err != nil {
			return err
		}
		return w.Repos.Receipts().SaveWithLock(ctx, receipt)
	})
	if err != nil {
		return nil, err
	}
	return s.attachments.uploadURL(ctx, key, req.ContentType)
}

// DownloadURL returns a presigned URL for the attached document
func (s *ReceiptService) DownloadURL(ctx context.Context, id uuid.UUID) (*AttachmentURLResponse, error) {
	var key string
	err := s.uow.Read(ctx, func(repos appshared.Repositories) error {
		receipt, err := repos.Receipts().FindByID(ctx, id)
		if err != nil {
			return err
		}
		key = receipt.AttachmentKey
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.attachments.downloadURL(ctx, key)
}

func (s *ReceiptService) respond(r *finance.Receipt, err error) (*ReceiptResponse, error) {
	if err != nil {
		return nil, err
	}
	resp := ToReceiptResponse(r)
	return &resp, nil
}

func checkAccount(ctx context.Context, repos appshared.Repositories, id *uuid.UUID) error {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	account, err := repos.Accounts().FindByID(ctx, *id)
	if err != nil {
		return err
	}
	if !account.IsActive {
		return shared.NewInvalidStateError("Account " + account.Name + " is inactive")
	}
	return nil
}

func checkOwner(actor shared.Actor, createdBy uuid.UUID) error {
	if actor.UserID != createdBy && !actor.HasRole(shared.RoleAdmin) {
		return shared.NewDomainError(shared.CodeForbidden, "Only the creator or an admin can edit a draft")
	}
	return nil
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
