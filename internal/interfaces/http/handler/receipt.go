package handler

import (
	"github.com/gin-gonic/gin"
	financeapp "github.com/landerp/backend/internal/application/finance"
)

// ReceiptHandler serves client receipts and their approval workflow
type ReceiptHandler struct {
	BaseHandler
	receiptService *financeapp.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptService *financeapp.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// Create records a draft receipt.
// @Summary      Record a draft receipt
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Param        request body financeapp.CreateReceiptRequest true "Request body"
// @Success      201 {object} dto.Response{data=financeapp.ReceiptResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/receipts [post]
func (h *ReceiptHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req financeapp.CreateReceiptRequest
	if !h.bindJSON(c, &req) {
		return
	}
	receipt, err := h.receiptService.CreateReceipt(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, receipt)
}

// Update replaces a draft receipt.
// @Summary      Replace a draft receipt
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Param        request body financeapp.UpdateReceiptRequest true "Request body"
// @Success      200 {object} dto.Response{data=financeapp.ReceiptResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/receipts/{id} [put]
func (h *ReceiptHandler) Update(c *gin.Context) {
	runActorAction(&h.BaseHandler, c, true, h.receiptService.UpdateReceipt)
}

// GetByID returns a receipt with its history.
// @Summary      Get a receipt
// @Tags         receipts
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Success      200 {object} dto.Response{data=financeapp.ReceiptResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/receipts/{id} [get]
func (h *ReceiptHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	receipt, err := h.receiptService.GetReceipt(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, receipt)
}

// List returns a page of receipts.
// @Summary      List receipts
// @Tags         receipts
// @Produce      json
// @Param        search query string false "Search receipt number or reference"
// @Param        status query string false "Approval status" Enums(DRAFT, PENDING_ACCOUNTS, PENDING_HOF, APPROVED, REJECTED)
// @Param        sale_id query string false "Sale ID" format(uuid)
// @Param        client_id query string false "Client ID" format(uuid)
// @Param        payment_method query string false "Payment method"
// @Param        from_date query string false "Earliest date (YYYY-MM-DD)" format(date)
// @Param        to_date query string false "Latest date (YYYY-MM-DD)" format(date)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]financeapp.ReceiptResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/receipts [get]
func (h *ReceiptHandler) List(c *gin.Context) {
	var filter financeapp.ReceiptListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize)

	items, total, err := h.receiptService.ListReceipts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// Submit sends a draft to the accounts desk.
// @Summary      Submit a receipt for approval
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Param        request body financeapp.WorkflowRequest false "Request body"
// @Success      200 {object} dto.Response{data=financeapp.ReceiptResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/receipts/{id}/submit [post]
func (h *ReceiptHandler) Submit(c *gin.Context) {
	runActorAction(&h.BaseHandler, c, false, h.receiptService.SubmitReceipt)
}

// Approve passes the current approval tier.
// @Summary      Approve a receipt at the current tier
// @Description  The accounts manager approves first, then the head of finance. The final approval posts to the ledger
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Param        request body financeapp.WorkflowRequest false "Request body"
// @Success      200 {object} dto.Response{data=financeapp.ReceiptResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/receipts/{id}/approve [post]
func (h *ReceiptHandler) Approve(c *gin.Context) {
	runActorAction(&h.BaseHandler, c, false, h.receiptService.ApproveReceipt)
}

// Reject declines the receipt at the current tier.
// @Summary      Reject a receipt at the current tier
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Param        request body financeapp.WorkflowRequest false "Request body"
// @Success      200 {object} dto.Response{data=financeapp.ReceiptResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/receipts/{id}/reject [post]
func (h *ReceiptHandler) Reject(c *gin.Context) {
	runActorAction(&h.BaseHandler, c, false, h.receiptService.RejectReceipt)
}

// History returns the approval trail.
// @Summary      Get the approval trail of a receipt
// @Tags         receipts
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]financeapp.HistoryEntryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/receipts/{id}/history [get]
func (h *ReceiptHandler) History(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	history, err := h.receiptService.ReceiptHistory(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}

// RequestUpload issues a presigned URL for the instrument scan.
// @Summary      Request an upload URL for the receipt scan
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Param        request body financeapp.AttachmentUploadRequest true "Request body"
// @Success      201 {object} dto.Response{data=financeapp.AttachmentURLResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/receipts/{id}/attachment [post]
func (h *ReceiptHandler) RequestUpload(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req financeapp.AttachmentUploadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	url, err := h.receiptService.RequestUploadURL(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, url)
}

// Download issues a presigned URL for the stored scan.
// @Summary      Get a download URL for the receipt scan
// @Tags         receipts
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Success      200 {object} dto.Response{data=financeapp.AttachmentURLResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/receipts/{id}/attachment [get]
func (h *ReceiptHandler) Download(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	url, err := h.receiptService.DownloadURL(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, url)
}
