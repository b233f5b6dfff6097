package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	financeapp "github.com/landerp/backend/internal/application/finance"
	salesapp "github.com/landerp/backend/internal/application/sales"
)

// SaleHandler serves sales, their receipts and refund previews
type SaleHandler struct {
	BaseHandler
	saleService    *salesapp.SaleService
	receiptService *financeapp.ReceiptService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *salesapp.SaleService, receiptService *financeapp.ReceiptService) *SaleHandler {
	return &SaleHandler{saleService: saleService, receiptService: receiptService}
}

// Create sells a plot to a client.
// @Summary      Sell a plot
// @Description  Creates the sale with its stage plan and marks the plot sold
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        request body salesapp.CreateSaleRequest true "Request body"
// @Success      201 {object} dto.Response{data=salesapp.SaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req salesapp.CreateSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sale, err := h.saleService.CreateSale(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// GetByID returns a sale with its stage plan.
// @Summary      Get a sale
// @Tags         sales
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Success      200 {object} dto.Response{data=salesapp.SaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/{id} [get]
func (h *SaleHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	sale, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// List returns a page of sales.
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Param        search query string false "Search sale or client"
// @Param        status query string false "Sale status" Enums(ACTIVE, ON_HOLD, COMPLETED, CANCELLED)
// @Param        client_id query string false "Client ID" format(uuid)
// @Param        plot_id query string false "Plot ID" format(uuid)
// @Param        rs_number_id query string false "RS number ID" format(uuid)
// @Param        from_date query string false "Earliest date (YYYY-MM-DD)" format(date)
// @Param        to_date query string false "Latest date (YYYY-MM-DD)" format(date)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]salesapp.SaleResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	var filter salesapp.SaleListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize)

	items, total, err := h.saleService.ListSales(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// Hold pauses a sale.
// @Summary      Put a sale on hold
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Param        request body salesapp.HoldSaleRequest true "Request body"
// @Success      200 {object} dto.Response{data=salesapp.SaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/{id}/hold [post]
func (h *SaleHandler) Hold(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req salesapp.HoldSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sale, err := h.saleService.HoldSale(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Resume reactivates a held sale.
// @Summary      Resume a held sale
// @Tags         sales
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Success      200 {object} dto.Response{data=salesapp.SaleResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/{id}/resume [post]
func (h *SaleHandler) Resume(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	sale, err := h.saleService.ResumeSale(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// DueInstallments lists stages due within the reminder window of as_of
// (YYYY-MM-DD, default today).
// @Summary      List installments coming due
// @Tags         sales
// @Produce      json
// @Param        as_of query string false "Reference date (YYYY-MM-DD), default today" format(date)
// @Success      200 {object} dto.Response{data=[]salesapp.InstallmentDueResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/installments/due [get]
func (h *SaleHandler) DueInstallments(c *gin.Context) {
	asOf, err := dateQuery(c, "as_of", time.Now())
	if err != nil {
		h.BadRequest(c, "Invalid as_of: expected YYYY-MM-DD")
		return
	}
	items, err := h.saleService.DueInstallments(c.Request.Context(), asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// RefundPreview shows what a cancellation requested now would refund.
// @Summary      Preview the refund of a cancellation
// @Tags         sales
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Success      200 {object} dto.Response{data=salesapp.RefundPreviewResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/{id}/refund-preview [get]
func (h *SaleHandler) RefundPreview(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	preview, err := h.saleService.PreviewRefund(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// Receipts lists the receipts recorded against a sale.
// @Summary      List receipts of a sale
// @Tags         sales
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Param        status query string false "Approval status" Enums(DRAFT, PENDING_ACCOUNTS, PENDING_HOF, APPROVED, REJECTED)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]financeapp.ReceiptResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/{id}/receipts [get]
func (h *SaleHandler) Receipts(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	page, pageSize := pagination(c)
	filter := financeapp.ReceiptListFilter{
		SaleID:   id.String(),
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	}
	items, total, err := h.receiptService.ListReceipts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, page, pageSize)
}
