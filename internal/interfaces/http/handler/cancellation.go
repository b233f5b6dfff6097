package handler

import (
	"github.com/gin-gonic/gin"
	salesapp "github.com/landerp/backend/internal/application/sales"
)

// CancellationHandler serves sale cancellations and refund payouts
type CancellationHandler struct {
	BaseHandler
	cancellationService *salesapp.CancellationService
}

// NewCancellationHandler creates a new CancellationHandler
func NewCancellationHandler(cancellationService *salesapp.CancellationService) *CancellationHandler {
	return &CancellationHandler{cancellationService: cancellationService}
}

// Request opens a cancellation for a sale.
// @Summary      Request a sale cancellation
// @Tags         cancellations
// @Accept       json
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Param        request body salesapp.RequestCancellationRequest true "Request body"
// @Success      201 {object} dto.Response{data=salesapp.CancellationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/{id}/cancellations [post]
func (h *CancellationHandler) Request(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	saleID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req salesapp.RequestCancellationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cancellation, err := h.cancellationService.RequestCancellation(c.Request.Context(), actor, saleID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cancellation)
}

// Approve confirms a pending cancellation.
// @Summary      Approve a cancellation
// @Description  Frees the plot and fixes the refundable amount
// @Tags         cancellations
// @Accept       json
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Param        request body salesapp.DecisionRequest false "Request body"
// @Success      200 {object} dto.Response{data=salesapp.CancellationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cancellations/{id}/approve [post]
func (h *CancellationHandler) Approve(c *gin.Context) {
	runActorAction(&h.BaseHandler, c, false, h.cancellationService.ApproveCancellation)
}

// Reject declines a pending cancellation.
// @Summary      Reject a cancellation
// @Tags         cancellations
// @Accept       json
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Param        request body salesapp.DecisionRequest false "Request body"
// @Success      200 {object} dto.Response{data=salesapp.CancellationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cancellations/{id}/reject [post]
func (h *CancellationHandler) Reject(c *gin.Context) {
	runActorAction(&h.BaseHandler, c, false, h.cancellationService.RejectCancellation)
}

// RecordRefund records one refund payout.
// @Summary      Record a refund payout
// @Tags         cancellations
// @Accept       json
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Param        request body salesapp.RecordRefundRequest true "Request body"
// @Success      201 {object} dto.Response{data=salesapp.CancellationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cancellations/{id}/refunds [post]
func (h *CancellationHandler) RecordRefund(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req salesapp.RecordRefundRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cancellation, err := h.cancellationService.RecordRefundPayment(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cancellation)
}

// GetByID returns one cancellation with its payouts.
// @Summary      Get a cancellation
// @Tags         cancellations
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Success      200 {object} dto.Response{data=salesapp.CancellationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cancellations/{id} [get]
func (h *CancellationHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	cancellation, err := h.cancellationService.GetCancellation(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cancellation)
}

// List returns a page of cancellations.
// @Summary      List cancellations
// @Tags         cancellations
// @Produce      json
// @Param        search query string false "Search sale or client"
// @Param        status query string false "Cancellation status" Enums(PENDING, APPROVED, REJECTED, PARTIAL_REFUND, REFUNDED)
// @Param        sale_id query string false "Sale ID" format(uuid)
// @Param        client_id query string false "Client ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]salesapp.CancellationResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cancellations [get]
func (h *CancellationHandler) List(c *gin.Context) {
	var filter salesapp.CancellationListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize)

	items, total, err := h.cancellationService.ListCancellations(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}
