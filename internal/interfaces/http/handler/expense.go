package handler

import (
	"github.com/gin-gonic/gin"
	financeapp "github.com/landerp/backend/internal/application/finance"
)

// ExpenseHandler serves expenses, their categories and approval workflow
type ExpenseHandler struct {
	BaseHandler
	expenseService *financeapp.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *financeapp.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// Create records a draft expense.
// @Summary      Record a draft expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body financeapp.CreateExpenseRequest true "Request body"
// @Success      201 {object} dto.Response{data=financeapp.ExpenseResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req financeapp.CreateExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	expense, err := h.expenseService.CreateExpense(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, expense)
}

// Update replaces a draft expense.
// @Summary      Replace a draft expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Param        request body financeapp.UpdateExpenseRequest true "Request body"
// @Success      200 {object} dto.Response{data=financeapp.ExpenseResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	runActorAction(&h.BaseHandler, c, true, h.expenseService.UpdateExpense)
}

// GetByID returns an expense with its history.
// @Summary      Get a expense
// @Tags         expenses
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Success      200 {object} dto.Response{data=financeapp.ExpenseResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/expenses/{id} [get]
func (h *ExpenseHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	expense, err := h.expenseService.GetExpense(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// List returns a page of expenses.
// @Summary      List expenses
// @Tags         expenses
// @Produce      json
// @Param        search query string false "Search voucher or payee"
// @Param        status query string false "Approval status" Enums(DRAFT, PENDING_ACCOUNTS, PENDING_HOF, APPROVED, REJECTED)
// @Param        category_id query string false "Category ID" format(uuid)
// @Param        account_id query string false "Account ID" format(uuid)
// @Param        from_date query string false "Earliest date (YYYY-MM-DD)" format(date)
// @Param        to_date query string false "Latest date (YYYY-MM-DD)" format(date)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]financeapp.ExpenseResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	var filter financeapp.ExpenseListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize)

	items, total, err := h.expenseService.ListExpenses(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// Submit sends a draft to the accounts desk.
// @Summary      Submit a expense for approval
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Param        request body financeapp.WorkflowRequest false "Request body"
// @Success      200 {object} dto.Response{data=financeapp.ExpenseResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/expenses/{id}/submit [post]
func (h *ExpenseHandler) Submit(c *gin.Context) {
	runActorAction(&h.BaseHandler, c, false, h.expenseService.SubmitExpense)
}

// Approve passes the current approval tier.
// @Summary      Approve a expense at the current tier
// @Description  The accounts manager approves first, then the head of finance. The final approval posts to the ledger
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Param        request body financeapp.WorkflowRequest false "Request body"
// @Success      200 {object} dto.Response{data=financeapp.ExpenseResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/expenses/{id}/approve [post]
func (h *ExpenseHandler) Approve(c *gin.Context) {
	runActorAction(&h.BaseHandler, c, false, h.expenseService.ApproveExpense)
}

// Reject declines the expense at the current tier.
// @Summary      Reject a expense at the current tier
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Param        request body financeapp.WorkflowRequest false "Request body"
// @Success      200 {object} dto.Response{data=financeapp.ExpenseResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/expenses/{id}/reject [post]
func (h *ExpenseHandler) Reject(c *gin.Context) {
	runActorAction(&h.BaseHandler, c, false, h.expenseService.RejectExpense)
}

// History returns the approval trail.
// @Summary      Get the approval trail of a expense
// @Tags         expenses
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]financeapp.HistoryEntryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/expenses/{id}/history [get]
func (h *ExpenseHandler) History(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	history, err := h.expenseService.ExpenseHistory(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}

// RequestUpload issues a presigned URL for the voucher scan.
// @Summary      Request an upload URL for the expense scan
// @Tags         expenses
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
// @Router       /finance/expenses/{id}/attachment [post]
func (h *ExpenseHandler) RequestUpload(c *gin.Context) {
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
	url, err := h.expenseService.RequestUploadURL(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, url)
}

// Download issues a presigned URL for the stored scan.
// @Summary      Get a download URL for the expense scan
// @Tags         expenses
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Success      200 {object} dto.Response{data=financeapp.AttachmentURLResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/expenses/{id}/attachment [get]
func (h *ExpenseHandler) Download(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	url, err := h.expenseService.DownloadURL(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, url)
}

// CreateCategory adds an expense category.
// @Summary      Create an expense category
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body financeapp.CreateExpenseCategoryRequest true "Request body"
// @Success      201 {object} dto.Response{data=financeapp.ExpenseCategoryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/expense-categories [post]
func (h *ExpenseHandler) CreateCategory(c *gin.Context) {
	var req financeapp.CreateExpenseCategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	category, err := h.expenseService.CreateCategory(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, category)
}

// ActivateCategory re-enables a category.
// @Summary      Activate an expense category
// @Tags         expenses
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Success      200 {object} dto.Response{data=financeapp.ExpenseCategoryResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/expense-categories/{id}/activate [post]
func (h *ExpenseHandler) ActivateCategory(c *gin.Context) {
	h.setCategoryActive(c, true)
}

// DeactivateCategory hides a category from new expenses.
// @Summary      Deactivate an expense category
// @Tags         expenses
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Success      200 {object} dto.Response{data=financeapp.ExpenseCategoryResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/expense-categories/{id}/deactivate [post]
func (h *ExpenseHandler) DeactivateCategory(c *gin.Context) {
	h.setCategoryActive(c, false)
}

func (h *ExpenseHandler) setCategoryActive(c *gin.Context, active bool) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	category, err := h.expenseService.SetCategoryActive(c.Request.Context(), id, active)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// ListCategories returns the categories; active_only=true hides disabled ones.
// @Summary      List expense categories
// @Tags         expenses
// @Produce      json
// @Param        active_only query boolean false "Hide deactivated categories"
// @Success      200 {object} dto.Response{data=[]financeapp.ExpenseCategoryResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/expense-categories [get]
func (h *ExpenseHandler) ListCategories(c *gin.Context) {
	categories, err := h.expenseService.ListCategories(c.Request.Context(), c.Query("active_only") == "true")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}
