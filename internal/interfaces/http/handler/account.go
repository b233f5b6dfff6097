package handler

import (
	"github.com/gin-gonic/gin"
	financeapp "github.com/landerp/backend/internal/application/finance"
)

// AccountHandler serves bank and cash accounts. Balances only move through
// approved receipts and expenses.
type AccountHandler struct {
	BaseHandler
	accountService *financeapp.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *financeapp.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// Create opens an account.
// @Summary      Open an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        request body financeapp.CreateAccountRequest true "Request body"
// @Success      201 {object} dto.Response{data=financeapp.AccountResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/accounts [post]
func (h *AccountHandler) Create(c *gin.Context) {
	var req financeapp.CreateAccountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	account, err := h.accountService.CreateAccount(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}

// Update edits descriptive fields.
// @Summary      Update an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Param        request body financeapp.UpdateAccountRequest true "Request body"
// @Success      200 {object} dto.Response{data=financeapp.AccountResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/accounts/{id} [put]
func (h *AccountHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req financeapp.UpdateAccountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	account, err := h.accountService.UpdateAccount(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// Deactivate closes an account for new postings.
// @Summary      Deactivate an account
// @Tags         accounts
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Success      200 {object} dto.Response{data=financeapp.AccountResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/accounts/{id}/deactivate [post]
func (h *AccountHandler) Deactivate(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	account, err := h.accountService.DeactivateAccount(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// GetByID returns one account.
// @Summary      Get an account
// @Tags         accounts
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Success      200 {object} dto.Response{data=financeapp.AccountResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/accounts/{id} [get]
func (h *AccountHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	account, err := h.accountService.GetAccount(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// List returns all accounts.
// @Summary      List accounts
// @Tags         accounts
// @Produce      json
// @Param        kind query string false "Account kind" Enums(BANK, CASH)
// @Param        active_only query boolean false "Hide deactivated accounts"
// @Success      200 {object} dto.Response{data=[]financeapp.AccountResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/accounts [get]
func (h *AccountHandler) List(c *gin.Context) {
	var filter financeapp.AccountListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	accounts, err := h.accountService.ListAccounts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, accounts)
}

// Transactions returns a page of the account ledger, newest first.
// @Summary      List account ledger entries
// @Tags         accounts
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]financeapp.AccountTransactionResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/accounts/{id}/transactions [get]
func (h *AccountHandler) Transactions(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	page, pageSize := pagination(c)
	items, total, err := h.accountService.Ledger(c.Request.Context(), id, page, pageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// Reconcile checks the balance against the ledger.
// @Summary      Check an account balance against its ledger
// @Tags         accounts
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Success      200 {object} dto.Response{data=object}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/accounts/{id}/reconcile [post]
func (h *AccountHandler) Reconcile(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.accountService.Reconcile(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"account_id": id, "consistent": true})
}
