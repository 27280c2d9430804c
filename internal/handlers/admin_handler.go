package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bondfolio/internal/errors"
	"bondfolio/internal/models"
	"bondfolio/internal/pagination"
	"bondfolio/internal/services"
)

// Refresher triggers market-data refresh jobs and fetch retries.
type Refresher interface {
	RefreshSecurityPrices(ctx context.Context, force bool) error
	RefreshExchangeRates(ctx context.Context, force bool) error
	RetryFetchLog(ctx context.Context, id string) (*models.FetchLog, error)
}

// AdminHandler handles administrative requests
type AdminHandler struct {
	userService     services.UserServicer
	currencyService services.CurrencyServicer
	fetchLogService services.FetchLogServicer
	statusService   services.StatusServicer
	refresher       Refresher
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	userService services.UserServicer,
	currencyService services.CurrencyServicer,
	fetchLogService services.FetchLogServicer,
	statusService services.StatusServicer,
	refresher Refresher,
) *AdminHandler {
	return &AdminHandler{
		userService:     userService,
		currencyService: currencyService,
		fetchLogService: fetchLogService,
		statusService:   statusService,
		refresher:       refresher,
	}
}

// CreateUserRequest represents the admin user creation payload
type CreateUserRequest struct {
	Username        string `json:"username" binding:"required,min=3,max=64"`
	Password        string `json:"password" binding:"required,min=6,max=128"`
	Email           string `json:"email" binding:"omitempty,email,max=255"`
	DefaultCurrency string `json:"default_currency" binding:"omitempty,currency_code"`
	IsAdmin         bool   `json:"is_admin"`
}

// UpdateUserRequest represents the admin user update payload
type UpdateUserRequest struct {
	Email           *string `json:"email" binding:"omitempty,email,max=255"`
	Password        *string `json:"password" binding:"omitempty,min=6,max=128"`
	DefaultCurrency *string `json:"default_currency" binding:"omitempty,currency_code"`
	IsAdmin         *bool   `json:"is_admin"`
}

// ListUsers returns all users
// @Summary     List users
// @Description Get a paginated list of all users (admin only)
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number" default(1)
// @Param       page_size query int false "Page size" default(20)
// @Success     200 {object} pagination.PageResponse[models.User] "Users"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	users, err := h.userService.ListUsers(page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// CreateUser creates a user account
// @Summary     Create user
// @Description Create a user account, optionally with admin rights (admin only)
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateUserRequest true "User data"
// @Success     201 {object} UserResponse "User created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     409 {object} ErrorResponse "Username already taken"
// @Router      /admin/users [post]
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var defaultCurrencyID *string
	if req.DefaultCurrency != "" {
		currency, err := h.currencyService.GetCurrencyByCode(req.DefaultCurrency)
		if err != nil {
			respondWithError(c, err)
			return
		}
		defaultCurrencyID = &currency.ID
	}

	user, err := h.userService.CreateUser(req.Username, req.Password, req.Email, defaultCurrencyID, req.IsAdmin)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": userResponse(user)})
}

// UpdateUser updates a user account
// @Summary     Update user
// @Description Update a user's email, password, currency, or admin flag (admin only)
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "User ID"
// @Param       request body UpdateUserRequest true "Fields to update"
// @Success     200 {object} UserResponse "User updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /admin/users/{id} [put]
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var defaultCurrencyID *string
	if req.DefaultCurrency != nil {
		currency, err := h.currencyService.GetCurrencyByCode(*req.DefaultCurrency)
		if err != nil {
			respondWithError(c, err)
			return
		}
		defaultCurrencyID = &currency.ID
	}

	user, err := h.userService.UpdateUser(c.Param("id"), req.Email, defaultCurrencyID, req.IsAdmin, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}

// DeleteUser removes a user account
// @Summary     Delete user
// @Description Delete a user account (admin only)
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "User ID"
// @Success     204 "User deleted"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.DeleteUser(c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RefreshSecurities forces a security price refresh
// @Summary     Force price refresh
// @Description Reset the staleness gate and re-run the security price refresh (admin only)
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.RefreshStatus "Refresh finished"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     500 {object} ErrorResponse "Refresh failed"
// @Router      /admin/refresh/securities [post]
func (h *AdminHandler) RefreshSecurities(c *gin.Context) {
	if err := h.statusService.Reset(models.RefreshDomainSecurities); err != nil {
		respondWithError(c, err)
		return
	}
	if err := h.refresher.RefreshSecurityPrices(c.Request.Context(), true); err != nil {
		respondWithError(c, err)
		return
	}

	status, err := h.statusService.Get()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// RefreshExchangeRates forces an exchange rate refresh
// @Summary     Force rate refresh
// @Description Reset the staleness gate and re-run the exchange rate refresh (admin only)
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.RefreshStatus "Refresh finished"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     500 {object} ErrorResponse "Refresh failed"
// @Router      /admin/refresh/exchange-rates [post]
func (h *AdminHandler) RefreshExchangeRates(c *gin.Context) {
	if err := h.statusService.Reset(models.RefreshDomainExchangeRates); err != nil {
		respondWithError(c, err)
		return
	}
	if err := h.refresher.RefreshExchangeRates(c.Request.Context(), true); err != nil {
		respondWithError(c, err)
		return
	}

	status, err := h.statusService.Get()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// ListFetchLogs returns the operational fetch log
// @Summary     List fetch logs
// @Description Get fetch log rows newest first, optionally filtered by type and status (admin only)
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       type query string false "Fetch type (SECURITY or EXCHANGE)"
// @Param       status query string false "Status (SUCCESS, PARTIAL, or FAILED)"
// @Param       page query int false "Page number" default(1)
// @Param       page_size query int false "Page size" default(20)
// @Success     200 {object} pagination.PageResponse[models.FetchLog] "Fetch logs"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /admin/fetch-logs [get]
func (h *AdminHandler) ListFetchLogs(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var fetchType *models.FetchType
	if raw := c.Query("type"); raw != "" {
		t := models.FetchType(raw)
		if t != models.FetchTypeSecurity && t != models.FetchTypeExchange {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid fetch type"))
			return
		}
		fetchType = &t
	}

	var status *models.FetchStatus
	if raw := c.Query("status"); raw != "" {
		s := models.FetchStatus(raw)
		if s != models.FetchStatusSuccess && s != models.FetchStatusPartial && s != models.FetchStatusFailed {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid fetch status"))
			return
		}
		status = &s
	}

	logs, err := h.fetchLogService.List(page, fetchType, status)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// RetryFetch retries one failed fetch
// @Summary     Retry failed fetch
// @Description Re-attempt a single failed fetch through the quote API (admin only)
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Fetch log ID"
// @Success     200 {object} models.FetchLog "Updated fetch log row"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Fetch log not found"
// @Failure     409 {object} ErrorResponse "Row not retryable"
// @Router      /admin/fetch-logs/{id}/retry [post]
func (h *AdminHandler) RetryFetch(c *gin.Context) {
	log, err := h.refresher.RetryFetchLog(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fetch_log": log})
}
