package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "bondfolio/internal/errors"
	"bondfolio/internal/pagination"
	"bondfolio/internal/services"
)

// SecurityHandler handles security reference-data requests
type SecurityHandler struct {
	securityService services.SecurityServicer
	currencyService services.CurrencyServicer
}

// NewSecurityHandler creates a new SecurityHandler
func NewSecurityHandler(securityService services.SecurityServicer, currencyService services.CurrencyServicer) *SecurityHandler {
	return &SecurityHandler{securityService: securityService, currencyService: currencyService}
}

// SecurityRequest represents the security create/update payload
type SecurityRequest struct {
	Symbol       string  `json:"symbol" binding:"required,max=20"`
	Name         string  `json:"name" binding:"required,max=255"`
	CurrencyCode string  `json:"currency_code" binding:"required,currency_code"`
	CategoryID   *string `json:"category_id" binding:"omitempty,uuid"`
	ExchangeID   *string `json:"exchange_id" binding:"omitempty,uuid"`
	SectorID     *string `json:"sector_id" binding:"omitempty,uuid"`
	Country      string  `json:"country" binding:"max=100"`
	Website      string  `json:"website" binding:"omitempty,url,max=255"`
	Industry     string  `json:"industry" binding:"max=100"`
	Description  string  `json:"description" binding:"max=2000"`
}

func (h *SecurityHandler) toInput(req SecurityRequest) (services.SecurityInput, error) {
	currency, err := h.currencyService.GetCurrencyByCode(req.CurrencyCode)
	if err != nil {
		return services.SecurityInput{}, err
	}
	return services.SecurityInput{
		Symbol:      req.Symbol,
		Name:        req.Name,
		CurrencyID:  currency.ID,
		CategoryID:  req.CategoryID,
		ExchangeID:  req.ExchangeID,
		SectorID:    req.SectorID,
		Country:     req.Country,
		Website:     req.Website,
		Industry:    req.Industry,
		Description: req.Description,
	}, nil
}

// List returns tracked securities
// @Summary     List securities
// @Description Get a paginated list of tracked securities
// @Tags        securities
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number" default(1)
// @Param       page_size query int false "Page size" default(20)
// @Success     200 {object} pagination.PageResponse[models.Security] "Securities"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /securities [get]
func (h *SecurityHandler) List(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	securities, err := h.securityService.ListSecurities(page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, securities)
}

// Get returns one security
// @Summary     Get security
// @Description Get a single security with its reference data
// @Tags        securities
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Security ID"
// @Success     200 {object} models.Security "Security"
// @Failure     404 {object} ErrorResponse "Security not found"
// @Router      /securities/{id} [get]
func (h *SecurityHandler) Get(c *gin.Context) {
	security, err := h.securityService.GetSecurityByID(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"security": security})
}

// GetPrices returns a security's stored price history
// @Summary     Get price history
// @Description Get a security's stored end-of-day prices, newest first
// @Tags        securities
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Security ID"
// @Param       from query string false "Start date (YYYY-MM-DD)"
// @Param       to query string false "End date (YYYY-MM-DD)"
// @Param       page query int false "Page number" default(1)
// @Param       page_size query int false "Page size" default(20)
// @Success     200 {object} pagination.PageResponse[models.SecurityPrice] "Prices"
// @Failure     400 {object} ErrorResponse "Invalid date"
// @Failure     404 {object} ErrorResponse "Security not found"
// @Router      /securities/{id}/prices [get]
func (h *SecurityHandler) GetPrices(c *gin.Context) {
	security, err := h.securityService.GetSecurityByID(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	from, err := parseDateQuery(c, "from")
	if err != nil {
		respondWithError(c, err)
		return
	}
	to, err := parseDateQuery(c, "to")
	if err != nil {
		respondWithError(c, err)
		return
	}

	prices, err := h.securityService.GetPriceHistory(security.ID, from, to, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, prices)
}

// Create adds a tracked security
// @Summary     Create security
// @Description Add a security to the tracked set (admin only)
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SecurityRequest true "Security data"
// @Success     201 {object} models.Security "Security created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     409 {object} ErrorResponse "Symbol already tracked"
// @Router      /admin/securities [post]
func (h *SecurityHandler) Create(c *gin.Context) {
	var req SecurityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input, err := h.toInput(req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	security, err := h.securityService.CreateSecurity(input)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"security": security})
}

// Update modifies a tracked security
// @Summary     Update security
// @Description Update a tracked security's fields (admin only)
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Security ID"
// @Param       request body SecurityRequest true "Security data"
// @Success     200 {object} models.Security "Security updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Security not found"
// @Router      /admin/securities/{id} [put]
func (h *SecurityHandler) Update(c *gin.Context) {
	var req SecurityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input, err := h.toInput(req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	security, err := h.securityService.UpdateSecurity(c.Param("id"), input)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"security": security})
}

// Delete removes a tracked security
// @Summary     Delete security
// @Description Remove a security and its price history (admin only)
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Security ID"
// @Success     204 "Security deleted"
// @Failure     400 {object} ErrorResponse "Security held in portfolios"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Security not found"
// @Router      /admin/securities/{id} [delete]
func (h *SecurityHandler) Delete(c *gin.Context) {
	if err := h.securityService.DeleteSecurity(c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// parseDateQuery parses an optional YYYY-MM-DD query parameter.
func parseDateQuery(c *gin.Context, name string) (time.Time, error) {
	value := c.Query(name)
	if value == "" {
		return time.Time{}, nil
	}
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+name+" date")
	}
	return date, nil
}
