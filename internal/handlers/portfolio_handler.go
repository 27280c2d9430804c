package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bondfolio/internal/errors"
	"bondfolio/internal/pagination"
	"bondfolio/internal/services"
)

// PortfolioHandler handles portfolio and holding requests
type PortfolioHandler struct {
	portfolioService services.PortfolioServicer
	currencyService  services.CurrencyServicer
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService services.PortfolioServicer, currencyService services.CurrencyServicer) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService, currencyService: currencyService}
}

// CreatePortfolioRequest represents the portfolio creation payload
type CreatePortfolioRequest struct {
	Name         string `json:"name" binding:"required,max=100"`
	Description  string `json:"description" binding:"max=500"`
	CurrencyCode string `json:"currency_code" binding:"required,currency_code"`
}

// UpdatePortfolioRequest represents the portfolio update payload
type UpdatePortfolioRequest struct {
	Name         *string `json:"name" binding:"omitempty,max=100"`
	Description  *string `json:"description" binding:"omitempty,max=500"`
	CurrencyCode *string `json:"currency_code" binding:"omitempty,currency_code"`
}

// HoldingRequest represents the holding create/update payload
type HoldingRequest struct {
	SecurityID string  `json:"security_id" binding:"required,uuid"`
	Quantity   float64 `json:"quantity" binding:"required,gt=0"`
}

// UpdateHoldingRequest represents the holding quantity update payload
type UpdateHoldingRequest struct {
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
}

// Create creates a portfolio
// @Summary     Create portfolio
// @Description Create a portfolio valued in the given currency
// @Tags        portfolios
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreatePortfolioRequest true "Portfolio data"
// @Success     201 {object} models.Portfolio "Portfolio created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /portfolios [post]
func (h *PortfolioHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	currency, err := h.currencyService.GetCurrencyByCode(req.CurrencyCode)
	if err != nil {
		respondWithError(c, err)
		return
	}

	portfolio, err := h.portfolioService.CreatePortfolio(userID, req.Name, req.Description, currency.ID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"portfolio": portfolio})
}

// List returns the user's portfolios
// @Summary     List portfolios
// @Description Get the authenticated user's portfolios
// @Tags        portfolios
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number" default(1)
// @Param       page_size query int false "Page size" default(20)
// @Success     200 {object} pagination.PageResponse[models.Portfolio] "Portfolios"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /portfolios [get]
func (h *PortfolioHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	portfolios, err := h.portfolioService.GetUserPortfolios(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, portfolios)
}

// Get returns one owned portfolio
// @Summary     Get portfolio
// @Description Get a single portfolio owned by the authenticated user
// @Tags        portfolios
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Portfolio ID"
// @Success     200 {object} models.Portfolio "Portfolio"
// @Failure     404 {object} ErrorResponse "Portfolio not found"
// @Router      /portfolios/{id} [get]
func (h *PortfolioHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	portfolio, err := h.portfolioService.GetPortfolioByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"portfolio": portfolio})
}

// Update modifies an owned portfolio
// @Summary     Update portfolio
// @Description Update a portfolio's name, description, or currency
// @Tags        portfolios
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Portfolio ID"
// @Param       request body UpdatePortfolioRequest true "Fields to update"
// @Success     200 {object} models.Portfolio "Portfolio updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Portfolio not found"
// @Router      /portfolios/{id} [put]
func (h *PortfolioHandler) Update(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var currencyID *string
	if req.CurrencyCode != nil {
		currency, err := h.currencyService.GetCurrencyByCode(*req.CurrencyCode)
		if err != nil {
			respondWithError(c, err)
			return
		}
		currencyID = &currency.ID
	}

	portfolio, err := h.portfolioService.UpdatePortfolio(userID, c.Param("id"), req.Name, req.Description, currencyID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"portfolio": portfolio})
}

// Delete removes an owned portfolio
// @Summary     Delete portfolio
// @Description Delete a portfolio and its holdings
// @Tags        portfolios
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Portfolio ID"
// @Success     204 "Portfolio deleted"
// @Failure     404 {object} ErrorResponse "Portfolio not found"
// @Router      /portfolios/{id} [delete]
func (h *PortfolioHandler) Delete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.portfolioService.DeletePortfolio(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListHoldings returns a portfolio's holdings
// @Summary     List holdings
// @Description Get all holdings in an owned portfolio
// @Tags        portfolios
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Portfolio ID"
// @Success     200 {array} models.PortfolioHolding "Holdings"
// @Failure     404 {object} ErrorResponse "Portfolio not found"
// @Router      /portfolios/{id}/holdings [get]
func (h *PortfolioHandler) ListHoldings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	holdings, err := h.portfolioService.ListHoldings(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"holdings": holdings})
}

// AddHolding adds a security position to a portfolio
// @Summary     Add holding
// @Description Add a security position to an owned portfolio
// @Tags        portfolios
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Portfolio ID"
// @Param       request body HoldingRequest true "Holding data"
// @Success     201 {object} models.PortfolioHolding "Holding added"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Portfolio or security not found"
// @Failure     409 {object} ErrorResponse "Security already held"
// @Router      /portfolios/{id}/holdings [post]
func (h *PortfolioHandler) AddHolding(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req HoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	holding, err := h.portfolioService.AddHolding(userID, c.Param("id"), req.SecurityID, req.Quantity)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"holding": holding})
}

// UpdateHolding changes a holding's quantity
// @Summary     Update holding
// @Description Change the quantity of an existing holding
// @Tags        portfolios
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Portfolio ID"
// @Param       holdingId path string true "Holding ID"
// @Param       request body UpdateHoldingRequest true "New quantity"
// @Success     200 {object} models.PortfolioHolding "Holding updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Portfolio or holding not found"
// @Router      /portfolios/{id}/holdings/{holdingId} [put]
func (h *PortfolioHandler) UpdateHolding(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateHoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	holding, err := h.portfolioService.UpdateHolding(userID, c.Param("id"), c.Param("holdingId"), req.Quantity)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"holding": holding})
}

// RemoveHolding deletes a holding
// @Summary     Remove holding
// @Description Remove a security position from an owned portfolio
// @Tags        portfolios
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Portfolio ID"
// @Param       holdingId path string true "Holding ID"
// @Success     204 "Holding removed"
// @Failure     404 {object} ErrorResponse "Portfolio or holding not found"
// @Router      /portfolios/{id}/holdings/{holdingId} [delete]
func (h *PortfolioHandler) RemoveHolding(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.portfolioService.RemoveHolding(userID, c.Param("id"), c.Param("holdingId")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Valuation returns a portfolio's current value
// @Summary     Portfolio valuation
// @Description Value every position at its latest price in the portfolio currency
// @Tags        portfolios
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Portfolio ID"
// @Success     200 {object} services.PortfolioValuation "Valuation"
// @Failure     404 {object} ErrorResponse "Portfolio not found"
// @Router      /portfolios/{id}/valuation [get]
func (h *PortfolioHandler) Valuation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	valuation, err := h.portfolioService.Valuation(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, valuation)
}

// Breakdown returns a portfolio's value grouped along one axis
// @Summary     Portfolio breakdown
// @Description Group a portfolio's value by sector, region, or category
// @Tags        portfolios
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Portfolio ID"
// @Param       by query string true "Axis: sector, region, or category"
// @Success     200 {object} services.Breakdown "Breakdown"
// @Failure     400 {object} ErrorResponse "Unknown axis"
// @Failure     404 {object} ErrorResponse "Portfolio not found"
// @Router      /portfolios/{id}/breakdown [get]
func (h *PortfolioHandler) Breakdown(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	dimension := services.BreakdownDimension(c.DefaultQuery("by", string(services.BreakdownBySector)))
	breakdown, err := h.portfolioService.BreakdownBy(userID, c.Param("id"), dimension)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}
