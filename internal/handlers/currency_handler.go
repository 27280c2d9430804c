package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bondfolio/internal/errors"
	"bondfolio/internal/services"
)

// CurrencyHandler handles currency reference-data requests
type CurrencyHandler struct {
	currencyService services.CurrencyServicer
}

// NewCurrencyHandler creates a new CurrencyHandler
func NewCurrencyHandler(currencyService services.CurrencyServicer) *CurrencyHandler {
	return &CurrencyHandler{currencyService: currencyService}
}

// CreateCurrencyRequest represents the currency creation payload
type CreateCurrencyRequest struct {
	Code string `json:"code" binding:"required,currency_code,iso4217"`
	Name string `json:"name" binding:"required,max=100"`
}

// List returns all tracked currencies
// @Summary     List currencies
// @Description Get all tracked currencies ordered by code
// @Tags        currencies
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.Currency "Currencies"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /currencies [get]
func (h *CurrencyHandler) List(c *gin.Context) {
	currencies, err := h.currencyService.ListCurrencies()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"currencies": currencies})
}

// Create adds a currency to the tracked set
// @Summary     Create currency
// @Description Add a currency to the tracked set (admin only)
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateCurrencyRequest true "Currency data"
// @Success     201 {object} models.Currency "Currency created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     409 {object} ErrorResponse "Currency already tracked"
// @Router      /admin/currencies [post]
func (h *CurrencyHandler) Create(c *gin.Context) {
	var req CreateCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	currency, err := h.currencyService.CreateCurrency(req.Code, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"currency": currency})
}

// Delete removes a currency from the tracked set
// @Summary     Delete currency
// @Description Remove a currency that no security or portfolio references (admin only)
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Currency ID"
// @Success     204 "Currency deleted"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Currency not found"
// @Failure     409 {object} ErrorResponse "Currency still referenced"
// @Router      /admin/currencies/{id} [delete]
func (h *CurrencyHandler) Delete(c *gin.Context) {
	if err := h.currencyService.DeleteCurrency(c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
