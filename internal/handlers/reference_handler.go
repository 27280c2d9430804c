package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bondfolio/internal/errors"
	"bondfolio/internal/services"
)

// ReferenceHandler serves the static lookup tables
type ReferenceHandler struct {
	referenceService services.ReferenceServicer
}

// NewReferenceHandler creates a new ReferenceHandler
func NewReferenceHandler(referenceService services.ReferenceServicer) *ReferenceHandler {
	return &ReferenceHandler{referenceService: referenceService}
}

// CreateExchangeRequest represents the exchange creation payload
type CreateExchangeRequest struct {
	Name     string  `json:"name" binding:"required,max=100"`
	RegionID *string `json:"region_id" binding:"omitempty,uuid"`
}

// ListRegions returns all regions
// @Summary     List regions
// @Tags        reference
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.Region "Regions"
// @Router      /reference/regions [get]
func (h *ReferenceHandler) ListRegions(c *gin.Context) {
	regions, err := h.referenceService.ListRegions()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"regions": regions})
}

// ListSectors returns all sectors
// @Summary     List sectors
// @Tags        reference
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.Sector "Sectors"
// @Router      /reference/sectors [get]
func (h *ReferenceHandler) ListSectors(c *gin.Context) {
	sectors, err := h.referenceService.ListSectors()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sectors": sectors})
}

// ListCategories returns all security categories
// @Summary     List categories
// @Tags        reference
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.SecurityCategory "Categories"
// @Router      /reference/categories [get]
func (h *ReferenceHandler) ListCategories(c *gin.Context) {
	categories, err := h.referenceService.ListCategories()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ListExchanges returns all exchanges with their regions
// @Summary     List exchanges
// @Tags        reference
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.Exchange "Exchanges"
// @Router      /reference/exchanges [get]
func (h *ReferenceHandler) ListExchanges(c *gin.Context) {
	exchanges, err := h.referenceService.ListExchanges()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exchanges": exchanges})
}

// CreateExchange adds an exchange
// @Summary     Create exchange
// @Description Add a stock exchange, optionally mapped to a region (admin only)
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateExchangeRequest true "Exchange data"
// @Success     201 {object} models.Exchange "Exchange created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     409 {object} ErrorResponse "Exchange already exists"
// @Router      /admin/exchanges [post]
func (h *ReferenceHandler) CreateExchange(c *gin.Context) {
	var req CreateExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	exchange, err := h.referenceService.CreateExchange(req.Name, req.RegionID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"exchange": exchange})
}
