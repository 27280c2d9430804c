package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "bondfolio/internal/errors"
	"bondfolio/internal/marketdata"
	"bondfolio/internal/services"
)

// InfoProvider looks up ticker metadata from the market-data provider.
type InfoProvider interface {
	Info(ctx context.Context, symbol string) (*marketdata.SecurityInfo, error)
}

// TradingCalendar resolves the most recent trading day.
type TradingCalendar interface {
	LastTradingDay(ctx context.Context) (time.Time, error)
}

// QuoteProvider serves on-demand quotes through the budgeted quote API.
type QuoteProvider interface {
	EODPrice(ctx context.Context, symbol, date string) (float64, string, error)
	ExchangeRate(ctx context.Context, from, to string) (float64, error)
}

// MarketHandler serves market-data lookups and the refresh status view
type MarketHandler struct {
	info          InfoProvider
	calendar      TradingCalendar
	quotes        QuoteProvider
	statusService services.StatusServicer
}

// NewMarketHandler creates a new MarketHandler
func NewMarketHandler(info InfoProvider, calendar TradingCalendar, quotes QuoteProvider, statusService services.StatusServicer) *MarketHandler {
	return &MarketHandler{info: info, calendar: calendar, quotes: quotes, statusService: statusService}
}

// Info looks up ticker metadata
// @Summary     Security info lookup
// @Description Look up a ticker's metadata from the market-data provider; results are cached
// @Tags        market
// @Produce     json
// @Security    BearerAuth
// @Param       symbol path string true "Ticker symbol"
// @Success     200 {object} marketdata.SecurityInfo "Security info"
// @Failure     400 {object} ErrorResponse "Invalid symbol"
// @Failure     502 {object} ErrorResponse "Provider error"
// @Router      /market/info/{symbol} [get]
func (h *MarketHandler) Info(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if symbol == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Symbol is required"))
		return
	}

	info, err := h.info.Info(c.Request.Context(), symbol)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrProviderData, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"info": info})
}

// Price looks up a symbol's latest end-of-day close on demand
// @Summary     On-demand price lookup
// @Description Fetch a symbol's latest end-of-day close through the budgeted quote API
// @Tags        market
// @Produce     json
// @Security    BearerAuth
// @Param       symbol path string true "Ticker symbol"
// @Param       date query string false "Session date (YYYY-MM-DD)"
// @Success     200 {object} map[string]interface{} "Price"
// @Failure     400 {object} ErrorResponse "Invalid symbol"
// @Failure     502 {object} ErrorResponse "Provider error"
// @Router      /market/price/{symbol} [get]
func (h *MarketHandler) Price(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if symbol == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Symbol is required"))
		return
	}

	price, datetime, err := h.quotes.EODPrice(c.Request.Context(), symbol, c.Query("date"))
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrProviderData, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"symbol":   symbol,
		"price":    price,
		"datetime": datetime,
	})
}

// ExchangeRate looks up a currency pair's current rate on demand
// @Summary     On-demand exchange rate lookup
// @Description Fetch a currency pair's current rate through the budgeted quote API
// @Tags        market
// @Produce     json
// @Security    BearerAuth
// @Param       from query string true "Source currency code"
// @Param       to query string true "Target currency code"
// @Success     200 {object} map[string]interface{} "Rate"
// @Failure     400 {object} ErrorResponse "Missing currency code"
// @Failure     502 {object} ErrorResponse "Provider error"
// @Router      /market/exchange-rate [get]
func (h *MarketHandler) ExchangeRate(c *gin.Context) {
	from := strings.ToUpper(strings.TrimSpace(c.Query("from")))
	to := strings.ToUpper(strings.TrimSpace(c.Query("to")))
	if from == "" || to == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Both from and to currency codes are required"))
		return
	}

	rate, err := h.quotes.ExchangeRate(c.Request.Context(), from, to)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrProviderData, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"from": from,
		"to":   to,
		"rate": rate,
	})
}

// LastTradingDay returns the most recent trading day
// @Summary     Last trading day
// @Description Resolve the most recent trading day from the market calendar
// @Tags        market
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]string "Last trading day"
// @Failure     502 {object} ErrorResponse "Provider error"
// @Router      /market/last-trading-day [get]
func (h *MarketHandler) LastTradingDay(c *gin.Context) {
	day, err := h.calendar.LastTradingDay(c.Request.Context())
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrProviderData, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"last_trading_day": day.Format("2006-01-02")})
}

// RefreshStatus returns the daily refresh status
// @Summary     Refresh status
// @Description Show when prices and exchange rates were last refreshed
// @Tags        market
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.RefreshStatus "Refresh status"
// @Router      /market/refresh-status [get]
func (h *MarketHandler) RefreshStatus(c *gin.Context) {
	status, err := h.statusService.Get()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}
