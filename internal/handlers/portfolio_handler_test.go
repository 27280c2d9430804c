package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "bondfolio/internal/errors"
	"bondfolio/internal/models"
	"bondfolio/internal/pagination"
	"bondfolio/internal/services"
)

type mockPortfolioService struct {
	createPortfolioFn   func(userID, name, description, currencyID string) (*models.Portfolio, error)
	getUserPortfoliosFn func(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Portfolio], error)
	getPortfolioByIDFn  func(userID, portfolioID string) (*models.Portfolio, error)
	updatePortfolioFn   func(userID, portfolioID string, name, description *string, currencyID *string) (*models.Portfolio, error)
	deletePortfolioFn   func(userID, portfolioID string) error
	addHoldingFn        func(userID, portfolioID, securityID string, quantity float64) (*models.PortfolioHolding, error)
	updateHoldingFn     func(userID, portfolioID, holdingID string, quantity float64) (*models.PortfolioHolding, error)
	removeHoldingFn     func(userID, portfolioID, holdingID string) error
	listHoldingsFn      func(userID, portfolioID string) ([]models.PortfolioHolding, error)
	valuationFn         func(userID, portfolioID string) (*services.PortfolioValuation, error)
	breakdownByFn       func(userID, portfolioID string, dimension services.BreakdownDimension) (*services.Breakdown, error)
}

var _ services.PortfolioServicer = (*mockPortfolioService)(nil)

func (m *mockPortfolioService) CreatePortfolio(userID, name, description, currencyID string) (*models.Portfolio, error) {
	if m.createPortfolioFn != nil {
		return m.createPortfolioFn(userID, name, description, currencyID)
	}
	return &models.Portfolio{}, nil
}

func (m *mockPortfolioService) GetUserPortfolios(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Portfolio], error) {
	if m.getUserPortfoliosFn != nil {
		return m.getUserPortfoliosFn(userID, page)
	}
	return &pagination.PageResponse[models.Portfolio]{}, nil
}

func (m *mockPortfolioService) GetPortfolioByID(userID, portfolioID string) (*models.Portfolio, error) {
	if m.getPortfolioByIDFn != nil {
		return m.getPortfolioByIDFn(userID, portfolioID)
	}
	return &models.Portfolio{}, nil
}

func (m *mockPortfolioService) UpdatePortfolio(userID, portfolioID string, name, description *string, currencyID *string) (*models.Portfolio, error) {
	if m.updatePortfolioFn != nil {
		return m.updatePortfolioFn(userID, portfolioID, name, description, currencyID)
	}
	return &models.Portfolio{}, nil
}

func (m *mockPortfolioService) DeletePortfolio(userID, portfolioID string) error {
	if m.deletePortfolioFn != nil {
		return m.deletePortfolioFn(userID, portfolioID)
	}
	return nil
}

func (m *mockPortfolioService) AddHolding(userID, portfolioID, securityID string, quantity float64) (*models.PortfolioHolding, error) {
	if m.addHoldingFn != nil {
		return m.addHoldingFn(userID, portfolioID, securityID, quantity)
	}
	return &models.PortfolioHolding{}, nil
}

func (m *mockPortfolioService) UpdateHolding(userID, portfolioID, holdingID string, quantity float64) (*models.PortfolioHolding, error) {
	if m.updateHoldingFn != nil {
		return m.updateHoldingFn(userID, portfolioID, holdingID, quantity)
	}
	return &models.PortfolioHolding{}, nil
}

func (m *mockPortfolioService) RemoveHolding(userID, portfolioID, holdingID string) error {
	if m.removeHoldingFn != nil {
		return m.removeHoldingFn(userID, portfolioID, holdingID)
	}
	return nil
}

func (m *mockPortfolioService) ListHoldings(userID, portfolioID string) ([]models.PortfolioHolding, error) {
	if m.listHoldingsFn != nil {
		return m.listHoldingsFn(userID, portfolioID)
	}
	return nil, nil
}

func (m *mockPortfolioService) Valuation(userID, portfolioID string) (*services.PortfolioValuation, error) {
	if m.valuationFn != nil {
		return m.valuationFn(userID, portfolioID)
	}
	return &services.PortfolioValuation{}, nil
}

func (m *mockPortfolioService) BreakdownBy(userID, portfolioID string, dimension services.BreakdownDimension) (*services.Breakdown, error) {
	if m.breakdownByFn != nil {
		return m.breakdownByFn(userID, portfolioID, dimension)
	}
	return &services.Breakdown{}, nil
}

func setupPortfolioRouter(portfolioSvc services.PortfolioServicer, currencySvc services.CurrencyServicer) *gin.Engine {
	handler := NewPortfolioHandler(portfolioSvc, currencySvc)
	r := gin.New()
	r.Use(injectUserID(testUserID))
	r.POST("/portfolios", handler.Create)
	r.GET("/portfolios/:id", handler.Get)
	r.POST("/portfolios/:id/holdings", handler.AddHolding)
	r.GET("/portfolios/:id/valuation", handler.Valuation)
	r.GET("/portfolios/:id/breakdown", handler.Breakdown)
	return r
}

func TestPortfolioHandler_Create(t *testing.T) {
	t.Run("returns 201 with created portfolio", func(t *testing.T) {
		currencyID := "0194f6a0-0000-7000-8000-0000000000aa"
		portfolioSvc := &mockPortfolioService{
			createPortfolioFn: func(userID, name, description, gotCurrencyID string) (*models.Portfolio, error) {
				if userID != testUserID {
					t.Errorf("expected owner %s, got %s", testUserID, userID)
				}
				if gotCurrencyID != currencyID {
					t.Errorf("expected currency ID %s, got %s", currencyID, gotCurrencyID)
				}
				return &models.Portfolio{UserID: userID, Name: name, CurrencyID: gotCurrencyID}, nil
			},
		}
		currencySvc := &mockCurrencyService{
			getCurrencyByCodeFn: func(code string) (*models.Currency, error) {
				return &models.Currency{Base: models.Base{ID: currencyID}, Code: code}, nil
			},
		}
		r := setupPortfolioRouter(portfolioSvc, currencySvc)

		rec := doRequest(r, "POST", "/portfolios", `{"name":"Retirement","currency_code":"USD"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		portfolio := parseJSON(t, rec)["portfolio"].(map[string]interface{})
		if portfolio["name"] != "Retirement" {
			t.Errorf("expected name Retirement, got %v", portfolio["name"])
		}
	})

	t.Run("returns 400 on empty name", func(t *testing.T) {
		r := setupPortfolioRouter(&mockPortfolioService{}, &mockCurrencyService{})

		rec := doRequest(r, "POST", "/portfolios", `{"name":"","currency_code":"USD"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 404 for unknown currency", func(t *testing.T) {
		currencySvc := &mockCurrencyService{
			getCurrencyByCodeFn: func(string) (*models.Currency, error) {
				return nil, apperrors.ErrCurrencyNotFound
			},
		}
		r := setupPortfolioRouter(&mockPortfolioService{}, currencySvc)

		rec := doRequest(r, "POST", "/portfolios", `{"name":"Retirement","currency_code":"ZZZ"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestPortfolioHandler_Get(t *testing.T) {
	t.Run("returns 404 when not owned", func(t *testing.T) {
		portfolioSvc := &mockPortfolioService{
			getPortfolioByIDFn: func(string, string) (*models.Portfolio, error) {
				return nil, apperrors.ErrPortfolioNotFound
			},
		}
		r := setupPortfolioRouter(portfolioSvc, &mockCurrencyService{})

		rec := doRequest(r, "GET", "/portfolios/0194f6a0-0000-7000-8000-0000000000bb", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "PORTFOLIO_NOT_FOUND")
	})
}

func TestPortfolioHandler_AddHolding(t *testing.T) {
	t.Run("returns 201 with created holding", func(t *testing.T) {
		portfolioSvc := &mockPortfolioService{
			addHoldingFn: func(_, portfolioID, securityID string, quantity float64) (*models.PortfolioHolding, error) {
				return &models.PortfolioHolding{PortfolioID: portfolioID, SecurityID: securityID, Quantity: quantity}, nil
			},
		}
		r := setupPortfolioRouter(portfolioSvc, &mockCurrencyService{})

		rec := doRequest(r, "POST", "/portfolios/0194f6a0-0000-7000-8000-0000000000bb/holdings",
			`{"security_id":"0194f6a0-0000-7000-8000-0000000000cc","quantity":10.5}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		holding := parseJSON(t, rec)["holding"].(map[string]interface{})
		if holding["quantity"] != 10.5 {
			t.Errorf("expected quantity 10.5, got %v", holding["quantity"])
		}
	})

	t.Run("returns 400 on non-positive quantity", func(t *testing.T) {
		r := setupPortfolioRouter(&mockPortfolioService{}, &mockCurrencyService{})

		rec := doRequest(r, "POST", "/portfolios/0194f6a0-0000-7000-8000-0000000000bb/holdings",
			`{"security_id":"0194f6a0-0000-7000-8000-0000000000cc","quantity":0}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 409 on duplicate security", func(t *testing.T) {
		portfolioSvc := &mockPortfolioService{
			addHoldingFn: func(string, string, string, float64) (*models.PortfolioHolding, error) {
				return nil, apperrors.ErrDuplicateHolding
			},
		}
		r := setupPortfolioRouter(portfolioSvc, &mockCurrencyService{})

		rec := doRequest(r, "POST", "/portfolios/0194f6a0-0000-7000-8000-0000000000bb/holdings",
			`{"security_id":"0194f6a0-0000-7000-8000-0000000000cc","quantity":5}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_HOLDING")
	})
}

func TestPortfolioHandler_Valuation(t *testing.T) {
	t.Run("returns valuation body directly", func(t *testing.T) {
		portfolioSvc := &mockPortfolioService{
			valuationFn: func(_, portfolioID string) (*services.PortfolioValuation, error) {
				return &services.PortfolioValuation{
					PortfolioID: portfolioID,
					Currency:    "USD",
					TotalValue:  135225,
					Positions: []services.PositionValue{
						{Symbol: "AAPL", Quantity: 9, Value: 135225, PricedStatus: "priced"},
					},
				}, nil
			},
		}
		r := setupPortfolioRouter(portfolioSvc, &mockCurrencyService{})

		rec := doRequest(r, "GET", "/portfolios/0194f6a0-0000-7000-8000-0000000000bb/valuation", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["total_value"] != float64(135225) {
			t.Errorf("expected total_value 135225, got %v", result["total_value"])
		}
		positions := result["positions"].([]interface{})
		if len(positions) != 1 {
			t.Fatalf("expected 1 position, got %d", len(positions))
		}
	})
}

func TestPortfolioHandler_Breakdown(t *testing.T) {
	t.Run("defaults to sector axis", func(t *testing.T) {
		var gotDimension services.BreakdownDimension
		portfolioSvc := &mockPortfolioService{
			breakdownByFn: func(_, portfolioID string, dimension services.BreakdownDimension) (*services.Breakdown, error) {
				gotDimension = dimension
				return &services.Breakdown{PortfolioID: portfolioID}, nil
			},
		}
		r := setupPortfolioRouter(portfolioSvc, &mockCurrencyService{})

		rec := doRequest(r, "GET", "/portfolios/0194f6a0-0000-7000-8000-0000000000bb/breakdown", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotDimension != services.BreakdownBySector {
			t.Errorf("expected sector dimension, got %q", gotDimension)
		}
	})

	t.Run("passes the requested axis through", func(t *testing.T) {
		var gotDimension services.BreakdownDimension
		portfolioSvc := &mockPortfolioService{
			breakdownByFn: func(_, _ string, dimension services.BreakdownDimension) (*services.Breakdown, error) {
				gotDimension = dimension
				return &services.Breakdown{}, nil
			},
		}
		r := setupPortfolioRouter(portfolioSvc, &mockCurrencyService{})

		rec := doRequest(r, "GET", "/portfolios/0194f6a0-0000-7000-8000-0000000000bb/breakdown?by=region", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotDimension != services.BreakdownByRegion {
			t.Errorf("expected region dimension, got %q", gotDimension)
		}
	})

	t.Run("returns 400 from an unknown axis", func(t *testing.T) {
		portfolioSvc := &mockPortfolioService{
			breakdownByFn: func(_, _ string, dimension services.BreakdownDimension) (*services.Breakdown, error) {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Unknown breakdown dimension")
			},
		}
		r := setupPortfolioRouter(portfolioSvc, &mockCurrencyService{})

		rec := doRequest(r, "GET", "/portfolios/0194f6a0-0000-7000-8000-0000000000bb/breakdown?by=flavor", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}
