package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Evgen-Mutagen/atm-inventory/internal/core"
	"github.com/Evgen-Mutagen/atm-inventory/internal/model"
	"github.com/Evgen-Mutagen/atm-inventory/internal/service"
)

const goodToken = "good-token"

type stubAuthService struct {
	registerFn func(ctx context.Context, username, password string) (*model.User, error)
	loginFn    func(ctx context.Context, username, password string) (*model.User, string, error)
}

func (s *stubAuthService) Register(ctx context.Context, username, password string) (*model.User, error) {
	return s.registerFn(ctx, username, password)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*model.User, string, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) ValidateToken(token string) (int64, error) {
	if token != goodToken {
		return 0, errors.New("bad token")
	}
	return 7, nil
}

func (s *stubAuthService) EnsureUser(context.Context, string, string) error { return nil }

type stubInventory struct {
	addFn      func(ctx context.Context, input core.ProductInput) (*model.Product, error)
	updateFn   func(ctx context.Context, id int64, input core.ProductInput) (*model.Product, error)
	deleteFn   func(ctx context.Context, id int64) error
	getFn      func(ctx context.Context, id int64) (*model.Product, error)
	listFn     func(ctx context.Context) ([]*model.Product, error)
	sellFn     func(ctx context.Context, productID int64, quantity int) (*model.Sale, error)
	lowStockFn func(ctx context.Context, threshold int) ([]*model.Product, error)
}

func (s *stubInventory) AddProduct(ctx context.Context, input core.ProductInput) (*model.Product, error) {
	return s.addFn(ctx, input)
}

func (s *stubInventory) UpdateProduct(ctx context.Context, id int64, input core.ProductInput) (*model.Product, error) {
	return s.updateFn(ctx, id, input)
}

func (s *stubInventory) DeleteProduct(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

func (s *stubInventory) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	return s.getFn(ctx, id)
}

func (s *stubInventory) ListProducts(ctx context.Context) ([]*model.Product, error) {
	return s.listFn(ctx)
}

func (s *stubInventory) Sell(ctx context.Context, productID int64, quantity int) (*model.Sale, error) {
	return s.sellFn(ctx, productID, quantity)
}

func (s *stubInventory) LowStock(ctx context.Context, threshold int) ([]*model.Product, error) {
	return s.lowStockFn(ctx, threshold)
}

type stubReports struct {
	salesFn    func(ctx context.Context) (*model.BarChart, error)
	lowStockFn func(ctx context.Context, threshold int) (*model.PieChart, error)
}

func (s *stubReports) SalesReport(ctx context.Context) (*model.BarChart, error) {
	return s.salesFn(ctx)
}

func (s *stubReports) LowStockReport(ctx context.Context, threshold int) (*model.PieChart, error) {
	return s.lowStockFn(ctx, threshold)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type fixture struct {
	auth      *stubAuthService
	inventory *stubInventory
	reports   *stubReports
	db        stubPinger
}

func (f *fixture) do(t *testing.T, method, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	router := NewRouter(Services{Auth: f.auth, Inventory: f.inventory, Reports: f.reports}, f.db, zap.NewNop())

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+goodToken)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestRegister(t *testing.T) {
	f := &fixture{auth: &stubAuthService{
		registerFn: func(_ context.Context, username, password string) (*model.User, error) {
			switch username {
			case "taken":
				return nil, service.ErrUserAlreadyExists
			case "":
				return nil, service.ErrEmptyCredentials
			}
			return &model.User{ID: 1, Username: username}, nil
		},
	}}

	rec := f.do(t, http.MethodPost, "/api/user/register", `{"username":"alice","password":"pw"}`, false)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "User registered successfully. Please login.", decode(t, rec)["message"])

	rec = f.do(t, http.MethodPost, "/api/user/register", `{"username":"taken","password":"pw"}`, false)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Username already exists", decode(t, rec)["error"])

	rec = f.do(t, http.MethodPost, "/api/user/register", `{"username":"","password":""}`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/user/register", `not-json`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin(t *testing.T) {
	f := &fixture{auth: &stubAuthService{
		loginFn: func(_ context.Context, username, password string) (*model.User, string, error) {
			if username == "alice" && password == "pw" {
				return &model.User{ID: 1, Username: "alice"}, goodToken, nil
			}
			return nil, "", service.ErrInvalidCredentials
		},
	}}

	rec := f.do(t, http.MethodPost, "/api/user/login", `{"username":"alice","password":"pw"}`, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, goodToken, decode(t, rec)["token"])

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "jwt", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	rec = f.do(t, http.MethodPost, "/api/user/login", `{"username":"alice","password":"nope"}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", decode(t, rec)["error"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := &fixture{auth: &stubAuthService{}}

	rec := f.do(t, http.MethodGet, "/api/products", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	router := NewRouter(Services{Auth: f.auth}, f.db, zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/api/reports/sales", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTokenCookieIsAccepted(t *testing.T) {
	f := &fixture{
		auth: &stubAuthService{},
		inventory: &stubInventory{listFn: func(context.Context) ([]*model.Product, error) {
			return nil, nil
		}},
	}
	router := NewRouter(Services{Auth: f.auth, Inventory: f.inventory}, f.db, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: goodToken})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestProductCRUD(t *testing.T) {
	pen := &model.Product{ID: 3, Name: "Pen", Quantity: 40, Price: decimal.RequireFromString("1.25")}
	f := &fixture{
		auth: &stubAuthService{},
		inventory: &stubInventory{
			addFn: func(_ context.Context, input core.ProductInput) (*model.Product, error) {
				if input.Quantity != "40" {
					return nil, &service.ValidationError{Problems: []string{"quantity must be a whole non-negative number"}}
				}
				return pen, nil
			},
			getFn: func(_ context.Context, id int64) (*model.Product, error) {
				if id != pen.ID {
					return nil, service.ErrProductNotFound
				}
				return pen, nil
			},
			updateFn: func(_ context.Context, id int64, input core.ProductInput) (*model.Product, error) {
				return &model.Product{ID: id, Name: input.Name}, nil
			},
			deleteFn: func(_ context.Context, id int64) error {
				if id != pen.ID {
					return service.ErrProductNotFound
				}
				return nil
			},
		},
	}

	rec := f.do(t, http.MethodPost, "/api/products", `{"name":"Pen","quantity":"40","price":"1.25"}`, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Pen", body["name"])
	assert.Equal(t, "1.25", body["price"])

	rec = f.do(t, http.MethodPost, "/api/products", `{"name":"Pen","quantity":"many","price":"1"}`, true)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "quantity must be a whole non-negative number", decode(t, rec)["error"])

	rec = f.do(t, http.MethodGet, "/api/products/3", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/products/99", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/products/abc", "", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPut, "/api/products/3", `{"name":"Blue pen","quantity":"1","price":"1"}`, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Blue pen", decode(t, rec)["name"])

	rec = f.do(t, http.MethodDelete, "/api/products/3", "", true)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/products/99", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSell(t *testing.T) {
	f := &fixture{
		auth: &stubAuthService{},
		inventory: &stubInventory{
			sellFn: func(_ context.Context, productID int64, quantity int) (*model.Sale, error) {
				switch {
				case quantity <= 0 || quantity > service.MaxQuantity:
					return nil, service.ErrInvalidQuantity
				case quantity > 10:
					return nil, service.ErrInsufficientStock
				}
				return &model.Sale{ID: 1, ProductID: productID, QuantitySold: quantity}, nil
			},
		},
	}

	rec := f.do(t, http.MethodPost, "/api/products/3/sell", `{"quantity":2}`, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.EqualValues(t, 2, decode(t, rec)["quantity_sold"])

	rec = f.do(t, http.MethodPost, "/api/products/3/sell", `{"quantity":11}`, true)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/products/3/sell", `{"quantity":0}`, true)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/products/3/sell", `{"quantity":3000000000}`, true)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Quantity to sell must be between 1 and 2147483647", decode(t, rec)["error"])
}

func TestLowStockPassesThreshold(t *testing.T) {
	var got int
	f := &fixture{
		auth: &stubAuthService{},
		inventory: &stubInventory{
			lowStockFn: func(_ context.Context, threshold int) ([]*model.Product, error) {
				got = threshold
				return []*model.Product{{ID: 1, Name: "A", Quantity: 2}}, nil
			},
		},
	}

	rec := f.do(t, http.MethodGet, "/api/products/low-stock?threshold=5", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, got)

	f.do(t, http.MethodGet, "/api/products/low-stock", "", true)
	assert.Equal(t, 0, got)
}

func TestReports(t *testing.T) {
	empty := true
	f := &fixture{
		auth: &stubAuthService{},
		reports: &stubReports{
			salesFn: func(context.Context) (*model.BarChart, error) {
				if empty {
					return nil, service.ErrNoSalesData
				}
				return &model.BarChart{Title: "Sales Report", Bars: []model.Bar{{Label: "Pen", Value: 5}}}, nil
			},
			lowStockFn: func(context.Context, int) (*model.PieChart, error) {
				if empty {
					return nil, service.ErrStockSufficient
				}
				return nil, errors.New("boom")
			},
		},
	}

	rec := f.do(t, http.MethodGet, "/api/reports/sales", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "No sales data.", decode(t, rec)["message"])

	rec = f.do(t, http.MethodGet, "/api/reports/low-stock", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "All stock levels are sufficient.", decode(t, rec)["message"])

	empty = false
	rec = f.do(t, http.MethodGet, "/api/reports/sales", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Sales Report", decode(t, rec)["title"])

	rec = f.do(t, http.MethodGet, "/api/reports/low-stock", "", true)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealth(t *testing.T) {
	f := &fixture{auth: &stubAuthService{}}
	rec := f.do(t, http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/health/ready", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)

	f.db = stubPinger{err: errors.New("down")}
	rec = f.do(t, http.MethodGet, "/health/ready", "", false)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = f.do(t, http.MethodGet, "/metrics", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "inventory_sales_recorded_total")
}
