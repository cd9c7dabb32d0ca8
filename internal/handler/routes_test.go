package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-jewelry-pos/internal/app"
	"go-jewelry-pos/internal/config"
	"go-jewelry-pos/internal/handler"
	"go-jewelry-pos/internal/model"

	"github.com/gofiber/fiber/v2"
)

const (
	ownerEmail    = "owner@tokoemas.id"
	ownerPassword = "rahasia123"
)

type server struct {
	t   *testing.T
	app *app.App
	web *fiber.App
}

func newServer(t *testing.T) *server {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := &config.Config{
		Server:    config.ServerConfig{Port: "0", AppName: "test"},
		Database:  config.DatabaseConfig{Driver: "sqlite", URL: fmt.Sprintf("file:%s?mode=memory&cache=shared", name)},
		JWT:       config.JWTConfig{Secret: "test-secret", TTLHours: 1, IdleTimeout: 5 * time.Minute},
		Cache:     config.CacheConfig{TodayTTL: time.Minute, HistoryTTL: time.Hour},
		Scheduler: config.SchedulerConfig{SnapshotCron: "55 23 * * *", Timezone: "UTC"},
		Shop:      config.ShopConfig{Name: "Toko Emas Sinar"},
		Seed:      config.SeedConfig{OwnerEmail: ownerEmail, OwnerPassword: ownerPassword, OwnerName: "Pemilik"},
	}

	a, err := app.New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	t.Cleanup(func() { a.Close(context.Background()) })

	svc := a.Services
	web := fiber.New()
	handler.RegisterRoutes(web, handler.Handlers{
		Auth:        handler.NewAuthHandler(svc.Auth),
		User:        handler.NewUserHandler(svc.User),
		Role:        handler.NewRoleHandler(svc.User),
		Dashboard:   handler.NewDashboardHandler(svc.Dashboard),
		Item:        handler.NewItemHandler(svc.Item),
		Stock:       handler.NewStockHandler(svc.Stock),
		Sale:        handler.NewSaleHandler(svc.Sale),
		Buyback:     handler.NewBuybackHandler(svc.Buyback),
		Maintenance: handler.NewMaintenanceHandler(svc.Maintenance, svc.Stock.Today),
		Promo:       handler.NewPromoHandler(svc.Promo),
	}, svc.Auth)

	return &server{t: t, app: a, web: web}
}

// do sends a JSON request and decodes a JSON response into out when given.
func (s *server) do(method, path, token string, body any, out any) int {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.web.Test(req, -1)
	if err != nil {
		s.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			s.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (s *server) login(email, password string) string {
	s.t.Helper()
	var res struct {
		Token string `json:"token"`
	}
	if code := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": password}, &res); code != http.StatusOK {
		s.t.Fatalf("login %s: status %d", email, code)
	}
	return res.Token
}

func TestPublicAndUnauthenticated(t *testing.T) {
	s := newServer(t)

	if code := s.do(http.MethodGet, "/api/v1/healthz", "", nil, nil); code != http.StatusOK {
		t.Errorf("healthz = %d", code)
	}
	if code := s.do(http.MethodGet, "/api/v1/promo/screen", "", nil, nil); code != http.StatusOK {
		t.Errorf("promo screen = %d", code)
	}
	if code := s.do(http.MethodGet, "/api/v1/items", "", nil, nil); code != http.StatusUnauthorized {
		t.Errorf("items without token = %d", code)
	}
	if code := s.do(http.MethodGet, "/api/v1/items", "garbage", nil, nil); code != http.StatusUnauthorized {
		t.Errorf("items with bad token = %d", code)
	}
	if code := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": ownerEmail, "password": "nope"}, nil); code != http.StatusUnauthorized {
		t.Errorf("bad login = %d", code)
	}
}

func TestSaleLifecycle(t *testing.T) {
	s := newServer(t)
	token := s.login(ownerEmail, ownerPassword)

	item := map[string]any{"code": "ACC-01", "name": "Kalung Rantai", "category": "ACCESSORY", "price": 25000, "unit": "pcs", "initial_stock": 5}
	if code := s.do(http.MethodPost, "/api/v1/items", token, item, nil); code != http.StatusCreated {
		t.Fatalf("create item = %d", code)
	}
	if code := s.do(http.MethodPost, "/api/v1/items", token, item, nil); code != http.StatusConflict {
		t.Errorf("duplicate item = %d", code)
	}

	var created struct {
		Data model.Sale `json:"data"`
	}
	sale := map[string]any{"payment_method": "CASH", "items": []map[string]any{{"item_code": "ACC-01", "quantity": 2}}}
	if code := s.do(http.MethodPost, "/api/v1/sales/accessory", token, sale, &created); code != http.StatusCreated {
		t.Fatalf("create sale = %d", code)
	}
	if created.Data.Total != 50000 {
		t.Errorf("total = %d", created.Data.Total)
	}

	tooMany := map[string]any{"payment_method": "CASH", "items": []map[string]any{{"item_code": "ACC-01", "quantity": 10}}}
	if code := s.do(http.MethodPost, "/api/v1/sales/accessory", token, tooMany, nil); code != http.StatusConflict {
		t.Errorf("insufficient stock = %d", code)
	}
	unknown := map[string]any{"payment_method": "CASH", "items": []map[string]any{{"item_code": "NOPE", "quantity": 1}}}
	if code := s.do(http.MethodPost, "/api/v1/sales/accessory", token, unknown, nil); code != http.StatusNotFound {
		t.Errorf("unknown item = %d", code)
	}

	var view model.StockView
	if code := s.do(http.MethodGet, "/api/v1/stock/view", token, nil, &view); code != http.StatusOK {
		t.Fatalf("stock view = %d", code)
	}
	if len(view.Lines) != 1 || view.Lines[0].Sold != 2 || view.Lines[0].Ending != 3 {
		t.Errorf("view = %+v", view.Lines)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales/"+created.Data.ID.String()+"/receipt", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := s.web.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	html, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(html), created.Data.Number) {
		t.Errorf("receipt = %d", resp.StatusCode)
	}

	voidPath := "/api/v1/sales/" + created.Data.ID.String() + "/void"
	if code := s.do(http.MethodPost, voidPath, token, map[string]string{"reason": "salah input"}, nil); code != http.StatusOK {
		t.Errorf("void = %d", code)
	}
	if code := s.do(http.MethodPost, voidPath, token, nil, nil); code != http.StatusConflict {
		t.Errorf("second void = %d", code)
	}
	if code := s.do(http.MethodGet, "/api/v1/sales/not-a-uuid", token, nil, nil); code != http.StatusBadRequest {
		t.Errorf("bad id = %d", code)
	}
}

func TestCashierPrivileges(t *testing.T) {
	s := newServer(t)
	ownerToken := s.login(ownerEmail, ownerPassword)

	role, err := s.app.Repos.Role.FindByCode(context.Background(), model.RoleCashier)
	if err != nil {
		t.Fatal(err)
	}
	user := map[string]any{"email": "kasir@tokoemas.id", "password": "kasir123", "full_name": "Kasir", "role_id": role.ID}
	if code := s.do(http.MethodPost, "/api/v1/users", ownerToken, user, nil); code != http.StatusCreated {
		t.Fatalf("create cashier = %d", code)
	}
	cashierToken := s.login("kasir@tokoemas.id", "kasir123")

	if code := s.do(http.MethodGet, "/api/v1/items", cashierToken, nil, nil); code != http.StatusOK {
		t.Errorf("cashier items = %d", code)
	}
	if code := s.do(http.MethodPost, "/api/v1/maintenance/purge", cashierToken, map[string]string{"before": "2026-01-01"}, nil); code != http.StatusForbidden {
		t.Errorf("cashier purge = %d", code)
	}
	if code := s.do(http.MethodPut, "/api/v1/buybacks/rates/K1", cashierToken, map[string]string{"percentage": "99"}, nil); code != http.StatusForbidden {
		t.Errorf("cashier rate update = %d", code)
	}
	if code := s.do(http.MethodGet, "/api/v1/users", cashierToken, nil, nil); code != http.StatusOK {
		t.Errorf("cashier list users = %d", code)
	}

	// logging out ends the session immediately
	if code := s.do(http.MethodPost, "/api/v1/auth/logout", cashierToken, nil, nil); code != http.StatusOK {
		t.Errorf("logout = %d", code)
	}
	if code := s.do(http.MethodGet, "/api/v1/items", cashierToken, nil, nil); code != http.StatusUnauthorized {
		t.Errorf("items after logout = %d", code)
	}
}

func TestBuybackEndpoints(t *testing.T) {
	s := newServer(t)
	token := s.login(ownerEmail, ownerPassword)

	quote := map[string]any{"purity": "24K", "weight": "2", "grade": "K1"}
	if code := s.do(http.MethodPost, "/api/v1/buybacks/quote", token, quote, nil); code != http.StatusNotFound {
		t.Errorf("quote without price = %d", code)
	}
	if code := s.do(http.MethodPost, "/api/v1/gold-prices", token, map[string]any{"purity": "24K", "price_per_gram": 1_000_000}, nil); code != http.StatusCreated && code != http.StatusOK {
		t.Fatalf("set gold price = %d", code)
	}

	var q struct {
		OfferPrice int64 `json:"offer_price"`
	}
	if code := s.do(http.MethodPost, "/api/v1/buybacks/quote", token, quote, &q); code != http.StatusOK {
		t.Fatalf("quote = %d", code)
	}
	if q.OfferPrice != 1_900_000 {
		t.Errorf("offer = %d", q.OfferPrice)
	}
	if code := s.do(http.MethodPost, "/api/v1/gold-prices/refresh", token, nil, nil); code != http.StatusServiceUnavailable {
		t.Errorf("refresh without feed = %d", code)
	}
}
