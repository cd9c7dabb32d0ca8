package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubValidator struct {
	res *service.TokenValidationResponse
	err error
}

func (s stubValidator) ValidateToken(context.Context, string) (*service.TokenValidationResponse, error) {
	return s.res, s.err
}

func status(t *testing.T, app *fiber.App, header string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode
}

func TestRequireAuthAndPrivilege(t *testing.T) {
	valid := stubValidator{res: &service.TokenValidationResponse{
		User:       model.UserResponse{ID: uuid.New(), Email: "kasir@tokoemas.id", FullName: "Kasir"},
		Role:       &model.Role{Code: model.RoleCashier},
		Privileges: []string{model.PrivSaleView},
	}}

	newApp := func(v TokenValidator, privilege string) *fiber.App {
		app := fiber.New()
		app.Get("/", RequireAuth(v), RequirePrivilege(privilege), func(c *fiber.Ctx) error {
			if c.Locals(LocalRoleCode) != model.RoleCashier {
				return c.SendStatus(fiber.StatusTeapot)
			}
			return c.SendStatus(fiber.StatusOK)
		})
		return app
	}

	tests := []struct {
		name      string
		validator TokenValidator
		privilege string
		header    string
		want      int
	}{
		{"missing header", valid, model.PrivSaleView, "", fiber.StatusUnauthorized},
		{"wrong scheme", valid, model.PrivSaleView, "Token abc", fiber.StatusUnauthorized},
		{"replaced session", stubValidator{err: service.ErrSessionReplaced}, model.PrivSaleView, "Bearer abc", fiber.StatusUnauthorized},
		{"granted", valid, model.PrivSaleView, "Bearer abc", fiber.StatusOK},
		{"forbidden", valid, model.PrivSaleVoid, "Bearer abc", fiber.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := status(t, newApp(tt.validator, tt.privilege), tt.header); got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRequestLoggerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	app := fiber.New()
	app.Use(RequestLogger(zap.New(core)))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/missing", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNotFound) })
	app.Get("/boom", func(c *fiber.Ctx) error {
		c.Locals(LocalError, errors.New("disk full"))
		return c.SendStatus(fiber.StatusInternalServerError)
	})

	for _, path := range []string{"/ok", "/missing", "/boom"} {
		if _, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1); err != nil {
			t.Fatal(err)
		}
	}

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("entries = %d", len(entries))
	}
	want := []zapcore.Level{zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, e := range entries {
		if e.Level != want[i] {
			t.Errorf("%s logged at %s, want %s", e.ContextMap()["path"], e.Level, want[i])
		}
	}
	if entries[2].ContextMap()["error"] != "disk full" {
		t.Errorf("error field = %v", entries[2].ContextMap()["error"])
	}
}
