package middleware

import (
	"encoding/base64"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func basicAuthHeader(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func newProtectedApp(creds AdminCredentials) *fiber.App {
	app := fiber.New()
	app.Get("/admin/ping", RequireAdmin(creds), func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})
	return app
}

func TestRequireAdmin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	app := newProtectedApp(AdminCredentials{User: "ops", PasswordHash: string(hash)})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid credentials", basicAuthHeader("ops", "s3cret"), fiber.StatusOK},
		{"wrong password", basicAuthHeader("ops", "nope"), fiber.StatusUnauthorized},
		{"wrong user", basicAuthHeader("root", "s3cret"), fiber.StatusUnauthorized},
		{"missing header", "", fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin/ping", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRequireAdminWithoutHashIsLocked(t *testing.T) {
	app := newProtectedApp(AdminCredentials{User: "admin"})

	req := httptest.NewRequest("GET", "/admin/ping", nil)
	req.Header.Set(fiber.HeaderAuthorization, basicAuthHeader("admin", ""))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderWWWAuthenticate), "CreatorHub Admin")
}

func TestRateLimit(t *testing.T) {
	app := fiber.New()
	app.Get("/limited", RateLimit(nil, 2, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/limited", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/limited", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}
