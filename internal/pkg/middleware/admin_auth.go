package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"golang.org/x/crypto/bcrypt"

	"github.com/ManuelReschke/CreatorHub/internal/pkg/env"
)

const adminRealm = "CreatorHub Admin"

// AdminCredentials identifies the single operator account.
type AdminCredentials struct {
	User         string
	PasswordHash string // bcrypt
}

// LoadAdminCredentials reads ADMIN_USER and ADMIN_PASSWORD_HASH.
func LoadAdminCredentials() AdminCredentials {
	return AdminCredentials{
		User:         strings.TrimSpace(env.GetEnv("ADMIN_USER", "admin")),
		PasswordHash: strings.TrimSpace(env.GetEnv("ADMIN_PASSWORD_HASH", "")),
	}
}

// RequireAdmin guards operator routes with HTTP basic auth. Without a
// configured password hash every request is rejected.
func RequireAdmin(creds AdminCredentials) fiber.Handler {
	if creds.PasswordHash == "" {
		log.Warn("[Admin] ADMIN_PASSWORD_HASH not set, admin API is locked")
	}

	return basicauth.New(basicauth.Config{
		Realm: adminRealm,
		Authorizer: func(user, pass string) bool {
			return creds.authorize(user, pass)
		},
		Unauthorized: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderWWWAuthenticate, `basic realm="`+adminRealm+`"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "unauthorized",
				"message": "admin credentials required",
			})
		},
	})
}

func (a AdminCredentials) authorize(user, pass string) bool {
	if a.PasswordHash == "" || a.User == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(a.User)) == 1
	passOK := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(pass)) == nil
	return userOK && passOK
}
