package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spybee/helpdesk/internal/domain"
	"github.com/spybee/helpdesk/internal/repository"
	apperrors "github.com/spybee/helpdesk/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated admin.
type Principal struct {
	Admin *domain.Admin
}

// AdminMiddleware validates bearer tokens and loads the admin account.
type AdminMiddleware struct {
	tokens *TokenManager
	admins repository.AdminRepository
}

// NewAdminMiddleware constructs middleware.
func NewAdminMiddleware(tokens *TokenManager, admins repository.AdminRepository) *AdminMiddleware {
	return &AdminMiddleware{tokens: tokens, admins: admins}
}

// Handle enforces authentication for dashboard routes.
func (m *AdminMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	admin, err := m.admins.GetByID(c.Context(), claims.AdminID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("admin not found")
		}
		return apperrors.MapError(err)
	}
	if !admin.Active {
		return apperrors.NewForbidden("admin account disabled")
	}

	c.Locals(principalKey, &Principal{Admin: admin})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated admin.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
