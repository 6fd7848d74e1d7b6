package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/billing-service/internal/domain"
	apperrors "github.com/spec-kit/billing-service/pkg/util/errorutil"
)

const sessionKey = "auth_session"

// SessionParser turns a raw token into a session.
type SessionParser interface {
	ParseToken(token string) (*domain.Session, error)
}

// Authenticate resolves an Authorization header value to a session. It knows
// nothing about the HTTP framework.
func Authenticate(tokens SessionParser, authHeader string) (*domain.Session, error) {
	if authHeader == "" {
		return nil, apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return nil, apperrors.NewUnauthorized("invalid authorization header")
	}

	session, err := tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}
	return session, nil
}

// AuthMiddleware validates bearer tokens and stores the session on the request.
type AuthMiddleware struct {
	tokens SessionParser
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens SessionParser) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	session, err := Authenticate(m.tokens, c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}
	c.Locals(sessionKey, session)
	return c.Next()
}

// SessionFromContext retrieves the authenticated session.
func SessionFromContext(c *fiber.Ctx) (*domain.Session, bool) {
	val := c.Locals(sessionKey)
	if val == nil {
		return nil, false
	}
	session, ok := val.(*domain.Session)
	return session, ok
}
