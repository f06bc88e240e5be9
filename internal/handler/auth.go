package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/unionhall/outreach-engine/internal/domain"
)

const accountLocalsKey = "account"

// AccountResolver looks up the account behind an API token.
type AccountResolver interface {
	GetByAPIToken(ctx context.Context, token string) (*domain.Account, error)
}

// RequireAuth authenticates requests with a bearer API token and stashes
// the resolved account in the request locals. A missing or unknown token
// ends the request with 401 before any handler runs.
func RequireAuth(accounts AccountResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return fmt.Errorf("%w: missing bearer token", domain.ErrUnauthenticated)
		}

		account, err := accounts.GetByAPIToken(c.Context(), token)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: invalid api token", domain.ErrUnauthenticated)
			}
			return err
		}

		c.Locals(accountLocalsKey, account)
		return c.Next()
	}
}

// AccountFromCtx returns the authenticated account set by RequireAuth.
func AccountFromCtx(c *fiber.Ctx) (*domain.Account, error) {
	account, ok := c.Locals(accountLocalsKey).(*domain.Account)
	if !ok || account == nil {
		return nil, fmt.Errorf("%w: missing authentication", domain.ErrUnauthenticated)
	}
	return account, nil
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
