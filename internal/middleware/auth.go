package middleware

import (
	"strconv"

	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/config"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/dto"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/models"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/services"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	accountKey = "account"
	sessionKey = "session_id"
)

// SessionRequired accepts the session token from the session cookie or an
// Authorization: Bearer header. The token must verify and its session row
// must still be live; the resolved account is stored for handlers.
func SessionRequired(cfg *config.Config, authService *services.AuthService) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:  jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.SessionSecret)},
		TokenLookup: "cookie:" + cfg.SessionCookie + ",header:Authorization",
		AuthScheme:  "Bearer",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return unauthorized(c)
		},
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return unauthorized(c)
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return unauthorized(c)
			}

			sub, _ := claims["sub"].(string)
			accountID, err := strconv.ParseUint(sub, 10, 64)
			if err != nil {
				return unauthorized(c)
			}
			sid, _ := claims["sid"].(string)
			sessionID, err := uuid.Parse(sid)
			if err != nil {
				return unauthorized(c)
			}

			account, err := authService.ResolveSession(sessionID, uint(accountID))
			if err != nil {
				switch services.KindOf(err) {
				case services.KindAuthorization:
					return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: err.Error()})
				case services.KindAuth:
					return unauthorized(c)
				default:
					return err
				}
			}

			c.Locals(accountKey, account)
			c.Locals(sessionKey, sessionID)
			return c.Next()
		},
	})
}

// CurrentAccount returns the account resolved by SessionRequired, or nil on
// routes without it.
func CurrentAccount(c *fiber.Ctx) *models.Account {
	account, _ := c.Locals(accountKey).(*models.Account)
	return account
}

func CurrentSession(c *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals(sessionKey).(uuid.UUID)
	return id, ok
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: services.ErrSessionInvalid.Error(),
	})
}
