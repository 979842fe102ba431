package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/suraksha/efir-anchor/internal/domain"
	"github.com/suraksha/efir-anchor/internal/service"
)

var tracer = otel.Tracer("auth")

type AuthMiddleware struct {
	auth *service.AuthService
}

func NewAuthMiddleware(auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		auth: auth,
	}
}

// IdentifyAccessLevel resolves the caller's session token into an access
// level on the request context. A missing or invalid token is not an error
// here; the caller simply stays unauthenticated and the read path redacts
// accordingly.
func (s *AuthMiddleware) IdentifyAccessLevel(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.IdentifyAccessLevel")
		defer span.End()

		authHeader := c.Request().Header.Get("authorization")

		if authHeader != "" {
			split := strings.Split(authHeader, " ")
			if len(split) != 2 {
				span.RecordError(fmt.Errorf("invalid authentication header"))
				goto skipCheckAuthorization
			}

			authType, token := split[0], split[1]
			if authType != "Bearer" {
				span.RecordError(fmt.Errorf("only Bearer is acceptable"))
				goto skipCheckAuthorization
			}

			{
				badgeID, level, err := s.auth.ParseToken(token)
				if err != nil {
					span.RecordError(errors.Wrap(err, "AuthMiddleware.IdentifyAccessLevel: token rejected"))
					goto skipCheckAuthorization
				}

				ctx = context.WithValue(ctx, domain.AccessLevelCtxKey, level)
				ctx = context.WithValue(ctx, domain.BadgeIDCtxKey, badgeID)
				span.SetAttributes(attribute.String("AccessLevel", level.String()))
			}
		}

	skipCheckAuthorization:
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
