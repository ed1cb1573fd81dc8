package middleware

import (
	"strings"

	"crm-service/pkg/apierror"
	"crm-service/pkg/jwtutil"
	"crm-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware verifies the JWT bearer token and stores the caller's
// identity in the context. Enabled per deployment via AUTH_ENABLED.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		tokenString := c.Request().Header.Get("Authorization")
		if tokenString == "" {
			log.Warn("Missing authorization token")
			return apierror.Unauthorized("Authentication required")
		}

		// Remove "Bearer " prefix if present
		if len(tokenString) > 7 && strings.ToUpper(tokenString[0:7]) == "BEARER " {
			tokenString = tokenString[7:]
		}

		claims, err := jwtutil.ValidateToken(tokenString)
		if err != nil {
			log.Warn("Invalid token", zap.Error(err))
			return apierror.Unauthorized("Invalid token")
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)

		log = log.With(
			zap.Uint("user_id", claims.UserID),
			zap.String("email", claims.Email),
		)
		if claims.TenantID != nil {
			c.Set("tenant_id", *claims.TenantID)
			log = log.With(zap.Uint("tenant_id", *claims.TenantID))
		}
		c.Set("logger", log)

		return next(c)
	}
}
