package middlewares

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Adagu69/calendario-medico-sub000/pkg/utils"
)

type contextKey string

const ContextKeyClaims contextKey = "claims"

// JWTMiddleware valida el bearer token y guarda los claims en el contexto.
func JWTMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return utils.RespondError(c, http.StatusUnauthorized, "Authorization header missing")
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return utils.RespondError(c, http.StatusUnauthorized, "Invalid authorization header")
			}
			claims, err := utils.ValidateJWTToken(parts[1])
			if err != nil {
				return utils.RespondError(c, http.StatusUnauthorized, "Invalid token: "+err.Error())
			}
			c.Set(string(ContextKeyClaims), claims)
			return next(c)
		}
	}
}

// GetClaims recupera los claims dejados por JWTMiddleware.
func GetClaims(c echo.Context) (*utils.Claims, bool) {
	claims, ok := c.Get(string(ContextKeyClaims)).(*utils.Claims)
	return claims, ok && claims != nil
}
