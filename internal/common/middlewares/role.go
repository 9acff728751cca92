package middlewares

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Adagu69/calendario-medico-sub000/pkg/utils"
)

// Roles del sistema.
const (
	RoleAdmin       = "admin"
	RoleSectionHead = "jefe_servicio"
	RoleUser        = "usuario"
)

// RequireRole permite el paso solo a los roles indicados.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := GetClaims(c)
			if !ok {
				return utils.RespondError(c, http.StatusUnauthorized, "Missing or invalid JWT claims")
			}
			for _, r := range roles {
				if claims.Role == r {
					return next(c)
				}
			}
			return utils.RespondError(c, http.StatusForbidden, "No tiene permisos para esta operación")
		}
	}
}
