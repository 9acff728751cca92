package utils

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Respuestas con el sobre estándar {success, data?, message?, error?, errors?}.

func RespondData(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

func RespondMessage(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]interface{}{
		"success": true,
		"message": message,
	})
}

func RespondError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// RespondValidation devuelve 400 con la lista de errores por campo.
func RespondValidation(c echo.Context, errs []FieldError) error {
	return c.JSON(http.StatusBadRequest, map[string]interface{}{
		"success": false,
		"message": "Datos inválidos",
		"errors":  errs,
	})
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
