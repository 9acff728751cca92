package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Adagu69/calendario-medico-sub000/config"
	"github.com/Adagu69/calendario-medico-sub000/internal/auth/services"
	"github.com/Adagu69/calendario-medico-sub000/pkg/logger"
	"github.com/Adagu69/calendario-medico-sub000/pkg/utils"
)

type AuthController struct {
	Service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{Service: service}
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Login autentica por username o email y devuelve {user, token, expiresIn}.
func (ac *AuthController) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondError(c, http.StatusBadRequest, "Payload inválido")
	}

	var errs []utils.FieldError
	if req.Identifier == "" {
		errs = append(errs, utils.FieldError{Field: "identifier", Message: "es obligatorio"})
	}
	if req.Password == "" {
		errs = append(errs, utils.FieldError{Field: "password", Message: "es obligatorio"})
	}
	if len(errs) > 0 {
		return utils.RespondValidation(c, errs)
	}

	user, err := ac.Service.Authenticate(req.Identifier, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return utils.RespondError(c, http.StatusUnauthorized, "Usuario o contraseña incorrectos")
		}
		logger.Log().WithError(err).Error("fallo autenticando usuario")
		return utils.RespondError(c, http.StatusInternalServerError, "Error interno")
	}

	cfg := config.LoadConfig()
	expiresIn := time.Duration(cfg.JWTExpiresHrs) * time.Hour
	token, err := utils.GenerateJWTToken(
		user.ID, user.Email, user.Role, user.SectionID, user.FullName,
		time.Now().Add(expiresIn))
	if err != nil {
		logger.Log().WithError(err).Error("fallo generando token")
		return utils.RespondError(c, http.StatusInternalServerError, "No se pudo generar el token")
	}

	return utils.RespondData(c, http.StatusOK, map[string]interface{}{
		"user":      user,
		"token":     token,
		"expiresIn": int(expiresIn.Seconds()),
	})
}
