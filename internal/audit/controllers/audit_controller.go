package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Adagu69/calendario-medico-sub000/internal/audit/services"
	"github.com/Adagu69/calendario-medico-sub000/pkg/logger"
	"github.com/Adagu69/calendario-medico-sub000/pkg/utils"
)

type AuditController struct {
	Service *services.AuditService
}

func NewAuditController(service *services.AuditService) *AuditController {
	return &AuditController{Service: service}
}

func (ac *AuditController) ListHandler(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return utils.RespondError(c, http.StatusBadRequest, "limit debe ser numérico")
		}
		limit = n
	}
	entries, err := ac.Service.List(limit)
	if err != nil {
		logger.Log().WithError(err).Error("listando auditoría")
		return utils.RespondError(c, http.StatusInternalServerError, "Error interno del servidor")
	}
	return utils.RespondData(c, http.StatusOK, entries)
}
