package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	auditServices "github.com/Adagu69/calendario-medico-sub000/internal/audit/services"
	"github.com/Adagu69/calendario-medico-sub000/internal/catalogo/services"
	"github.com/Adagu69/calendario-medico-sub000/internal/common/middlewares"
	"github.com/Adagu69/calendario-medico-sub000/pkg/logger"
	"github.com/Adagu69/calendario-medico-sub000/pkg/refcache"
	"github.com/Adagu69/calendario-medico-sub000/pkg/utils"
)

const cacheKeySections = "sections"

type SectionController struct {
	Service *services.SectionService
	Cache   *refcache.Cache
	Audit   *auditServices.AuditService
}

func NewSectionController(service *services.SectionService, cache *refcache.Cache, audit *auditServices.AuditService) *SectionController {
	return &SectionController{Service: service, Cache: cache, Audit: audit}
}

func (sc *SectionController) ListHandler(c echo.Context) error {
	includeInactive := c.QueryParam("include_inactive") == "true"
	if includeInactive {
		// Solo la vista activa pasa por cache; la vista completa es de administración.
		sections, err := sc.Service.List(true)
		if err != nil {
			return internalError(c, err, "listando secciones")
		}
		return utils.RespondData(c, http.StatusOK, sections)
	}

	sections, err := sc.Cache.Get(cacheKeySections, func() (interface{}, error) {
		return sc.Service.List(false)
	})
	if err != nil {
		return internalError(c, err, "listando secciones")
	}
	return utils.RespondData(c, http.StatusOK, sections)
}

func (sc *SectionController) GetHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}
	section, err := sc.Service.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusNotFound, "Sección no encontrada")
		}
		return internalError(c, err, "consultando sección")
	}
	return utils.RespondData(c, http.StatusOK, section)
}

type sectionRequest struct {
	Name     string `json:"name"`
	IsActive *bool  `json:"is_active"`
}

func (sc *SectionController) CreateHandler(c echo.Context) error {
	var req sectionRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondError(c, http.StatusBadRequest, "Payload inválido")
	}
	if req.Name == "" {
		return utils.RespondValidation(c, []utils.FieldError{{Field: "name", Message: "es obligatorio"}})
	}

	section, err := sc.Service.Create(req.Name)
	if err != nil {
		if errors.Is(err, services.ErrDuplicate) {
			return utils.RespondError(c, http.StatusConflict, "Ya existe una sección con ese nombre")
		}
		return internalError(c, err, "creando sección")
	}

	sc.Cache.Invalidate(cacheKeySections)
	if claims, ok := middlewares.GetClaims(c); ok {
		sc.Audit.Record(claims.UserID, "create", "section", section.ID, section.Name)
	}
	return utils.RespondData(c, http.StatusCreated, section)
}

func (sc *SectionController) UpdateHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}
	var req sectionRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondError(c, http.StatusBadRequest, "Payload inválido")
	}
	if req.Name == "" {
		return utils.RespondValidation(c, []utils.FieldError{{Field: "name", Message: "es obligatorio"}})
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	section, err := sc.Service.Update(id, req.Name, isActive)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusNotFound, "Sección no encontrada")
		}
		if errors.Is(err, services.ErrDuplicate) {
			return utils.RespondError(c, http.StatusConflict, "Ya existe una sección con ese nombre")
		}
		return internalError(c, err, "actualizando sección")
	}

	sc.Cache.Invalidate(cacheKeySections)
	if claims, ok := middlewares.GetClaims(c); ok {
		sc.Audit.Record(claims.UserID, "update", "section", section.ID, section.Name)
	}
	return utils.RespondData(c, http.StatusOK, section)
}

func (sc *SectionController) DeleteHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}

	if err := sc.Service.SoftDelete(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusNotFound, "Sección no encontrada")
		}
		if errors.Is(err, services.ErrInUse) {
			return utils.RespondError(c, http.StatusBadRequest, err.Error())
		}
		return internalError(c, err, "eliminando sección")
	}

	sc.Cache.Invalidate(cacheKeySections)
	if claims, ok := middlewares.GetClaims(c); ok {
		sc.Audit.Record(claims.UserID, "delete", "section", id, "")
	}
	return utils.RespondMessage(c, http.StatusOK, "Sección desactivada")
}

func pathID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, errors.New("id inválido")
	}
	return id, nil
}

func internalError(c echo.Context, err error, during string) error {
	logger.Log().WithError(err).Error("error " + during)
	return utils.RespondError(c, http.StatusInternalServerError, "Error interno")
}
