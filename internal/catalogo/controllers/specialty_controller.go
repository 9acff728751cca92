package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	auditServices "github.com/Adagu69/calendario-medico-sub000/internal/audit/services"
	"github.com/Adagu69/calendario-medico-sub000/internal/catalogo/services"
	"github.com/Adagu69/calendario-medico-sub000/internal/common/middlewares"
	"github.com/Adagu69/calendario-medico-sub000/pkg/refcache"
	"github.com/Adagu69/calendario-medico-sub000/pkg/utils"
)

const cacheKeySpecialties = "specialties"

type SpecialtyController struct {
	Service *services.SpecialtyService
	Cache   *refcache.Cache
	Audit   *auditServices.AuditService
}

func NewSpecialtyController(service *services.SpecialtyService, cache *refcache.Cache, audit *auditServices.AuditService) *SpecialtyController {
	return &SpecialtyController{Service: service, Cache: cache, Audit: audit}
}

func (sc *SpecialtyController) ListHandler(c echo.Context) error {
	includeInactive := c.QueryParam("include_inactive") == "true"

	var sectionID *int
	if v := c.QueryParam("section_id"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return utils.RespondError(c, http.StatusBadRequest, "section_id debe ser un número")
		}
		sectionID = &n
	}

	// La lista filtrada o administrativa no pasa por cache.
	if includeInactive || sectionID != nil {
		specialties, err := sc.Service.List(sectionID, includeInactive)
		if err != nil {
			return internalError(c, err, "listando especialidades")
		}
		return utils.RespondData(c, http.StatusOK, specialties)
	}

	specialties, err := sc.Cache.Get(cacheKeySpecialties, func() (interface{}, error) {
		return sc.Service.List(nil, false)
	})
	if err != nil {
		return internalError(c, err, "listando especialidades")
	}
	return utils.RespondData(c, http.StatusOK, specialties)
}

func (sc *SpecialtyController) GetHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}
	specialty, err := sc.Service.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusNotFound, "Especialidad no encontrada")
		}
		return internalError(c, err, "consultando especialidad")
	}
	return utils.RespondData(c, http.StatusOK, specialty)
}

type specialtyRequest struct {
	Name      string `json:"name"`
	SectionID int    `json:"section_id"`
	IsActive  *bool  `json:"is_active"`
}

func (r specialtyRequest) validate() []utils.FieldError {
	var errs []utils.FieldError
	if r.Name == "" {
		errs = append(errs, utils.FieldError{Field: "name", Message: "es obligatorio"})
	}
	if r.SectionID <= 0 {
		errs = append(errs, utils.FieldError{Field: "section_id", Message: "es obligatorio"})
	}
	return errs
}

func (sc *SpecialtyController) CreateHandler(c echo.Context) error {
	var req specialtyRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondError(c, http.StatusBadRequest, "Payload inválido")
	}
	if errs := req.validate(); len(errs) > 0 {
		return utils.RespondValidation(c, errs)
	}

	specialty, err := sc.Service.Create(req.Name, req.SectionID)
	if err != nil {
		if errors.Is(err, services.ErrDuplicate) {
			return utils.RespondError(c, http.StatusConflict, "Ya existe esa especialidad en la sección")
		}
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusBadRequest, err.Error())
		}
		return internalError(c, err, "creando especialidad")
	}

	sc.Cache.Invalidate(cacheKeySpecialties)
	if claims, ok := middlewares.GetClaims(c); ok {
		sc.Audit.Record(claims.UserID, "create", "specialty", specialty.ID, specialty.Name)
	}
	return utils.RespondData(c, http.StatusCreated, specialty)
}

func (sc *SpecialtyController) UpdateHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}
	var req specialtyRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondError(c, http.StatusBadRequest, "Payload inválido")
	}
	if errs := req.validate(); len(errs) > 0 {
		return utils.RespondValidation(c, errs)
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	specialty, err := sc.Service.Update(id, req.Name, req.SectionID, isActive)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusNotFound, "Especialidad no encontrada")
		}
		if errors.Is(err, services.ErrDuplicate) {
			return utils.RespondError(c, http.StatusConflict, "Ya existe esa especialidad en la sección")
		}
		return internalError(c, err, "actualizando especialidad")
	}

	sc.Cache.Invalidate(cacheKeySpecialties)
	if claims, ok := middlewares.GetClaims(c); ok {
		sc.Audit.Record(claims.UserID, "update", "specialty", specialty.ID, specialty.Name)
	}
	return utils.RespondData(c, http.StatusOK, specialty)
}

func (sc *SpecialtyController) DeleteHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}

	if err := sc.Service.SoftDelete(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusNotFound, "Especialidad no encontrada")
		}
		if errors.Is(err, services.ErrInUse) {
			return utils.RespondError(c, http.StatusBadRequest, err.Error())
		}
		return internalError(c, err, "eliminando especialidad")
	}

	sc.Cache.Invalidate(cacheKeySpecialties)
	if claims, ok := middlewares.GetClaims(c); ok {
		sc.Audit.Record(claims.UserID, "delete", "specialty", id, "")
	}
	return utils.RespondMessage(c, http.StatusOK, "Especialidad desactivada")
}

// InvalidateCacheHandler limpia toda la cache de datos de referencia.
func (sc *SpecialtyController) InvalidateCacheHandler(c echo.Context) error {
	sc.Cache.Clear()
	return utils.RespondMessage(c, http.StatusOK, "Cache de referencia invalidada")
}
