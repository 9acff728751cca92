package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	auditServices "github.com/Adagu69/calendario-medico-sub000/internal/audit/services"
	"github.com/Adagu69/calendario-medico-sub000/internal/common/middlewares"
	"github.com/Adagu69/calendario-medico-sub000/internal/personal/services"
	"github.com/Adagu69/calendario-medico-sub000/pkg/utils"
)

type DoctorController struct {
	Service *services.DoctorService
	Audit   *auditServices.AuditService
}

func NewDoctorController(service *services.DoctorService, audit *auditServices.AuditService) *DoctorController {
	return &DoctorController{Service: service, Audit: audit}
}

type doctorRequest struct {
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Profession     string `json:"profession"`
	License        string `json:"license"`
	SectionID      int    `json:"section_id"`
	SpecialtyIDs   []int  `json:"specialty_ids"`
	IsActive       *bool  `json:"is_active"`
}

func (r doctorRequest) validate() []utils.FieldError {
	var errs []utils.FieldError
	if r.DocumentNumber == "" {
		errs = append(errs, utils.FieldError{Field: "document_number", Message: "es obligatorio"})
	}
	if r.FirstName == "" {
		errs = append(errs, utils.FieldError{Field: "first_name", Message: "es obligatorio"})
	}
	if r.LastName == "" {
		errs = append(errs, utils.FieldError{Field: "last_name", Message: "es obligatorio"})
	}
	if r.License == "" {
		errs = append(errs, utils.FieldError{Field: "license", Message: "es obligatorio"})
	}
	if r.SectionID <= 0 {
		errs = append(errs, utils.FieldError{Field: "section_id", Message: "es obligatorio"})
	}
	return errs
}

func (r *doctorRequest) toInput() services.DoctorInput {
	docType := r.DocumentType
	if docType == "" {
		docType = "DNI"
	}
	profession := r.Profession
	if profession == "" {
		profession = "MEDICO"
	}
	return services.DoctorInput{
		DocumentType:   docType,
		DocumentNumber: r.DocumentNumber,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Profession:     profession,
		License:        r.License,
		SectionID:      r.SectionID,
		SpecialtyIDs:   r.SpecialtyIDs,
	}
}

// sectionAllowed limita al jefe_servicio a los doctores de su propia sección.
func sectionAllowed(c echo.Context, sectionID int) bool {
	claims, ok := middlewares.GetClaims(c)
	if !ok {
		return false
	}
	if claims.Role == middlewares.RoleAdmin {
		return true
	}
	return claims.SectionID == sectionID
}

func (dc *DoctorController) ListHandler(c echo.Context) error {
	var sectionID *int
	if v := c.QueryParam("section_id"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return utils.RespondError(c, http.StatusBadRequest, "section_id debe ser un número")
		}
		sectionID = &n
	}

	doctors, err := dc.Service.List(sectionID, c.QueryParam("include_inactive") == "true")
	if err != nil {
		return internalError(c, err, "listando doctores")
	}
	return utils.RespondData(c, http.StatusOK, doctors)
}

func (dc *DoctorController) GetHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}
	doctor, err := dc.Service.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusNotFound, "Doctor no encontrado")
		}
		return internalError(c, err, "consultando doctor")
	}
	return utils.RespondData(c, http.StatusOK, doctor)
}

func (dc *DoctorController) CreateHandler(c echo.Context) error {
	var req doctorRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondError(c, http.StatusBadRequest, "Payload inválido")
	}
	if errs := req.validate(); len(errs) > 0 {
		return utils.RespondValidation(c, errs)
	}
	if !sectionAllowed(c, req.SectionID) {
		return utils.RespondError(c, http.StatusForbidden, "Solo puede gestionar doctores de su propia sección")
	}

	doctor, err := dc.Service.Create(req.toInput())
	if err != nil {
		if errors.Is(err, services.ErrDuplicate) {
			return utils.RespondError(c, http.StatusConflict, "Ya existe un doctor con ese documento")
		}
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusBadRequest, err.Error())
		}
		return internalError(c, err, "creando doctor")
	}

	if claims, ok := middlewares.GetClaims(c); ok {
		dc.Audit.Record(claims.UserID, "create", "doctor", doctor.ID, doctor.LastName+", "+doctor.FirstName)
	}
	return utils.RespondData(c, http.StatusCreated, doctor)
}

func (dc *DoctorController) UpdateHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}
	var req doctorRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondError(c, http.StatusBadRequest, "Payload inválido")
	}
	if errs := req.validate(); len(errs) > 0 {
		return utils.RespondValidation(c, errs)
	}

	// La restricción de sección aplica tanto al destino como al registro actual.
	current, err := dc.Service.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusNotFound, "Doctor no encontrado")
		}
		return internalError(c, err, "consultando doctor")
	}
	if !sectionAllowed(c, current.SectionID) || !sectionAllowed(c, req.SectionID) {
		return utils.RespondError(c, http.StatusForbidden, "Solo puede gestionar doctores de su propia sección")
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	doctor, err := dc.Service.Update(id, req.toInput(), isActive)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusNotFound, "Doctor no encontrado")
		}
		if errors.Is(err, services.ErrDuplicate) {
			return utils.RespondError(c, http.StatusConflict, "Ya existe un doctor con ese documento")
		}
		return internalError(c, err, "actualizando doctor")
	}

	if claims, ok := middlewares.GetClaims(c); ok {
		dc.Audit.Record(claims.UserID, "update", "doctor", doctor.ID, doctor.LastName+", "+doctor.FirstName)
	}
	return utils.RespondData(c, http.StatusOK, doctor)
}

func (dc *DoctorController) DeleteHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}

	current, err := dc.Service.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusNotFound, "Doctor no encontrado")
		}
		return internalError(c, err, "consultando doctor")
	}
	if !sectionAllowed(c, current.SectionID) {
		return utils.RespondError(c, http.StatusForbidden, "Solo puede gestionar doctores de su propia sección")
	}

	if err := dc.Service.SoftDelete(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusNotFound, "Doctor no encontrado")
		}
		return internalError(c, err, "eliminando doctor")
	}

	if claims, ok := middlewares.GetClaims(c); ok {
		dc.Audit.Record(claims.UserID, "delete", "doctor", id, "")
	}
	return utils.RespondMessage(c, http.StatusOK, "Doctor desactivado")
}
