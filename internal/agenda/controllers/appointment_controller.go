package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Adagu69/calendario-medico-sub000/internal/agenda/services"
	auditServices "github.com/Adagu69/calendario-medico-sub000/internal/audit/services"
	"github.com/Adagu69/calendario-medico-sub000/internal/common/middlewares"
	"github.com/Adagu69/calendario-medico-sub000/pkg/utils"
)

type AppointmentController struct {
	Service *services.AppointmentService
	Audit   *auditServices.AuditService
}

func NewAppointmentController(service *services.AppointmentService, audit *auditServices.AuditService) *AppointmentController {
	return &AppointmentController{Service: service, Audit: audit}
}

type appointmentRequest struct {
	DoctorID    int    `json:"doctor_id"`
	OfficeID    int    `json:"office_id"`
	SlotLabel   string `json:"slot_label"`
	Date        string `json:"date"`
	PatientName string `json:"patient_name"`
	Status      string `json:"status"`
}

func (r appointmentRequest) validate() []utils.FieldError {
	var errs []utils.FieldError
	if r.DoctorID <= 0 {
		errs = append(errs, utils.FieldError{Field: "doctor_id", Message: "es obligatorio"})
	}
	if r.OfficeID <= 0 {
		errs = append(errs, utils.FieldError{Field: "office_id", Message: "es obligatorio"})
	}
	if r.SlotLabel == "" {
		errs = append(errs, utils.FieldError{Field: "slot_label", Message: "es obligatorio"})
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		errs = append(errs, utils.FieldError{Field: "date", Message: "debe tener formato YYYY-MM-DD"})
	}
	if r.PatientName == "" {
		errs = append(errs, utils.FieldError{Field: "patient_name", Message: "es obligatorio"})
	}
	return errs
}

func (ac *AppointmentController) ListHandler(c echo.Context) error {
	doctorID, err := optionalIntQuery(c, "doctor_id")
	if err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}
	appointments, err := ac.Service.List(doctorID, c.QueryParam("date"))
	if err != nil {
		return internalError(c, err, "listando citas")
	}
	return utils.RespondData(c, http.StatusOK, appointments)
}

func (ac *AppointmentController) GetHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}
	appointment, err := ac.Service.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusNotFound, "Cita no encontrada")
		}
		return internalError(c, err, "consultando cita")
	}
	return utils.RespondData(c, http.StatusOK, appointment)
}

func (ac *AppointmentController) CreateHandler(c echo.Context) error {
	var req appointmentRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondError(c, http.StatusBadRequest, "Payload inválido")
	}
	if errs := req.validate(); len(errs) > 0 {
		return utils.RespondValidation(c, errs)
	}

	claims, ok := middlewares.GetClaims(c)
	if !ok {
		return utils.RespondError(c, http.StatusUnauthorized, "Token inválido")
	}

	appointment, err := ac.Service.Create(services.AppointmentInput{
		DoctorID: req.DoctorID, OfficeID: req.OfficeID, SlotLabel: req.SlotLabel,
		Date: req.Date, PatientName: req.PatientName, Status: req.Status,
	}, claims.UserID)
	if err != nil {
		if errors.Is(err, services.ErrConflict) {
			return utils.RespondError(c, http.StatusConflict, err.Error())
		}
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusBadRequest, err.Error())
		}
		return internalError(c, err, "creando cita")
	}

	ac.Audit.Record(claims.UserID, "create", "appointment", appointment.ID, "")
	return utils.RespondData(c, http.StatusCreated, appointment)
}

func (ac *AppointmentController) UpdateHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}
	var req appointmentRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondError(c, http.StatusBadRequest, "Payload inválido")
	}
	if errs := req.validate(); len(errs) > 0 {
		return utils.RespondValidation(c, errs)
	}
	status := req.Status
	if status == "" {
		status = "programada"
	}

	appointment, err := ac.Service.Update(id, services.AppointmentInput{
		DoctorID: req.DoctorID, OfficeID: req.OfficeID, SlotLabel: req.SlotLabel,
		Date: req.Date, PatientName: req.PatientName, Status: status,
	})
	if err != nil {
		if errors.Is(err, services.ErrConflict) {
			return utils.RespondError(c, http.StatusConflict, err.Error())
		}
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusNotFound, "Cita no encontrada")
		}
		return internalError(c, err, "actualizando cita")
	}

	if claims, ok := middlewares.GetClaims(c); ok {
		ac.Audit.Record(claims.UserID, "update", "appointment", id, "")
	}
	return utils.RespondData(c, http.StatusOK, appointment)
}

// DeleteHandler cancela la cita (soft delete); deja de bloquear el turno.
func (ac *AppointmentController) DeleteHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}
	if err := ac.Service.Cancel(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusNotFound, "Cita no encontrada")
		}
		return internalError(c, err, "cancelando cita")
	}
	if claims, ok := middlewares.GetClaims(c); ok {
		ac.Audit.Record(claims.UserID, "cancel", "appointment", id, "")
	}
	return utils.RespondMessage(c, http.StatusOK, "Cita cancelada")
}
