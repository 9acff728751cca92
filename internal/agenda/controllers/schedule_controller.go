package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Adagu69/calendario-medico-sub000/internal/agenda/models"
	"github.com/Adagu69/calendario-medico-sub000/internal/agenda/services"
	auditServices "github.com/Adagu69/calendario-medico-sub000/internal/audit/services"
	"github.com/Adagu69/calendario-medico-sub000/internal/common/middlewares"
	"github.com/Adagu69/calendario-medico-sub000/pkg/logger"
	"github.com/Adagu69/calendario-medico-sub000/pkg/utils"
	"github.com/Adagu69/calendario-medico-sub000/ws"
)

type ScheduleController struct {
	Service *services.ScheduleService
	Audit   *auditServices.AuditService
	Hub     *ws.Hub

	draftsMu sync.Mutex
	drafts   map[draftKey]*services.DraftSaver
}

// Cada editor tiene su propio borrador por programación.
type draftKey struct {
	monthID int
	userID  int
}

func NewScheduleController(service *services.ScheduleService, audit *auditServices.AuditService, hub *ws.Hub) *ScheduleController {
	return &ScheduleController{
		Service: service,
		Audit:   audit,
		Hub:     hub,
		drafts:  make(map[draftKey]*services.DraftSaver),
	}
}

func (sc *ScheduleController) draftSaver(monthID, userID int) *services.DraftSaver {
	sc.draftsMu.Lock()
	defer sc.draftsMu.Unlock()
	key := draftKey{monthID: monthID, userID: userID}
	saver, ok := sc.drafts[key]
	if !ok {
		saver = services.NewDraftSaver(monthID, userID, sc.Service.SaveDays, nil)
		saver.SetOnSaved(func() {
			sc.Hub.Publish(ws.ScheduleEvent{Type: "draft_saved", MonthID: monthID, By: userID})
		})
		sc.drafts[key] = saver
	}
	return saver
}

func (sc *ScheduleController) ListHandler(c echo.Context) error {
	var f services.MonthFilter
	var err error
	if f.Year, err = optionalIntQuery(c, "year"); err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}
	if f.Month, err = optionalIntQuery(c, "month"); err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}
	if f.DoctorID, err = optionalIntQuery(c, "doctor_id"); err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}
	if f.SectionID, err = optionalIntQuery(c, "section_id"); err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}

	months, err := sc.Service.List(f)
	if err != nil {
		return internalError(c, err, "listando programaciones")
	}
	return utils.RespondData(c, http.StatusOK, months)
}

func (sc *ScheduleController) GetHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}
	month, err := sc.Service.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusNotFound, "Programación no encontrada")
		}
		return internalError(c, err, "consultando programación")
	}
	return utils.RespondData(c, http.StatusOK, month)
}

type monthRequest struct {
	DoctorID    int  `json:"doctor_id"`
	SpecialtyID *int `json:"specialty_id"`
	Year        int  `json:"year"`
	Month       int  `json:"month"`
}

func (sc *ScheduleController) CreateHandler(c echo.Context) error {
	var req monthRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondError(c, http.StatusBadRequest, "Payload inválido")
	}
	var errs []utils.FieldError
	if req.DoctorID <= 0 {
		errs = append(errs, utils.FieldError{Field: "doctor_id", Message: "es obligatorio"})
	}
	if req.Year < 2000 || req.Year > 2100 {
		errs = append(errs, utils.FieldError{Field: "year", Message: "fuera de rango"})
	}
	if req.Month < 1 || req.Month > 12 {
		errs = append(errs, utils.FieldError{Field: "month", Message: "debe estar entre 1 y 12"})
	}
	if len(errs) > 0 {
		return utils.RespondValidation(c, errs)
	}

	claims, ok := middlewares.GetClaims(c)
	if !ok {
		return utils.RespondError(c, http.StatusUnauthorized, "Token inválido")
	}

	month, err := sc.Service.Create(req.DoctorID, req.SpecialtyID, req.Year, req.Month, claims.UserID)
	if err != nil {
		if errors.Is(err, services.ErrDuplicate) {
			return utils.RespondError(c, http.StatusConflict, err.Error())
		}
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusBadRequest, err.Error())
		}
		return internalError(c, err, "creando programación")
	}

	sc.Audit.Record(claims.UserID, "create", "month", month.ID, "")
	return utils.RespondData(c, http.StatusCreated, month)
}

// PublishHandler cierra el borrador y notifica a las sesiones abiertas.
func (sc *ScheduleController) PublishHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}
	month, err := sc.Service.Publish(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusNotFound, "Programación no encontrada")
		}
		return internalError(c, err, "publicando programación")
	}

	claims, _ := middlewares.GetClaims(c)
	userID := 0
	if claims != nil {
		userID = claims.UserID
	}
	sc.Audit.Record(userID, "publish", "month", id, "")
	sc.Hub.Publish(ws.ScheduleEvent{Type: "month_published", MonthID: id, By: userID})
	return utils.RespondData(c, http.StatusOK, month)
}

func (sc *ScheduleController) DeleteHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}
	if err := sc.Service.SoftDelete(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusNotFound, "Programación no encontrada")
		}
		return internalError(c, err, "eliminando programación")
	}
	if claims, ok := middlewares.GetClaims(c); ok {
		sc.Audit.Record(claims.UserID, "delete", "month", id, "")
	}
	return utils.RespondMessage(c, http.StatusOK, "Programación desactivada")
}

// --- Turnos ---

type slotRequest struct {
	Name  string `json:"name"`
	Start string `json:"start"`
	End   string `json:"end"`
	Color string `json:"color"`
}

func (r slotRequest) validate() []utils.FieldError {
	var errs []utils.FieldError
	if r.Name == "" {
		errs = append(errs, utils.FieldError{Field: "name", Message: "es obligatorio"})
	}
	if _, err := time.Parse("15:04", r.Start); err != nil {
		errs = append(errs, utils.FieldError{Field: "start", Message: "debe tener formato HH:MM"})
	}
	if _, err := time.Parse("15:04", r.End); err != nil {
		errs = append(errs, utils.FieldError{Field: "end", Message: "debe tener formato HH:MM"})
	}
	return errs
}

func (sc *ScheduleController) CreateSlotHandler(c echo.Context) error {
	monthID, err := pathID(c)
	if err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}
	var req slotRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondError(c, http.StatusBadRequest, "Payload inválido")
	}
	if errs := req.validate(); len(errs) > 0 {
		return utils.RespondValidation(c, errs)
	}
	color := req.Color
	if color == "" {
		color = "#1976d2"
	}

	slot, err := sc.Service.CreateSlot(monthID, req.Name, req.Start, req.End, color)
	if err != nil {
		if errors.Is(err, services.ErrDuplicate) {
			return utils.RespondError(c, http.StatusConflict, err.Error())
		}
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusNotFound, err.Error())
		}
		return internalError(c, err, "creando turno")
	}
	return utils.RespondData(c, http.StatusCreated, slot)
}

func (sc *ScheduleController) UpdateSlotHandler(c echo.Context) error {
	slotID, err := strconv.Atoi(c.Param("slotId"))
	if err != nil || slotID <= 0 {
		return utils.RespondError(c, http.StatusBadRequest, "slotId inválido")
	}
	var req slotRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondError(c, http.StatusBadRequest, "Payload inválido")
	}
	if errs := req.validate(); len(errs) > 0 {
		return utils.RespondValidation(c, errs)
	}
	color := req.Color
	if color == "" {
		color = "#1976d2"
	}

	slot, err := sc.Service.UpdateSlot(slotID, req.Name, req.Start, req.End, color)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusNotFound, "Turno no encontrado")
		}
		if errors.Is(err, services.ErrDuplicate) {
			return utils.RespondError(c, http.StatusConflict, err.Error())
		}
		return internalError(c, err, "actualizando turno")
	}
	return utils.RespondData(c, http.StatusOK, slot)
}

func (sc *ScheduleController) DeleteSlotHandler(c echo.Context) error {
	slotID, err := strconv.Atoi(c.Param("slotId"))
	if err != nil || slotID <= 0 {
		return utils.RespondError(c, http.StatusBadRequest, "slotId inválido")
	}
	if err := sc.Service.DeleteSlot(slotID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusNotFound, "Turno no encontrado")
		}
		return internalError(c, err, "eliminando turno")
	}
	return utils.RespondMessage(c, http.StatusOK, "Turno eliminado")
}

// --- Días ---

// SaveDaysHandler es el destino del autosave: upsert masivo de días.
func (sc *ScheduleController) SaveDaysHandler(c echo.Context) error {
	monthID, err := pathID(c)
	if err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}
	var req struct {
		Days []models.DayEdit `json:"days"`
	}
	if err := c.Bind(&req); err != nil {
		return utils.RespondError(c, http.StatusBadRequest, "Payload inválido")
	}
	if len(req.Days) == 0 {
		return utils.RespondValidation(c, []utils.FieldError{{Field: "days", Message: "no puede estar vacío"}})
	}

	claims, ok := middlewares.GetClaims(c)
	if !ok {
		return utils.RespondError(c, http.StatusUnauthorized, "Token inválido")
	}

	if err := sc.Service.SaveDays(monthID, req.Days, claims.UserID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusNotFound, "Programación no encontrada")
		}
		if errors.Is(err, services.ErrConflict) {
			return utils.RespondError(c, http.StatusBadRequest, err.Error())
		}
		return internalError(c, err, "guardando días")
	}

	sc.Audit.Record(claims.UserID, "save_days", "month", monthID, "")
	sc.Hub.Publish(ws.ScheduleEvent{Type: "month_updated", MonthID: monthID, By: claims.UserID})
	return utils.RespondMessage(c, http.StatusOK, "Días guardados")
}

// DraftEditHandler registra ediciones de borrador sin tocar la base todavía:
// el guardado ocurre solo tras la ventana de inactividad, con un reintento si
// falla. La respuesta devuelve el estado actual del borrador.
func (sc *ScheduleController) DraftEditHandler(c echo.Context) error {
	monthID, err := pathID(c)
	if err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}
	var req struct {
		Days []models.DayEdit `json:"days"`
	}
	if err := c.Bind(&req); err != nil {
		return utils.RespondError(c, http.StatusBadRequest, "Payload inválido")
	}
	if len(req.Days) == 0 {
		return utils.RespondValidation(c, []utils.FieldError{{Field: "days", Message: "no puede estar vacío"}})
	}
	for _, d := range req.Days {
		if d.Day < 1 || d.Day > 31 {
			return utils.RespondValidation(c, []utils.FieldError{{Field: "days", Message: "día fuera de rango"}})
		}
	}

	claims, ok := middlewares.GetClaims(c)
	if !ok {
		return utils.RespondError(c, http.StatusUnauthorized, "Token inválido")
	}

	saver := sc.draftSaver(monthID, claims.UserID)
	for _, d := range req.Days {
		saver.Edit(d)
	}
	return utils.RespondData(c, http.StatusAccepted, map[string]interface{}{
		"state": saver.State().String(),
	})
}

// DraftFlushHandler fuerza el guardado inmediato del borrador (cierre de la
// vista de edición).
func (sc *ScheduleController) DraftFlushHandler(c echo.Context) error {
	monthID, err := pathID(c)
	if err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}
	claims, ok := middlewares.GetClaims(c)
	if !ok {
		return utils.RespondError(c, http.StatusUnauthorized, "Token inválido")
	}

	saver := sc.draftSaver(monthID, claims.UserID)
	saver.Flush()
	return utils.RespondData(c, http.StatusOK, map[string]interface{}{
		"state": saver.State().String(),
	})
}

func pathID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, errors.New("id inválido")
	}
	return id, nil
}

func optionalIntQuery(c echo.Context, name string) (*int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, errors.New(name + " debe ser un número")
	}
	return &n, nil
}

func internalError(c echo.Context, err error, during string) error {
	logger.Log().WithError(err).Error("error " + during)
	return utils.RespondError(c, http.StatusInternalServerError, "Error interno")
}
