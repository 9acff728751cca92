package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Adagu69/calendario-medico-sub000/config"
	"github.com/Adagu69/calendario-medico-sub000/internal/reportes/services"
	"github.com/Adagu69/calendario-medico-sub000/pkg/logger"
	"github.com/Adagu69/calendario-medico-sub000/pkg/utils"
)

type ReportController struct {
	Service *services.ReportService
}

func NewReportController(service *services.ReportService) *ReportController {
	return &ReportController{Service: service}
}

// MonthlyScheduleHandler genera el reporte mensual de turnos en formato IPRESS.
// GET /api/reports/monthly-schedule?month=YYYY-MM&specialty_id=&service_id=&doctor_id=
func (rc *ReportController) MonthlyScheduleHandler(c echo.Context) error {
	monthParam := c.QueryParam("month")
	if monthParam == "" {
		return utils.RespondError(c, http.StatusBadRequest, "El parámetro month es obligatorio (YYYY-MM)")
	}
	year, month, err := services.ParseMonthParam(monthParam)
	if err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}

	params := services.ReportParams{Year: year, Month: month}
	if params.SpecialtyID, err = optionalIntParam(c, "specialty_id"); err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}
	if params.SectionID, err = optionalIntParam(c, "service_id"); err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}
	if params.DoctorID, err = optionalIntParam(c, "doctor_id"); err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}

	rows, err := rc.Service.MonthlyScheduleRows(params)
	if err != nil {
		if errors.Is(err, services.ErrNoData) {
			return utils.RespondError(c, http.StatusNotFound,
				"No se encontraron turnos para los filtros indicados")
		}
		logger.Log().WithError(err).WithField("month", monthParam).Error("fallo generando reporte mensual")
		return utils.RespondError(c, http.StatusInternalServerError, "Error generando el reporte")
	}

	cfg := config.LoadConfig()
	buf, err := services.BuildWorkbook(rows, monthParam, services.ClinicHeader{
		Code:    cfg.ClinicCode,
		Name:    cfg.ClinicName,
		Network: cfg.ClinicNetwork,
	})
	if err != nil {
		logger.Log().WithError(err).Error("fallo armando el libro de reporte")
		return utils.RespondError(c, http.StatusInternalServerError, "Error generando el archivo")
	}

	filename := fmt.Sprintf("reporte-turnos-%s.xlsx", monthParam)
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func optionalIntParam(c echo.Context, name string) (*int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%s debe ser un número", name)
	}
	return &n, nil
}
