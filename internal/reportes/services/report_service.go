package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Adagu69/calendario-medico-sub000/internal/reportes/models"
)

// ErrNoData distingue "no hay turnos para esos filtros" de un fallo de
// consulta: el primero es 404, el segundo 500.
var ErrNoData = errors.New("no hay turnos para los filtros indicados")

type ReportService struct {
	DB *sql.DB
}

func NewReportService(db *sql.DB) *ReportService {
	return &ReportService{DB: db}
}

// ReportParams son los filtros del reporte mensual.
type ReportParams struct {
	Year        int
	Month       int
	SpecialtyID *int
	SectionID   *int
	DoctorID    *int
}

// ParseMonthParam valida el formato YYYY-MM.
func ParseMonthParam(v string) (year, month int, err error) {
	t, err := time.Parse("2006-01", v)
	if err != nil {
		return 0, 0, fmt.Errorf("mes '%s' inválido, use YYYY-MM", v)
	}
	return t.Year(), int(t.Month()), nil
}

// MonthlyScheduleRows resuelve las programaciones del período, las expande en
// memoria y devuelve las filas agregadas por día.
func (s *ReportService) MonthlyScheduleRows(p ReportParams) ([]models.DayRow, error) {
	schedules, err := s.fetchSchedules(p)
	if err != nil {
		return nil, err
	}

	rows, err := Aggregate(schedules)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	return rows, nil
}

func (s *ReportService) fetchSchedules(p ReportParams) ([]models.MonthSchedule, error) {
	query := `
		SELECT m.id, m.year, m.month,
		       d.id, d.document_type, d.document_number, d.first_name, d.last_name,
		       d.profession, d.license,
		       sp.id, sp.name,
		       sec.id, sec.name
		FROM months m
		JOIN doctors d  ON d.id = m.doctor_id
		JOIN sections sec ON sec.id = d.section_id
		LEFT JOIN specialties sp ON sp.id = m.specialty_id
		WHERE m.is_active = TRUE AND m.year = $1 AND m.month = $2`
	args := []interface{}{p.Year, p.Month}

	if p.SpecialtyID != nil {
		args = append(args, *p.SpecialtyID)
		query += fmt.Sprintf(" AND m.specialty_id = $%d", len(args))
	}
	if p.SectionID != nil {
		args = append(args, *p.SectionID)
		query += fmt.Sprintf(" AND d.section_id = $%d", len(args))
	}
	if p.DoctorID != nil {
		args = append(args, *p.DoctorID)
		query += fmt.Sprintf(" AND m.doctor_id = $%d", len(args))
	}

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error consultando programaciones: %v", err)
	}
	defer rows.Close()

	var schedules []models.MonthSchedule
	index := make(map[int]int) // month_id -> posición en schedules
	var monthIDs []int64
	for rows.Next() {
		var (
			ms       models.MonthSchedule
			specID   sql.NullInt64
			specName sql.NullString
		)
		if err := rows.Scan(
			&ms.MonthID, &ms.Year, &ms.Month,
			&ms.Doctor.ID, &ms.Doctor.DocumentType, &ms.Doctor.DocumentNumber,
			&ms.Doctor.FirstName, &ms.Doctor.LastName,
			&ms.Doctor.Profession, &ms.Doctor.License,
			&specID, &specName,
			&ms.SectionID, &ms.SectionName,
		); err != nil {
			return nil, fmt.Errorf("error leyendo programación: %v", err)
		}
		if specID.Valid {
			id := int(specID.Int64)
			ms.SpecialtyID = &id
		}
		if specName.Valid {
			name := specName.String
			ms.SpecialtyName = &name
		}
		ms.Slots = make(map[int]models.TimeSlot)
		index[ms.MonthID] = len(schedules)
		schedules = append(schedules, ms)
		monthIDs = append(monthIDs, int64(ms.MonthID))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(schedules) == 0 {
		return nil, nil
	}

	if err := s.fetchSlots(monthIDs, schedules, index); err != nil {
		return nil, err
	}
	if err := s.fetchDays(monthIDs, schedules, index); err != nil {
		return nil, err
	}
	return schedules, nil
}

func (s *ReportService) fetchSlots(monthIDs []int64, schedules []models.MonthSchedule, index map[int]int) error {
	rows, err := s.DB.Query(
		`SELECT month_id, id, name, start_time, end_time
		   FROM time_slots WHERE month_id = ANY($1)`, pq.Array(monthIDs))
	if err != nil {
		return fmt.Errorf("error consultando turnos: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			monthID int
			slot    models.TimeSlot
		)
		if err := rows.Scan(&monthID, &slot.ID, &slot.Name, &slot.Start, &slot.End); err != nil {
			return fmt.Errorf("error leyendo turno: %v", err)
		}
		if i, ok := index[monthID]; ok {
			schedules[i].Slots[slot.ID] = slot
		}
	}
	return rows.Err()
}

func (s *ReportService) fetchDays(monthIDs []int64, schedules []models.MonthSchedule, index map[int]int) error {
	rows, err := s.DB.Query(
		`SELECT month_id, day, slot_ids, notes
		   FROM month_days WHERE month_id = ANY($1) ORDER BY day`, pq.Array(monthIDs))
	if err != nil {
		return fmt.Errorf("error consultando días: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			monthID int
			day     models.MonthDay
			slotIDs pq.Int64Array
		)
		if err := rows.Scan(&monthID, &day.Day, &slotIDs, &day.Notes); err != nil {
			return fmt.Errorf("error leyendo día: %v", err)
		}
		for _, id := range slotIDs {
			day.SlotIDs = append(day.SlotIDs, int(id))
		}
		if i, ok := index[monthID]; ok {
			schedules[i].Days = append(schedules[i].Days, day)
		}
	}
	return rows.Err()
}
