package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Adagu69/calendario-medico-sub000/internal/agenda/models"
	"github.com/Adagu69/calendario-medico-sub000/pkg/utils"
)

var (
	ErrNotFound  = errors.New("registro no encontrado")
	ErrDuplicate = errors.New("registro duplicado")
	ErrConflict  = errors.New("conflicto de programación")
)

type ScheduleService struct {
	DB *sql.DB
}

func NewScheduleService(db *sql.DB) *ScheduleService {
	return &ScheduleService{DB: db}
}

const monthColumns = "id, doctor_id, specialty_id, year, month, state, is_active, created_by, created_at, updated_at"

func scanMonth(row interface{ Scan(...interface{}) error }) (*models.Month, error) {
	var (
		m         models.Month
		specialty sql.NullInt64
		createdBy sql.NullInt64
	)
	if err := row.Scan(&m.ID, &m.DoctorID, &specialty, &m.Year, &m.Month,
		&m.State, &m.IsActive, &createdBy, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	if specialty.Valid {
		id := int(specialty.Int64)
		m.SpecialtyID = &id
	}
	if createdBy.Valid {
		id := int(createdBy.Int64)
		m.CreatedBy = &id
	}
	return &m, nil
}

type MonthFilter struct {
	Year      *int
	Month     *int
	DoctorID  *int
	SectionID *int
}

func (s *ScheduleService) List(f MonthFilter) ([]models.Month, error) {
	query := `
		SELECT m.id, m.doctor_id, m.specialty_id, m.year, m.month, m.state,
		       m.is_active, m.created_by, m.created_at, m.updated_at
		FROM months m
		JOIN doctors d ON d.id = m.doctor_id
		WHERE m.is_active = TRUE`
	var args []interface{}
	add := func(cond string, v interface{}) {
		args = append(args, v)
		query += fmt.Sprintf(" AND "+cond, len(args))
	}
	if f.Year != nil {
		add("m.year = $%d", *f.Year)
	}
	if f.Month != nil {
		add("m.month = $%d", *f.Month)
	}
	if f.DoctorID != nil {
		add("m.doctor_id = $%d", *f.DoctorID)
	}
	if f.SectionID != nil {
		add("d.section_id = $%d", *f.SectionID)
	}
	query += " ORDER BY m.year DESC, m.month DESC, m.id"

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %v", err)
	}
	defer rows.Close()

	var months []models.Month
	for rows.Next() {
		m, err := scanMonth(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %v", err)
		}
		months = append(months, *m)
	}
	return months, rows.Err()
}

// GetByID devuelve la programación con turnos y días anidados.
func (s *ScheduleService) GetByID(id int) (*models.Month, error) {
	m, err := scanMonth(s.DB.QueryRow(
		"SELECT "+monthColumns+" FROM months WHERE id = $1 AND is_active = TRUE", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	slotRows, err := s.DB.Query(
		"SELECT id, month_id, name, start_time, end_time, color FROM time_slots WHERE month_id = $1 ORDER BY start_time", id)
	if err != nil {
		return nil, err
	}
	defer slotRows.Close()
	for slotRows.Next() {
		var ts models.TimeSlot
		if err := slotRows.Scan(&ts.ID, &ts.MonthID, &ts.Name, &ts.Start, &ts.End, &ts.Color); err != nil {
			return nil, err
		}
		m.TimeSlots = append(m.TimeSlots, ts)
	}
	if err := slotRows.Err(); err != nil {
		return nil, err
	}

	dayRows, err := s.DB.Query(
		"SELECT id, month_id, day, slot_ids, notes FROM month_days WHERE month_id = $1 ORDER BY day", id)
	if err != nil {
		return nil, err
	}
	defer dayRows.Close()
	for dayRows.Next() {
		var (
			d       models.MonthDay
			slotIDs pq.Int64Array
		)
		if err := dayRows.Scan(&d.ID, &d.MonthID, &d.Day, &slotIDs, &d.Notes); err != nil {
			return nil, err
		}
		d.SlotIDs = make([]int, 0, len(slotIDs))
		for _, sid := range slotIDs {
			d.SlotIDs = append(d.SlotIDs, int(sid))
		}
		m.Days = append(m.Days, d)
	}
	return m, dayRows.Err()
}

func (s *ScheduleService) Create(doctorID int, specialtyID *int, year, month, createdBy int) (*models.Month, error) {
	m, err := scanMonth(s.DB.QueryRow(
		`INSERT INTO months (doctor_id, specialty_id, year, month, created_by)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+monthColumns,
		doctorID, specialtyID, year, month, createdBy))
	if err != nil {
		if utils.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: ya existe la programación de ese doctor para %d-%02d", ErrDuplicate, year, month)
		}
		if utils.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: doctor o especialidad inexistente", ErrNotFound)
		}
		return nil, err
	}
	return m, nil
}

// Publish pasa la programación de draft a published.
func (s *ScheduleService) Publish(id int) (*models.Month, error) {
	m, err := scanMonth(s.DB.QueryRow(
		`UPDATE months SET state = 'published', updated_at = NOW()
		 WHERE id = $1 AND is_active = TRUE
		 RETURNING `+monthColumns, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

// SoftDelete desactiva la programación; turnos y días quedan pero dejan de
// ser visibles (el borrado físico en cascada solo ocurre con DELETE real).
func (s *ScheduleService) SoftDelete(id int) error {
	res, err := s.DB.Exec(
		"UPDATE months SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Turnos ---

func (s *ScheduleService) CreateSlot(monthID int, name, start, end, color string) (*models.TimeSlot, error) {
	var ts models.TimeSlot
	err := s.DB.QueryRow(
		`INSERT INTO time_slots (month_id, name, start_time, end_time, color)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, month_id, name, start_time, end_time, color`,
		monthID, name, start, end, color,
	).Scan(&ts.ID, &ts.MonthID, &ts.Name, &ts.Start, &ts.End, &ts.Color)
	if err != nil {
		if utils.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: ya existe un turno '%s' en esta programación", ErrDuplicate, name)
		}
		if utils.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: programación %d inexistente", ErrNotFound, monthID)
		}
		return nil, err
	}
	return &ts, nil
}

func (s *ScheduleService) UpdateSlot(id int, name, start, end, color string) (*models.TimeSlot, error) {
	var ts models.TimeSlot
	err := s.DB.QueryRow(
		`UPDATE time_slots SET name = $1, start_time = $2, end_time = $3, color = $4
		 WHERE id = $5
		 RETURNING id, month_id, name, start_time, end_time, color`,
		name, start, end, color, id,
	).Scan(&ts.ID, &ts.MonthID, &ts.Name, &ts.Start, &ts.End, &ts.Color)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		if utils.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: ya existe un turno '%s' en esta programación", ErrDuplicate, name)
		}
		return nil, err
	}
	return &ts, nil
}

// DeleteSlot elimina el turno y lo retira de los días que lo referencian,
// en una sola transacción.
func (s *ScheduleService) DeleteSlot(id int) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return fmt.Errorf("no se pudo iniciar la transacción: %v", err)
	}

	var monthID int
	if err := tx.QueryRow("SELECT month_id FROM time_slots WHERE id = $1", id).Scan(&monthID); err != nil {
		tx.Rollback()
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}

	if _, err := tx.Exec(
		"UPDATE month_days SET slot_ids = ARRAY_REMOVE(slot_ids, $1) WHERE month_id = $2", id, monthID); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec("DELETE FROM time_slots WHERE id = $1", id); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// --- Días ---

// SaveDays es el destino del autosave del calendario en borrador: upsert
// masivo de días, validando que cada turno referido pertenezca al mes. Deja
// constancia en change_requests con el payload completo.
func (s *ScheduleService) SaveDays(monthID int, edits []models.DayEdit, userID int) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return fmt.Errorf("no se pudo iniciar la transacción: %v", err)
	}

	var exists int
	if err := tx.QueryRow(
		"SELECT 1 FROM months WHERE id = $1 AND is_active = TRUE", monthID).Scan(&exists); err != nil {
		tx.Rollback()
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}

	// Turnos válidos del mes, para rechazar referencias ajenas.
	validSlots := make(map[int]bool)
	slotRows, err := tx.Query("SELECT id FROM time_slots WHERE month_id = $1", monthID)
	if err != nil {
		tx.Rollback()
		return err
	}
	for slotRows.Next() {
		var id int
		if err := slotRows.Scan(&id); err != nil {
			slotRows.Close()
			tx.Rollback()
			return err
		}
		validSlots[id] = true
	}
	slotRows.Close()
	if err := slotRows.Err(); err != nil {
		tx.Rollback()
		return err
	}

	for _, e := range edits {
		if e.Day < 1 || e.Day > 31 {
			tx.Rollback()
			return fmt.Errorf("%w: día %d fuera de rango", ErrConflict, e.Day)
		}
		slotIDs := make(pq.Int64Array, 0, len(e.SlotIDs))
		for _, sid := range e.SlotIDs {
			if !validSlots[sid] {
				tx.Rollback()
				return fmt.Errorf("%w: el turno %d no pertenece a la programación %d", ErrConflict, sid, monthID)
			}
			slotIDs = append(slotIDs, int64(sid))
		}

		if _, err := tx.Exec(
			`INSERT INTO month_days (month_id, day, slot_ids, notes)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (month_id, day)
			 DO UPDATE SET slot_ids = EXCLUDED.slot_ids, notes = EXCLUDED.notes`,
			monthID, e.Day, slotIDs, e.Notes); err != nil {
			tx.Rollback()
			return err
		}
	}

	payload, err := json.Marshal(edits)
	if err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(
		`INSERT INTO change_requests (public_id, month_id, user_id, payload)
		 VALUES ($1, $2, $3, $4)`,
		uuid.New(), monthID, userID, payload); err != nil {
		tx.Rollback()
		return err
	}

	if _, err := tx.Exec("UPDATE months SET updated_at = NOW() WHERE id = $1", monthID); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
