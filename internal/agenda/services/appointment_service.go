package services

import (
	"database/sql"
	"fmt"

	"github.com/Adagu69/calendario-medico-sub000/internal/agenda/models"
	"github.com/Adagu69/calendario-medico-sub000/pkg/utils"
)

type AppointmentService struct {
	DB *sql.DB
}

func NewAppointmentService(db *sql.DB) *AppointmentService {
	return &AppointmentService{DB: db}
}

const appointmentColumns = "id, doctor_id, office_id, slot_label, to_char(date, 'YYYY-MM-DD'), patient_name, status, created_by, created_at, updated_at"

func scanAppointment(row interface{ Scan(...interface{}) error }) (*models.Appointment, error) {
	var (
		a         models.Appointment
		createdBy sql.NullInt64
	)
	if err := row.Scan(&a.ID, &a.DoctorID, &a.OfficeID, &a.SlotLabel, &a.Date,
		&a.PatientName, &a.Status, &createdBy, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if createdBy.Valid {
		id := int(createdBy.Int64)
		a.CreatedBy = &id
	}
	return &a, nil
}

// checkConflict rechaza la operación si otro registro no cancelado ya ocupa
// el mismo doctor O el mismo consultorio en ese turno y fecha. excludeID
// permite que un update sobre el propio registro no choque consigo mismo.
func (s *AppointmentService) checkConflict(doctorID, officeID int, slotLabel, date string, excludeID int) error {
	var count int
	err := s.DB.QueryRow(
		`SELECT COUNT(*) FROM appointments
		 WHERE (doctor_id = $1 OR office_id = $2)
		   AND slot_label = $3 AND date = $4
		   AND status <> 'cancelada' AND id <> $5`,
		doctorID, officeID, slotLabel, date, excludeID,
	).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: el doctor o el consultorio ya tienen una cita en ese turno y fecha", ErrConflict)
	}
	return nil
}

type AppointmentInput struct {
	DoctorID    int
	OfficeID    int
	SlotLabel   string
	Date        string // "YYYY-MM-DD"
	PatientName string
	Status      string
}

func (s *AppointmentService) List(doctorID *int, date string) ([]models.Appointment, error) {
	query := "SELECT " + appointmentColumns + " FROM appointments WHERE 1=1"
	var args []interface{}
	if doctorID != nil {
		args = append(args, *doctorID)
		query += fmt.Sprintf(" AND doctor_id = $%d", len(args))
	}
	if date != "" {
		args = append(args, date)
		query += fmt.Sprintf(" AND date = $%d", len(args))
	}
	query += " ORDER BY date, slot_label, id"

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %v", err)
	}
	defer rows.Close()

	var appointments []models.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %v", err)
		}
		appointments = append(appointments, *a)
	}
	return appointments, rows.Err()
}

func (s *AppointmentService) GetByID(id int) (*models.Appointment, error) {
	a, err := scanAppointment(s.DB.QueryRow(
		"SELECT "+appointmentColumns+" FROM appointments WHERE id = $1", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *AppointmentService) Create(in AppointmentInput, createdBy int) (*models.Appointment, error) {
	if err := s.checkConflict(in.DoctorID, in.OfficeID, in.SlotLabel, in.Date, 0); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = "programada"
	}
	a, err := scanAppointment(s.DB.QueryRow(
		`INSERT INTO appointments (doctor_id, office_id, slot_label, date, patient_name, status, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+appointmentColumns,
		in.DoctorID, in.OfficeID, in.SlotLabel, in.Date, in.PatientName, status, createdBy))
	if err != nil {
		if utils.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: doctor o consultorio inexistente", ErrNotFound)
		}
		return nil, err
	}
	return a, nil
}

func (s *AppointmentService) Update(id int, in AppointmentInput) (*models.Appointment, error) {
	// El propio registro queda excluido del chequeo: moverlo a su mismo
	// turno y fecha es válido.
	if err := s.checkConflict(in.DoctorID, in.OfficeID, in.SlotLabel, in.Date, id); err != nil {
		return nil, err
	}

	a, err := scanAppointment(s.DB.QueryRow(
		`UPDATE appointments SET doctor_id = $1, office_id = $2, slot_label = $3,
		        date = $4, patient_name = $5, status = $6, updated_at = NOW()
		 WHERE id = $7
		 RETURNING `+appointmentColumns,
		in.DoctorID, in.OfficeID, in.SlotLabel, in.Date, in.PatientName, in.Status, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		if utils.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: doctor o consultorio inexistente", ErrNotFound)
		}
		return nil, err
	}
	return a, nil
}

// Cancel es el soft delete de citas: el registro queda pero deja de bloquear
// el turno.
func (s *AppointmentService) Cancel(id int) error {
	res, err := s.DB.Exec(
		"UPDATE appointments SET status = 'cancelada', updated_at = NOW() WHERE id = $1 AND status <> 'cancelada'", id)
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
