package services

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/Adagu69/calendario-medico-sub000/internal/personal/models"
	"github.com/Adagu69/calendario-medico-sub000/pkg/utils"
)

type DoctorService struct {
	DB *sql.DB
}

func NewDoctorService(db *sql.DB) *DoctorService {
	return &DoctorService{DB: db}
}

// List devuelve doctores con sus especialidades agregadas en una sola pasada.
func (s *DoctorService) List(sectionID *int, includeInactive bool) ([]models.Doctor, error) {
	query := `
		SELECT d.id, d.document_type, d.document_number, d.first_name, d.last_name,
		       d.profession, d.license, d.section_id, sec.name, d.is_active,
		       d.created_at, d.updated_at,
		       COALESCE(ARRAY_AGG(ds.specialty_id) FILTER (WHERE ds.specialty_id IS NOT NULL), '{}')
		FROM doctors d
		JOIN sections sec ON sec.id = d.section_id
		LEFT JOIN doctor_specialties ds ON ds.doctor_id = d.id`
	var args []interface{}
	where := ""
	if !includeInactive {
		where = " WHERE d.is_active = TRUE"
	}
	if sectionID != nil {
		if where == "" {
			where = " WHERE"
		} else {
			where += " AND"
		}
		args = append(args, *sectionID)
		where += fmt.Sprintf(" d.section_id = $%d", len(args))
	}
	query += where + `
		GROUP BY d.id, sec.name
		ORDER BY d.last_name, d.first_name`

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %v", err)
	}
	defer rows.Close()

	var doctors []models.Doctor
	for rows.Next() {
		var (
			d        models.Doctor
			specIDs  pq.Int64Array
		)
		if err := rows.Scan(&d.ID, &d.DocumentType, &d.DocumentNumber, &d.FirstName,
			&d.LastName, &d.Profession, &d.License, &d.SectionID, &d.SectionName,
			&d.IsActive, &d.CreatedAt, &d.UpdatedAt, &specIDs); err != nil {
			return nil, fmt.Errorf("scan error: %v", err)
		}
		d.SpecialtyIDs = make([]int, 0, len(specIDs))
		for _, id := range specIDs {
			d.SpecialtyIDs = append(d.SpecialtyIDs, int(id))
		}
		doctors = append(doctors, d)
	}
	return doctors, rows.Err()
}

func (s *DoctorService) GetByID(id int) (*models.Doctor, error) {
	var (
		d       models.Doctor
		specIDs pq.Int64Array
	)
	err := s.DB.QueryRow(`
		SELECT d.id, d.document_type, d.document_number, d.first_name, d.last_name,
		       d.profession, d.license, d.section_id, sec.name, d.is_active,
		       d.created_at, d.updated_at,
		       COALESCE(ARRAY_AGG(ds.specialty_id) FILTER (WHERE ds.specialty_id IS NOT NULL), '{}')
		FROM doctors d
		JOIN sections sec ON sec.id = d.section_id
		LEFT JOIN doctor_specialties ds ON ds.doctor_id = d.id
		WHERE d.id = $1
		GROUP BY d.id, sec.name`, id,
	).Scan(&d.ID, &d.DocumentType, &d.DocumentNumber, &d.FirstName, &d.LastName,
		&d.Profession, &d.License, &d.SectionID, &d.SectionName, &d.IsActive,
		&d.CreatedAt, &d.UpdatedAt, &specIDs)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	d.SpecialtyIDs = make([]int, 0, len(specIDs))
	for _, sid := range specIDs {
		d.SpecialtyIDs = append(d.SpecialtyIDs, int(sid))
	}
	return &d, nil
}

type DoctorInput struct {
	DocumentType   string
	DocumentNumber string
	FirstName      string
	LastName       string
	Profession     string
	License        string
	SectionID      int
	SpecialtyIDs   []int
}

// Create inserta el doctor y sus vínculos de especialidad en una transacción.
func (s *DoctorService) Create(in DoctorInput) (*models.Doctor, error) {
	tx, err := s.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("no se pudo iniciar la transacción: %v", err)
	}

	var id int
	err = tx.QueryRow(
		`INSERT INTO doctors (document_type, document_number, first_name, last_name,
		                      profession, license, section_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		in.DocumentType, in.DocumentNumber, in.FirstName, in.LastName,
		in.Profession, in.License, in.SectionID,
	).Scan(&id)
	if err != nil {
		tx.Rollback()
		if utils.IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		if utils.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: la sección %d no existe", ErrNotFound, in.SectionID)
		}
		return nil, err
	}

	if err := s.replaceSpecialties(tx, id, in.SpecialtyIDs); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("no se pudo confirmar la transacción: %v", err)
	}
	return s.GetByID(id)
}

func (s *DoctorService) Update(id int, in DoctorInput, isActive bool) (*models.Doctor, error) {
	tx, err := s.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("no se pudo iniciar la transacción: %v", err)
	}

	res, err := tx.Exec(
		`UPDATE doctors SET document_type = $1, document_number = $2, first_name = $3,
		        last_name = $4, profession = $5, license = $6, section_id = $7,
		        is_active = $8, updated_at = NOW()
		 WHERE id = $9`,
		in.DocumentType, in.DocumentNumber, in.FirstName, in.LastName,
		in.Profession, in.License, in.SectionID, isActive, id)
	if err != nil {
		tx.Rollback()
		if utils.IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		if utils.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: la sección %d no existe", ErrNotFound, in.SectionID)
		}
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if affected == 0 {
		tx.Rollback()
		return nil, ErrNotFound
	}

	if err := s.replaceSpecialties(tx, id, in.SpecialtyIDs); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("no se pudo confirmar la transacción: %v", err)
	}
	return s.GetByID(id)
}

func (s *DoctorService) replaceSpecialties(tx *sql.Tx, doctorID int, specialtyIDs []int) error {
	if _, err := tx.Exec("DELETE FROM doctor_specialties WHERE doctor_id = $1", doctorID); err != nil {
		return err
	}
	for _, sid := range specialtyIDs {
		if _, err := tx.Exec(
			"INSERT INTO doctor_specialties (doctor_id, specialty_id) VALUES ($1, $2)",
			doctorID, sid); err != nil {
			if utils.IsForeignKeyViolation(err) {
				return fmt.Errorf("%w: la especialidad %d no existe", ErrNotFound, sid)
			}
			return err
		}
	}
	return nil
}

func (s *DoctorService) SoftDelete(id int) error {
	res, err := s.DB.Exec(
		"UPDATE doctors SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE", id)
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
