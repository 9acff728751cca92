package services

import (
	"database/sql"
	"fmt"

	"github.com/Adagu69/calendario-medico-sub000/internal/catalogo/models"
	"github.com/Adagu69/calendario-medico-sub000/pkg/utils"
)

type SpecialtyService struct {
	DB *sql.DB
}

func NewSpecialtyService(db *sql.DB) *SpecialtyService {
	return &SpecialtyService{DB: db}
}

func (s *SpecialtyService) List(sectionID *int, includeInactive bool) ([]models.Specialty, error) {
	query := `
		SELECT sp.id, sp.name, sp.section_id, sec.name, sp.is_active, sp.created_at, sp.updated_at
		FROM specialties sp
		JOIN sections sec ON sec.id = sp.section_id`
	var args []interface{}
	where := ""
	if !includeInactive {
		where = " WHERE sp.is_active = TRUE"
	}
	if sectionID != nil {
		if where == "" {
			where = " WHERE"
		} else {
			where += " AND"
		}
		args = append(args, *sectionID)
		where += fmt.Sprintf(" sp.section_id = $%d", len(args))
	}
	query += where + " ORDER BY sec.name, sp.name"

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %v", err)
	}
	defer rows.Close()

	var specialties []models.Specialty
	for rows.Next() {
		var sp models.Specialty
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.SectionID, &sp.SectionName,
			&sp.IsActive, &sp.CreatedAt, &sp.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %v", err)
		}
		specialties = append(specialties, sp)
	}
	return specialties, rows.Err()
}

func (s *SpecialtyService) GetByID(id int) (*models.Specialty, error) {
	var sp models.Specialty
	err := s.DB.QueryRow(`
		SELECT sp.id, sp.name, sp.section_id, sec.name, sp.is_active, sp.created_at, sp.updated_at
		FROM specialties sp JOIN sections sec ON sec.id = sp.section_id
		WHERE sp.id = $1`, id,
	).Scan(&sp.ID, &sp.Name, &sp.SectionID, &sp.SectionName, &sp.IsActive, &sp.CreatedAt, &sp.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sp, nil
}

func (s *SpecialtyService) Create(name string, sectionID int) (*models.Specialty, error) {
	var sp models.Specialty
	err := s.DB.QueryRow(
		`INSERT INTO specialties (name, section_id) VALUES ($1, $2)
		 RETURNING id, name, section_id, is_active, created_at, updated_at`, name, sectionID,
	).Scan(&sp.ID, &sp.Name, &sp.SectionID, &sp.IsActive, &sp.CreatedAt, &sp.UpdatedAt)
	if err != nil {
		if utils.IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		if utils.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: la sección %d no existe", ErrNotFound, sectionID)
		}
		return nil, err
	}
	return &sp, nil
}

func (s *SpecialtyService) Update(id int, name string, sectionID int, isActive bool) (*models.Specialty, error) {
	var sp models.Specialty
	err := s.DB.QueryRow(
		`UPDATE specialties SET name = $1, section_id = $2, is_active = $3, updated_at = NOW()
		 WHERE id = $4
		 RETURNING id, name, section_id, is_active, created_at, updated_at`,
		name, sectionID, isActive, id,
	).Scan(&sp.ID, &sp.Name, &sp.SectionID, &sp.IsActive, &sp.CreatedAt, &sp.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		if utils.IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return &sp, nil
}

// SoftDelete desactiva la especialidad salvo que tenga doctores activos vinculados.
func (s *SpecialtyService) SoftDelete(id int) error {
	var doctors int
	if err := s.DB.QueryRow(`
		SELECT COUNT(*) FROM doctor_specialties ds
		JOIN doctors d ON d.id = ds.doctor_id
		WHERE ds.specialty_id = $1 AND d.is_active = TRUE`, id,
	).Scan(&doctors); err != nil {
		return err
	}
	if doctors > 0 {
		return fmt.Errorf("%w: %d doctor(es) activos tienen esta especialidad", ErrInUse, doctors)
	}

	res, err := s.DB.Exec(
		"UPDATE specialties SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE", id)
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
