package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Adagu69/calendario-medico-sub000/internal/catalogo/models"
	"github.com/Adagu69/calendario-medico-sub000/pkg/utils"
)

var (
	ErrNotFound = errors.New("registro no encontrado")
	ErrInUse    = errors.New("el registro tiene dependencias activas")
	ErrDuplicate = errors.New("ya existe un registro con ese nombre")
)

type SectionService struct {
	DB *sql.DB
}

func NewSectionService(db *sql.DB) *SectionService {
	return &SectionService{DB: db}
}

func (s *SectionService) List(includeInactive bool) ([]models.Section, error) {
	query := "SELECT id, name, is_active, created_at, updated_at FROM sections"
	if !includeInactive {
		query += " WHERE is_active = TRUE"
	}
	query += " ORDER BY name"

	rows, err := s.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query error: %v", err)
	}
	defer rows.Close()

	var sections []models.Section
	for rows.Next() {
		var sec models.Section
		if err := rows.Scan(&sec.ID, &sec.Name, &sec.IsActive, &sec.CreatedAt, &sec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %v", err)
		}
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

func (s *SectionService) GetByID(id int) (*models.Section, error) {
	var sec models.Section
	err := s.DB.QueryRow(
		"SELECT id, name, is_active, created_at, updated_at FROM sections WHERE id = $1", id,
	).Scan(&sec.ID, &sec.Name, &sec.IsActive, &sec.CreatedAt, &sec.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sec, nil
}

func (s *SectionService) Create(name string) (*models.Section, error) {
	var sec models.Section
	err := s.DB.QueryRow(
		`INSERT INTO sections (name) VALUES ($1)
		 RETURNING id, name, is_active, created_at, updated_at`, name,
	).Scan(&sec.ID, &sec.Name, &sec.IsActive, &sec.CreatedAt, &sec.UpdatedAt)
	if err != nil {
		if utils.IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return &sec, nil
}

func (s *SectionService) Update(id int, name string, isActive bool) (*models.Section, error) {
	var sec models.Section
	err := s.DB.QueryRow(
		`UPDATE sections SET name = $1, is_active = $2, updated_at = NOW()
		 WHERE id = $3
		 RETURNING id, name, is_active, created_at, updated_at`, name, isActive, id,
	).Scan(&sec.ID, &sec.Name, &sec.IsActive, &sec.CreatedAt, &sec.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		if utils.IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return &sec, nil
}

// SoftDelete desactiva la sección. Si tiene doctores activos asignados se
// rechaza con ErrInUse en vez de dejar doctores colgando de una sección muerta.
func (s *SectionService) SoftDelete(id int) error {
	var doctors int
	if err := s.DB.QueryRow(
		"SELECT COUNT(*) FROM doctors WHERE section_id = $1 AND is_active = TRUE", id,
	).Scan(&doctors); err != nil {
		return err
	}
	if doctors > 0 {
		return fmt.Errorf("%w: %d doctor(es) activos pertenecen a esta sección", ErrInUse, doctors)
	}

	res, err := s.DB.Exec(
		"UPDATE sections SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE", id)
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
