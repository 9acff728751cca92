package services

import (
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Adagu69/calendario-medico-sub000/internal/personal/models"
	"github.com/Adagu69/calendario-medico-sub000/pkg/utils"
)

var (
	ErrNotFound  = errors.New("registro no encontrado")
	ErrDuplicate = errors.New("username o email ya registrados")
)

type UserService struct {
	DB *sql.DB
}

func NewUserService(db *sql.DB) *UserService {
	return &UserService{DB: db}
}

const userColumns = "id, username, email, full_name, role, section_id, is_active, last_login, created_at, updated_at"

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var (
		u         models.User
		sectionID sql.NullInt64
		lastLogin sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.Role,
		&sectionID, &u.IsActive, &lastLogin, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if sectionID.Valid {
		id := int(sectionID.Int64)
		u.SectionID = &id
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return &u, nil
}

func (s *UserService) List(includeInactive bool) ([]models.User, error) {
	query := "SELECT " + userColumns + " FROM users"
	if !includeInactive {
		query += " WHERE is_active = TRUE"
	}
	query += " ORDER BY full_name"

	rows, err := s.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query error: %v", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %v", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *UserService) GetByID(id int) (*models.User, error) {
	u, err := scanUser(s.DB.QueryRow("SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

type UserInput struct {
	Username  string
	Email     string
	Password  string
	FullName  string
	Role      string
	SectionID *int
}

func (s *UserService) Create(in UserInput) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u, err := scanUser(s.DB.QueryRow(
		`INSERT INTO users (username, email, password_hash, full_name, role, section_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+userColumns,
		in.Username, in.Email, string(hash), in.FullName, in.Role, in.SectionID))
	if err != nil {
		if utils.IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		if utils.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: la sección indicada no existe", ErrNotFound)
		}
		return nil, err
	}
	return u, nil
}

// Update actualiza los datos de la cuenta; si password viene vacío se conserva
// el hash actual.
func (s *UserService) Update(id int, in UserInput, isActive bool) (*models.User, error) {
	query := `
		UPDATE users SET username = $1, email = $2, full_name = $3, role = $4,
		       section_id = $5, is_active = $6, updated_at = NOW()`
	args := []interface{}{in.Username, in.Email, in.FullName, in.Role, in.SectionID, isActive}

	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		args = append(args, string(hash))
		query += fmt.Sprintf(", password_hash = $%d", len(args))
	}
	args = append(args, id)
	query += fmt.Sprintf(" WHERE id = $%d RETURNING %s", len(args), userColumns)

	u, err := scanUser(s.DB.QueryRow(query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		if utils.IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return u, nil
}

func (s *UserService) SoftDelete(id int) error {
	res, err := s.DB.Exec(
		"UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE", id)
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
