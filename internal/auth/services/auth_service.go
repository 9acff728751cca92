package services

import (
	"database/sql"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("credenciales inválidas")

type AuthService struct {
	DB *sql.DB
}

func NewAuthService(db *sql.DB) *AuthService {
	return &AuthService{DB: db}
}

// AuthUser es el usuario autenticado, sin el hash de contraseña.
type AuthUser struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	SectionID int    `json:"section_id,omitempty"`
}

// Authenticate valida el login; identifier puede ser username o email.
// Usuarios inactivos se rechazan igual que una contraseña incorrecta.
func (s *AuthService) Authenticate(identifier, password string) (*AuthUser, error) {
	var (
		u         AuthUser
		hash      string
		sectionID sql.NullInt64
	)
	query := `
		SELECT id, username, email, password_hash, full_name, role, section_id
		FROM users
		WHERE (username = $1 OR email = $1) AND is_active = TRUE`
	err := s.DB.QueryRow(query, identifier).Scan(
		&u.ID, &u.Username, &u.Email, &hash, &u.FullName, &u.Role, &sectionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if sectionID.Valid {
		u.SectionID = int(sectionID.Int64)
	}

	if _, err := s.DB.Exec("UPDATE users SET last_login = NOW() WHERE id = $1", u.ID); err != nil {
		// El login no debe fallar por no poder registrar la marca.
		return &u, nil
	}
	return &u, nil
}
