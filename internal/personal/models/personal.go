package models

import "time"

// User es una cuenta del sistema (no confundir con Doctor, que es el recurso
// programable; un doctor no necesariamente tiene cuenta).
type User struct {
	ID        int        `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	Role      string     `json:"role"`
	SectionID *int       `json:"section_id,omitempty"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Doctor struct {
	ID             int       `json:"id"`
	DocumentType   string    `json:"document_type"`
	DocumentNumber string    `json:"document_number"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Profession     string    `json:"profession"`
	License        string    `json:"license"` // CMP
	SectionID      int       `json:"section_id"`
	SectionName    string    `json:"section_name,omitempty"`
	SpecialtyIDs   []int     `json:"specialty_ids"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
