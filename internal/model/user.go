package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the single role a user holds.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents an authenticated user in the system.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name         string    `json:"name" gorm:"size:50;not null"`
	Email        string    `json:"email" gorm:"size:254;not null;index"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role         Role      `json:"role" gorm:"size:16;not null;default:'user'"`
	IsActive     bool      `json:"isActive" gorm:"not null;default:true;index"`
	CreatedAt    time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// PublicUser is the projection returned by authentication endpoints.
type PublicUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  Role      `json:"role"`
}

// Public returns the public projection of u.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// SessionUser is the minimal identity kept in a session or a token.
type SessionUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  Role      `json:"role"`
}

// IsAdmin reports whether the identity holds the administrator role.
func (s SessionUser) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// SessionUser returns the session projection of p.
func (p PublicUser) SessionUser() SessionUser {
	return SessionUser{ID: p.ID, Email: p.Email, Name: p.Name, Role: p.Role}
}

// UserPatch lists the user fields an administrator may change.
// Nil fields are left untouched.
type UserPatch struct {
	Name  *string `json:"name,omitempty" form:"name" validate:"omitempty,min=2,max=50"`
	Email *string `json:"email,omitempty" form:"email" validate:"omitempty,email,max=254"`
	Role  *Role   `json:"role,omitempty" form:"role" validate:"omitempty,oneof=user admin"`
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Role == nil
}
