package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	Name      string    `json:"name" gorm:"not null"`
	IsAdmin   bool      `json:"is_admin" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	Subscription *Subscription `json:"subscription,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// PublicProfile returns the user fields safe to hand to clients.
// The password hash never leaves the model.
func (u *User) PublicProfile() map[string]interface{} {
	return map[string]interface{}{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"is_admin":   u.IsAdmin,
		"created_at": u.CreatedAt,
	}
}

// FirstName returns the first space-separated segment of the display name,
// used as the payer first name on PIX charges.
func (u *User) FirstName() string {
	for i := 0; i < len(u.Name); i++ {
		if u.Name[i] == ' ' {
			return u.Name[:i]
		}
	}
	return u.Name
}

// LastName returns everything after the first space, or "User" when the
// display name has a single segment. The gateway requires a non-empty surname.
func (u *User) LastName() string {
	for i := 0; i < len(u.Name); i++ {
		if u.Name[i] == ' ' {
			return u.Name[i+1:]
		}
	}
	return "User"
}
