package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	IsStaff      bool      `gorm:"not null;default:false" json:"is_staff"`
	OIDCSubject  *string   `gorm:"column:oidc_subject;uniqueIndex" json:"-"` // nil for password accounts
	CreatedAt    time.Time `json:"created_at"`
}

// DisplayName prefers the full name over the username.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	}
	return u.Username
}
