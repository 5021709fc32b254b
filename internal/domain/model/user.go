package model

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID              string     `gorm:"type:uuid;primaryKey" json:"id"`
	Email           string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name            string     `gorm:"type:varchar(255);not null" json:"name"`
	PhoneNumber     string     `gorm:"type:varchar(32)" json:"phone_number"`
	PasswordHash    string     `gorm:"column:password_hash;not null" json:"-"`
	Role            Role       `gorm:"column:user_type;type:varchar(20);not null;default:'user'" json:"user_type"`
	TokenVersion    int        `gorm:"not null;default:0" json:"-"`
	IsActive        bool       `gorm:"not null;default:true" json:"is_active"`
	DateOfBirth     *time.Time `json:"dob,omitempty"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	PhoneVerifiedAt *time.Time `json:"phone_verified_at,omitempty"`
	LastLoginAt     *time.Time `json:"-"`
	CreatedAt       time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
