package model

import "time"

type VerificationType string

const (
	VerificationEmail         VerificationType = "email"
	VerificationPhone         VerificationType = "phone"
	VerificationPasswordReset VerificationType = "password_reset"
)

// メール確認・パスワード再設定用のワンタイムトークン
type Verification struct {
	ID        string           `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string           `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      VerificationType `gorm:"type:varchar(20);not null" json:"type"`
	Token     string           `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`
	CreatedAt time.Time        `gorm:"not null" json:"created_at"`
}
