package model

import "time"

type NotificationChannel string

const (
	ChannelSMS   NotificationChannel = "sms"
	ChannelEmail NotificationChannel = "email"
)

type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// 送信待ちの通知（outbox）。業務処理と同じTxで積み、dispatcherが後から送る。
type Notification struct {
	ID            string              `gorm:"type:uuid;primaryKey" json:"id"`
	Channel       NotificationChannel `gorm:"type:varchar(10);not null" json:"channel"`
	Recipient     string              `gorm:"type:varchar(255);not null" json:"recipient"`
	RecipientName string              `gorm:"type:varchar(255)" json:"recipient_name"`
	Subject       string              `gorm:"type:varchar(255)" json:"subject"`
	Body          string              `gorm:"type:text;not null" json:"body"`
	ActionURL     string              `gorm:"type:text" json:"action_url"`
	LinkLabel     string              `gorm:"type:varchar(255)" json:"link_label"`
	ActionLabel   string              `gorm:"type:varchar(255)" json:"action_label"`
	Status        NotificationStatus  `gorm:"type:varchar(10);not null;index:idx_notifications_due,priority:1" json:"status"`
	Attempts      int                 `gorm:"not null;default:0" json:"attempts"`
	LastError     string              `gorm:"type:text" json:"last_error"`
	NextAttemptAt time.Time           `gorm:"not null;index:idx_notifications_due,priority:2" json:"next_attempt_at"`
	SentAt        *time.Time          `json:"sent_at,omitempty"`
	CreatedAt     time.Time           `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time           `gorm:"not null" json:"updated_at"`
}
