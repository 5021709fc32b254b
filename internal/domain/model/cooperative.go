package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cooperative struct {
	ID              string          `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string          `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	Community       string          `gorm:"type:varchar(255);not null" json:"community"`
	RegistrationFee decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"registration_fee"`
	MonthlyFee      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"monthly_fee"`
	MinimalShare    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"minimal_share"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 組合員
type CooperativeMember struct {
	ID                  string       `gorm:"type:uuid;primaryKey" json:"id"`
	Name                string       `gorm:"type:varchar(255);not null;index" json:"name"`
	CooperativeID       string       `gorm:"type:uuid;not null;index" json:"cooperative_id"`
	Cooperative         *Cooperative `gorm:"foreignKey:CooperativeID" json:"cooperative,omitempty"`
	PhoneNumber         string       `gorm:"type:varchar(32);not null;uniqueIndex" json:"phone_number"`
	HouseNumber         string       `gorm:"type:varchar(64)" json:"house_number"`
	GPSAddress          string       `gorm:"column:gps_address;type:varchar(64)" json:"gps_address"`
	Image               string       `gorm:"type:text" json:"image"`
	IDType              string       `gorm:"column:id_type;type:varchar(64)" json:"id_type"`
	IDNumber            string       `gorm:"column:id_number;type:varchar(64)" json:"id_number"`
	Community           string       `gorm:"type:varchar(255)" json:"community"`
	District            string       `gorm:"type:varchar(255)" json:"district"`
	Region              string       `gorm:"type:varchar(255)" json:"region"`
	DateOfBirth         *time.Time   `json:"dob,omitempty"`
	Education           string       `gorm:"type:varchar(255)" json:"education"`
	Occupation          string       `gorm:"type:varchar(255)" json:"occupation"`
	SecondaryOccupation string       `gorm:"type:varchar(255)" json:"secondary_occupation"`
	Crops               string       `gorm:"type:text" json:"crops"`
	FarmSize            string       `gorm:"type:varchar(64)" json:"farm_size"`
	CreatedAt           time.Time    `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time    `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
