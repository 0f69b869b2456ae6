package model

import (
	"time"

	"github.com/google/uuid"
)

// RedemptionModel mirrors the 'redemptions' table.
type RedemptionModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null"`
	PointsSpent int       `gorm:"not null"`
	Quantity    int       `gorm:"not null;default:1"`
	Fulfillment string    `gorm:"type:varchar(20);not null"`
	Status      string    `gorm:"type:varchar(20);not null"`
	Notes       string    `gorm:"type:text"`

	ShipName       string `gorm:"type:varchar(100)"`
	ShipStreet     string `gorm:"type:varchar(200)"`
	ShipNumber     string `gorm:"type:varchar(20)"`
	ShipApartment  string `gorm:"type:varchar(50)"`
	ShipCity       string `gorm:"type:varchar(100)"`
	ShipCommune    string `gorm:"type:varchar(100)"`
	ShipRegion     string `gorm:"type:varchar(100)"`
	ShipPostalCode string `gorm:"type:varchar(20)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (RedemptionModel) TableName() string {
	return "redemptions"
}
