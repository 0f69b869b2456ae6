// Package model holds the GORM table mappings for the persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel mirrors the 'users' table. PostgreSQL generates UUIDs via uuid_generate_v7().
type UserModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Name         string    `gorm:"type:varchar(100);not null"`
	Email        string    `gorm:"type:varchar(255);unique;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	TaxID        string    `gorm:"column:tax_id;type:varchar(20)"`
	Phone        string    `gorm:"type:varchar(20)"`
	Role         string    `gorm:"type:varchar(20);not null;default:user"`
	MemberType   string    `gorm:"type:varchar(20);not null;default:normal"`
	Level        string    `gorm:"type:varchar(20);not null"`
	Points       int       `gorm:"not null;default:0"`
	ReferralCode string    `gorm:"type:varchar(10);unique;not null"`
	ReferredBy   string    `gorm:"type:varchar(10)"`
	Active       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time `gorm:"index"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
