package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel mirrors the 'orders' table. The shipping address is a snapshot
// flattened into columns; it never references the account's saved addresses.
type OrderModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Number         string          `gorm:"type:varchar(20);unique;not null"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Subtotal       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TierDiscount   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PointsDiscount decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Total          decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PointsSpent    int             `gorm:"not null;default:0"`
	PointsEarned   int             `gorm:"not null;default:0"`
	Status         string          `gorm:"type:varchar(20);not null"`
	PaymentMethod  string          `gorm:"type:varchar(50)"`
	Notes          string          `gorm:"type:text"`
	CreatedBy      string          `gorm:"type:varchar(20);not null"`
	AdminID        *uuid.UUID      `gorm:"type:uuid"`
	AdminName      string          `gorm:"type:varchar(100)"`

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

	Lines []OrderLineModel `gorm:"foreignKey:OrderID"`
}

// TableName explicitly sets the table name for GORM.
func (OrderModel) TableName() string {
	return "orders"
}

// OrderLineModel mirrors the 'order_lines' table. Unit price and product name
// are purchase-time snapshots.
type OrderLineModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int             `gorm:"not null;check:quantity > 0"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

// TableName explicitly sets the table name for GORM.
func (OrderLineModel) TableName() string {
	return "order_lines"
}
