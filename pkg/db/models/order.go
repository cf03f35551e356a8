package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/danielcastellanos/peptidehub-backend/pkg/enums"
)

// Order is a placed purchase. Rows are immutable after creation except for
// the status and payment_status transitions.
type Order struct {
	ID            uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderCode     string              `gorm:"column:order_code;type:text;not null;uniqueIndex"`
	ProfileID     *uuid.UUID          `gorm:"column:profile_id;type:uuid"`
	CustomerName  string              `gorm:"column:customer_name;not null;default:''"`
	ContactNumber string              `gorm:"column:contact_number;not null;default:''"`
	PurchaseMode  enums.PurchaseMode  `gorm:"column:purchase_mode;type:text;not null"`
	SubGroupID    *uuid.UUID          `gorm:"column:sub_group_id;type:uuid"`
	BatchID       *uuid.UUID          `gorm:"column:batch_id;type:uuid"`
	Batch         *SubGroupBatch      `gorm:"foreignKey:BatchID"`
	TotalAmount   decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	Status        enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	Items         []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
