package orders

import (
	"time"

	"github.com/danielcastellanos/peptidehub-backend/pkg/db/models"
	"github.com/danielcastellanos/peptidehub-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO is the API-facing view of a placed order.
type OrderDTO struct {
	ID            uuid.UUID           `json:"id"`
	OrderCode     string              `json:"order_code"`
	CustomerName  string              `json:"customer_name"`
	PurchaseMode  enums.PurchaseMode  `json:"purchase_mode"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	Status        enums.OrderStatus   `json:"status"`
	Items         []OrderItemDTO      `json:"items"`
	Batch         *BatchRefDTO        `json:"batch,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// OrderItemDTO is one line of an order.
type OrderItemDTO struct {
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Vials       int             `json:"vials"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// BatchRefDTO names the batch an order was pooled into.
type BatchRefDTO struct {
	ID     uuid.UUID         `json:"id"`
	Name   string            `json:"name"`
	Status enums.BatchStatus `json:"status"`
}

// SummaryDTO holds the dashboard headline figures.
type SummaryDTO struct {
	TotalOrders int             `json:"total_orders"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
}

// PageDTO is one page of orders with the cursor for the next one.
type PageDTO struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func toOrderDTO(m *models.Order) OrderDTO {
	dto := OrderDTO{
		ID:            m.ID,
		OrderCode:     m.OrderCode,
		CustomerName:  m.CustomerName,
		PurchaseMode:  m.PurchaseMode,
		TotalAmount:   m.TotalAmount,
		PaymentStatus: m.PaymentStatus,
		Status:        m.Status,
		CreatedAt:     m.CreatedAt,
		Items:         make([]OrderItemDTO, 0, len(m.Items)),
	}
	for _, item := range m.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ProductID:   item.ProductID,
			Name:        item.Name,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Vials:       item.Vials,
			TotalAmount: item.TotalAmount,
		})
	}
	if m.Batch != nil {
		dto.Batch = &BatchRefDTO{
			ID:     m.Batch.ID,
			Name:   m.Batch.Name,
			Status: m.Batch.Status,
		}
	}
	return dto
}
