package products

import (
	"time"

	"github.com/danielcastellanos/peptidehub-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDTO is the API-facing view of a catalog entry.
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description *string         `json:"description,omitempty"`
	Category    string          `json:"category"`
	VialSizeMG  int             `json:"vial_size_mg"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ImageURL    *string         `json:"image_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// PageDTO is one page of catalog entries with the cursor for the next one.
type PageDTO struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func toProductDTO(m *models.Product) ProductDTO {
	return ProductDTO{
		ID:          m.ID,
		Name:        m.Name,
		Slug:        m.Slug,
		Description: m.Description,
		Category:    m.Category,
		VialSizeMG:  m.VialSizeMG,
		UnitPrice:   m.UnitPrice,
		ImageURL:    m.ImageURL,
		CreatedAt:   m.CreatedAt,
	}
}
