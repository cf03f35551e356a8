package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/danielcastellanos/peptidehub-backend/pkg/db/models"
	pkgerrors "github.com/danielcastellanos/peptidehub-backend/pkg/errors"
	"github.com/danielcastellanos/peptidehub-backend/pkg/logger"
	"github.com/danielcastellanos/peptidehub-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRepository is the persistence surface the service depends on.
type ProductRepository interface {
	ListActive(ctx context.Context, params pagination.Params) ([]models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	UpdateImageURL(ctx context.Context, id uuid.UUID, url string) error
}

// Service serves the read-only browsing surface of the catalog.
type Service interface {
	List(ctx context.Context, params pagination.Params) (*PageDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	GetBySlug(ctx context.Context, slug string) (*ProductDTO, error)
	SetImage(ctx context.Context, id uuid.UUID, url string) (*ProductDTO, error)
}

type service struct {
	repo ProductRepository
	logg *logger.Logger
}

// NewService builds a products service backed by the provided repository.
func NewService(repo ProductRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// List pages active products newest-first.
func (s *service) List(ctx context.Context, params pagination.Params) (*PageDTO, error) {
	rows, err := s.repo.ListActive(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	page := &PageDTO{Products: make([]ProductDTO, 0, len(rows))}
	for i := range rows {
		if i == limit {
			last := rows[limit-1]
			page.NextCursor = pagination.EncodeCursor(last.CreatedAt, last.ID)
			break
		}
		page.Products = append(page.Products, toProductDTO(&rows[i]))
	}
	return page, nil
}

// GetByID loads a single catalog entry.
func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLoadError(err)
	}
	dto := toProductDTO(product)
	return &dto, nil
}

// GetBySlug loads a single catalog entry by its URL slug.
func (s *service) GetBySlug(ctx context.Context, slug string) (*ProductDTO, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product slug is required")
	}
	product, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, mapLoadError(err)
	}
	dto := toProductDTO(product)
	return &dto, nil
}

// SetImage attaches a stored image url to a product.
func (s *service) SetImage(ctx context.Context, id uuid.UUID, url string) (*ProductDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if strings.TrimSpace(url) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image url is required")
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, mapLoadError(err)
	}
	if err := s.repo.UpdateImageURL(ctx, id, url); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product image")
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload product")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "product_id", id.String()), "product image updated")
	}
	dto := toProductDTO(product)
	return &dto, nil
}

func mapLoadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
}
