package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fairyhunter13/storefront/internal/model"
)

const (
	defaultProductLimit = 50
	maxProductLimit     = 100
)

// ProductService serves the product catalog.
type ProductService struct {
	products ProductRepositoryInterface
	now      func() time.Time
}

// NewProductService creates a ProductService with the given repository.
func NewProductService(products ProductRepositoryInterface) *ProductService {
	return &ProductService{
		products: products,
		now:      time.Now,
	}
}

// List returns products matching the name query with effective prices at request time.
func (s *ProductService) List(ctx context.Context, req *model.ProductListRequest) (*model.ProductListResponse, error) {
	var q string
	limit, offset := defaultProductLimit, 0
	if req != nil {
		q = strings.TrimSpace(req.Query)
		if req.Limit > 0 {
			limit = min(req.Limit, maxProductLimit)
		}
		offset = max(req.Offset, 0)
	}

	products, err := s.products.List(ctx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	now := s.now()
	views := make([]model.ProductView, 0, len(products))
	for i := range products {
		p := &products[i]
		views = append(views, model.ProductView{
			ID:             p.ID,
			Name:           p.Name,
			Price:          p.Price,
			EffectivePrice: EffectivePrice(p, now),
			OnSale:         onSale(p, now),
			SaleEndsAt:     p.SaleEndsAt,
			Stock:          p.Stock,
			FreeShipping:   p.FreeShipping(),
			ImageURL:       p.ImageURL,
		})
	}
	return &model.ProductListResponse{Products: views}, nil
}
