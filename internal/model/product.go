package model

import "time"

// Product represents a catalog item with its live stock counter.
type Product struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Price       int64      `json:"price"`
	SalePrice   *int64     `json:"salePrice,omitempty"`
	SaleEndsAt  *time.Time `json:"saleEndsAt,omitempty"`
	Stock       int        `json:"stock"`
	ShippingFee int64      `json:"shippingFee"`
	ImageURL    string     `json:"imageUrl,omitempty"`
}

// FreeShipping reports whether the product ships without a fee.
func (p *Product) FreeShipping() bool {
	return p.ShippingFee == 0
}

// ProductView is the API representation of a product in listings.
type ProductView struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Price          int64      `json:"price"`
	EffectivePrice int64      `json:"effectivePrice"`
	OnSale         bool       `json:"onSale"`
	SaleEndsAt     *time.Time `json:"saleEndsAt,omitempty"`
	Stock          int        `json:"stock"`
	FreeShipping   bool       `json:"freeShipping"`
	ImageURL       string     `json:"imageUrl,omitempty"`
}

// ProductListRequest is the query DTO for GET /api/products
type ProductListRequest struct {
	Query  string `query:"q" validate:"omitempty,notblank,max=100"`
	Limit  int    `query:"limit" validate:"gte=0,lte=100"`
	Offset int    `query:"offset" validate:"gte=0"`
}

// ProductListResponse is the API response for GET /api/products
type ProductListResponse struct {
	Products []ProductView `json:"products"`
}
