package model

// CartLine is a cart row joined with the live product state it refers to.
type CartLine struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice int64   `json:"unitPrice"` // effective price at read time
	Product   Product `json:"-"`
}

// CartAggregate is the priced content of a cart (or of a direct purchase).
type CartAggregate struct {
	Lines           []CartLine
	Subtotal        int64
	BaseShippingFee int64
}

// CartView is the API response for GET /api/cart
type CartView struct {
	Items       []CartLine `json:"items"`
	Subtotal    int64      `json:"subtotal"`
	ShippingFee int64      `json:"shippingFee"`
}

// AddCartItemRequest is the DTO for POST /api/cart/add
type AddCartItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gte=1,lte=999"`
}

// UpdateCartItemRequest is the DTO for POST /api/cart/update. A zero quantity removes the line.
type UpdateCartItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  *int  `json:"quantity" validate:"required,gte=0,lte=999"`
}
