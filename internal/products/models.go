package products

// Product represents a row in the products table. Every attribute column is
// nullable, so the fields are pointers and unset values serialize as null.
type Product struct {
	ID            int64    `json:"id"`
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price"`
	StockQuantity *int     `json:"stock_quantity"`
}

// NewProduct is the create payload. All fields are optional; missing ones are
// stored as null.
type NewProduct struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price"`
	StockQuantity *int     `json:"stock_quantity"`
}

// UpdateProduct is the patch payload: only fields present in the request
// overwrite the stored value, absent fields keep their prior value.
type UpdateProduct struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price"`
	StockQuantity *int     `json:"stock_quantity"`
}
