package domain

// TransactionCommand is one validated write supplied by the surrounding
// application. UnitPrice is always caller-supplied; when a product id is
// given, the catalog name overrides ProductName. TotalPrice is computed by
// the engine and never trusted from the caller.
type TransactionCommand struct {
	Type        TransactionType `json:"type" validate:"required,oneof=sale credit expense"`
	ProductID   string          `json:"product_id" validate:"omitempty,max=64"`
	ProductName string          `json:"product_name" validate:"omitempty,max=120"`
	UnitPrice   float64         `json:"unit_price" validate:"gte=0"`
	Quantity    int             `json:"quantity" validate:"required,gte=1"`
	Description string          `json:"description" validate:"omitempty,max=500"`
}

// InvoiceCommand fans out to one transaction per line, all sharing one
// generated invoice reference.
type InvoiceCommand struct {
	Description string               `json:"description" validate:"omitempty,max=500"`
	Lines       []TransactionCommand `json:"lines" validate:"required,min=1,dive"`
}
