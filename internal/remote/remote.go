// Package remote defines the engine's view of the authoritative hosted
// backend. The engine depends only on the Store interface; the HTTP client
// in this package is one implementation of it.
package remote

import (
	"context"
	"time"

	"lakupos/internal/domain"
)

// Identity is the currently authenticated remote user.
type Identity struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	StoreID string `json:"store_id"`
}

// Profile is the remote user profile row.
type Profile struct {
	StoreID  string `json:"store_id"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

// StoreInfo is the remote store record.
type StoreInfo struct {
	StoreName        string `json:"store_name"`
	StoreAddress     string `json:"store_address"`
	StorePhoneNumber string `json:"store_phone_number"`
}

// ProductStock is the authoritative stock and name for one product.
type ProductStock struct {
	Stock int    `json:"stock"`
	Name  string `json:"name"`
}

// TransactionRecord is the payload for a remote transaction insert.
// ClientRef is a client-generated idempotency token (the outbox entry's
// identity), so a retried insert cannot be applied twice.
type TransactionRecord struct {
	ClientRef   string  `json:"client_ref"`
	UserID      string  `json:"user_id"`
	StoreID     string  `json:"store_id"`
	ProductID   string  `json:"product_id,omitempty"`
	ProductName string  `json:"product_name,omitempty"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
	Quantity    int     `json:"quantity"`
	Type        string  `json:"type"`
	Description string  `json:"description,omitempty"`
	InvoiceRef  string  `json:"invoice_ref,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// RecordFromEntry builds the remote payload for a queued entry.
func RecordFromEntry(e domain.OutboxEntry) TransactionRecord {
	return TransactionRecord{
		ClientRef:   e.ClientRef,
		UserID:      e.UserID,
		StoreID:     e.StoreID,
		ProductID:   e.ProductID,
		ProductName: e.ProductName,
		UnitPrice:   e.UnitPrice,
		TotalPrice:  e.TotalPrice,
		Quantity:    e.Quantity,
		Type:        string(e.Type),
		Description: e.Description,
		InvoiceRef:  e.InvoiceRef,
		CreatedAt:   e.CreatedAt,
	}
}

// Store is the authoritative remote backend. Getters returning a pointer
// return (nil, nil) when the resource does not exist; every transport
// failure comes back as a *domain.RemoteError.
type Store interface {
	CurrentIdentity(ctx context.Context) (*Identity, error)
	Profile(ctx context.Context, userID string) (*Profile, error)
	StoreInfo(ctx context.Context, storeID string) (*StoreInfo, error)
	ListProducts(ctx context.Context, storeID string) ([]domain.Product, error)
	ProductStock(ctx context.Context, productID string) (*ProductStock, error)
	UpdateProductStock(ctx context.Context, productID string, newStock int) error
	InsertTransaction(ctx context.Context, rec TransactionRecord) (string, error)
	SubscriptionEndDate(ctx context.Context, storeID string) (*time.Time, error)
}

// Oracle reports point-in-time connectivity. The answer is never cached
// beyond a single operation; every caller tolerates a stale answer.
type Oracle interface {
	Online(ctx context.Context) bool
}
