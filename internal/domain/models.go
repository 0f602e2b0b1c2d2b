package domain

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TypeSale    TransactionType = "sale"
	TypeCredit  TransactionType = "credit"
	TypeExpense TransactionType = "expense"
)

// ConsumesStock reports whether this type draws down product stock.
func (t TransactionType) ConsumesStock() bool {
	return t == TypeSale || t == TypeCredit
}

// Product mirrors one remote catalog row. Stock is authoritative remotely;
// the local copy may be stale or optimistically decremented while offline.
type Product struct {
	ID          string  `db:"id" json:"id"`
	StoreID     string  `db:"store_id" json:"store_id"`
	UserID      string  `db:"user_id" json:"user_id,omitempty"`
	Name        string  `db:"name" json:"name"`
	Description string  `db:"description" json:"description,omitempty"`
	Category    string  `db:"category" json:"category,omitempty"`
	UnitPrice   float64 `db:"unit_price" json:"unit_price"`
	Stock       int     `db:"stock" json:"stock"`
	CreatedAt   string  `db:"created_at" json:"created_at"`
}

// OutboxEntry is a pending or confirmed transaction record. Entries are
// created by the write router while offline, flipped to synced by the
// uploader, and never deleted (they double as the offline ledger).
type OutboxEntry struct {
	LocalID       int64           `db:"local_id" json:"local_id"`
	ClientRef     string          `db:"client_ref" json:"client_ref"`
	TransactionID string          `db:"transaction_id" json:"transaction_id,omitempty"`
	UserID        string          `db:"user_id" json:"user_id"`
	StoreID       string          `db:"store_id" json:"store_id"`
	ProductID     string          `db:"product_id" json:"product_id,omitempty"`
	ProductName   string          `db:"product_name" json:"product_name,omitempty"`
	UnitPrice     float64         `db:"unit_price" json:"unit_price"`
	TotalPrice    float64         `db:"total_price" json:"total_price"`
	Quantity      int             `db:"quantity" json:"quantity"`
	Type          TransactionType `db:"type" json:"type"`
	Description   string          `db:"description" json:"description,omitempty"`
	InvoiceRef    string          `db:"invoice_ref" json:"invoice_ref,omitempty"`
	CreatedAt     string          `db:"created_at" json:"created_at"`
	Synced        bool            `db:"synced" json:"synced"`
	LastError     string          `db:"last_error" json:"last_error,omitempty"`
}

// Identity is the cached snapshot of the authenticated user. Without it the
// engine cannot process any command while offline.
type Identity struct {
	UserID               string `db:"user_id" json:"user_id"`
	Name                 string `db:"name" json:"name,omitempty"`
	Email                string `db:"email" json:"email"`
	Role                 string `db:"role" json:"role"`
	StoreID              string `db:"store_id" json:"store_id"`
	IsActive             bool   `db:"is_active" json:"is_active"`
	SubscriptionDaysLeft *int   `db:"subscription_days_left" json:"subscription_days_left,omitempty"`
	PINHash              string `db:"pin_hash" json:"-"`
}

// Store is the cached snapshot of the caller's store record.
type Store struct {
	StoreID     string `db:"store_id" json:"store_id"`
	Name        string `db:"store_name" json:"store_name"`
	Address     string `db:"store_address" json:"store_address,omitempty"`
	PhoneNumber string `db:"store_phone" json:"store_phone,omitempty"`
}

// SessionContext identifies the acting user and store for a single write.
// It is resolved per operation (remotely when online, from the cached
// identity when offline) and passed explicitly rather than read from
// hidden global state.
type SessionContext struct {
	UserID  string `json:"user_id"`
	StoreID string `json:"store_id"`
}

// WriteState distinguishes the two durability levels a write can end in.
type WriteState string

const (
	// WriteCommitted means the transaction is durable in the remote store.
	WriteCommitted WriteState = "committed"
	// WriteQueued means the transaction is durable in the local outbox only.
	WriteQueued WriteState = "queued"
)

// WriteOutcome is the result of a routed write.
type WriteOutcome struct {
	State         WriteState `json:"state"`
	TransactionID string     `json:"transaction_id,omitempty"`
	LocalID       int64      `json:"local_id,omitempty"`
	ClientRef     string     `json:"client_ref,omitempty"`
	TotalPrice    float64    `json:"total_price"`
}

// InvoiceLine pairs one line's outcome with its error, if any. Line
// failures do not abort the remaining lines.
type InvoiceLine struct {
	Outcome WriteOutcome `json:"outcome,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// InvoiceOutcome reports the fan-out of a recorded invoice.
type InvoiceOutcome struct {
	InvoiceRef string        `json:"invoice_ref"`
	Lines      []InvoiceLine `json:"lines"`
}

// SyncSummary aggregates one outbox drain.
type SyncSummary struct {
	Synced       int `json:"synced"`
	Skipped      int `json:"skipped"`
	Failed       int `json:"failed"`
	TotalPending int `json:"total_pending"`
}

// SyncReport aggregates a full sync run. Success tracks the refresher:
// partial upload failures are surfaced in Upload but do not fail the sync.
type SyncReport struct {
	Success bool        `json:"success"`
	Reason  string      `json:"reason,omitempty"`
	Upload  SyncSummary `json:"upload"`
}
