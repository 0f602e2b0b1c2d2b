package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"lakupos/internal/domain"
)

// HTTPStore talks JSON to the hosted backend.
type HTTPStore struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewHTTPStore builds an HTTPStore with the given request timeout.
func NewHTTPStore(baseURL, apiKey string, timeout time.Duration) *HTTPStore {
	return &HTTPStore{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: timeout},
	}
}

var _ Store = (*HTTPStore)(nil)

// doJSON performs one request. A missing resource (404) reports ok=false
// with a nil error; any other failure is a *domain.RemoteError.
func (s *HTTPStore) doJSON(ctx context.Context, op, method, path string, in, out any) (ok bool, err error) {
	var body *bytes.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return false, &domain.RemoteError{Op: op, Err: err}
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.BaseURL+path, body)
	if err != nil {
		return false, &domain.RemoteError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return false, &domain.RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return false, &domain.RemoteError{Op: op, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return false, &domain.RemoteError{Op: op, Err: err}
		}
	}
	return true, nil
}

func (s *HTTPStore) CurrentIdentity(ctx context.Context) (*Identity, error) {
	var id Identity
	ok, err := s.doJSON(ctx, "current identity", http.MethodGet, "/v1/identity", nil, &id)
	if err != nil || !ok {
		return nil, err
	}
	return &id, nil
}

func (s *HTTPStore) Profile(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	ok, err := s.doJSON(ctx, "profile", http.MethodGet, "/v1/profiles/"+url.PathEscape(userID), nil, &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

func (s *HTTPStore) StoreInfo(ctx context.Context, storeID string) (*StoreInfo, error) {
	var st StoreInfo
	ok, err := s.doJSON(ctx, "store", http.MethodGet, "/v1/stores/"+url.PathEscape(storeID), nil, &st)
	if err != nil || !ok {
		return nil, err
	}
	return &st, nil
}

func (s *HTTPStore) ListProducts(ctx context.Context, storeID string) ([]domain.Product, error) {
	var ps []domain.Product
	ok, err := s.doJSON(ctx, "list products", http.MethodGet, "/v1/stores/"+url.PathEscape(storeID)+"/products", nil, &ps)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.RemoteError{Op: "list products", Err: fmt.Errorf("store %s not found", storeID)}
	}
	return ps, nil
}

func (s *HTTPStore) ProductStock(ctx context.Context, productID string) (*ProductStock, error) {
	var ps ProductStock
	ok, err := s.doJSON(ctx, "product stock", http.MethodGet, "/v1/products/"+url.PathEscape(productID)+"/stock", nil, &ps)
	if err != nil || !ok {
		return nil, err
	}
	return &ps, nil
}

func (s *HTTPStore) UpdateProductStock(ctx context.Context, productID string, newStock int) error {
	in := map[string]int{"stock": newStock}
	ok, err := s.doJSON(ctx, "update stock", http.MethodPut, "/v1/products/"+url.PathEscape(productID)+"/stock", in, nil)
	if err != nil {
		return err
	}
	if !ok {
		return &domain.RemoteError{Op: "update stock", Err: fmt.Errorf("product %s not found", productID)}
	}
	return nil
}

func (s *HTTPStore) InsertTransaction(ctx context.Context, rec TransactionRecord) (string, error) {
	var out struct {
		TransactionID string `json:"transaction_id"`
	}
	ok, err := s.doJSON(ctx, "insert transaction", http.MethodPost, "/v1/transactions", rec, &out)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &domain.RemoteError{Op: "insert transaction", Err: fmt.Errorf("endpoint not found")}
	}
	return out.TransactionID, nil
}

func (s *HTTPStore) SubscriptionEndDate(ctx context.Context, storeID string) (*time.Time, error) {
	var out struct {
		EndDate time.Time `json:"end_date"`
	}
	ok, err := s.doJSON(ctx, "subscription", http.MethodGet, "/v1/stores/"+url.PathEscape(storeID)+"/subscription", nil, &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out.EndDate, nil
}
