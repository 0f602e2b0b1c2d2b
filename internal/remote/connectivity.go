package remote

import (
	"context"
	"net/http"
	"time"
)

// Probe answers the Online question by pinging a health endpoint with a
// short deadline. A point-in-time check only: connectivity can flip between
// the probe and the operation it gates.
type Probe struct {
	URL    string
	Client *http.Client
}

// NewProbe builds a Probe with a deliberately short timeout so offline
// detection stays fast.
func NewProbe(url string) *Probe {
	return &Probe{URL: url, Client: &http.Client{Timeout: 3 * time.Second}}
}

var _ Oracle = (*Probe)(nil)

func (p *Probe) Online(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return false
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 500
}
