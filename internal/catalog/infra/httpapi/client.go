package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dwikikusuma/resto-pos/internal/catalog/domain"
	"github.com/shopspring/decimal"
)

// Client fetches the catalog from the backend of record.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: baseURL, token: token, http: hc}
}

type productDTO struct {
	ID          string      `json:"_id"`
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Price       json.Number `json:"price"`
	Quantity    int         `json:"quantity"`
	IsAvailable bool        `json:"isAvailable"`
	Options     []optionDTO `json:"options"`
}

type optionDTO struct {
	Label string      `json:"label"`
	Price json.Number `json:"price"`
}

func (c *Client) ListItems(ctx context.Context) ([]domain.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list products: backend returned %s", resp.Status)
	}

	var dtos []productDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		return nil, fmt.Errorf("list products: decode: %w", err)
	}

	items := make([]domain.Item, 0, len(dtos))
	for _, d := range dtos {
		price, err := decimal.NewFromString(d.Price.String())
		if err != nil {
			return nil, fmt.Errorf("list products: item %s: bad price %q", d.ID, d.Price)
		}

		opts := make([]domain.Option, 0, len(d.Options))
		for _, o := range d.Options {
			op, err := decimal.NewFromString(o.Price.String())
			if err != nil {
				return nil, fmt.Errorf("list products: item %s: bad option price %q", d.ID, o.Price)
			}
			opts = append(opts, domain.Option{Label: o.Label, Price: op})
		}

		items = append(items, domain.Item{
			ID:        d.ID,
			Name:      d.Name,
			Category:  d.Category,
			Price:     price,
			Stock:     d.Quantity,
			Available: d.IsAvailable,
			Options:   opts,
		})
	}
	return items, nil
}
