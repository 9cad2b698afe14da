// Package catalog fetches the collectible item types offered for selection.
package catalog

import (
	"context"
	"fmt"
	"time"

	"collection-points/internal/common/errors"
	commonhttp "collection-points/internal/common/http"
	"collection-points/internal/models"
)

const ServiceName = "catalog"

type Client struct {
	http *commonhttp.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{http: commonhttp.NewClient(baseURL, timeout)}
}

func NewClientWith(httpClient *commonhttp.Client) *Client {
	return &Client{http: httpClient}
}

// item accepts both imageUrl and image_url spellings.
type item struct {
	ID         *int   `json:"id"`
	Title      string `json:"title"`
	ImageURL   string `json:"imageUrl"`
	ImageURLSn string `json:"image_url"`
}

// ListCatalog returns GET /items. Entries without an id or with a duplicate id
// fail the whole fetch since ids key the selection set.
func (c *Client) ListCatalog(ctx context.Context) ([]models.CatalogEntry, error) {
	var resp []item
	if err := c.http.GetJSON(ctx, "items", &resp); err != nil {
		return nil, errors.NewDirectoryUnavailableError(ServiceName, err)
	}

	entries := make([]models.CatalogEntry, 0, len(resp))
	seen := make(map[int]bool, len(resp))
	for i, it := range resp {
		if it.ID == nil {
			return nil, errors.NewDirectoryUnavailableError(ServiceName, fmt.Errorf("item %d has no id", i))
		}
		if seen[*it.ID] {
			return nil, errors.NewDirectoryUnavailableError(ServiceName, fmt.Errorf("duplicate item id %d", *it.ID))
		}
		seen[*it.ID] = true

		imageURL := it.ImageURL
		if imageURL == "" {
			imageURL = it.ImageURLSn
		}
		entries = append(entries, models.CatalogEntry{ID: *it.ID, Title: it.Title, ImageURL: imageURL})
	}
	return entries, nil
}
