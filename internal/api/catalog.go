package api

import (
	"context"
	"log"
	"net/http"

	"github.com/waveshop/shopclient/internal/domain"
)

// CatalogClient fetches the product list. Catalog failure is never
// surfaced: a broken catalog degrades to an empty product list so the
// rest of the client keeps working.
type CatalogClient struct {
	api *Client
}

func NewCatalogClient(api *Client) *CatalogClient {
	return &CatalogClient{api: api}
}

func (c *CatalogClient) FetchProducts(ctx context.Context) []domain.Product {
	resp, err := c.api.do(ctx, http.MethodGet, "/api/products", nil)
	if err != nil {
		log.Printf("Catalog fetch failed: %v", err)
		return []domain.Product{}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		log.Printf("Catalog fetch failed: %v (status %d)", domain.ErrCatalogUnavailable, resp.StatusCode)
		return []domain.Product{}
	}

	var products []domain.Product
	if err := decodeBody(resp, &products); err != nil {
		log.Printf("Catalog fetch failed: %v", err)
		return []domain.Product{}
	}
	return products
}
