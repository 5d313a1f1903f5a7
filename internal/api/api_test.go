package api

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/waveshop/shopclient/internal/domain"
	"github.com/waveshop/shopclient/internal/shoptest"
)

var testProducts = []domain.Product{
	{ID: 1, Name: "Watermelon Rations", UnitPrice: 300, ImageRef: "watermelon.png"},
	{ID: 2, Name: "Skipper's Straw Hat", UnitPrice: 120, ImageRef: "straw_hat.png"},
	{ID: 12, Name: "Anchor", UnitPrice: 15000, ImageRef: "anchor.png"},
}

// newTestShop starts an in-process shop server and a client pointed at it.
func newTestShop(t *testing.T) (*shoptest.Server, *Client) {
	t.Helper()

	fake := shoptest.NewServer(testProducts)
	srv := httptest.NewServer(fake.Router())
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, 5*time.Second)
	require.NoError(t, err)
	return fake, client
}
