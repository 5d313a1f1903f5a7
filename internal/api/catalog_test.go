package api

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waveshop/shopclient/internal/shoptest"
)

func TestFetchProducts(t *testing.T) {
	_, client := newTestShop(t)
	catalog := NewCatalogClient(client)

	products := catalog.FetchProducts(context.Background())
	require.Len(t, products, 3)
	assert.Equal(t, "Watermelon Rations", products[0].Name)
	assert.Equal(t, 300, products[0].UnitPrice)
}

func TestFetchProducts_ServerErrorDegradesToEmpty(t *testing.T) {
	fake, client := newTestShop(t)
	fake.SetFailProducts(true)

	catalog := NewCatalogClient(client)
	products := catalog.FetchProducts(context.Background())

	assert.Empty(t, products)
	assert.NotNil(t, products)
}

// Enough consecutive transport failures open the breaker; fetches made
// while it is open must still degrade to an empty list, never an error.
func TestFetchProducts_BreakerOpenDegradesToEmpty(t *testing.T) {
	fake := shoptest.NewServer(testProducts)
	srv := httptest.NewServer(fake.Router())
	client, err := NewClient(srv.URL, time.Second)
	require.NoError(t, err)
	srv.Close()

	catalog := NewCatalogClient(client)
	for i := 0; i < 8; i++ {
		products := catalog.FetchProducts(context.Background())
		assert.Empty(t, products)
		assert.NotNil(t, products)
	}
}

func TestFetchProducts_ServerUnreachableDegradesToEmpty(t *testing.T) {
	fake := shoptest.NewServer(testProducts)
	srv := httptest.NewServer(fake.Router())
	client, err := NewClient(srv.URL, time.Second)
	require.NoError(t, err)
	srv.Close()

	catalog := NewCatalogClient(client)
	assert.Empty(t, catalog.FetchProducts(context.Background()))
}
