package product

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pantrysense/pantrysense/internal/clock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func catalogHandler(t *testing.T, tokenRequests *int, routes map[string]string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/mobile-auth/v1/auth/token/anonymous" {
			*tokenRequests++
			assert.Equal(t, "BONNYWEBSHOP", r.Header.Get("X-Application"))
			_, _ = w.Write([]byte(`{"access_token": "anon", "expires_in": 3600}`))
			return
		}
		assert.Equal(t, "Bearer anon", r.Header.Get("Authorization"))
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	}
}

func newCatalogClient(baseURL string) (*Client, *clock.FakeClock) {
	fake := clock.NewFakeClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	client := NewClient(ClientConfig{BaseURL: baseURL, UserAgent: "test"}, fake, zap.NewNop())
	return client, fake
}

func TestClientProductReusesAnonymousToken(t *testing.T) {
	tokenRequests := 0
	upstream := httptest.NewServer(catalogHandler(t, &tokenRequests, map[string]string{
		"/mobile-services/product/detail/v4/fir/wi1": `{"hqId": 1, "webshopId": "wi1", "title": "Melk"}`,
	}))
	defer upstream.Close()

	client, _ := newCatalogClient(upstream.URL)

	first, err := client.Product(context.Background(), "wi1")
	assert.NoError(t, err)
	if assert.NotNil(t, first) {
		assert.Equal(t, "1", first.ProductID)
		assert.Equal(t, "Melk", first.Title)
	}

	_, err = client.Product(context.Background(), "wi1")
	assert.NoError(t, err)
	assert.Equal(t, 1, tokenRequests)
}

func TestClientRefreshesExpiredToken(t *testing.T) {
	tokenRequests := 0
	upstream := httptest.NewServer(catalogHandler(t, &tokenRequests, map[string]string{
		"/mobile-services/product/detail/v4/fir/wi1": `{"hqId": 1, "title": "Melk"}`,
	}))
	defer upstream.Close()

	client, fake := newCatalogClient(upstream.URL)

	_, err := client.Product(context.Background(), "wi1")
	assert.NoError(t, err)

	fake.Advance(2 * time.Hour)

	_, err = client.Product(context.Background(), "wi1")
	assert.NoError(t, err)
	assert.Equal(t, 2, tokenRequests)
}

func TestClientProductNotFoundReturnsNil(t *testing.T) {
	tokenRequests := 0
	upstream := httptest.NewServer(catalogHandler(t, &tokenRequests, nil))
	defer upstream.Close()

	client, _ := newCatalogClient(upstream.URL)

	detail, err := client.Product(context.Background(), "missing")

	assert.NoError(t, err)
	assert.Nil(t, detail)
}

func TestClientSearch(t *testing.T) {
	tokenRequests := 0
	upstream := httptest.NewServer(catalogHandler(t, &tokenRequests, map[string]string{
		"/mobile-services/product/search/v2": `{
			"products": [{"hqId": 1, "title": "Melk", "price": 1.49}],
			"page": {"totalElements": 31}
		}`,
	}))
	defer upstream.Close()

	client, _ := newCatalogClient(upstream.URL)

	resp, err := client.Search(context.Background(), "melk", 0, 20, "RELEVANCE")

	assert.NoError(t, err)
	assert.Equal(t, "melk", resp.Query)
	assert.Equal(t, 31, resp.TotalResults)
	if assert.Len(t, resp.Products, 1) {
		assert.Equal(t, "Melk", resp.Products[0].Title)
	}
}

func TestClientBarcodeRefetchesByWebshopID(t *testing.T) {
	tokenRequests := 0
	upstream := httptest.NewServer(catalogHandler(t, &tokenRequests, map[string]string{
		"/mobile-services/product/search/v1/gtin/8710000000001": `{
			"products": [{"webshopId": "wi1", "title": "Zoekresultaat"}]
		}`,
		"/mobile-services/product/detail/v4/fir/wi1": `{"hqId": 1, "webshopId": "wi1", "title": "Melk"}`,
	}))
	defer upstream.Close()

	client, _ := newCatalogClient(upstream.URL)

	detail, err := client.ProductByBarcode(context.Background(), "8710000000001")

	assert.NoError(t, err)
	if assert.NotNil(t, detail) {
		// The GTIN endpoint answered with a search envelope, so the full
		// record comes from the detail endpoint.
		assert.Equal(t, "Melk", detail.Title)
		assert.Equal(t, "1", detail.ProductID)
	}
}

func TestClientBarcodeDirectProduct(t *testing.T) {
	tokenRequests := 0
	upstream := httptest.NewServer(catalogHandler(t, &tokenRequests, map[string]string{
		"/mobile-services/product/search/v1/gtin/8710000000002": `{"hqId": 2, "title": "Kaas"}`,
	}))
	defer upstream.Close()

	client, _ := newCatalogClient(upstream.URL)

	detail, err := client.ProductByBarcode(context.Background(), "8710000000002")

	assert.NoError(t, err)
	if assert.NotNil(t, detail) {
		assert.Equal(t, "Kaas", detail.Title)
	}
}
