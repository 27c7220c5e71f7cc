package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"cartdrawer/internal/cart"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cartJSON = `{
	"item_count": 2,
	"total_price": 4000,
	"items": [{
		"key": "abc123",
		"variant_id": 40912345,
		"quantity": 2,
		"title": "Shirt",
		"product_title": "Shirt",
		"variant_title": "Large",
		"final_line_price": 4000,
		"image": "https://cdn.example.com/shirt.jpg",
		"url": "/products/shirt"
	}]
}`

func TestGetCart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/cart.js", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(cartJSON))
	}))
	defer server.Close()

	client := New(server.URL)
	crt, err := client.GetCart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, crt.ItemCount)
	assert.Equal(t, int64(4000), crt.TotalPrice)
	require.Len(t, crt.Items, 1)
	assert.Equal(t, "abc123", crt.Items[0].Key)
}

func TestAddItemPostsContract(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/cart/add.js", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"key":"abc123"}`))
	}))
	defer server.Close()

	client := New(server.URL)
	err := client.AddItem(context.Background(), 40912345, 2, map[string]string{"Engraving": "For Dana"})
	require.NoError(t, err)

	assert.Equal(t, float64(40912345), body["id"])
	assert.Equal(t, float64(2), body["quantity"])
	props, ok := body["properties"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "For Dana", props["Engraving"])
}

func TestChangeItemReturnsCart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/cart/change.js", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		// The change contract addresses lines by key, not variant.
		assert.Equal(t, "abc123", body["id"])
		assert.Equal(t, float64(0), body["quantity"])
		_, _ = w.Write([]byte(`{"item_count": 0, "total_price": 0, "items": []}`))
	}))
	defer server.Close()

	client := New(server.URL)
	crt, err := client.ChangeItem(context.Background(), "abc123", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, crt.ItemCount)
	assert.Empty(t, crt.Items)
}

func TestNonSuccessStatusIsBoundaryError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"description": "Sold out"}`))
	}))
	defer server.Close()

	client := New(server.URL)
	err := client.AddItem(context.Background(), 1, 1, nil)
	require.Error(t, err)

	var be *cart.BoundaryError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, http.StatusUnprocessableEntity, be.StatusCode)
	assert.Equal(t, "Sold out", be.Description)
}

func TestErrorDescriptionFallbacks(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"description", `{"description": "Sold out"}`, "Sold out"},
		{"message fallback", `{"message": "Too many"}`, "Too many"},
		{"html flattened", `{"description": "<p>All <b>1</b> items are in your cart.</p>"}`, "All 1 items are in your cart."},
		{"unparsable", `<html>oops</html>`, ""},
		{"empty", `{}`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, errorDescription([]byte(tc.body)))
		})
	}
}

func TestGetCartDeduplicatesConcurrentFetches(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		<-release
		_, _ = w.Write([]byte(cartJSON))
	}))
	defer server.Close()

	client := New(server.URL)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			crt, err := client.GetCart(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, 2, crt.ItemCount)
		}()
	}
	close(start)
	// Give the goroutines a moment to coalesce on the in-flight fetch.
	time.Sleep(200 * time.Millisecond)
	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, calls, 2, "concurrent fetches should coalesce")
}

func TestMalformedCartJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.GetCart(context.Background())
	require.Error(t, err)
}
