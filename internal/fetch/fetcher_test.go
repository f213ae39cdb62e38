package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"

	bshttp "github.com/wtfsayo/beerscape/internal/http"
)

func newFetcher(t *testing.T, endpoint string) (*Fetcher, *blob.Bucket) {
	t.Helper()

	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	require.NoError(t, err)
	t.Cleanup(func() { bucket.Close() })

	f := New(bshttp.NewClient(bshttp.DefaultOptions()), bucket, Options{
		Endpoint: endpoint + "/download.php?id=%d",
	})
	return f, bucket
}

func TestFetchAcquiredWithDispositionName(t *testing.T) {
	body := `<Recipes><Recipe name="Amber Ale"/></Recipes>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42", r.URL.Query().Get("id"))
		w.Header().Set("Content-Disposition", `attachment; filename="Amber Ale.bsmx"`)
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	f, bucket := newFetcher(t, server.URL)
	res := f.Fetch(context.Background(), 42)

	require.Equal(t, StatusAcquired, res.Status, "err: %v", res.Err)
	assert.Equal(t, "Amber Ale.bsmx", res.Filename)
	assert.Equal(t, int64(len(body)), res.Size)

	stored, err := bucket.ReadAll(context.Background(), "Amber Ale.bsmx")
	require.NoError(t, err)
	assert.Equal(t, body, string(stored))
}

func TestFetchAcquiredDefaultName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<Recipes/>")
	}))
	defer server.Close()

	f, bucket := newFetcher(t, server.URL)
	res := f.Fetch(context.Background(), 7)

	require.Equal(t, StatusAcquired, res.Status)
	assert.Equal(t, "7.bsmx", res.Filename)

	exists, err := bucket.Exists(context.Background(), "7.bsmx")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFetchRejectedOnStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	f, _ := newFetcher(t, server.URL)
	res := f.Fetch(context.Background(), 1)

	assert.Equal(t, StatusRejected, res.Status)
	assert.NoError(t, res.Err)
}

func TestFetchRejectedOnNonMarkupBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "recipe not found")
	}))
	defer server.Close()

	f, bucket := newFetcher(t, server.URL)
	res := f.Fetch(context.Background(), 3)

	assert.Equal(t, StatusRejected, res.Status)

	// Nothing must be written for a rejected probe.
	exists, err := bucket.Exists(context.Background(), "3.bsmx")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFetchRejectedOnEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	f, _ := newFetcher(t, server.URL)
	res := f.Fetch(context.Background(), 4)

	assert.Equal(t, StatusRejected, res.Status)
}

func TestFetchRejectedOnOversizeBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<Recipes>", strings.Repeat("x", 1024), "</Recipes>")
	}))
	defer server.Close()

	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	require.NoError(t, err)
	defer bucket.Close()

	f := New(bshttp.NewClient(bshttp.DefaultOptions()), bucket, Options{
		Endpoint:        server.URL + "/download.php?id=%d",
		MaxResourceSize: 512,
	})
	res := f.Fetch(ctx, 5)

	assert.Equal(t, StatusRejected, res.Status)
}

func TestFetchTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused

	f, _ := newFetcher(t, server.URL)
	res := f.Fetch(context.Background(), 9)

	assert.Equal(t, StatusTransportError, res.Status)
	assert.Error(t, res.Err)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "acquired", StatusAcquired.String())
	assert.Equal(t, "rejected", StatusRejected.String())
	assert.Equal(t, "transport_error", StatusTransportError.String())
}
