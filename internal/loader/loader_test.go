package loader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Ashfaaq98/console-cases/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const datasetJSON = `[
	{"company":"First National","description":"Bank inflated deposits","sourceUrl":"https://example.com/a","manipulationType":["accounting"],"reportedDate":"2024-01-10"},
	{"company":"Acme","description":"Fake reviews","sourceUrl":"https://example.com/b","manipulationType":["reviews"," ","astroturfing"],"reportedDate":"2024-02-11"}
]`

func TestLoadSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, datasetJSON)
	}))
	defer server.Close()

	items, err := New(Options{}).Load(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "First National", items[0].Company)
	assert.Equal(t, "https://example.com/a", items[0].SourceURL)
	assert.Equal(t, []string{"reviews", "astroturfing"}, items[1].ManipulationType)
	assert.Equal(t, "2024-02-11", items[1].ReportedDate)
}

func TestLoadNon2xxFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	items, err := New(Options{}).Load(context.Background(), server.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatus))
	assert.Nil(t, items)
}

func TestLoadTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New(Options{}).Load(context.Background(), url)
	require.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cases.json"), []byte(datasetJSON), 0644))

	l := New(Options{BaseDir: dir})
	items, err := l.Load(context.Background(), "cases.json")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = l.Load(context.Background(), "file://"+filepath.Join(dir, "cases.json"))
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = l.Load(context.Background(), "missing.json")
	assert.Error(t, err)
}

func TestLoadUsesCache(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = fmt.Fprint(w, datasetJSON)
	}))
	defer server.Close()

	l := New(Options{Cache: cache.NewMemoryCache(time.Minute, time.Minute)})
	for i := 0; i < 3; i++ {
		items, err := l.Load(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Len(t, items, 2)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestLoadDoesNotCacheFailures(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			_, _ = fmt.Fprint(w, `{"not":"an array"}`)
			return
		}
		_, _ = fmt.Fprint(w, datasetJSON)
	}))
	defer server.Close()

	l := New(Options{Cache: cache.NewMemoryCache(time.Minute, time.Minute)})
	_, err := l.Load(context.Background(), server.URL)
	require.Error(t, err)

	items, err := l.Load(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestDecodeRejectsMalformedShapes(t *testing.T) {
	cases := map[string]string{
		"object":        `{"company":"x"}`,
		"null":          `null`,
		"empty":         ``,
		"scalar entry":  `[1]`,
		"wrong type":    `[{"company":42}]`,
		"tags not list": `[{"manipulationType":"a,b"}]`,
		"truncated":     `[{"company":"x"`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedDataset))
		})
	}
}

func TestDecodeDefaultsMissingFields(t *testing.T) {
	items, err := Decode([]byte(`[{"company":"Only name"},{"manipulationType":null}]`))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Only name", items[0].Company)
	assert.Equal(t, "", items[0].Description)
	assert.NotNil(t, items[0].ManipulationType)
	assert.Empty(t, items[1].ManipulationType)
}

func TestDecodeEmptyArray(t *testing.T) {
	items, err := Decode([]byte(` [] `))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestLoadTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	start := time.Now()
	_, err := New(Options{Timeout: 50 * time.Millisecond}).Load(context.Background(), server.URL)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestDecodeDropsBlankTags(t *testing.T) {
	items, err := Decode([]byte(`[{"manipulationType":["", " ", "a"]}]`))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, []string{"a"}, items[0].ManipulationType)
}

func TestLoadRejectsOversizedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, datasetJSON)
	}))
	defer server.Close()

	limit := int64(len(datasetJSON))
	_, err := New(Options{MaxBytes: limit - 1}).Load(context.Background(), server.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooLarge))
	assert.False(t, errors.Is(err, ErrMalformedDataset))

	items, err := New(Options{MaxBytes: limit}).Load(context.Background(), server.URL)
	require.NoError(t, err, "a body of exactly MaxBytes is accepted")
	assert.Len(t, items, 2)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cases.json"), []byte(datasetJSON), 0o644))
	_, err = New(Options{MaxBytes: 16, BaseDir: dir}).Load(context.Background(), "cases.json")
	assert.True(t, errors.Is(err, ErrTooLarge))
}
