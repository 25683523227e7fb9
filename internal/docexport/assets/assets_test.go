package assets

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/aisa-it/docexport/internal/docexport/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func newServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	wide := pngBytes(t, 400, 20)
	small := pngBytes(t, 10, 10)

	mux := http.NewServeMux()
	mux.HandleFunc("/wide.png", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		w.Write(wide)
	})
	mux.HandleFunc("/small", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		// тип определяется по содержимому
		w.Write(small)
	})
	mux.HandleFunc("/big.bin", func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte{1}, 4096))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newFetcher(t *testing.T, srv *httptest.Server) *Fetcher {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return NewFetcher(&config.Config{WebURL: u, AssetTimeoutSec: 5, AssetMaxBytes: 2048, AssetMaxWidth: 100})
}

func TestFetchDownscale(t *testing.T) {
	var hits atomic.Int32
	f := newFetcher(t, newServer(t, &hits))

	asset, err := f.Fetch(context.Background(), "/wide.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", asset.ContentType)
	assert.Equal(t, 100, asset.Width)
	assert.Equal(t, 5, asset.Height)

	cfg, err := png.DecodeConfig(bytes.NewReader(asset.Data))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
}

func TestFetchCachesAndDetectsType(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits)
	f := newFetcher(t, srv)

	for range 3 {
		asset, err := f.Fetch(context.Background(), srv.URL+"/small")
		require.NoError(t, err)
		assert.Equal(t, "image/png", asset.ContentType)
		assert.Equal(t, 10, asset.Width)
	}
	assert.EqualValues(t, 1, hits.Load())

	// Относительная и абсолютная ссылка дают один ключ кэша
	_, err := f.Fetch(context.Background(), "/small")
	require.NoError(t, err)
	assert.EqualValues(t, 1, hits.Load())
}

func TestFetchErrors(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits)
	f := newFetcher(t, srv)

	_, err := f.Fetch(context.Background(), "/big.bin")
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = f.Fetch(context.Background(), "/missing.png")
	assert.Error(t, err)

	_, err = f.Fetch(context.Background(), "ftp://example.com/a.png")
	assert.ErrorIs(t, err, ErrUnsupportedURL)

	_, err = NewFetcher(nil).Fetch(context.Background(), "/a.png")
	assert.ErrorIs(t, err, ErrRelativeURL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Fetch(ctx, "/wide.png")
	assert.Error(t, err)
}

func TestDataURI(t *testing.T) {
	var hits atomic.Int32
	f := newFetcher(t, newServer(t, &hits))

	uri, err := f.DataURI(context.Background(), "/small")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	// Уже встроенные данные возвращаются без загрузки
	same, err := f.DataURI(context.Background(), uri)
	require.NoError(t, err)
	assert.Equal(t, uri, same)

	asset, err := f.Fetch(context.Background(), uri)
	require.NoError(t, err)
	assert.Equal(t, 10, asset.Width)
	assert.EqualValues(t, 1, hits.Load())
}

func TestParseDataURI(t *testing.T) {
	asset, err := parseDataURI("data:text/plain,hello%20world")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", asset.ContentType)
	assert.Equal(t, "hello world", string(asset.Data))
	assert.False(t, asset.IsImage())

	_, err = parseDataURI("data:image/png;base64")
	assert.ErrorIs(t, err, ErrInvalidDataURI)

	_, err = parseDataURI("data:image/png;base64,@@@")
	assert.ErrorIs(t, err, ErrInvalidDataURI)
}
