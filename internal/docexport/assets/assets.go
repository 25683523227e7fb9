// Пакет assets загружает изображения, на которые ссылается документ, для встраивания в HTML и PDF.
//
// Основные возможности:
//   - Разрешение относительных ссылок относительно WEB_URL.
//   - Повторные попытки загрузки через go-retryablehttp.
//   - Ограничение размера загружаемого файла.
//   - Уменьшение слишком широких jpeg и png изображений.
//   - Кэш загруженных ассетов на время жизни загрузчика.
//   - Разбор уже встроенных data: URI без обращения к сети.
package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aisa-it/docexport/internal/docexport/config"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/nfnt/resize"
)

var (
	ErrTooLarge       = errors.New("asset exceeds size limit")
	ErrRelativeURL    = errors.New("relative asset url without WEB_URL")
	ErrUnsupportedURL = errors.New("unsupported asset url scheme")
	ErrInvalidDataURI = errors.New("invalid data uri")
)

const (
	defaultMaxBytes     = int64(10 << 20)
	defaultMaxWidth     = uint(1600)
	defaultAssetTimeout = 10 * time.Second
)

// Asset загруженный файл.
type Asset struct {
	Data        []byte
	ContentType string
	// Размеры известны только для изображений
	Width  int
	Height int
}

// DataURI кодирует ассет в data: URI.
func (a *Asset) DataURI() string {
	return "data:" + a.ContentType + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
}

// IsImage сообщает, что ассет является изображением.
func (a *Asset) IsImage() bool {
	return strings.HasPrefix(a.ContentType, "image/")
}

// Fetcher загружает ассеты. Безопасен для одновременного использования.
type Fetcher struct {
	client   *retryablehttp.Client
	baseURL  *url.URL
	maxBytes int64
	maxWidth uint

	mu    sync.Mutex
	cache map[string]*Asset
}

// NewFetcher создает загрузчик по настройкам сервиса.
func NewFetcher(cfg *config.Config) *Fetcher {
	cl := retryablehttp.NewClient()
	cl.RetryMax = 2
	cl.RetryWaitMin = time.Millisecond * 100
	cl.RetryWaitMax = time.Second
	cl.HTTPClient.Timeout = defaultAssetTimeout
	cl.Logger = slog.Default()

	f := &Fetcher{
		client:   cl,
		maxBytes: defaultMaxBytes,
		maxWidth: defaultMaxWidth,
		cache:    make(map[string]*Asset),
	}
	if cfg != nil {
		f.baseURL = cfg.WebURL
		if cfg.AssetTimeoutSec > 0 {
			cl.HTTPClient.Timeout = cfg.AssetTimeout()
		}
		if cfg.AssetMaxBytes > 0 {
			f.maxBytes = int64(cfg.AssetMaxBytes)
		}
		if cfg.AssetMaxWidth > 0 {
			f.maxWidth = uint(cfg.AssetMaxWidth)
		}
	}
	return f
}

// Fetch загружает ассет по ссылке из документа.
func (f *Fetcher) Fetch(ctx context.Context, src string) (*Asset, error) {
	if strings.HasPrefix(src, "data:") {
		return parseDataURI(src)
	}

	u, err := f.resolve(src)
	if err != nil {
		return nil, err
	}
	key := u.String()

	f.mu.Lock()
	cached, ok := f.cache[key]
	f.mu.Unlock()
	if ok {
		return cached, nil
	}

	asset, err := f.download(ctx, key)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.cache[key] = asset
	f.mu.Unlock()
	return asset, nil
}

// DataURI загружает ассет и возвращает его как data: URI.
func (f *Fetcher) DataURI(ctx context.Context, src string) (string, error) {
	if strings.HasPrefix(src, "data:") {
		return src, nil
	}
	asset, err := f.Fetch(ctx, src)
	if err != nil {
		return "", err
	}
	return asset.DataURI(), nil
}

func (f *Fetcher) resolve(src string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(src))
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		if f.baseURL == nil {
			return nil, ErrRelativeURL
		}
		u = f.baseURL.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrUnsupportedURL
	}
	return u, nil
}

func (f *Fetcher) download(ctx context.Context, rawURL string) (*Asset, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}
	if resp.ContentLength > f.maxBytes {
		return nil, ErrTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > f.maxBytes {
		return nil, ErrTooLarge
	}

	contentType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType, _, _ = mime.ParseMediaType(http.DetectContentType(data))
	}

	asset := &Asset{Data: data, ContentType: contentType}
	if err := f.downscale(asset); err != nil {
		slog.Warn("Downscale asset", "url", rawURL, "err", err)
	}
	return asset, nil
}

// downscale уменьшает jpeg и png шире maxWidth с сохранением пропорций.
func (f *Fetcher) downscale(asset *Asset) error {
	if asset.ContentType != "image/jpeg" && asset.ContentType != "image/png" {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(asset.Data)); err == nil {
			asset.Width, asset.Height = cfg.Width, cfg.Height
		}
		return nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(asset.Data))
	if err != nil {
		return err
	}
	asset.Width, asset.Height = cfg.Width, cfg.Height
	if uint(cfg.Width) <= f.maxWidth {
		return nil
	}

	img, _, err := image.Decode(bytes.NewReader(asset.Data))
	if err != nil {
		return err
	}
	thmb := resize.Resize(f.maxWidth, 0, img, resize.Lanczos3)

	buf := new(bytes.Buffer)
	if asset.ContentType == "image/png" {
		err = png.Encode(buf, thmb)
	} else {
		err = jpeg.Encode(buf, thmb, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return err
	}

	asset.Data = buf.Bytes()
	asset.Width, asset.Height = thmb.Bounds().Dx(), thmb.Bounds().Dy()
	return nil
}

func parseDataURI(src string) (*Asset, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok {
		return nil, ErrInvalidDataURI
	}

	isBase64 := strings.HasSuffix(meta, ";base64")
	meta = strings.TrimSuffix(meta, ";base64")
	contentType, _, _ := mime.ParseMediaType(meta)
	if contentType == "" {
		contentType = "text/plain"
	}

	var data []byte
	if isBase64 {
		var err error
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
		}
	} else {
		s, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
		}
		data = []byte(s)
	}

	asset := &Asset{Data: data, ContentType: contentType}
	if asset.IsImage() {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			asset.Width, asset.Height = cfg.Width, cfg.Height
		}
	}
	return asset, nil
}
