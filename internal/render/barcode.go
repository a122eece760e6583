package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"back_scan/internal/config"
	"back_scan/internal/models"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

var (
	// ErrImageUnavailable means no image could be produced; callers show "no image available"
	ErrImageUnavailable = errors.New("render: no image available")
	// ErrInvalidStyle means a style option could not be interpreted
	ErrInvalidStyle = errors.New("render: invalid style")
)

const maxImageBytes = 4 << 20

// pathCodes maps symbologies onto the barcode service's path segment
var pathCodes = map[models.Symbology]string{
	models.SymbologyEAN13:      "13",
	models.SymbologyEAN8:       "8",
	models.SymbologyUPCE:       "e",
	models.SymbologyUPCA:       "a",
	models.SymbologyCode39:     "39",
	models.SymbologyCode93:     "93",
	models.SymbologyCode128:    "128",
	models.SymbologyITF14:      "14",
	models.SymbologyCodabar:    "codabar",
	models.SymbologyPDF417:     "417",
	models.SymbologyDataMatrix: "dm",
	models.SymbologyAztec:      "aztec",
	models.SymbologyQR:         "qr",
}

// PathCode returns the barcode service path segment for sym
func PathCode(sym models.Symbology) (string, bool) {
	code, ok := pathCodes[sym]
	return code, ok
}

// Image is a rendered image and its media type
type Image struct {
	ContentType string
	Data        []byte
}

// BarcodeClient renders barcodes through a remote HTTP service
type BarcodeClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	cache   *lru.Cache[string, Image]
	presets *Presets
}

// NewBarcodeClient creates a client for cfg.BarcodeServiceURL. A nil httpClient
// gets one with cfg.BarcodeTimeout.
func NewBarcodeClient(cfg config.RenderConfig, httpClient *http.Client, presets *Presets) (*BarcodeClient, error) {
	if cfg.BarcodeServiceURL == "" {
		return nil, fmt.Errorf("barcode service URL is required")
	}
	if httpClient == nil {
		timeout := cfg.BarcodeTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	size := cfg.BarcodeCacheSize
	if size <= 0 {
		size = 256
	}
	cache, err := lru.New[string, Image](size)
	if err != nil {
		return nil, err
	}
	limit := rate.Inf
	if cfg.BarcodeRPS > 0 {
		limit = rate.Limit(cfg.BarcodeRPS)
	}
	burst := cfg.BarcodeBurst
	if burst <= 0 {
		burst = 1
	}
	return &BarcodeClient{
		baseURL: strings.TrimRight(cfg.BarcodeServiceURL, "/"),
		http:    httpClient,
		limiter: rate.NewLimiter(limit, burst),
		cache:   cache,
		presets: presets,
	}, nil
}

// Render fetches an image of content encoded as sym. Every failure wraps
// ErrImageUnavailable. Identical requests are served from cache.
func (c *BarcodeClient) Render(ctx context.Context, content string, sym models.Symbology, style *models.StyleOptions) (Image, error) {
	if content == "" {
		return Image{}, fmt.Errorf("%w: empty content", ErrImageUnavailable)
	}
	code, ok := PathCode(sym)
	if !ok {
		return Image{}, fmt.Errorf("%w: unsupported symbology %q", ErrImageUnavailable, sym)
	}
	reqURL := c.baseURL + "/" + code + "/" + url.PathEscape(content)
	if q := query(c.presets.Apply(sym, style)); len(q) > 0 {
		reqURL += "?" + q.Encode()
	}

	if img, ok := c.cache.Get(reqURL); ok {
		return img, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrImageUnavailable, err)
	}
	img, err := c.fetch(ctx, reqURL)
	if err != nil {
		return Image{}, err
	}
	c.cache.Add(reqURL, img)
	return img, nil
}

func (c *BarcodeClient) fetch(ctx context.Context, reqURL string) (Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrImageUnavailable, err)
	}
	req.Header.Set("Accept", "image/png, image/svg+xml;q=0.9, image/*;q=0.8")

	resp, err := c.http.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrImageUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxImageBytes))
		return Image{}, fmt.Errorf("%w: barcode service returned %d", ErrImageUnavailable, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrImageUnavailable, err)
	}
	if len(data) == 0 || len(data) > maxImageBytes {
		return Image{}, fmt.Errorf("%w: barcode service returned %d bytes", ErrImageUnavailable, len(data))
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return Image{}, fmt.Errorf("%w: unexpected content type %s", ErrImageUnavailable, contentType)
	}
	return Image{ContentType: contentType, Data: data}, nil
}

// query turns style options into the service's query parameters
func query(style *models.StyleOptions) url.Values {
	q := url.Values{}
	if style.Height > 0 {
		q.Set("height", strconv.Itoa(style.Height))
	}
	if style.ModuleWidth > 0 {
		q.Set("width", strconv.Itoa(style.ModuleWidth))
	}
	if style.Margin != nil {
		q.Set("qz", strconv.Itoa(*style.Margin))
	}
	if style.ForegroundColor != "" {
		q.Set("fg", strings.TrimPrefix(style.ForegroundColor, "#"))
	}
	if style.BackgroundColor != "" {
		q.Set("bg", strings.TrimPrefix(style.BackgroundColor, "#"))
	}
	if style.IncludeText != nil && !*style.IncludeText {
		q.Set("text", "none")
	}
	return q
}
