// Package render turns payloads into images: QR codes locally, every other
// symbology through a remote barcode service.
package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"back_scan/internal/models"

	"github.com/skip2/go-qrcode"
)

const (
	defaultPNGSize = 256
	defaultScale   = 8
	// go-qrcode always draws a 4 module quiet zone unless the border is disabled
	libraryBorder = 4
)

// QRRenderer renders QR codes synchronously
type QRRenderer struct {
	presets *Presets
}

func NewQRRenderer(presets *Presets) *QRRenderer {
	return &QRRenderer{presets: presets}
}

func (r *QRRenderer) style(style *models.StyleOptions) *models.StyleOptions {
	return r.presets.Apply(models.SymbologyQR, style)
}

// PNG renders payload as a PNG image. Width wins over Scale; a zero margin
// removes the quiet zone, any other margin keeps the standard one.
func (r *QRRenderer) PNG(payload string, style *models.StyleOptions) ([]byte, error) {
	style = r.style(style)
	q, err := r.encode(payload, style)
	if err != nil {
		return nil, err
	}
	if style.Margin != nil && *style.Margin == 0 {
		q.DisableBorder = true
	}
	size := defaultPNGSize
	switch {
	case style.Width > 0:
		size = style.Width
	case style.Scale > 0:
		// a negative size asks go-qrcode for a fixed pixel count per module
		size = -style.Scale
	}
	png, err := q.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}
	return png, nil
}

// SVG renders payload as SVG markup with one square per dark module
func (r *QRRenderer) SVG(payload string, style *models.StyleOptions) (string, error) {
	style = r.style(style)
	q, err := r.encode(payload, style)
	if err != nil {
		return "", err
	}
	q.DisableBorder = true
	bitmap := q.Bitmap()

	margin := libraryBorder
	if style.Margin != nil && *style.Margin >= 0 {
		margin = *style.Margin
	}
	scale := style.Scale
	if scale <= 0 {
		scale = defaultScale
	}
	modules := len(bitmap) + 2*margin
	size := modules * scale
	if style.Width > 0 {
		size = style.Width
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`,
		size, size, modules, modules)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="%s"/>`, modules, modules, svgColor(style.BackgroundColor, "#ffffff"))
	fmt.Fprintf(&b, `<path fill="%s" d="`, svgColor(style.ForegroundColor, "#000000"))
	for y, row := range bitmap {
		for x, dark := range row {
			if dark {
				fmt.Fprintf(&b, "M%d %dh1v1h-1z", x+margin, y+margin)
			}
		}
	}
	b.WriteString(`"/></svg>`)
	return b.String(), nil
}

func (r *QRRenderer) encode(payload string, style *models.StyleOptions) (*qrcode.QRCode, error) {
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrImageUnavailable)
	}
	level, err := recoveryLevel(style.ErrorCorrection)
	if err != nil {
		return nil, err
	}
	q, err := qrcode.New(payload, level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageUnavailable, err)
	}
	if style.ForegroundColor != "" {
		c, err := parseHexColor(style.ForegroundColor)
		if err != nil {
			return nil, err
		}
		q.ForegroundColor = c
	}
	if style.BackgroundColor != "" {
		c, err := parseHexColor(style.BackgroundColor)
		if err != nil {
			return nil, err
		}
		q.BackgroundColor = c
	}
	return q, nil
}

// recoveryLevel maps the conventional L/M/Q/H letters onto go-qrcode's levels
func recoveryLevel(ec string) (qrcode.RecoveryLevel, error) {
	switch strings.ToUpper(ec) {
	case "":
		return qrcode.Medium, nil
	case "L":
		return qrcode.Low, nil
	case "M":
		return qrcode.Medium, nil
	case "Q":
		return qrcode.High, nil
	case "H":
		return qrcode.Highest, nil
	}
	return 0, fmt.Errorf("%w: unknown error correction level %q", ErrInvalidStyle, ec)
}

// parseHexColor accepts #rgb and #rrggbb
func parseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("%w: invalid color %q", ErrInvalidStyle, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: invalid color %q", ErrInvalidStyle, s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func svgColor(s, fallback string) string {
	c, err := parseHexColor(s)
	if err != nil {
		return fallback
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
