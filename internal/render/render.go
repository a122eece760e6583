package render

import (
	"context"
	"fmt"

	"back_scan/internal/models"
)

// Format selects the image produced for a QR code. Barcodes always come from the service.
type Format string

const (
	FormatPNG    Format = "png"
	FormatSVG    Format = "svg"
	FormatRemote Format = "remote"
)

// Renderer routes each symbology to the renderer that can draw it
type Renderer struct {
	qr       *QRRenderer
	barcodes *BarcodeClient
}

// New creates a Renderer. barcodes may be nil, in which case only QR codes render.
func New(qr *QRRenderer, barcodes *BarcodeClient) *Renderer {
	return &Renderer{qr: qr, barcodes: barcodes}
}

func (r *Renderer) Render(ctx context.Context, payload string, sym models.Symbology, format Format, style *models.StyleOptions) (Image, error) {
	if sym == models.SymbologyQR && format != FormatRemote {
		switch format {
		case FormatSVG:
			svg, err := r.qr.SVG(payload, style)
			if err != nil {
				return Image{}, err
			}
			return Image{ContentType: "image/svg+xml", Data: []byte(svg)}, nil
		case FormatPNG, "":
			png, err := r.qr.PNG(payload, style)
			if err != nil {
				return Image{}, err
			}
			return Image{ContentType: "image/png", Data: png}, nil
		default:
			return Image{}, fmt.Errorf("%w: unknown format %q", ErrInvalidStyle, format)
		}
	}
	if r.barcodes == nil {
		return Image{}, fmt.Errorf("%w: barcode service not configured", ErrImageUnavailable)
	}
	return r.barcodes.Render(ctx, payload, sym, style)
}
