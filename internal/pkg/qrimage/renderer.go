package qrimage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	qr "github.com/skip2/go-qrcode"
)

const defaultSize = 512

// Uploader pushes an encoded image to a public host and returns the
// retrieval URL.
type Uploader interface {
	UploadImage(ctx context.Context, image []byte) (string, error)
}

// Renderer encodes an arbitrary payment string into a scannable QR PNG and
// hosts it. The raster is never persisted locally.
type Renderer struct {
	uploader Uploader
	size     int
}

// NewRenderer creates a renderer that hosts images through the given uploader.
func NewRenderer(uploader Uploader) *Renderer {
	return &Renderer{uploader: uploader, size: defaultSize}
}

// RenderAndHost encodes payload as a QR code, uploads the PNG and returns
// the public image URL.
func (r *Renderer) RenderAndHost(ctx context.Context, payload string) (string, error) {
	if strings.TrimSpace(payload) == "" {
		return "", errors.New("qrimage: payload is empty")
	}

	png, err := qr.Encode(payload, qr.Medium, r.size)
	if err != nil {
		return "", fmt.Errorf("qrimage: encode: %w", err)
	}

	url, err := r.uploader.UploadImage(ctx, png)
	if err != nil {
		return "", fmt.Errorf("qrimage: host: %w", err)
	}

	return url, nil
}
