// Package qrcode renders QR images and printable pass cards. Both are derived
// data: callers persist only the payload text and the storage key.
package qrcode

import (
	"fmt"
	"image"
	"strings"

	goqr "github.com/skip2/go-qrcode"
)

const DefaultSize = 300

// PNG encodes payload as a square QR PNG of size pixels.
func PNG(payload string, size int) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, fmt.Errorf("qrcode: empty payload")
	}
	if size <= 0 {
		size = DefaultSize
	}
	png, err := goqr.Encode(payload, goqr.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("qrcode: encode: %w", err)
	}
	return png, nil
}

// Image returns the QR symbol as an image for composition.
func Image(payload string, size int) (image.Image, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, fmt.Errorf("qrcode: empty payload")
	}
	if size <= 0 {
		size = DefaultSize
	}
	q, err := goqr.New(payload, goqr.Medium)
	if err != nil {
		return nil, fmt.Errorf("qrcode: new: %w", err)
	}
	return q.Image(size), nil
}
