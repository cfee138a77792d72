package qrgenerator

import (
	"encoding/base64"
	"fmt"

	qr "github.com/skip2/go-qrcode"

	"github.com/Xausdorf/upi-qr-pay/internal/domain/qrcode"
)

// DefaultSize renders ten pixels per module. Negative sizes are passed
// through to go-qrcode, which treats them as a per-module scale.
const DefaultSize = -10

// Generator encodes payloads at the highest error correction level (H,
// about 30% recovery). go-qrcode picks the smallest version that fits and
// keeps its fixed four-module quiet zone.
type Generator struct {
	size int
}

func NewGenerator(size int) *Generator {
	if size == 0 {
		size = DefaultSize
	}
	return &Generator{size: size}
}

func (g *Generator) PNG(payload string) ([]byte, error) {
	if payload == "" {
		return nil, qrcode.ErrEmptyPayload
	}
	code, err := qr.New(payload, qr.Highest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", qrcode.ErrPayloadTooLarge, err)
	}
	png, err := code.PNG(g.size)
	if err != nil {
		return nil, fmt.Errorf("render qr png: %w", err)
	}
	return png, nil
}

func (g *Generator) Encode(payload string) (string, error) {
	png, err := g.PNG(payload)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
