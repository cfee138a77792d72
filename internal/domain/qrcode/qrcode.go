package qrcode

import (
	"errors"
	"fmt"

	"github.com/Xausdorf/upi-qr-pay/internal/domain/upi"
)

var ErrEmptyPayload = fmt.Errorf("empty qr payload: %w", upi.ErrInvalidInput)

// ErrPayloadTooLarge is returned when the payload does not fit the largest
// symbol version at the configured error correction level.
var ErrPayloadTooLarge = errors.New("qr payload too large")

const DataURIPrefix = "data:image/png;base64,"

type Encoder interface {
	// Encode returns the PNG image as standard padded base64.
	Encode(payload string) (string, error)
	PNG(payload string) ([]byte, error)
}

func DataURI(encoded string) string {
	if encoded == "" {
		return ""
	}
	return DataURIPrefix + encoded
}
