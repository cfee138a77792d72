package generateqr

import (
	"github.com/shopspring/decimal"

	"github.com/Xausdorf/upi-qr-pay/internal/domain/qrcode"
	"github.com/Xausdorf/upi-qr-pay/internal/domain/upi"
)

type Request struct {
	PayeeID   string
	PayeeName string
	Amount    decimal.NullDecimal
}

type Response struct {
	URI       string
	PNGBase64 string
}

type UseCase struct {
	encoder qrcode.Encoder
}

func NewUseCase(encoder qrcode.Encoder) *UseCase {
	return &UseCase{encoder: encoder}
}

// Execute builds the payment link and then encodes it. The two steps stay
// independent; a failed link never reaches the encoder.
func (uc *UseCase) Execute(req Request) (*Response, error) {
	uri, err := upi.BuildPaymentLink(req.PayeeID, req.PayeeName, req.Amount)
	if err != nil {
		return nil, err
	}

	encoded, err := uc.encoder.Encode(uri)
	if err != nil {
		return nil, err
	}

	return &Response{
		URI:       uri,
		PNGBase64: encoded,
	}, nil
}

func (uc *UseCase) Encode(payload string) (string, error) {
	return uc.encoder.Encode(payload)
}

func (uc *UseCase) PNG(payload string) ([]byte, error) {
	return uc.encoder.PNG(payload)
}
