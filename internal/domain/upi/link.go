package upi

import (
	"errors"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Scheme   = "upi"
	Currency = "INR"

	amountPlaces = 2
	// maxAmountScale bounds the exponent of an amount in either direction,
	// so rescaling for comparison and formatting stays cheap.
	maxAmountScale = 18
)

var ErrInvalidInput = errors.New("invalid input")

// MaxAmount is the largest amount a link may carry (one crore rupees).
var MaxAmount = decimal.New(1, 7)

// PaymentRequest is a single payment intent. It is only constructed through
// NewPaymentRequest, so a value always carries a non-empty payee and a
// positive amount.
type PaymentRequest struct {
	payeeID   string
	payeeName string
	amount    decimal.Decimal
}

func NewPaymentRequest(payeeID, payeeName string, amount decimal.NullDecimal) (PaymentRequest, error) {
	if payeeID == "" || payeeName == "" {
		return PaymentRequest{}, ErrInvalidInput
	}
	if !ValidAmount(amount) {
		return PaymentRequest{}, ErrInvalidInput
	}
	return PaymentRequest{
		payeeID:   payeeID,
		payeeName: payeeName,
		amount:    amount.Decimal,
	}, nil
}

func (r PaymentRequest) PayeeID() string {
	return r.payeeID
}

func (r PaymentRequest) PayeeName() string {
	return r.payeeName
}

func (r PaymentRequest) Amount() decimal.Decimal {
	return r.amount
}

// URI renders the request as a UPI deep-link. Key order pa, pn, am, cu is
// fixed; payment apps parse it positionally.
func (r PaymentRequest) URI() string {
	var b strings.Builder
	b.WriteString(Scheme)
	b.WriteString("://pay?pa=")
	b.WriteString(r.payeeID)
	b.WriteString("&pn=")
	b.WriteString(EscapeName(r.payeeName))
	b.WriteString("&am=")
	b.WriteString(FormatAmount(r.amount))
	b.WriteString("&cu=")
	b.WriteString(Currency)
	return b.String()
}

// BuildPaymentLink returns "" and ErrInvalidInput when any argument is
// missing or the amount is not positive or exceeds MaxAmount.
func BuildPaymentLink(payeeID, payeeName string, amount decimal.NullDecimal) (string, error) {
	req, err := NewPaymentRequest(payeeID, payeeName, amount)
	if err != nil {
		return "", err
	}
	return req.URI(), nil
}

// ValidAmount reports whether d is present, positive and no more than
// MaxAmount.
func ValidAmount(d decimal.NullDecimal) bool {
	if !d.Valid || !d.Decimal.IsPositive() {
		return false
	}
	exp := d.Decimal.Exponent()
	if exp < -maxAmountScale || exp > maxAmountScale {
		return false
	}
	return d.Decimal.LessThanOrEqual(MaxAmount)
}

// EscapeName percent-encodes s for a query component. Spaces become %20,
// not '+', and every byte outside the unreserved set is escaped.
func EscapeName(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// FormatAmount renders d in fixed-point with two fractional digits,
// rounding half away from zero.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(amountPlaces)
}
