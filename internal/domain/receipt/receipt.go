package receipt

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Xausdorf/upi-qr-pay/internal/domain/upi"
)

type PaymentMethod string

const (
	MethodQRScan     PaymentMethod = "QR Code Scan"
	MethodVPARequest PaymentMethod = "UPI ID Request"
)

const (
	transactionIDPrefix = "TXN-"
	rupeeSign           = "₹"
	timeLayout          = "2006-01-02 15:04:05"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID() uuid.UUID
}

// Receipt is a locally fabricated payment confirmation. No ledger backs it.
type Receipt struct {
	id            uuid.UUID
	issuedAt      time.Time
	amount        decimal.Decimal
	paymentMethod PaymentMethod
	customerVPA   string
	shopName      string
}

func New(
	id uuid.UUID,
	issuedAt time.Time,
	amount decimal.Decimal,
	method PaymentMethod,
	customerVPA string,
	shopName string,
) *Receipt {
	return &Receipt{
		id:            id,
		issuedAt:      issuedAt,
		amount:        amount,
		paymentMethod: method,
		customerVPA:   customerVPA,
		shopName:      shopName,
	}
}

func (r *Receipt) ID() uuid.UUID {
	return r.id
}

func (r *Receipt) TransactionID() string {
	return transactionIDPrefix + strings.ToUpper(r.id.String())
}

func (r *Receipt) IssuedAt() time.Time {
	return r.issuedAt
}

func (r *Receipt) FormattedTime() string {
	return r.issuedAt.Format(timeLayout)
}

func (r *Receipt) Amount() decimal.Decimal {
	return r.amount
}

func (r *Receipt) FormattedAmount() string {
	return rupeeSign + upi.FormatAmount(r.amount)
}

func (r *Receipt) PaymentMethod() PaymentMethod {
	if r.paymentMethod == "" {
		return "N/A"
	}
	return r.paymentMethod
}

// CustomerVPA is empty when the payer did not identify themselves.
func (r *Receipt) CustomerVPA() string {
	return r.customerVPA
}

func (r *Receipt) ShopName() string {
	return r.shopName
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

type RandomIDs struct{}

func (RandomIDs) NewID() uuid.UUID {
	return uuid.New()
}
