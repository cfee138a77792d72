//go:generate mockgen -source=../../domain/receipt/receipt.go -destination=mocks/mocks.go -package=mocks

package checkout

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Xausdorf/upi-qr-pay/internal/domain/receipt"
	"github.com/Xausdorf/upi-qr-pay/internal/domain/upi"
)

var (
	ErrInvalidAmount      = errors.New("amount must be a positive number")
	ErrMissingCustomerVPA = errors.New("customer upi id required")
	ErrInvalidCustomerVPA = errors.New("customer upi id is malformed")
	ErrNoPendingLink      = errors.New("no pending payment link")
)

type Merchant struct {
	VPA  string
	Name string
}

// Form carries the values the user entered for one interaction.
type Form struct {
	Amount      decimal.NullDecimal
	CustomerVPA string
}

// State is one checkout session. The zero value is a fresh session.
type State struct {
	Link            string
	ShowQR          bool
	ShowReceipt     bool
	TransactionDone bool
	PaymentMethod   receipt.PaymentMethod
	Amount          decimal.Decimal
	Receipt         *receipt.Receipt
}

type UseCase struct {
	merchant Merchant
	clock    receipt.Clock
	ids      receipt.IDGenerator
}

func NewUseCase(merchant Merchant, clock receipt.Clock, ids receipt.IDGenerator) *UseCase {
	return &UseCase{
		merchant: merchant,
		clock:    clock,
		ids:      ids,
	}
}

func (uc *UseCase) Merchant() Merchant {
	return uc.merchant
}

// GenerateQR prepares a link for the merchant so the customer can scan it.
func (uc *UseCase) GenerateQR(state State, form Form) (State, error) {
	if !upi.ValidAmount(form.Amount) {
		return state, ErrInvalidAmount
	}

	link, err := upi.BuildPaymentLink(uc.merchant.VPA, uc.merchant.Name, form.Amount)
	if err != nil {
		return state, fmt.Errorf("build merchant link: %w", err)
	}

	return State{
		Link:          link,
		ShowQR:        true,
		PaymentMethod: receipt.MethodQRScan,
		Amount:        form.Amount.Decimal,
	}, nil
}

// SendRequest simulates a collect request addressed to the customer's VPA.
// Nothing leaves the process.
func (uc *UseCase) SendRequest(state State, form Form) (State, error) {
	if !upi.ValidAmount(form.Amount) {
		return state, ErrInvalidAmount
	}
	if form.CustomerVPA == "" {
		return state, ErrMissingCustomerVPA
	}
	if !upi.ValidVPA(form.CustomerVPA) {
		return state, ErrInvalidCustomerVPA
	}

	link, err := upi.BuildPaymentLink(form.CustomerVPA, uc.merchant.Name, form.Amount)
	if err != nil {
		return state, fmt.Errorf("build request link: %w", err)
	}

	return State{
		Link:          link,
		PaymentMethod: receipt.MethodVPARequest,
		Amount:        form.Amount.Decimal,
	}, nil
}

// GenerateReceipt closes the pending link. It can run once per link.
func (uc *UseCase) GenerateReceipt(state State, form Form) (State, error) {
	if state.Link == "" || state.TransactionDone {
		return state, ErrNoPendingLink
	}

	amount := state.Amount
	if upi.ValidAmount(form.Amount) {
		amount = form.Amount.Decimal
	}

	rcpt := receipt.New(
		uc.ids.NewID(),
		uc.clock.Now(),
		amount,
		state.PaymentMethod,
		form.CustomerVPA,
		uc.merchant.Name,
	)

	return State{
		ShowReceipt:     true,
		TransactionDone: true,
		PaymentMethod:   state.PaymentMethod,
		Amount:          amount,
		Receipt:         rcpt,
	}, nil
}

func (uc *UseCase) Reset() State {
	return State{}
}
