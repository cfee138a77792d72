package http

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Xausdorf/upi-qr-pay/internal/domain/qrcode"
	"github.com/Xausdorf/upi-qr-pay/internal/domain/receipt"
	"github.com/Xausdorf/upi-qr-pay/internal/domain/upi"
	"github.com/Xausdorf/upi-qr-pay/internal/infrastructure/metrics"
	"github.com/Xausdorf/upi-qr-pay/internal/usecase/checkout"
)

const sessionCookie = "upi_session"

//go:embed templates/*.html
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type flashLevel string

const (
	flashSuccess flashLevel = "success"
	flashInfo    flashLevel = "info"
	flashError   flashLevel = "error"
)

type Flash struct {
	Level flashLevel
	Text  string
}

// Session is what the checkout page remembers between requests of one
// browser: the checkout state, the last entered form values and a one-shot
// message.
type Session struct {
	State       checkout.State
	Amount      string
	CustomerVPA string
	Flash       *Flash
}

type pageData struct {
	MerchantName string
	MerchantVPA  string
	Amount       string
	CustomerVPA  string
	Flash        *Flash
	Link         string
	QRDataURI    template.URL
	CanReceipt   bool
	Receipt      *receipt.Receipt
}

func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	id, sess := h.loadSession(w, r)

	data := pageData{
		MerchantName: h.checkoutUC.Merchant().Name,
		MerchantVPA:  h.checkoutUC.Merchant().VPA,
		Amount:       sess.Amount,
		CustomerVPA:  sess.CustomerVPA,
		Flash:        sess.Flash,
		CanReceipt:   sess.State.Link != "" && !sess.State.TransactionDone,
	}
	if sess.State.ShowQR && sess.State.Link != "" {
		encoded, err := h.generateQRUC.Encode(sess.State.Link)
		if err != nil {
			h.metrics.QR(webChannel, metrics.ResultError)
			h.logger.Error("qr generation failed", "error", err)
			data.Flash = &Flash{Level: flashError, Text: "Could not render the QR code."}
		} else {
			h.metrics.QR(webChannel, metrics.ResultOK)
			data.Link = sess.State.Link
			data.QRDataURI = template.URL(qrcode.DataURI(encoded)) //nolint:gosec // base64 png produced here
		}
	}
	if sess.State.ShowReceipt {
		data.Receipt = sess.State.Receipt
	}

	sess.Flash = nil
	h.sessions.Put(id, sess)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pageTmpl.Execute(w, data); err != nil {
		h.logger.Error("render page failed", "error", err)
	}
}

func (h *Handler) HandleGenerateQR(w http.ResponseWriter, r *http.Request) {
	id, sess := h.loadSession(w, r)
	form, ok := h.readForm(r, &sess)

	if !ok {
		sess.Flash = &Flash{Level: flashError, Text: "Please enter a valid amount to generate a QR code."}
		h.metrics.LinkBuilt(webChannel, metrics.ResultInvalid)
	} else if next, err := h.checkoutUC.GenerateQR(sess.State, form); err != nil {
		sess.Flash = h.checkoutFailure(err, "Please enter a valid amount to generate a QR code.")
	} else {
		sess.State = next
		sess.Flash = &Flash{Level: flashSuccess, Text: "QR Code generated!"}
		h.metrics.LinkBuilt(webChannel, metrics.ResultOK)
	}

	h.finish(w, r, id, sess)
}

func (h *Handler) HandleSendRequest(w http.ResponseWriter, r *http.Request) {
	id, sess := h.loadSession(w, r)
	form, ok := h.readForm(r, &sess)

	const invalid = "Please enter a valid amount and customer UPI ID to send a request."
	if !ok {
		sess.Flash = &Flash{Level: flashError, Text: invalid}
		h.metrics.LinkBuilt(webChannel, metrics.ResultInvalid)
	} else if next, err := h.checkoutUC.SendRequest(sess.State, form); err != nil {
		sess.Flash = h.checkoutFailure(err, invalid)
	} else {
		sess.State = next
		sess.Flash = &Flash{
			Level: flashInfo,
			Text: fmt.Sprintf("Simulating request sent to %s for ₹%s.",
				form.CustomerVPA, upi.FormatAmount(form.Amount.Decimal)),
		}
		h.metrics.LinkBuilt(webChannel, metrics.ResultOK)
	}

	h.finish(w, r, id, sess)
}

func (h *Handler) HandleGenerateReceipt(w http.ResponseWriter, r *http.Request) {
	id, sess := h.loadSession(w, r)
	form, _ := h.readForm(r, &sess)

	next, err := h.checkoutUC.GenerateReceipt(sess.State, form)
	switch {
	case errors.Is(err, checkout.ErrNoPendingLink):
		sess.Flash = &Flash{Level: flashError, Text: "Generate a QR code or send a request first."}
	case err != nil:
		h.logger.Error("receipt generation failed", "error", err)
		sess.Flash = &Flash{Level: flashError, Text: "Could not generate the receipt."}
	default:
		sess.State = next
		sess.Flash = &Flash{Level: flashSuccess, Text: "Receipt generated!"}
		h.metrics.ReceiptIssued(string(next.Receipt.PaymentMethod()))
	}

	h.finish(w, r, id, sess)
}

// HandleReset starts a new transaction by discarding the session contents.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	id, _ := h.loadSession(w, r)
	h.finish(w, r, id, Session{State: h.checkoutUC.Reset()})
}

func (h *Handler) checkoutFailure(err error, invalid string) *Flash {
	switch {
	case errors.Is(err, checkout.ErrInvalidAmount), errors.Is(err, checkout.ErrMissingCustomerVPA):
		h.metrics.LinkBuilt(webChannel, metrics.ResultInvalid)
		return &Flash{Level: flashError, Text: invalid}
	case errors.Is(err, checkout.ErrInvalidCustomerVPA):
		h.metrics.LinkBuilt(webChannel, metrics.ResultInvalid)
		return &Flash{Level: flashError, Text: "Customer UPI ID is not a valid UPI address."}
	default:
		h.metrics.LinkBuilt(webChannel, metrics.ResultError)
		h.logger.Error("payment link failed", "error", err)
		return &Flash{Level: flashError, Text: "Could not generate UPI link. Please check inputs."}
	}
}

// readForm copies the submitted values into the session so the page shows
// them again. ok is false when the amount is present but unparsable.
func (h *Handler) readForm(r *http.Request, sess *Session) (checkout.Form, bool) {
	if err := r.ParseForm(); err != nil {
		return checkout.Form{}, false
	}
	sess.Amount = r.PostFormValue("amount")
	sess.CustomerVPA = r.PostFormValue("customer_vpa")

	amount, err := upi.ParseAmount(sess.Amount)
	if err != nil {
		return checkout.Form{CustomerVPA: sess.CustomerVPA}, false
	}
	return checkout.Form{Amount: amount, CustomerVPA: sess.CustomerVPA}, true
}

// loadSession returns the browser's session, starting a new one when the
// cookie is missing or expired. The cookie is reissued on every call so its
// lifetime slides with the store's idle TTL.
func (h *Handler) loadSession(w http.ResponseWriter, r *http.Request) (uuid.UUID, Session) {
	id, sess, ok := h.existingSession(r)
	if !ok {
		id = uuid.New()
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.sessions.TTL() / time.Second),
	})
	return id, sess
}

func (h *Handler) existingSession(r *http.Request) (uuid.UUID, Session, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return uuid.Nil, Session{}, false
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return uuid.Nil, Session{}, false
	}
	sess, ok := h.sessions.Get(id)
	return id, sess, ok
}

func (h *Handler) finish(w http.ResponseWriter, r *http.Request, id uuid.UUID, sess Session) {
	h.sessions.Put(id, sess)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
