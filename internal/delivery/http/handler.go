package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Xausdorf/upi-qr-pay/internal/domain/qrcode"
	"github.com/Xausdorf/upi-qr-pay/internal/domain/upi"
	"github.com/Xausdorf/upi-qr-pay/internal/infrastructure/metrics"
	"github.com/Xausdorf/upi-qr-pay/internal/infrastructure/sessionstore"
	"github.com/Xausdorf/upi-qr-pay/internal/usecase/checkout"
	"github.com/Xausdorf/upi-qr-pay/internal/usecase/generateqr"
)

const (
	apiChannel = "api"
	webChannel = "web"
)

type Handler struct {
	checkoutUC   *checkout.UseCase
	generateQRUC *generateqr.UseCase
	sessions     *sessionstore.Store[Session]
	metrics      *metrics.Metrics
	logger       *slog.Logger
	validate     *validator.Validate
}

func NewHandler(
	checkoutUC *checkout.UseCase,
	generateQRUC *generateqr.UseCase,
	sessions *sessionstore.Store[Session],
	m *metrics.Metrics,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		checkoutUC:   checkoutUC,
		generateQRUC: generateQRUC,
		sessions:     sessions,
		metrics:      m,
		logger:       logger,
		validate:     newValidator(),
	}
}

type LinkRequest struct {
	PayeeID   string              `json:"payee_id"   validate:"required,vpa"`
	PayeeName string              `json:"payee_name" validate:"required,max=99"`
	Amount    decimal.NullDecimal `json:"amount"`
}

type LinkResponse struct {
	URI         string `json:"uri"`
	QRPNGBase64 string `json:"qr_png_base64"`
	QRDataURI   string `json:"qr_data_uri"`
}

func (h *Handler) HandleCreateLink(w http.ResponseWriter, r *http.Request) {
	var req LinkRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.metrics.LinkBuilt(apiChannel, metrics.ResultInvalid)
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	resp, err := h.generateQRUC.Execute(generateqr.Request{
		PayeeID:   req.PayeeID,
		PayeeName: req.PayeeName,
		Amount:    req.Amount,
	})
	if errors.Is(err, upi.ErrInvalidInput) {
		h.metrics.LinkBuilt(apiChannel, metrics.ResultInvalid)
		writeError(w, http.StatusBadRequest, "amount must be a positive number up to "+upi.FormatAmount(upi.MaxAmount))
		return
	}
	if err != nil {
		h.metrics.QR(apiChannel, metrics.ResultError)
		h.logger.Error("qr generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "qr generation failed")
		return
	}
	h.metrics.LinkBuilt(apiChannel, metrics.ResultOK)
	h.metrics.QR(apiChannel, metrics.ResultOK)

	writeJSON(w, http.StatusOK, LinkResponse{
		URI:         resp.URI,
		QRPNGBase64: resp.PNGBase64,
		QRDataURI:   qrcode.DataURI(resp.PNGBase64),
	})
}

func (h *Handler) HandleQR(w http.ResponseWriter, r *http.Request) {
	data := r.URL.Query().Get("data")
	if data == "" {
		h.metrics.QR(apiChannel, metrics.ResultInvalid)
		writeError(w, http.StatusBadRequest, "data query param required")
		return
	}

	png, err := h.generateQRUC.PNG(data)
	if errors.Is(err, qrcode.ErrPayloadTooLarge) {
		h.metrics.QR(apiChannel, metrics.ResultInvalid)
		writeError(w, http.StatusRequestEntityTooLarge, "data does not fit a qr code")
		return
	}
	if err != nil {
		h.metrics.QR(apiChannel, metrics.ResultError)
		h.logger.Error("qr generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "qr generation failed")
		return
	}
	h.metrics.QR(apiChannel, metrics.ResultOK)

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(png)
}

func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
