package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Xausdorf/upi-qr-pay/internal/domain/qrcode"
	"github.com/Xausdorf/upi-qr-pay/internal/domain/upi"
	"github.com/Xausdorf/upi-qr-pay/internal/infrastructure/metrics"
	"github.com/Xausdorf/upi-qr-pay/internal/rpc/linkv1"
	"github.com/Xausdorf/upi-qr-pay/internal/usecase/generateqr"
)

const channel = "grpc"

type Handler struct {
	generateQRUC *generateqr.UseCase
	metrics      *metrics.Metrics
}

var _ linkv1.PaymentLinksServer = (*Handler)(nil)

func NewHandler(generateQRUC *generateqr.UseCase, m *metrics.Metrics) *Handler {
	return &Handler{
		generateQRUC: generateQRUC,
		metrics:      m,
	}
}

func (h *Handler) BuildPaymentLink(
	_ context.Context,
	req *linkv1.BuildPaymentLinkRequest,
) (*linkv1.BuildPaymentLinkResponse, error) {
	uri, err := upi.BuildPaymentLink(req.PayeeID, req.PayeeName, req.Amount)
	if err != nil {
		h.metrics.LinkBuilt(channel, metrics.ResultInvalid)
		return nil, status.Error(codes.InvalidArgument, "payee_id, payee_name and a positive amount are required")
	}
	h.metrics.LinkBuilt(channel, metrics.ResultOK)

	return &linkv1.BuildPaymentLinkResponse{URI: uri}, nil
}

func (h *Handler) EncodeQR(_ context.Context, req *linkv1.EncodeQRRequest) (*linkv1.EncodeQRResponse, error) {
	encoded, err := h.generateQRUC.Encode(req.Payload)
	switch {
	case errors.Is(err, upi.ErrInvalidInput):
		h.metrics.QR(channel, metrics.ResultInvalid)
		return nil, status.Error(codes.InvalidArgument, "payload is required")
	case errors.Is(err, qrcode.ErrPayloadTooLarge):
		h.metrics.QR(channel, metrics.ResultInvalid)
		return nil, status.Error(codes.InvalidArgument, "payload does not fit a qr symbol")
	case err != nil:
		h.metrics.QR(channel, metrics.ResultError)
		return nil, status.Errorf(codes.Internal, "encode qr: %v", err)
	}
	h.metrics.QR(channel, metrics.ResultOK)

	return &linkv1.EncodeQRResponse{PNGBase64: encoded}, nil
}
