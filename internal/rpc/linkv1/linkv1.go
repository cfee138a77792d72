// Package linkv1 is the wire contract of the PaymentLinks service. Messages
// are plain structs carried by a JSON codec registered under the "json"
// content-subtype, so clients must dial with CallContentSubtype(CodecName).
package linkv1

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	ServiceName = "upi.link.v1.PaymentLinks"
	CodecName   = "json"

	BuildPaymentLinkMethod = "/" + ServiceName + "/BuildPaymentLink"
	EncodeQRMethod         = "/" + ServiceName + "/EncodeQR"
)

type BuildPaymentLinkRequest struct {
	PayeeID   string              `json:"payee_id"`
	PayeeName string              `json:"payee_name"`
	Amount    decimal.NullDecimal `json:"amount"`
}

type BuildPaymentLinkResponse struct {
	URI string `json:"uri"`
}

type EncodeQRRequest struct {
	Payload string `json:"payload"`
}

type EncodeQRResponse struct {
	PNGBase64 string `json:"png_base64"`
}

type PaymentLinksServer interface {
	BuildPaymentLink(ctx context.Context, req *BuildPaymentLinkRequest) (*BuildPaymentLinkResponse, error)
	EncodeQR(ctx context.Context, req *EncodeQRRequest) (*EncodeQRResponse, error)
}

func RegisterPaymentLinksServer(s grpc.ServiceRegistrar, srv PaymentLinksServer) {
	s.RegisterService(&ServiceDesc, srv)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PaymentLinksServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "BuildPaymentLink", Handler: buildPaymentLinkHandler},
		{MethodName: "EncodeQR", Handler: encodeQRHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func buildPaymentLinkHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(BuildPaymentLinkRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PaymentLinksServer).BuildPaymentLink(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: BuildPaymentLinkMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PaymentLinksServer).BuildPaymentLink(ctx, req.(*BuildPaymentLinkRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func encodeQRHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(EncodeQRRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PaymentLinksServer).EncodeQR(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: EncodeQRMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PaymentLinksServer).EncodeQR(ctx, req.(*EncodeQRRequest))
	}
	return interceptor(ctx, in, info, handler)
}

type codec struct{}

func (codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (codec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (codec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(codec{})
}
