package grpcclient

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/Xausdorf/upi-qr-pay/internal/domain/upi"
	"github.com/Xausdorf/upi-qr-pay/internal/rpc/linkv1"
)

type Client struct {
	conn *grpc.ClientConn
}

// NewClient dials addr without transport security. Extra options are
// appended, which lets tests swap in an in-memory dialer.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(linkv1.CodecName)),
	}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) BuildPaymentLink(
	ctx context.Context,
	payeeID, payeeName string,
	amount decimal.NullDecimal,
) (string, error) {
	var resp linkv1.BuildPaymentLinkResponse
	err := c.conn.Invoke(ctx, linkv1.BuildPaymentLinkMethod, &linkv1.BuildPaymentLinkRequest{
		PayeeID:   payeeID,
		PayeeName: payeeName,
		Amount:    amount,
	}, &resp)
	if err != nil {
		return "", mapError(err)
	}
	return resp.URI, nil
}

func (c *Client) EncodeQR(ctx context.Context, payload string) (string, error) {
	var resp linkv1.EncodeQRResponse
	err := c.conn.Invoke(ctx, linkv1.EncodeQRMethod, &linkv1.EncodeQRRequest{Payload: payload}, &resp)
	if err != nil {
		return "", mapError(err)
	}
	return resp.PNGBase64, nil
}

func mapError(err error) error {
	if status.Code(err) == codes.InvalidArgument {
		return fmt.Errorf("%w: %s", upi.ErrInvalidInput, status.Convert(err).Message())
	}
	return err
}
