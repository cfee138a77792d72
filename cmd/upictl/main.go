// Command upictl asks a running server for a payment link and its QR code.
//
//	upictl -payee costacoffee@upi -name "Costa Coffee" -amount 150 -out pay.png
package main

import (
	"context"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Xausdorf/upi-qr-pay/internal/domain/upi"
	"github.com/Xausdorf/upi-qr-pay/internal/infrastructure/grpcclient"
)

const callTimeout = 10 * time.Second

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	addr := flag.String("addr", "localhost:50051", "gRPC address of the server")
	payee := flag.String("payee", "", "payee UPI id")
	name := flag.String("name", "", "payee display name")
	amountStr := flag.String("amount", "", "amount in INR")
	out := flag.String("out", "", "write the QR PNG to this file")
	flag.Parse()

	if err := run(*addr, *payee, *name, *amountStr, *out); err != nil {
		logger.Error("upictl failed", "error", err)
		os.Exit(1)
	}
}

func run(addr, payee, name, amountStr, out string) error {
	amount, err := upi.ParseAmount(amountStr)
	if err != nil {
		return err
	}

	client, err := grpcclient.NewClient(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	link, err := client.BuildPaymentLink(ctx, payee, name, amount)
	if errors.Is(err, upi.ErrInvalidInput) {
		return fmt.Errorf("payee, name and a positive amount are required: %w", err)
	}
	if err != nil {
		return err
	}
	fmt.Println(link)

	if out == "" {
		return nil
	}

	encoded, err := client.EncodeQR(ctx, link)
	if err != nil {
		return err
	}
	png, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("decode qr image: %w", err)
	}
	return os.WriteFile(out, png, 0o644)
}
