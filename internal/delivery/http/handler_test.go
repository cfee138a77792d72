package http_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpdelivery "github.com/Xausdorf/upi-qr-pay/internal/delivery/http"
	"github.com/Xausdorf/upi-qr-pay/internal/domain/receipt"
	"github.com/Xausdorf/upi-qr-pay/internal/infrastructure/metrics"
	"github.com/Xausdorf/upi-qr-pay/internal/infrastructure/qrgenerator"
	"github.com/Xausdorf/upi-qr-pay/internal/infrastructure/sessionstore"
	"github.com/Xausdorf/upi-qr-pay/internal/usecase/checkout"
	"github.com/Xausdorf/upi-qr-pay/internal/usecase/generateqr"
)

const merchantLink = "upi://pay?pa=costacoffee@upi&pn=Costa%20Coffee&am=150.00&cu=INR"

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	merchant := checkout.Merchant{VPA: "costacoffee@upi", Name: "Costa Coffee"}

	h := httpdelivery.NewHandler(
		checkout.NewUseCase(merchant, receipt.SystemClock{}, receipt.RandomIDs{}),
		generateqr.NewUseCase(qrgenerator.NewGenerator(qrgenerator.DefaultSize)),
		sessionstore.New[httpdelivery.Session](time.Hour),
		m,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	router := httpdelivery.NewRouter(h, httpdelivery.RouterConfig{
		AllowedOrigins: []string{"*"},
		Metrics:        m,
		Gatherer:       reg,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func browser(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func get(t *testing.T, c *http.Client, u string) string {
	t.Helper()

	resp, err := c.Get(u)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return readBody(t, resp)
}

func post(t *testing.T, c *http.Client, u string, form url.Values) string {
	t.Helper()

	resp, err := c.PostForm(u, form)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return readBody(t, resp)
}

func decodeQR(t *testing.T, img image.Image) string {
	t.Helper()

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	require.NoError(t, err)
	hints := map[gozxing.DecodeHintType]interface{}{gozxing.DecodeHintType_PURE_BARCODE: true}
	result, err := zxqr.NewQRCodeReader().Decode(bmp, hints)
	require.NoError(t, err)
	return result.GetText()
}

func TestHandleCreateLink(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Post(srv.URL+"/api/links", "application/json", strings.NewReader(
		`{"payee_id":"costacoffee@upi","payee_name":"Costa Coffee","amount":"150.00"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body httpdelivery.LinkResponse
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &body))

	assert.Equal(t, merchantLink, body.URI)
	assert.Equal(t, "data:image/png;base64,"+body.QRPNGBase64, body.QRDataURI)

	raw, err := base64.StdEncoding.DecodeString(body.QRPNGBase64)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, merchantLink, decodeQR(t, img))
}

func TestHandleCreateLink_NumericAmount(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Post(srv.URL+"/api/links", "application/json", strings.NewReader(
		`{"payee_id":"shop@okbank","payee_name":"Tea & Toast","amount":9.005}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body httpdelivery.LinkResponse
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &body))
	assert.Equal(t, "upi://pay?pa=shop@okbank&pn=Tea%20%26%20Toast&am=9.01&cu=INR", body.URI)
}

func TestHandleCreateLink_BadRequests(t *testing.T) {
	srv := newServer(t)

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"zero amount", `{"payee_id":"costacoffee@upi","payee_name":"Costa Coffee","amount":"0"}`, "amount must be a positive number"},
		{"missing amount", `{"payee_id":"costacoffee@upi","payee_name":"Costa Coffee"}`, "amount must be a positive number"},
		{"exponent amount", `{"payee_id":"costacoffee@upi","payee_name":"Costa Coffee","amount":"1e10000000"}`, "amount must be a positive number"},
		{"bad vpa", `{"payee_id":"costacoffee","payee_name":"Costa Coffee","amount":"1"}`, "payee_id failed vpa"},
		{"missing name", `{"payee_id":"costacoffee@upi","amount":"1"}`, "payee_name failed required"},
		{"unknown field", `{"payee":"x"}`, "invalid json"},
		{"not json", `amount=1`, "invalid json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/links", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, readBody(t, resp), tt.wantErr)
		})
	}
}

func TestHandleQR(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/api/qr?data=" + url.QueryEscape(merchantLink))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	img, err := png.Decode(strings.NewReader(readBody(t, resp)))
	require.NoError(t, err)
	assert.Equal(t, merchantLink, decodeQR(t, img))
}

func TestHandleQR_Errors(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/api/qr")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	readBody(t, resp)

	resp, err = http.Get(srv.URL + "/api/qr?data=" + strings.Repeat("a", 3000))
	require.NoError(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	readBody(t, resp)
}

func TestAPI_CORSPreflight(t *testing.T) {
	srv := newServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/links", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://pos.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	readBody(t, resp)

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestCheckout_QRFlow(t *testing.T) {
	srv := newServer(t)
	c := browser(t)

	page := get(t, c, srv.URL+"/")
	assert.Contains(t, page, "Costa Coffee")
	assert.NotContains(t, page, "Generate Receipt")

	page = post(t, c, srv.URL+"/qr", url.Values{"amount": {"150"}})
	assert.Contains(t, page, "QR Code generated!")
	assert.Contains(t, page, `src="data:image/png;base64,`)
	assert.Contains(t, page, "upi://pay?pa=costacoffee@upi&amp;pn=Costa%20Coffee&amp;am=150.00&amp;cu=INR")
	assert.Contains(t, page, "Generate Receipt")

	page = get(t, c, srv.URL+"/")
	assert.NotContains(t, page, "QR Code generated!", "flash is shown once")
	assert.Contains(t, page, "data:image/png;base64,")

	page = post(t, c, srv.URL+"/receipt", url.Values{"amount": {"150"}})
	assert.Contains(t, page, "Receipt generated!")
	assert.Contains(t, page, "Payment Receipt")
	assert.Contains(t, page, "₹150.00")
	assert.Contains(t, page, "QR Code Scan")
	assert.Contains(t, page, "TXN-")
	assert.NotContains(t, page, "Customer UPI ID:</strong>")
	assert.NotContains(t, page, "data:image/png;base64,")
	assert.NotContains(t, page, "Generate Receipt")

	page = post(t, c, srv.URL+"/receipt", url.Values{"amount": {"150"}})
	assert.Contains(t, page, "Generate a QR code or send a request first.")
	assert.Contains(t, page, "Payment Receipt")

	page = post(t, c, srv.URL+"/reset", nil)
	assert.NotContains(t, page, "Payment Receipt")
	assert.NotContains(t, page, "Generate a QR code or send a request first.")
}

func TestCheckout_QRInvalidAmount(t *testing.T) {
	srv := newServer(t)
	c := browser(t)

	for _, amount := range []string{"", "0", "-3", "abc"} {
		page := post(t, c, srv.URL+"/qr", url.Values{"amount": {amount}})
		assert.Contains(t, page, "Please enter a valid amount to generate a QR code.", amount)
		assert.NotContains(t, page, "data:image/png;base64,", amount)
	}
}

func TestCheckout_RequestFlow(t *testing.T) {
	srv := newServer(t)
	c := browser(t)

	page := post(t, c, srv.URL+"/request", url.Values{"amount": {"75.5"}})
	assert.Contains(t, page, "Please enter a valid amount and customer UPI ID to send a request.")

	page = post(t, c, srv.URL+"/request", url.Values{"amount": {"75.5"}, "customer_vpa": {"buyer"}})
	assert.Contains(t, page, "Customer UPI ID is not a valid UPI address.")

	page = post(t, c, srv.URL+"/request", url.Values{"amount": {"75.5"}, "customer_vpa": {"buyer@okbank"}})
	assert.Contains(t, page, "Simulating request sent to buyer@okbank for ₹75.50.")
	assert.NotContains(t, page, "data:image/png;base64,")
	assert.Contains(t, page, `value="buyer@okbank"`)

	page = post(t, c, srv.URL+"/receipt", url.Values{"amount": {"75.5"}, "customer_vpa": {"buyer@okbank"}})
	assert.Contains(t, page, "UPI ID Request")
	assert.Contains(t, page, "Customer UPI ID:</strong> buyer@okbank")
	assert.Contains(t, page, "₹75.50")
}

func TestCheckout_SessionCookieFollowsTTL(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	readBody(t, resp)

	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "upi_session", cookies[0].Name)
	assert.Equal(t, int(time.Hour/time.Second), cookies[0].MaxAge)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/", nil)
	require.NoError(t, err)
	req.AddCookie(cookies[0])
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	readBody(t, resp)

	refreshed := resp.Cookies()
	require.Len(t, refreshed, 1)
	assert.Equal(t, cookies[0].Value, refreshed[0].Value)
	assert.Equal(t, int(time.Hour/time.Second), refreshed[0].MaxAge)
}

func TestCheckout_SessionsAreIsolated(t *testing.T) {
	srv := newServer(t)
	alice := browser(t)
	bob := browser(t)

	post(t, alice, srv.URL+"/qr", url.Values{"amount": {"10"}})

	page := get(t, bob, srv.URL+"/")
	assert.NotContains(t, page, "data:image/png;base64,")

	page = get(t, alice, srv.URL+"/")
	assert.Contains(t, page, "data:image/png;base64,")
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, readBody(t, resp))

	resp, err = http.Post(srv.URL+"/api/links", "application/json", strings.NewReader(
		`{"payee_id":"costacoffee@upi","payee_name":"Costa Coffee","amount":"1"}`))
	require.NoError(t, err)
	readBody(t, resp)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Contains(t, body, `upi_links_built_total{channel="api",result="ok"} 1`)
	assert.Contains(t, body, `upi_http_request_duration_seconds_count{code="200",route="/api/links"} 1`)
}
