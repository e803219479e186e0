// Package payfast implements the redirect checkout and ITN
// (instant transaction notification) surface of the PayFast gateway.
package payfast

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"venue-booking/pkg/utils"

	"go.uber.org/zap"
)

var (
	ErrBadSignature    = errors.New("notification signature mismatch")
	ErrWrongMerchant   = errors.New("notification merchant mismatch")
	ErrAmountMismatch  = errors.New("notification amount does not match booking price")
	ErrNotComplete     = errors.New("payment is not complete")
	ErrProviderRefused = errors.New("provider refused the notification")
)

// field order mandated by the form and signature rules; alphabetical
// encoding breaks the signature.
var checkoutFieldOrder = []string{
	"merchant_id", "merchant_key", "return_url", "cancel_url", "notify_url",
	"name_first", "email_address", "m_payment_id", "amount", "item_name",
}

var notifyFieldOrder = []string{
	"m_payment_id", "pf_payment_id", "payment_status", "item_name",
	"item_description", "amount_gross", "amount_fee", "amount_net",
	"custom_str1", "custom_str2", "custom_str3", "custom_str4", "custom_str5",
	"custom_int1", "custom_int2", "custom_int3", "custom_int4", "custom_int5",
	"name_first", "name_last", "email_address", "merchant_id",
}

// Notification is the ITN form posted to the notify URL.
type Notification struct {
	PaymentID     string // pf_payment_id
	PaymentStatus string // "COMPLETE" on success
	AmountGross   string
	MerchantID    string
	// BookingReference is m_payment_id, set by us at checkout.
	BookingReference string
	Signature        string
	Raw              url.Values
}

// ParseNotification maps the posted ITN form onto a Notification.
func ParseNotification(form url.Values) *Notification {
	return &Notification{
		PaymentID:        form.Get("pf_payment_id"),
		PaymentStatus:    form.Get("payment_status"),
		AmountGross:      form.Get("amount_gross"),
		MerchantID:       form.Get("merchant_id"),
		BookingReference: form.Get("m_payment_id"),
		Signature:        form.Get("signature"),
		Raw:              form,
	}
}

type Client struct {
	cfg        utils.PayFastConfig
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(cfg utils.PayFastConfig, log *zap.Logger) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log.With(zap.String("client", "payfast")),
	}
}

// CheckoutFields builds the signed redirect form for one booking. The
// browser posts these fields to ProcessURL; nothing here moves money.
func (c *Client) CheckoutFields(bookingReference, customerName, customerEmail, itemName string, amount float64) (string, map[string]string) {
	fields := map[string]string{
		"merchant_id":   c.cfg.MerchantID,
		"merchant_key":  c.cfg.MerchantKey,
		"return_url":    c.cfg.ReturnURL,
		"cancel_url":    c.cfg.CancelURL,
		"notify_url":    c.cfg.NotifyURL,
		"name_first":    customerName,
		"email_address": customerEmail,
		"m_payment_id":  bookingReference,
		"amount":        fmt.Sprintf("%.2f", amount),
		"item_name":     itemName,
	}

	fields["signature"] = c.sign(fields, checkoutFieldOrder)
	return c.cfg.ProcessURL, fields
}

// VerifyNotification runs the full ITN check sequence: signature,
// merchant, completion status, amount, and (unless disabled for
// sandbox runs) the server-to-server validate round trip. Only a
// notification that passes every check may confirm a booking.
func (c *Client) VerifyNotification(ctx context.Context, n *Notification, expectedAmount float64) error {
	fields := make(map[string]string, len(n.Raw))
	for key := range n.Raw {
		if key != "signature" {
			fields[key] = n.Raw.Get(key)
		}
	}

	if n.Signature == "" || c.sign(fields, notifyFieldOrder) != n.Signature {
		return ErrBadSignature
	}

	if n.MerchantID != c.cfg.MerchantID {
		return ErrWrongMerchant
	}

	if n.PaymentStatus != "COMPLETE" {
		return fmt.Errorf("%w: status %s", ErrNotComplete, n.PaymentStatus)
	}

	gross, err := strconv.ParseFloat(n.AmountGross, 64)
	if err != nil {
		return fmt.Errorf("parse amount_gross %q: %w", n.AmountGross, err)
	}
	if diff := gross - expectedAmount; diff > 0.01 || diff < -0.01 {
		return fmt.Errorf("%w: got %.2f, want %.2f", ErrAmountMismatch, gross, expectedAmount)
	}

	if c.cfg.SkipValidatePostback {
		return nil
	}

	return c.validateWithProvider(ctx, n.Raw)
}

// validateWithProvider posts the notification back to the provider,
// which answers VALID only for a payload it actually sent.
func (c *Client) validateWithProvider(ctx context.Context, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ValidateURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build validate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("validate notification with provider: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return fmt.Errorf("read validate response: %w", err)
	}

	// exact match: the refusal response is the string INVALID
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != "VALID" {
		c.log.Warn("Provider rejected notification",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return ErrProviderRefused
	}

	return nil
}

// sign produces the MD5 signature over the non-empty fields in wire
// order, with the passphrase appended when configured.
func (c *Client) sign(fields map[string]string, order []string) string {
	var parts []string
	for _, key := range order {
		if value := fields[key]; value != "" {
			parts = append(parts, key+"="+url.QueryEscape(value))
		}
	}

	payload := strings.Join(parts, "&")
	if c.cfg.Passphrase != "" {
		payload += "&passphrase=" + url.QueryEscape(c.cfg.Passphrase)
	}

	return fmt.Sprintf("%x", md5.Sum([]byte(payload)))
}
