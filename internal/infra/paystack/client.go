package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"maltiti/internal/payment"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var _ payment.Gateway = (*Client)(nil)

// Config for the Paystack REST API.
type Config struct {
	BaseURL     string
	SecretKey   string
	Currency    string
	Timeout     time.Duration
	VerifyTries uint64
}

// Client talks to Paystack with a bounded http.Client.
type Client struct {
	cfg        Config
	httpClient *http.Client
	newBackOff func() backoff.BackOff
	log        *zap.Logger
}

type Option func(*Client)

// WithHTTPClient overrides the transport (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBackOff overrides the verify retry schedule.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(c *Client) {
		if fn != nil {
			c.newBackOff = fn
		}
	}
}

func New(cfg Config, log *zap.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, errors.New("paystack: secret key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.paystack.co"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.VerifyTries == 0 {
		cfg.VerifyTries = 1
	}
	if log == nil {
		log = zap.NewNop()
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 300 * time.Millisecond
			b.MaxElapsedTime = cfg.Timeout
			return b
		},
		log: log,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

type envelope[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type initializeBody struct {
	Amount      string            `json:"amount"`
	Email       string            `json:"email"`
	Reference   string            `json:"reference"`
	CallbackURL string            `json:"callback_url"`
	Currency    string            `json:"currency,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type verifyData struct {
	Reference       string `json:"reference"`
	Status          string `json:"status"`
	Amount          int64  `json:"amount"`
	GatewayResponse string `json:"gateway_response"`
}

type refundData struct {
	Status      string `json:"status"`
	Transaction struct {
		Reference string `json:"reference"`
	} `json:"transaction"`
}

// Paystackはpesewas（最小通貨単位）の整数で受け取る
func toMinorUnits(amount decimal.Decimal) string {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).String()
}

func fromMinorUnits(v int64) decimal.Decimal {
	return decimal.New(v, -2)
}

func (c *Client) Initialize(ctx context.Context, req payment.InitializeRequest) (payment.Session, error) {
	body := initializeBody{
		Amount:      toMinorUnits(req.Amount),
		Email:       req.Email,
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
		Currency:    c.cfg.Currency,
		Metadata:    req.Metadata,
	}

	var out envelope[payment.Session]
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", body, &out); err != nil {
		c.log.Warn("paystack initialize failed", zap.String("reference", req.Reference), zap.Error(err))
		return payment.Session{}, err
	}
	if out.Data.Reference == "" {
		out.Data.Reference = req.Reference
	}
	return out.Data, nil
}

// Verifyは冪等なのでネットワークエラーと5xxだけ再試行する
func (c *Client) Verify(ctx context.Context, reference string) (payment.Verification, error) {
	var out envelope[verifyData]
	path := "/transaction/verify/" + url.PathEscape(reference)

	op := func() error {
		err := c.do(ctx, http.MethodGet, path, nil, &out)
		var gwErr *payment.Error
		if errors.As(err, &gwErr) && gwErr.StatusCode < http.StatusInternalServerError {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.cfg.VerifyTries-1), ctx)
	notify := func(err error, next time.Duration) {
		c.log.Warn("paystack verify retry", zap.String("reference", reference), zap.Duration("next", next), zap.Error(err))
	}
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return payment.Verification{}, err
	}

	return payment.Verification{
		Reference:       out.Data.Reference,
		Status:          normalizeStatus(out.Data.Status),
		Amount:          fromMinorUnits(out.Data.Amount),
		GatewayResponse: out.Data.GatewayResponse,
	}, nil
}

func (c *Client) Refund(ctx context.Context, reference string) (payment.Refund, error) {
	var out envelope[refundData]
	body := map[string]string{"transaction": reference}
	if err := c.do(ctx, http.MethodPost, "/refund", body, &out); err != nil {
		c.log.Warn("paystack refund failed", zap.String("reference", reference), zap.Error(err))
		return payment.Refund{}, err
	}
	ref := out.Data.Transaction.Reference
	if ref == "" {
		ref = reference
	}
	return payment.Refund{Reference: ref, Status: out.Data.Status}, nil
}

func normalizeStatus(s string) payment.Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success":
		return payment.StatusSuccess
	case "failed":
		return payment.StatusFailed
	case "abandoned":
		return payment.StatusAbandoned
	case "reversed":
		return payment.StatusReversed
	default:
		return payment.StatusPending
	}
}

func (c *Client) do(ctx context.Context, method string, path string, in interface{}, out interface{}) error {
	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "paystack request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.Wrap(err, "read response")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var e envelope[json.RawMessage]
		_ = json.Unmarshal(raw, &e)
		return &payment.Error{StatusCode: resp.StatusCode, Message: e.Message}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, "decode response")
	}

	// 200でもstatus=falseなら失敗扱い
	var head envelope[json.RawMessage]
	if err := json.Unmarshal(raw, &head); err == nil && !head.Status {
		return &payment.Error{StatusCode: resp.StatusCode, Message: head.Message}
	}
	return nil
}
