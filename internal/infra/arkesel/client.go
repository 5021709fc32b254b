package arkesel

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// OTP検証成功のコード
const otpVerified = "1100"

type Config struct {
	BaseURL string
	APIKey  string
	Sender  string
	Timeout time.Duration
}

// SMS送信とOTP（電話番号確認）のクライアント
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *zap.Logger
}

// Arkeselが返したエラー
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return "arkesel error"
	}
	return "arkesel: " + e.Message
}

func New(cfg Config, log *zap.Logger) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Sender == "" {
		cfg.Sender = "Maltiti"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

type smsBody struct {
	Sender     string   `json:"sender"`
	Message    string   `json:"message"`
	Recipients []string `json:"recipients"`
}

func (c *Client) SendSMS(ctx context.Context, to string, message string) error {
	var out struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	return c.post(ctx, "/api/v2/sms/send", smsBody{
		Sender:     c.cfg.Sender,
		Message:    message,
		Recipients: []string{to},
	}, &out)
}

type otpGenerateBody struct {
	Expiry   int    `json:"expiry"`
	Length   int    `json:"length"`
	Medium   string `json:"medium"`
	Message  string `json:"message"`
	Number   string `json:"number"`
	SenderID string `json:"sender_id"`
	Type     string `json:"type"`
}

// 確認コードをSMSで送らせる
func (c *Client) RequestOTP(ctx context.Context, phone string) error {
	var out struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	return c.post(ctx, "/api/otp/generate", otpGenerateBody{
		Expiry:   10,
		Length:   6,
		Medium:   "sms",
		Message:  "Your Maltiti verification code is %otp_code%",
		Number:   phone,
		SenderID: c.cfg.Sender,
		Type:     "numeric",
	}, &out)
}

// 検証できたらtrue、できなければfalseとArkeselのメッセージ
func (c *Client) VerifyOTP(ctx context.Context, phone string, code string) (bool, string, error) {
	var out struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	err := c.post(ctx, "/api/otp/verify", map[string]string{
		"number": phone,
		"code":   code,
	}, &out)
	if err != nil {
		return false, "", err
	}
	return out.Code == otpVerified, out.Message, nil
}

func (c *Client) post(ctx context.Context, path string, in interface{}, out interface{}) error {
	b, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("api-key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "arkesel request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.Wrap(err, "read response")
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &e)
		c.log.Warn("arkesel call failed", zap.String("path", path), zap.Int("status", resp.StatusCode), zap.String("message", e.Message))
		return &APIError{StatusCode: resp.StatusCode, Message: e.Message}
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
