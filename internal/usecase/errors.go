package usecase

import (
	"errors"
	"fmt"
	"net/http"

	"maltiti/internal/payment"
	"maltiti/internal/validator"
)

// handlerでそのままステータスとメッセージに変換する
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

func dbError() error {
	return NewHTTPError(http.StatusInternalServerError, "db error")
}

// 入力チェックのエラーは400
func invalid(err error) error {
	var ve *validator.Error
	if errors.As(err, &ve) {
		return NewHTTPError(http.StatusBadRequest, ve.Message)
	}
	return NewHTTPError(http.StatusBadRequest, "invalid input")
}

// 決済ゲートウェイのエラーは500。メッセージがあればそれを返す
func upstreamError(err error) error {
	if msg := payment.UpstreamMessage(err); msg != "" {
		return NewHTTPError(http.StatusInternalServerError, msg)
	}
	return NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
}
