package mocks

import (
	"context"
	"fmt"
	"io"
	"time"

	"maltiti/internal/payment"

	"github.com/stretchr/testify/mock"
)

type PaymentGateway struct{ mock.Mock }

func (m *PaymentGateway) Initialize(ctx context.Context, req payment.InitializeRequest) (payment.Session, error) {
	args := m.Called(ctx, req)
	s, _ := args.Get(0).(payment.Session)
	return s, args.Error(1)
}

func (m *PaymentGateway) Verify(ctx context.Context, reference string) (payment.Verification, error) {
	args := m.Called(ctx, reference)
	v, _ := args.Get(0).(payment.Verification)
	return v, args.Error(1)
}

func (m *PaymentGateway) Refund(ctx context.Context, reference string) (payment.Refund, error) {
	args := m.Called(ctx, reference)
	r, _ := args.Get(0).(payment.Refund)
	return r, args.Error(1)
}

type ImageUploader struct{ mock.Mock }

func (m *ImageUploader) Upload(ctx context.Context, name string, contentType string, r io.Reader) (string, error) {
	args := m.Called(ctx, name, contentType, r)
	return args.String(0), args.Error(1)
}

type SMSSender struct{ mock.Mock }

func (m *SMSSender) SendSMS(ctx context.Context, to string, message string) error {
	return m.Called(ctx, to, message).Error(0)
}

// 連番のIDを返す
type SeqIDs struct {
	Prefix string
	n      int
}

func (g *SeqIDs) NewID() string {
	g.n++
	return fmt.Sprintf("%s%d", g.Prefix, g.n)
}

type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time {
	return c.T
}
