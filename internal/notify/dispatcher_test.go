package notify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"maltiti/internal/domain/model"
	"maltiti/internal/notify"
	"maltiti/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type emailSender struct{ mock.Mock }

func (m *emailSender) SendEmail(ctx context.Context, e notify.Email) error {
	return m.Called(ctx, e).Error(0)
}

// BatchSize(5)+1件ぶんのSendTimeout
var lease = now.Add(6 * time.Second)

type dispatchFixture struct {
	repos *mocks.TxRepos
	tx    *mocks.TxManager
	sms   *mocks.SMSSender
	email *emailSender
	d     *notify.Dispatcher
}

func newDispatchFixture() *dispatchFixture {
	repos := mocks.NewTxRepos()
	f := &dispatchFixture{
		repos: repos,
		tx:    &mocks.TxManager{Repos: repos},
		sms:   new(mocks.SMSSender),
		email: new(emailSender),
	}
	f.d = notify.NewDispatcher(f.tx, f.sms, f.email, notify.DispatcherConfig{
		BatchSize:   5,
		MaxAttempts: 3,
		SendTimeout: time.Second,
	}, mocks.FixedClock{T: now}, zap.NewNop())
	return f
}

func TestDispatcher_DispatchOnce_SendsAndMarks(t *testing.T) {
	f := newDispatchFixture()
	f.repos.NotificationRepo.On("ClaimDue", mock.Anything, now, lease, 5).Return([]model.Notification{
		{ID: "n-1", Channel: model.ChannelSMS, Recipient: "+233201111111", Body: "hi"},
		{ID: "n-2", Channel: model.ChannelEmail, Recipient: "ama@example.com", RecipientName: "Ama", Subject: "s", Body: "b"},
	}, nil)
	f.sms.On("SendSMS", mock.Anything, "+233201111111", "hi").Return(nil)
	f.email.On("SendEmail", mock.Anything, mock.MatchedBy(func(e notify.Email) bool {
		return e.To == "ama@example.com" && e.Name == "Ama" && e.Subject == "s"
	})).Return(nil)
	f.repos.NotificationRepo.On("MarkSent", mock.Anything, "n-1", now).Return(nil)
	f.repos.NotificationRepo.On("MarkSent", mock.Anything, "n-2", now).Return(nil)

	sent, err := f.d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	f.repos.NotificationRepo.AssertExpectations(t)
	f.sms.AssertExpectations(t)
	f.email.AssertExpectations(t)
}

func TestDispatcher_DispatchOnce_SendsAfterClaimCommits(t *testing.T) {
	f := newDispatchFixture()
	f.repos.NotificationRepo.On("ClaimDue", mock.Anything, now, lease, 5).Return([]model.Notification{
		{ID: "n-1", Channel: model.ChannelSMS, Recipient: "+233201111111", Body: "hi"},
	}, nil)
	f.sms.On("SendSMS", mock.Anything, "+233201111111", "hi").Run(func(mock.Arguments) {
		// 取り出しのTxは送信前に閉じている
		assert.Equal(t, 1, f.tx.Commits)
	}).Return(nil)
	f.repos.NotificationRepo.On("MarkSent", mock.Anything, "n-1", now).Return(nil)

	sent, err := f.d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 2, f.tx.Commits)
	f.sms.AssertExpectations(t)
}

func TestDispatcher_DispatchOnce_MarkErrorDoesNotUndoOtherSends(t *testing.T) {
	f := newDispatchFixture()
	f.repos.NotificationRepo.On("ClaimDue", mock.Anything, now, lease, 5).Return([]model.Notification{
		{ID: "n-1", Channel: model.ChannelSMS, Recipient: "+233201111111", Body: "one"},
		{ID: "n-2", Channel: model.ChannelSMS, Recipient: "+233202222222", Body: "two"},
	}, nil)
	f.sms.On("SendSMS", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.repos.NotificationRepo.On("MarkSent", mock.Anything, "n-1", now).Return(errors.New("conn reset"))
	f.repos.NotificationRepo.On("MarkSent", mock.Anything, "n-2", now).Return(nil)

	sent, err := f.d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	// n-1の書き込みだけが戻り、n-2の送信済みは残る
	assert.Equal(t, 1, f.tx.Rollbacks)
	assert.Equal(t, 2, f.tx.Commits)
	f.sms.AssertNumberOfCalls(t, "SendSMS", 2)
	f.repos.NotificationRepo.AssertExpectations(t)
}

func TestDispatcher_DispatchOnce_SchedulesRetryWithBackoff(t *testing.T) {
	f := newDispatchFixture()
	f.repos.NotificationRepo.On("ClaimDue", mock.Anything, now, lease, 5).Return([]model.Notification{
		{ID: "n-1", Channel: model.ChannelSMS, Recipient: "+233201111111", Body: "hi", Attempts: 1},
	}, nil)
	f.sms.On("SendSMS", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("gateway down"))
	// 2回目の失敗は30s→60s
	f.repos.NotificationRepo.On("MarkFailedAttempt", mock.Anything, "n-1", 2, now.Add(time.Minute), "gateway down", model.NotificationPending).Return(nil)

	sent, err := f.d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	f.repos.NotificationRepo.AssertExpectations(t)
}

func TestDispatcher_DispatchOnce_GivesUpAfterMaxAttempts(t *testing.T) {
	f := newDispatchFixture()
	f.repos.NotificationRepo.On("ClaimDue", mock.Anything, now, lease, 5).Return([]model.Notification{
		{ID: "n-1", Channel: model.ChannelEmail, Recipient: "ama@example.com", Attempts: 2},
	}, nil)
	f.email.On("SendEmail", mock.Anything, mock.Anything).Return(errors.New("smtp: 550"))
	f.repos.NotificationRepo.On("MarkFailedAttempt", mock.Anything, "n-1", 3, mock.Anything, "smtp: 550", model.NotificationFailed).Return(nil)

	_, err := f.d.DispatchOnce(context.Background())
	require.NoError(t, err)
	f.repos.NotificationRepo.AssertExpectations(t)
}

func TestDispatcher_DispatchOnce_UnknownChannelIsRetried(t *testing.T) {
	f := newDispatchFixture()
	f.repos.NotificationRepo.On("ClaimDue", mock.Anything, now, lease, 5).Return([]model.Notification{
		{ID: "n-1", Channel: "fax", Recipient: "x"},
	}, nil)
	f.repos.NotificationRepo.On("MarkFailedAttempt", mock.Anything, "n-1", 1, now.Add(30*time.Second), mock.Anything, model.NotificationPending).Return(nil)

	_, err := f.d.DispatchOnce(context.Background())
	require.NoError(t, err)
	f.repos.NotificationRepo.AssertExpectations(t)
}

func TestDispatcher_DispatchOnce_ClaimErrorRollsBack(t *testing.T) {
	f := newDispatchFixture()
	f.repos.NotificationRepo.On("ClaimDue", mock.Anything, now, lease, 5).Return(nil, errors.New("conn refused"))

	_, err := f.d.DispatchOnce(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, f.tx.Rollbacks)
}

func TestDispatcher_Run_StopsOnCancel(t *testing.T) {
	f := newDispatchFixture()
	f.repos.NotificationRepo.On("ClaimDue", mock.Anything, mock.Anything, mock.Anything, 5).Return([]model.Notification{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, f.d.Run(ctx))
}
