package notify

import (
	"context"
	"time"

	"maltiti/internal/domain/model"
	repo "maltiti/internal/repository"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

type SMSSender interface {
	SendSMS(ctx context.Context, to string, message string) error
}

type EmailSender interface {
	SendEmail(ctx context.Context, e Email) error
}

type DispatcherConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	SendTimeout  time.Duration
	// 取った行を他のdispatcherから隠しておく時間。1バッチ送り切れる長さが必要
	Lease time.Duration
}

// outboxの通知を送る。送信失敗は業務処理に影響させず、backoffで再送する
type Dispatcher struct {
	tx         repo.TransactionManager
	sms        SMSSender
	email      EmailSender
	cfg        DispatcherConfig
	clock      Clock
	newBackOff func() backoff.BackOff
	log        *zap.Logger
}

func NewDispatcher(tx repo.TransactionManager, sms SMSSender, email EmailSender, cfg DispatcherConfig, clock Clock, log *zap.Logger) *Dispatcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if floor := time.Duration(cfg.BatchSize+1) * cfg.SendTimeout; cfg.Lease < floor {
		cfg.Lease = floor
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		tx:    tx,
		sms:   sms,
		email: email,
		cfg:   cfg,
		clock: clock,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 30 * time.Second
			b.Multiplier = 2
			b.RandomizationFactor = 0
			b.MaxInterval = 30 * time.Minute
			b.MaxElapsedTime = 0
			return b
		},
		log: log,
	}
}

// ctxが終わるまでポーリングする
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	d.log.Info("notification dispatcher started", zap.Duration("interval", d.cfg.PollInterval))
	for {
		if _, err := d.DispatchOnce(ctx); err != nil && ctx.Err() == nil {
			d.log.Error("dispatch notifications", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			d.log.Info("notification dispatcher stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// 期限が来た通知を1バッチ送る。送れた件数を返す。
// 取り出しは短いTxで済ませ、送信と結果の書き込みはTxの外で1件ずつ行う
func (d *Dispatcher) DispatchOnce(ctx context.Context) (int, error) {
	now := d.clock.Now()

	var items []model.Notification
	err := d.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		items, err = r.Notifications().ClaimDue(ctx, now, now.Add(d.cfg.Lease), d.cfg.BatchSize)
		if err != nil {
			return errors.Wrap(err, "claim due")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, n := range items {
		if ctx.Err() != nil {
			break
		}
		if d.deliver(ctx, n, now) {
			sent++
		}
	}
	return sent, nil
}

// 1件送って結果を書く。書き込みに失敗した行はleaseが切れたら再送される
func (d *Dispatcher) deliver(ctx context.Context, n model.Notification, now time.Time) bool {
	sendErr := d.send(ctx, n)
	if sendErr == nil {
		err := d.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			return r.Notifications().MarkSent(ctx, n.ID, d.clock.Now())
		})
		if err != nil {
			d.log.Error("mark notification sent", zap.String("id", n.ID), zap.Error(err))
		}
		return true
	}

	attempts := n.Attempts + 1
	status := model.NotificationPending
	if attempts >= d.cfg.MaxAttempts {
		status = model.NotificationFailed
	}
	next := now.Add(d.retryDelay(attempts))

	d.log.Warn("notification send failed",
		zap.String("id", n.ID),
		zap.String("channel", string(n.Channel)),
		zap.Int("attempts", attempts),
		zap.String("status", string(status)),
		zap.Error(sendErr),
	)
	err := d.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		return r.Notifications().MarkFailedAttempt(ctx, n.ID, attempts, next, sendErr.Error(), status)
	})
	if err != nil {
		d.log.Error("mark notification failed attempt", zap.String("id", n.ID), zap.Error(err))
	}
	return false
}

func (d *Dispatcher) send(ctx context.Context, n model.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
	defer cancel()

	switch n.Channel {
	case model.ChannelSMS:
		return d.sms.SendSMS(ctx, n.Recipient, n.Body)
	case model.ChannelEmail:
		return d.email.SendEmail(ctx, Email{
			To:          n.Recipient,
			Name:        n.RecipientName,
			Subject:     n.Subject,
			Body:        n.Body,
			ActionURL:   n.ActionURL,
			LinkLabel:   n.LinkLabel,
			ActionLabel: n.ActionLabel,
		})
	default:
		return errors.Errorf("unknown channel %q", n.Channel)
	}
}

// attempts回目の失敗後に待つ時間
func (d *Dispatcher) retryDelay(attempts int) time.Duration {
	b := d.newBackOff()
	b.Reset()
	delay := time.Duration(0)
	for i := 0; i < attempts; i++ {
		next := b.NextBackOff()
		if next == backoff.Stop {
			break
		}
		delay = next
	}
	return delay
}
