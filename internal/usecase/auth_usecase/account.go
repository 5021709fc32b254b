package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"maltiti/internal/domain/model"
	"maltiti/internal/notify"
	"maltiti/internal/repository"
	"maltiti/internal/validator"
)

const (
	emailTokenTTL = 60 * time.Minute
	resetTokenTTL = 10 * time.Minute
)

var (
	ErrPhoneMissing     = errors.New("phone number not set")
	ErrInvalidPhoneCode = errors.New("invalid verification code")
)

// Arkesel OTP（1100で成功）
type PhoneVerifier interface {
	RequestOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone string, code string) (bool, string, error)
}

type ResetPasswordInput struct {
	Token           string
	Password        string
	ConfirmPassword string
}

// メール確認、パスワード再設定、電話番号確認、プロフィール
type AccountUsecase struct {
	tx          repository.TransactionManager
	userRepo    repository.UserRepository
	hasher      PasswordHasher
	phones      PhoneVerifier
	notices     *notify.Composer
	idGen       IDGenerator
	clock       Clock
	frontendURL string
}

func NewAccountUsecase(
	tx repository.TransactionManager,
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	phones PhoneVerifier,
	notices *notify.Composer,
	idGen IDGenerator,
	clock Clock,
	frontendURL string,
) *AccountUsecase {
	return &AccountUsecase{
		tx:          tx,
		userRepo:    userRepo,
		hasher:      hasher,
		phones:      phones,
		notices:     notices,
		idGen:       idGen,
		clock:       clock,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

func (u *AccountUsecase) Me(ctx context.Context, userID string) (model.User, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, ErrUserNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	return *user, nil
}

// メール確認リンクの処理。トークンは使い捨て。
func (u *AccountUsecase) VerifyEmail(ctx context.Context, userID string, token string) error {
	return u.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		v, err := r.Verifications().FindByToken(ctx, model.VerificationEmail, token)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTokenNotFound
		}
		if err != nil {
			return err
		}
		if v.UserID != userID {
			return ErrTokenNotFound
		}

		now := u.clock.Now()
		if now.Sub(v.CreatedAt) > emailTokenTTL {
			return ErrTokenExpired
		}

		user, err := r.Users().FindByID(ctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		user.EmailVerifiedAt = &now
		user.UpdatedAt = now
		if err := r.Users().Update(ctx, user); err != nil {
			return err
		}
		return r.Verifications().DeleteByUser(ctx, userID, model.VerificationEmail)
	})
}

// 再設定トークンを作り、リンクをメールで送る（outbox経由）
func (u *AccountUsecase) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validator.Email(email); err != nil {
		return err
	}

	token, err := generateSecureToken(32)
	if err != nil {
		return err
	}

	return u.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		user, err := r.Users().FindByEmail(ctx, email)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		// 古いトークンは無効にする
		if err := r.Verifications().DeleteByUser(ctx, user.ID, model.VerificationPasswordReset); err != nil {
			return err
		}
		if err := r.Verifications().Create(ctx, &model.Verification{
			ID:        u.idGen.NewID(),
			UserID:    user.ID,
			Type:      model.VerificationPasswordReset,
			Token:     token,
			CreatedAt: u.clock.Now(),
		}); err != nil {
			return err
		}

		link := u.frontendURL + "/reset-password/" + token
		return r.Notifications().Enqueue(ctx, u.notices.PasswordReset(*user, link))
	})
}

// パスワード再設定。成功したらtoken_versionを上げて既存セッションを切る。
func (u *AccountUsecase) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	if err := validator.Password(in.Password, in.ConfirmPassword); err != nil {
		return err
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return err
	}

	return u.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		v, err := r.Verifications().FindByToken(ctx, model.VerificationPasswordReset, in.Token)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTokenNotFound
		}
		if err != nil {
			return err
		}

		now := u.clock.Now()
		if now.Sub(v.CreatedAt) > resetTokenTTL {
			return ErrTokenExpired
		}

		user, err := r.Users().FindByID(ctx, v.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		user.PasswordHash = hashed
		user.UpdatedAt = now
		if err := r.Users().Update(ctx, user); err != nil {
			return err
		}
		if err := r.Users().IncrementTokenVersion(ctx, user.ID); err != nil {
			return err
		}
		return r.Verifications().DeleteByUser(ctx, user.ID, model.VerificationPasswordReset)
	})
}

// 登録済み電話番号にOTPを送る
func (u *AccountUsecase) RequestPhoneCode(ctx context.Context, userID string) error {
	user, err := u.Me(ctx, userID)
	if err != nil {
		return err
	}
	if user.PhoneNumber == "" {
		return ErrPhoneMissing
	}
	return u.phones.RequestOTP(ctx, user.PhoneNumber)
}

func (u *AccountUsecase) VerifyPhone(ctx context.Context, userID string, code string) (model.User, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, ErrUserNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	if user.PhoneNumber == "" {
		return model.User{}, ErrPhoneMissing
	}

	ok, _, err := u.phones.VerifyOTP(ctx, user.PhoneNumber, strings.TrimSpace(code))
	if err != nil {
		return model.User{}, err
	}
	if !ok {
		return model.User{}, ErrInvalidPhoneCode
	}

	now := u.clock.Now()
	user.PhoneVerifiedAt = &now
	user.UpdatedAt = now
	if err := u.userRepo.Update(ctx, user); err != nil {
		return model.User{}, err
	}
	return *user, nil
}
