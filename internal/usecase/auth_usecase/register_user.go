package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"maltiti/internal/domain/model"
	"maltiti/internal/notify"
	"maltiti/internal/repository"
	"maltiti/internal/validator"

	"golang.org/x/crypto/bcrypt"
)

// 会員登録の入力
type RegisterUserInput struct {
	Email           string
	Name            string
	PhoneNumber     string
	Password        string
	ConfirmPassword string
}

// 会員登録の出力
type RegisterUserOutput struct {
	User model.User `json:"user"`
}

var (
	// 競合
	ErrEmailAlreadyExists = errors.New("User with email already exists")
	// 404
	ErrUserNotFound = errors.New("user not found")
	// 確認・再設定トークンが無い
	ErrTokenNotFound = errors.New("invalid or used token")
	// 410 期限切れ
	ErrTokenExpired = errors.New("token expired")
)

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// RegisterUserUsecaseは会員登録の処理。
// ユーザー作成・確認トークン・確認メールを1つのTxで積む。
type RegisterUserUsecase struct {
	tx      repository.TransactionManager
	hasher  PasswordHasher
	notices *notify.Composer
	idGen   IDGenerator
	clock   Clock
	apiURL  string
}

// DI
func NewRegisterUserUsecase(
	tx repository.TransactionManager,
	hasher PasswordHasher,
	notices *notify.Composer,
	idGen IDGenerator,
	clock Clock,
	apiURL string,
) *RegisterUserUsecase {
	return &RegisterUserUsecase{
		tx:      tx,
		hasher:  hasher,
		notices: notices,
		idGen:   idGen,
		clock:   clock,
		apiURL:  strings.TrimRight(apiURL, "/"),
	}
}

// 会員登録実行
func (u *RegisterUserUsecase) Execute(ctx context.Context, in RegisterUserInput) (RegisterUserOutput, error) {
	var out RegisterUserOutput

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := (validator.RegisterInput{
		Email:           in.Email,
		Name:            in.Name,
		PhoneNumber:     in.PhoneNumber,
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
	}).Validate(); err != nil {
		return out, err
	}

	// パスワードをハッシュ化
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return out, err
	}

	token, err := generateSecureToken(32)
	if err != nil {
		return out, err
	}

	now := u.clock.Now()
	user := &model.User{
		ID:           u.idGen.NewID(),
		Email:        in.Email,
		Name:         strings.TrimSpace(in.Name),
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		PasswordHash: hashed, // ハッシュを保存（平文は保存しない）
		Role:         model.RoleUser,
		TokenVersion: 0,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = u.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		// email重複チェック
		existing, err := r.Users().FindByEmail(ctx, in.Email)
		if err == nil && existing != nil {
			return ErrEmailAlreadyExists
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		if err := r.Users().Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrEmailAlreadyExists
			}
			return err
		}

		if err := r.Verifications().Create(ctx, &model.Verification{
			ID:        u.idGen.NewID(),
			UserID:    user.ID,
			Type:      model.VerificationEmail,
			Token:     token,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		link := u.apiURL + "/auth/verify/" + user.ID + "/" + token
		return r.Notifications().Enqueue(ctx, u.notices.EmailVerification(*user, link))
	})
	if err != nil {
		return out, err
	}

	out.User = *user
	return out, nil
}

func generateSecureToken(bytesLen int) (string, error) {
	// ランダムなバイト列を作る（OSが持つ安全な乱数）
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// bcryptハッシュ化
type BcryptPasswordHasher struct {
	cost int
}

// DI
func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost}
}

// bcryptでハッシュ化
func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}

	return string(hashedBytes), nil
}

// bcryptハッシュと平文を比較
type BcryptPasswordVerifier struct{}

// DI
func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

// 平文(plain)をbcryptで比較
func (v *BcryptPasswordVerifier) Verify(plain string, hashed string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}
