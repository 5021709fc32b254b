package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"maltiti/internal/domain/model"
	"maltiti/internal/repository"
)

// handlerからusecaseに渡す入力
type LoginInput struct {
	Email    string
	Password string
}

// アクセストークンとリフレッシュトークンの組
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenVersion int    `json:"token_version"`
}

// handlerがJSONにして返す
type LoginOutput struct {
	User  model.User `json:"user"`
	Token TokenPair  `json:"token"`
}

// メールまたはパスワードが違う
var ErrInvalidCredentials = errors.New("invalid credentials")

// 停止済みユーザー
var ErrUserInactive = errors.New("user is inactive")

// JWTを発行・検証する約束
type TokenIssuer interface {
	IssueAccess(userID string, role model.Role, tokenVersion int, now time.Time) (token string, expiresAt time.Time, err error)
	IssueRefresh(userID string, tokenID string, now time.Time) (token string, expiresAt time.Time, err error)
	ParseRefresh(token string) (userID string, tokenID string, err error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

type LoginUsecase struct {
	userRepo   repository.UserRepository
	tokens     repository.RefreshTokenStore
	verifier   PasswordVerifier
	issuer     TokenIssuer
	idGen      IDGenerator
	clock      Clock
	refreshTTL time.Duration
}

func NewLoginUsecase(
	userRepo repository.UserRepository,
	tokens repository.RefreshTokenStore,
	verifier PasswordVerifier,
	issuer TokenIssuer,
	idGen IDGenerator,
	clock Clock,
	refreshTTL time.Duration,
) *LoginUsecase {
	return &LoginUsecase{
		userRepo:   userRepo,
		tokens:     tokens,
		verifier:   verifier,
		issuer:     issuer,
		idGen:      idGen,
		clock:      clock,
		refreshTTL: refreshTTL,
	}
}

// ログイン処理を実行する
func (u *LoginUsecase) Execute(ctx context.Context, in LoginInput) (LoginOutput, error) {
	var out LoginOutput

	//emailでユーザー取得
	user, err := u.userRepo.FindByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return out, ErrInvalidCredentials
		}
		return out, err
	}

	//パスワード照合
	if ok := u.verifier.Verify(in.Password, user.PasswordHash); !ok {
		return out, ErrInvalidCredentials
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return out, ErrUserInactive
	}

	now := u.clock.Now()
	pair, err := issuePair(ctx, u.issuer, u.tokens, u.idGen, user, now, u.refreshTTL)
	if err != nil {
		return out, err
	}

	//最終ログイン時刻更新
	user.LastLoginAt = &now
	if err := u.userRepo.Update(ctx, user); err != nil {
		return out, err
	}

	out.User = *user
	out.Token = pair
	return out, nil
}

// 新しいリフレッシュトークンIDをRedisに置き、古いものは上書きで無効になる
func issuePair(ctx context.Context, issuer TokenIssuer, store repository.RefreshTokenStore, idGen IDGenerator, user *model.User, now time.Time, refreshTTL time.Duration) (TokenPair, error) {
	access, accessExp, err := issuer.IssueAccess(user.ID, user.Role, user.TokenVersion, now)
	if err != nil {
		return TokenPair{}, err
	}

	tokenID := idGen.NewID()
	refresh, _, err := issuer.IssueRefresh(user.ID, tokenID, now)
	if err != nil {
		return TokenPair{}, err
	}
	if err := store.Save(ctx, user.ID, tokenID, refreshTTL); err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(accessExp.Sub(now).Seconds()),
		TokenVersion: user.TokenVersion,
	}, nil
}
