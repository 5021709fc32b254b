package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"maltiti/internal/domain/model"
	"maltiti/internal/repository"
)

// 署名不正・期限切れ・ローテーション済み
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

type ForceLogoutOutput struct {
	UserID          string `json:"user_id"`
	NewTokenVersion int    `json:"new_token_version"`
}

// リフレッシュ・ログアウト・強制ログアウト
type SessionUsecase struct {
	tx         repository.TransactionManager
	userRepo   repository.UserRepository
	tokens     repository.RefreshTokenStore
	issuer     TokenIssuer
	idGen      IDGenerator
	clock      Clock
	refreshTTL time.Duration
}

func NewSessionUsecase(
	tx repository.TransactionManager,
	userRepo repository.UserRepository,
	tokens repository.RefreshTokenStore,
	issuer TokenIssuer,
	idGen IDGenerator,
	clock Clock,
	refreshTTL time.Duration,
) *SessionUsecase {
	return &SessionUsecase{
		tx:         tx,
		userRepo:   userRepo,
		tokens:     tokens,
		issuer:     issuer,
		idGen:      idGen,
		clock:      clock,
		refreshTTL: refreshTTL,
	}
}

// Redisに残っているIDと一致したときだけ新しい組を出す（使い回しは401）
func (u *SessionUsecase) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	userID, tokenID, err := u.issuer.ParseRefresh(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	stored, err := u.tokens.Get(ctx, userID)
	if errors.Is(err, repository.ErrRefreshTokenNotFound) {
		return TokenPair{}, ErrInvalidRefreshToken
	}
	if err != nil {
		return TokenPair{}, err
	}
	if stored != tokenID {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return TokenPair{}, ErrInvalidRefreshToken
	}
	if err != nil {
		return TokenPair{}, err
	}
	if !user.IsActive {
		return TokenPair{}, ErrUserInactive
	}

	return issuePair(ctx, u.issuer, u.tokens, u.idGen, user, u.clock.Now(), u.refreshTTL)
}

// リフレッシュIDを消し、token_versionを上げて発行済みアクセストークンも無効にする
func (u *SessionUsecase) Logout(ctx context.Context, userID string) error {
	if err := u.tokens.Delete(ctx, userID); err != nil {
		return err
	}
	if err := u.userRepo.IncrementTokenVersion(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// 管理者による強制ログアウト（監査ログを残す）
func (u *SessionUsecase) ForceLogout(ctx context.Context, actorAdminUserID string, targetUserID string) (ForceLogoutOutput, error) {
	var out ForceLogoutOutput

	err := u.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		before, err := r.Users().FindByID(ctx, targetUserID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		if err := r.Users().IncrementTokenVersion(ctx, targetUserID); err != nil {
			return err
		}

		out = ForceLogoutOutput{UserID: targetUserID, NewTokenVersion: before.TokenVersion + 1}
		return r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionForceLogout,
			ResourceType: model.AuditResourceUser,
			ResourceID:   targetUserID,
			BeforeJSON:   tokenVersionJSON(before.TokenVersion),
			AfterJSON:    tokenVersionJSON(out.NewTokenVersion),
			CreatedAt:    u.clock.Now(),
		})
	})
	if err != nil {
		return ForceLogoutOutput{}, err
	}

	// Tx外：Redisはロールバックできないのでcommit後に消す
	if err := u.tokens.Delete(ctx, targetUserID); err != nil {
		return ForceLogoutOutput{}, err
	}
	return out, nil
}

func tokenVersionJSON(v int) string {
	return `{"token_version":` + strconv.Itoa(v) + `}`
}
