// Package token issues and parses the HS256 access and refresh JWTs.
package token

import (
	"time"

	"maltiti/internal/config"
	"maltiti/internal/domain/model"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid token")

// アクセストークンのclaims（sub, role, tv）
type AccessClaims struct {
	Role string `json:"role"`
	TV   int    `json:"tv"`
	jwt.RegisteredClaims
}

// リフレッシュトークンはjtiにRedisへ保存するIDを持つ
type refreshClaims struct {
	jwt.RegisteredClaims
}

type Manager struct {
	secret        []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewManager(cfg config.JWTConfig) *Manager {
	return &Manager{
		secret:        []byte(cfg.Secret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
	}
}

func (m *Manager) IssueAccess(userID string, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error) {
	exp := now.Add(m.accessTTL)
	claims := AccessClaims{
		Role: string(role),
		TV:   tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign access token")
	}
	return signed, exp, nil
}

func (m *Manager) IssueRefresh(userID string, tokenID string, now time.Time) (string, time.Time, error) {
	exp := now.Add(m.refreshTTL)
	claims := refreshClaims{jwt.RegisteredClaims{
		Subject:   userID,
		ID:        tokenID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.refreshSecret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign refresh token")
	}
	return signed, exp, nil
}

// 署名・期限を検証して (userID, tokenID) を返す
func (m *Manager) ParseRefresh(raw string) (string, string, error) {
	var claims refreshClaims
	if err := parse(raw, &claims, m.refreshSecret); err != nil {
		return "", "", err
	}
	if claims.Subject == "" || claims.ID == "" {
		return "", "", ErrInvalidToken
	}
	return claims.Subject, claims.ID, nil
}

func (m *Manager) ParseAccess(raw string) (AccessClaims, error) {
	var claims AccessClaims
	if err := parse(raw, &claims, m.secret); err != nil {
		return AccessClaims{}, err
	}
	if claims.Subject == "" || claims.Role == "" || claims.TV < 0 {
		return AccessClaims{}, ErrInvalidToken
	}
	return claims, nil
}

func parse(raw string, claims jwt.Claims, secret []byte) error {
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || tok == nil || !tok.Valid {
		return ErrInvalidToken
	}
	return nil
}
