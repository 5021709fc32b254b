package repository

import (
	"errors"

	repo "maltiti/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// unique_violation
const pgUniqueViolation = "23505"

// gorm/pgxのエラーをrepositoryの共通エラーに寄せる
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repo.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return repo.ErrConflict
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repo.ErrConflict
	}
	return err
}

// 0件更新は「対象がない」
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func offsetOf(page int, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
