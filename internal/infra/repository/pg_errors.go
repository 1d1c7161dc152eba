package repository

import (
	"errors"

	repo "storefront/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Postgresの制約違反をrepositoryのエラーに寄せる
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return errors.Join(repo.ErrDuplicate, err)
	case pgForeignKeyViolation:
		return errors.Join(repo.ErrNotFound, err)
	}
	return err
}
