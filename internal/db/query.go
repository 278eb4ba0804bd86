package db

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/Spok95/siakad/internal/ctxutil"
)

// Queryer is satisfied by *sqlx.DB and *sqlx.Tx.
type Queryer = sqlx.ExtContext

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func selectAll[T any](ctx context.Context, database Queryer, b sq.Sqlizer, what string) ([]T, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := sqlx.SelectContext(ctx, database, &out, query, args...); err != nil {
		return nil, mapErr(err, what)
	}
	return out, nil
}

func selectOne[T any](ctx context.Context, database Queryer, b sq.Sqlizer, what string) (*T, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	var v T
	if err := sqlx.GetContext(ctx, database, &v, query, args...); err != nil {
		return nil, mapErr(err, what)
	}
	return &v, nil
}

// insertReturningID runs an INSERT ... RETURNING id.
func insertReturningID(ctx context.Context, database Queryer, b sq.InsertBuilder, what string) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	query, args, err := b.Suffix("RETURNING id").ToSql()
	if err != nil {
		return 0, err
	}
	var id int64
	if err := database.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, mapErr(err, what)
	}
	return id, nil
}

// Fields maps column names to values for INSERT and UPDATE.
type Fields map[string]any

// execAffected runs b and returns onMiss when no row matched. A nil onMiss
// reports NotFound for what.
func execAffected(ctx context.Context, database Queryer, b sq.Sqlizer, what string, onMiss error) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	res, err := database.ExecContext(ctx, query, args...)
	if err != nil {
		return mapErr(err, what)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if onMiss != nil {
			return onMiss
		}
		return mapErr(sql.ErrNoRows, what)
	}
	return nil
}

// exists reports whether b (a SELECT 1 ...) yields a row.
func exists(ctx context.Context, database Queryer, b sq.SelectBuilder) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	query, args, err := b.ToSql()
	if err != nil {
		return false, err
	}
	var ok bool
	if err := database.QueryRowxContext(ctx, "SELECT EXISTS ("+query+")", args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// InTx runs fn inside a transaction and commits when it returns nil.
func InTx(ctx context.Context, database *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := database.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
