package sqlite

import (
	"context"
	"database/sql"

	"github.com/aurorahq/standardauth/internal/auth/domain"
	"github.com/aurorahq/standardauth/internal/auth/store"
)

type accountsRepo struct {
	q querier
}

const accountColumns = `id, user_id, login, password, is_disabled, properties, last_modified, created_at, updated_at`

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	props, err := marshalProperties(a.Properties)
	if err != nil {
		return err
	}

	ts := now()
	lastModified := a.LastModified
	if lastModified.IsZero() {
		lastModified = ts
	}

	_, err = r.q.ExecContext(ctx, `
		INSERT INTO accounts (id, user_id, login, password, is_disabled, properties, last_modified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Login, a.EncryptedPassword, a.Disabled, props, lastModified, ts, ts,
	)
	return mapConstraint(err)
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

func (r *accountsRepo) GetAccountByLogin(ctx context.Context, login string) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE login = ?`, login)
	return scanAccount(row)
}

func (r *accountsRepo) ListAccountsByUser(ctx context.Context, userID string) ([]domain.Account, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *accountsRepo) LoginExists(ctx context.Context, login string) (bool, error) {
	var count int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts WHERE login = ?`, login).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *accountsRepo) UpdateAccount(ctx context.Context, a domain.Account) error {
	props, err := marshalProperties(a.Properties)
	if err != nil {
		return err
	}

	res, err := r.q.ExecContext(ctx, `
		UPDATE accounts
		SET user_id = ?, login = ?, password = ?, is_disabled = ?, properties = ?, last_modified = ?, updated_at = ?
		WHERE id = ?`,
		a.UserID, a.Login, a.EncryptedPassword, a.Disabled, props, a.LastModified, now(), a.ID,
	)
	if err != nil {
		return mapConstraint(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *accountsRepo) DeleteAccount(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *accountsRepo) DeleteOrphanedAccounts(ctx context.Context) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		DELETE FROM accounts
		WHERE user_id != '' AND user_id NOT IN (SELECT id FROM users)`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (domain.Account, error) {
	var (
		a     domain.Account
		props sql.NullString
	)
	err := s.Scan(
		&a.ID, &a.UserID, &a.Login, &a.EncryptedPassword, &a.Disabled,
		&props, &a.LastModified, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}

	a.Properties, err = unmarshalProperties(props)
	if err != nil {
		return domain.Account{}, err
	}
	return a, nil
}
