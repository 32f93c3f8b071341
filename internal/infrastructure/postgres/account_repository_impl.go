package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aerosimlabs/simgate/internal/domain/entity"
	"github.com/aerosimlabs/simgate/internal/domain/repository"
)

const opTimeout = 5 * time.Second

// uniqueViolation is the Postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

// updatable maps request field names to their columns. Anything outside the
// map is silently dropped by UpdateFields.
var updatable = map[string]string{
	"organization": "organization",
	"email":        "email",
	"mobile":       "mobile",
	"username":     "username",
	"address":      "address",
	"mac":          "device_id",
	"activated":    "activated",
}

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) FindByIdentity(ctx context.Context, username, email string) (*entity.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	a := &entity.Account{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, organization, email, mobile, username, password_hash, address, device_id, created_at, activated
		FROM accounts
		WHERE username = $1 OR email = $2
	`, username, email)

	if err := row.Scan(&a.ID, &a.Organization, &a.Email, &a.Mobile, &a.Username,
		&a.PasswordHash, &a.Address, &a.DeviceID, &a.CreatedAt, &a.Activated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, storeErr(err)
	}
	return a, nil
}

func (r *AccountRepository) Insert(ctx context.Context, a *entity.Account) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (organization, email, mobile, username, password_hash, address, device_id, activated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, a.Organization, a.Email, a.Mobile, a.Username, a.PasswordHash, a.Address, a.DeviceID, a.Activated)

	if err := row.Scan(&a.ID, &a.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrDuplicate
		}
		return storeErr(err)
	}
	return nil
}

func (r *AccountRepository) UpdateDeviceID(ctx context.Context, id, deviceID string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.pool.Exec(ctx, `UPDATE accounts SET device_id = $1 WHERE id = $2`, deviceID, id)
	if err != nil {
		return storeErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateFields applies a partial update limited to the updatable whitelist.
// Returns ErrNoChange when nothing usable was supplied or the id is unknown.
func (r *AccountRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	set := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for k, v := range fields {
		col, ok := updatable[k]
		if !ok {
			continue
		}
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if len(set) == 0 {
		return repository.ErrNoChange
	}
	args = append(args, id)

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.pool.Exec(ctx,
		fmt.Sprintf("UPDATE accounts SET %s WHERE id = $%d", strings.Join(set, ", "), len(args)), args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrDuplicate
		}
		return storeErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNoChange
	}
	return nil
}

func (r *AccountRepository) List(ctx context.Context) ([]entity.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT id, organization, email, mobile, username, password_hash, address, device_id, created_at, activated
		FROM accounts
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var out []entity.Account
	for rows.Next() {
		var a entity.Account
		if err := rows.Scan(&a.ID, &a.Organization, &a.Email, &a.Mobile, &a.Username,
			&a.PasswordHash, &a.Address, &a.DeviceID, &a.CreatedAt, &a.Activated); err != nil {
			return nil, storeErr(err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}

func (r *AccountRepository) Counts(ctx context.Context) (repository.Counts, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var c repository.Counts
	row := r.pool.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE activated),
		       count(*) FILTER (WHERE NOT activated)
		FROM accounts
	`)
	if err := row.Scan(&c.TotalUsers, &c.TotalAccess, &c.PendingAccess); err != nil {
		return repository.Counts{}, storeErr(err)
	}
	return c, nil
}

// storeErr collapses timeouts and connection failures into ErrUnavailable so
// callers answer with a generic 500 and leave detail to the logs.
func storeErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return repository.ErrUnavailable
	}
	return err
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
