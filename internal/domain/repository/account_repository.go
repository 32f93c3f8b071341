package repository

import (
	"context"
	"errors"

	"github.com/aerosimlabs/simgate/internal/domain/entity"
)

// Store errors surfaced by implementations. Workflows map these onto the
// HTTP taxonomy (409 duplicate, 404 no change, 500 unavailable).
var (
	ErrNotFound    = errors.New("account not found")
	ErrDuplicate   = errors.New("username or email already exists")
	ErrNoChange    = errors.New("no fields updated")
	ErrUnavailable = errors.New("account store unavailable")
)

// Counts aggregates the dashboard numbers over the account collection.
type Counts struct {
	TotalUsers    int64
	TotalAccess   int64 // activated accounts
	PendingAccess int64 // awaiting activation
}

// AccountRepository is the narrow contract to the credential store.
// FindByIdentity matches username OR email so registration can check both
// uniqueness constraints in a single query.
type AccountRepository interface {
	FindByIdentity(ctx context.Context, username, email string) (*entity.Account, error)
	Insert(ctx context.Context, a *entity.Account) error
	UpdateDeviceID(ctx context.Context, id, deviceID string) error
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	List(ctx context.Context) ([]entity.Account, error)
	Counts(ctx context.Context) (Counts, error)
}
