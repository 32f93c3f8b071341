package application

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerosimlabs/simgate/config"
	"github.com/aerosimlabs/simgate/internal/domain/entity"
	repo "github.com/aerosimlabs/simgate/internal/domain/repository"
	"github.com/aerosimlabs/simgate/pkg/helpers"
)

// fakeRepo is an in-memory AccountRepository used by workflow tests.
type fakeRepo struct {
	mu        sync.Mutex
	accounts  []*entity.Account
	nextID    int
	findErr   error
	deviceErr error
}

func (f *fakeRepo) FindByIdentity(_ context.Context, username, email string) (*entity.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, a := range f.accounts {
		if (username != "" && a.Username == username) || (email != "" && a.Email == email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeRepo) Insert(_ context.Context, a *entity.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.accounts {
		if x.Username == a.Username || x.Email == a.Email {
			return repo.ErrDuplicate
		}
	}
	f.nextID++
	a.ID = string(rune('a' + f.nextID))
	a.CreatedAt = time.Now()
	cp := *a
	f.accounts = append(f.accounts, &cp)
	return nil
}

func (f *fakeRepo) UpdateDeviceID(_ context.Context, id, deviceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deviceErr != nil {
		return f.deviceErr
	}
	for _, a := range f.accounts {
		if a.ID == id {
			a.DeviceID = &deviceID
			return nil
		}
	}
	return repo.ErrNotFound
}

func (f *fakeRepo) UpdateFields(_ context.Context, id string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.ID != id {
			continue
		}
		changed := false
		if v, ok := fields["organization"].(string); ok {
			a.Organization = v
			changed = true
		}
		if v, ok := fields["mobile"].(string); ok {
			a.Mobile = v
			changed = true
		}
		if v, ok := fields["activated"].(bool); ok {
			a.Activated = v
			changed = true
		}
		if !changed {
			return repo.ErrNoChange
		}
		return nil
	}
	return repo.ErrNoChange
}

func (f *fakeRepo) List(_ context.Context) ([]entity.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.Account, 0, len(f.accounts))
	for _, a := range f.accounts {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeRepo) Counts(_ context.Context) (repo.Counts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := repo.Counts{TotalUsers: int64(len(f.accounts))}
	for _, a := range f.accounts {
		if a.Activated {
			c.TotalAccess++
		} else {
			c.PendingAccess++
		}
	}
	return c, nil
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestService(f *fakeRepo, cfg *config.Config) *Service {
	if cfg == nil {
		cfg = &config.Config{
			AppName:            "simgate",
			LoginIdentityField: config.IdentityUsername,
			TokenTTL:           12 * time.Hour,
		}
	}
	jwt := helpers.NewJWTManager("test-secret", cfg.TokenTTL)
	return NewService(f, jwt, cfg, testLogger(), nil, nil, "")
}

func registerAlice(t *testing.T, s *Service) {
	t.Helper()
	err := s.Register(context.Background(), RegisterInput{
		Organization: "Acme",
		Email:        "a@x.com",
		Mobile:       "123",
		Username:     "alice",
		Password:     "secret1",
		Address:      "Earth",
	})
	require.NoError(t, err)
}

func TestRegisterOnceThenDuplicate(t *testing.T) {
	f := &fakeRepo{}
	s := newTestService(f, nil)

	registerAlice(t, s)

	// same username
	err := s.Register(context.Background(), RegisterInput{
		Organization: "Other", Email: "other@x.com", Mobile: "9",
		Username: "alice", Password: "p", Address: "Mars",
	})
	assert.ErrorIs(t, err, repo.ErrDuplicate)

	// same email
	err = s.Register(context.Background(), RegisterInput{
		Organization: "Other", Email: "a@x.com", Mobile: "9",
		Username: "bob", Password: "p", Address: "Mars",
	})
	assert.ErrorIs(t, err, repo.ErrDuplicate)
}

func TestRegisterNeverStoresPlaintext(t *testing.T) {
	f := &fakeRepo{}
	s := newTestService(f, nil)
	registerAlice(t, s)

	require.Len(t, f.accounts, 1)
	stored := f.accounts[0]
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.True(t, helpers.CompareHashAndPassword(stored.PasswordHash, "secret1"))
	assert.True(t, stored.Activated)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestLoginSuccess(t *testing.T) {
	f := &fakeRepo{}
	s := newTestService(f, nil)
	registerAlice(t, s)

	a, token, err := s.Login(context.Background(), "alice", "secret1", "")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "alice", a.Username)

	claims, err := s.JWT.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, a.ID, claims.ID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "a@x.com", claims.Email)
}

func TestLoginUniformFailure(t *testing.T) {
	f := &fakeRepo{}
	s := newTestService(f, nil)
	registerAlice(t, s)

	_, _, errWrongPwd := s.Login(context.Background(), "alice", "wrong", "")
	_, _, errNoUser := s.Login(context.Background(), "nobody", "secret1", "")

	assert.ErrorIs(t, errWrongPwd, ErrInvalidCredentials)
	assert.ErrorIs(t, errNoUser, ErrInvalidCredentials)
	assert.Equal(t, errWrongPwd, errNoUser, "failure cause must be indistinguishable")
}

func TestLoginByEmailMode(t *testing.T) {
	f := &fakeRepo{}
	cfg := &config.Config{
		AppName:            "simgate",
		LoginIdentityField: config.IdentityEmail,
		TokenTTL:           12 * time.Hour,
	}
	s := newTestService(f, cfg)
	registerAlice(t, s)

	_, token, err := s.Login(context.Background(), "a@x.com", "secret1", "")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// username is not an identity in email mode
	_, _, err = s.Login(context.Background(), "alice", "secret1", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRecordsDeviceID(t *testing.T) {
	f := &fakeRepo{}
	s := newTestService(f, nil)
	registerAlice(t, s)

	a, _, err := s.Login(context.Background(), "alice", "secret1", "AA:BB:CC:DD:EE:FF")
	require.NoError(t, err)
	require.NotNil(t, a.DeviceID)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", *a.DeviceID)

	require.NotNil(t, f.accounts[0].DeviceID)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", *f.accounts[0].DeviceID)
}

func TestLoginDeviceIDFailureIsNonFatal(t *testing.T) {
	f := &fakeRepo{deviceErr: repo.ErrUnavailable}
	s := newTestService(f, nil)
	registerAlice(t, s)

	_, token, err := s.Login(context.Background(), "alice", "secret1", "AA:BB:CC:DD:EE:FF")
	require.NoError(t, err, "device id persistence must never fail the login")
	assert.NotEmpty(t, token)
}

func TestLoginStoreFailureSurfaces(t *testing.T) {
	f := &fakeRepo{findErr: repo.ErrUnavailable}
	s := newTestService(f, nil)

	_, _, err := s.Login(context.Background(), "alice", "secret1", "")
	assert.ErrorIs(t, err, repo.ErrUnavailable)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestListAccountsSanitized(t *testing.T) {
	f := &fakeRepo{}
	s := newTestService(f, nil)
	registerAlice(t, s)

	users, err := s.ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "a@x.com", users[0].Email)
}

func TestDashboardCounts(t *testing.T) {
	f := &fakeRepo{}
	s := newTestService(f, nil)
	registerAlice(t, s)
	f.accounts[0].Activated = false

	require.NoError(t, s.Register(context.Background(), RegisterInput{
		Organization: "Acme", Email: "b@x.com", Mobile: "4",
		Username: "bob", Password: "p", Address: "Moon",
	}))

	counts, err := s.DashboardCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts.TotalUsers)
	assert.Equal(t, int64(1), counts.TotalAccess)
	assert.Equal(t, int64(1), counts.PendingAccess)
}
