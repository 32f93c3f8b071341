package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/aerosimlabs/simgate/config"
	"github.com/aerosimlabs/simgate/internal/domain/entity"
	repo "github.com/aerosimlabs/simgate/internal/domain/repository"
	"github.com/aerosimlabs/simgate/pkg/helpers"
	"github.com/aerosimlabs/simgate/pkg/mailer"
	tpl "github.com/aerosimlabs/simgate/pkg/mailer/templates"
)

// ErrInvalidCredentials covers both an unknown identity and a wrong
// password; callers must not distinguish the two.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service implements the registration and authentication workflows.
// Pub and ES are optional; a nil value disables the side effect.
type Service struct {
	Repo            repo.AccountRepository
	JWT             *helpers.JWTManager
	Cfg             *config.Config
	Logger          *logrus.Logger
	Pub             *helpers.RabbitPublisher
	ES              *elasticsearch.Client
	ESAccountsIndex string
}

func NewService(r repo.AccountRepository, jwt *helpers.JWTManager, cfg *config.Config, logger *logrus.Logger, pub *helpers.RabbitPublisher, es *elasticsearch.Client, esIndex string) *Service {
	return &Service{
		Repo:            r,
		JWT:             jwt,
		Cfg:             cfg,
		Logger:          logger,
		Pub:             pub,
		ES:              es,
		ESAccountsIndex: esIndex,
	}
}

type RegisterInput struct {
	Organization string
	Email        string
	Mobile       string
	Username     string
	Password     string
	Address      string
	MAC          string
}

// Register creates a new account. The plaintext password never leaves this
// function: it is hashed before the aggregate is built. Accounts start
// activated; an admin-approval gate would flip this default and use the
// pending count on the dashboard.
func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	existing, err := s.Repo.FindByIdentity(ctx, in.Username, in.Email)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if existing != nil {
		return repo.ErrDuplicate
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return err
	}

	a := &entity.Account{
		Organization: in.Organization,
		Email:        in.Email,
		Mobile:       in.Mobile,
		Username:     in.Username,
		PasswordHash: hash,
		Address:      in.Address,
		Activated:    true,
	}
	if in.MAC != "" {
		a.DeviceID = &in.MAC
	}
	if err := s.Repo.Insert(ctx, a); err != nil {
		return err
	}

	s.enqueueWelcome(ctx, a)
	s.indexAccount(ctx, a)
	return nil
}

// Login resolves the account by the configured identity field, verifies the
// password, best-effort records the device MAC, and issues a bearer token.
func (s *Service) Login(ctx context.Context, identity, password, mac string) (*entity.Account, string, error) {
	var username, email string
	if s.Cfg.LoginIdentityField == config.IdentityEmail {
		email = identity
	} else {
		username = identity
	}

	a, err := s.Repo.FindByIdentity(ctx, username, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !helpers.CompareHashAndPassword(a.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	if mac != "" {
		if err := s.Repo.UpdateDeviceID(ctx, a.ID, mac); err != nil {
			s.Logger.WithError(err).WithField("account_id", a.ID).Warn("device id update failed")
		} else {
			a.DeviceID = &mac
		}
	}

	token, _, err := s.JWT.Issue(a.ID, a.Username, a.Email)
	if err != nil {
		return nil, "", err
	}
	return a, token, nil
}

func (s *Service) ListAccounts(ctx context.Context) ([]entity.Sanitized, error) {
	accounts, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Sanitized, 0, len(accounts))
	for i := range accounts {
		out = append(out, accounts[i].Sanitize())
	}
	return out, nil
}

func (s *Service) DashboardCounts(ctx context.Context) (repo.Counts, error) {
	return s.Repo.Counts(ctx)
}

func (s *Service) UpdateAccount(ctx context.Context, id string, fields map[string]any) error {
	return s.Repo.UpdateFields(ctx, id, fields)
}

// enqueueWelcome publishes the welcome mail job. Registration already
// succeeded at this point, so every failure path only logs.
func (s *Service) enqueueWelcome(ctx context.Context, a *entity.Account) {
	if s.Pub == nil || !s.Cfg.MailSendEnabled {
		return
	}
	job := mailer.EmailJob{
		To:       a.Email,
		Template: tpl.Welcome,
		Data: map[string]any{
			"Name":    a.Username,
			"AppName": s.Cfg.AppName,
		},
	}
	c, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.Pub.PublishJSON(c, job); err != nil {
		s.Logger.WithError(err).WithField("email", a.Email).Warn("welcome mail enqueue failed")
	}
}

// indexAccount mirrors the account into Elasticsearch for admin search.
// Best-effort: the index lags behind the store when it fails.
func (s *Service) indexAccount(ctx context.Context, a *entity.Account) {
	if s.ES == nil || s.ESAccountsIndex == "" {
		return
	}
	doc := map[string]any{
		"id":           a.ID,
		"username":     a.Username,
		"email":        a.Email,
		"organization": a.Organization,
		"activated":    a.Activated,
		"created_at":   a.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESAccountsIndex, DocumentID: a.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("account_id", a.ID).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("account_id", a.ID).Warn("es index response error")
	}
}
