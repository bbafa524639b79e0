package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/bookledger/internal/common"
	"github.com/dmitrijs2005/bookledger/internal/logging"
	"github.com/dmitrijs2005/bookledger/internal/server/auth"
	"github.com/dmitrijs2005/bookledger/internal/server/config"
	"github.com/dmitrijs2005/bookledger/internal/server/models"
	"github.com/dmitrijs2005/bookledger/internal/server/repositories/repomanager"
)

// Session is the outcome of a successful login: the identity and a signed
// access token carrying it.
type Session struct {
	AccessToken string
	User        models.User
}

// IdentityService registers and authenticates users and resolves access
// tokens back to principals.
type IdentityService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	hasher                      auth.PasswordHasher
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	logger                      logging.Logger
	now                         Clock
	newID                       IDGenerator
}

func NewIdentityService(db *sql.DB, rm repomanager.RepositoryManager, hasher auth.PasswordHasher, cfg *config.Config, logger logging.Logger) *IdentityService {
	return &IdentityService{
		db:                          db,
		repomanager:                 rm,
		hasher:                      hasher,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		logger:                      logger.With("module", "identity"),
		now:                         UTCNow,
		newID:                       NewID,
	}
}

// Register creates a student account. A taken email yields
// common.ErrDuplicateKey.
func (s *IdentityService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	return s.create(ctx, name, email, password, models.RoleStudent)
}

// Login verifies the credentials and issues an access token. Unknown email
// and wrong password are indistinguishable.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}

	return s.session(*user)
}

// Guest issues a token for the non-persisted guest identity.
func (s *IdentityService) Guest(ctx context.Context) (*Session, error) {
	return s.session(models.Guest())
}

// EnsureAdmin creates the admin account unless a user with that email
// already exists. It reports whether an account was created.
func (s *IdentityService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	existing, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	switch {
	case err == nil:
		if existing.Role != models.RoleAdmin {
			s.logger.Warn(ctx, "admin seed email belongs to a non-admin user", "user_id", existing.ID)
		}
		return false, nil
	case !errors.Is(err, common.ErrorNotFound):
		return false, err
	}

	if _, err := s.create(ctx, name, email, password, models.RoleAdmin); err != nil {
		if errors.Is(err, common.ErrDuplicateKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ResolveUser looks a user up by id. Unknown ids yield
// common.ErrUnknownReference.
func (s *IdentityService) ResolveUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnknownReference
		}
		return nil, err
	}
	return user, nil
}

// Authenticate validates an access token.
func (s *IdentityService) Authenticate(token string) (auth.Principal, error) {
	return auth.ParsePrincipal(token, s.jwtSecret)
}

// --- helpers below ---

func (s *IdentityService) create(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", common.ErrorValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", common.ErrorValidation)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		ID:           s.newID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now(),
	}
	if err := s.repomanager.Users(s.db).Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrDuplicateKey) {
			return nil, common.ErrDuplicateKey
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user created", "user_id", user.ID, "role", user.Role.String())
	return user, nil
}

func (s *IdentityService) session(user models.User) (*Session, error) {
	token, err := auth.GenerateToken(auth.Principal{
		UserID: user.ID,
		Name:   user.Name,
		Role:   user.Role,
	}, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &Session{AccessToken: token, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
