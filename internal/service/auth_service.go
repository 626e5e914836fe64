package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/siri-restaurant/internal/model"
	"github.com/iliyamo/siri-restaurant/internal/repository"
	"github.com/iliyamo/siri-restaurant/internal/utils"
)

type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, s model.Session) (model.Session, error)
	GetByHash(ctx context.Context, tokenHash string) (model.Session, error)
	DeleteByHash(ctx context.Context, tokenHash string) error
}

type AuthConfig struct {
	Secret      string
	TTL         time.Duration
	BcryptCost  int
	AllowSignup bool
}

type SignUpInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignInInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ClientMeta is recorded on the session row.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// IssuedSession is returned by sign-up and sign-in.  Token is the only copy
// of the bearer credential.
type IssuedSession struct {
	Token     string
	ExpiresAt time.Time
	Session   model.Session
	User      model.User
}

// AuthService issues and resolves admin sessions.  The sessions table is
// authoritative: a correctly signed token whose row was deleted is rejected.
type AuthService struct {
	cfg      AuthConfig
	users    UserStore
	sessions SessionStore
	log      *slog.Logger
	now      func() time.Time
}

func NewAuthService(cfg AuthConfig, users UserStore, sessions SessionStore, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}
	return &AuthService{cfg: cfg, users: users, sessions: sessions, log: log, now: time.Now}
}

// SignUp creates an account and signs it in.  Only available when sign-up
// is enabled.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput, meta ClientMeta) (*IssuedSession, error) {
	if !s.cfg.AllowSignup {
		return nil, ErrSignupDisabled
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := checkStruct(in, CodeMissingRequiredFields, "Missing required fields. Required: name, email, password",
		map[string]string{"email": CodeInvalidEmail}); err != nil {
		return nil, err
	}
	if err := utils.CheckPasswordPolicy(in.Password); err != nil {
		return nil, &ValidationError{Code: CodeWeakPassword, Message: err.Error(), Fields: []string{"password"}}
	}
	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Create(ctx, in.Name, in.Email, hash)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	s.log.InfoContext(ctx, "auth.user.created", "user_id", u.ID)
	return s.issue(ctx, u, meta)
}

// SignIn verifies the credentials and opens a new session.  Unknown email
// and wrong password both yield ErrInvalidCredentials.
func (s *AuthService) SignIn(ctx context.Context, in SignInInput, meta ClientMeta) (*IssuedSession, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := checkStruct(in, CodeMissingRequiredFields, "Missing required fields. Required: email, password", nil); err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.VerifyPassword(u.PasswordHash, in.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, u, meta)
}

func (s *AuthService) issue(ctx context.Context, u model.User, meta ClientMeta) (*IssuedSession, error) {
	tok, err := utils.NewSessionToken(s.cfg.Secret, u.ID, s.now(), s.cfg.TTL)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	row := model.Session{
		TokenHash: utils.HashToken(tok.Token),
		UserID:    u.ID,
		ExpiresAt: tok.Exp,
		IPAddress: optional(meta.IP, 64),
		UserAgent: optional(meta.UserAgent, 512),
	}
	row, err = s.sessions.Create(ctx, row)
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	s.log.InfoContext(ctx, "auth.session.created", "user_id", u.ID, "session_id", row.ID)
	return &IssuedSession{Token: tok.Token, ExpiresAt: tok.Exp, Session: row, User: u}, nil
}

// Authenticate resolves a bearer token to its session.  Every rejection
// collapses to ErrUnauthenticated; only store failures are returned as
// they are.
func (s *AuthService) Authenticate(ctx context.Context, token string) (model.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.Session{}, ErrUnauthenticated
	}
	userID, err := utils.ParseSessionToken(s.cfg.Secret, token)
	if err != nil {
		return model.Session{}, ErrUnauthenticated
	}
	sess, err := s.sessions.GetByHash(ctx, utils.HashToken(token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Session{}, ErrUnauthenticated
		}
		return model.Session{}, err
	}
	if sess.UserID != userID || !sess.ActiveAt(s.now()) {
		return model.Session{}, ErrUnauthenticated
	}
	return sess, nil
}

// SignOut deletes the session behind token.  Unknown tokens are ignored.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	return s.sessions.DeleteByHash(ctx, utils.HashToken(strings.TrimSpace(token)))
}

func (s *AuthService) User(ctx context.Context, id uint64) (model.User, error) {
	return s.users.GetByID(ctx, id)
}

// EnsureAdmin creates the bootstrap account unless a user with email
// already exists.  It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, nil
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	if err := utils.CheckPasswordPolicy(password); err != nil {
		return false, fmt.Errorf("admin password: %w", err)
	}
	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return false, err
	}
	if _, err := s.users.Create(ctx, name, email, hash); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return false, nil
		}
		return false, err
	}
	s.log.InfoContext(ctx, "auth.admin.bootstrapped", "email", email)
	return true, nil
}

func optional(s string, limit int) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if len(s) > limit {
		s = s[:limit]
	}
	return &s
}
