package accounts

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/geocoder89/plantdoctor/internal/domain/resettoken"
	"github.com/geocoder89/plantdoctor/internal/domain/user"
	"github.com/geocoder89/plantdoctor/internal/notifications"
	"github.com/geocoder89/plantdoctor/internal/observability"
	"github.com/geocoder89/plantdoctor/internal/repo"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailTaken         = user.ErrEmailTaken
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidResetToken  = errors.New("invalid reset token")
	ErrResetTokenExpired  = errors.New("reset token expired")
)

type UserStore interface {
	Create(ctx context.Context, u user.User) error
	GetByEmail(ctx context.Context, email string) (user.User, error)
	UpdatePasswordTx(ctx context.Context, tx repo.Tx, id, passwordHash string) error
}

type ResetTokenStore interface {
	BeginTx(ctx context.Context) (repo.Tx, error)
	CreateTx(ctx context.Context, tx repo.Tx, t resettoken.Token) error
	GetByHashForUpdate(ctx context.Context, tx repo.Tx, tokenHash string) (resettoken.Token, error)
	DeleteTx(ctx context.Context, tx repo.Tx, id string) error
	DeleteForUserTx(ctx context.Context, tx repo.Tx, userID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID, email string, role user.Role) (string, error)
}

type Dispatcher interface {
	Dispatch(msg notifications.Message)
}

type LoginResult struct {
	Token string
	User  user.User
}

// Service owns registration, login and the password reset flow.
type Service struct {
	users      UserStore
	tokens     ResetTokenStore
	issuer     TokenIssuer
	dispatcher Dispatcher

	resetTTL     time.Duration
	resetURLBase string
	now          func() time.Time
	log          *slog.Logger
	prom         *observability.Prom
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithResetTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.resetTTL = ttl
		}
	}
}

func WithResetURLBase(base string) Option {
	return func(s *Service) {
		if base != "" {
			s.resetURLBase = base
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func WithProm(p *observability.Prom) Option {
	return func(s *Service) { s.prom = p }
}

func New(users UserStore, tokens ResetTokenStore, issuer TokenIssuer, dispatcher Dispatcher, opts ...Option) *Service {
	s := &Service{
		users:        users,
		tokens:       tokens,
		issuer:       issuer,
		dispatcher:   dispatcher,
		resetTTL:     time.Hour,
		resetURLBase: "plantdoctor://reset-password",
		now:          time.Now,
		log:          slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}
