package ctrl

import (
	"context"
	"io"
	"time"

	"github.com/flaco/hooked/internal/auth"
	"github.com/flaco/hooked/internal/auth/jwt"
	"github.com/flaco/hooked/internal/config"
	"github.com/flaco/hooked/internal/dto"
	md "github.com/flaco/hooked/internal/models"
	"github.com/flaco/hooked/internal/repo/s3"
	"github.com/google/uuid"
)

type AppRepo interface {
	authRepo
	userRepo
}

type AppCtrl interface {
	authCtrl
	userCtrl
}

type CacheService interface {
	io.Closer
	GetToStruct(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, t time.Duration, key string, val any)
	Delete(ctx context.Context, key string)
	InvalidateKeysByPattern(ctx context.Context, pattern string)
}

type EmailService interface {
	SendWelcomeEmail(toEmail, name string) error
}

type authRepo interface {
	CreateToken(
		ctx context.Context,
		uid uuid.UUID,
		token string,
		createdAt, expiresAt time.Time,
		device *md.Device,
	) (*md.RefreshToken, error)
	GetActiveToken(ctx context.Context, token string) (*md.RefreshToken, error)
	DeactivateToken(ctx context.Context, token string) error
	DeactivateAllTokens(ctx context.Context, uid uuid.UUID) error
	ListActiveSessions(ctx context.Context, uid uuid.UUID, now time.Time) ([]*md.Session, error)
	DeleteDeadTokens(ctx context.Context, now time.Time) (int64, error)
}

type userRepo interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (*md.User, error)
	GetUserByEmail(ctx context.Context, email string) (*md.User, error)
	CreateUser(ctx context.Context, req *dto.CreateUserRequest) (uuid.UUID, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req *dto.UpdateUserRequest) error
	DeleteUser(ctx context.Context, userID uuid.UUID) error
	ListUsers(
		ctx context.Context,
		page, size int,
		filters map[string]any,
	) (*dto.PaginatedUserResponse, error)
}

type Controller struct {
	au      jwt.Port
	pw      auth.PasswordPort
	repo    AppRepo
	cache   CacheService
	s3      s3.Service
	email   EmailService
	session config.SessionConfig
	now     func() time.Time
}

func New(
	au jwt.Port,
	pw auth.PasswordPort,
	repo AppRepo,
	cache CacheService,
	s3 s3.Service,
	email EmailService,
	conf config.Config,
) *Controller {
	return &Controller{
		au:      au,
		pw:      pw,
		repo:    repo,
		cache:   cache,
		s3:      s3,
		email:   email,
		session: conf.Auth.Session,
		now:     time.Now,
	}
}

// WithClock overrides the time source. Tests only.
func (c *Controller) WithClock(now func() time.Time) *Controller {
	c.now = now
	return c
}
