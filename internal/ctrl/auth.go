package ctrl

import (
	"context"
	"errors"

	"github.com/flaco/hooked/internal/auth"
	"github.com/flaco/hooked/internal/dto"
	md "github.com/flaco/hooked/internal/models"
	"github.com/flaco/hooked/internal/repo"
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

type authCtrl interface {
	Login(ctx context.Context, d *dto.DeviceRequest, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Register(ctx context.Context, d *dto.DeviceRequest, req *dto.CreateUserRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.RefreshResponse, error)
	Logout(ctx context.Context, token string) error
	LogoutAll(ctx context.Context, uid uuid.UUID) error
	ListSessions(ctx context.Context, uid uuid.UUID) ([]*md.Session, error)
}

// issueSession mints an access token and persists a fresh refresh token for
// the user. The store evicts the oldest active sessions when the per-user
// cap is reached.
func (c *Controller) issueSession(
	ctx context.Context,
	d *dto.DeviceRequest,
	u *md.User,
) (*dto.LoginResponse, error) {
	const op = "auth.issueSession.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	access, err := c.au.NewToken(ctx, u.ID, u.Email, u.Name)
	if err != nil {
		return nil, err
	}

	device := auth.GenerateDevice(d)
	createdAt := c.now()

	refresh, err := c.repo.CreateToken(
		ctx,
		u.ID,
		uuid.NewString(),
		createdAt,
		createdAt.Add(c.session.RefreshTTL),
		&device,
	)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh.Token,
		ExpiresIn:    int64(c.au.AccessTTL().Seconds()),
		UserID:       u.ID,
		Email:        u.Email,
		Name:         u.Name,
	}, nil
}

func (c *Controller) Login(
	ctx context.Context,
	d *dto.DeviceRequest,
	req *dto.LoginRequest,
) (*dto.LoginResponse, error) {
	const op = "auth.Login.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	u, err := c.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// An unknown email reads the same as a wrong password so the
			// endpoint cannot be used to probe registered addresses.
			return nil, auth.ErrInvalidCredentials
		}
		return nil, err
	}

	if err = c.pw.ComparePasswords([]byte(u.Password), []byte(req.Password)); err != nil {
		return nil, auth.ErrInvalidCredentials
	}

	if !u.IsActive {
		return nil, auth.ErrAccountDisabled
	}

	if u.IsLocked {
		return nil, auth.ErrAccountLocked
	}

	return c.issueSession(ctx, d, u)
}

// Register creates the user and immediately opens a session: a new
// registration is also a new login.
func (c *Controller) Register(
	ctx context.Context,
	d *dto.DeviceRequest,
	req *dto.CreateUserRequest,
) (*dto.LoginResponse, error) {
	const op = "auth.Register.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res, err := c.CreateUser(ctx, req, nil)
	if err != nil {
		return nil, err
	}

	return c.issueSession(
		ctx, d, &md.User{
			ID:    res.ID,
			Name:  req.Name,
			Email: req.Email,
		},
	)
}

// Refresh exchanges a live refresh token for a new access token. The
// refresh token itself is not rotated: the same value is returned.
func (c *Controller) Refresh(
	ctx context.Context,
	req *dto.RefreshRequest,
) (*dto.RefreshResponse, error) {
	const op = "auth.Refresh.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	token, err := c.repo.GetActiveToken(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	if token.IsExpired(c.now()) {
		// Lazy revoke: an expired-but-still-active row must never be
		// usable twice.
		if err = c.repo.DeactivateToken(ctx, token.Token); err != nil {
			zap.L().Error(
				"failed to deactivate expired token",
				zap.String("op", op),
				zap.Error(err),
			)
		}

		return nil, ErrSessionExpired
	}

	u, err := c.repo.GetUserByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	access, err := c.au.NewToken(ctx, u.ID, u.Email, u.Name)
	if err != nil {
		return nil, err
	}

	return &dto.RefreshResponse{
		AccessToken:  access,
		RefreshToken: token.Token,
		ExpiresIn:    int64(c.au.AccessTTL().Seconds()),
	}, nil
}

// Logout is failure-absorbing end to end: whatever happens internally, the
// caller's session is over, so the caller always sees success.
func (c *Controller) Logout(ctx context.Context, token string) error {
	const op = "auth.Logout.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	if err := c.repo.DeactivateToken(ctx, token); err != nil {
		zap.L().Error("failed to revoke token", zap.String("op", op), zap.Error(err))
	}

	return nil
}

func (c *Controller) LogoutAll(ctx context.Context, uid uuid.UUID) error {
	const op = "auth.LogoutAll.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	return c.repo.DeactivateAllTokens(ctx, uid)
}

func (c *Controller) ListSessions(ctx context.Context, uid uuid.UUID) ([]*md.Session, error) {
	const op = "auth.ListSessions.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	return c.repo.ListActiveSessions(ctx, uid, c.now())
}
