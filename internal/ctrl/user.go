package ctrl

import (
	"context"
	"errors"
	"fmt"

	"github.com/flaco/hooked/internal/config"
	"github.com/flaco/hooked/internal/dto"
	md "github.com/flaco/hooked/internal/models"
	"github.com/flaco/hooked/internal/repo"
	"github.com/flaco/hooked/internal/repo/s3"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

type userCtrl interface {
	IsUserExist(ctx context.Context, email string) (*dto.ExistsUserResponse, error)
	ListUsers(
		ctx context.Context,
		page, size int,
		filters map[string]any,
	) (*dto.PaginatedUserResponse, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*md.User, error)
	GetUserByEmail(ctx context.Context, email string) (*md.User, error)
	CreateUser(
		ctx context.Context,
		u *dto.CreateUserRequest,
		file *s3.UploadFileRequest,
	) (*dto.CreateUserResponse, error)
	UpdateUser(
		ctx context.Context,
		id uuid.UUID,
		req *dto.UpdateUserRequest,
		file *s3.UploadFileRequest,
	) error
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

const (
	userCacheKey = "user:%v"
	usersListKey = "users-list:%v:%v:%v"
	userPattern  = "user*"
)

func (c *Controller) IsUserExist(
	ctx context.Context,
	email string,
) (*dto.ExistsUserResponse, error) {
	const op = "users.IsUserExist.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res := &dto.ExistsUserResponse{Exists: false}

	_, err := c.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return res, nil
		}
		return nil, err
	}

	res.Exists = true

	return res, nil
}

func (c *Controller) ListUsers(
	ctx context.Context,
	page, size int,
	filters map[string]any,
) (*dto.PaginatedUserResponse, error) {
	const op = "users.ListUsers.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	cached := &dto.PaginatedUserResponse{}
	cacheKey := fmt.Sprintf(usersListKey, page, size, filters)
	if err := c.cache.GetToStruct(ctx, cacheKey, cached); err == nil {
		return cached, nil
	}

	res, err := c.repo.ListUsers(ctx, page, size, filters)
	if err != nil {
		return nil, err
	}

	bytes, err := json.Marshal(res)
	if err == nil {
		c.cache.Set(ctx, config.DefaultCacheTime, cacheKey, bytes)
	}

	return res, nil
}

func (c *Controller) GetUserByID(ctx context.Context, userID uuid.UUID) (*md.User, error) {
	const op = "users.GetUserByID.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	cached := &md.User{}
	cacheKey := fmt.Sprintf(userCacheKey, userID)
	if err := c.cache.GetToStruct(ctx, cacheKey, cached); err == nil {
		return cached, nil
	}

	res, err := c.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	bytes, err := json.Marshal(res)
	if err == nil {
		c.cache.Set(ctx, config.DefaultCacheTime, cacheKey, bytes)
	}

	return res, nil
}

func (c *Controller) GetUserByEmail(ctx context.Context, email string) (*md.User, error) {
	const op = "users.GetUserByEmail.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res, err := c.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return res, nil
}

func (c *Controller) CreateUser(
	ctx context.Context,
	req *dto.CreateUserRequest,
	file *s3.UploadFileRequest,
) (*dto.CreateUserResponse, error) {
	const op = "users.CreateUser.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	hash, err := c.pw.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	req.Password = hash

	if file != nil && len(file.Bytes) > 0 {
		if url, err := c.s3.UploadFile(ctx, file); err == nil {
			req.Avatar = url
		}
	}

	id, err := c.repo.CreateUser(ctx, req)
	if err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}

	// Best effort: a failed welcome email must not fail the registration.
	if c.email != nil {
		if err = c.email.SendWelcomeEmail(req.Email, req.Name); err != nil {
			zap.L().Warn(
				"failed to send welcome email",
				zap.String("op", op),
				zap.Error(err),
			)
		}
	}

	c.cache.InvalidateKeysByPattern(ctx, userPattern)

	return &dto.CreateUserResponse{ID: id}, nil
}

func (c *Controller) UpdateUser(
	ctx context.Context,
	id uuid.UUID,
	req *dto.UpdateUserRequest,
	file *s3.UploadFileRequest,
) error {
	const op = "users.UpdateUser.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	if file != nil && len(file.Bytes) > 0 {
		if url, err := c.s3.UploadFile(ctx, file); err == nil {
			req.Avatar = url
		}
	}

	err := c.repo.UpdateUser(ctx, id, req)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	c.cache.Delete(ctx, fmt.Sprintf(userCacheKey, id))
	c.cache.InvalidateKeysByPattern(ctx, userPattern)

	return nil
}

func (c *Controller) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	const op = "users.DeleteUser.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	err := c.repo.DeleteUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	c.cache.Delete(ctx, fmt.Sprintf(userCacheKey, userID))
	c.cache.InvalidateKeysByPattern(ctx, userPattern)

	return nil
}
