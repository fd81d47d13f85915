package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/flaco/hooked/internal/config"
	md "github.com/flaco/hooked/internal/models"
	"github.com/flaco/hooked/internal/repo"
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

// CreateToken persists a new refresh token for the user, first evicting the
// oldest active sessions so that at most maxSessions remain active after the
// insert. The count, eviction and insert run in one transaction; the row
// locks serialize concurrent creates for the same user.
func (r *Repository) CreateToken(
	ctx context.Context,
	uid uuid.UUID,
	token string,
	createdAt, expiresAt time.Time,
	device *md.Device,
) (*md.RefreshToken, error) {
	const op = "auth.CreateToken.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	tx, err := r.conn.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			zap.L().Error("failed to rollback", zap.String("op", op), zap.Error(err))
		}
	}()

	var ids []uint64
	if err = tx.SelectContext(ctx, &ids, lockActiveTokensQ, uid); err != nil {
		return nil, err
	}

	if len(ids) >= r.maxSessions {
		toEvict := len(ids) - r.maxSessions + 1
		if _, err = tx.ExecContext(ctx, evictOldestTokensQ, uid, toEvict); err != nil {
			return nil, err
		}

		zap.L().Debug(
			"evicted oldest sessions",
			zap.String("op", op),
			zap.String("uid", uid.String()),
			zap.Int("evicted", toEvict),
		)
	}

	res := &md.RefreshToken{
		Token:      token,
		UserID:     uid,
		CreatedAt:  createdAt,
		ExpiresAt:  expiresAt,
		Active:     true,
		DeviceInfo: device.Info,
		IP:         device.IP,
	}

	err = tx.QueryRowxContext(
		ctx, insertTokenQ,
		token, uid, createdAt, expiresAt, device.Info, device.IP,
	).Scan(&res.ID)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return res, nil
}

// GetActiveToken returns the token row only if it is still active. Blank
// input short-circuits without touching the database.
func (r *Repository) GetActiveToken(ctx context.Context, token string) (*md.RefreshToken, error) {
	const op = "auth.GetActiveToken.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	if token == "" {
		return nil, repo.ErrNotFound
	}

	res := &md.RefreshToken{}
	err := r.conn.GetContext(ctx, res, getActiveTokenQ, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}

	return res, nil
}

// DeactivateToken flips the matching active token to inactive. It is
// idempotent: an unknown or already-revoked token is not an error.
func (r *Repository) DeactivateToken(ctx context.Context, token string) error {
	const op = "auth.DeactivateToken.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	if token == "" {
		return nil
	}

	_, err := r.conn.ExecContext(ctx, deactivateTokenQ, token)
	return err
}

func (r *Repository) DeactivateAllTokens(ctx context.Context, uid uuid.UUID) error {
	const op = "auth.DeactivateAllTokens.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	_, err := r.conn.ExecContext(ctx, deactivateAllTokensQ, uid)
	return err
}

// ListActiveSessions returns the user's active, non-expired sessions with
// denormalized display fields, newest first. Expired rows the sweeper has
// not deleted yet are filtered out here.
func (r *Repository) ListActiveSessions(
	ctx context.Context,
	uid uuid.UUID,
	now time.Time,
) ([]*md.Session, error) {
	const op = "auth.ListActiveSessions.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res := make([]*md.Session, 0, config.DefaultSize)
	if err := r.conn.SelectContext(ctx, &res, listActiveSessionsQ, uid, now); err != nil {
		return nil, err
	}

	return res, nil
}

// DeleteDeadTokens removes rows that are expired or inactive. Storage
// reclamation only: cap and expiry semantics are enforced synchronously
// elsewhere.
func (r *Repository) DeleteDeadTokens(ctx context.Context, now time.Time) (int64, error) {
	const op = "auth.DeleteDeadTokens.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res, err := r.conn.ExecContext(ctx, deleteDeadTokensQ, now)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
