package db

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	md "github.com/flaco/hooked/internal/models"
	"github.com/flaco/hooked/internal/repo"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

func newTestRepo(t *testing.T, maxSessions int) (*Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return &Repository{conn: sqlxDB, maxSessions: maxSessions}, mock, func() { db.Close() }
}

func TestRepository_CreateToken(t *testing.T) {
	userID := uuid.New()
	device := &md.Device{Info: "Chrome on Windows", IP: "192.168.1.1"}
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	expiresAt := createdAt.Add(720 * time.Hour)

	t.Run(
		"BelowCapNoEviction", func(t *testing.T) {
			r, mock, closeFn := newTestRepo(t, 2)
			defer closeFn()

			mock.ExpectBegin()
			mock.ExpectQuery(regexp.QuoteMeta(lockActiveTokensQ)).
				WithArgs(userID).
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uint64(1)))
			mock.ExpectQuery(regexp.QuoteMeta(insertTokenQ)).
				WithArgs(
					"new-token", userID, createdAt, expiresAt,
					device.Info, device.IP,
				).
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uint64(2)))
			mock.ExpectCommit()

			res, err := r.CreateToken(
				context.Background(), userID, "new-token", createdAt, expiresAt, device,
			)
			assert.NoError(t, err)
			assert.Equal(t, uint64(2), res.ID)
			assert.Equal(t, "new-token", res.Token)
			assert.True(t, res.Active)
			assert.Equal(t, device.Info, res.DeviceInfo)
			assert.NoError(t, mock.ExpectationsWereMet())
		},
	)

	t.Run(
		"AtCapEvictsOldest", func(t *testing.T) {
			r, mock, closeFn := newTestRepo(t, 2)
			defer closeFn()

			mock.ExpectBegin()
			mock.ExpectQuery(regexp.QuoteMeta(lockActiveTokensQ)).
				WithArgs(userID).
				WillReturnRows(
					sqlmock.NewRows([]string{"id"}).
						AddRow(uint64(1)).
						AddRow(uint64(2)),
				)
			mock.ExpectExec(regexp.QuoteMeta(evictOldestTokensQ)).
				WithArgs(userID, 1).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectQuery(regexp.QuoteMeta(insertTokenQ)).
				WithArgs(
					"new-token", userID, createdAt, expiresAt,
					device.Info, device.IP,
				).
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uint64(3)))
			mock.ExpectCommit()

			res, err := r.CreateToken(
				context.Background(), userID, "new-token", createdAt, expiresAt, device,
			)
			assert.NoError(t, err)
			assert.Equal(t, uint64(3), res.ID)
			assert.NoError(t, mock.ExpectationsWereMet())
		},
	)

	t.Run(
		"OverCapEvictsDownToCap", func(t *testing.T) {
			r, mock, closeFn := newTestRepo(t, 2)
			defer closeFn()

			// Three active rows can only happen after a cap change or a
			// racing create: two must go so the insert lands at the cap.
			mock.ExpectBegin()
			mock.ExpectQuery(regexp.QuoteMeta(lockActiveTokensQ)).
				WithArgs(userID).
				WillReturnRows(
					sqlmock.NewRows([]string{"id"}).
						AddRow(uint64(1)).
						AddRow(uint64(2)).
						AddRow(uint64(3)),
				)
			mock.ExpectExec(regexp.QuoteMeta(evictOldestTokensQ)).
				WithArgs(userID, 2).
				WillReturnResult(sqlmock.NewResult(0, 2))
			mock.ExpectQuery(regexp.QuoteMeta(insertTokenQ)).
				WithArgs(
					"new-token", userID, createdAt, expiresAt,
					device.Info, device.IP,
				).
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uint64(4)))
			mock.ExpectCommit()

			_, err := r.CreateToken(
				context.Background(), userID, "new-token", createdAt, expiresAt, device,
			)
			assert.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		},
	)

	t.Run(
		"LockFailureRollsBack", func(t *testing.T) {
			r, mock, closeFn := newTestRepo(t, 2)
			defer closeFn()

			mock.ExpectBegin()
			mock.ExpectQuery(regexp.QuoteMeta(lockActiveTokensQ)).
				WithArgs(userID).
				WillReturnError(errors.New("database error"))
			mock.ExpectRollback()

			res, err := r.CreateToken(
				context.Background(), userID, "new-token", createdAt, expiresAt, device,
			)
			assert.Error(t, err)
			assert.Nil(t, res)
			assert.NoError(t, mock.ExpectationsWereMet())
		},
	)
}

func TestRepository_GetActiveToken(t *testing.T) {
	userID := uuid.New()
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run(
		"BlankTokenSkipsTheDatabase", func(t *testing.T) {
			r, mock, closeFn := newTestRepo(t, 2)
			defer closeFn()

			res, err := r.GetActiveToken(context.Background(), "")
			assert.ErrorIs(t, err, repo.ErrNotFound)
			assert.Nil(t, res)
			assert.NoError(t, mock.ExpectationsWereMet())
		},
	)

	t.Run(
		"Found", func(t *testing.T) {
			r, mock, closeFn := newTestRepo(t, 2)
			defer closeFn()

			mock.ExpectQuery(regexp.QuoteMeta(getActiveTokenQ)).
				WithArgs("live-token").
				WillReturnRows(
					sqlmock.NewRows(
						[]string{
							"id", "token", "user_id", "created_at",
							"expires_at", "active", "device_info", "ip",
						},
					).AddRow(
						uint64(1), "live-token", userID, createdAt,
						createdAt.Add(720*time.Hour), true, "Chrome on Windows", "10.0.0.1",
					),
				)

			res, err := r.GetActiveToken(context.Background(), "live-token")
			assert.NoError(t, err)
			assert.Equal(t, "live-token", res.Token)
			assert.Equal(t, userID, res.UserID)
			assert.True(t, res.Active)
		},
	)

	t.Run(
		"NotFound", func(t *testing.T) {
			r, mock, closeFn := newTestRepo(t, 2)
			defer closeFn()

			mock.ExpectQuery(regexp.QuoteMeta(getActiveTokenQ)).
				WithArgs("revoked-token").
				WillReturnRows(sqlmock.NewRows([]string{"id"}))

			res, err := r.GetActiveToken(context.Background(), "revoked-token")
			assert.ErrorIs(t, err, repo.ErrNotFound)
			assert.Nil(t, res)
		},
	)
}

func TestRepository_DeactivateToken(t *testing.T) {
	t.Run(
		"BlankTokenIsANoOp", func(t *testing.T) {
			r, mock, closeFn := newTestRepo(t, 2)
			defer closeFn()

			assert.NoError(t, r.DeactivateToken(context.Background(), ""))
			assert.NoError(t, mock.ExpectationsWereMet())
		},
	)

	t.Run(
		"UnknownTokenIsStillSuccess", func(t *testing.T) {
			r, mock, closeFn := newTestRepo(t, 2)
			defer closeFn()

			mock.ExpectExec(regexp.QuoteMeta(deactivateTokenQ)).
				WithArgs("unknown-token").
				WillReturnResult(sqlmock.NewResult(0, 0))

			assert.NoError(t, r.DeactivateToken(context.Background(), "unknown-token"))
		},
	)

	t.Run(
		"DatabaseError", func(t *testing.T) {
			r, mock, closeFn := newTestRepo(t, 2)
			defer closeFn()

			mock.ExpectExec(regexp.QuoteMeta(deactivateTokenQ)).
				WithArgs("live-token").
				WillReturnError(errors.New("database error"))

			assert.Error(t, r.DeactivateToken(context.Background(), "live-token"))
		},
	)
}

func TestRepository_DeactivateAllTokens(t *testing.T) {
	r, mock, closeFn := newTestRepo(t, 2)
	defer closeFn()

	userID := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(deactivateAllTokensQ)).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 2))

	assert.NoError(t, r.DeactivateAllTokens(context.Background(), userID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListActiveSessions(t *testing.T) {
	r, mock, closeFn := newTestRepo(t, 2)
	defer closeFn()

	userID := uuid.New()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(listActiveSessionsQ)).
		WithArgs(userID, now).
		WillReturnRows(
			sqlmock.NewRows(
				[]string{
					"id", "device_info", "ip", "created_at", "expires_at",
					"user_name", "user_email", "user_avatar",
				},
			).AddRow(
				uint64(2), "Chrome on Windows", "10.0.0.1",
				now.Add(-time.Hour), now.Add(719*time.Hour),
				"Flaco", "angler@example.com", "",
			).AddRow(
				uint64(1), "Safari on iPhone", "10.0.0.2",
				now.Add(-2*time.Hour), now.Add(718*time.Hour),
				"Flaco", "angler@example.com", "",
			),
		)

	res, err := r.ListActiveSessions(context.Background(), userID, now)
	assert.NoError(t, err)
	assert.Len(t, res, 2)
	assert.Equal(t, "Chrome on Windows", res[0].DeviceInfo)
	assert.Equal(t, "angler@example.com", res[0].UserEmail)
}

func TestRepository_DeleteDeadTokens(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run(
		"ReturnsDeletedCount", func(t *testing.T) {
			r, mock, closeFn := newTestRepo(t, 2)
			defer closeFn()

			mock.ExpectExec(regexp.QuoteMeta(deleteDeadTokensQ)).
				WithArgs(now).
				WillReturnResult(sqlmock.NewResult(0, 5))

			deleted, err := r.DeleteDeadTokens(context.Background(), now)
			assert.NoError(t, err)
			assert.Equal(t, int64(5), deleted)
		},
	)

	t.Run(
		"DatabaseError", func(t *testing.T) {
			r, mock, closeFn := newTestRepo(t, 2)
			defer closeFn()

			mock.ExpectExec(regexp.QuoteMeta(deleteDeadTokensQ)).
				WithArgs(now).
				WillReturnError(errors.New("database error"))

			_, err := r.DeleteDeadTokens(context.Background(), now)
			assert.Error(t, err)
		},
	)
}
