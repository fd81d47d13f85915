package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flaco/hooked/internal/auth"
	"github.com/flaco/hooked/internal/ctrl"
	"github.com/flaco/hooked/internal/dto"
	"github.com/flaco/hooked/internal/models"
	"github.com/flaco/hooked/tests/mocks"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestHandler(t *testing.T) (*Handler, *mocks.MockTokenPort, *mocks.MockCaptchaPort, *mocks.MockAppCtrl) {
	mock := gomock.NewController(t)
	t.Cleanup(mock.Finish)

	mau := mocks.NewMockTokenPort(mock)
	mcap := mocks.NewMockCaptchaPort(mock)
	mctrl := mocks.NewMockAppCtrl(mock)

	h := New(mau, mcap, mctrl)
	h.RegisterAuthRoutes()
	return h, mau, mcap, mctrl
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	res := map[string]any{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestHandler_Login(t *testing.T) {
	loginReq := &dto.LoginRequest{
		Email:    "angler@example.com",
		Password: "validpassword123!",
	}

	tests := []struct {
		name       string
		body       any
		setup      func(mcap *mocks.MockCaptchaPort, mctrl *mocks.MockAppCtrl)
		wantStatus int
		wantKind   string
		wantHeader map[string]string
	}{
		{
			name: "success",
			body: loginReq,
			setup: func(mcap *mocks.MockCaptchaPort, mctrl *mocks.MockAppCtrl) {
				mcap.EXPECT().
					VerifyRecaptcha(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(true, nil)
				mctrl.EXPECT().
					Login(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(
						&dto.LoginResponse{
							AccessToken:  "access-token",
							RefreshToken: "refresh-token",
							ExpiresIn:    900,
						}, nil,
					)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "invalid credentials",
			body: loginReq,
			setup: func(mcap *mocks.MockCaptchaPort, mctrl *mocks.MockAppCtrl) {
				mcap.EXPECT().
					VerifyRecaptcha(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(true, nil)
				mctrl.EXPECT().
					Login(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, auth.ErrInvalidCredentials)
			},
			wantStatus: http.StatusUnauthorized,
			wantKind:   "invalid-credentials",
			wantHeader: map[string]string{"WWW-Authenticate": "Bearer"},
		},
		{
			name: "disabled account",
			body: loginReq,
			setup: func(mcap *mocks.MockCaptchaPort, mctrl *mocks.MockAppCtrl) {
				mcap.EXPECT().
					VerifyRecaptcha(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(true, nil)
				mctrl.EXPECT().
					Login(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, auth.ErrAccountDisabled)
			},
			wantStatus: http.StatusForbidden,
			wantKind:   "account-disabled",
		},
		{
			name: "locked account",
			body: loginReq,
			setup: func(mcap *mocks.MockCaptchaPort, mctrl *mocks.MockAppCtrl) {
				mcap.EXPECT().
					VerifyRecaptcha(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(true, nil)
				mctrl.EXPECT().
					Login(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, auth.ErrAccountLocked)
			},
			wantStatus: http.StatusLocked,
			wantKind:   "account-locked",
			wantHeader: map[string]string{"Retry-After": "3600"},
		},
		{
			name:       "malformed body",
			body:       map[string]any{"email": "not-an-email"},
			setup:      func(*mocks.MockCaptchaPort, *mocks.MockAppCtrl) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "internal error",
			body: loginReq,
			setup: func(mcap *mocks.MockCaptchaPort, mctrl *mocks.MockAppCtrl) {
				mcap.EXPECT().
					VerifyRecaptcha(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(true, nil)
				mctrl.EXPECT().
					Login(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, errors.New("db is down"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for i, tt := range tests {
		t.Run(
			tt.name, func(t *testing.T) {
				h, _, mcap, mctrl := newTestHandler(t)
				tt.setup(mcap, mctrl)

				req := httptest.NewRequest(
					http.MethodPost, "/auth/login", jsonBody(t, tt.body),
				)
				req.Header.Set("Content-Type", "application/json")
				req.Header.Set("User-Agent", "test-agent")
				req.RemoteAddr = fmt.Sprintf("10.1.0.%d:4000", i+1)

				w := httptest.NewRecorder()
				h.Router.ServeHTTP(w, req)

				assert.Equal(t, tt.wantStatus, w.Code)
				for k, v := range tt.wantHeader {
					assert.Equal(t, v, w.Header().Get(k))
				}
				if tt.wantKind != "" {
					assert.Equal(t, tt.wantKind, decodeError(t, w)["kind"])
				}
			},
		)
	}
}

func TestHandler_Registro(t *testing.T) {
	userID := uuid.New()
	registerReq := &dto.CreateUserRequest{
		Name:     "Flaco",
		Email:    "angler@example.com",
		Password: "validpassword123!",
	}

	t.Run(
		"created with location header", func(t *testing.T) {
			h, _, mcap, mctrl := newTestHandler(t)

			mcap.EXPECT().
				VerifyRecaptcha(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(true, nil)
			mctrl.EXPECT().
				Register(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(
					&dto.LoginResponse{
						AccessToken:  "access-token",
						RefreshToken: "refresh-token",
						UserID:       userID,
					}, nil,
				)

			req := httptest.NewRequest(
				http.MethodPost, "/auth/registro", jsonBody(t, registerReq),
			)
			req.Header.Set("User-Agent", "test-agent")
			req.RemoteAddr = "10.2.0.1:4000"

			w := httptest.NewRecorder()
			h.Router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusCreated, w.Code)
			assert.Equal(t, fmt.Sprintf("/users/%s", userID), w.Header().Get("Location"))
		},
	)

	t.Run(
		"duplicate email", func(t *testing.T) {
			h, _, mcap, mctrl := newTestHandler(t)

			mcap.EXPECT().
				VerifyRecaptcha(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(true, nil)
			mctrl.EXPECT().
				Register(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(nil, ctrl.ErrAlreadyExists)

			req := httptest.NewRequest(
				http.MethodPost, "/auth/registro", jsonBody(t, registerReq),
			)
			req.Header.Set("User-Agent", "test-agent")
			req.RemoteAddr = "10.2.0.2:4000"

			w := httptest.NewRecorder()
			h.Router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusConflict, w.Code)
			assert.Equal(t, "duplicate-email", decodeError(t, w)["kind"])
		},
	)

	t.Run(
		"weak password rejected before the ctrl", func(t *testing.T) {
			h, _, _, _ := newTestHandler(t)

			req := httptest.NewRequest(
				http.MethodPost, "/auth/registro", jsonBody(
					t, &dto.CreateUserRequest{
						Name:     "Flaco",
						Email:    "angler@example.com",
						Password: "short",
					},
				),
			)
			req.Header.Set("User-Agent", "test-agent")
			req.RemoteAddr = "10.2.0.3:4000"

			w := httptest.NewRecorder()
			h.Router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		},
	)
}

func TestHandler_Refresh(t *testing.T) {
	refreshReq := &dto.RefreshRequest{RefreshToken: "refresh-token"}

	tests := []struct {
		name       string
		setup      func(mctrl *mocks.MockAppCtrl)
		wantStatus int
		wantKind   string
	}{
		{
			name: "success",
			setup: func(mctrl *mocks.MockAppCtrl) {
				mctrl.EXPECT().
					Refresh(gomock.Any(), gomock.Any()).
					Return(
						&dto.RefreshResponse{
							AccessToken:  "new-access-token",
							RefreshToken: "refresh-token",
							ExpiresIn:    900,
						}, nil,
					)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "invalid session",
			setup: func(mctrl *mocks.MockAppCtrl) {
				mctrl.EXPECT().
					Refresh(gomock.Any(), gomock.Any()).
					Return(nil, ctrl.ErrInvalidSession)
			},
			wantStatus: http.StatusForbidden,
			wantKind:   "invalid-refresh-token",
		},
		{
			name: "expired session",
			setup: func(mctrl *mocks.MockAppCtrl) {
				mctrl.EXPECT().
					Refresh(gomock.Any(), gomock.Any()).
					Return(nil, ctrl.ErrSessionExpired)
			},
			wantStatus: http.StatusForbidden,
			wantKind:   "expired-refresh-token",
		},
	}

	for i, tt := range tests {
		t.Run(
			tt.name, func(t *testing.T) {
				h, _, _, mctrl := newTestHandler(t)
				tt.setup(mctrl)

				req := httptest.NewRequest(
					http.MethodPost, "/auth/refresh", jsonBody(t, refreshReq),
				)
				req.RemoteAddr = fmt.Sprintf("10.3.0.%d:4000", i+1)

				w := httptest.NewRecorder()
				h.Router.ServeHTTP(w, req)

				assert.Equal(t, tt.wantStatus, w.Code)
				if tt.wantKind != "" {
					assert.Equal(t, tt.wantKind, decodeError(t, w)["kind"])
				}
			},
		)
	}
}

func TestHandler_Logout(t *testing.T) {
	t.Run(
		"always responds no content", func(t *testing.T) {
			h, _, _, mctrl := newTestHandler(t)

			mctrl.EXPECT().
				Logout(gomock.Any(), "refresh-token").
				Return(nil)

			req := httptest.NewRequest(
				http.MethodPost, "/auth/logout",
				jsonBody(t, &dto.LogoutRequest{RefreshToken: "refresh-token"}),
			)

			w := httptest.NewRecorder()
			h.Router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusNoContent, w.Code)
		},
	)

	t.Run(
		"missing token is still a bad request", func(t *testing.T) {
			h, _, _, _ := newTestHandler(t)

			req := httptest.NewRequest(
				http.MethodPost, "/auth/logout", jsonBody(t, map[string]any{}),
			)

			w := httptest.NewRecorder()
			h.Router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		},
	)
}

func TestHandler_LogoutAll(t *testing.T) {
	userID := uuid.New()

	t.Run(
		"authenticated", func(t *testing.T) {
			h, mau, _, mctrl := newTestHandler(t)

			mau.EXPECT().
				VerifySubject(gomock.Any(), "access-token").
				Return("angler@example.com", true)
			mctrl.EXPECT().
				GetUserByEmail(gomock.Any(), "angler@example.com").
				Return(&models.User{ID: userID}, nil)
			mctrl.EXPECT().
				LogoutAll(gomock.Any(), userID).
				Return(nil)

			req := httptest.NewRequest(http.MethodPost, "/auth/logout-all", nil)
			req.Header.Set("Authorization", "Bearer access-token")

			w := httptest.NewRecorder()
			h.Router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusNoContent, w.Code)
		},
	)

	t.Run(
		"no token", func(t *testing.T) {
			h, _, _, _ := newTestHandler(t)

			req := httptest.NewRequest(http.MethodPost, "/auth/logout-all", nil)
			w := httptest.NewRecorder()
			h.Router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		},
	)

	t.Run(
		"invalid token", func(t *testing.T) {
			h, mau, _, _ := newTestHandler(t)

			mau.EXPECT().
				VerifySubject(gomock.Any(), "stale-token").
				Return("", false)

			req := httptest.NewRequest(http.MethodPost, "/auth/logout-all", nil)
			req.Header.Set("Authorization", "Bearer stale-token")

			w := httptest.NewRecorder()
			h.Router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		},
	)
}

func TestHandler_Sessions(t *testing.T) {
	userID := uuid.New()

	h, mau, _, mctrl := newTestHandler(t)

	mau.EXPECT().
		VerifySubject(gomock.Any(), "access-token").
		Return("angler@example.com", true)
	mctrl.EXPECT().
		GetUserByEmail(gomock.Any(), "angler@example.com").
		Return(&models.User{ID: userID}, nil)
	mctrl.EXPECT().
		ListSessions(gomock.Any(), userID).
		Return(
			[]*models.Session{
				{ID: 2, DeviceInfo: "Chrome on Windows"},
				{ID: 1, DeviceInfo: "Safari on iPhone"},
			}, nil,
		)

	req := httptest.NewRequest(http.MethodGet, "/auth/sessions", nil)
	req.Header.Set("Authorization", "Bearer access-token")

	w := httptest.NewRecorder()
	h.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Data []*models.Session `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Len(t, res.Data, 2)
	assert.Equal(t, "Chrome on Windows", res.Data[0].DeviceInfo)
}

func TestHandler_AuthRateLimit(t *testing.T) {
	h, _, mcap, mctrl := newTestHandler(t)

	mcap.EXPECT().
		VerifyRecaptcha(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(true, nil).
		Times(5)
	mctrl.EXPECT().
		Login(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, auth.ErrInvalidCredentials).
		Times(5)

	body := &dto.LoginRequest{Email: "angler@example.com", Password: "guess"}
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", jsonBody(t, body))
		req.Header.Set("User-Agent", "test-agent")
		req.RemoteAddr = "10.9.0.1:4000"

		w := httptest.NewRecorder()
		h.Router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/login", jsonBody(t, body))
	req.Header.Set("User-Agent", "test-agent")
	req.RemoteAddr = "10.9.0.1:4000"

	w := httptest.NewRecorder()
	h.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}
