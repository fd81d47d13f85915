package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/flaco/hooked/internal/auth"
	"github.com/flaco/hooked/internal/auth/captcha"
	"github.com/flaco/hooked/internal/config"
	"github.com/flaco/hooked/internal/ctrl"
	"github.com/flaco/hooked/internal/dto"
	"github.com/flaco/hooked/internal/hdl"
	mid "github.com/flaco/hooked/internal/hdl/http/middleware"
	"github.com/flaco/hooked/internal/hdl/http/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (h *Handler) RegisterAuthRoutes() {
	h.Router.With(mid.Device, mid.RateLimit(mid.AuthLimit)).Post("/auth/login", h.login)
	h.Router.With(mid.Device, mid.RateLimit(mid.AuthLimit)).Post("/auth/registro", h.registro)
	h.Router.With(mid.RateLimit(mid.AuthLimit)).Post("/auth/refresh", h.refresh)
	h.Router.Post("/auth/logout", h.logout)
	h.Router.With(mid.Gate(h.au, h.ctrl), mid.Protected).Post("/auth/logout-all", h.logoutAll)
	h.Router.With(mid.Gate(h.au, h.ctrl), mid.Protected).Get("/auth/sessions", h.sessions)
}

// login godoc
//
//	@Summary		Authenticate using email & password
//	@Description	Issues an access token and a device-bound refresh token
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.LoginRequest	true	"Login credentials"
//	@Success		200		{object}	dto.LoginResponse
//	@Failure		400		{object}	utils.ErrorResponse
//	@Failure		401		{object}	utils.ErrorResponse	"invalid credentials"
//	@Failure		403		{object}	utils.ErrorResponse	"account disabled"
//	@Failure		423		{object}	utils.ErrorResponse	"account locked"
//	@Failure		500		{object}	utils.ErrorResponse
//	@Router			/auth/login [post]
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	d, ok := utils.ParseDeviceByRequest(r.Context())
	if !ok {
		utils.ErrResponse(w, http.StatusBadRequest, ErrNoDeviceInfo)
		return
	}

	req := &dto.LoginRequest{}
	if ok = utils.ParseAndValidate(w, r, req); !ok {
		return
	}

	valid, err := h.captcha.VerifyRecaptcha(r.Context(), req.Token, captcha.PassAuth)
	if err != nil {
		utils.ErrResponse(w, http.StatusInternalServerError, hdl.ErrInternal)
		return
	}

	if !valid {
		utils.ErrResponse(w, http.StatusUnauthorized, captcha.ErrValidationFailed)
		return
	}

	res, err := h.ctrl.Login(r.Context(), &d, req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			w.Header().Set("WWW-Authenticate", "Bearer")
			utils.KindResponse(w, http.StatusUnauthorized, "invalid-credentials", err)
		case errors.Is(err, auth.ErrAccountDisabled):
			utils.KindResponse(w, http.StatusForbidden, "account-disabled", err)
		case errors.Is(err, auth.ErrAccountLocked):
			w.Header().Set("Retry-After", "3600")
			utils.KindResponse(w, http.StatusLocked, "account-locked", err)
		default:
			utils.ErrResponse(w, http.StatusInternalServerError, hdl.ErrInternal)
		}
		return
	}

	utils.SuccessResponse(w, http.StatusOK, res)
}

// registro godoc
//
//	@Summary		Register a new account
//	@Description	Creates the user and immediately opens a session
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.CreateUserRequest	true	"Registration payload"
//	@Success		201		{object}	dto.LoginResponse
//	@Failure		400		{object}	utils.ErrorResponse
//	@Failure		409		{object}	utils.ErrorResponse	"email already in use"
//	@Failure		500		{object}	utils.ErrorResponse
//	@Router			/auth/registro [post]
func (h *Handler) registro(w http.ResponseWriter, r *http.Request) {
	d, ok := utils.ParseDeviceByRequest(r.Context())
	if !ok {
		utils.ErrResponse(w, http.StatusBadRequest, ErrNoDeviceInfo)
		return
	}

	req := &dto.CreateUserRequest{}
	if ok = utils.ParseAndValidate(w, r, req); !ok {
		return
	}

	valid, err := h.captcha.VerifyRecaptcha(r.Context(), req.Token, captcha.Register)
	if err != nil {
		utils.ErrResponse(w, http.StatusInternalServerError, hdl.ErrInternal)
		return
	}

	if !valid {
		utils.ErrResponse(w, http.StatusUnauthorized, captcha.ErrValidationFailed)
		return
	}

	res, err := h.ctrl.Register(r.Context(), &d, req)
	if err != nil {
		// Duplicate email is the one place where account existence is
		// deliberately disclosed.
		if errors.Is(err, ctrl.ErrAlreadyExists) {
			utils.KindResponse(w, http.StatusConflict, "duplicate-email", err)
			return
		}

		utils.ErrResponse(w, http.StatusInternalServerError, hdl.ErrInternal)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/users/%s", res.UserID))
	utils.SuccessResponse(w, http.StatusCreated, res)
}

// refresh godoc
//
//	@Summary		Exchange a refresh token for a new access token
//	@Description	The refresh token is not rotated; the same value is returned
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	dto.RefreshResponse
//	@Failure		400		{object}	utils.ErrorResponse
//	@Failure		403		{object}	utils.ErrorResponse	"invalid or expired session"
//	@Failure		500		{object}	utils.ErrorResponse
//	@Router			/auth/refresh [post]
func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	req := &dto.RefreshRequest{}
	if ok := utils.ParseAndValidate(w, r, req); !ok {
		return
	}

	res, err := h.ctrl.Refresh(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ctrl.ErrInvalidSession):
			w.Header().Set("WWW-Authenticate", "Bearer")
			utils.KindResponse(w, http.StatusForbidden, "invalid-refresh-token", err)
		case errors.Is(err, ctrl.ErrSessionExpired):
			w.Header().Set("WWW-Authenticate", "Bearer")
			utils.KindResponse(w, http.StatusForbidden, "expired-refresh-token", err)
		default:
			utils.ErrResponse(w, http.StatusInternalServerError, hdl.ErrInternal)
		}
		return
	}

	utils.SuccessResponse(w, http.StatusOK, res)
}

// logout godoc
//
//	@Summary		Revoke a refresh token
//	@Description	Always succeeds from the caller's perspective
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			body	body	dto.LogoutRequest	true	"Refresh token"
//	@Success		204		"session revoked"
//	@Failure		400		{object}	utils.ErrorResponse
//	@Router			/auth/logout [post]
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	req := &dto.LogoutRequest{}
	if ok := utils.ParseAndValidate(w, r, req); !ok {
		return
	}

	// Logout never fails: the ctrl absorbs internal errors, and a token
	// that was already gone means the session is over anyway.
	_ = h.ctrl.Logout(r.Context(), req.RefreshToken)

	utils.StatusResponse(w, http.StatusNoContent)
}

// logoutAll godoc
//
//	@Summary		Revoke every session of the authenticated user
//	@Tags			Authentication
//	@Produce		json
//	@Param			Authorization	header	string	true	"Bearer access token"
//	@Success		204				"all sessions revoked"
//	@Failure		401				{object}	utils.ErrorResponse
//	@Failure		500				{object}	utils.ErrorResponse
//	@Router			/auth/logout-all [post]
func (h *Handler) logoutAll(w http.ResponseWriter, r *http.Request) {
	uid, ok := r.Context().Value(config.UidKey).(uuid.UUID)
	if !ok {
		zap.L().Error(
			hdl.ErrFailedToGetUUID.Error(),
			zap.Any("uid", r.Context().Value(config.UidKey)),
		)
		utils.ErrResponse(w, http.StatusInternalServerError, hdl.ErrInternal)
		return
	}

	if err := h.ctrl.LogoutAll(r.Context(), uid); err != nil {
		utils.ErrResponse(w, http.StatusInternalServerError, hdl.ErrInternal)
		return
	}

	utils.StatusResponse(w, http.StatusNoContent)
}

// sessions godoc
//
//	@Summary		List the caller's active sessions
//	@Tags			Authentication
//	@Produce		json
//	@Param			Authorization	header		string	true	"Bearer access token"
//	@Success		200				{array}		models.Session
//	@Failure		401				{object}	utils.ErrorResponse
//	@Failure		500				{object}	utils.ErrorResponse
//	@Router			/auth/sessions [get]
func (h *Handler) sessions(w http.ResponseWriter, r *http.Request) {
	uid, ok := r.Context().Value(config.UidKey).(uuid.UUID)
	if !ok {
		zap.L().Error(
			hdl.ErrFailedToGetUUID.Error(),
			zap.Any("uid", r.Context().Value(config.UidKey)),
		)
		utils.ErrResponse(w, http.StatusInternalServerError, hdl.ErrInternal)
		return
	}

	res, err := h.ctrl.ListSessions(r.Context(), uid)
	if err != nil {
		utils.ErrResponse(w, http.StatusInternalServerError, hdl.ErrInternal)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, res)
}
