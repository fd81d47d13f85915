package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	_ "github.com/flaco/hooked/api/rest/v1"
	"github.com/flaco/hooked/internal/auth/captcha"
	"github.com/flaco/hooked/internal/auth/jwt"
	"github.com/flaco/hooked/internal/ctrl"
	mid "github.com/flaco/hooked/internal/hdl/http/middleware"
	"github.com/flaco/hooked/internal/hdl/http/utils"
	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

type Handler struct {
	Router  *chi.Mux
	au      jwt.Port
	captcha captcha.Port
	srv     *http.Server
	ctrl    ctrl.AppCtrl
}

func New(au jwt.Port, cap captcha.Port, ctrl ctrl.AppCtrl) *Handler {
	return &Handler{
		Router:  chi.NewRouter(),
		au:      au,
		captcha: cap,
		ctrl:    ctrl,
	}
}

func (h *Handler) Start(port int) {
	h.Router.Use(
		mid.Logger(zap.L()),
		middleware.StripSlashes,
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		mid.Prometheus,
		mid.OT,
	)

	h.RegisterRoutes()
	h.Router.Get("/swagger/*", httpSwagger.WrapHandler)
	h.Router.Get(
		"/health", func(w http.ResponseWriter, r *http.Request) {
			utils.SuccessResponse(w, http.StatusOK, "OK")
		},
	)

	h.srv = &http.Server{
		Handler:      h.Router,
		Addr:         fmt.Sprintf(":%v", port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	zap.L().Info(
		"Starting HTTP server",
		zap.String("addr", h.srv.Addr),
	)

	err := h.srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		zap.L().Error("Server error", zap.Error(err))
	}
}

func (h *Handler) Close(ctx context.Context) error {
	return h.srv.Shutdown(ctx)
}
