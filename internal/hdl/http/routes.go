package http

func (h *Handler) RegisterRoutes() {
	h.RegisterAuthRoutes()
	h.RegisterUserRoutes()
}
