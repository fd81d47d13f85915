package dto

import (
	md "github.com/flaco/hooked/internal/models"
	"github.com/google/uuid"
)

type PaginatedUserResponse struct {
	Data        []*md.User `json:"data"`
	Count       int64      `json:"count"`
	TotalPages  int        `json:"totalPages"`
	CurrentPage int        `json:"currentPage"`
	HasNextPage bool       `json:"hasNextPage"`
}

type CreateUserRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Avatar   string `json:"avatar"`
	Token    string `json:"token"`
}

type UpdateUserRequest struct {
	Name   string `json:"name"  validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Avatar string `json:"avatar"`
}

type CreateUserResponse struct {
	ID uuid.UUID `json:"id"`
}

type CheckEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ExistsUserResponse struct {
	Exists bool `json:"exists"`
}
