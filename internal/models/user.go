package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	Password  string    `db:"password"   json:"-"`
	Email     string    `db:"email"      json:"email"`
	Avatar    string    `db:"avatar"     json:"avatar"`
	IsActive  bool      `db:"is_active"  json:"isActive"`
	IsLocked  bool      `db:"is_locked"  json:"isLocked"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
